package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// TransactionRepository, TransactionRepositoryInterface'in somut halidir.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository, yeni bir repository oluşturur ve arayüz olarak döndürür.
func NewTransactionRepository(db *sql.DB) interfaces.TransactionRepositoryInterface {
	return &TransactionRepository{db: db}
}

// transactionColumns tüm okuma sorgularında kullanılan kolon listesi
const transactionColumns = `id, user_id, type, points, description, order_id, created_at, expires_at, is_expired`

// scanTransaction tek satırı model'e çevirir
func scanTransaction(row interface{ Scan(...interface{}) error }) (*models.Transaction, error) {
	var tx models.Transaction
	var description sql.NullString
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Type,
		&tx.Points,
		&description,
		&tx.OrderID,
		&tx.CreatedAt,
		&tx.ExpiresAt,
		&tx.IsExpired,
	)
	if err != nil {
		return nil, err
	}
	tx.Description = description.String
	return &tx, nil
}

// GetByID ID ile transaction getirir
func (r *TransactionRepository) GetByID(id int) (*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM point_transactions
		WHERE id = $1
	`

	tx, err := scanTransaction(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("transaction bulunamadı")
		}
		return nil, fmt.Errorf("transaction arama hatası: %w", err)
	}

	return tx, nil
}

// GetByUserID kullanıcının transaction'larını getirir
func (r *TransactionRepository) GetByUserID(userID int, limit, offset int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("transaction listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("transaction scan hatası: %w", err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// GetEarnByOrderID siparişe bağlı orijinal earn kaydını bulur
// Sipariş iptalinde earn-reversal için kullanılır
func (r *TransactionRepository) GetEarnByOrderID(userID int, orderID string) (*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM point_transactions
		WHERE user_id = $1 AND order_id = $2 AND type = 'earn'
		LIMIT 1
	`

	tx, err := scanTransaction(r.db.QueryRow(query, userID, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // earn kaydı yok, hata değil
		}
		return nil, fmt.Errorf("earn kaydı arama hatası: %w", err)
	}

	return tx, nil
}

// GetExpiringSoon verilen tarihe kadar expire olacak earn kayıtlarını getirir
func (r *TransactionRepository) GetExpiringSoon(userID int, until time.Time) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM point_transactions
		WHERE user_id = $1
		AND type = 'earn'
		AND expires_at IS NOT NULL
		AND expires_at <= $2
		AND expires_at > NOW()
		AND is_expired = FALSE
		ORDER BY expires_at ASC
	`

	rows, err := r.db.Query(query, userID, until)
	if err != nil {
		return nil, fmt.Errorf("expire listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("transaction scan hatası: %w", err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// GetDistinctUserIDs ledger'da kaydı olan tüm kullanıcıları döner
// Toplu expire taramasında kullanılır
func (r *TransactionRepository) GetDistinctUserIDs() ([]int, error) {
	rows, err := r.db.Query(`SELECT DISTINCT user_id FROM point_transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("kullanıcı listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var userIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("kullanıcı scan hatası: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	return userIDs, rows.Err()
}

// MarkReversed kaydın açıklamasına geri alındı işareti ekler
// İşaret zaten varsa ikinci kez eklenmez
func (r *TransactionRepository) MarkReversed(id int) error {
	query := `
		UPDATE point_transactions
		SET description = description || ' [REVERSED]'
		WHERE id = $1 AND description NOT LIKE '%[REVERSED]%'
	`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("geri alma işareti kaydedilemedi: %w", err)
	}

	return nil
}

// GetLifetimeStats kullanıcının tüm zamanlardaki toplamlarını hesaplar
// (expire/is_expired durumuna bakılmaz)
func (r *TransactionRepository) GetLifetimeStats(userID int) (*models.LifetimeStats, error) {
	query := `
		SELECT
			COALESCE(SUM(points) FILTER (WHERE type IN ('earn', 'referral', 'birthday', 'refund')), 0) AS lifetime_earned,
			COALESCE(SUM(points) FILTER (WHERE type = 'redeem'), 0) AS lifetime_redeemed
		FROM point_transactions
		WHERE user_id = $1
	`

	stats := models.LifetimeStats{UserID: userID}
	err := r.db.QueryRow(query, userID).Scan(&stats.LifetimeEarned, &stats.LifetimeRedeemed)
	if err != nil {
		return nil, fmt.Errorf("kullanıcı istatistikleri alınamadı: %w", err)
	}

	return &stats, nil
}
