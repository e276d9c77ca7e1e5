package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// OrderRepository sipariş puan meta kayıtlarının database işlemleri
// "points_awarded" ve "points_refunded" bayrakları adaptörün idempotency
// kaynağıdır; bayraklar sadece engine başarısı SONRASI set edilir
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository yeni repository oluşturur
func NewOrderRepository(db *sql.DB) interfaces.OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

// GetByOrderID sipariş meta kaydını getirir
func (r *OrderRepository) GetByOrderID(orderID string) (*models.OrderPointsMeta, error) {
	query := `
		SELECT order_id, user_id, order_total, points_awarded, awarded_points,
		       points_redeemed, redeem_discount, points_refunded, refunded_at, created_at
		FROM order_points_meta
		WHERE order_id = $1
	`

	var meta models.OrderPointsMeta
	err := r.db.QueryRow(query, orderID).Scan(
		&meta.OrderID,
		&meta.UserID,
		&meta.OrderTotal,
		&meta.PointsAwarded,
		&meta.AwardedPoints,
		&meta.PointsRedeemed,
		&meta.RedeemDiscount,
		&meta.PointsRefunded,
		&meta.RefundedAt,
		&meta.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("sipariş kaydı arama hatası: %w", err)
	}

	return &meta, nil
}

// Upsert sipariş meta kaydını oluşturur; kayıt varsa total'ı günceller
// Bayraklara dokunmaz, idempotency bozulmasın. Sıfır total mevcut değeri
// ezmez: redeem kaydı webhook'tan önce gelirse sipariş tutarı korunur
func (r *OrderRepository) Upsert(meta *models.OrderPointsMeta) error {
	query := `
		INSERT INTO order_points_meta (order_id, user_id, order_total)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO UPDATE SET order_total = EXCLUDED.order_total
		WHERE EXCLUDED.order_total > 0
	`

	_, err := r.db.Exec(query, meta.OrderID, meta.UserID, meta.OrderTotal)
	if err != nil {
		return fmt.Errorf("sipariş kaydı oluşturulamadı: %w", err)
	}

	return nil
}

// MarkAwarded siparişi "puan verildi" olarak işaretler
func (r *OrderRepository) MarkAwarded(orderID string, points int) error {
	query := `
		UPDATE order_points_meta
		SET points_awarded = TRUE, awarded_points = $1
		WHERE order_id = $2
	`

	result, err := r.db.Exec(query, points, orderID)
	if err != nil {
		return fmt.Errorf("sipariş işaretlenemedi: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("güncelleme sonucu kontrol edilemedi: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

// MarkRedeemed siparişte harcanan puanı ve uygulanan indirimi kaydeder
// İptal durumunda refund tutarının kaynağıdır
func (r *OrderRepository) MarkRedeemed(orderID string, points int, discount string) error {
	query := `
		UPDATE order_points_meta
		SET points_redeemed = $1, redeem_discount = $2
		WHERE order_id = $3
	`

	_, err := r.db.Exec(query, points, discount, orderID)
	if err != nil {
		return fmt.Errorf("sipariş redeem bilgisi kaydedilemedi: %w", err)
	}

	return nil
}

// MarkRefunded siparişi "iade işlendi" olarak işaretler
func (r *OrderRepository) MarkRefunded(orderID string, at time.Time) error {
	query := `
		UPDATE order_points_meta
		SET points_refunded = TRUE, refunded_at = $1
		WHERE order_id = $2
	`

	result, err := r.db.Exec(query, at, orderID)
	if err != nil {
		return fmt.Errorf("sipariş iade işareti kaydedilemedi: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("güncelleme sonucu kontrol edilemedi: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}
