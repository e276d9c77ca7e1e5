package repository

import (
	"database/sql"
	"fmt"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// AuditRepository manuel düzeltme audit kayıtlarının database işlemleri
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository yeni repository oluşturur
func NewAuditRepository(db *sql.DB) interfaces.AuditRepositoryInterface {
	return &AuditRepository{db: db}
}

// Create yeni audit kaydı oluşturur
func (r *AuditRepository) Create(entry *models.AuditLog) error {
	query := `
		INSERT INTO point_audit_log (user_id, admin_user_id, points, reason)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(query, entry.UserID, entry.AdminUserID, entry.Points, entry.Reason)
	if err != nil {
		return fmt.Errorf("audit kaydı oluşturulamadı: %w", err)
	}

	return nil
}

// GetByUser kullanıcıya ait audit kayıtlarını getirir
func (r *AuditRepository) GetByUser(userID int, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, user_id, admin_user_id, points, reason, created_at
		FROM point_audit_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.AdminUserID,
			&entry.Points,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("audit scan hatası: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
