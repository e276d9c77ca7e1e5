package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// AlertRepository failure tracker durumunun tek satırlık kalıcı kaydı
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository yeni repository oluşturur
func NewAlertRepository(db *sql.DB) interfaces.AlertRepositoryInterface {
	return &AlertRepository{db: db}
}

// Load kayıtlı durumu getirir; kayıt yoksa sıfır durum döner
func (r *AlertRepository) Load() (*models.AlertState, error) {
	query := `
		SELECT count, window_start, last_context, last_message, alert_active, updated_at
		FROM sync_alert_state
		WHERE id = 1
	`

	var state models.AlertState
	err := r.db.QueryRow(query).Scan(
		&state.Count,
		&state.WindowStart,
		&state.LastContext,
		&state.LastMessage,
		&state.AlertActive,
		&state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.AlertState{WindowStart: time.Now()}, nil
		}
		return nil, fmt.Errorf("alert durumu okunamadı: %w", err)
	}

	return &state, nil
}

// Save durumu kaydeder (tek satır upsert)
func (r *AlertRepository) Save(state *models.AlertState) error {
	query := `
		INSERT INTO sync_alert_state (id, count, window_start, last_context, last_message, alert_active, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			count = EXCLUDED.count,
			window_start = EXCLUDED.window_start,
			last_context = EXCLUDED.last_context,
			last_message = EXCLUDED.last_message,
			alert_active = EXCLUDED.alert_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(
		query,
		state.Count,
		state.WindowStart,
		state.LastContext,
		state.LastMessage,
		state.AlertActive,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("alert durumu kaydedilemedi: %w", err)
	}

	return nil
}
