package models

import "time"

// AlertState failure tracker'ın kalıcı durumu
// Sayaç 1 saatlik pencere içinde birikir; eşik aşılınca alert yapışkan hale
// gelir ve ya dismiss edilene ya da bir başarı sayacı sıfırlayana kadar kalır
type AlertState struct {
	Count       int       `json:"count" db:"count"`
	WindowStart time.Time `json:"window_start" db:"window_start"`
	LastContext string    `json:"last_context" db:"last_context"`
	LastMessage string    `json:"last_message" db:"last_message"`
	AlertActive bool      `json:"alert_active" db:"alert_active"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
