package models

import "time"

// AuditLog manuel puan düzeltmelerinin insan-okunur kaydı
// Append-only'dir ve bakiye hesabında ASLA kullanılmaz
type AuditLog struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	AdminUserID int       `json:"admin_user_id" db:"admin_user_id"`
	Points      int       `json:"points" db:"points"`
	Reason      string    `json:"reason" db:"reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
