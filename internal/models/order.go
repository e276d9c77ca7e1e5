package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPointsMeta siparişin puan durumunu tutar
// "points_awarded" ve "points_refunded" bayrakları idempotency için kullanılır;
// bayraklar sadece engine çağrısı başarılı olduktan SONRA set edilir
type OrderPointsMeta struct {
	OrderID         string          `json:"order_id" db:"order_id"`
	UserID          int             `json:"user_id" db:"user_id"`
	OrderTotal      decimal.Decimal `json:"order_total" db:"order_total"`
	PointsAwarded   bool            `json:"points_awarded" db:"points_awarded"`
	AwardedPoints   int             `json:"awarded_points" db:"awarded_points"`
	PointsRedeemed  int             `json:"points_redeemed" db:"points_redeemed"`
	RedeemDiscount  decimal.Decimal `json:"redeem_discount" db:"redeem_discount"`
	PointsRefunded  bool            `json:"points_refunded" db:"points_refunded"`
	RefundedAt      *time.Time      `json:"refunded_at" db:"refunded_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// OrderCompletedEvent sipariş tamamlanma webhook payload'ı
type OrderCompletedEvent struct {
	OrderID    string          `json:"order_id"`
	UserID     int             `json:"user_id"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

// OrderCancelledEvent sipariş iptal webhook payload'ı
type OrderCancelledEvent struct {
	OrderID string `json:"order_id"`
}
