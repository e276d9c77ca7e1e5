package models

import "time"

// BalanceBreakdown ledger'dan türetilen bakiye bileşenlerini tutar
// balance = max(0, earned - redeemed - expired)
type BalanceBreakdown struct {
	UserID   int `json:"user_id"`
	Earned   int `json:"earned"`
	Redeemed int `json:"redeemed"`
	Expired  int `json:"expired"`
	Balance  int `json:"balance"`
}

// LifetimeStats kullanıcının toplam kazandığı/harcadığı puanlar
// (expire durumuna bakılmaz, tüm ledger toplamıdır)
type LifetimeStats struct {
	UserID           int `json:"user_id"`
	LifetimeEarned   int `json:"lifetime_earned"`
	LifetimeRedeemed int `json:"lifetime_redeemed"`
}

// CachedBalance cache'te saklanan bakiye girdisi
type CachedBalance struct {
	Balance  int       `json:"balance"`
	CachedAt time.Time `json:"cached_at"`
}

// SweepResult tek kullanıcı için expire taramasının özeti
type SweepResult struct {
	ExpiredCount  int `json:"expired_count"`
	ExpiredPoints int `json:"expired_points"`
	NewBalance    int `json:"new_balance"`
}

// SweepAllResult toplu expire taramasının özeti
type SweepAllResult struct {
	UsersSwept    int `json:"users_swept"`
	ExpiredCount  int `json:"expired_count"`
	ExpiredPoints int `json:"expired_points"`
}
