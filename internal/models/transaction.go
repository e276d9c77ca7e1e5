package models

import "time"

// TransactionType ledger kayıt tipini temsil eder (kapalı küme)
type TransactionType string

const (
	TypeEarn     TransactionType = "earn"
	TypeRedeem   TransactionType = "redeem"
	TypeAdjust   TransactionType = "adjust"
	TypeExpire   TransactionType = "expire"
	TypeReferral TransactionType = "referral"
	TypeBirthday TransactionType = "birthday"
	TypeRefund   TransactionType = "refund"
)

// IsValid tipin geçerli olup olmadığını kontrol eder
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeEarn, TypeRedeem, TypeAdjust, TypeExpire, TypeReferral, TypeBirthday, TypeRefund:
		return true
	}
	return false
}

// IsEarning bakiyeye puan ekleyen tiplerden biri mi
// (redeem ve expire bakiyeden düşer, geri kalanı ekler)
func (t TransactionType) IsEarning() bool {
	switch t {
	case TypeEarn, TypeAdjust, TypeReferral, TypeBirthday, TypeRefund:
		return true
	}
	return false
}

// IsBonus günlük duplicate kontrolüne tabi bonus tiplerinden biri mi
func (t TransactionType) IsBonus() bool {
	return t == TypeBirthday || t == TypeReferral
}

// DuplicateWindow order_id bazlı duplicate kontrol penceresini döner
// earn/redeem için 10 dakika, diğer tipler için 5 dakika
func (t TransactionType) DuplicateWindow() time.Duration {
	if t == TypeEarn || t == TypeRedeem {
		return 10 * time.Minute
	}
	return 5 * time.Minute
}

// Transaction ledger kaydını temsil eder
// Commit edildikten sonra immutable'dır; sadece is_expired 0→1 geçişi
// ve earn-reversal'da description'a eklenen [REVERSED] işareti istisnadır
type Transaction struct {
	ID          int             `json:"id" db:"id"`
	UserID      int             `json:"user_id" db:"user_id"`
	Type        TransactionType `json:"type" db:"type"`
	Points      int             `json:"points" db:"points"`
	Description string          `json:"description" db:"description"`
	OrderID     *string         `json:"order_id" db:"order_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ExpiresAt   *time.Time      `json:"expires_at" db:"expires_at"`
	IsExpired   bool            `json:"is_expired" db:"is_expired"`
}

// ReversedMarker earn-reversal'da orijinal kaydın description'ına eklenir
const ReversedMarker = " [REVERSED]"

// CreateTransactionRequest engine'e gelen transaction oluşturma isteği
type CreateTransactionRequest struct {
	UserID      int             `json:"user_id"`
	Type        TransactionType `json:"type"`
	Points      int             `json:"points"`
	Description string          `json:"description"`
	OrderID     *string         `json:"order_id"`
	ExpiresAt   *time.Time      `json:"expires_at"`
}

// EarnRequest puan kazanma isteği (REST)
type EarnRequest struct {
	UserID      int     `json:"user_id"`
	Points      int     `json:"points"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	OrderID     *string `json:"order_id"`
	ExpiresAt   *string `json:"expires_at"`
}

// RedeemRequest puan harcama isteği (REST)
type RedeemRequest struct {
	UserID      int     `json:"user_id"`
	Points      int     `json:"points"`
	Description string  `json:"description"`
	OrderID     *string `json:"order_id"`
}

// AdjustRequest manuel puan düzeltme isteği (admin)
type AdjustRequest struct {
	UserID      int    `json:"user_id"`
	AdminUserID int    `json:"admin_user_id"`
	Points      int    `json:"points"` // negatif olabilir
	Reason      string `json:"reason"`
}

// SyncTransaction istemci tarafında biriken tek bir transaction kaydı
type SyncTransaction struct {
	Type        string  `json:"type"`
	Points      int     `json:"points"`
	Description string  `json:"description"`
	OrderID     *string `json:"order_id"`
	ExpiresAt   *string `json:"expires_at"`
}

// SyncRequest istemciden gelen toplu senkronizasyon isteği
type SyncRequest struct {
	UserID       int               `json:"user_id"`
	Transactions []SyncTransaction `json:"transactions"`
}

// SyncResult toplu senkronizasyon sonucu
type SyncResult struct {
	Synced     int      `json:"synced"`
	Total      int      `json:"total"`
	Errors     []string `json:"errors"`
	NewBalance int      `json:"new_balance"`
}

// RegisterAccountRequest loyalty hesabı açma isteği
type RegisterAccountRequest struct {
	UserID int `json:"user_id"`
}

// ReferralBonusRequest referans bonusu isteği
type ReferralBonusRequest struct {
	UserID         int `json:"user_id"`
	ReferredUserID int `json:"referred_user_id"`
}

// BirthdayBonusRequest doğum günü bonusu isteği
type BirthdayBonusRequest struct {
	UserID int `json:"user_id"`
}

// TransactionResponse transaction oluşturma yanıtı
type TransactionResponse struct {
	Success       bool `json:"success"`
	TransactionID int  `json:"transaction_id"`
	NewBalance    int  `json:"new_balance"`
}
