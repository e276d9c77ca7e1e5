// internal/interfaces/service.go
package interfaces

import "github.com/onerilhan/go-loyalty-api/internal/models"

// PointsServiceInterface transaction engine'in sunduğu işlemler
type PointsServiceInterface interface {
	// CreateTransaction ledger'a yeni kayıt ekler (duplicate suppression ile)
	CreateTransaction(req *models.CreateTransactionRequest) (*models.Transaction, error)

	// RegisterAccount loyalty hesabı açar ve kayıt bonusunu verir
	RegisterAccount(userID int) (*models.Transaction, error)

	// AwardReferralBonus referans bonusu verir
	AwardReferralBonus(userID, referredUserID int) (*models.Transaction, error)

	// AwardBirthdayBonus doğum günü bonusu verir (yılda bir kez)
	AwardBirthdayBonus(userID int) (*models.Transaction, error)

	// AdjustPoints manuel düzeltme yapar ve audit kaydı yazar
	AdjustPoints(req *models.AdjustRequest) (*models.Transaction, error)

	// SyncTransactions istemci transaction'larını toplu işler
	SyncTransactions(req *models.SyncRequest) (*models.SyncResult, error)

	// GetTransactions kullanıcının transaction geçmişini getirir
	GetTransactions(userID int, limit, offset int) ([]*models.Transaction, error)
}

// BalanceServiceInterface bakiye okuma işlemleri
type BalanceServiceInterface interface {
	// GetBalance kullanıcının güncel bakiyesini döner; hata durumunda
	// son cache değerine, o da yoksa 0'a düşer — asla hata fırlatmaz
	GetBalance(userID int, forceRecalculate bool) int

	// GetBalanceBreakdown bakiye bileşenlerini getirir
	GetBalanceBreakdown(userID int) (*models.BalanceBreakdown, error)

	// GetLifetimeStats toplam kazanç/harcama istatistiklerini getirir
	GetLifetimeStats(userID int) (*models.LifetimeStats, error)
}

// SweeperServiceInterface expire tarama işlemleri
type SweeperServiceInterface interface {
	// SweepUser kullanıcının süresi dolan earn kayıtlarını expire eder
	SweepUser(userID int) (*models.SweepResult, error)

	// SweepAll ledger'daki tüm kullanıcıları tarar
	SweepAll() (*models.SweepAllResult, error)

	// ExpiringSoon verilen gün içinde expire olacak kayıtları getirir
	ExpiringSoon(userID int, days int) ([]*models.Transaction, error)
}

// OrderServiceInterface sipariş yaşam döngüsü adaptörü
type OrderServiceInterface interface {
	// OnOrderCompleted sipariş tamamlanınca puan kazandırır (idempotent)
	OnOrderCompleted(orderID string) error

	// OnOrderCancelled sipariş iptalinde puanları iade eder/geri alır (idempotent)
	OnOrderCancelled(orderID string) error

	// RecordRedemption redeem sonrası sipariş meta kaydını günceller
	RecordRedemption(orderID string, userID, points int) error
}

// FailureTrackerInterface engine başarısızlıklarının operasyonel takibi
// Engine çağrılarını asla bloklamaz veya başarısızlığa uğratmaz
type FailureTrackerInterface interface {
	// RecordFailure sayacı artırır, eşik aşılırsa alert'i aktifler
	RecordFailure(context, message string)

	// RecordSuccess alert'i temizler ve sayacı sıfırlar
	RecordSuccess()

	// State güncel durumu döner
	State() *models.AlertState

	// Dismiss aktif alert'i kapatır (sayaç korunur)
	Dismiss()
}
