// internal/interfaces/repository.go
package interfaces

import (
	"time"

	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// TransactionRepositoryInterface ledger okuma işlemleri için interface
// Yazma yolları (insert, duplicate kontrol, expire işaretleme) atomiklik
// gerektirdiği için service katmanında db.WithTransaction içinde çalışır
type TransactionRepositoryInterface interface {
	// GetByID ID ile transaction getirir
	GetByID(id int) (*models.Transaction, error)

	// GetByUserID kullanıcının transaction'larını getirir (pagination ile)
	GetByUserID(userID int, limit, offset int) ([]*models.Transaction, error)

	// GetEarnByOrderID siparişe bağlı orijinal earn kaydını bulur
	GetEarnByOrderID(userID int, orderID string) (*models.Transaction, error)

	// GetExpiringSoon yakında expire olacak earn kayıtlarını getirir
	GetExpiringSoon(userID int, until time.Time) ([]*models.Transaction, error)

	// GetDistinctUserIDs ledger'da kaydı olan tüm kullanıcıları döner
	GetDistinctUserIDs() ([]int, error)

	// MarkReversed kaydın açıklamasına geri alındı işareti ekler
	MarkReversed(id int) error

	// GetLifetimeStats kullanıcının toplam kazanç/harcama istatistiklerini getirir
	GetLifetimeStats(userID int) (*models.LifetimeStats, error)
}

// OrderRepositoryInterface sipariş puan meta kayıtları için interface
type OrderRepositoryInterface interface {
	// GetByOrderID sipariş meta kaydını getirir
	GetByOrderID(orderID string) (*models.OrderPointsMeta, error)

	// Upsert sipariş meta kaydını oluşturur veya günceller
	Upsert(meta *models.OrderPointsMeta) error

	// MarkAwarded siparişi "puan verildi" olarak işaretler
	MarkAwarded(orderID string, points int) error

	// MarkRedeemed siparişte harcanan puanı ve indirimi kaydeder
	MarkRedeemed(orderID string, points int, discount string) error

	// MarkRefunded siparişi "iade işlendi" olarak işaretler
	MarkRefunded(orderID string, at time.Time) error
}

// AuditRepositoryInterface manuel düzeltme audit kayıtları için interface
type AuditRepositoryInterface interface {
	// Create yeni audit kaydı oluşturur
	Create(entry *models.AuditLog) error

	// GetByUser kullanıcıya ait audit kayıtlarını getirir
	GetByUser(userID int, limit, offset int) ([]*models.AuditLog, error)
}

// AlertRepositoryInterface failure tracker durumunun kalıcılığı için interface
type AlertRepositoryInterface interface {
	// Load kayıtlı durumu getirir (kayıt yoksa sıfır durum döner)
	Load() (*models.AlertState, error)

	// Save durumu kaydeder
	Save(state *models.AlertState) error
}
