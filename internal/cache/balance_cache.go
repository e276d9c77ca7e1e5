package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// BalanceCache kullanıcı bazlı bakiye cache'i
// Her başarılı ledger yazımında ilgili kullanıcının girdisi silinir;
// girdiler TTL (300s) ile pasif olarak da eskir
type BalanceCache struct {
	cache Cache
	ttl   time.Duration
}

// NewBalanceCache yeni bakiye cache'i oluşturur
func NewBalanceCache(cache Cache, ttl time.Duration) *BalanceCache {
	return &BalanceCache{cache: cache, ttl: ttl}
}

func balanceKey(userID int) string {
	return fmt.Sprintf("points:balance:%d", userID)
}

// Get kullanıcının cache'lenmiş bakiyesini döner
// Girdi yoksa veya eskiyse ErrNotFound döner
func (b *BalanceCache) Get(ctx context.Context, userID int) (*models.CachedBalance, error) {
	raw, err := b.cache.Get(ctx, balanceKey(userID))
	if err != nil {
		return nil, err
	}

	var entry models.CachedBalance
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("bakiye cache girdisi parse edilemedi: %w", err)
	}

	// TTL backend tarafında da uygulanır ama cached_at ile ikinci bir
	// kontrol yapıyoruz; saat farkı olan backend'lere karşı güvence
	if time.Since(entry.CachedAt) >= b.ttl {
		return nil, ErrNotFound
	}

	return &entry, nil
}

// Set bakiyeyi şimdiki zaman damgası ile cache'ler
func (b *BalanceCache) Set(ctx context.Context, userID int, balance int) error {
	entry := models.CachedBalance{Balance: balance, CachedAt: time.Now()}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("bakiye cache girdisi oluşturulamadı: %w", err)
	}
	return b.cache.Set(ctx, balanceKey(userID), raw, b.ttl)
}

// Invalidate kullanıcının bakiye girdisini siler
func (b *BalanceCache) Invalidate(ctx context.Context, userID int) error {
	return b.cache.Delete(ctx, balanceKey(userID))
}
