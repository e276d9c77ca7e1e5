package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/cache"
	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// BalanceService bakiye okuma işlemleri
// Bakiye türetilmiş bir değerdir; cache sadece advisory'dir ve doğruluğun
// önemli olduğu her yerde (redeem kontrolü, sweep) atlanır
type BalanceService struct {
	transactionRepo interfaces.TransactionRepositoryInterface
	sweeper         interfaces.SweeperServiceInterface
	balanceCache    *cache.BalanceCache
	database        *sql.DB
}

// NewBalanceService yeni service oluşturur
func NewBalanceService(
	transactionRepo interfaces.TransactionRepositoryInterface,
	sweeper interfaces.SweeperServiceInterface,
	balanceCache *cache.BalanceCache,
	database *sql.DB,
) *BalanceService {
	return &BalanceService{
		transactionRepo: transactionRepo,
		sweeper:         sweeper,
		balanceCache:    balanceCache,
		database:        database,
	}
}

// GetBalance kullanıcının güncel bakiyesini döner
//
// forceRecalculate false ise ve 300 saniyeden genç bir cache girdisi varsa
// onu döner. Aksi halde önce kullanıcının süresi dolan puanları taranır,
// sonra bakiye yeniden hesaplanıp cache'lenir.
//
// Hesaplama başarısız olursa son cache değerine, o da yoksa 0'a düşer;
// çağırana asla hata veya negatif bakiye yansıtılmaz
func (s *BalanceService) GetBalance(userID int, forceRecalculate bool) int {
	ctx := context.Background()

	if !forceRecalculate {
		if entry, err := s.balanceCache.Get(ctx, userID); err == nil {
			return entry.Balance
		}
	}

	// Önce tarama: süresi dolan earn kayıtları expire edilir ki ledger'da
	// kalıcı expire kaydı oluşsun
	if _, err := s.sweeper.SweepUser(userID); err != nil {
		log.Warn().Err(err).Int("user_id", userID).Msg("Expire taraması başarısız, hesaplamaya devam ediliyor")
	}

	breakdown, err := calculateBalance(s.database, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("Bakiye hesaplanamadı, cache'e düşülüyor")
		if entry, cacheErr := s.balanceCache.Get(ctx, userID); cacheErr == nil {
			return entry.Balance
		}
		return 0
	}

	if err := s.balanceCache.Set(ctx, userID, breakdown.Balance); err != nil {
		log.Warn().Err(err).Int("user_id", userID).Msg("Bakiye cache'lenemedi")
	}

	return breakdown.Balance
}

// GetBalanceBreakdown bakiye bileşenlerini getirir (cache atlanır)
func (s *BalanceService) GetBalanceBreakdown(userID int) (*models.BalanceBreakdown, error) {
	breakdown, err := calculateBalance(s.database, userID)
	if err != nil {
		return nil, fmt.Errorf("bakiye dökümü hesaplanamadı: %w", err)
	}
	return breakdown, nil
}

// GetLifetimeStats kullanıcının tüm zamanlardaki toplamlarını getirir
func (s *BalanceService) GetLifetimeStats(userID int) (*models.LifetimeStats, error) {
	stats, err := s.transactionRepo.GetLifetimeStats(userID)
	if err != nil {
		return nil, fmt.Errorf("kullanıcı istatistikleri alınamadı: %w", err)
	}
	return stats, nil
}
