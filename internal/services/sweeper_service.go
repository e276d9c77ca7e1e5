package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/cache"
	"github.com/onerilhan/go-loyalty-api/internal/db"
	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// SweeperService süresi dolan earn kayıtlarını expire eden tarayıcı
// is_expired bayrağı tam-bir-kez garantisi verir: bir kayıt iki kez
// expire toplamına giremez. Kaynak satır başına değil, tarama başına tek
// bir toplu expire kaydı yazılır
type SweeperService struct {
	transactionRepo interfaces.TransactionRepositoryInterface
	balanceCache    *cache.BalanceCache
	tracker         interfaces.FailureTrackerInterface
	database        *sql.DB
}

// NewSweeperService yeni service oluşturur
func NewSweeperService(
	transactionRepo interfaces.TransactionRepositoryInterface,
	balanceCache *cache.BalanceCache,
	tracker interfaces.FailureTrackerInterface,
	database *sql.DB,
) *SweeperService {
	return &SweeperService{
		transactionRepo: transactionRepo,
		balanceCache:    balanceCache,
		tracker:         tracker,
		database:        database,
	}
}

// SweepUser kullanıcının süresi dolan earn kayıtlarını expire eder
//
// Tek atomik birim: hesap satırı kilitlenir, süresi dolan kayıtlar FOR UPDATE
// ile seçilir, is_expired bayrakları çevrilir ve toplam puanı taşıyan TEK bir
// expire kaydı eklenir. Hiç kayıt yoksa yeni satır yazılmaz
func (s *SweeperService) SweepUser(userID int) (*models.SweepResult, error) {
	var result *models.SweepResult

	err := db.WithTransaction(s.database, func(tx *sql.Tx) error {
		txRepo := db.NewTransactionRepository(tx)

		// Engine ile aynı disiplin: kullanıcı bazlı serialize
		var lockedID int
		err := txRepo.QueryRow(`
			SELECT user_id FROM loyalty_accounts WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&lockedID)

		if err == sql.ErrNoRows {
			return models.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("hesap kilidi alınamadı: %w", err)
		}

		// Süresi dolan, henüz expire edilmemiş earn kayıtları
		rows, err := txRepo.Query(`
			SELECT id, points FROM point_transactions
			WHERE user_id = $1
			AND type = 'earn'
			AND expires_at IS NOT NULL
			AND expires_at <= NOW()
			AND is_expired = FALSE
			FOR UPDATE
		`, userID)
		if err != nil {
			return fmt.Errorf("expire adayları sorgulanamadı: %w", err)
		}
		defer rows.Close()

		var ids []int64
		var totalPoints int
		for rows.Next() {
			var id int64
			var points int
			if err := rows.Scan(&id, &points); err != nil {
				return fmt.Errorf("expire adayı scan hatası: %w", err)
			}
			ids = append(ids, id)
			totalPoints += points
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("expire adayları okunamadı: %w", err)
		}

		if len(ids) == 0 {
			// No-op: yeni kayıt yazmadan güncel bakiyeyi döndür
			breakdown, err := calculateBalance(txRepo, userID)
			if err != nil {
				return err
			}
			result = &models.SweepResult{NewBalance: breakdown.Balance}
			return nil
		}

		// Bayrakları çevir (0→1, bir daha asla geri dönmez)
		_, err = txRepo.Exec(`
			UPDATE point_transactions SET is_expired = TRUE WHERE id = ANY($1)
		`, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("is_expired bayrakları güncellenemedi: %w", err)
		}

		// Kaynak satır sayısından bağımsız TEK bir toplu expire kaydı
		var expireID int
		err = txRepo.QueryRow(`
			INSERT INTO point_transactions (user_id, type, points, description)
			VALUES ($1, 'expire', $2, $3)
			RETURNING id
		`, userID, totalPoints,
			fmt.Sprintf("Points expired across %d earn transactions", len(ids)),
		).Scan(&expireID)
		if err != nil {
			return fmt.Errorf("expire kaydı oluşturulamadı: %w", err)
		}

		breakdown, err := calculateBalance(txRepo, userID)
		if err != nil {
			return err
		}

		result = &models.SweepResult{
			ExpiredCount:  len(ids),
			ExpiredPoints: totalPoints,
			NewBalance:    breakdown.Balance,
		}
		return nil
	})

	if err != nil {
		if !isBusinessError(err) {
			s.tracker.RecordFailure("sweep_user", err.Error())
		}
		return nil, err
	}

	// Commit sonrası güncel bakiyeyi cache'le
	if err := s.balanceCache.Set(context.Background(), userID, result.NewBalance); err != nil {
		log.Warn().Err(err).Int("user_id", userID).Msg("Sweep sonrası bakiye cache'lenemedi")
	}

	if result.ExpiredCount > 0 {
		log.Info().
			Int("user_id", userID).
			Int("expired_count", result.ExpiredCount).
			Int("expired_points", result.ExpiredPoints).
			Int("new_balance", result.NewBalance).
			Msg("⏳ Süresi dolan puanlar expire edildi")
	}

	return result, nil
}

// SweepAll ledger'da kaydı olan tüm kullanıcıları tarar
// Tek kullanıcı hatası toplu taramayı durdurmaz
func (s *SweeperService) SweepAll() (*models.SweepAllResult, error) {
	userIDs, err := s.transactionRepo.GetDistinctUserIDs()
	if err != nil {
		return nil, fmt.Errorf("kullanıcı listesi alınamadı: %w", err)
	}

	total := &models.SweepAllResult{}
	for _, userID := range userIDs {
		result, err := s.SweepUser(userID)
		if err != nil {
			log.Error().Err(err).Int("user_id", userID).Msg("Kullanıcı taraması başarısız, devam ediliyor")
			continue
		}
		total.UsersSwept++
		total.ExpiredCount += result.ExpiredCount
		total.ExpiredPoints += result.ExpiredPoints
	}

	log.Info().
		Int("users_swept", total.UsersSwept).
		Int("expired_count", total.ExpiredCount).
		Int("expired_points", total.ExpiredPoints).
		Msg("Toplu expire taraması tamamlandı")

	return total, nil
}

// ExpiringSoon verilen gün sayısı içinde expire olacak earn kayıtlarını getirir
func (s *SweeperService) ExpiringSoon(userID int, days int) ([]*models.Transaction, error) {
	if days <= 0 {
		days = 30
	}

	until := time.Now().AddDate(0, 0, days)
	transactions, err := s.transactionRepo.GetExpiringSoon(userID, until)
	if err != nil {
		return nil, fmt.Errorf("expire listesi alınamadı: %w", err)
	}

	return transactions, nil
}
