package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/cache"
	"github.com/onerilhan/go-loyalty-api/internal/config"
	"github.com/onerilhan/go-loyalty-api/internal/db"
	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// PointsService transaction engine'in business logic'i
// Tüm yazma yolları tek bir database transaction içinde, kullanıcının
// loyalty_accounts satırı FOR UPDATE ile kilitlenerek çalışır; böylece aynı
// kullanıcı için eşzamanlı redeem'ler bakiyeyi aşamaz
type PointsService struct {
	transactionRepo interfaces.TransactionRepositoryInterface
	auditRepo       interfaces.AuditRepositoryInterface
	balanceCache    *cache.BalanceCache
	tracker         interfaces.FailureTrackerInterface
	cfg             *config.Config
	database        *sql.DB
}

// NewPointsService yeni service oluşturur
func NewPointsService(
	transactionRepo interfaces.TransactionRepositoryInterface,
	auditRepo interfaces.AuditRepositoryInterface,
	balanceCache *cache.BalanceCache,
	tracker interfaces.FailureTrackerInterface,
	cfg *config.Config,
	database *sql.DB,
) *PointsService {
	return &PointsService{
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		balanceCache:    balanceCache,
		tracker:         tracker,
		cfg:             cfg,
		database:        database,
	}
}

// validateRequest temel doğrulamaları yapar; storage'a hiç dokunmaz
// ve failure tracker'a kaydedilmez
func (s *PointsService) validateRequest(req *models.CreateTransactionRequest) error {
	if req.UserID <= 0 {
		return models.ErrUserNotFound
	}
	if !req.Type.IsValid() {
		return fmt.Errorf("%w: %s", models.ErrInvalidTransactionType, req.Type)
	}
	// Sadece adjust negatif olabilir (manuel düzeltme / earn-reversal)
	if req.Points < 0 && req.Type != models.TypeAdjust {
		return fmt.Errorf("%w: %s tipi için negatif puan", models.ErrInvalidPoints, req.Type)
	}
	if req.Points == 0 {
		return fmt.Errorf("%w: puan sıfır olamaz", models.ErrInvalidPoints)
	}
	return nil
}

// CreateTransaction ledger'a yeni kayıt ekler
//
// Tek atomik birim olarak çalışır:
//  1. Kullanıcının hesap satırını kilitle (hesap yoksa validation hatası)
//  2. redeem ise bakiyeyi cache'i atlayarak yeniden hesapla; yetersizse reddet
//  3. Duplicate suppression: aynı (user, order, type, points) pencere içinde
//     varsa mevcut kaydı başarı olarak döndür, yeni satır yazma
//  4. Satırı ekle
//  5. Commit sonrası bakiye cache'ini geçersiz kıl
//
// Herhangi bir adım başarısız olursa tamamı geri alınır: yarım satır da,
// bayat cache yazımı da kalmaz
func (s *PointsService) CreateTransaction(req *models.CreateTransactionRequest) (*models.Transaction, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	var result *models.Transaction
	var replayed bool

	err := db.WithTransaction(s.database, func(tx *sql.Tx) error {
		txRepo := db.NewTransactionRepository(tx)

		// 1. Hesap satırını kilitle: aynı kullanıcının tüm engine yazımları
		// bu satır üzerinden serialize olur
		var lockedID int
		err := txRepo.QueryRow(`
			SELECT user_id FROM loyalty_accounts WHERE user_id = $1 FOR UPDATE
		`, req.UserID).Scan(&lockedID)

		if err == sql.ErrNoRows {
			return models.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("hesap kilidi alınamadı: %w", err)
		}

		// 2. Redeem için bakiye kontrolü (cache atlanır, aynı tx içinde)
		if req.Type == models.TypeRedeem {
			breakdown, err := calculateBalance(txRepo, req.UserID)
			if err != nil {
				return fmt.Errorf("bakiye hesaplanamadı: %w", err)
			}
			if breakdown.Balance < req.Points {
				return fmt.Errorf("%w: mevcut %d, istenen %d",
					models.ErrInsufficientBalance, breakdown.Balance, req.Points)
			}
		}

		// 3a. Order bazlı duplicate kontrolü: earn/redeem için 10 dakika,
		// diğer tipler için 5 dakikalık pencere
		if req.OrderID != nil && *req.OrderID != "" {
			cutoff := time.Now().Add(-req.Type.DuplicateWindow())
			existing, err := scanLedgerRow(txRepo.QueryRow(`
				SELECT id, user_id, type, points, description, order_id, created_at, expires_at, is_expired
				FROM point_transactions
				WHERE user_id = $1 AND order_id = $2 AND type = $3 AND points = $4 AND created_at > $5
				LIMIT 1
			`, req.UserID, *req.OrderID, req.Type, req.Points, cutoff))

			if err != nil && err != sql.ErrNoRows {
				return fmt.Errorf("duplicate kontrolü başarısız: %w", err)
			}
			if err == nil {
				// Idempotent replay: mevcut kaydı başarı olarak döndür
				result = existing
				replayed = true
				return nil
			}
		}

		// 3b. Bonus tipleri için günlük duplicate kontrolü (order_id olmasa da).
		// Doğum günü için asıl "yılda bir" politikası AwardBirthdayBonus'ta;
		// buradaki kontrol sadece retry edilen istekleri bastırır
		if req.Type.IsBonus() {
			existing, err := scanLedgerRow(txRepo.QueryRow(`
				SELECT id, user_id, type, points, description, order_id, created_at, expires_at, is_expired
				FROM point_transactions
				WHERE user_id = $1 AND type = $2 AND points = $3 AND created_at::date = CURRENT_DATE
				LIMIT 1
			`, req.UserID, req.Type, req.Points))

			if err != nil && err != sql.ErrNoRows {
				return fmt.Errorf("bonus duplicate kontrolü başarısız: %w", err)
			}
			if err == nil {
				result = existing
				replayed = true
				return nil
			}
		}

		// 4. Transaction kaydını oluştur
		created := &models.Transaction{
			UserID:      req.UserID,
			Type:        req.Type,
			Points:      req.Points,
			Description: req.Description,
			OrderID:     req.OrderID,
			ExpiresAt:   req.ExpiresAt,
		}

		err = txRepo.QueryRow(`
			INSERT INTO point_transactions (user_id, type, points, description, order_id, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`, req.UserID, req.Type, req.Points, req.Description, req.OrderID, req.ExpiresAt,
		).Scan(&created.ID, &created.CreatedAt)

		if err != nil {
			return fmt.Errorf("transaction kaydı oluşturulamadı: %w", err)
		}

		result = created
		return nil // SUCCESS - transaction commit edilecek
	})

	if err != nil {
		if isBusinessError(err) {
			// Beklenen iş sonucu / doğrulama: failure tracker'a yazılmaz
			return nil, err
		}
		s.tracker.RecordFailure("create_transaction", err.Error())
		return nil, err
	}

	if replayed {
		// Replay de başarılı bir engine sonucudur; failure sayacı sıfırlanır
		s.tracker.RecordSuccess()
		log.Warn().
			Int("user_id", req.UserID).
			Str("type", string(req.Type)).
			Int("existing_id", result.ID).
			Msg("Duplicate transaction engellendi, mevcut kayıt döndürüldü")
		return result, nil
	}

	// 5. Bakiye cache'ini geçersiz kıl (sadece gerçekten yazdıysak)
	if err := s.balanceCache.Invalidate(context.Background(), req.UserID); err != nil {
		// Cache advisory'dir; TTL zaten 300s içinde düşürür
		log.Warn().Err(err).Int("user_id", req.UserID).Msg("Bakiye cache'i silinemedi")
	}

	s.tracker.RecordSuccess()

	log.Info().
		Int("transaction_id", result.ID).
		Int("user_id", req.UserID).
		Str("type", string(req.Type)).
		Int("points", req.Points).
		Msg("✅ Transaction kaydedildi")

	return result, nil
}

// RegisterAccount yeni loyalty hesabı açar ve kayıt bonusunu verir
// Hesap zaten varsa ErrAccountExists döner; bonus ikinci kez verilmez
func (s *PointsService) RegisterAccount(userID int) (*models.Transaction, error) {
	if userID <= 0 {
		return nil, models.ErrUserNotFound
	}

	result, err := s.database.Exec(`
		INSERT INTO loyalty_accounts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		s.tracker.RecordFailure("register_account", err.Error())
		return nil, fmt.Errorf("hesap oluşturulamadı: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("hesap oluşturma sonucu kontrol edilemedi: %w", err)
	}
	if rowsAffected == 0 {
		return nil, models.ErrAccountExists
	}

	log.Info().Int("user_id", userID).Msg("🆕 Loyalty hesabı oluşturuldu")

	if s.cfg.SignupBonus <= 0 {
		return nil, nil
	}

	expiresAt := time.Now().AddDate(1, 0, 0)
	return s.CreateTransaction(&models.CreateTransactionRequest{
		UserID:      userID,
		Type:        models.TypeEarn,
		Points:      s.cfg.SignupBonus,
		Description: "Signup bonus",
		ExpiresAt:   &expiresAt,
	})
}

// AwardReferralBonus referans bonusu verir
func (s *PointsService) AwardReferralBonus(userID, referredUserID int) (*models.Transaction, error) {
	if userID <= 0 || referredUserID <= 0 {
		return nil, fmt.Errorf("%w: user_id veya referred_user_id eksik", models.ErrUserNotFound)
	}

	expiresAt := time.Now().AddDate(1, 0, 0)
	return s.CreateTransaction(&models.CreateTransactionRequest{
		UserID:      userID,
		Type:        models.TypeReferral,
		Points:      s.cfg.ReferralBonus,
		Description: fmt.Sprintf("Referral bonus for referring user #%d", referredUserID),
		ExpiresAt:   &expiresAt,
	})
}

// AwardBirthdayBonus doğum günü bonusu verir
// İş politikası: takvim yılında en fazla bir kez
func (s *PointsService) AwardBirthdayBonus(userID int) (*models.Transaction, error) {
	if userID <= 0 {
		return nil, models.ErrUserNotFound
	}

	// Bu yıl zaten verilmiş mi?
	var existingID int
	err := s.database.QueryRow(`
		SELECT id FROM point_transactions
		WHERE user_id = $1 AND type = 'birthday' AND created_at >= date_trunc('year', NOW())
		LIMIT 1
	`, userID).Scan(&existingID)

	if err == nil {
		return nil, models.ErrBonusAlreadyAwarded
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("doğum günü bonus kontrolü başarısız: %w", err)
	}

	expiresAt := time.Now().AddDate(1, 0, 0)
	return s.CreateTransaction(&models.CreateTransactionRequest{
		UserID:      userID,
		Type:        models.TypeBirthday,
		Points:      s.cfg.BirthdayBonus,
		Description: "Birthday bonus",
		ExpiresAt:   &expiresAt,
	})
}

// AdjustPoints manuel düzeltme yapar ve audit kaydı yazar
// Audit kaydı bakiye hesabına hiç girmez; yazılamaması transaction'ı
// geri almaz, sadece log'lanır
func (s *PointsService) AdjustPoints(req *models.AdjustRequest) (*models.Transaction, error) {
	description := req.Reason
	if description == "" {
		description = "Manual adjustment via admin"
	}

	tx, err := s.CreateTransaction(&models.CreateTransactionRequest{
		UserID:      req.UserID,
		Type:        models.TypeAdjust,
		Points:      req.Points,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	auditErr := s.auditRepo.Create(&models.AuditLog{
		UserID:      req.UserID,
		AdminUserID: req.AdminUserID,
		Points:      req.Points,
		Reason:      req.Reason,
	})
	if auditErr != nil {
		log.Error().Err(auditErr).
			Int("user_id", req.UserID).
			Int("admin_user_id", req.AdminUserID).
			Msg("Audit kaydı yazılamadı")
	}

	return tx, nil
}

// SyncTransactions istemci tarafında biriken transaction'ları toplu işler
// Her kayıt engine'den geçer; duplicate'ler sessizce replay edilir
func (s *PointsService) SyncTransactions(req *models.SyncRequest) (*models.SyncResult, error) {
	if req.UserID <= 0 {
		return nil, models.ErrUserNotFound
	}

	result := &models.SyncResult{Total: len(req.Transactions)}

	for _, item := range req.Transactions {
		txType := models.TransactionType(item.Type)
		if item.Type == "" {
			txType = models.TypeEarn
		}

		var expiresAt *time.Time
		if item.ExpiresAt != nil && *item.ExpiresAt != "" {
			parsed, err := time.Parse(time.RFC3339, *item.ExpiresAt)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("geçersiz expires_at formatı: %s", *item.ExpiresAt))
				continue
			}
			expiresAt = &parsed
		}

		_, err := s.CreateTransaction(&models.CreateTransactionRequest{
			UserID:      req.UserID,
			Type:        txType,
			Points:      item.Points,
			Description: item.Description,
			OrderID:     item.OrderID,
			ExpiresAt:   expiresAt,
		})
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Synced++
	}

	// Toplu işlem sonrası güncel bakiye
	breakdown, err := calculateBalance(s.database, req.UserID)
	if err != nil {
		log.Warn().Err(err).Int("user_id", req.UserID).Msg("Sync sonrası bakiye hesaplanamadı")
	} else {
		result.NewBalance = breakdown.Balance
	}

	log.Info().
		Int("user_id", req.UserID).
		Int("synced", result.Synced).
		Int("total", result.Total).
		Int("errors", len(result.Errors)).
		Msg("Sync batch işlendi")

	return result, nil
}

// GetTransactions kullanıcının transaction geçmişini getirir
func (s *PointsService) GetTransactions(userID int, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.transactionRepo.GetByUserID(userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("transaction geçmişi alınamadı: %w", err)
	}

	return transactions, nil
}

// isBusinessError beklenen iş sonuçlarını storage hatalarından ayırır
func isBusinessError(err error) bool {
	return errors.Is(err, models.ErrInsufficientBalance) ||
		errors.Is(err, models.ErrInvalidTransactionType) ||
		errors.Is(err, models.ErrInvalidPoints) ||
		errors.Is(err, models.ErrUserNotFound) ||
		errors.Is(err, models.ErrBonusAlreadyAwarded)
}
