package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/onerilhan/go-loyalty-api/internal/config"
	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// OrderService sipariş yaşam döngüsünü ledger'a bağlayan adaptör
// Tek "earner" budur: order_points_meta bayrakları sayesinde aynı sipariş
// için iki kez puan verilmez, iki kez iade yapılmaz. Bayraklar sadece
// engine çağrısı başarılı olduktan SONRA set edilir
type OrderService struct {
	orderRepo       interfaces.OrderRepositoryInterface
	transactionRepo interfaces.TransactionRepositoryInterface
	pointsService   interfaces.PointsServiceInterface
	cfg             *config.Config
}

// NewOrderService yeni service oluşturur
func NewOrderService(
	orderRepo interfaces.OrderRepositoryInterface,
	transactionRepo interfaces.TransactionRepositoryInterface,
	pointsService interfaces.PointsServiceInterface,
	cfg *config.Config,
) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		transactionRepo: transactionRepo,
		pointsService:   pointsService,
		cfg:             cfg,
	}
}

// OnOrderCompleted sipariş tamamlanınca puan kazandırır
//
// Kazanılacak puan = floor(order_total * points_rate). Sonuç 0 veya daha
// azsa kayıt yazılmaz. "points_awarded" bayrağı set'liyse no-op (idempotent)
func (s *OrderService) OnOrderCompleted(orderID string) error {
	meta, err := s.orderRepo.GetByOrderID(orderID)
	if err != nil {
		return fmt.Errorf("sipariş kaydı alınamadı: %w", err)
	}

	if meta.PointsAwarded {
		log.Debug().Str("order_id", orderID).Msg("Sipariş puanı zaten verilmiş, atlanıyor")
		return nil
	}

	rate := decimal.NewFromFloat(s.cfg.PointsRate)
	points := int(meta.OrderTotal.Mul(rate).IntPart())
	if points <= 0 {
		log.Debug().Str("order_id", orderID).Msg("Sipariş tutarı puan kazandırmıyor, atlanıyor")
		return nil
	}

	expiresAt := time.Now().AddDate(0, 0, s.cfg.ExpirationDays)
	tx, err := s.pointsService.CreateTransaction(&models.CreateTransactionRequest{
		UserID:      meta.UserID,
		Type:        models.TypeEarn,
		Points:      points,
		Description: fmt.Sprintf("Points earned for order %s", orderID),
		OrderID:     &orderID,
		ExpiresAt:   &expiresAt,
	})
	if err != nil {
		return fmt.Errorf("sipariş puanı kazandırılamadı: %w", err)
	}

	// Bayrak sadece engine başarısından sonra
	if err := s.orderRepo.MarkAwarded(orderID, points); err != nil {
		return fmt.Errorf("sipariş işaretlenemedi: %w", err)
	}

	log.Info().
		Str("order_id", orderID).
		Int("user_id", meta.UserID).
		Int("points", points).
		Int("transaction_id", tx.ID).
		Msg("🛒 Sipariş puanı kazandırıldı")

	return nil
}

// OnOrderCancelled sipariş iptalinde puanları telafi eder
//
// İki yönlü telafi: siparişte harcanan puan varsa refund kaydıyla iade
// edilir; siparişten kazanılan puan varsa negatif adjust kaydıyla geri
// alınır ve orijinal earn kaydı [REVERSED] olarak işaretlenir. En az bir
// telafi kaydı yazıldıysa "points_refunded" bayrağı set edilir
func (s *OrderService) OnOrderCancelled(orderID string) error {
	meta, err := s.orderRepo.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			log.Debug().Str("order_id", orderID).Msg("Sipariş puan kaydı yok, iptal atlanıyor")
			return nil
		}
		return fmt.Errorf("sipariş kaydı alınamadı: %w", err)
	}

	if meta.PointsRefunded {
		log.Debug().Str("order_id", orderID).Msg("Sipariş iadesi zaten işlenmiş, atlanıyor")
		return nil
	}

	compensations := 0

	// 1) Harcanan puanı iade et: iade edilen puan yeni geçerlilik süresiyle
	// kazanılmış gibi yaşar
	if meta.PointsRedeemed > 0 {
		expiresAt := time.Now().AddDate(0, 0, s.cfg.ExpirationDays)
		_, err := s.pointsService.CreateTransaction(&models.CreateTransactionRequest{
			UserID:      meta.UserID,
			Type:        models.TypeRefund,
			Points:      meta.PointsRedeemed,
			Description: fmt.Sprintf("Points refunded for cancelled order %s", orderID),
			OrderID:     &orderID,
			ExpiresAt:   &expiresAt,
		})
		if err != nil {
			return fmt.Errorf("puan iadesi yapılamadı: %w", err)
		}
		compensations++
	}

	// 2) Kazanılan puanı geri al
	earnTx, err := s.transactionRepo.GetEarnByOrderID(meta.UserID, orderID)
	if err != nil {
		return fmt.Errorf("earn kaydı aranamadı: %w", err)
	}
	if earnTx != nil {
		// Reversal ayrı bir order_id taşır ki duplicate kontrolü orijinal
		// earn'le çakışmasın. Negatif adjust'a expiry verilmez: süresi dolan
		// negatif kayıt bakiye formülünden düşer ve geri alınan puanları
		// sessizce geri getirirdi
		reversalOrderID := orderID + "_reverse"
		_, err := s.pointsService.CreateTransaction(&models.CreateTransactionRequest{
			UserID:      meta.UserID,
			Type:        models.TypeAdjust,
			Points:      -earnTx.Points,
			Description: fmt.Sprintf("Points reversed for cancelled order %s", orderID),
			OrderID:     &reversalOrderID,
		})
		if err != nil {
			return fmt.Errorf("puan geri alınamadı: %w", err)
		}

		if err := s.transactionRepo.MarkReversed(earnTx.ID); err != nil {
			// Reversal ledger'da; işaret kozmetiktir, iptali durdurmaz
			log.Warn().Err(err).Int("transaction_id", earnTx.ID).Msg("Geri alma işareti eklenemedi")
		}
		compensations++
	}

	if compensations == 0 {
		log.Debug().Str("order_id", orderID).Msg("Telafi edilecek puan hareketi yok")
		return nil
	}

	if err := s.orderRepo.MarkRefunded(orderID, time.Now()); err != nil {
		return fmt.Errorf("sipariş iade işareti kaydedilemedi: %w", err)
	}

	log.Info().
		Str("order_id", orderID).
		Int("user_id", meta.UserID).
		Int("compensations", compensations).
		Msg("↩️ Sipariş iptali telafi edildi")

	return nil
}

// RecordRedemption redeem sonrası sipariş meta kaydını günceller
// İndirim = puan / redemption_rate; iptal durumunda iade tutarının kaynağıdır
func (s *OrderService) RecordRedemption(orderID string, userID, points int) error {
	meta := &models.OrderPointsMeta{
		OrderID: orderID,
		UserID:  userID,
	}
	if err := s.orderRepo.Upsert(meta); err != nil {
		return fmt.Errorf("sipariş kaydı oluşturulamadı: %w", err)
	}

	discount := decimal.NewFromInt(int64(points)).
		Div(decimal.NewFromFloat(s.cfg.RedemptionRate)).
		Round(2)

	if err := s.orderRepo.MarkRedeemed(orderID, points, discount.String()); err != nil {
		return fmt.Errorf("sipariş redeem bilgisi kaydedilemedi: %w", err)
	}

	return nil
}
