package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/config"
	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// PointsHandler puan kazanma/harcama HTTP isteklerini yönetir
type PointsHandler struct {
	pointsService  interfaces.PointsServiceInterface
	balanceService interfaces.BalanceServiceInterface
	orderService   interfaces.OrderServiceInterface
	cfg            *config.Config
}

// NewPointsHandler yeni handler oluşturur
func NewPointsHandler(
	pointsService interfaces.PointsServiceInterface,
	balanceService interfaces.BalanceServiceInterface,
	orderService interfaces.OrderServiceInterface,
	cfg *config.Config,
) *PointsHandler {
	return &PointsHandler{
		pointsService:  pointsService,
		balanceService: balanceService,
		orderService:   orderService,
		cfg:            cfg,
	}
}

// statusForError iş hatalarını HTTP status'a çevirir
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidTransactionType),
		errors.Is(err, models.ErrInvalidPoints),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrBonusAlreadyAwarded):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Earn puan kazanma endpoint'i
func (h *PointsHandler) Earn(w http.ResponseWriter, r *http.Request) {
	var req models.EarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	txType := models.TransactionType(req.Type)
	if req.Type == "" {
		txType = models.TypeEarn
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			http.Error(w, "expires_at RFC3339 formatında olmalı", http.StatusBadRequest)
			return
		}
		expiresAt = &parsed
	} else if txType.IsEarning() {
		// Expiry verilmemişse varsayılan geçerlilik süresi uygulanır
		t := time.Now().AddDate(0, 0, h.cfg.ExpirationDays)
		expiresAt = &t
	}

	tx, err := h.pointsService.CreateTransaction(&models.CreateTransactionRequest{
		UserID:      req.UserID,
		Type:        txType,
		Points:      req.Points,
		Description: req.Description,
		OrderID:     req.OrderID,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		log.Error().Err(err).Int("user_id", req.UserID).Msg("Puan kazanma başarısız")
		respondError(w, statusForError(err), err)
		return
	}

	respondJSON(w, http.StatusCreated, models.TransactionResponse{
		Success:       true,
		TransactionID: tx.ID,
		NewBalance:    h.balanceService.GetBalance(req.UserID, true),
	}, "Puan başarıyla eklendi")
}

// Redeem puan harcama endpoint'i
// Yetersiz bakiye storage hatası değil beklenen iş sonucudur: 409 döner
func (h *PointsHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req models.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	if req.Points < h.cfg.MinRedemption {
		respondError(w, http.StatusBadRequest,
			fmt.Errorf("%w: en az %d puan harcanabilir", models.ErrInvalidPoints, h.cfg.MinRedemption))
		return
	}

	tx, err := h.pointsService.CreateTransaction(&models.CreateTransactionRequest{
		UserID:      req.UserID,
		Type:        models.TypeRedeem,
		Points:      req.Points,
		Description: req.Description,
		OrderID:     req.OrderID,
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientBalance) {
			log.Warn().Err(err).Int("user_id", req.UserID).Msg("Yetersiz bakiyeyle redeem denemesi")
		} else {
			log.Error().Err(err).Int("user_id", req.UserID).Msg("Puan harcama başarısız")
		}
		respondError(w, statusForError(err), err)
		return
	}

	// Siparişe bağlı redeem ise meta kaydı güncellenir (iptal iadesi için)
	if req.OrderID != nil && *req.OrderID != "" {
		if err := h.orderService.RecordRedemption(*req.OrderID, req.UserID, req.Points); err != nil {
			log.Warn().Err(err).Str("order_id", *req.OrderID).Msg("Sipariş redeem meta kaydı güncellenemedi")
		}
	}

	respondJSON(w, http.StatusCreated, models.TransactionResponse{
		Success:       true,
		TransactionID: tx.ID,
		NewBalance:    h.balanceService.GetBalance(req.UserID, true),
	}, "Puan başarıyla harcandı")
}

// Sync istemci tarafında biriken transaction'ları toplu işler
func (h *PointsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	result, err := h.pointsService.SyncTransactions(&req)
	if err != nil {
		log.Error().Err(err).Int("user_id", req.UserID).Msg("Sync başarısız")
		respondError(w, statusForError(err), err)
		return
	}

	respondJSON(w, http.StatusOK, result, "Sync tamamlandı")
}

// RegisterAccount yeni loyalty hesabı açar ve varsa kayıt bonusunu verir
func (h *PointsHandler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	tx, err := h.pointsService.RegisterAccount(req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrAccountExists) {
			log.Debug().Int("user_id", req.UserID).Msg("Hesap zaten kayıtlı")
		} else {
			log.Error().Err(err).Int("user_id", req.UserID).Msg("Hesap oluşturulamadı")
		}
		respondError(w, statusForError(err), err)
		return
	}

	resp := models.TransactionResponse{Success: true}
	if tx != nil {
		resp.TransactionID = tx.ID
		resp.NewBalance = h.balanceService.GetBalance(req.UserID, true)
	}
	respondJSON(w, http.StatusCreated, resp, "Hesap oluşturuldu")
}

// ReferralBonus referans bonusu endpoint'i
func (h *PointsHandler) ReferralBonus(w http.ResponseWriter, r *http.Request) {
	var req models.ReferralBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	tx, err := h.pointsService.AwardReferralBonus(req.UserID, req.ReferredUserID)
	if err != nil {
		log.Error().Err(err).Int("user_id", req.UserID).Msg("Referans bonusu verilemedi")
		respondError(w, statusForError(err), err)
		return
	}

	respondJSON(w, http.StatusCreated, models.TransactionResponse{
		Success:       true,
		TransactionID: tx.ID,
		NewBalance:    h.balanceService.GetBalance(req.UserID, true),
	}, "Referans bonusu verildi")
}

// BirthdayBonus doğum günü bonusu endpoint'i (yılda bir kez)
func (h *PointsHandler) BirthdayBonus(w http.ResponseWriter, r *http.Request) {
	var req models.BirthdayBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	tx, err := h.pointsService.AwardBirthdayBonus(req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrBonusAlreadyAwarded) {
			log.Debug().Int("user_id", req.UserID).Msg("Doğum günü bonusu bu yıl zaten verilmiş")
		} else {
			log.Error().Err(err).Int("user_id", req.UserID).Msg("Doğum günü bonusu verilemedi")
		}
		respondError(w, statusForError(err), err)
		return
	}

	respondJSON(w, http.StatusCreated, models.TransactionResponse{
		Success:       true,
		TransactionID: tx.ID,
		NewBalance:    h.balanceService.GetBalance(req.UserID, true),
	}, "Doğum günü bonusu verildi")
}
