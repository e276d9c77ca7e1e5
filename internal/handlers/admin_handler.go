package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/auth"
	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/middleware"
	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// AdminHandler admin HTTP isteklerini yönetir
type AdminHandler struct {
	pointsService  interfaces.PointsServiceInterface
	sweeperService interfaces.SweeperServiceInterface
	tracker        interfaces.FailureTrackerInterface
}

// NewAdminHandler yeni handler oluşturur
func NewAdminHandler(
	pointsService interfaces.PointsServiceInterface,
	sweeperService interfaces.SweeperServiceInterface,
	tracker interfaces.FailureTrackerInterface,
) *AdminHandler {
	return &AdminHandler{
		pointsService:  pointsService,
		sweeperService: sweeperService,
		tracker:        tracker,
	}
}

// Adjust manuel puan düzeltme endpoint'i (audit kaydıyla)
func (h *AdminHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req models.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	// Token'daki çağıran bilgisi audit için kullanılabilir
	if claims, ok := r.Context().Value(middleware.CallerContextKey).(*auth.Claims); ok {
		log.Info().
			Str("service", claims.ServiceName).
			Int("user_id", req.UserID).
			Int("points", req.Points).
			Msg("Manuel puan düzeltmesi isteniyor")
	}

	tx, err := h.pointsService.AdjustPoints(&req)
	if err != nil {
		log.Error().Err(err).Int("user_id", req.UserID).Msg("Puan düzeltmesi başarısız")
		respondError(w, statusForError(err), err)
		return
	}

	respondJSON(w, http.StatusCreated, tx, "Puan düzeltmesi kaydedildi")
}

// SweepUser tek kullanıcının süresi dolan puanlarını expire eder
func (h *AdminHandler) SweepUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(r)
	if !ok {
		http.Error(w, "Geçersiz user_id", http.StatusBadRequest)
		return
	}

	result, err := h.sweeperService.SweepUser(userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("Expire taraması başarısız")
		respondError(w, statusForError(err), err)
		return
	}

	respondJSON(w, http.StatusOK, result, "Expire taraması tamamlandı")
}

// SweepAll tüm kullanıcıları tarar
func (h *AdminHandler) SweepAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweeperService.SweepAll()
	if err != nil {
		log.Error().Err(err).Msg("Toplu expire taraması başarısız")
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, result, "Toplu expire taraması tamamlandı")
}

// GetAlert failure tracker durumunu döner
func (h *AdminHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.tracker.State(), "Alert durumu getirildi")
}

// DismissAlert aktif alert'i kapatır (sayaç korunur)
func (h *AdminHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	h.tracker.Dismiss()
	respondJSON(w, http.StatusOK, h.tracker.State(), "Alert kapatıldı")
}
