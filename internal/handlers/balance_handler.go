package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
)

// BalanceHandler bakiye okuma HTTP isteklerini yönetir
type BalanceHandler struct {
	balanceService interfaces.BalanceServiceInterface
	sweeperService interfaces.SweeperServiceInterface
	pointsService  interfaces.PointsServiceInterface
}

// NewBalanceHandler yeni handler oluşturur
func NewBalanceHandler(
	balanceService interfaces.BalanceServiceInterface,
	sweeperService interfaces.SweeperServiceInterface,
	pointsService interfaces.PointsServiceInterface,
) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		sweeperService: sweeperService,
		pointsService:  pointsService,
	}
}

// userIDFromPath mux path değişkeninden user_id'yi parse eder
func userIDFromPath(r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["user_id"])
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// GetBalance kullanıcının güncel bakiyesini döner
// ?force=true cache'i atlayıp yeniden hesaplatır
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(r)
	if !ok {
		http.Error(w, "Geçersiz user_id", http.StatusBadRequest)
		return
	}

	force := r.URL.Query().Get("force") == "true"
	balance := h.balanceService.GetBalance(userID, force)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"balance": balance,
	}, "Bakiye getirildi")
}

// GetBreakdown bakiye bileşenlerini (earned/redeemed/expired) döner
func (h *BalanceHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(r)
	if !ok {
		http.Error(w, "Geçersiz user_id", http.StatusBadRequest)
		return
	}

	breakdown, err := h.balanceService.GetBalanceBreakdown(userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("Bakiye dökümü alınamadı")
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, breakdown, "Bakiye dökümü getirildi")
}

// GetExpiringSoon yakında expire olacak puanları döner (?days=30)
func (h *BalanceHandler) GetExpiringSoon(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(r)
	if !ok {
		http.Error(w, "Geçersiz user_id", http.StatusBadRequest)
		return
	}

	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if parsed, err := strconv.Atoi(daysStr); err == nil && parsed > 0 {
			days = parsed
		}
	}

	transactions, err := h.sweeperService.ExpiringSoon(userID, days)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("Expire listesi alınamadı")
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      userID,
		"days":         days,
		"transactions": transactions,
		"count":        len(transactions),
	}, "Yakında expire olacak puanlar getirildi")
}

// GetTransactions kullanıcının transaction geçmişini döner (pagination ile)
func (h *BalanceHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(r)
	if !ok {
		http.Error(w, "Geçersiz user_id", http.StatusBadRequest)
		return
	}

	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	transactions, err := h.pointsService.GetTransactions(userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("Transaction geçmişi getirilemedi")
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
		"count":        len(transactions),
	}, "İşlem geçmişi başarıyla getirildi")
}
