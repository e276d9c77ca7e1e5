package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
	"github.com/onerilhan/go-loyalty-api/internal/models"
	"github.com/onerilhan/go-loyalty-api/internal/services"
)

// WebhookHandler mağaza backend'inden gelen sipariş olaylarını karşılar
// Olaylar worker queue'ya devredilir; adaptör idempotent olduğu için aynı
// webhook'un tekrar gönderilmesi zararsızdır
type WebhookHandler struct {
	orderRepo interfaces.OrderRepositoryInterface
	queue     *services.OrderEventQueue
}

// NewWebhookHandler yeni handler oluşturur
func NewWebhookHandler(orderRepo interfaces.OrderRepositoryInterface, queue *services.OrderEventQueue) *WebhookHandler {
	return &WebhookHandler{
		orderRepo: orderRepo,
		queue:     queue,
	}
}

// OrderCompleted sipariş tamamlanma webhook'u
// Meta kaydı senkron yazılır, puan kazandırma queue üzerinden işlenir
func (h *WebhookHandler) OrderCompleted(w http.ResponseWriter, r *http.Request) {
	var event models.OrderCompletedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	if event.OrderID == "" || event.UserID <= 0 {
		http.Error(w, "order_id ve user_id gerekli", http.StatusBadRequest)
		return
	}

	// Sipariş tutarı queue işlensin diye önce meta kaydına yazılır
	meta := &models.OrderPointsMeta{
		OrderID:    event.OrderID,
		UserID:     event.UserID,
		OrderTotal: event.OrderTotal,
	}
	if err := h.orderRepo.Upsert(meta); err != nil {
		log.Error().Err(err).Str("order_id", event.OrderID).Msg("Sipariş meta kaydı yazılamadı")
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	resultChan := h.queue.AddJob(services.EventOrderCompleted, event.OrderID)
	result := <-resultChan

	if result.Error != nil {
		log.Error().Err(result.Error).Str("order_id", event.OrderID).Msg("Sipariş tamamlanma olayı işlenemedi")
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_id": event.OrderID,
	}, "Sipariş olayı işlendi")
}

// OrderCancelled sipariş iptal webhook'u
func (h *WebhookHandler) OrderCancelled(w http.ResponseWriter, r *http.Request) {
	var event models.OrderCancelledEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Geçersiz JSON formatı", http.StatusBadRequest)
		return
	}

	if event.OrderID == "" {
		http.Error(w, "order_id gerekli", http.StatusBadRequest)
		return
	}

	resultChan := h.queue.AddJob(services.EventOrderCancelled, event.OrderID)
	result := <-resultChan

	if result.Error != nil {
		log.Error().Err(result.Error).Str("order_id", event.OrderID).Msg("Sipariş iptal olayı işlenemedi")
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_id": event.OrderID,
	}, "Sipariş iptali işlendi")
}
