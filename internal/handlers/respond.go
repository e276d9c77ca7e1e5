package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/onerilhan/go-loyalty-api/internal/models"
)

// respondJSON başarılı yanıtı standart zarf içinde döner
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
		"message": message,
	})
}

// respondError hatayı reason koduyla birlikte döner
func respondError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   err.Error(),
		"reason":  models.ReasonForError(err),
	})
}
