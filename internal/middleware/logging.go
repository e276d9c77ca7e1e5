package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/utils"
)

// responseWriter status code ve response boyutunu yakalar
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	responseSize int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.responseSize += int64(size)
	return size, err
}

// skipPaths log'lanmayacak path'ler (health check gibi)
var skipPaths = map[string]bool{
	"/health":      true,
	"/favicon.ico": true,
}

// RequestLoggingMiddleware HTTP isteklerini request ID ile loglar
func RequestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		startTime := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default 200
		}

		// Request ID oluştur (tracking için)
		requestID := uuid.New().String()
		wrapped.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(startTime)

		// Status code'a göre log level'ı ayarla
		logEvent := log.Info()
		switch {
		case wrapped.statusCode >= 500:
			logEvent = log.Error()
		case wrapped.statusCode >= 400:
			logEvent = log.Warn()
		}

		logEvent.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("client_ip", utils.GetClientIP(r)).
			Int("status_code", wrapped.statusCode).
			Int64("response_size", wrapped.responseSize).
			Dur("duration", duration).
			Msg("Request completed")
	})
}
