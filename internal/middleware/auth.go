package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/auth"
)

// ContextKey middleware'de context için key tipi
type ContextKey string

const CallerContextKey ContextKey = "caller"

// AuthMiddleware JWT token kontrolü yapar (Gorilla Mux için middleware)
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Warn().
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Authorization header eksik")
			http.Error(w, "Authorization header gerekli", http.StatusUnauthorized)
			return
		}

		// "Bearer " prefix'ini kontrol et
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			log.Warn().
				Str("path", r.URL.Path).
				Msg("Geçersiz Authorization format")
			http.Error(w, "Authorization format: 'Bearer <token>'", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(tokenParts[1])
		if err != nil {
			log.Warn().
				Err(err).
				Str("path", r.URL.Path).
				Msg("Token doğrulama başarısız")
			http.Error(w, "Geçersiz token", http.StatusUnauthorized)
			return
		}

		// Çağıran servis bilgisini context'e ekle
		ctx := context.WithValue(r.Context(), CallerContextKey, claims)
		r = r.WithContext(ctx)

		log.Debug().
			Str("service", claims.ServiceName).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg("🔐 Authentication successful")

		next.ServeHTTP(w, r)
	})
}

// AdminOnlyMiddleware sadece admin yetkili token'lara izin verir
// AuthMiddleware'den sonra zincire eklenmelidir
func AdminOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(CallerContextKey).(*auth.Claims)
		if !ok || !claims.IsAdmin {
			log.Warn().
				Str("path", r.URL.Path).
				Msg("Admin yetkisi olmayan erişim denemesi")
			http.Error(w, "Admin yetkisi gerekli", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
