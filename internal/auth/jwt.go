package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecret config'den Init ile set edilir
var jwtSecret = []byte("your-secret-key-change-this-in-production")

// Init JWT secret'ını ayarlar (uygulama başlangıcında bir kez çağrılır)
func Init(secret string) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
}

// Claims JWT payload'ını temsil eder
// API'yi kullanıcılar değil servisler çağırır (mağaza backend'i, admin panel);
// claims kim olduklarını ve admin yetkisi taşıyıp taşımadıklarını söyler
type Claims struct {
	ServiceName string `json:"service_name"`
	IsAdmin     bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// GenerateToken çağıran servis için JWT token oluşturur
func GenerateToken(serviceName string, isAdmin bool) (string, error) {
	// Token 24 saat geçerli olacak
	expirationTime := time.Now().Add(24 * time.Hour)

	claims := &Claims{
		ServiceName: serviceName,
		IsAdmin:     isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("token oluşturulamadı: %w", err)
	}

	return tokenString, nil
}

// ValidateToken JWT token'ını doğrular ve claims'i döner
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Signing method kontrolü
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("beklenmeyen signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token parse edilemedi: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("geçersiz token")
}
