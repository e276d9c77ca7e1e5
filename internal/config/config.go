package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config ortam yapılandırmalarını tutar
type Config struct {
	AppEnv string
	Port   string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisAddr string
	RedisPass string
	RedisDB   int

	JWTSecret string

	// Puan sistemi ayarları
	PointsRate           float64       // 1 TL harcama başına kazanılan puan
	RedemptionRate       float64       // 1 TL indirim için gereken puan
	SignupBonus          int           // Kayıt bonusu puanı
	ReferralBonus        int           // Referans bonusu puanı
	BirthdayBonus        int           // Doğum günü bonusu puanı
	MinRedemption        int           // Minimum harcanabilir puan
	MaxRedemptionPercent int           // Sipariş başına maksimum puan kullanım yüzdesi
	ExpirationDays       int           // Puanların geçerlilik süresi (gün)
	BalanceCacheTTL      time.Duration // Bakiye cache süresi
	FailureThreshold     int           // Alarm eşiği (başarısızlık sayısı)
	FailureWindow        time.Duration // Başarısızlık sayacı penceresi
}

// yardımcı fonksiyon: ortam değişkeni yoksa default değeri döner
func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt ortam değişkenini int olarak okur, parse edilemezse default döner
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// getEnvFloat ortam değişkenini float olarak okur
func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// LoadConfig tüm yapılandırmayı yükler
func LoadConfig() *Config {
	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBUser: getEnv("DB_USER", "ilhan"),
		DBPass: getEnv("DB_PASS", "password"),
		DBName: getEnv("DB_NAME", "loyaltydb"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),

		PointsRate:           getEnvFloat("POINTS_RATE", 1.0),
		RedemptionRate:       getEnvFloat("POINTS_REDEMPTION_RATE", 100.0),
		SignupBonus:          getEnvInt("POINTS_SIGNUP_BONUS", 100),
		ReferralBonus:        getEnvInt("POINTS_REFERRAL_BONUS", 500),
		BirthdayBonus:        getEnvInt("POINTS_BIRTHDAY_BONUS", 200),
		MinRedemption:        getEnvInt("POINTS_MIN_REDEMPTION", 100),
		MaxRedemptionPercent: getEnvInt("POINTS_MAX_REDEMPTION_PERCENT", 50),
		ExpirationDays:       getEnvInt("POINTS_EXPIRATION_DAYS", 365),
		BalanceCacheTTL:      time.Duration(getEnvInt("BALANCE_CACHE_TTL_SECONDS", 300)) * time.Second,
		FailureThreshold:     getEnvInt("SYNC_FAILURE_THRESHOLD", 5),
		FailureWindow:        time.Duration(getEnvInt("SYNC_FAILURE_WINDOW_SECONDS", 3600)) * time.Second,
	}
}

// GetDSN veritabanı bağlantı URL'sini döner
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	)
}
