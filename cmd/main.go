package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/auth"
	"github.com/onerilhan/go-loyalty-api/internal/cache"
	"github.com/onerilhan/go-loyalty-api/internal/config"
	"github.com/onerilhan/go-loyalty-api/internal/db"
	"github.com/onerilhan/go-loyalty-api/internal/handlers"
	"github.com/onerilhan/go-loyalty-api/internal/logger"
	"github.com/onerilhan/go-loyalty-api/internal/middleware"
	"github.com/onerilhan/go-loyalty-api/internal/repository"
	"github.com/onerilhan/go-loyalty-api/internal/services"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	// config yükle
	cfg := config.LoadConfig()

	// logger başlat
	logger.Init(cfg.AppEnv)
	auth.Init(cfg.JWTSecret)

	log.Info().
		Str("environment", cfg.AppEnv).
		Str("port", cfg.Port).
		Msg("🚀 Loyalty Points API başlatıldı")

	// Database bağlantısı
	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Veritabanı bağlantısı başarısız")
	}
	defer database.Close()

	// Cache backend seçimi: Redis varsa Redis, yoksa in-memory
	var backend cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("Redis'e bağlanılamadı, in-memory cache kullanılacak")
			backend = cache.NewInMemoryCache()
		} else {
			backend = redisCache
			defer redisCache.Close()
		}
	} else {
		backend = cache.NewInMemoryCache()
	}
	balanceCache := cache.NewBalanceCache(backend, cfg.BalanceCacheTTL)

	// Repository katmanı
	transactionRepo := repository.NewTransactionRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	auditRepo := repository.NewAuditRepository(database)
	alertRepo := repository.NewAlertRepository(database)

	// Service katmanı
	tracker := services.NewFailureTracker(alertRepo, cfg.FailureThreshold, cfg.FailureWindow)
	pointsService := services.NewPointsService(transactionRepo, auditRepo, balanceCache, tracker, cfg, database)
	sweeperService := services.NewSweeperService(transactionRepo, balanceCache, tracker, database)
	balanceService := services.NewBalanceService(transactionRepo, sweeperService, balanceCache, database)
	orderService := services.NewOrderService(orderRepo, transactionRepo, pointsService, cfg)

	// Sipariş olay queue'su (2 worker, 100 buffer)
	orderQueue := services.NewOrderEventQueue(2, orderService, 100)
	orderQueue.Start()

	// Handler katmanı
	pointsHandler := handlers.NewPointsHandler(pointsService, balanceService, orderService, cfg)
	balanceHandler := handlers.NewBalanceHandler(balanceService, sweeperService, pointsService)
	adminHandler := handlers.NewAdminHandler(pointsService, sweeperService, tracker)
	webhookHandler := handlers.NewWebhookHandler(orderRepo, orderQueue)

	router := setupRouter(pointsHandler, balanceHandler, adminHandler, webhookHandler)

	// Günlük expire taraması (cron yerine uygulama içi ticker)
	sweepStop := make(chan struct{})
	go runDailySweep(sweeperService, sweepStop)

	// HTTP Server configuration
	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown setup
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Info().
			Str("addr", serverAddr).
			Msg("🌐 HTTP Server (Gorilla Mux) başlatıldı")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Server başlatma hatası")
		}
	}()

	<-shutdown
	log.Info().Msg("🛑 Shutdown signal alındı, server kapatılıyor...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// 1. HTTP Server'ı kapat (aktif bağlantıları bekle)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ HTTP Server kapatma hatası")
	} else {
		log.Info().Msg("✅ HTTP Server başarıyla kapatıldı")
	}

	// 2. Sweep ticker'ını ve olay queue'sunu kapat
	close(sweepStop)
	orderQueue.Stop()

	log.Info().Msg("👋 Loyalty Points API başarıyla kapatıldı")
}

// runDailySweep günde bir kez tüm kullanıcıların süresi dolan puanlarını tarar
func runDailySweep(sweeper *services.SweeperService, stop <-chan struct{}) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := sweeper.SweepAll(); err != nil {
				log.Error().Err(err).Msg("Günlük expire taraması başarısız")
			}
		case <-stop:
			return
		}
	}
}

// setupRouter Gorilla Mux router'ını ayarlar
func setupRouter(
	pointsHandler *handlers.PointsHandler,
	balanceHandler *handlers.BalanceHandler,
	adminHandler *handlers.AdminHandler,
	webhookHandler *handlers.WebhookHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Global middleware zinciri
	router.Use(middleware.RequestLoggingMiddleware)
	router.Use(middleware.CORSMiddleware(nil))
	router.Use(middleware.NewRateLimitMiddleware(nil).Handler())

	// Health check (public)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 subrouter (service token gerekli)
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AuthMiddleware)

	// Account registration
	api.HandleFunc("/accounts", pointsHandler.RegisterAccount).Methods("POST")

	// Points endpoints
	points := api.PathPrefix("/points").Subrouter()
	points.HandleFunc("/earn", pointsHandler.Earn).Methods("POST")
	points.HandleFunc("/redeem", pointsHandler.Redeem).Methods("POST")
	points.HandleFunc("/sync", pointsHandler.Sync).Methods("POST")

	// Bonus endpoints
	bonus := api.PathPrefix("/bonus").Subrouter()
	bonus.HandleFunc("/referral", pointsHandler.ReferralBonus).Methods("POST")
	bonus.HandleFunc("/birthday", pointsHandler.BirthdayBonus).Methods("POST")

	// Balance endpoints
	balance := api.PathPrefix("/balance").Subrouter()
	balance.HandleFunc("/{user_id:[0-9]+}", balanceHandler.GetBalance).Methods("GET")
	balance.HandleFunc("/{user_id:[0-9]+}/breakdown", balanceHandler.GetBreakdown).Methods("GET")
	balance.HandleFunc("/{user_id:[0-9]+}/expiring-soon", balanceHandler.GetExpiringSoon).Methods("GET")

	// Transaction history
	api.HandleFunc("/transactions/{user_id:[0-9]+}", balanceHandler.GetTransactions).Methods("GET")

	// Admin endpoints (admin token gerekli)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminOnlyMiddleware)
	admin.HandleFunc("/adjust", adminHandler.Adjust).Methods("POST")
	admin.HandleFunc("/sweep/{user_id:[0-9]+}", adminHandler.SweepUser).Methods("POST")
	admin.HandleFunc("/sweep-all", adminHandler.SweepAll).Methods("POST")
	admin.HandleFunc("/alert", adminHandler.GetAlert).Methods("GET")
	admin.HandleFunc("/alert", adminHandler.DismissAlert).Methods("DELETE")

	// Webhook endpoints (aynı bearer token ile)
	webhooks := router.PathPrefix("/webhooks").Subrouter()
	webhooks.Use(middleware.AuthMiddleware)
	webhooks.HandleFunc("/orders/completed", webhookHandler.OrderCompleted).Methods("POST")
	webhooks.HandleFunc("/orders/cancelled", webhookHandler.OrderCancelled).Methods("POST")

	return router
}
