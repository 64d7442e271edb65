package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/EzekielMisgae/alis-app/internal/auth"
	"github.com/EzekielMisgae/alis-app/internal/blob"
	"github.com/EzekielMisgae/alis-app/internal/config"
	"github.com/EzekielMisgae/alis-app/internal/db"
	alishttp "github.com/EzekielMisgae/alis-app/internal/http"
	"github.com/EzekielMisgae/alis-app/internal/http/alerts"
	"github.com/EzekielMisgae/alis-app/internal/http/handlers"
	rl "github.com/EzekielMisgae/alis-app/internal/http/rate_limiter"
	"github.com/EzekielMisgae/alis-app/internal/redissvc"
	"github.com/EzekielMisgae/alis-app/internal/repo"
)

// @title Alis Shop API
// @version 1.0
// @description REST API for managing shop items, sales transactions, and dashboard statistics.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	auth.SetSecret([]byte(cfg.JWTSecret))
	handlers.SetLowStockThreshold(cfg.LowStockThreshold)

	go auth.StartRefreshTokenCleaner(30 * time.Minute)
	go rl.StartVisitorCleanupLoop()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	redisService := redissvc.NewRedisService(rdb, context.Background())
	if err := redisService.Ping(); err != nil {
		// Low-stock summaries degrade to log lines without Redis.
		log.Printf("⚠️ Could not connect to Redis at %s: %v", cfg.RedisAddr, err)
	} else {
		alerts.SetRedisService(redisService)
		go alerts.StartDailyLowStockSummary(24 * time.Hour)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Could not connect to database:", err)
	}
	defer database.Close()

	handlers.SetItemRepo(repo.NewPostgresItemRepository(database))
	handlers.SetTransactionRepo(repo.NewPostgresTransactionRepository(database))
	handlers.SetStatsRepo(repo.NewPostgresStatsRepository(database))
	handlers.SetUserRepo(repo.NewPostgresUserRepository(database))

	store, err := blob.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		log.Fatal("❌ Could not prepare media storage:", err)
	}
	handlers.SetBlobStore(store)
	alishttp.SetMediaDir(cfg.MediaDir)

	r := alishttp.NewRouter()
	log.Printf("✅ Server running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal(err)
	}
}
