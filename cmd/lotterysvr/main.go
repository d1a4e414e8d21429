package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Allen-Saji/sui-lotto-contract/internal/auth"
	"github.com/Allen-Saji/sui-lotto-contract/internal/config"
	lotteryHttp "github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/adapter/http"
	lotteryLocal "github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/adapter/local"
	lotteryDB "github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/repository/db"
	lotteryMemory "github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/repository/memory"
	lotteryRedis "github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/repository/redis"
	lotteryUseCase "github.com/Allen-Saji/sui-lotto-contract/internal/modules/lottery/usecase"
	walletModule "github.com/Allen-Saji/sui-lotto-contract/internal/modules/wallet"
	"github.com/Allen-Saji/sui-lotto-contract/pkg/clock"
	"github.com/Allen-Saji/sui-lotto-contract/pkg/logger"
	"github.com/Allen-Saji/sui-lotto-contract/pkg/rng"
)

func main() {
	pprofPort := flag.String("pprof-port", "", "Port to run pprof server on (e.g., 6060)")
	flag.Parse()

	// 1. Load Config
	cfg := config.LoadLotteryConfig()

	// 2. Initialize logger
	logger.InitWithFile(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
	logger.InfoGlobal().Msg("Starting lottery service...")

	if *pprofPort != "" {
		go func() {
			addr := "localhost:" + *pprofPort
			logger.InfoGlobal().Str("addr", addr).Msg("Starting pprof server")
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.ErrorGlobal().Err(err).Msg("Failed to start pprof server")
			}
		}()
	}

	// 3. Archive database
	db, err := openDatabase(cfg.Database)
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to connect to database")
	}
	recordRepo := lotteryDB.NewRoundRecordRepository(db)
	if err := recordRepo.Migrate(); err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to migrate round records")
	}

	// 4. Optional Redis snapshot cache
	var cache lotteryUseCase.RoundCache
	if cfg.Redis.Enabled {
		client := goredis.NewClient(&goredis.Options{
			Addr: cfg.Redis.Host + ":" + cfg.Redis.Port,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.ErrorGlobal().Err(err).Msg("Redis unreachable, running without round cache")
		} else {
			cache = lotteryRedis.NewRoundCache(client)
		}
	}

	// 5. Collaborators and engine wiring
	capSvc := auth.NewService(cfg.AdminSecret)
	ledger := walletModule.NewLedgerService()
	broadcaster := lotteryLocal.NewBroadcaster()
	roundRepo := lotteryMemory.NewRoundRepository()

	roundUC := lotteryUseCase.NewRoundUseCase(
		roundRepo,
		recordRepo,
		cache,
		ledger,
		broadcaster,
		clock.NewSystem(),
		rng.NewCryptoSource(),
		capSvc,
	)
	handler := lotteryHttp.NewHandler(roundUC, capSvc)

	// 6. HTTP server
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/lottery")
	handler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.InfoGlobal().Str("port", cfg.Server.Port).Msg("Lottery service listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalGlobal().Err(err).Msg("HTTP server failed")
		}
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.InfoGlobal().Msg("Shutting down lottery service...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorGlobal().Err(err).Msg("Forced shutdown")
	}
	logger.InfoGlobal().Msg("Lottery service stopped")
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLog := logger.NewGormLogger()
	gormConfig := &gorm.Config{Logger: gormLog}

	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		return gorm.Open(postgres.Open(dsn), gormConfig)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, err
		}
		return gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	}
}
