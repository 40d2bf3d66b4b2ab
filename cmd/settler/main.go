package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tipster/internal/config"
	cronrunner "tipster/internal/cron"
	"tipster/internal/db"
	"tipster/internal/handler"
	"tipster/internal/logger"
	"tipster/internal/metrics"
	"tipster/internal/publisher"
	gormrepository "tipster/internal/repository/gorm"
	"tipster/internal/service"
	"tipster/internal/settlement"
)

func main() {
	cfgPath := os.Getenv("TS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, events will fail until it returns", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(ctx); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}

	settlementMetrics := metrics.New()
	streamPublisher := publisher.NewStreamPublisher(redisClient)

	statsSvc := &service.StatsService{
		Repo:            store,
		Publisher:       streamPublisher,
		Logger:          logger,
		Flags:           settingsSvc,
		LeaderboardSize: cfg.Stats.LeaderboardSize,
	}
	settlementSvc := &service.SettlementService{
		Repo:       store,
		Dispatcher: &settlement.Dispatcher{Logger: logger},
		Publisher:  streamPublisher,
		Stats:      statsSvc,
		Metrics:    settlementMetrics,
		Logger:     logger,
		Flags:      settingsSvc,
		Config:     cfg.Settlement,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	metricsHandler := &handler.MetricsHandler{Registry: settlementMetrics.Registry()}
	metricsHandler.Register(engine)

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.Settlement, func(ctx context.Context) {
			if err := settlementSvc.RunOnce(ctx); err != nil {
				logger.Warn("cron settlement run failed", zap.Error(err))
			}
		}); err != nil {
			logger.Warn("cron register settlement failed", zap.Error(err))
		}
		if _, err := cronRunner.Add(cfg.Cron.StatsRebuild, func(ctx context.Context) {
			if err := statsSvc.RebuildAll(ctx); err != nil {
				logger.Warn("cron stats rebuild failed", zap.Error(err))
			}
		}); err != nil {
			logger.Warn("cron register stats rebuild failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
