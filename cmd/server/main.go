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
	"go.uber.org/zap"

	"despensa/internal/client/menorpreco"
	"despensa/internal/config"
	cronrunner "despensa/internal/cron"
	"despensa/internal/db"
	"despensa/internal/handler"
	"despensa/internal/logger"
	"despensa/internal/matcher"
	"despensa/internal/ratelimit"
	gormrepository "despensa/internal/repository/gorm"
	"despensa/internal/service"
)

func main() {
	cfgPath := os.Getenv("DESPENSA_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("DESPENSA_ENV_ONLY"); envOnlyRaw != "" {
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

	searchHTTP := &http.Client{Timeout: cfg.MenorPreco.Timeout}
	searchClient := menorpreco.NewClient(searchHTTP, cfg.MenorPreco.BaseURL)
	store := gormrepository.New(dbConn.Gorm)

	syncService := &service.PriceSyncService{
		Store:   store,
		Client:  searchClient,
		Matcher: newMatcher(cfg.PriceSync),
		Limiter: ratelimit.New(cfg.PriceSync.ProductDelay),
		Logger:  logger,
		Settings: service.Settings{
			Local:       cfg.MenorPreco.Local,
			Radius:      cfg.MenorPreco.Radius,
			Period:      cfg.MenorPreco.Period,
			Order:       cfg.MenorPreco.Order,
			Categories:  cfg.PriceSync.Categories,
			DedupWindow: cfg.PriceSync.DedupWindow,
			LockTTL:     cfg.PriceSync.LockTTL,
			SourceNote:  cfg.PriceSync.SourceNote,
		},
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	syncHandler := &handler.SyncHandler{Service: syncService, Logger: logger}
	syncHandler.Register(engine)
	catalogHandler := &handler.CatalogHandler{Repo: store}
	catalogHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err := cronRunner.Add(cfg.Cron.PriceSync, func(ctx context.Context) {
			report := syncService.Run(ctx)
			if !report.Success {
				logger.Warn("cron price sync failed", zap.Strings("errors", report.Errors))
				return
			}
			logger.Info("cron price sync ok",
				zap.Int("markets", report.MarketsProcessed),
				zap.Int("products", report.ProductsProcessed),
				zap.Int("prices_recorded", report.PricesRecorded))
		})
		if err != nil {
			logger.Warn("cron register price sync failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
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

func newMatcher(cfg config.PriceSyncConfig) matcher.Matcher {
	m := matcher.Default()
	if cfg.MinNameTokens > 0 {
		m.MinNameTokens = cfg.MinNameTokens
	}
	if cfg.MinTokenLen > 0 {
		m.MinTokenLen = cfg.MinTokenLen
	}
	if cfg.MinAddressHits > 0 {
		m.MinAddressHits = cfg.MinAddressHits
	}
	return m
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
