package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundgate/fundgate/internal/config"
	"github.com/fundgate/fundgate/internal/engine"
	"github.com/fundgate/fundgate/internal/handler"
	"github.com/fundgate/fundgate/internal/middleware"
	"github.com/fundgate/fundgate/internal/oracle"
	"github.com/fundgate/fundgate/internal/pkg/logger"
	"github.com/fundgate/fundgate/internal/settlement"
	"github.com/fundgate/fundgate/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	fundCfg, err := cfg.Fund.ModelConfig()
	if err != nil {
		log.Fatalf("Invalid fund config: %v", err)
	}

	// 2. Initialize Persistence (Postgres > Redis > Memory)
	var st store.Store
	if cfg.Database.DSN != "" {
		pg, err := store.NewPostgresStore(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		logger.Info("✅ Connected to PostgreSQL")
		st = pg
	} else if cfg.Redis.Addr != "" {
		rs, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		logger.Info("✅ Connected to Redis")
		st = rs
	} else {
		logger.Warn("⚠️ No database configured, state is in-memory only")
		st = store.NewMemoryStore()
	}

	// 3. Collaborators
	if cfg.Oracle.BaseURL == "" {
		log.Fatal("oracle.base_url is required")
	}
	querier := oracle.NewClient(cfg.Oracle.BaseURL, time.Duration(cfg.Oracle.TimeoutMs)*time.Millisecond)

	var sink settlement.Sink
	if cfg.Settlement.BaseURL != "" {
		sink = settlement.NewClient(cfg.Settlement.BaseURL, time.Duration(cfg.Settlement.TimeoutMs)*time.Millisecond)
	} else {
		logger.Warn("⚠️ No settlement endpoint configured, instructions are log-only")
		sink = settlement.LogSink{}
	}

	// 4. Core Engine
	eng := engine.New(st, querier, sink)

	ctx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	if err := eng.Initialize(ctx, fundCfg); err != nil {
		cancelInit()
		log.Fatalf("Failed to initialize fund: %v", err)
	}
	cancelInit()

	// 5. Handlers
	fundHandler := handler.NewFundHandler(eng)
	adminHandler := handler.NewAdminHandler(eng)

	// 6. Setup Router
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "fundgate"})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API V1 Routes
	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(cfg))
	{
		v1.GET("/ping", fundHandler.Ping)
		v1.POST("/subscribe", fundHandler.Subscribe)
		v1.POST("/redeem", fundHandler.Redeem)

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminMiddleware(cfg))
		{
			admin.POST("/fees/claim", adminHandler.ClaimFeePositions)
			admin.POST("/commands", adminHandler.ExecuteCommands)
			admin.POST("/close", adminHandler.CloseFund)
		}
	}

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 FundGate started", "port", cfg.Server.Port, "quote_denom", fundCfg.QuoteDenom)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}
