package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/oselz/ai-gateway/cmd"
	"github.com/oselz/ai-gateway/internal/adapters/cache/memory"
	"github.com/oselz/ai-gateway/internal/adapters/cache/redis"
	"github.com/oselz/ai-gateway/internal/adapters/providers/deepgram"
	"github.com/oselz/ai-gateway/internal/adapters/providers/factory"
	"github.com/oselz/ai-gateway/internal/adapters/providers/replicate"
	"github.com/oselz/ai-gateway/internal/analytics"
	"github.com/oselz/ai-gateway/internal/config"
	"github.com/oselz/ai-gateway/internal/core/ports"
	"github.com/oselz/ai-gateway/internal/core/services"
	"github.com/oselz/ai-gateway/internal/gateway"
	"github.com/oselz/ai-gateway/internal/logger"
	"github.com/oselz/ai-gateway/internal/platform/otel"
	"github.com/oselz/ai-gateway/internal/server"
	"github.com/oselz/ai-gateway/internal/server/validator"
	"github.com/oselz/ai-gateway/internal/store"
	"github.com/oselz/ai-gateway/internal/store/sqlite"

	// Import providers to trigger init() registration
	_ "github.com/oselz/ai-gateway/internal/adapters/providers/anthropic"
	_ "github.com/oselz/ai-gateway/internal/adapters/providers/ollama"
	_ "github.com/oselz/ai-gateway/internal/adapters/providers/openai"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Initialize(cfg.Server.Env)
	defer logger.Sync()
	log := logger.Get()

	validator.InitValidator()

	go cmd.CheckForUpdates()

	if cfg.Tracing.Enabled {
		shutdown, err := otel.InitTracer("ai-gateway", log, os.Stdout)
		if err != nil {
			log.Fatal("failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	// Request log store and analytics pipeline
	var repo store.Repository
	var ingestor analytics.Ingestor = analytics.NopIngestor{}
	if cfg.Store.Enabled {
		repo, err = sqlite.NewSQLiteStorage(cfg.Store.DSN)
		if err != nil {
			log.Fatal("failed to open request log store", zap.Error(err))
		}
		defer repo.Close()

		ingestor = analytics.NewIngestor(log, repo)
		ingestor.Start(context.Background())
		defer ingestor.Stop()
	}

	// Response cache
	var cache ports.CacheService
	if cfg.Redis.Enabled {
		cache, err = redis.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
	} else {
		cache = memory.NewMemoryCache()
	}

	// Chat providers: one adapter per present credential, catalog order
	router := services.NewRouter(cfg.Router, log)
	providerFactory := factory.NewProviderFactory()

	for _, pCfg := range cfg.ChatProviderConfigs() {
		p, err := providerFactory.CreateProvider(pCfg)
		if err != nil {
			log.Error("failed to create provider",
				zap.String("id", pCfg.ID),
				zap.String("type", pCfg.Type),
				zap.Error(err))
			continue
		}
		if err := router.RegisterProvider(p); err != nil {
			log.Error("failed to register provider", zap.String("id", pCfg.ID), zap.Error(err))
			continue
		}
		log.Info("registered provider", zap.String("id", pCfg.ID), zap.String("name", pCfg.Name))
	}

	// Optional image generation and transcription backends
	var images ports.ImageGenerator
	if imgCfg, ok := cfg.ImageProviderConfig(); ok {
		images, err = replicate.NewAdapter(imgCfg)
		if err != nil {
			log.Fatal("failed to create image backend", zap.Error(err))
		}
		log.Info("image generation enabled", zap.String("id", imgCfg.ID))
	}

	var transcriber ports.Transcriber
	if sttCfg, ok := cfg.TranscriberConfig(); ok {
		transcriber, err = deepgram.NewAdapter(sttCfg)
		if err != nil {
			log.Fatal("failed to create transcription backend", zap.Error(err))
		}
		log.Info("transcription enabled", zap.String("id", sttCfg.ID))
	}

	service := gateway.NewService(gateway.Options{
		Logger:      log,
		Router:      router,
		Images:      images,
		Transcriber: transcriber,
		Cache:       cache,
		Ingestor:    ingestor,
		ImageTTL:    cfg.Cache.ImageTTL,
	})

	srv := server.New(cfg, log, service, analytics.NewService(repo))

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("starting gateway", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
