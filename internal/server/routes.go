package server

import (
	"github.com/oselz/ai-gateway/internal/server/middleware"
	v1 "github.com/oselz/ai-gateway/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	// 1. Global Middleware
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	if s.config.Tracing.Enabled {
		s.router.Use(middleware.Tracing("ai-gateway"))
	}

	// 2. Health Check (Public)
	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	// 3. API V1 Group
	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)

	api := s.router.Group("/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))
	api.Use(limiter.Middleware())
	{
		chatHandler := v1.NewChatHandler(s.service)
		api.POST("/chat/completions", chatHandler.CreateCompletion)

		imageHandler := v1.NewImageHandler(s.service)
		api.POST("/images/generations", imageHandler.CreateImage)

		transcriptionHandler := v1.NewTranscriptionHandler(s.service)
		api.POST("/audio/transcriptions", transcriptionHandler.CreateTranscription)

		providerHandler := v1.NewProviderHandler(s.service)
		api.GET("/providers", providerHandler.ListProviders)

		statsHandler := v1.NewStatsHandler(s.service)
		api.GET("/stats", statsHandler.GetStats)
		api.DELETE("/stats", statsHandler.ResetStats)

		analyticsHandler := v1.NewAnalyticsHandler(s.analytics)
		api.GET("/analytics/usage", analyticsHandler.GetUsage)
	}
}
