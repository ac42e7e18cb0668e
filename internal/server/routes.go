package server

import (
	"github.com/caiatech/dashboard-api/internal/server/middleware"
	v1 "github.com/caiatech/dashboard-api/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	// Aggregate health stays outside the rate limiter: it is what
	// monitoring polls.
	healthHandler := v1.NewHealthHandler(s.service, s.runner)
	s.router.GET("/health", healthHandler.Health)

	api := s.router.Group("/api")
	api.Use(middleware.RateLimit(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst))

	models := v1.NewModelsHandler(s.service)
	api.GET("/stats", models.Stats)
	api.GET("/models", models.List)
	api.GET("/models/:id", models.Get)
	api.GET("/models/:id/metrics", models.Metrics)
	api.GET("/models/:id/events", models.Events)
	api.POST("/models/:id/promote", models.Promote)
	api.POST("/models/:id/resolve-checkpoint", models.ResolveCheckpoint)

	artifacts := v1.NewArtifactsHandler(s.service)
	api.GET("/artifacts/health", artifacts.Health)
	api.POST("/artifacts/resolve", artifacts.Resolve)

	onyx := v1.NewOnyxHandler(s.service)
	api.GET("/onyx/health", onyx.Health)
	api.GET("/onyx/models_loaded", onyx.ModelsLoaded)
	api.POST("/onyx/generate", onyx.Generate)
	api.POST("/onyx/chat", onyx.Chat)

	evalRuns := v1.NewEvalsHandler(s.runner, s.store)
	api.GET("/evals/runs", evalRuns.ListRuns)
	api.GET("/evals/runs/:id/summary", evalRuns.Summary)
	api.GET("/evals/runs/:id/jsonl", evalRuns.JSONL)
	api.POST("/evals/run", evalRuns.Run)
}
