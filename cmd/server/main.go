package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/caiatech/dashboard-api/internal/config"
	"github.com/caiatech/dashboard-api/internal/evals"
	"github.com/caiatech/dashboard-api/internal/gateway"
	"github.com/caiatech/dashboard-api/internal/platform/logger"
	"github.com/caiatech/dashboard-api/internal/platform/otel"
	"github.com/caiatech/dashboard-api/internal/server"
	"github.com/caiatech/dashboard-api/internal/upstream"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	}

	logger.Initialize(logger.DefaultConfig())
	log := logger.Get()
	defer logger.Sync()

	if cfg.Tracing.Enabled {
		shutdown, err := otel.InitTracer("dashboard-api", log, os.Stdout)
		if err != nil {
			log.Fatal("failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	client := upstream.NewClient()
	service := gateway.New(cfg, client, log)
	runner := evals.NewRunner(cfg, log)
	store := evals.NewStore(cfg.Eval.RunsDir, log)

	srv := server.New(cfg, log, service, runner, store)

	log.Info("starting dashboard API",
		zap.String("port", cfg.Server.Port),
		zap.String("registry_url", cfg.Registry.URL),
		zap.String("artifact_cache_url", cfg.ArtifactCache.URL),
		zap.String("onyx_api_url", cfg.OnyxAPI.URL),
		zap.Bool("registry_auth", cfg.Registry.AuthConfigured()),
	)

	if err := srv.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
