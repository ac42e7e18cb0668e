package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/caiatech/dashboard-api/internal/config"
	"github.com/caiatech/dashboard-api/internal/evals"
	"github.com/caiatech/dashboard-api/internal/gateway"
	"github.com/caiatech/dashboard-api/internal/server/middleware"
	"github.com/caiatech/dashboard-api/internal/server/validator"
)

type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  *zap.Logger
	service *gateway.Service
	runner  *evals.Runner
	store   *evals.Store
}

func New(cfg *config.Config, logger *zap.Logger, service *gateway.Service, runner *evals.Runner, store *evals.Store) *Server {

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.InitValidator()

	engine := gin.New()

	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(cfg.CORS.OriginList()))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing("dashboard-api"))
	}
	engine.Use(middleware.ErrorHandler(logger))

	s := &Server{
		router:  engine,
		config:  cfg,
		logger:  logger,
		service: service,
		runner:  runner,
		store:   store,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
