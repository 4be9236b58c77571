package main

import (
	"rental-service/internal/handler"
	"rental-service/internal/middleware"
	"rental-service/internal/store"
	"rental-service/internal/upload"
	"rental-service/internal/view"
	"rental-service/pkg/config"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting rental service...", zap.String("environment", cfg.Server.Env))

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	s := store.New(db)
	created, err := s.EnsureAdmin(cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		log.Fatal("Failed to seed administrator", zap.Error(err))
	}
	if created {
		log.Info("Default administrator created", zap.String("username", cfg.Admin.Username))
	}

	uploads, err := upload.NewStorage(cfg.Upload.Dir)
	if err != nil {
		log.Fatal("Failed to prepare upload directories", zap.Error(err))
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}

	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	e := echo.New()
	e.HideBanner = true

	// Order matters: request IDs must exist before the logger reads them
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	e.GET(cfg.Metrics.Path, echo.WrapHandler(prometheus.GetPrometheusHandler()))

	h := handler.New(s, uploads, middleware.NewSessions(cfg.Session), renderer)
	h.Register(e, cfg.Upload.MaxBytes)

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
