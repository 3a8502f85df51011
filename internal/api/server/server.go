package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/api/middleware"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/api/rest"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/bridge"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/ledger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/logger"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	authConfig middleware.AuthConfig
	ledger     *ledger.Ledger
	controller *bridge.Controller
	admin      domain.Address
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, authCfg middleware.AuthConfig, l *ledger.Ledger, c *bridge.Controller, admin domain.Address) *Server {
	return &Server{
		config:     cfg,
		authConfig: authCfg,
		ledger:     l,
		controller: c,
		admin:      admin,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	// Create REST handler
	restHandler := rest.NewHandler(s.ledger, s.controller, s.admin)

	// Setup REST routes
	rest.SetupRoutes(router, restHandler, s.authConfig)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
		zap.String("network", s.ledger.Network().String()),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
