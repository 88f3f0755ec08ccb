// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"profileapi/src/app/http/handler"
	"profileapi/src/app/http/response"
	"profileapi/src/app/middleware"
	"profileapi/src/core/ports"
	"profileapi/src/core/usecase"
	"profileapi/src/infra/config"
	"profileapi/src/infra/db"
	"profileapi/src/infra/logger"
)

// Route paths.
const (
	PathHealth  = "/api/health"
	PathDBTest  = "/api/db-test"
	PathMetrics = "/metrics"
)

// ExemptPaths bypass the readiness gate so operators can reach them while
// the database is down.
var ExemptPaths = []string{PathHealth, PathDBTest, PathMetrics}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	router   *gin.Engine
	http     *http.Server
	pool     *db.Pool
	registry *prometheus.Registry

	// Handlers
	healthHandler  *handler.HealthHandler
	profileHandler *handler.ProfileHandler
}

// New creates a new Server with all dependencies wired up.
// The pool is owned by the caller, which closes it after Run returns.
func New(cfg *config.Config, log *slog.Logger, pool *db.Pool, profiles ports.ProfileRepository) *Server {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Create services
	healthService := usecase.NewHealthService(profiles, pool, log)
	profileService := usecase.NewProfileService(profiles, log)

	// Create handlers
	timeout := cfg.Database.QueryTimeout
	healthHandler := handler.NewHealthHandler(healthService, timeout, logger.WithComponent(log, "health"))
	profileHandler := handler.NewProfileHandler(profileService, timeout, logger.WithComponent(log, "profile"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		db.NewPoolCollector(pool),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:            cfg,
		log:            log,
		router:         router,
		pool:           pool,
		registry:       registry,
		healthHandler:  healthHandler,
		profileHandler: profileHandler,
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery first to catch all panics, CORS before the
	// gate so preflights never borrow a connection.
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logging(s.log))
	s.router.Use(middleware.ErrorHandler(s.log))
	s.router.Use(middleware.CORS(s.cfg.CORS.AllowedOrigins))
	s.router.Use(middleware.ReadinessGate(
		s.pool,
		s.cfg.Database.AcquireTimeout,
		logger.WithComponent(s.log, "readiness"),
		ExemptPaths...,
	))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthHandler.Health)
		api.GET("/db-test", s.healthHandler.DBTest)
		api.GET("/profile/:email", s.profileHandler.Get)
	}

	s.router.GET(PathMetrics, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	s.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, response.MsgNotFound)
	})
	s.router.NoMethod(response.MethodNotAllowed)
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server, letting in-flight requests release
// their connections before the pool is closed.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
