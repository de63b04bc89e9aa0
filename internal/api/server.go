package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apimiddleware "github.com/hypersec/macjanitor/internal/api/middleware"
	"github.com/hypersec/macjanitor/internal/auth"
	"github.com/hypersec/macjanitor/internal/policy"
	"github.com/hypersec/macjanitor/internal/store"
	"github.com/hypersec/macjanitor/pkg/types"
)

// Runner triggers reaper evaluations. Satisfied by *reaper.Reaper.
type Runner interface {
	Run(ctx context.Context) (*types.RunReport, error)
	RunPolicy(ctx context.Context, policyName string) (*types.RunReport, error)
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	EnableAuth      bool
	TriggerSecret   string
	TriggerTokenTTL time.Duration
	MaxBodySize     string
	RunTimeout      time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            8080,
		ShutdownTimeout: 10 * time.Second,
		EnableAuth:      false, // enabled when a trigger secret is configured
		TriggerTokenTTL: 24 * time.Hour,
		MaxBodySize:     "64K",
		RunTimeout:      5 * time.Minute,
	}
}

// Server represents the HTTP API server
type Server struct {
	echo     *echo.Echo
	config   *ServerConfig
	runner   Runner
	registry *policy.Registry
	store    *store.Store // nil disables history endpoints
	auth     *auth.Auth
}

// NewServer creates a new API server. st may be nil when run history is not
// configured.
func NewServer(config *ServerConfig, runner Runner, registry *policy.Registry, st *store.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Disable Echo's default logger, we'll use our own
	e.Logger.SetOutput(io.Discard)

	// Set custom validator
	e.Validator = NewValidator()

	s := &Server{
		echo:     e,
		config:   config,
		runner:   runner,
		registry: registry,
		store:    st,
	}

	if config.EnableAuth {
		s.auth = auth.NewAuth(config.TriggerSecret, config.TriggerTokenTTL)
	} else {
		log.Println("WARNING: trigger auth disabled, /api/v1/runs is unauthenticated")
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware stack
func (s *Server) setupMiddleware() {
	// Recover from panics
	s.echo.Use(middleware.Recover())

	// Request ID for tracing
	s.echo.Use(middleware.RequestID())

	// Logging middleware
	s.echo.Use(apimiddleware.Logger())

	// Body limit; trigger requests carry at most a policy name
	s.echo.Use(middleware.BodyLimit(s.config.MaxBodySize))
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readyCheck)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Run routes; the trigger is protected when auth is enabled
	runHandler := NewRunHandler(s.config, s.runner, s.store)
	runsGroup := v1.Group("/runs")
	if s.auth != nil {
		runsGroup.Use(auth.RequireTrigger(s.auth))
	}
	runsGroup.POST("", runHandler.Trigger)
	runsGroup.GET("", runHandler.List)
	runsGroup.GET("/:id", runHandler.Get)

	// Policy routes (read-only)
	policyHandler := NewPolicyHandler(s.registry)
	policiesGroup := v1.Group("/policies")
	policiesGroup.GET("", policyHandler.List)
	policiesGroup.GET("/:name", policyHandler.Get)
}

// healthCheck returns basic health status
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// readyCheck checks if server is ready to handle requests
func (s *Server) readyCheck(c echo.Context) error {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  "database unavailable",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting API server on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance for testing
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
