// Package http provides the HTTP server, its router and shared middleware.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/config"
	groupHTTP "github.com/allisson/studygroups/internal/group/http"
	"github.com/allisson/studygroups/internal/metrics"
	sagaHTTP "github.com/allisson/studygroups/internal/saga/http"
	userHTTP "github.com/allisson/studygroups/internal/user/http"
)

const readinessTimeout = 2 * time.Second

// Server serves the public API.
type Server struct {
	listener
	db     *sql.DB
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. SetupRouter must be called before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		listener: newListener("http server", host, port, logger),
		db:       db,
		logger:   logger,
	}
}

// SetupRouter registers middleware and every API route.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	userHandler *userHTTP.UserHandler,
	groupHandler *groupHTTP.GroupHandler,
	sagaHandler *sagaHTTP.SagaHandler,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cfg.CORSEnabled {
		if corsMiddleware := newCORSMiddleware(cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
			router.Use(corsMiddleware)
		}
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	writeMiddleware := []gin.HandlerFunc{}
	if cfg.RateLimitEnabled {
		writeMiddleware = append(writeMiddleware,
			RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		users.POST("", append(writeMiddleware, userHandler.RegisterHandler)...)
		users.GET("/:id", userHandler.GetHandler)

		groups := v1.Group("/groups")
		groups.POST("", append(writeMiddleware, groupHandler.CreateHandler)...)
		groups.GET("/:id", groupHandler.GetHandler)
		groups.GET("/:id/members", groupHandler.ListMembersHandler)

		sagas := v1.Group("/sagas")
		sagas.GET("", sagaHandler.ListHandler)
		sagas.GET("/:id", sagaHandler.GetHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start blocks serving the API until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return s.serve(nil)
	}
	return s.serve(s.router)
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		s.notReady(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		s.notReady(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}

func (s *Server) notReady(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":     "not_ready",
		"components": gin.H{"database": "error"},
	})
}
