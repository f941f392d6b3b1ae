package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/studygroups/internal/metrics"
)

// MetricsServer exposes the Prometheus scrape endpoint on its own port so it never
// shares middleware, rate limits or CORS rules with the public API.
type MetricsServer struct {
	listener
	router *gin.Engine
}

// NewMetricsServer builds the scrape server. With a nil provider only /health is served.
func NewMetricsServer(host string, port int, logger *slog.Logger, provider *metrics.Provider) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if provider != nil {
		router.GET("/metrics", gin.WrapH(provider.Handler()))
	}

	return &MetricsServer{
		listener: newListener("metrics server", host, port, logger),
		router:   router,
	}
}

// GetHandler returns the router, mainly for tests.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.router
}

func (s *MetricsServer) Start(ctx context.Context) error {
	return s.serve(s.router)
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}
