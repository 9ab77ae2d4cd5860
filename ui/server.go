// Package ui is the JSON transport of the network service. Handlers parse
// request parameters, call the service and map errors to status codes; no
// network logic lives here.
package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cotdex/app"
	"cotdex/internal"
	"cotdex/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server of the network API
type Server struct {
	router  *gin.Engine
	network *app.NetworkService
	log     *internal.Logger
}

// Options tunes the server
type Options struct {
	Metrics bool // expose /metrics
	Logger  *internal.Logger
}

// NewServer creates a server with all routes registered
func NewServer(network *app.NetworkService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	s := &Server{
		router:  router,
		network: network,
		log:     logger.With("http"),
	}
	s.setupRoutes(opts)
	return s
}

func (s *Server) setupRoutes(opts Options) {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := s.router.Group("/api")
	{
		api.GET("/network", s.handleMainNetwork)
		api.GET("/network/single", s.handleSingleDisease)
		api.GET("/network/sub", s.handleSubNetwork)
		api.GET("/network/connection", s.handleCheckConnection)
		api.GET("/network/connected", s.handleConnectedDiseases)
		api.GET("/network/summary", s.handleSummary)
		api.GET("/diseases", s.handleDiseases)
		api.GET("/detail", s.handleDetail)
		api.DELETE("/cache", s.handleFlushCache)
	}
}

// Handler exposes the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
