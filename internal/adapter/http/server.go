package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ticketstats/ticketstats/internal/logger"
	"github.com/ticketstats/ticketstats/internal/ports"
	apperror "github.com/ticketstats/ticketstats/pkg/error"
)

// Server represents the HTTP server
type Server struct {
	addr    string
	handler http.Handler
	server  *http.Server
	logger  logger.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Address          string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	AllowedOrigins   []string
	AllowCredentials bool
	RateLimitWindow  time.Duration
}

// NewServer creates a new HTTP server. A nil limiter disables rate limiting.
func NewServer(config ServerConfig, statistics StatisticsUseCase, limiter ports.RateLimiter, log logger.Logger) *Server {
	statisticsHandler := NewStatisticsHandler(statistics, log)

	router := mux.NewRouter()
	statisticsHandler.RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperror.ErrNotFound)
	})

	// wrapped outside the router so preflight requests never reach route matching
	var handler http.Handler = router
	handler = rateLimitMiddleware(limiter, config.RateLimitWindow, log)(handler)
	handler = corsMiddleware(config.AllowedOrigins, config.AllowCredentials)(handler)
	handler = loggingMiddleware(log)(handler)
	handler = recoveryMiddleware(log)(handler)
	handler = correlationMiddleware(handler)

	return &Server{
		addr:    config.Address,
		handler: handler,
		logger:  log,
		server: &http.Server{
			Addr:         config.Address,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{
		"address": s.addr,
	})
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
