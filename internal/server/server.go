// Package server provides the HTTP transport for the clone-detection
// engine: routing, middleware, and JSON request/response handling.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ankitjha412/clone/internal/detector"
	"github.com/ankitjha412/clone/internal/lookup"
	"github.com/ankitjha412/clone/internal/reference"
)

// Config holds server configuration.
type Config struct {
	ListenAddr string
	// RequestsPerMin limits per-IP request rates; zero disables limiting.
	RequestsPerMin int
}

// Server is the HTTP server fronting the clone-detection engine.
type Server struct {
	config Config
	engine *detector.Engine
	refs   *reference.Set
	cache  *lookup.Cache
	logger *slog.Logger
	rl     *RateLimiter
	router chi.Router
}

// NewServer wires the engine and its collaborators into an HTTP server.
func NewServer(cfg Config, engine *detector.Engine, refs *reference.Set, cache *lookup.Cache, logger *slog.Logger) *Server {
	srv := &Server{
		config: cfg,
		engine: engine,
		refs:   refs,
		cache:  cache,
		logger: logger,
	}
	if cfg.RequestsPerMin > 0 {
		srv.rl = NewRateLimiter(RateLimiterConfig{RequestsPerMin: cfg.RequestsPerMin})
	}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(SecurityHeadersMiddleware)
	if s.rl != nil {
		r.Use(IPRateLimitMiddleware(s.rl))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/detect", s.handleDetect)
		r.Get("/status", s.handleStatus)
	})

	return r
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stop cleans up server resources.
func (s *Server) Stop() {
	if s.rl != nil {
		s.rl.Stop()
	}
}
