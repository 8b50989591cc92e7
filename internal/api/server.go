package api

import (
	"context"
	"net/http"
	"time"

	"github.com/brightpath/coaching-api/internal/config"
	"github.com/brightpath/coaching-api/internal/pkg/logger"
)

// Server wraps the HTTP server and its routed handlers.
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer builds the server around fully wired handlers.
func NewServer(cfg config.ServerConfig, h *Handlers, allowedOrigins []string) *Server {
	return &Server{
		config:  cfg,
		handler: SetupRoutes(h, allowedOrigins),
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	logger.Info("HTTP server listening", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
