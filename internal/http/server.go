package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redmonkez12/go-tours-api/internal/config"
	"github.com/redmonkez12/go-tours-api/internal/logging"
)

// Server runs the API with deadline-bounded reads and writes and drains
// in-flight requests on shutdown.
type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
}

func NewServer(cfg config.ServerConfig, handler http.Handler, logger *logging.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown is called or the listener fails
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests
// up to the context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
