package httpserver

import (
	"context"
	"net/http"

	"github.com/unhinged-listings/listing-service/internal/config"
	"go.uber.org/zap"
)

// Server wraps the http.Server lifecycle so the app layer can start and
// drain it symmetrically with the other adapters.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(cfg config.HTTPServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
