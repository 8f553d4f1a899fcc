package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"fjacquet/pdf-ledger/internal/logging"
)

// ShutdownTimeout bounds how long in-flight requests get after the serve
// context is cancelled.
const ShutdownTimeout = 30 * time.Second

// Server runs the API until its context is cancelled.
type Server struct {
	http   *http.Server
	logger logging.Logger
}

// NewServer creates a server for handler on addr.
func NewServer(addr string, handler http.Handler, logger logging.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logging.OrDefault(logger),
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", logging.F("addr", ln.Addr().String()))
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
