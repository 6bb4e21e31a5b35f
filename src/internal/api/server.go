package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(bindAddr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         bindAddr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start listens on the bind address and serves until Stop is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	log.Infof("[API] Listening on %s", ln.Addr())
	log.Infof("[API] Example: curl http://%s/api/v1/policy", ln.Addr())

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the API server
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}
