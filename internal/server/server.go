// Package server exposes the HTTP surface: submitting tailoring jobs,
// checking job status, and patching documents directly.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/MoKho/resume-api-backend/internal/jobs"
	"github.com/MoKho/resume-api-backend/internal/llm"
	"github.com/MoKho/resume-api-backend/internal/store"
	"github.com/MoKho/resume-api-backend/internal/tailor"
)

// Records is the slice of the store the server touches.
type Records interface {
	GetApplication(ctx context.Context, id string) (*store.Application, error)
	GetProfile(ctx context.Context, id string) (*store.Profile, error)
	UpsertJobHistory(ctx context.Context, h *store.JobHistory) error
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the port to listen on (default: 8080).
	Port string
	// Jobs accepts and reports tailoring jobs.
	Jobs *jobs.Manager
	// Records resolves and updates stored records.
	Records Records
	// Patcher applies direct document edits.
	Patcher tailor.DocPatcher
	// Gen backs the history extraction endpoint.
	Gen llm.Generator
	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// Server is the resume tailoring HTTP server.
type Server struct {
	httpServer *http.Server
	jobs       *jobs.Manager
	records    Records
	patcher    tailor.DocPatcher
	gen        llm.Generator
	logger     *slog.Logger
}

// New creates a Server with the given configuration.
func New(cfg Config) *Server {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		jobs:    cfg.Jobs,
		records: cfg.Records,
		patcher: cfg.Patcher,
		gen:     cfg.Gen,
		logger:  cfg.Logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
