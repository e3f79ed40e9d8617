// Package status serves a read-only view of a collection run in progress.
// Runs last hours under the polite request pacing, so the operator gets a
// local endpoint to check on counters without touching the worker.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Source reports the fetcher's progress counters.
type Source interface {
	TotalRequests() int64
	ErrorRequests() int64
	Cooldown() time.Duration
}

// Server exposes /healthz and /stats on a local address.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

type stats struct {
	RunID           string    `json:"run_id"`
	Started         time.Time `json:"started"`
	TotalRequests   int64     `json:"total_requests"`
	ErrorRequests   int64     `json:"error_requests"`
	CooldownSeconds float64   `json:"cooldown_seconds"`
}

// New builds a Server for the given run.
func New(addr, runID string, started time.Time, src Source) *Server {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats{
			RunID:           runID,
			Started:         started,
			TotalRequests:   src.TotalRequests(),
			ErrorRequests:   src.ErrorRequests(),
			CooldownSeconds: src.Cooldown().Seconds(),
		})
	})

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: r},
		logger: slog.Default(),
	}
}

// Handler returns the server's route tree (for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
