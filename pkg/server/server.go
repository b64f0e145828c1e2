// Package server exposes the monitor's state over HTTP: the latest snapshot,
// the persisted history, and a health probe.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/levenlabs/go-lflag"
	"github.com/tempotrack/tempotrack/pkg/log"
	"github.com/tempotrack/tempotrack/pkg/storage"
	"github.com/tempotrack/tempotrack/pkg/types"
)

const defaultHistoryWindow = 24 * time.Hour

// SnapshotSource provides the latest refresh snapshot. Implemented by the
// monitor.
type SnapshotSource interface {
	Latest() (types.ConsumptionSnapshot, bool)
}

// Server handles the read-only HTTP API for the monitor.
type Server struct {
	monitor SnapshotSource
	storage storage.Database

	listenAddr string
	httpServer *http.Server
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(m SnapshotSource, s storage.Database) *Server {
	srv := &Server{
		monitor: m,
		storage: s,
	}

	listenAddr := lflag.String("http-listen", ":8080", "HTTP server listen address")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return gziphandler.GzipHandler(mux)
}

// Run starts the HTTP server and blocks until the context is canceled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.monitor.Latest()
	if !ok {
		writeJSONError(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		writeJSONError(w, "history not available", http.StatusNotFound)
		return
	}

	end := time.Now()
	start := end.Add(-defaultHistoryWindow)
	var err error
	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = time.Parse(time.RFC3339, v); err != nil {
			writeJSONError(w, "invalid start: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = time.Parse(time.RFC3339, v); err != nil {
			writeJSONError(w, "invalid end: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if !end.After(start) {
		writeJSONError(w, "end must be after start", http.StatusBadRequest)
		return
	}

	history, err := s.storage.GetSnapshotHistory(r.Context(), start, end)
	if err != nil {
		log.Ctx(r.Context()).ErrorContext(r.Context(), "history query failed", slog.Any("error", err))
		writeJSONError(w, "history query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, history)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}
