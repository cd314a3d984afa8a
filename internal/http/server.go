// Package http exposes the orchestration entry point over a small JSON
// API. It is the caller layer: it mints session ids and logs transcripts,
// keeping identity generation and chat-history display outside the core.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/curamyn/curamyn/internal/config"
	"github.com/curamyn/curamyn/internal/lifecycle"
	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/orchestrator"
	"github.com/curamyn/curamyn/internal/storage"
)

// Server is the HTTP API server.
type Server struct {
	server      *http.Server
	authToken   string
	rateLimiter *RateLimiter

	orch      *orchestrator.Orchestrator
	lifecycle *lifecycle.Lifecycle
	store     *storage.Store
}

// NewServer creates the API server.
func NewServer(cfg config.ServerConfig, orch *orchestrator.Orchestrator, lc *lifecycle.Lifecycle, store *storage.Store) (*Server, error) {
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("server auth token not configured")
	}

	listen := cfg.Listen
	if listen == "" {
		listen = ":8085"
	}

	s := &Server{
		authToken:   cfg.AuthToken,
		rateLimiter: NewRateLimiter(10 * time.Second),
		orch:        orch,
		lifecycle:   lc,
		store:       store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/interact", s.auth(s.handleInteract))
	mux.HandleFunc("/api/session/end", s.auth(s.handleSessionEnd))
	mux.HandleFunc("/api/consent", s.auth(s.handleConsent))
	mux.HandleFunc("/api/history", s.auth(s.handleHistory))
	mux.HandleFunc("/api/summary", s.auth(s.handleSummary))
	mux.HandleFunc("/api/health", s.handleHealth)

	s.server = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Start begins serving. Blocks until the listener stops.
func (s *Server) Start() error {
	L_info("http: server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	L_info("http: server shutting down")
	return s.server.Shutdown(ctx)
}

// handleHealth is the unauthenticated liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		L_error("http: encode response failed", "error", err)
	}
}

// writeError encodes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
