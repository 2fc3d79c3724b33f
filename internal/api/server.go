package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"carousel/internal/config"
	"carousel/internal/logging"
	"carousel/internal/store"
	"carousel/internal/workflow"
)

// Runner is the trigger entry point the API invokes for manual runs.
type Runner interface {
	RunForAllAccounts(ctx context.Context, trigger string) (*workflow.RunSummary, error)
	RunForAccount(ctx context.Context, accountID int64, trigger string) (*workflow.RunSummary, error)
}

// Server is the admin HTTP server.
type Server struct {
	bind       string
	uploadsDir string
	logger     *slog.Logger
	store      *store.Store
	runner     Runner

	listener net.Listener
	server   *http.Server
}

// NewServer builds the admin server. It returns nil when no bind address is
// configured, which disables the HTTP surface entirely.
func NewServer(cfg *config.Config, st *store.Store, runner Runner, logger *slog.Logger) (*Server, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("config and store are required")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &Server{
		bind:       bind,
		uploadsDir: cfg.UploadsDir(),
		logger:     logging.NewComponentLogger(logger, "api-server"),
		store:      st,
		runner:     runner,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/accounts", srv.handleAccounts)
	mux.HandleFunc("/api/accounts/", srv.handleAccount)
	mux.HandleFunc("/api/items", srv.handleItems)
	mux.HandleFunc("/api/items/", srv.handleItem)
	mux.HandleFunc("/api/runs", srv.handleRuns)
	mux.HandleFunc("/api/runs/", srv.handleRun)
	mux.HandleFunc("/api/attempts", srv.handleAttempts)
	mux.HandleFunc("/api/scheduler/trigger/all", srv.handleTriggerAll)
	mux.HandleFunc("/api/scheduler/trigger/account/", srv.handleTriggerAccount)
	mux.Handle("/public/uploads/", http.StripPrefix("/public/uploads/",
		http.FileServer(http.Dir(srv.uploadsDir))))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Manual triggers block on full pipeline passes, so responses are
		// not write-deadline bounded.
		WriteTimeout: 0,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start binds the listener and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, allowing in-flight requests a short grace
// period.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

// Addr returns the bound listen address, or the configured bind before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// Handler exposes the route table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
