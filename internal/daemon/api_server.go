package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"mediajobs/internal/api"
	"mediajobs/internal/config"
	"mediajobs/internal/events"
	"mediajobs/internal/logging"
	"mediajobs/internal/services"
	"mediajobs/internal/workflow"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(strings.TrimSpace(cfg.Paths.APIToken)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) routes(token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", guard(token, s.handleStatus))
	mux.HandleFunc("GET /api/jobs", guard(token, s.handleList))
	mux.HandleFunc("POST /api/jobs", guard(token, s.handleEnqueue))
	mux.HandleFunc("POST /api/jobs/cancel-all", guard(token, s.handleCancelAll))
	mux.HandleFunc("GET /api/jobs/{id}", guard(token, s.handleJob))
	mux.HandleFunc("POST /api/jobs/{id}/cancel", guard(token, s.handleCancel))
	mux.HandleFunc("PUT /api/root", guard(token, s.handleSetRoot))
	// The websocket handler checks the token itself so browsers can pass it
	// as a query parameter.
	mux.Handle("GET /api/events", events.NewWebsocketHandler(s.daemon.Hub(), token, s.logger))
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
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
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()).API())
}

func (s *apiServer) handleList(w http.ResponseWriter, r *http.Request) {
	listing, err := s.daemon.List(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromListing(listing))
}

func (s *apiServer) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req api.EnqueueRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.daemon.Enqueue(r.Context(), req.WorkflowRequest())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.EnqueueResponse{ID: id})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.daemon.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: api.FromJob(job)})
}

func (s *apiServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	canceled, err := s.daemon.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CancelResponse{Canceled: canceled})
}

func (s *apiServer) handleCancelAll(w http.ResponseWriter, r *http.Request) {
	count, err := s.daemon.CancelAll(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CancelAllResponse{Canceled: count})
}

func (s *apiServer) handleSetRoot(w http.ResponseWriter, r *http.Request) {
	var req api.SetRootRequest
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.daemon.SetRoot(r.Context(), req.Root); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()).API().Workflow)
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// writeFailure maps error markers onto HTTP status codes.
func (s *apiServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrNotRunning), errors.Is(err, workflow.ErrNotRunning):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.log()).Warn("api request failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
