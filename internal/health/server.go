package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/logcheck/internal/schedule"
)

// Orchestrator is the scheduler surface the endpoints expose.
type Orchestrator interface {
	Healthy() bool
	Ready() bool
	Status() schedule.Status
}

// Server serves the operational endpoints: Prometheus metrics, the
// liveness and readiness probes, the job status snapshot, and an
// on-demand environment check.
type Server struct {
	logger  zerolog.Logger
	router  chi.Router
	srv     *http.Server
	orch    Orchestrator
	checker *Checker
}

func NewServer(logger zerolog.Logger, addr string, orch Orchestrator, checker *Checker) *Server {
	s := &Server{
		logger:  logger.With().Str("component", "status-server").Logger(),
		router:  chi.NewRouter(),
		orch:    orch,
		checker: checker,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	s.router.Get("/status", s.handleStatus)
	s.router.Get("/checks", s.handleChecks)
}

// ListenAndServe blocks until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("status server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleHealthz is liveness: the substrate heartbeats and the
// self-check passed recently. Container runtimes restart on 503.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	if s.orch.Healthy() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if s.orch.Ready() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.Status())
}

// handleChecks runs the environment checks on demand so an operator
// can probe a suspect host without waiting for the supervision tick.
func (s *Server) handleChecks(w http.ResponseWriter, r *http.Request) {
	res := s.checker.Run(r.Context())
	code := http.StatusOK
	if !res.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, res)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
