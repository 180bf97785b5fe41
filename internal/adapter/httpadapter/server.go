package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusFunc returns a JSON-encodable snapshot of the node.
type StatusFunc func() any

// Server exposes health, readiness, status and metrics endpoints for one node.
type Server struct {
	httpServer *http.Server
	role       string
	ready      sharedobs.ReadinessChecker
	status     StatusFunc
	logger     *slog.Logger
}

type readinessResponse struct {
	Status string `json:"status"`
	Role   string `json:"role"`
	Error  string `json:"error,omitempty"`
}

type statusResponse struct {
	Role string `json:"role"`
	Node any    `json:"node"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /status and
// /metrics routes for a node of the given role. Metrics are served from
// gatherer; pass prometheus.DefaultGatherer in production.
func NewServer(addr, role string, ready sharedobs.ReadinessChecker, status StatusFunc, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		role:   role,
		ready:  ready,
		status: status,
		logger: logger.With("component", "http"),
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return s
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ready.CheckReadiness(r.Context()); err != nil {
		s.logger.Debug("readiness check failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, readinessResponse{
			Status: "not ready",
			Role:   s.role,
			Error:  err.Error(),
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, readinessResponse{Status: "ready", Role: s.role})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, statusResponse{Role: s.role, Node: s.status()})
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr, "role", s.role)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
