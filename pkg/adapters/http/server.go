package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/machi"
	"github.com/aretw0/machi/internal/logging"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/aretw0/machi/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Charter renders the flow served by the handler.
type Charter interface {
	Mermaid(opts ...machi.ChartOption) string
	MermaidPathways(name string, opts ...machi.ChartOption) string
}

// Server serves the session API.
type Server struct {
	sessions *session.Manager
	chart    Charter
	gatherer prometheus.Gatherer
	streams  *StreamManager
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithChart serves /graph and /pathways from c.
func WithChart(c Charter) Option {
	return func(s *Server) { s.chart = c }
}

// WithGatherer serves /metrics from g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for sessions.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		sessions: sessions,
		streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams.logger = s.logger

	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Get("/info", s.info)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.list)
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/", s.start)
			r.Get("/", s.get)
			r.Patch("/", s.update)
			r.Delete("/", s.delete)
			r.Post("/rewind", s.rewind)
			r.Get("/events", s.events)
		})
	})

	if s.chart != nil {
		r.Get("/graph", s.graph)
		r.Get("/pathways/{name}", s.pathways)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// StartRequest is the body of POST /sessions/{id}.
type StartRequest struct {
	Context map[string]any `json:"context"`
}

// UpdateRequest is the body of PATCH /sessions/{id}.
type UpdateRequest struct {
	Context map[string]any `json:"context"`
	Current string         `json:"current,omitempty"`
}

// RewindRequest is the body of POST /sessions/{id}/rewind.
type RewindRequest struct {
	Entry string `json:"entry"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "machi-http",
		"version": strings.TrimSpace(machi.Version),
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	res, err := s.sessions.Start(r.Context(), id, body.Context)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.broadcast(res.Diff)
	s.writeJSON(w, http.StatusCreated, res)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var body UpdateRequest
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.sessions.Update(r.Context(), chi.URLParam(r, "id"), body.Context, body.Current)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.broadcast(res.Diff)
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) rewind(w http.ResponseWriter, r *http.Request) {
	var body RewindRequest
	if !s.decode(w, r, &body) {
		return
	}
	state, err := s.sessions.Rewind(r.Context(), chi.URLParam(r, "id"), body.Entry)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	terminated := false
	s.broadcast(&domain.StateDiff{
		SessionID:      state.SessionID,
		CurrentEntryID: &state.CurrentEntryID,
		Terminated:     &terminated,
	})
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	opts, err := chartOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeText(w, s.chart.Mermaid(opts...))
}

func (s *Server) pathways(w http.ResponseWriter, r *http.Request) {
	opts, err := chartOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeText(w, s.chart.MermaidPathways(chi.URLParam(r, "name"), opts...))
}

func chartOptions(r *http.Request) ([]machi.ChartOption, error) {
	q := r.URL.Query()
	theme, err := machi.ParseTheme(q.Get("theme"))
	if err != nil {
		return nil, err
	}
	direction, err := machi.ParseDirection(q.Get("direction"))
	if err != nil {
		return nil, err
	}
	return []machi.ChartOption{machi.WithChartTheme(theme), machi.WithChartDirection(direction)}, nil
}

func (s *Server) broadcast(diff *domain.StateDiff) {
	if diff == nil || diff.IsEmpty() {
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("encode diff failed", "session_id", diff.SessionID, "err", err)
		return
	}
	s.streams.Broadcast(diff.SessionID, string(payload))
}

// decode reads a JSON body. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
	s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
	return false
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrEntryNotInHistory):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, body); err != nil {
		s.logger.Error("response write failed", "err", err)
	}
}
