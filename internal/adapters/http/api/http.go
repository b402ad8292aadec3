// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/casewatch/internal/adapters/repository"
	"github.com/okian/casewatch/internal/adapters/source"
	service "github.com/okian/casewatch/internal/app"
	"github.com/okian/casewatch/internal/domain/model"
)

// Default server configuration constants.
const (
	defaultMaxViewLimit  = 500
	defaultRefreshEvery  = 5 * time.Second
	defaultRefreshBurst  = 1
	maxSearchRequestBody = 4 << 10
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	// Read operations expose the published snapshot.
	CurrentSnapshot() (*model.Snapshot, error)
	AggregateTotals() (map[string]int64, error)

	// Search term shared by all readers of CurrentView.
	SetSearchTerm(term string)
	SearchTerm() string

	// Refresh runs a cycle now.
	Refresh(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	snapshotHandler *SnapshotHandler
	viewHandler     *ViewHandler
	searchHandler   *SearchHandler
	refreshHandler  *RefreshHandler

	maxViewLimit int
	refreshEvery time.Duration
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxViewLimit caps the limit accepted by GET /view.
func WithMaxViewLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxViewLimit = n
		}
	}
}

// WithRefreshInterval sets the minimum spacing of manual refreshes.
func WithRefreshInterval(every time.Duration) Option {
	return func(s *Server) {
		if every > 0 {
			s.refreshEvery = every
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxViewLimit: defaultMaxViewLimit,
		refreshEvery: defaultRefreshEvery,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.snapshotHandler = NewSnapshotHandler(deps)
	s.viewHandler = NewViewHandler(deps, s.maxViewLimit)
	s.searchHandler = NewSearchHandler(deps)
	s.refreshHandler = NewRefreshHandler(deps, rate.NewLimiter(rate.Every(s.refreshEvery), defaultRefreshBurst))
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/snapshot", MetricsMiddleware(s.snapshotHandler.HandleGetSnapshot, "snapshot"))
	mux.HandleFunc("/totals", MetricsMiddleware(s.snapshotHandler.HandleGetTotals, "totals"))
	mux.HandleFunc("/view", MetricsMiddleware(s.viewHandler.HandleGetView, "view"))
	mux.HandleFunc("/search", MetricsMiddleware(s.searchHandler.HandleSearch, "search"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandlePostRefresh, "refresh"))
}

// entryResponse is one ranked row. Rank is the 1-based position in the
// published sequence, so the pinned entity is always rank 1.
type entryResponse struct {
	Rank   int              `json:"rank"`
	Name   string           `json:"name"`
	Metric int64            `json:"metric"`
	Fields map[string]int64 `json:"fields,omitempty"`
	Meta   map[string]any   `json:"meta,omitempty"`
}

func toEntry(rank int, r model.Record) entryResponse {
	return entryResponse{
		Rank:   rank,
		Name:   r.Name,
		Metric: r.Metric,
		Fields: r.Fields,
		Meta:   r.Meta,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeReadError maps a snapshot read failure to a response.
func writeReadError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNoSnapshot) {
		writeError(w, http.StatusServiceUnavailable, "no_snapshot", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}

// refreshStatus maps a manual refresh failure to a status and code.
func refreshStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrCycleInFlight):
		return http.StatusConflict, "cycle_in_flight"
	case errors.Is(err, service.ErrStopped), errors.Is(err, service.ErrCycleDiscarded):
		return http.StatusServiceUnavailable, "engine_stopped"
	case errors.Is(err, source.ErrFetch):
		return http.StatusBadGateway, "fetch_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
