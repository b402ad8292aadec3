// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/casewatch/internal/domain/model"
	"github.com/okian/casewatch/pkg/metrics"
)

// SnapshotReader reads the published snapshot.
type SnapshotReader interface {
	CurrentSnapshot() (*model.Snapshot, error)
}

// HealthHandler handles health and metrics requests.
type HealthHandler struct {
	deps    SnapshotReader
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps SnapshotReader) *HealthHandler {
	return &HealthHandler{
		deps: deps,
		// Use our custom metrics registry to serve metrics
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version uint64 `json:"version"`
}

// HandleHealth handles GET /healthz requests. The process is healthy as soon
// as it serves; ready reports whether a snapshot has been published.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := healthResponse{Status: "ok"}
	if snap, err := h.deps.CurrentSnapshot(); err == nil {
		resp.Ready = true
		resp.Version = snap.Version
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleMetrics handles GET /metrics requests in the Prometheus text format.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
