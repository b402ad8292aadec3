package api

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/casewatch/internal/domain/model"
)

// RefreshDependencies defines the interface for manual refreshes.
type RefreshDependencies interface {
	Refresh(ctx context.Context) error
	CurrentSnapshot() (*model.Snapshot, error)
}

// RefreshHandler handles manual refresh requests.
type RefreshHandler struct {
	deps    RefreshDependencies
	limiter *rate.Limiter
}

// NewRefreshHandler creates a new refresh handler throttled by limiter.
func NewRefreshHandler(deps RefreshDependencies, limiter *rate.Limiter) *RefreshHandler {
	return &RefreshHandler{deps: deps, limiter: limiter}
}

type refreshResponse struct {
	Status  string `json:"status"`
	Version uint64 `json:"version"`
}

// HandlePostRefresh handles POST /refresh requests.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if !h.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
		return
	}
	if err := h.deps.Refresh(r.Context()); err != nil {
		status, code := refreshStatus(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	snap, err := h.deps.CurrentSnapshot()
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Status: "published", Version: snap.Version})
}
