package api

import (
	"net/http"
	"time"

	"github.com/okian/casewatch/internal/domain/model"
)

// SnapshotDependencies defines the interface for snapshot reads.
type SnapshotDependencies interface {
	CurrentSnapshot() (*model.Snapshot, error)
	AggregateTotals() (map[string]int64, error)
}

// SnapshotHandler handles snapshot and totals requests.
type SnapshotHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

type snapshotResponse struct {
	Version     uint64           `json:"version"`
	CycleID     string           `json:"cycle_id"`
	PublishedAt time.Time        `json:"published_at"`
	SourceCount int              `json:"source_count"`
	Dropped     int              `json:"dropped"`
	Totals      map[string]int64 `json:"totals"`
	Entries     []entryResponse  `json:"entries"`
}

type totalsResponse struct {
	Totals map[string]int64 `json:"totals"`
}

// HandleGetSnapshot handles GET /snapshot requests.
func (h *SnapshotHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_snapshot"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap, err := h.deps.CurrentSnapshot()
	if err != nil {
		writeReadError(w, op, err)
		return
	}

	entries := make([]entryResponse, len(snap.Records))
	for i, rec := range snap.Records {
		entries[i] = toEntry(i+1, rec)
	}
	writeJSON(w, http.StatusOK, snapshotResponse{
		Version:     snap.Version,
		CycleID:     snap.CycleID,
		PublishedAt: snap.PublishedAt.UTC(),
		SourceCount: snap.SourceCount,
		Dropped:     snap.Dropped,
		Totals:      snap.Totals,
		Entries:     entries,
	})
}

// HandleGetTotals handles GET /totals requests. Totals always cover the
// whole snapshot, whatever the active search term.
func (h *SnapshotHandler) HandleGetTotals(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_totals"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	totals, err := h.deps.AggregateTotals()
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, totalsResponse{Totals: totals})
}
