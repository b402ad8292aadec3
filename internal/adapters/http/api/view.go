package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/casewatch/internal/domain/model"
	"github.com/okian/casewatch/internal/domain/search"
	"github.com/okian/casewatch/pkg/metrics"
)

// ViewDependencies defines the interface for filtered reads.
type ViewDependencies interface {
	CurrentSnapshot() (*model.Snapshot, error)
	SearchTerm() string
}

// ViewHandler handles view requests.
type ViewHandler struct {
	deps     ViewDependencies
	maxLimit int
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps ViewDependencies, maxLimit int) *ViewHandler {
	return &ViewHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

type viewResponse struct {
	Version uint64          `json:"version"`
	Term    string          `json:"term"`
	Count   int             `json:"count"`
	Entries []entryResponse `json:"entries"`
}

// HandleGetView handles GET /view?q=TERM&limit=N requests. Without q the
// active search term applies; q= (empty) shows everything.
func (h *ViewHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_view"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	limit := h.maxLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	term := h.deps.SearchTerm()
	if query.Has("q") {
		term = query.Get("q")
	}

	// Filter the snapshot we read once so positions and rows agree.
	snap, err := h.deps.CurrentSnapshot()
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	positions := make(map[string]int, len(snap.Records))
	for i, rec := range snap.Records {
		positions[rec.Name] = i + 1
	}

	view := search.Filter(snap.Records, term)
	metrics.RecordView(term != "", len(view))

	count := len(view)
	if len(view) > limit {
		view = view[:limit]
	}
	entries := make([]entryResponse, len(view))
	for i, rec := range view {
		entries[i] = toEntry(positions[rec.Name], rec)
	}
	writeJSON(w, http.StatusOK, viewResponse{
		Version: snap.Version,
		Term:    term,
		Count:   count,
		Entries: entries,
	})
}
