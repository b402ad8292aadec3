package api

import (
	"encoding/json"
	"net/http"
)

// SearchDependencies defines the interface for the shared search term.
type SearchDependencies interface {
	SetSearchTerm(term string)
	SearchTerm() string
}

// SearchHandler handles search term requests.
type SearchHandler struct {
	deps SearchDependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps SearchDependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

type searchRequest struct {
	Term *string `json:"term"`
}

type searchResponse struct {
	Term string `json:"term"`
}

// HandleSearch handles GET /search and PUT /search requests. PUT submits a
// new term; readers of GET /view pick it up on their next request.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, searchResponse{Term: h.deps.SearchTerm()})
	case http.MethodPut:
		var req searchRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchRequestBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if req.Term == nil {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		h.deps.SetSearchTerm(*req.Term)
		writeJSON(w, http.StatusOK, searchResponse{Term: *req.Term})
	default:
		http.NotFound(w, r)
	}
}
