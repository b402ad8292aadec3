// Package search derives filtered views from a published sequence.
package search

import (
	"slices"
	"strings"

	"github.com/okian/casewatch/internal/domain/model"
)

// Filter returns the records whose name contains term, ignoring case, in
// their original order. An empty term returns a copy of every record.
// records is never modified.
func Filter(records []model.Record, term string) []model.Record {
	if term == "" {
		out := slices.Clone(records)
		if out == nil {
			out = []model.Record{}
		}
		return out
	}
	needle := strings.ToLower(term)
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}
