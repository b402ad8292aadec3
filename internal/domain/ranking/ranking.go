// Package ranking orders selected records and applies the pinned entity.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/casewatch/internal/domain/model"
)

// Rank returns a copy of records sorted by metric descending.
// The sort is stable: equal metrics keep their selector output order.
func Rank(records []model.Record) []model.Record {
	out := slices.Clone(records)
	if out == nil {
		out = []model.Record{}
	}
	slices.SortStableFunc(out, func(a, b model.Record) int {
		return cmp.Compare(b.Metric, a.Metric)
	})
	return out
}

// Pin returns a new sequence with the record named key at position 0.
//
// If key is empty or not present in raw, ranked is returned as a copy.
// If key is already in ranked it is moved to the front and the length is
// unchanged. Otherwise the raw record is prepended and the length grows by
// one; no ranked record is evicted to make room.
func Pin(ranked, raw []model.Record, key string) []model.Record {
	if key == "" {
		return slices.Clone(ranked)
	}
	i := slices.IndexFunc(raw, func(r model.Record) bool { return r.Name == key })
	if i < 0 {
		return slices.Clone(ranked)
	}
	pinned := raw[i]

	out := make([]model.Record, 0, len(ranked)+1)
	if j := slices.IndexFunc(ranked, func(r model.Record) bool { return r.Name == key }); j >= 0 {
		out = append(out, ranked[j])
		out = append(out, ranked[:j]...)
		return append(out, ranked[j+1:]...)
	}
	out = append(out, pinned)
	return append(out, ranked...)
}
