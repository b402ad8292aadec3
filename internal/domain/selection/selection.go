// Package selection picks the records with the largest primary metric.
//
// TopN is a randomized quickselect over a three-way partition. It runs in
// expected linear time and degrades to quadratic time on unlucky pivots;
// nothing downstream depends on the bound.
package selection

import (
	"math/rand/v2"

	"github.com/okian/casewatch/internal/domain/model"
)

// Rand supplies pivot indexes. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// globalRand draws from the goroutine-safe top-level math/rand/v2 source.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// NewSeeded returns a deterministic Rand for reproducible selections.
func NewSeeded(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // pivot choice, not security
}

// TopN returns min(n, len(records)) records whose metrics are each >= the
// metric of every excluded record. Output order is unspecified. records is
// not modified. A nil rng uses the package-level math/rand/v2 source.
func TopN(records []model.Record, n int, rng Rand) []model.Record {
	if n <= 0 || len(records) == 0 {
		return []model.Record{}
	}
	if rng == nil {
		rng = globalRand{}
	}

	out := make([]model.Record, 0, min(n, len(records)))
	cur := records
	need := n
	for {
		if len(cur) <= need {
			return append(out, cur...)
		}

		pivot := cur[rng.IntN(len(cur))].Metric
		greater, equal, less := partition(cur, pivot)

		switch {
		case len(greater) == need:
			return append(out, greater...)
		case len(greater) > need:
			cur = greater
		case len(greater)+len(equal) >= need:
			out = append(out, greater...)
			return append(out, equal[:need-len(greater)]...)
		default:
			out = append(out, greater...)
			out = append(out, equal...)
			need -= len(greater) + len(equal)
			cur = less
		}
	}
}

// partition splits records around pivot into fresh slices.
func partition(records []model.Record, pivot int64) (greater, equal, less []model.Record) {
	for _, r := range records {
		switch {
		case r.Metric > pivot:
			greater = append(greater, r)
		case r.Metric == pivot:
			equal = append(equal, r)
		default:
			less = append(less, r)
		}
	}
	return greater, equal, less
}
