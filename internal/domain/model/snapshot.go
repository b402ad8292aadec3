package model

import "time"

// Snapshot is one immutable, fully consistent result of a refresh cycle.
// It is superseded by the next cycle, never mutated.
type Snapshot struct {
	Version     uint64           // increases by one per published cycle
	CycleID     string           // correlates logs of the cycle that built it
	PublishedAt time.Time        // wall clock at publish
	Records     []Record         // ranked, pinned entry first when present
	Totals      map[string]int64 // exact sums over Records
	SourceCount int              // records returned by the source
	Dropped     int              // malformed or duplicate records skipped
}

// Len returns the number of published records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}
