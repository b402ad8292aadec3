// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// MissingValue marks a metric or secondary field that a source could not read
// as a non-negative integer. Validate rejects records carrying it.
const MissingValue int64 = -1

// ErrMalformedRecord reports a raw record that cannot enter a refresh cycle.
var ErrMalformedRecord = errors.New("malformed record")

// Record is one entity row as delivered by a record source.
type Record struct {
	Name   string           // identity key, unique within one fetch
	Metric int64            // primary ranking metric
	Fields map[string]int64 // secondary fields, summed but never ranked
	Meta   map[string]any   // display metadata, passed through untouched
}

// Field returns the named secondary field, or 0 when the record does not carry it.
func (r Record) Field(name string) int64 {
	return r.Fields[name]
}

// Validate reports whether r can take part in selection.
func Validate(r Record) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrMalformedRecord)
	}
	if r.Metric < 0 {
		return fmt.Errorf("%w: %q has no valid metric", ErrMalformedRecord, r.Name)
	}
	for k, v := range r.Fields {
		if v < 0 {
			return fmt.Errorf("%w: %q has invalid field %q", ErrMalformedRecord, r.Name, k)
		}
	}
	return nil
}

// Sanitize drops records that fail Validate or repeat an earlier name.
// The first occurrence of a name wins. It returns the kept records in input
// order and the number of dropped ones.
func Sanitize(records []Record) ([]Record, int) {
	out := make([]Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0
	for _, r := range records {
		if Validate(r) != nil {
			dropped++
			continue
		}
		if _, dup := seen[r.Name]; dup {
			dropped++
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r)
	}
	return out, dropped
}
