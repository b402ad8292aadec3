// Package source supplies raw entity records to the refresh pipeline.
//
// A Source is an opaque data provider: the engine calls Fetch once per
// refresh cycle and treats any error as a FetchError. Records a source cannot
// read completely carry model.MissingValue and are dropped by the pipeline.
package source

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/casewatch/internal/domain/model"
)

// Source returns the current unordered record set.
type Source interface {
	Fetch(ctx context.Context) ([]model.Record, error)
}

// FuncSource adapts a function to Source.
type FuncSource func(ctx context.Context) ([]model.Record, error)

// Fetch calls f.
func (f FuncSource) Fetch(ctx context.Context) ([]model.Record, error) {
	return f(ctx)
}

// StaticSource serves a fixed record set that can be swapped at runtime.
type StaticSource struct {
	mu      sync.RWMutex
	records []model.Record
	err     error
}

// NewStaticSource returns a StaticSource serving records.
func NewStaticSource(records []model.Record) *StaticSource {
	return &StaticSource{records: slices.Clone(records)}
}

// Set replaces the served records and clears any failure.
func (s *StaticSource) Set(records []model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Clone(records)
	s.err = nil
}

// Fail makes subsequent fetches return err until Set is called.
func (s *StaticSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Fetch returns a copy of the served records.
func (s *StaticSource) Fetch(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchErr("source.static", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, fetchErr("source.static", s.err)
	}
	return slices.Clone(s.records), nil
}
