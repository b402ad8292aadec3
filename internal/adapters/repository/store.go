// Package repository holds the published ranking snapshot.
package repository

import "github.com/okian/casewatch/internal/domain/model"

// Store provides read/publish access to the current snapshot.
type Store interface {
	// Load returns the latest published snapshot.
	// Returns ErrNoSnapshot before the first publish.
	Load() (*model.Snapshot, error)

	// Publish stamps snap with the next version and publish time and makes it
	// the current snapshot. The returned value is the stored snapshot.
	Publish(snap *model.Snapshot) (*model.Snapshot, error)
}
