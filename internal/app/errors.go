package service

import (
	"errors"

	"github.com/okian/casewatch/internal/adapters/repository"
)

// Sentinel kinds for engine errors.
var (
	ErrInvalidConfig  = errors.New("invalid engine configuration")
	ErrNoSnapshot     = repository.ErrNoSnapshot
	ErrCycleInFlight  = errors.New("refresh cycle already in flight")
	ErrCycleDiscarded = errors.New("refresh result discarded after shutdown")
	ErrStopped        = errors.New("engine stopped")
)
