package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals a caller contract violation (bad query, limit, threshold).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidSnapshot signals a catalog snapshot that cannot be published.
	ErrInvalidSnapshot = errors.New("invalid catalog snapshot")
	// ErrSnapshotNotLoaded signals that no catalog snapshot has been published yet.
	ErrSnapshotNotLoaded = errors.New("catalog snapshot not loaded")
	// ErrSourceUnavailable signals a failure of the catalog fetch collaborator.
	ErrSourceUnavailable = errors.New("catalog source unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// SnapshotError wraps ErrInvalidSnapshot with the offending item position.
type SnapshotError struct {
	Position int
	ID       string
	Reason   string
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("%s: item %d (id %q): %s", ErrInvalidSnapshot.Error(), e.Position, e.ID, e.Reason)
}

func (e *SnapshotError) Unwrap() error { return ErrInvalidSnapshot }

// NewSnapshotError creates a snapshot validation error.
func NewSnapshotError(position int, id, reason string) error {
	return &SnapshotError{Position: position, ID: id, Reason: reason}
}
