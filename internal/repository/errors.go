package repository

import "errors"

var (
	// ErrNotFound maps gorm's record-not-found for callers that should not
	// depend on gorm directly.
	ErrNotFound = errors.New("repository: record not found")
	// ErrVersionConflict means an optimistic version check failed: the row
	// was modified between the caller's read and its write.
	ErrVersionConflict = errors.New("repository: version conflict")
)
