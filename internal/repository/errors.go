package repository

import "errors"

// Sentinel errors shared by all repository implementations. Callers match
// them with errors.Is; implementations may wrap them with backend detail.
var (
	// ErrNotFound is returned when no row matches the query.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a write violates a unique
	// constraint, including the single-successor link between document
	// versions.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrReferentialIntegrity is returned when a delete is blocked by
	// rows still referencing the target.
	ErrReferentialIntegrity = errors.New("blocked by referencing rows")
)
