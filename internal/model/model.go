package model

// Package model contains the domain entities as plain structs.
// No persistence or transport coupling; the small helpers here only
// express invariants of the data itself.

import "time"

// Timestamps carries the audit timestamps shared by all persisted entities.
// CreatedAt is set once at construction and never changes afterwards.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTimestamps returns timestamps for a freshly created entity.
func NewTimestamps(now time.Time) Timestamps {
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification without altering CreatedAt.
func (t *Timestamps) Touch(now time.Time) {
	t.UpdatedAt = now
}
