package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// DocumentType is a shared category for documents. The slug is derived from
// the name exactly once at construction, so external references stay stable
// across renames.
type DocumentType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Timestamps
}

// NewDocumentType builds a type with a fresh ID and the slug derived from
// the given name. This is the only place a slug is ever computed.
func NewDocumentType(name string, now time.Time) *DocumentType {
	return &DocumentType{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       slug.Make(name),
		Timestamps: NewTimestamps(now),
	}
}
