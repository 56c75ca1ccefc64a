package model

// Document is a stored file plus its metadata. Once persisted, the binary
// content referenced by FileKey is immutable; corrections happen by creating
// a replacement document that links back to this one via ReplacesID.
type Document struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TypeID      string  `json:"type_id"`
	FileKey     string  `json:"file_key"`
	FileSize    int64   `json:"file_size"`
	ContentType string  `json:"content_type"`
	PreviewKey  *string `json:"preview_key,omitempty"`
	Content     *string `json:"content,omitempty"`
	ReplacesID  *string `json:"replaces_id,omitempty"`
	// ReplacedByID is resolved from the successor link on reads.
	// It is never written directly.
	ReplacedByID *string `json:"replaced_by_id,omitempty"`
	Timestamps
}

// IsStored reports whether the document has been persisted.
func (d *Document) IsStored() bool {
	return d.ID != ""
}

// IsLatestVersion reports whether no replacement supersedes this document.
func (d *Document) IsLatestVersion() bool {
	return d.ReplacedByID == nil
}

// HasPreview reports whether a derived preview image exists for this document.
func (d *Document) HasPreview() bool {
	return d.PreviewKey != nil && *d.PreviewKey != ""
}
