package storage

import (
	"path"
	"strings"
)

// KeyBuilder derives object keys for document files and their previews from
// the configured directory prefixes. Keys are stable for the life of the
// object; the file key of a stored document never changes.
type KeyBuilder struct {
	documentsDir string
	previewDir   string
}

// NewKeyBuilder returns a KeyBuilder using the given prefixes. Empty
// prefixes fall back to "documents" and "preview".
func NewKeyBuilder(documentsDir, previewDir string) KeyBuilder {
	if documentsDir == "" {
		documentsDir = "documents"
	}
	if previewDir == "" {
		previewDir = "preview"
	}
	return KeyBuilder{
		documentsDir: strings.Trim(documentsDir, "/"),
		previewDir:   strings.Trim(previewDir, "/"),
	}
}

// DocumentKey returns the object key for a document file. ext may be given
// with or without the leading dot; an empty ext yields a bare key.
func (k KeyBuilder) DocumentKey(id, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(k.documentsDir, id+ext)
}

// PreviewKey returns the object key for a document's preview image.
// Previews are always stored as JPEG.
func (k KeyBuilder) PreviewKey(id string) string {
	return path.Join(k.previewDir, id+".jpg")
}
