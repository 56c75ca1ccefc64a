package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilder_DocumentKey(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		id   string
		ext  string
		want string
	}{
		{name: "with dot ext", dir: "documents", id: "abc", ext: ".pdf", want: "documents/abc.pdf"},
		{name: "without dot ext", dir: "documents", id: "abc", ext: "pdf", want: "documents/abc.pdf"},
		{name: "no ext", dir: "documents", id: "abc", ext: "", want: "documents/abc"},
		{name: "trailing slash in dir", dir: "files/", id: "abc", ext: ".txt", want: "files/abc.txt"},
		{name: "empty dir uses default", dir: "", id: "abc", ext: ".txt", want: "documents/abc.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewKeyBuilder(tt.dir, "preview")
			assert.Equal(t, tt.want, k.DocumentKey(tt.id, tt.ext))
		})
	}
}

func TestKeyBuilder_PreviewKey(t *testing.T) {
	k := NewKeyBuilder("documents", "preview")
	assert.Equal(t, "preview/abc.jpg", k.PreviewKey("abc"))

	k = NewKeyBuilder("documents", "")
	assert.Equal(t, "preview/abc.jpg", k.PreviewKey("abc"))
}
