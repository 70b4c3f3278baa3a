package photostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey_ExtensionFollowsMime(t *testing.T) {
	tests := []struct {
		mime string
		ext  string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"application/octet-stream", ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			key := NewKey(tt.mime)
			assert.Equal(t, tt.ext, key[len(key)-len(tt.ext):])
		})
	}
	assert.NotEqual(t, NewKey("image/png"), NewKey("image/png"))
}

func TestExtToMimeType(t *testing.T) {
	assert.Equal(t, "image/png", ExtToMimeType("a.PNG"))
	assert.Equal(t, "image/webp", ExtToMimeType("dir/b.webp"))
	assert.Equal(t, "image/jpeg", ExtToMimeType("noext"))
}
