package mimetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByFilename_KnownExtensions(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", ByFilename("index.html"))
	assert.Equal(t, "application/javascript; charset=utf-8", ByFilename("app.js"))
	assert.Equal(t, "image/png", ByFilename("photo.PNG"))
}

func TestByFilename_NoExtension(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ByFilename("Makefile"))
}

func TestByFilename_UnknownExtensionFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ByFilename("file.zzzzunknown"))
}

func TestByFilename_PathWithDirectories(t *testing.T) {
	assert.Equal(t, "text/css; charset=utf-8", ByFilename("/var/www/assets/style.css"))
}
