// Package mimetable maps file extensions to content types for the
// static-file engine. A small built-in table covers the common web
// asset types; anything else falls back to net/http's sniff-free
// extension lookup via mime.TypeByExtension, matching the layering
// the teacher's staticfiles package uses (an explicit table checked
// before falling back to the stdlib mime package).
package mimetable

import (
	"mime"
	"path/filepath"
	"strings"
)

var builtin = map[string]string{
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".mjs":  "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
	".xml":  "application/xml; charset=utf-8",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".wasm": "application/wasm",
	".pdf":  "application/pdf",
	".woff": "font/woff",
	".woff2": "font/woff2",
}

const defaultType = "application/octet-stream"

// ByFilename infers the content type of name by its extension.
func ByFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return defaultType
	}
	if ct, ok := builtin[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultType
}
