package constants

import (
	"path/filepath"
	"strings"
)

// MediaType is the canonical media type of a submitted claim document.
type MediaType string

const (
	MediaPDF MediaType = "pdf"
	MediaJPG MediaType = "jpg"
	MediaPNG MediaType = "png"
)

// AllowedExtensions holds the file extensions accepted for claim ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

var mediaAliases = map[string]MediaType{
	"pdf":             MediaPDF,
	"application/pdf": MediaPDF,
	"jpg":             MediaJPG,
	"jpeg":            MediaJPG,
	"image/jpeg":      MediaJPG,
	"image/jpg":       MediaJPG,
	"png":             MediaPNG,
	"image/png":       MediaPNG,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ParseMediaType accepts an extension, a MIME type or a canonical name.
func ParseMediaType(s string) (MediaType, bool) {
	mt, ok := mediaAliases[NormalizeExt(s)]
	return mt, ok
}

// MediaTypeFromPath maps a file path to its media type by extension.
func MediaTypeFromPath(path string) (MediaType, bool) {
	return ParseMediaType(filepath.Ext(path))
}

// IsImage reports whether the media type is a raster image.
func (m MediaType) IsImage() bool {
	return m == MediaJPG || m == MediaPNG
}

// MIME returns the IANA media type string.
func (m MediaType) MIME() string {
	switch m {
	case MediaPDF:
		return "application/pdf"
	case MediaJPG:
		return "image/jpeg"
	case MediaPNG:
		return "image/png"
	}
	return "application/octet-stream"
}
