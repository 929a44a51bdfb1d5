package entity

import (
	"bytes"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
)

// DefaultMaxBytes is the document size ceiling when none is configured.
const DefaultMaxBytes int64 = 10 << 20

// Document is a submitted claim file. It is immutable once constructed.
type Document struct {
	content   []byte
	mediaType constants.MediaType
	filename  string
}

// NewDocument validates size and media type and copies content.
// mediaType may be a canonical name, an extension or a MIME type.
func NewDocument(content []byte, mediaType string, maxBytes int64) (Document, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	mt, ok := constants.ParseMediaType(mediaType)
	if !ok {
		return Document{}, common.UnsupportedMediaTypef("media type %q is not one of pdf, jpg, png", mediaType)
	}
	if int64(len(content)) > maxBytes {
		return Document{}, common.DocumentTooLargef("document is %d bytes, limit is %d", len(content), maxBytes)
	}
	return Document{content: bytes.Clone(content), mediaType: mt}, nil
}

// WithFilename returns a copy carrying a display name.
func (d Document) WithFilename(name string) Document {
	d.filename = name
	return d
}

// Content returns a copy of the document bytes.
func (d Document) Content() []byte { return bytes.Clone(d.content) }

func (d Document) MediaType() constants.MediaType { return d.mediaType }

func (d Document) Size() int64 { return int64(len(d.content)) }

func (d Document) Filename() string { return d.filename }
