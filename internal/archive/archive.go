// Package archive packs a set of named parts into a zip container.
package archive

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"
)

// Encoding selects the form of the finalized archive.
type Encoding string

const (
	EncodingBuffer Encoding = "buffer" // raw zip bytes
	EncodingBase64 Encoding = "base64" // standard base64 of the zip bytes
	EncodingText   Encoding = "text"   // raw zip bytes meant for string conversion
)

// ErrArchive marks every failure produced while packing.
var ErrArchive = errors.New("archive: pack failed")

// Epoch is the default entry timestamp. A fixed value keeps repeated builds
// of the same input byte-identical.
var Epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseEncoding validates an encoding name. The empty string selects
// EncodingBuffer.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingBuffer:
		return EncodingBuffer, nil
	case EncodingBase64, EncodingText:
		return Encoding(s), nil
	}
	return "", fmt.Errorf("unknown output encoding %q (want buffer, base64 or text)", s)
}

type part struct {
	path string
	data []byte
}

// Builder collects parts in insertion order. It is single-use: Finalize may
// be called once.
type Builder struct {
	parts    []part
	seen     map[string]struct{}
	modified time.Time
	done     bool
}

// NewBuilder returns a Builder whose entries are stamped with modified. A zero
// time selects Epoch.
func NewBuilder(modified time.Time) *Builder {
	if modified.IsZero() {
		modified = Epoch
	}
	return &Builder{seen: make(map[string]struct{}), modified: modified}
}

// AddPart queues a part. Paths are archive-relative ("xl/workbook.xml").
func (b *Builder) AddPart(path string, data []byte) error {
	if path == "" || path[0] == '/' {
		return fmt.Errorf("%w: invalid part path %q", ErrArchive, path)
	}
	if _, dup := b.seen[path]; dup {
		return fmt.Errorf("%w: duplicate part %q", ErrArchive, path)
	}
	b.seen[path] = struct{}{}
	b.parts = append(b.parts, part{path: path, data: data})
	return nil
}

// Len reports the number of queued parts.
func (b *Builder) Len() int { return len(b.parts) }

// Finalize compresses the queued parts and returns them in the requested
// encoding.
func (b *Builder) Finalize(enc Encoding) ([]byte, error) {
	if b.done {
		return nil, fmt.Errorf("%w: builder already finalized", ErrArchive)
	}
	b.done = true

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range b.parts {
		header := &zip.FileHeader{Name: p.path, Method: zip.Deflate, Modified: b.modified}
		w, err := zw.CreateHeader(header)
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("%w: create %q: %v", ErrArchive, p.path, err)
		}
		if _, err := w.Write(p.data); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("%w: write %q: %v", ErrArchive, p.path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: close: %v", ErrArchive, err)
	}

	switch enc {
	case "", EncodingBuffer, EncodingText:
		return buf.Bytes(), nil
	case EncodingBase64:
		out := make([]byte, base64.StdEncoding.EncodedLen(buf.Len()))
		base64.StdEncoding.Encode(out, buf.Bytes())
		return out, nil
	}
	return nil, fmt.Errorf("%w: unknown output encoding %q", ErrArchive, enc)
}
