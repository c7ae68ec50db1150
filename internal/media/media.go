// Package media turns uploaded images into data URIs stored inline in the
// image_url field.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const MaxImageBytes = 5 << 20

var (
	ErrTooLarge = errors.New("media: image too large")
	ErrNotImage = errors.New("media: not an image")
	ErrEmpty    = errors.New("media: empty file")
)

// DataURI reads r (at most MaxImageBytes) and encodes it as
// data:<mime>;base64,<payload>. The type is sniffed from the content.
func DataURI(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("media: read: %w", err)
	}
	switch {
	case len(b) == 0:
		return "", ErrEmpty
	case len(b) > MaxImageBytes:
		return "", ErrTooLarge
	}
	mime := http.DetectContentType(b)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotImage
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

// FromFileHeader opens an uploaded multipart file and converts it.
func FromFileHeader(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageBytes {
		return "", ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("media: open upload: %w", err)
	}
	defer f.Close()
	return DataURI(f)
}

// IsDataURI reports whether an image_url holds an inline image.
func IsDataURI(s string) bool { return strings.HasPrefix(s, "data:") }
