// Package encoder turns a user-selected image into a data URI: a textual,
// self-contained form used both as an <img> source and as the payload sent
// to the model.
package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"glassngold/internal/logging"

	"go.uber.org/zap"
)

// ErrNotDataURI is returned by Decode for input that is not a base64 data URI.
var ErrNotDataURI = errors.New("not a base64 data URI")

// Upload describes one user-chosen file. Open is only called after the
// declared media type has been accepted.
type Upload struct {
	Name      string
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// extra covers image types some platform mime tables lack.
var extra = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".heic": "image/heic",
	".heif": "image/heif",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
}

// MediaTypeFromName returns the media type a file name declares through its
// extension, or "" when unknown.
func MediaTypeFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if mt, ok := extra[ext]; ok {
		return mt
	}
	return mime.TypeByExtension(ext)
}

// FromFile builds an Upload for a file on disk.
func FromFile(path string) Upload {
	return Upload{
		Name:      filepath.Base(path),
		MediaType: MediaTypeFromName(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// FromMultipart builds an Upload from an HTTP form file. The part's
// Content-Type is trusted unless it is missing or generic.
func FromMultipart(fh *multipart.FileHeader) Upload {
	declared := fh.Header.Get("Content-Type")
	if declared == "" || strings.HasPrefix(declared, "application/octet-stream") {
		declared = MediaTypeFromName(fh.Filename)
	}
	return Upload{
		Name:      fh.Filename,
		MediaType: declared,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromBytes builds an Upload over an in-memory buffer.
func FromBytes(name, mediaType string, data []byte) Upload {
	return Upload{
		Name:      name,
		MediaType: mediaType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Validate checks that u declares an image media type.
func Validate(u Upload) error {
	if u.MediaType == "" {
		return &ValidationError{Name: u.Name}
	}
	mt, _, err := mime.ParseMediaType(u.MediaType)
	if err != nil || !strings.HasPrefix(mt, "image/") {
		return &ValidationError{Name: u.Name, MediaType: u.MediaType}
	}
	return nil
}

// Encode validates u and reads it into a data URI.
func Encode(ctx context.Context, u Upload) (DataURI, error) {
	if err := Validate(u); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &IOError{Name: u.Name, Err: err}
	}
	if u.Open == nil {
		return "", &IOError{Name: u.Name, Err: errors.New("no content")}
	}

	rc, err := u.Open()
	if err != nil {
		return "", &IOError{Name: u.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", &IOError{Name: u.Name, Err: err}
	}

	mt, _, _ := mime.ParseMediaType(u.MediaType)
	uri := NewDataURI(mt, data)
	logging.Get(logging.CategoryEncoder).Debug("encoded upload",
		zap.String("name", u.Name),
		zap.String("media_type", mt),
		zap.Int("bytes", len(data)),
		zap.Int("encoded_len", len(uri)))
	return uri, nil
}

// DataURI is a "data:<media type>;base64,<payload>" string.
type DataURI string

// NewDataURI encodes data under the given media type.
func NewDataURI(mediaType string, data []byte) DataURI {
	return DataURI(fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data)))
}

// MediaType returns the declared media type, or "" when d is malformed.
func (d DataURI) MediaType() string {
	mt, _, ok := d.split()
	if !ok {
		return ""
	}
	return mt
}

// Payload returns everything after the first comma: the raw base64 text.
func (d DataURI) Payload() string {
	_, payload, ok := d.split()
	if !ok {
		return ""
	}
	return payload
}

// Bytes decodes the payload.
func (d DataURI) Bytes() ([]byte, error) {
	_, data, err := Decode(string(d))
	return data, err
}

func (d DataURI) String() string { return string(d) }

func (d DataURI) split() (mediaType, payload string, ok bool) {
	s := string(d)
	if !strings.HasPrefix(s, "data:") {
		return "", "", false
	}
	header, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return "", "", false
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", "", false
	}
	return mediaType, payload, true
}

// Decode reverses NewDataURI.
func Decode(s string) (mediaType string, data []byte, err error) {
	mt, payload, ok := DataURI(s).split()
	if !ok {
		return "", nil, ErrNotDataURI
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrNotDataURI, err)
	}
	return mt, data, nil
}
