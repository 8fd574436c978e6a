package storage

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize caps decoded uploads.
const MaxImageSize = 10 << 20

var ErrInvalidImage = errors.New("invalid image")

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI decodes "data:image/png;base64,<payload>" or a bare base64
// payload. The content itself must sniff as an image; the declared media
// type is not trusted.
func DecodeDataURI(raw string) (*Image, error) {
	payload := strings.TrimSpace(raw)
	if strings.HasPrefix(payload, "data:") {
		_, after, ok := strings.Cut(payload, ";base64,")
		if !ok {
			return nil, ErrInvalidImage
		}
		payload = after
	}
	if payload == "" || base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize {
		return nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, ErrInvalidImage
		}
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrInvalidImage
	}

	return &Image{
		Data:        data,
		ContentType: mt.String(),
		Extension:   mt.Extension(),
	}, nil
}

// NewKey returns a unique object key under prefix.
func NewKey(prefix, ext string) string {
	return prefix + "/" + uuid.New().String() + ext
}
