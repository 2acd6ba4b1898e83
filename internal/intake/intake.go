// Package intake validates user-supplied images before they are sent for
// analysis and converts them into the base64 payload the analyzer expects.
package intake

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"strings"

	_ "golang.org/x/image/webp"
)

// DefaultMaxSizeMB is the upload limit used when none is configured.
const DefaultMaxSizeMB = 10

// AcceptedMIMETypes is the allow-list of declared image types.
var AcceptedMIMETypes = []string{"image/jpeg", "image/png", "image/webp", "image/heic"}

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
)

const (
	MsgUnsupportedType = "Invalid file type. Please upload a JPG, PNG, WEBP, or HEIC image."
	MsgTooLargeFmt     = "File is too large. Max size is %dMB."
)

// ValidationError is returned when a file is rejected before any network
// call is made. Reason is one of the sentinel errors above and can be
// matched with errors.Is.
type ValidationError struct {
	Reason  error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Reason }

// File is a user-selected image with its declared metadata.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Payload is a validated image ready for analysis.
type Payload struct {
	Base64   string
	MIMEType string
	Size     int

	// Width and Height are zero when the format could not be decoded
	// locally (HEIC).
	Width  int
	Height int
}

// Bytes decodes the base64 payload back to raw image bytes.
func (p Payload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}

// Validator checks declared type and size against fixed limits.
type Validator struct {
	maxSizeMB int
	maxBytes  int64
	accepted  map[string]bool
}

// NewValidator creates a validator with the given size limit in megabytes.
// Non-positive values fall back to DefaultMaxSizeMB.
func NewValidator(maxSizeMB int) *Validator {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	accepted := make(map[string]bool, len(AcceptedMIMETypes))
	for _, t := range AcceptedMIMETypes {
		accepted[t] = true
	}
	return &Validator{
		maxSizeMB: maxSizeMB,
		maxBytes:  int64(maxSizeMB) * 1024 * 1024,
		accepted:  accepted,
	}
}

// MaxSizeMB returns the configured limit.
func (v *Validator) MaxSizeMB() int {
	return v.maxSizeMB
}

// MaxBytes returns the configured limit in bytes.
func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// Check validates declared metadata only. It is used to reject files before
// downloading them. Type is checked before size.
func (v *Validator) Check(mimeType string, size int64) error {
	if !v.accepted[normalizeMIMEType(mimeType)] {
		return &ValidationError{Reason: ErrUnsupportedType, Message: MsgUnsupportedType}
	}
	if size > v.maxBytes {
		return &ValidationError{Reason: ErrTooLarge, Message: fmt.Sprintf(MsgTooLargeFmt, v.maxSizeMB)}
	}
	return nil
}

// Validate checks the file and encodes it as a base64 payload.
func (v *Validator) Validate(f File) (Payload, error) {
	if err := v.Check(f.MIMEType, int64(len(f.Data))); err != nil {
		return Payload{}, err
	}
	p := Payload{
		Base64:   base64.StdEncoding.EncodeToString(f.Data),
		MIMEType: normalizeMIMEType(f.MIMEType),
		Size:     len(f.Data),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data)); err == nil {
		p.Width = cfg.Width
		p.Height = cfg.Height
	}
	return p, nil
}

func normalizeMIMEType(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(mimeType)
}
