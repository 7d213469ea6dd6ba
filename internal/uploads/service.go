package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/wishboard-backend/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	sniffBytes     = 3072
	suffixAlphabet = "0123456789"
	suffixLength   = 9
	maxNameRunes   = 100
	fallbackName   = "file"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

var allowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/avif",
	"image/heic",
	"image/heif",
	"image/svg+xml",
}

// Input is one file received from the client.
type Input struct {
	Filename string
	Body     io.Reader
	Size     int64
}

// Result identifies a stored upload.
type Result struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Service stores uploaded images under generated names.
type Service interface {
	Upload(ctx context.Context, in Input) (*Result, error)
}

type objectStore interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	Remove(ctx context.Context, name string) error
}

type outcomeRecorder interface {
	IncUpload(outcome string)
}

type service struct {
	store     objectStore
	urlPrefix string
	maxBytes  int64
	metrics   outcomeRecorder
	now       func() time.Time
	suffix    func() (string, error)
}

// ServiceParams bundles the dependencies of the upload service.
type ServiceParams struct {
	Store     objectStore
	URLPrefix string
	MaxBytes  int64
	Metrics   outcomeRecorder
}

// NewService constructs an upload service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if params.MaxBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	prefix := "/" + strings.Trim(strings.TrimSpace(params.URLPrefix), "/")
	return &service{
		store:     params.Store,
		urlPrefix: prefix,
		maxBytes:  params.MaxBytes,
		metrics:   params.Metrics,
		now:       time.Now,
		suffix:    func() (string, error) { return gonanoid.Generate(suffixAlphabet, suffixLength) },
	}, nil
}

func (s *service) Upload(ctx context.Context, in Input) (*Result, error) {
	res, err := s.upload(ctx, in)
	switch {
	case err == nil:
		s.record("stored")
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		s.record("rejected")
	default:
		s.record("failed")
	}
	return res, err
}

func (s *service) upload(ctx context.Context, in Input) (*Result, error) {
	if in.Body == nil || in.Size == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No file provided")
	}
	if in.Size > s.maxBytes {
		return nil, tooLarge(s.maxBytes)
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error uploading file")
	}
	head = head[:n]
	if n == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No file provided")
	}

	detected := mimetype.Detect(head)
	if !isAllowedImage(detected) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Unsupported file type").
			WithDetails(map[string]any{"detected": detected.String(), "allowed": allowedMimeTypes})
	}

	suffix, err := s.suffix()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error uploading file")
	}
	id := fmt.Sprintf("%d-%s", s.now().UnixMilli(), suffix)
	filename := id + "-" + SanitizeFilename(in.Filename)

	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), in.Body), s.maxBytes+1)
	written, err := s.store.Save(ctx, filename, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error uploading file")
	}
	if written > s.maxBytes {
		_ = s.store.Remove(ctx, filename)
		return nil, tooLarge(s.maxBytes)
	}

	return &Result{
		ID:  id,
		URL: path.Join(s.urlPrefix, filename),
	}, nil
}

func (s *service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.IncUpload(outcome)
	}
}

// SanitizeFilename reduces name to a safe base name.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return fallbackName
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if r := []rune(name); len(r) > maxNameRunes {
		name = string(r[len(r)-maxNameRunes:])
	}
	if name == "" {
		return fallbackName
	}
	return name
}

func isAllowedImage(m *mimetype.MIME) bool {
	for _, allowed := range allowedMimeTypes {
		if m.Is(allowed) {
			return true
		}
	}
	return false
}

func tooLarge(limit int64) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "File too large").
		WithDetails(map[string]any{"maxBytes": limit})
}
