package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const tempPattern = ".upload-*"

// ErrInvalidName is returned for names that would escape the storage root.
var ErrInvalidName = errors.New("invalid object name")

// Store writes objects as files under a single directory.
type Store struct {
	dir string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New prepares dir for writing and returns a store rooted there.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage dir is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the absolute storage root.
func (s *Store) Dir() string {
	return s.dir
}

// Save streams r into name. The bytes land in a temp file first and are renamed
// into place, so readers never observe a partial object.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	target, err := s.path(name)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	written, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, fmt.Errorf("closing %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return 0, err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return 0, fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return 0, fmt.Errorf("renaming %s: %w", name, err)
	}
	return written, nil
}

// Remove deletes name. Missing objects are not an error.
func (s *Store) Remove(_ context.Context, name string) error {
	target, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Ping verifies the storage root is still a writable directory.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	probe, err := os.CreateTemp(s.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("storage dir not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}
