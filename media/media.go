// Package media stores uploaded images outside the database.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("only jpeg and png images are accepted")
)

var allowed = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// File is an upload received from a client
type File struct {
	Name string
	Data []byte
}

// Object is a stored file. Handle is what Delete needs.
type Object struct {
	URL    string `json:"url"`
	Handle string `json:"handle"`
}

// Store uploads and removes media objects. Delete of an unknown handle
// must succeed.
type Store interface {
	Upload(ctx context.Context, f File) (Object, error)
	Delete(ctx context.Context, handle string) error
}

// LocalStore keeps objects in a directory served under BaseURL
type LocalStore struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), MaxBytes: maxBytes}, nil
}

// Check validates size and detected content type without storing anything
func (s *LocalStore) Check(f File) (*mimetype.MIME, error) {
	if s.MaxBytes > 0 && int64(len(f.Data)) > s.MaxBytes {
		return nil, ErrTooLarge
	}
	mt := mimetype.Detect(f.Data)
	if !allowed[mt.String()] {
		return nil, ErrUnsupportedType
	}
	return mt, nil
}

func (s *LocalStore) Upload(ctx context.Context, f File) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	mt, err := s.Check(f)
	if err != nil {
		return Object{}, err
	}
	handle := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.Dir, handle), f.Data, 0o644); err != nil {
		return Object{}, fmt.Errorf("failed to write media: %w", err)
	}
	return Object{URL: s.BaseURL + "/" + handle, Handle: handle}, nil
}

func (s *LocalStore) Delete(_ context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	// handles are flat file names
	if filepath.Base(handle) != handle {
		return fmt.Errorf("invalid media handle %q", handle)
	}
	err := os.Remove(filepath.Join(s.Dir, handle))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}
