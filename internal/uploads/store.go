package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BlobStore persists validated upload content under generated names.
type BlobStore interface {
	Write(ctx context.Context, name string, content []byte) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DiskStore writes blobs into a flat upload directory. Names are always
// derived from generated ids, never from client input, so concurrent
// writes cannot collide.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Write stores the content and returns the full path.
func (s *DiskStore) Write(_ context.Context, name string, content []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("uploads: write blob: %w", err)
	}
	return path, nil
}

// Open returns a reader over a stored blob.
func (s *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("uploads: open blob: %w", err)
	}
	return f, nil
}

var _ BlobStore = (*DiskStore)(nil)
