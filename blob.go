package homespace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// BlobStore is the collaborator responsible for raw byte persistence of
// uploaded media. Keys are flat storage filenames derived at upload time.
type BlobStore interface {
	Write(key string, r io.Reader) error
	// Open returns the byte stream for key, or ErrNotFound.
	Open(key string) (io.ReadCloser, error)
	// Delete removes the bytes for key. A key with no bytes on disk is not
	// an error.
	Delete(key string) error
}

// DirBlobStore stores each blob as a file under a single base directory.
type DirBlobStore struct {
	baseDir string
}

// NewDirBlobStore creates the base directory if it does not exist.
func NewDirBlobStore(baseDir string) (*DirBlobStore, error) {
	if baseDir == "" {
		return nil, errors.New("blob store: base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DirBlobStore{baseDir: baseDir}, nil
}

// path joins only the base name of key under baseDir, so no key can name a
// file outside the store.
func (b *DirBlobStore) path(key string) string {
	return filepath.Join(b.baseDir, filepath.Base(key))
}

// Write stores the stream under key, replacing any existing bytes.
func (b *DirBlobStore) Write(key string, r io.Reader) error {
	f, err := os.Create(b.path(key))
	if err != nil {
		return fmt.Errorf("create blob %s: %w", key, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

// Open returns the byte stream for key.
func (b *DirBlobStore) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the bytes for key. Absent-on-disk is not an error.
func (b *DirBlobStore) Delete(key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
