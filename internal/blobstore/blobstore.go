// Package blobstore keeps uploaded file contents on the local filesystem.
//
// Every blob is a single flat file named by a freshly generated UUID inside
// one directory. There is no extension, no sub-directory fan-out and no
// content addressing: two uploads of the same bytes are two blobs.
//
// Writes are not atomic. A crash in the middle of Put can leave a truncated
// file behind; nothing in this package tries to clean that up.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is what the file service needs from blob storage.
// Local is the only implementation; tests substitute failing fakes.
type Store interface {
	Put(data []byte) (id, path string, err error)
	Get(path string) ([]byte, error)
	Delete(path string) error
}

// compile-time check that *Local implements Store
var _ Store = (*Local)(nil)

// Local stores blobs as files under a single directory.
type Local struct {
	dir string
}

// NewLocal returns a store rooted at dir. The directory is created lazily on
// the first Put, so a missing directory is not an error here.
func NewLocal(dir string) *Local {
	return &Local{dir: filepath.Clean(dir)}
}

// Dir returns the directory blobs are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Put writes data to <dir>/<id> under a new UUID and returns both.
func (l *Local) Put(data []byte) (string, string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("blobstore: creating %s: %w", l.dir, err)
	}

	id := uuid.NewString()
	path := filepath.Join(l.dir, id)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("blobstore: writing %s: %w", path, err)
	}
	return id, path, nil
}

// Get reads the whole blob at path.
// A missing file yields an error wrapping fs.ErrNotExist.
func (l *Local) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blobstore: reading %s: %w", path, err)
	}
	return data, nil
}

// Delete removes the blob at path. Removing a missing blob is an error.
func (l *Local) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("blobstore: removing %s: %w", path, err)
	}
	return nil
}
