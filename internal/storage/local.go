package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Local keeps payloads on disk under Dir and serves them from URLPath.
type Local struct {
	Dir     string
	URLPath string
	now     func() time.Time
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, urlPath string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: dir, URLPath: urlPath, now: time.Now}, nil
}

// Save writes data to a fresh key derived from name.
func (l *Local) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := NewKey(name, l.now())
	if err := os.WriteFile(filepath.Join(l.Dir, key), data, 0o644); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes the file for key. Missing files are not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.Dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL returns the public path of key.
func (l *Local) URL(key string) string {
	return joinURL(l.URLPath, key)
}
