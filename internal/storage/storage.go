// Package storage persists image payloads and maps storage keys to URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// Storage stores image payloads.
type Storage interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewKey builds a unique key that keeps the extension of name.
func NewKey(name string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(name))
	return fmt.Sprintf("%s-%s%s", now.Format("20060102"), uuid.New().String(), ext)
}

func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
