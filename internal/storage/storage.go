// Package storage keeps uploaded media files either on the local disk or
// in an S3-compatible bucket. Both backends address files by a relative
// key such as "posts/2026/01/<uuid>.jpg".
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Store is a media backend.
type Store interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	k := strings.TrimPrefix(key, "/")
	if k == "" || path.Clean(k) != k || k == ".." || strings.HasPrefix(k, "../") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return k, nil
}
