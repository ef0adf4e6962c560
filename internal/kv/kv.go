package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Store is the byte-level persistence port: one value per key, scoped to the
// local device. Implementations write a key atomically.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

var (
	ErrNotFound       = errors.New("kv: key not found")
	ErrUnsupportedURL = errors.New("kv: unsupported storage url")
	ErrInvalidKey     = errors.New("kv: invalid key")
)

// Schemes lists the storage URL schemes Open understands.
var Schemes = []string{"sqlite", "file", "mem"}

// Open returns a Store for a storage URL: sqlite://path, file://path or mem://.
func Open(ctx context.Context, rawURL string) (Store, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(rawURL), "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
	switch strings.ToLower(scheme) {
	case "mem", "memory":
		return NewMem(), nil
	case "file":
		return OpenFile(expandPath(rest))
	case "sqlite":
		return OpenSQLite(ctx, expandPath(rest))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
}

// expandPath resolves ~/ and percent-escapes in the path part of a URL.
func expandPath(p string) string {
	if u, err := url.PathUnescape(p); err == nil {
		p = u
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}
