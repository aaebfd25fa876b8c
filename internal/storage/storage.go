package storage

import (
	"context"
	"io"
)

// Storage holds public assets such as post cover images.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	PublicURL(key string) string
}
