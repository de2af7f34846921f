package filestore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("file not found")

// Store is the blob storage collaborator for result evidence (GPX tracks,
// control-card photos). Keys are opaque slash-separated paths.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}
