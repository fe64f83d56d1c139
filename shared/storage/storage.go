package storage

import (
	"context"
	"io"
)

// BlobStore is key-addressed binary storage for image bytes.
// Implementations are responsible for their own durability and concurrency
// control; callers treat keys as opaque paths (e.g. "images/<uuid>.png").
type BlobStore interface {
	// Put writes the full contents of r under key, replacing any existing blob
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get opens the blob stored under key for reading
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob under key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
