package domain

import (
	"context"
	"time"
)

// Image represents an uploaded image record
// Name is the original filename and never changes; Path is the blob store key
// the current bytes live under and is replaced when the image is edited.
type Image struct {
	ID        int64
	Name      string
	Path      string
	UserID    string
	UpdatedAt time.Time
	CreatedAt time.Time
}

type ImageRepository interface {
	// Insert persists a new image record and fills in its assigned ID
	Insert(ctx context.Context, img *Image) error

	// GetByID retrieves a single image record, ErrNotFound if absent
	GetByID(ctx context.Context, id int64) (*Image, error)

	// ListByOwner returns all records owned by userID in insertion order
	ListByOwner(ctx context.Context, userID string) ([]*Image, error)

	// UpdatePath replaces the blob key stored on an existing record
	UpdatePath(ctx context.Context, id int64, path string) error

	// Delete removes an image record, ErrNotFound if absent
	Delete(ctx context.Context, id int64) error
}
