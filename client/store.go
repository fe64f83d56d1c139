package client

import (
	"context"
	"sync"

	"github.com/dfryer1193/imgstash/api"
	"github.com/rs/zerolog/log"
)

// api calls the store needs; satisfied by *Client
type imageAPI interface {
	ListImages(ctx context.Context) ([]api.Image, error)
	UploadImage(ctx context.Context, filename, contentType string, content []byte) (api.Image, error)
	EditImage(ctx context.Context, id int64, dataURI string) (api.Image, error)
	DeleteImage(ctx context.Context, id int64) error
}

// Store is a session-local cache of the caller's image records. Actions are
// the only mutation entry point: each one calls the API and commits the
// result synchronously. Construct one per session; it is not a singleton.
type Store struct {
	remote imageAPI

	mu     sync.Mutex
	images []api.Image
	err    string
}

// NewStore creates a state store backed by the given API client
func NewStore(c *Client) *Store {
	return &Store{remote: c}
}

// FetchImages replaces the cached records with the server's current list.
// On failure the existing cache is left untouched and the error is recorded;
// it is not returned to the caller.
func (s *Store) FetchImages(ctx context.Context) {
	images, err := s.remote.ListImages(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch images")
		s.setError("Failed to fetch images")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = images
}

// SaveImage uploads a new image and appends the created record to the cache.
// On failure the error is recorded and returned so the caller can react.
func (s *Store) SaveImage(ctx context.Context, filename, contentType string, content []byte) error {
	img, err := s.remote.UploadImage(ctx, filename, contentType, content)
	if err != nil {
		log.Error().Err(err).Msg("Failed to save image")
		s.setError("Failed to save image")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
	return nil
}

// UpdateImage edits an image and replaces the matching cached record in
// place. An id with no cached match is a no-op, not an error.
// On failure the error is recorded and returned.
func (s *Store) UpdateImage(ctx context.Context, id int64, dataURI string) error {
	img, err := s.remote.EditImage(ctx, id, dataURI)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("Failed to update image")
		s.setError("Failed to update image")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.images {
		if s.images[i].ID == img.ID {
			s.images[i] = img
			break
		}
	}
	return nil
}

// DeleteImage deletes an image and drops the matching record from the cache.
// On failure the error is recorded and returned.
func (s *Store) DeleteImage(ctx context.Context, id int64) error {
	if err := s.remote.DeleteImage(ctx, id); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("Failed to delete image")
		s.setError("Failed to delete image")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.images[:0]
	for _, img := range s.images {
		if img.ID != id {
			kept = append(kept, img)
		}
	}
	s.images = kept
	return nil
}

// Images returns a copy of the cached records
func (s *Store) Images() []api.Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Image, len(s.images))
	copy(out, s.images)
	return out
}

// Err returns the last recorded action error message, empty when none
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}
