package application

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/dfryer1193/imgstash/images/domain"
	"github.com/dfryer1193/imgstash/shared/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// maxUploadBytes caps uploads at 2048 KB
	maxUploadBytes = 2048 * 1024

	// blobPrefix is the blob store namespace all image keys live under
	blobPrefix = "images/"

	dataURISeparator = ";base64,"
)

// allowedImageTypes maps accepted upload content types to the file extension
// used for the stored blob key
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpeg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ImageService owns the upload/edit/delete flow: it validates inputs,
// writes blobs, and keeps image records pointing at live blob keys.
type ImageService struct {
	repo  domain.ImageRepository
	blobs storage.BlobStore
}

func NewImageService(repo domain.ImageRepository, blobs storage.BlobStore) *ImageService {
	return &ImageService{
		repo:  repo,
		blobs: blobs,
	}
}

// List returns all image records owned by callerID
func (s *ImageService) List(ctx context.Context, callerID string) ([]*domain.Image, error) {
	images, err := s.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images for user %s: %w", callerID, err)
	}
	return images, nil
}

// validateUpload checks upload preconditions and returns a ValidationError
// listing every failed field, or nil when the upload is acceptable
func validateUpload(contentType string, size int64) *domain.ValidationError {
	var fields []domain.FieldError

	if _, ok := allowedImageTypes[contentType]; !ok {
		fields = append(fields, domain.FieldError{
			Field:   "image",
			Message: "must be a jpeg, png, jpg, or gif image",
		})
	}

	if size > maxUploadBytes {
		fields = append(fields, domain.FieldError{
			Field:   "image",
			Message: "must not be larger than 2048 kilobytes",
		})
	}

	if fields != nil {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Upload validates the file, stores its bytes under a fresh key, and creates
// the image record. Nothing is persisted when validation fails, and no record
// is created when the blob write fails.
func (s *ImageService) Upload(ctx context.Context, callerID string, file io.Reader, name, contentType string, size int64) (*domain.Image, error) {
	if verr := validateUpload(contentType, size); verr != nil {
		return nil, verr
	}

	// Fresh key per upload so same-named files never collide
	key := blobPrefix + uuid.NewString() + allowedImageTypes[contentType]

	if err := s.blobs.Put(ctx, key, file, contentType); err != nil {
		return nil, &domain.StorageError{Op: "put", Err: err}
	}

	img := &domain.Image{
		Name:   name,
		Path:   key,
		UserID: callerID,
	}

	if err := s.repo.Insert(ctx, img); err != nil {
		// Record creation failed; don't leave the blob orphaned
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			log.Error().Err(delErr).Str("key", key).Msg("Failed to clean up blob after insert failure")
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	log.Info().Int64("id", img.ID).Str("key", key).Str("user", callerID).Msg("Image uploaded")
	return img, nil
}

// decodeDataURI splits a "<metadata>;base64,<payload>" string and decodes the
// payload, returning a ValidationError on any malformation
func decodeDataURI(dataURI string) ([]byte, *domain.ValidationError) {
	_, payload, found := strings.Cut(dataURI, dataURISeparator)
	if !found {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "edited_image", Message: "must be a base64 data URI"},
		}}
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "edited_image", Message: "payload is not valid base64"},
		}}
	}

	return decoded, nil
}

// Edit replaces an image's bytes with the decoded data URI payload.
// The edited blob key is derived from the record's original name
// ("images/edited_<name>"), so repeated edits overwrite the same key.
// Only the record's owner may edit it; other callers get ErrNotFound.
func (s *ImageService) Edit(ctx context.Context, callerID string, id int64, dataURI string) (*domain.Image, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img.UserID != callerID {
		return nil, domain.ErrNotFound
	}

	decoded, verr := decodeDataURI(dataURI)
	if verr != nil {
		return nil, verr
	}

	key := blobPrefix + "edited_" + img.Name
	if err := s.blobs.Put(ctx, key, bytes.NewReader(decoded), ""); err != nil {
		return nil, &domain.StorageError{Op: "put", Err: err}
	}

	if err := s.repo.UpdatePath(ctx, id, key); err != nil {
		return nil, fmt.Errorf("failed to update image path: %w", err)
	}
	img.Path = key

	log.Info().Int64("id", id).Str("key", key).Msg("Image edited")
	return img, nil
}

// Delete removes the image's blob and then its record. A blob deletion
// failure aborts the delete so the record never dangles.
// Only the record's owner may delete it; other callers get ErrNotFound.
func (s *ImageService) Delete(ctx context.Context, callerID string, id int64) error {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if img.UserID != callerID {
		return domain.ErrNotFound
	}

	if err := s.blobs.Delete(ctx, img.Path); err != nil {
		return &domain.StorageError{Op: "delete", Err: err}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	log.Info().Int64("id", id).Str("user", callerID).Msg("Image deleted")
	return nil
}
