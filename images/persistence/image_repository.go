package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dfryer1193/imgstash/images/domain"
	"github.com/dfryer1193/imgstash/shared/db"
)

var _ domain.ImageRepository = (*SQLiteImageRepository)(nil)

// SQLiteImageRepository implements domain.ImageRepository using SQL database (SQLite)
type SQLiteImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new SQLiteImageRepository from a standard sql.DB
func NewImageRepository(sqlDB *sql.DB) *SQLiteImageRepository {
	return &SQLiteImageRepository{
		db: sqlDB,
	}
}

const insertImageQuery = `
	INSERT INTO images (name, path, user_id, updated_at, created_at)
	VALUES (?, ?, ?, ?, ?)
`

// Insert persists a new image record and fills in the assigned ID
func (r *SQLiteImageRepository) Insert(ctx context.Context, img *domain.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	if img.Path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	now := time.Now().UTC()
	if img.CreatedAt.IsZero() {
		img.CreatedAt = now
	}
	if img.UpdatedAt.IsZero() {
		img.UpdatedAt = now
	}

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, insertImageQuery,
		img.Name,
		img.Path,
		img.UserID,
		img.UpdatedAt,
		img.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted image id: %w", err)
	}
	img.ID = id

	return nil
}

const getImageQuery = `
	SELECT id, name, path, user_id, updated_at, created_at
	FROM images
	WHERE id = ?
`

// GetByID retrieves a single image record by its identifier
func (r *SQLiteImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	var row imageRow
	executor := db.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, getImageQuery, id).Scan(
		&row.ID,
		&row.Name,
		&row.Path,
		&row.UserID,
		&row.UpdatedAt,
		&row.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return row.toDomain(), nil
}

const listImagesQuery = `
	SELECT id, name, path, user_id, updated_at, created_at
	FROM images
	WHERE user_id = ?
	ORDER BY id
`

// ListByOwner returns all image records owned by userID in insertion order
func (r *SQLiteImageRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Image, error) {
	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, listImagesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make([]*domain.Image, 0)
	for rows.Next() {
		var row imageRow
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Path,
			&row.UserID,
			&row.UpdatedAt,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		images = append(images, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate image rows: %w", err)
	}

	return images, nil
}

const updateImagePathQuery = `
	UPDATE images SET path = ?, updated_at = ? WHERE id = ?
`

// UpdatePath replaces the blob key stored on an existing record
func (r *SQLiteImageRepository) UpdatePath(ctx context.Context, id int64, path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, updateImagePathQuery, path, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update image path: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

const deleteImageQuery = `
	DELETE FROM images WHERE id = ?
`

// Delete removes an image record
func (r *SQLiteImageRepository) Delete(ctx context.Context, id int64) error {
	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, deleteImageQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// imageRow is a private struct used to scan database rows
type imageRow struct {
	ID        int64        `db:"id"`
	Name      string       `db:"name"`
	Path      string       `db:"path"`
	UserID    string       `db:"user_id"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	CreatedAt sql.NullTime `db:"created_at"`
}

// toDomain converts an imageRow to a domain.Image, handling nullable times
func (ir *imageRow) toDomain() *domain.Image {
	img := &domain.Image{
		ID:     ir.ID,
		Name:   ir.Name,
		Path:   ir.Path,
		UserID: ir.UserID,
	}

	if ir.UpdatedAt.Valid {
		img.UpdatedAt = ir.UpdatedAt.Time
	}
	if ir.CreatedAt.Valid {
		img.CreatedAt = ir.CreatedAt.Time
	}

	return img
}
