package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/photoshare/internal/domain"
)

type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

const photoColumns = `id, storage_key, mime_type, tags, uploaded_at`

func (s *PhotoStore) Create(ctx context.Context, storageKey, mimeType string, tags []string) (*domain.Photo, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO photos (id, storage_key, mime_type, tags, uploaded_at) VALUES (?, ?, ?, ?, ?)
	`, id, storageKey, mimeType, string(encoded), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PhotoStore) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	photo, err := scanPhoto(s.db.QueryRowContext(ctx, `
		SELECT `+photoColumns+` FROM photos WHERE id = ?
	`, id))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

// List returns photos in upload order.
func (s *PhotoStore) List(ctx context.Context) ([]*domain.Photo, error) {
	return s.query(ctx, `SELECT `+photoColumns+` FROM photos ORDER BY seq ASC`)
}

// ListByIDs returns the known photos among ids in upload order. Unknown ids
// are skipped.
func (s *PhotoStore) ListByIDs(ctx context.Context, ids []string) ([]*domain.Photo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.query(ctx, `SELECT `+photoColumns+` FROM photos WHERE id IN (`+placeholders+`) ORDER BY seq ASC`, args...)
}

func (s *PhotoStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM photos WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("photo %s: %w", id, ErrNotFound)
	}

	return nil
}

func (s *PhotoStore) query(ctx context.Context, query string, args ...any) ([]*domain.Photo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var photos []*domain.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*domain.Photo, error) {
	var (
		photo      domain.Photo
		tags       string
		uploadedAt time.Time
	)
	if err := row.Scan(&photo.ID, &photo.StorageKey, &photo.MimeType, &tags, &uploadedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &photo.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	photo.Date = &uploadedAt
	return &photo, nil
}
