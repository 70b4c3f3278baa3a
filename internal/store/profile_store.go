package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vbonduro/photoshare/internal/domain"
)

// ProfileStore holds the single local user profile.
type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get returns nil when no profile has been saved yet.
func (s *ProfileStore) Get(ctx context.Context) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, created_at FROM profile WHERE id = 1
	`).Scan(&p.Name, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

func (s *ProfileStore) Set(ctx context.Context, name string) (*domain.Profile, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (id, name, created_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, created_at = excluded.created_at
	`, name, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	return s.Get(ctx)
}
