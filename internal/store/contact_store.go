package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/photoshare/internal/domain"
)

// ErrNotFound is returned by mutating calls that matched no row.
var ErrNotFound = errors.New("not found")

type ContactStore struct {
	db *sql.DB
}

func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) Create(ctx context.Context, name, phone string) (*domain.Contact, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, phone, added_at) VALUES (?, ?, ?, ?)
	`, id, name, phone, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ContactStore) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, added_at FROM contacts WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.AddedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return c, nil
}

// GetByName matches case-insensitively and returns the oldest match.
func (s *ContactStore) GetByName(ctx context.Context, name string) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, added_at FROM contacts
		WHERE name = ? COLLATE NOCASE ORDER BY seq ASC LIMIT 1
	`, name).Scan(&c.ID, &c.Name, &c.Phone, &c.AddedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact by name: %w", err)
	}

	return c, nil
}

// List returns contacts in the order they were added.
func (s *ContactStore) List(ctx context.Context) ([]*domain.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, added_at FROM contacts ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var contacts []*domain.Contact
	for rows.Next() {
		c := &domain.Contact{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

func (s *ContactStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM contacts WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}

	return nil
}
