package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vbonduro/photoshare/internal/domain"
)

type ShareStore struct {
	db *sql.DB
}

func NewShareStore(db *sql.DB) *ShareStore {
	return &ShareStore{db: db}
}

const shareColumns = `id, direction, from_name, to_name, to_phone, photo_ids, photo_count, status, shared_at`

// Create inserts all shares in one transaction so a share action never leaves
// half of its records behind. Missing ids are assigned.
func (s *ShareStore) Create(ctx context.Context, shares ...*domain.Share) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back share transaction", "error", err)
		}
	}()

	for _, sh := range shares {
		if sh.ID == "" {
			sh.ID = uuid.NewString()
		}
		ids, err := json.Marshal(sh.PhotoIDs)
		if err != nil {
			return fmt.Errorf("failed to encode photo ids: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO shares (`+shareColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sh.ID, sh.Direction, sh.From, sh.To, sh.ToPhone, string(ids), sh.PhotoCount, sh.Status, sh.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to create share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit shares: %w", err)
	}
	return nil
}

func (s *ShareStore) GetByID(ctx context.Context, id string) (*domain.Share, error) {
	sh, err := scanShare(s.db.QueryRowContext(ctx, `
		SELECT `+shareColumns+` FROM shares WHERE id = ?
	`, id))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	return sh, nil
}

// List returns every share, newest first.
func (s *ShareStore) List(ctx context.Context) ([]*domain.Share, error) {
	return s.query(ctx, `SELECT `+shareColumns+` FROM shares ORDER BY seq DESC`)
}

func (s *ShareStore) ListByDirection(ctx context.Context, dir domain.Direction) ([]*domain.Share, error) {
	return s.query(ctx, `SELECT `+shareColumns+` FROM shares WHERE direction = ? ORDER BY seq DESC`, dir)
}

// ListSentTo returns sent shares whose recipient matches name case-insensitively.
func (s *ShareStore) ListSentTo(ctx context.Context, name string) ([]*domain.Share, error) {
	return s.query(ctx, `
		SELECT `+shareColumns+` FROM shares
		WHERE direction = 'sent' AND to_name = ? COLLATE NOCASE
		ORDER BY seq DESC
	`, name)
}

func (s *ShareStore) UpdateStatus(ctx context.Context, id string, status domain.ShareStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shares SET status = ? WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update share status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("share %s: %w", id, ErrNotFound)
	}

	return nil
}

func (s *ShareStore) query(ctx context.Context, query string, args ...any) ([]*domain.Share, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var shares []*domain.Share
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shares: %w", err)
	}

	return shares, nil
}

func scanShare(row rowScanner) (*domain.Share, error) {
	var (
		sh  domain.Share
		ids string
	)
	err := row.Scan(&sh.ID, &sh.Direction, &sh.From, &sh.To, &sh.ToPhone, &ids, &sh.PhotoCount, &sh.Status, &sh.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ids), &sh.PhotoIDs); err != nil {
		return nil, fmt.Errorf("failed to decode photo ids: %w", err)
	}
	return &sh, nil
}
