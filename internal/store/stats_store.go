package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/photoshare/internal/domain"
)

type StatsStore struct {
	db *sql.DB
}

func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM contacts),
			(SELECT COUNT(*) FROM photos),
			(SELECT COUNT(*) FROM shares WHERE direction = 'sent'),
			(SELECT COUNT(*) FROM shares WHERE direction = 'received'),
			(SELECT COUNT(*) FROM shares WHERE direction = 'received' AND status = 'unread')
	`).Scan(&st.Contacts, &st.Photos, &st.SentShares, &st.ReceivedShares, &st.UnreadShares)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to count records: %w", err)
	}
	return st, nil
}
