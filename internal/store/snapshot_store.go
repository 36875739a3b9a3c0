package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
	"github.com/jmoiron/sqlx"
)

// ArchivedSnapshot is an archived tournament together with all its results.
// Archived tournaments no longer change so a fetched copy stays valid.
type ArchivedSnapshot struct {
	Tournament *tournament.Tournament
	Results    tournament.Results
	FetchedAt  time.Time
}

type snapshotRow struct {
	TournamentID int64     `db:"tournament_id"`
	Name         string    `db:"name"`
	Tournament   string    `db:"tournament"`
	Results      string    `db:"results"`
	FetchedAt    time.Time `db:"fetched_at"`
}

type SnapshotStore struct {
	db *sqlx.DB
}

func NewSnapshotStore(db *sqlx.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Save(ctx context.Context, snap ArchivedSnapshot) error {
	if snap.Tournament == nil {
		return fmt.Errorf("snapshot without tournament")
	}

	t, err := json.Marshal(snap.Tournament)
	if err != nil {
		return fmt.Errorf("failed to encode tournament: %w", err)
	}
	results, err := json.Marshal(snap.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	row := snapshotRow{
		TournamentID: snap.Tournament.ID,
		Name:         snap.Tournament.Name,
		Tournament:   string(t),
		Results:      string(results),
		FetchedAt:    snap.FetchedAt.UTC(),
	}
	_, err = s.db.NamedExecContext(ctx, `INSERT INTO archived_snapshots (tournament_id, name, tournament, results, fetched_at)
		VALUES (:tournament_id, :name, :tournament, :results, :fetched_at)
		ON CONFLICT(tournament_id) DO UPDATE SET
			name = excluded.name,
			tournament = excluded.tournament,
			results = excluded.results,
			fetched_at = excluded.fetched_at`, row)
	return err
}

// Get returns sql.ErrNoRows when the tournament has not been cached.
func (s *SnapshotStore) Get(ctx context.Context, tournamentID int64) (*ArchivedSnapshot, error) {
	var row snapshotRow
	if err := s.db.GetContext(ctx, &row, "SELECT * FROM archived_snapshots WHERE tournament_id = ?", tournamentID); err != nil {
		return nil, err
	}

	snap := &ArchivedSnapshot{FetchedAt: row.FetchedAt}
	if err := json.Unmarshal([]byte(row.Tournament), &snap.Tournament); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %d: %w", tournamentID, err)
	}
	if err := json.Unmarshal([]byte(row.Results), &snap.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results of tournament %d: %w", tournamentID, err)
	}
	if snap.Results == nil {
		snap.Results = make(tournament.Results)
	}
	return snap, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, tournamentID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM archived_snapshots WHERE tournament_id = ?", tournamentID)
	return err
}
