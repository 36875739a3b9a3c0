package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/AdamBeresnev/tennis-fun/internal/backend"
	"github.com/AdamBeresnev/tennis-fun/internal/store"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "sqlite3", driver)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	t.Cleanup(func() { database.Close() })
	return database
}

type stubBackend struct {
	mu sync.Mutex

	created       []backend.CreateTournamentRequest
	tournaments   map[int64]*tournament.Tournament
	results       tournament.Results
	failResultsOf map[int64]bool
	tournamentHit int
	deleted       []int64
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		tournaments: map[int64]*tournament.Tournament{
			5: {ID: 5, Name: "Summer Open", Archived: true, Groups: []tournament.Group{
				{ID: 51, GroupNumber: 1, Participants: []string{"A", "B", "C"}},
			}},
			6: {ID: 6, Name: "Ongoing", Groups: []tournament.Group{{ID: 61, GroupNumber: 1}}},
		},
		results: tournament.Results{
			51: {{ID: 1, Player1: "A", Player2: "B", Status: tournament.StatusWalkover, Winner: "A"}},
		},
		failResultsOf: make(map[int64]bool),
	}
}

func (b *stubBackend) CreateTournament(ctx context.Context, req backend.CreateTournamentRequest) (*tournament.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, req)
	return &tournament.Summary{ID: 42, Name: req.Name, GroupCount: len(req.Groups)}, nil
}

func (b *stubBackend) ActiveTournaments(ctx context.Context) ([]tournament.Summary, error) {
	return []tournament.Summary{{ID: 6, Name: "Ongoing"}}, nil
}

func (b *stubBackend) ArchivedTournaments(ctx context.Context) ([]tournament.Summary, error) {
	return []tournament.Summary{{ID: 5, Name: "Summer Open"}}, nil
}

func (b *stubBackend) Tournament(ctx context.Context, id int64) (*tournament.Tournament, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tournamentHit++
	t, ok := b.tournaments[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404}
	}
	return t.Clone(), nil
}

func (b *stubBackend) GroupResults(ctx context.Context, groupID int64) ([]tournament.MatchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failResultsOf[groupID] {
		return nil, errors.New("timeout")
	}
	return append([]tournament.MatchResult{}, b.results[groupID]...), nil
}

func (b *stubBackend) ArchiveTournament(ctx context.Context, id int64) error { return nil }

func (b *stubBackend) DeleteTournament(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *stubBackend) DeleteAllTournaments(ctx context.Context) error { return nil }

func newTestService(t *testing.T) (*TournamentService, *stubBackend, *store.SnapshotStore) {
	stub := newStubBackend()
	cache := store.NewSnapshotStore(setupTestDB(t))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTournamentService(stub, cache, logger), stub, cache
}

func TestCreateTournamentValidatesFirst(t *testing.T) {
	svc, stub, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTournament(ctx, NewTournament{Name: "Cup", Date: "2025-06-01"})
	assert.ErrorIs(t, err, ErrNoParticipants)
	assert.Empty(t, stub.created)

	summary, err := svc.CreateTournament(ctx, NewTournament{
		Name:   "Cup",
		Date:   "2025-06-01",
		Groups: []GroupForm{{Number: 4, Participants: ParseParticipants("A\nB\nC")}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), summary.ID)
	require.Len(t, stub.created, 1)
	assert.Equal(t, []string{"A", "B", "C"}, stub.created[0].Groups[0].Participants)
}

func TestArchivedSnapshotIsCached(t *testing.T) {
	svc, stub, cache := newTestService(t)
	ctx := context.Background()

	snap, err := svc.ArchivedSnapshot(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Summer Open", snap.Tournament.Name)
	assert.Len(t, snap.Results[51], 1)

	again, err := svc.ArchivedSnapshot(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, snap.Tournament, again.Tournament)
	assert.Equal(t, 1, stub.tournamentHit, "second read comes from the cache")

	require.NoError(t, svc.Delete(ctx, 5))
	assert.Equal(t, []int64{5}, stub.deleted)
	_, err = cache.Get(ctx, 5)
	assert.Error(t, err)
}

func TestArchivedSnapshotNotCachedWhenIncomplete(t *testing.T) {
	svc, stub, cache := newTestService(t)
	stub.failResultsOf[51] = true
	ctx := context.Background()

	snap, err := svc.ArchivedSnapshot(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, snap.Results[51])

	_, err = cache.Get(ctx, 5)
	assert.Error(t, err)
}

func TestArchivedSnapshotRejectsActive(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ArchivedSnapshot(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotArchived)

	_, err = svc.ArchivedSnapshot(context.Background(), 99)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}
