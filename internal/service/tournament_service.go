package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/tennis-fun/internal/backend"
	"github.com/AdamBeresnev/tennis-fun/internal/store"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
)

var ErrNotArchived = errors.New("tournament is not archived")

type TournamentBackend interface {
	CreateTournament(ctx context.Context, req backend.CreateTournamentRequest) (*tournament.Summary, error)
	ActiveTournaments(ctx context.Context) ([]tournament.Summary, error)
	ArchivedTournaments(ctx context.Context) ([]tournament.Summary, error)
	Tournament(ctx context.Context, id int64) (*tournament.Tournament, error)
	GroupResults(ctx context.Context, groupID int64) ([]tournament.MatchResult, error)
	ArchiveTournament(ctx context.Context, id int64) error
	DeleteTournament(ctx context.Context, id int64) error
	DeleteAllTournaments(ctx context.Context) error
}

type SnapshotCache interface {
	Save(ctx context.Context, snap store.ArchivedSnapshot) error
	Get(ctx context.Context, tournamentID int64) (*store.ArchivedSnapshot, error)
	Delete(ctx context.Context, tournamentID int64) error
}

type TournamentService struct {
	backend TournamentBackend
	cache   SnapshotCache
	logger  *slog.Logger
}

func NewTournamentService(client TournamentBackend, cache SnapshotCache, logger *slog.Logger) *TournamentService {
	return &TournamentService{backend: client, cache: cache, logger: logger}
}

func (s *TournamentService) CreateTournament(ctx context.Context, in NewTournament) (*tournament.Summary, error) {
	req, err := BuildCreateRequest(in)
	if err != nil {
		return nil, err
	}
	return s.backend.CreateTournament(ctx, req)
}

func (s *TournamentService) ActiveTournaments(ctx context.Context) ([]tournament.Summary, error) {
	return s.backend.ActiveTournaments(ctx)
}

func (s *TournamentService) ArchivedTournaments(ctx context.Context) ([]tournament.Summary, error) {
	return s.backend.ArchivedTournaments(ctx)
}

func (s *TournamentService) Archive(ctx context.Context, id int64) error {
	return s.backend.ArchiveTournament(ctx, id)
}

func (s *TournamentService) Delete(ctx context.Context, id int64) error {
	if err := s.backend.DeleteTournament(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to evict archived snapshot", "tournament", id, "error", err)
	}
	return nil
}

func (s *TournamentService) DeleteAll(ctx context.Context) error {
	return s.backend.DeleteAllTournaments(ctx)
}

// ArchivedSnapshot returns an archived tournament with all its results, from
// the local cache when it has been fetched before.
func (s *TournamentService) ArchivedSnapshot(ctx context.Context, id int64) (*store.ArchivedSnapshot, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("failed to read archived snapshot", "tournament", id, "error", err)
	}

	t, err := s.backend.Tournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Archived {
		return nil, fmt.Errorf("tournament %d: %w", id, ErrNotArchived)
	}

	results, failed, err := backend.FetchResults(ctx, s.backend, t.Groups, s.logger)
	if err != nil {
		return nil, err
	}

	snap := &store.ArchivedSnapshot{Tournament: t, Results: results, FetchedAt: time.Now()}
	if len(failed) > 0 {
		// incomplete, fetch again next time
		return snap, nil
	}
	if err := s.cache.Save(ctx, *snap); err != nil {
		s.logger.Warn("failed to cache archived snapshot", "tournament", id, "error", err)
	}
	return snap, nil
}
