package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/AdamBeresnev/tennis-fun/internal/backend"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
	"github.com/google/uuid"
)

var (
	ErrNoActiveTournament = errors.New("no active tournament")
	ErrUnknownGroup       = errors.New("match not found in the active tournament")
	ErrPlayerNotInGroup   = errors.New("player does not belong to this match")
	ErrBoardStopped       = errors.New("board is not running")
	ErrResultsUnavailable = errors.New("results of this match could not be loaded, try again after the next refresh")
)

// Backend is the part of the tournament backend the board needs.
type Backend interface {
	ActiveTournaments(ctx context.Context) ([]tournament.Summary, error)
	Tournament(ctx context.Context, id int64) (*tournament.Tournament, error)
	GroupResults(ctx context.Context, groupID int64) ([]tournament.MatchResult, error)
	ReportMatch(ctx context.Context, r tournament.Report) (*tournament.MatchResult, error)
	UpdateMatch(ctx context.Context, id int64, r tournament.Report) (*tournament.MatchResult, error)
	CreateNextRound(ctx context.Context, tournamentID int64, numberOfPlayers int) (*tournament.Tournament, error)
	UpdateGroupParticipants(ctx context.Context, groupID int64, participants []string) error
}

type Notifier interface {
	Broadcast(e Event)
}

// Snapshot is a copy of the board handed to readers.
type Snapshot struct {
	Tournament  *tournament.Tournament
	Results     tournament.Results
	Slots       tournament.SlotSetup
	Version     uint64
	RefreshedAt time.Time
	LastError   string
}

type state struct {
	tournament  *tournament.Tournament
	results     tournament.Results
	slots       tournament.SlotSetup
	cleared     map[int64]bool
	unresolved  map[int64]bool
	version     uint64
	refreshedAt time.Time
	lastErr     string
}

type command struct {
	name  string
	ctx   context.Context
	apply func(ctx context.Context, s *state) (bool, error)
	reply chan error
}

// Board owns the live state of the active tournament. Every change, whether
// it comes from an operator or from the refresh ticker, is applied by the Run
// loop one at a time.
type Board struct {
	backend  Backend
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger
	cmds     chan command
	done     chan struct{}

	state state
}

func NewBoard(backend Backend, notifier Notifier, interval time.Duration, logger *slog.Logger) *Board {
	return &Board{
		backend:  backend,
		notifier: notifier,
		interval: interval,
		logger:   logger,
		cmds:     make(chan command),
		done:     make(chan struct{}),
		state: state{
			results: make(tournament.Results),
			slots:   make(tournament.SlotSetup),
			cleared:    make(map[int64]bool),
			unresolved: make(map[int64]bool),
		},
	}
}

// Run loads the board and then applies commands and refreshes until ctx ends.
func (b *Board) Run(ctx context.Context) {
	defer close(b.done)

	b.exec(ctx, command{name: "refresh", ctx: ctx, apply: b.refresh})

	var tick <-chan time.Time
	if b.interval > 0 {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			b.exec(ctx, command{name: "refresh", ctx: ctx, apply: b.refresh})
		case cmd := <-b.cmds:
			err := b.exec(ctx, cmd)
			cmd.reply <- err
		}
	}
}

func (b *Board) exec(loopCtx context.Context, cmd command) error {
	ctx := cmd.ctx
	if ctx == nil {
		ctx = loopCtx
	}

	changed, err := cmd.apply(ctx, &b.state)
	if err != nil {
		if cmd.name == "refresh" {
			b.state.lastErr = err.Error()
			b.logger.Warn("board refresh failed", "error", err)
		}
		return err
	}
	if !changed {
		return nil
	}

	b.state.version++
	id := uuid.New()
	b.logger.Info("board updated", "command", cmd.name, "version", b.state.version, "correlation_id", id)
	if b.notifier != nil {
		e := Event{Type: EventBoardUpdated, Version: b.state.version}
		if b.state.tournament != nil {
			e.TournamentID = b.state.tournament.ID
		}
		b.notifier.Broadcast(e)
	}
	return nil
}

func (b *Board) submit(ctx context.Context, name string, apply func(ctx context.Context, s *state) (bool, error)) error {
	cmd := command{name: name, ctx: ctx, apply: apply, reply: make(chan error, 1)}
	select {
	case b.cmds <- cmd:
	case <-b.done:
		return ErrBoardStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// accepted commands always reply, and apply may still write the caller's
	// variables until then
	return <-cmd.reply
}

func (b *Board) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := b.submit(ctx, "snapshot", func(_ context.Context, s *state) (bool, error) {
		snap = Snapshot{
			Tournament:  s.tournament.Clone(),
			Results:     s.results.Clone(),
			Slots:       s.slots.Clone(),
			Version:     s.version,
			RefreshedAt: s.refreshedAt,
			LastError:   s.lastErr,
		}
		return false, nil
	})
	return snap, err
}

// Refresh reloads the board right away instead of waiting for the next tick.
func (b *Board) Refresh(ctx context.Context) error {
	return b.submit(ctx, "refresh", b.refresh)
}

func (b *Board) refresh(ctx context.Context, s *state) (bool, error) {
	active, err := b.backend.ActiveTournaments(ctx)
	if err != nil {
		return false, err
	}

	s.refreshedAt = time.Now()

	if len(active) == 0 {
		changed := s.tournament != nil || s.lastErr != ""
		s.tournament = nil
		s.results = make(tournament.Results)
		s.slots = make(tournament.SlotSetup)
		s.cleared = make(map[int64]bool)
		s.unresolved = make(map[int64]bool)
		s.lastErr = ""
		return changed, nil
	}

	t, err := b.backend.Tournament(ctx, active[0].ID)
	if err != nil {
		return false, err
	}
	results, failed, err := backend.FetchResults(ctx, b.backend, t.Groups, b.logger)
	if err != nil {
		return false, err
	}

	prevErr := s.lastErr
	prevSlots := s.slots
	if s.tournament == nil || s.tournament.ID != t.ID {
		prevSlots = nil
		s.results = make(tournament.Results)
		s.cleared = make(map[int64]bool)
	}
	s.keepFailed(results, failed)
	applyCleared(t, results, s.cleared)

	changed := !reflect.DeepEqual(s.tournament, t) || !reflect.DeepEqual(s.results, results) || prevErr != s.lastErr
	slots := tournament.ReconcileSlots(prevSlots, t)
	changed = changed || !reflect.DeepEqual(s.slots, slots)

	s.tournament = t
	s.results = results
	s.slots = slots
	return changed, nil
}

// keepFailed puts back the last known results of groups whose fetch failed.
// Groups that never loaded are marked unresolved so nothing reports or clears
// them blind.
func (s *state) keepFailed(results tournament.Results, failed []int64) {
	s.unresolved = make(map[int64]bool)
	for _, id := range failed {
		if prev, ok := s.results[id]; ok {
			results[id] = prev
			continue
		}
		s.unresolved[id] = true
	}
	s.lastErr = ""
	if len(failed) > 0 {
		s.lastErr = fmt.Sprintf("results of %d group(s) could not be loaded", len(failed))
	}
}

// applyCleared keeps locally removed players off their match until a new pair
// is committed. A result reported in the meantime wins over the removal.
func applyCleared(t *tournament.Tournament, results tournament.Results, cleared map[int64]bool) {
	for id := range cleared {
		g, ok := t.Group(id)
		if !ok || len(results[id]) > 0 {
			delete(cleared, id)
			continue
		}
		g.Participants = nil
	}
}

// Place puts player into the next open knockout slot. Completing a pair
// commits it to the backend before the board changes.
func (b *Board) Place(ctx context.Context, player string) (tournament.Slot, error) {
	var placed tournament.Slot
	err := b.submit(ctx, "place", func(ctx context.Context, s *state) (bool, error) {
		if s.tournament == nil {
			return false, ErrNoActiveTournament
		}
		if inActiveRound(s.tournament, player) {
			return false, tournament.ErrPlayerAlreadyPlaced
		}

		slot, err := s.slots.Assign(player)
		if err != nil {
			return false, err
		}

		if slot.State == tournament.SlotFilled {
			if err := b.backend.UpdateGroupParticipants(ctx, slot.GroupID, slot.Pair()); err != nil {
				return false, err
			}
			if g, ok := s.tournament.Group(slot.GroupID); ok {
				g.Participants = slot.Pair()
			}
			delete(s.cleared, slot.GroupID)
		}

		s.slots[slot.GroupID] = slot
		placed = slot
		return true, nil
	})
	return placed, err
}

func inActiveRound(t *tournament.Tournament, player string) bool {
	_, knockout := tournament.ClassifyGroups(t.Groups)
	rounds := tournament.PartitionRounds(knockout)
	active := tournament.ActiveRoundIndex(rounds)
	if active < 0 {
		return false
	}
	for _, g := range rounds[active].Groups {
		if g.HasParticipant(player) {
			return true
		}
	}
	return false
}

// ClearMatch takes the players off a knockout match that has no result yet.
// The backend keeps the old pair until a new one is committed.
func (b *Board) ClearMatch(ctx context.Context, groupID int64) error {
	return b.submit(ctx, "clear", func(_ context.Context, s *state) (bool, error) {
		if s.tournament == nil {
			return false, ErrNoActiveTournament
		}
		g, ok := s.tournament.Group(groupID)
		if !ok {
			return false, ErrUnknownGroup
		}
		if s.unresolved[groupID] {
			return false, ErrResultsUnavailable
		}
		if len(g.Participants) != 2 {
			return false, tournament.ErrGroupNotEmptyable
		}
		if _, reported := tournament.FindResult(s.results[groupID], g.Participants[0], g.Participants[1]); reported {
			return false, tournament.ErrResultReported
		}

		g.Participants = nil
		s.slots[groupID] = tournament.EmptySlot(*g)
		s.cleared[groupID] = true
		return true, nil
	})
}

// Report validates and stores a match result. An existing result for the same
// pair is updated instead of reported twice.
func (b *Board) Report(ctx context.Context, r tournament.Report) (*tournament.MatchResult, error) {
	r, err := tournament.ValidateReport(r)
	if err != nil {
		return nil, err
	}

	var stored *tournament.MatchResult
	err = b.submit(ctx, "report", func(ctx context.Context, s *state) (bool, error) {
		if s.tournament == nil {
			return false, ErrNoActiveTournament
		}
		g, ok := s.tournament.Group(r.GroupID)
		if !ok {
			return false, ErrUnknownGroup
		}
		if !g.HasParticipant(r.Player1) || !g.HasParticipant(r.Player2) {
			return false, ErrPlayerNotInGroup
		}
		if s.unresolved[g.ID] {
			return false, ErrResultsUnavailable
		}

		var (
			result *tournament.MatchResult
			err    error
		)
		existing, found := tournament.FindResult(s.results[g.ID], r.Player1, r.Player2)
		if found {
			result, err = b.backend.UpdateMatch(ctx, existing.ID, r)
		} else {
			result, err = b.backend.ReportMatch(ctx, r)
		}
		if err != nil {
			return false, err
		}

		s.results[g.ID] = upsertResult(s.results[g.ID], *result)
		stored = result
		return true, nil
	})
	return stored, err
}

func upsertResult(list []tournament.MatchResult, r tournament.MatchResult) []tournament.MatchResult {
	for i := range list {
		if list[i].ID == r.ID {
			list[i] = r
			return list
		}
	}
	return append(list, r)
}

// CreateNextRound asks the backend for the next knockout round once the
// current one is complete. requested is only used for the first knockout
// round.
func (b *Board) CreateNextRound(ctx context.Context, requested int) (int, error) {
	var players int
	err := b.submit(ctx, "next_round", func(ctx context.Context, s *state) (bool, error) {
		if s.tournament == nil {
			return false, ErrNoActiveTournament
		}
		if !tournament.AllMatchesReported(s.tournament.Groups, s.results) || s.slots.HasEmptySlots() {
			return false, tournament.ErrRoundNotReady
		}

		_, knockout := tournament.ClassifyGroups(s.tournament.Groups)
		n, err := tournament.AdvancingPlayers(tournament.PartitionRounds(knockout), requested)
		if err != nil {
			return false, err
		}

		t, err := b.backend.CreateNextRound(ctx, s.tournament.ID, n)
		if err != nil {
			return false, err
		}
		results, failed, err := backend.FetchResults(ctx, b.backend, t.Groups, b.logger)
		if err != nil {
			return false, err
		}
		s.keepFailed(results, failed)

		s.tournament = t
		s.results = results
		s.slots = tournament.ReconcileSlots(nil, t)
		s.cleared = make(map[int64]bool)
		players = n
		return true, nil
	})
	return players, err
}
