package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/tennis-fun/internal/backend"
	"github.com/AdamBeresnev/tennis-fun/internal/live"
	"github.com/AdamBeresnev/tennis-fun/internal/service"
	"github.com/AdamBeresnev/tennis-fun/internal/store"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
	"github.com/AdamBeresnev/tennis-fun/internal/utils"
)

type fakeBoard struct {
	snap      live.Snapshot
	placed    []string
	cleared   []int64
	reports   []tournament.Report
	requested []int
	refreshes int
	err       error
}

func (b *fakeBoard) Snapshot(ctx context.Context) (live.Snapshot, error) {
	return b.snap, nil
}

func (b *fakeBoard) Refresh(ctx context.Context) error {
	b.refreshes++
	return nil
}

func (b *fakeBoard) Place(ctx context.Context, player string) (tournament.Slot, error) {
	b.placed = append(b.placed, player)
	return tournament.Slot{}, b.err
}

func (b *fakeBoard) ClearMatch(ctx context.Context, groupID int64) error {
	b.cleared = append(b.cleared, groupID)
	return b.err
}

func (b *fakeBoard) Report(ctx context.Context, r tournament.Report) (*tournament.MatchResult, error) {
	b.reports = append(b.reports, r)
	if b.err != nil {
		return nil, b.err
	}
	return &tournament.MatchResult{ID: 1, GroupID: r.GroupID, Player1: r.Player1, Player2: r.Player2}, nil
}

func (b *fakeBoard) CreateNextRound(ctx context.Context, requested int) (int, error) {
	b.requested = append(b.requested, requested)
	if b.err != nil {
		return 0, b.err
	}
	return 4, nil
}

type fakeTournaments struct {
	active   []tournament.Summary
	archived []tournament.Summary
	snapshot *store.ArchivedSnapshot
	deleted  []int64
	err      error
}

func (f *fakeTournaments) CreateTournament(ctx context.Context, in service.NewTournament) (*tournament.Summary, error) {
	if _, err := service.BuildCreateRequest(in); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &tournament.Summary{ID: 42, Name: in.Name}, nil
}

func (f *fakeTournaments) ActiveTournaments(ctx context.Context) ([]tournament.Summary, error) {
	return f.active, nil
}

func (f *fakeTournaments) ArchivedTournaments(ctx context.Context) ([]tournament.Summary, error) {
	return f.archived, f.err
}

func (f *fakeTournaments) Archive(ctx context.Context, id int64) error {
	return f.err
}

func (f *fakeTournaments) Delete(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTournaments) DeleteAll(ctx context.Context) error {
	return f.err
}

func (f *fakeTournaments) ArchivedSnapshot(ctx context.Context, id int64) (*store.ArchivedSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

type fakeAuth struct{}

func (fakeAuth) CheckCredentials(email, password string) error {
	if email == "admin@admin.se" && password == "secret" {
		return nil
	}
	return service.ErrInvalidCredentials
}

type fakeHealth struct {
	err error
}

func (h fakeHealth) Health(ctx context.Context) error {
	return h.err
}

type testEnv struct {
	board       *fakeBoard
	tournaments *fakeTournaments
	health      *fakeHealth
	handler     http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		board:       &fakeBoard{snap: live.Snapshot{Tournament: groupStage(), Results: tournament.Results{}, Version: 3}},
		tournaments: &fakeTournaments{},
		health:      &fakeHealth{},
	}
	env.board.snap.Slots = tournament.ReconcileSlots(nil, env.board.snap.Tournament)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.handler = newRouter(&application{
		sessions:       scs.New(),
		board:          env.board,
		tournaments:    env.tournaments,
		auth:           fakeAuth{},
		backend:        env.health,
		hub:            http.NotFoundHandler(),
		allowedOrigins: []string{"*"},
		logger:         logger,
	})
	return env
}

func groupStage() *tournament.Tournament {
	return &tournament.Tournament{
		ID:   1,
		Name: "Autumn Cup",
		Date: "2026-10-18",
		Groups: []tournament.Group{
			{ID: 1, GroupNumber: 1, Participants: []string{"Anna", "Bo", "Cleo"}},
			{ID: 10, GroupNumber: 10},
			{ID: 11, GroupNumber: 11},
		},
	}
}

func (e *testEnv) do(t *testing.T, method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/login", url.Values{"email": {"admin@admin.se"}, "password": {"secret"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie after login")
	return nil
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestOngoingSpectator(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/ongoing", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := document(t, rec)
	assert.Equal(t, "3", doc.Find("#board").AttrOr("data-version", ""))
	assert.Equal(t, 0, doc.Find("form.place").Length())
}

func TestAdminOnlyRoutes(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
	}{
		{name: "admin page redirects", method: http.MethodGet, target: "/admin", wantCode: http.StatusFound},
		{name: "report form redirects", method: http.MethodGet, target: "/ongoing/groups/1/report", wantCode: http.StatusFound},
		{name: "place", method: http.MethodPost, target: "/ongoing/place", wantCode: http.StatusForbidden},
		{name: "clear", method: http.MethodPost, target: "/ongoing/groups/10/clear", wantCode: http.StatusForbidden},
		{name: "next round", method: http.MethodPost, target: "/ongoing/next-round", wantCode: http.StatusForbidden},
		{name: "delete all", method: http.MethodPost, target: "/admin/tournaments/delete-all", wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, url.Values{}, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	assert.Empty(t, env.board.placed)
	assert.Empty(t, env.board.requested)

	rec := env.do(t, http.MethodGet, "/admin", nil, nil)
	assert.Equal(t, "/login?next=%2Fadmin", rec.Header().Get("Location"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/login", url.Values{"email": {"admin@admin.se"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, document(t, rec).Find(".error").Text(), "Wrong email or password")

	rec = env.do(t, http.MethodPost, "/login", url.Values{
		"email": {"admin@admin.se"}, "password": {"secret"}, "next": {"//evil.example"},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	cookie := env.login(t)
	rec = env.do(t, http.MethodGet, "/admin", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlacePlayer(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/ongoing/place", url.Values{"player": {"Anna"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"Anna"}, env.board.placed)

	env.board.err = tournament.ErrPlayerAlreadyPlaced
	rec = env.do(t, http.MethodPost, "/ongoing/place", url.Values{"player": {"Anna"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, document(t, rec).Find(".error").Text(), tournament.ErrPlayerAlreadyPlaced.Error())
}

func TestBoardErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "all slots filled", err: tournament.ErrAllSlotsFilled, wantCode: http.StatusBadRequest, wantMsg: "all slots filled"},
		{name: "unknown group", err: live.ErrUnknownGroup, wantCode: http.StatusNotFound, wantMsg: live.ErrUnknownGroup.Error()},
		{name: "board stopped", err: live.ErrBoardStopped, wantCode: http.StatusServiceUnavailable, wantMsg: "The board is not available right now"},
		{name: "backend message", err: &backend.APIError{StatusCode: 409, Message: "group already has players"}, wantCode: http.StatusBadGateway, wantMsg: "group already has players"},
		{name: "backend without message", err: &backend.APIError{StatusCode: 500}, wantCode: http.StatusBadGateway, wantMsg: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := boardErrorStatus(tt.err, "fallback")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestReportMatch(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(t, http.MethodGet, "/ongoing/groups/1/report?player1=Anna&player2=Bo", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Report result", document(t, rec).Find("h1").Text())

	rec = env.do(t, http.MethodGet, "/ongoing/groups/1/report?player1=Anna&player2=Zed", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/ongoing/groups/99/report?player1=Anna&player2=Bo", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	form := url.Values{
		"player1": {"Anna"}, "player2": {"Bo"}, "status": {"PLAYED"}, "score1": {"4"}, "score2": {"2"},
	}
	rec = env.do(t, http.MethodPost, "/ongoing/groups/1/report", form, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, env.board.reports, 1)
	assert.Equal(t, tournament.Report{
		GroupID: 1, Player1: "Anna", Player2: "Bo", Status: tournament.StatusPlayed,
		Score1: utils.Ptr(4), Score2: utils.Ptr(2),
	}, env.board.reports[0])

	form.Set("score2", "four")
	rec = env.do(t, http.MethodPost, "/ongoing/groups/1/report", form, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, document(t, rec).Find(".error").Text(), "whole numbers")
	assert.Len(t, env.board.reports, 1)

	form.Set("score2", "4")
	env.board.err = tournament.ErrBothScoresWinning
	rec = env.do(t, http.MethodPost, "/ongoing/groups/1/report", form, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	doc := document(t, rec)
	assert.Contains(t, doc.Find(".error").Text(), tournament.ErrBothScoresWinning.Error())
	assert.Equal(t, "4", doc.Find("input[name=score2]").AttrOr("value", ""))
}

func TestNextRound(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/ongoing/next-round", url.Values{"numberOfPlayers": {"4"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = env.do(t, http.MethodGet, "/ongoing", nil, cookie)
	assert.Contains(t, document(t, rec).Find(".flash").Text(), "Semifinals created with 4 players")

	rec = env.do(t, http.MethodPost, "/ongoing/next-round", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []int{4, 0}, env.board.requested)

	env.board.err = tournament.ErrRoundNotReady
	rec = env.do(t, http.MethodPost, "/ongoing/next-round", url.Values{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTournament(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	form := url.Values{
		"name":                 {"Autumn Cup"},
		"date":                 {"2026-10-18"},
		"group_1_participants": {"Anna\r\nBo"},
		"group_1_court1":       {"B2"},
	}
	rec := env.do(t, http.MethodPost, "/admin/tournaments", form, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	doc := document(t, rec)
	assert.Contains(t, doc.Find(".error").Text(), "at least 3 players")
	assert.Equal(t, "Anna\nBo", doc.Find("textarea[name=group_1_participants]").Text())

	form.Set("group_1_participants", "Anna\nBo\nCleo")
	rec = env.do(t, http.MethodPost, "/admin/tournaments", form, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 1, env.board.refreshes)

	rec = env.do(t, http.MethodGet, "/", nil, cookie)
	assert.Contains(t, document(t, rec).Find(".flash").Text(), "Tournament created (id 42)")

	env.tournaments.err = &backend.APIError{StatusCode: 400, Message: "Tournament name already used"}
	rec = env.do(t, http.MethodPost, "/admin/tournaments", form, cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, document(t, rec).Find(".error").Text(), "Tournament name already used")
}

func TestDeleteFromArchive(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(t, http.MethodPost, "/admin/tournaments/7/delete", url.Values{"next": {"/archive"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/archive", rec.Header().Get("Location"))
	assert.Equal(t, []int64{7}, env.tournaments.deleted)

	rec = env.do(t, http.MethodPost, "/admin/tournaments/abc/delete", url.Values{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchivedTournament(t *testing.T) {
	env := newTestEnv(t)
	archived := groupStage()
	archived.Archived = true
	env.tournaments.snapshot = &store.ArchivedSnapshot{Tournament: archived, Results: tournament.Results{}}

	rec := env.do(t, http.MethodGet, "/archive/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	assert.Equal(t, "false", doc.Find("#board").AttrOr("data-live", ""))
	assert.Contains(t, doc.Find(".date").Text(), "archived")

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "not archived", err: service.ErrNotArchived, wantCode: http.StatusNotFound},
		{name: "unknown", err: &backend.APIError{StatusCode: http.StatusNotFound}, wantCode: http.StatusNotFound},
		{name: "backend down", err: &backend.APIError{StatusCode: http.StatusInternalServerError}, wantCode: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.tournaments.err = tt.err
			rec := env.do(t, http.MethodGet, "/archive/1", nil, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestBoardAPI(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.Header.Set("Origin", "http://display.local")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body struct {
		Version uint64 `json:"version"`
		Rounds  []struct {
			Title string `json:"title"`
		} `json:"rounds"`
		Slots []struct {
			GroupID int64  `json:"groupId"`
			State   string `json:"state"`
		} `json:"slots"`
		Ranking []tournament.Standing `json:"ranking"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, uint64(3), body.Version)
	require.Len(t, body.Rounds, 1)
	assert.Equal(t, "Semifinals", body.Rounds[0].Title)
	require.Len(t, body.Slots, 2)
	assert.Equal(t, "empty", body.Slots[0].State)
	assert.Len(t, body.Ranking, 3)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","backend":"ok"}`, rec.Body.String())

	env.health.err = &backend.APIError{StatusCode: 503, Message: "database down"}
	rec = env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","backend":"database down"}`, rec.Body.String())
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{name: "local path", next: "/ongoing", want: "/ongoing"},
		{name: "empty", next: "", want: "/admin"},
		{name: "absolute url", next: "https://evil.example", want: "/admin"},
		{name: "protocol relative", next: "//evil.example", want: "/admin"},
		{name: "backslash", next: "/\\evil.example", want: "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeRedirect(tt.next, "/admin"))
		})
	}
}
