package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
	"github.com/AdamBeresnev/tennis-fun/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (rec *recorder) all() []recordedRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]recordedRequest(nil), rec.requests...)
}

func newTestServer(t *testing.T, status int, response string) (*Client, *recorder) {
	t.Helper()

	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/api/", time.Second), rec
}

func TestTournamentSortsGroups(t *testing.T) {
	client, rec := newTestServer(t, http.StatusOK, `{
		"id": 3, "name": "Autumn Cup", "date": "2025-10-04", "archived": false,
		"groups": [
			{"id": 12, "groupNumber": 2, "participants": ["C", "D", "E"], "court1": "B3", "court2": null},
			{"id": 11, "groupNumber": 1, "participants": ["A", "B", "F"], "court1": null, "court2": null},
			{"id": 20, "groupNumber": 10, "participants": []}
		]
	}`)

	tour, err := client.Tournament(context.Background(), 3)
	require.NoError(t, err)

	requests := rec.all()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodGet, requests[0].Method)
	assert.Equal(t, "/api/tournaments/3", requests[0].Path)

	assert.Equal(t, "Autumn Cup", tour.Name)
	require.Len(t, tour.Groups, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{tour.Groups[0].GroupNumber, tour.Groups[1].GroupNumber, tour.Groups[2].GroupNumber})
	assert.Equal(t, "B3", utils.OrZero(tour.Groups[1].Court1))
	assert.True(t, tour.Groups[2].IsEmpty())
}

func TestReportMatchBody(t *testing.T) {
	client, rec := newTestServer(t, http.StatusCreated, `{
		"id": 55, "status": "PLAYED", "winner": "A", "player1": "A", "player2": "B",
		"score1": 4, "score2": 1, "reportedAt": "2025-10-04T10:15:00"
	}`)

	result, err := client.ReportMatch(context.Background(), tournament.Report{
		GroupID: 11,
		Player1: "A",
		Player2: "B",
		Score1:  utils.Ptr(4),
		Score2:  utils.Ptr(1),
		Status:  tournament.StatusPlayed,
		Winner:  "A",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), result.ID)
	assert.Equal(t, 4, utils.OrZero(result.Score1))

	requests := rec.all()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/matches/report", req.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, float64(11), body["groupId"])
	assert.Equal(t, "PLAYED", body["status"])
	assert.Equal(t, float64(1), body["score2"])
}

func TestCreateNextRoundQuery(t *testing.T) {
	testCases := []struct {
		name    string
		players int
		query   string
	}{
		{name: "explicit count", players: 8, query: "numberOfPlayers=8"},
		{name: "backend decides", players: 0, query: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, rec := newTestServer(t, http.StatusOK, `{"id": 3, "groups": []}`)

			_, err := client.CreateNextRound(context.Background(), 3, tc.players)
			require.NoError(t, err)

			requests := rec.all()
			require.Len(t, requests, 1)
			assert.Equal(t, "/api/tournaments/3/next-round", requests[0].Path)
			assert.Equal(t, tc.query, requests[0].Query)
		})
	}
}

func TestUpdateGroupParticipantsSendsArray(t *testing.T) {
	client, rec := newTestServer(t, http.StatusOK, `{"id": 20, "groupNumber": 10, "participants": ["A", "D"]}`)

	err := client.UpdateGroupParticipants(context.Background(), 20, []string{"A", "D"})
	require.NoError(t, err)

	req := rec.all()[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/tournaments/groups/20/participants", req.Path)
	assert.JSONEq(t, `["A", "D"]`, req.Body)
}

func TestErrorMessages(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		response   string
		message    string
		isNotFound bool
	}{
		{
			name:     "backend message",
			status:   http.StatusBadRequest,
			response: `{"message": "Antal spelare måste vara minst 2"}`,
			message:  "Antal spelare måste vara minst 2",
		},
		{
			name:     "no body falls back",
			status:   http.StatusInternalServerError,
			response: ``,
			message:  "Could not create round",
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			response:   `<html>nope</html>`,
			message:    "Could not create round",
			isNotFound: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestServer(t, tc.status, tc.response)

			_, err := client.CreateNextRound(context.Background(), 1, 4)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.message, Message(err, "Could not create round"))
			assert.Equal(t, tc.isNotFound, errors.Is(err, ErrNotFound))
		})
	}
}

func TestMessageWithoutAPIError(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("dial tcp: refused"), "fallback"))
}
