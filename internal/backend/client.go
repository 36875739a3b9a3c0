package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
)

// Client talks to the tournament backend's JSON API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type GroupInput struct {
	GroupNumber  int      `json:"groupNumber"`
	Participants []string `json:"participants"`
	Court1       *string  `json:"court1,omitempty"`
	Court2       *string  `json:"court2,omitempty"`
}

type CreateTournamentRequest struct {
	Name            string       `json:"name"`
	Date            string       `json:"date"`
	NumberOfWinners *int         `json:"numberOfWinners,omitempty"`
	Groups          []GroupInput `json:"groups"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) CreateTournament(ctx context.Context, req CreateTournamentRequest) (*tournament.Summary, error) {
	var summary tournament.Summary
	if err := c.do(ctx, http.MethodPost, "/tournaments", req, &summary); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return &summary, nil
}

func (c *Client) Tournaments(ctx context.Context) ([]tournament.Summary, error) {
	return c.summaries(ctx, "/tournaments")
}

func (c *Client) ActiveTournaments(ctx context.Context) ([]tournament.Summary, error) {
	return c.summaries(ctx, "/tournaments/active")
}

func (c *Client) ArchivedTournaments(ctx context.Context) ([]tournament.Summary, error) {
	return c.summaries(ctx, "/tournaments/archived")
}

func (c *Client) summaries(ctx context.Context, path string) ([]tournament.Summary, error) {
	var summaries []tournament.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, &summaries); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return summaries, nil
}

func (c *Client) Tournament(ctx context.Context, id int64) (*tournament.Tournament, error) {
	var t tournament.Tournament
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tournaments/%d", id), nil, &t); err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	t.SortGroups()
	return &t, nil
}

func (c *Client) ArchiveTournament(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tournaments/%d/archive", id), nil, nil); err != nil {
		return fmt.Errorf("failed to archive tournament %d: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteTournament(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/tournaments/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return nil
}

// DeleteAllTournaments removes every active tournament. Archived ones stay.
func (c *Client) DeleteAllTournaments(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/tournaments", nil, nil); err != nil {
		return fmt.Errorf("failed to delete tournaments: %w", err)
	}
	return nil
}

func (c *Client) ReportMatch(ctx context.Context, r tournament.Report) (*tournament.MatchResult, error) {
	var result tournament.MatchResult
	if err := c.do(ctx, http.MethodPost, "/matches/report", r, &result); err != nil {
		return nil, fmt.Errorf("failed to report match: %w", err)
	}
	return &result, nil
}

func (c *Client) UpdateMatch(ctx context.Context, id int64, r tournament.Report) (*tournament.MatchResult, error) {
	var result tournament.MatchResult
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/matches/%d", id), r, &result); err != nil {
		return nil, fmt.Errorf("failed to update match %d: %w", id, err)
	}
	return &result, nil
}

func (c *Client) GroupResults(ctx context.Context, groupID int64) ([]tournament.MatchResult, error) {
	var results []tournament.MatchResult
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/matches/group/%d", groupID), nil, &results); err != nil {
		return nil, fmt.Errorf("failed to get results for group %d: %w", groupID, err)
	}
	return results, nil
}

// CreateNextRound asks the backend for the next knockout round. A
// numberOfPlayers of 0 leaves the count to the backend.
func (c *Client) CreateNextRound(ctx context.Context, tournamentID int64, numberOfPlayers int) (*tournament.Tournament, error) {
	path := fmt.Sprintf("/tournaments/%d/next-round", tournamentID)
	if numberOfPlayers > 0 {
		q := url.Values{}
		q.Set("numberOfPlayers", strconv.Itoa(numberOfPlayers))
		path += "?" + q.Encode()
	}

	var t tournament.Tournament
	if err := c.do(ctx, http.MethodPost, path, nil, &t); err != nil {
		return nil, fmt.Errorf("failed to create next round: %w", err)
	}
	t.SortGroups()
	return &t, nil
}

func (c *Client) UpdateGroupParticipants(ctx context.Context, groupID int64, participants []string) error {
	path := fmt.Sprintf("/tournaments/groups/%d/participants", groupID)
	if err := c.do(ctx, http.MethodPut, path, participants, nil); err != nil {
		return fmt.Errorf("failed to update participants of group %d: %w", groupID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
	}
	return apiErr
}
