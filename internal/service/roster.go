package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/tennis-fun/internal/backend"
	"github.com/AdamBeresnev/tennis-fun/internal/utils"
)

const (
	GroupCount   = 9
	MinGroupSize = 3
	MaxGroupSize = 5
	DateLayout   = "2006-01-02"
)

// Courts available for group play.
var Courts = []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8"}

var (
	ErrNameRequired         = errors.New("tournament name is required")
	ErrDateRequired         = errors.New("tournament date is required")
	ErrInvalidDate          = errors.New("date must be in YYYY-MM-DD format")
	ErrNoParticipants       = errors.New("at least one group must have participants")
	ErrGroupTooSmall        = fmt.Errorf("a group needs at least %d players", MinGroupSize)
	ErrGroupTooLarge        = fmt.Errorf("a group can have at most %d players", MaxGroupSize)
	ErrDuplicatePlayer      = errors.New("a player can only be entered once")
	ErrUnknownCourt         = errors.New("unknown court")
	ErrUnknownGroupNumber   = fmt.Errorf("group number must be between 1 and %d", GroupCount)
	ErrDuplicateGroupNumber = errors.New("a group number can only be used once")
)

type GroupForm struct {
	Number       int
	Participants []string
	Court1       string
	Court2       string
}

type NewTournament struct {
	Name   string
	Date   string
	Groups []GroupForm
}

// ParseParticipants turns pasted or uploaded text into one name per line.
func ParseParticipants(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var names []string
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// BuildCreateRequest validates the form and builds the backend request.
// Groups without players are left out.
func BuildCreateRequest(in NewTournament) (backend.CreateTournamentRequest, error) {
	req := backend.CreateTournamentRequest{
		Name: strings.TrimSpace(in.Name),
		Date: strings.TrimSpace(in.Date),
	}

	if req.Name == "" {
		return req, ErrNameRequired
	}
	if req.Date == "" {
		return req, ErrDateRequired
	}
	if _, err := time.Parse(DateLayout, req.Date); err != nil {
		return req, ErrInvalidDate
	}

	seen := make(map[string]int)
	numbers := make(map[int]bool)
	for _, g := range in.Groups {
		if len(g.Participants) == 0 {
			continue
		}
		if g.Number < 1 || g.Number > GroupCount {
			return req, ErrUnknownGroupNumber
		}
		if numbers[g.Number] {
			return req, fmt.Errorf("group %d: %w", g.Number, ErrDuplicateGroupNumber)
		}
		numbers[g.Number] = true
		if len(g.Participants) < MinGroupSize {
			return req, fmt.Errorf("group %d: %w", g.Number, ErrGroupTooSmall)
		}
		if len(g.Participants) > MaxGroupSize {
			return req, fmt.Errorf("group %d: %w", g.Number, ErrGroupTooLarge)
		}

		for _, p := range g.Participants {
			key := strings.ToLower(p)
			if other, dup := seen[key]; dup {
				return req, fmt.Errorf("%w: %s (group %d and %d)", ErrDuplicatePlayer, p, other, g.Number)
			}
			seen[key] = g.Number
		}

		for _, court := range []string{g.Court1, g.Court2} {
			if court != "" && !isCourt(court) {
				return req, fmt.Errorf("%w: %s", ErrUnknownCourt, court)
			}
		}

		req.Groups = append(req.Groups, backend.GroupInput{
			GroupNumber:  g.Number,
			Participants: g.Participants,
			Court1:       utils.StringOrNil(g.Court1),
			Court2:       utils.StringOrNil(g.Court2),
		})
	}

	if len(req.Groups) == 0 {
		return req, ErrNoParticipants
	}
	return req, nil
}

func isCourt(c string) bool {
	for _, court := range Courts {
		if court == c {
			return true
		}
	}
	return false
}
