package views

import (
	"strconv"

	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
)

// ReportForm holds what the operator typed so a rejected report can be shown
// again with its error.
type ReportForm struct {
	GroupID int64
	Player1 string
	Player2 string
	Status  tournament.MatchStatus
	Score1  string
	Score2  string
	Winner  string
	Editing bool
	Error   string
}

// ReportFormFor prefills the form from an existing result, if any.
func ReportFormFor(groupID int64, player1, player2 string, existing *tournament.MatchResult) ReportForm {
	f := ReportForm{GroupID: groupID, Player1: player1, Player2: player2, Status: tournament.StatusPlayed}
	if existing == nil {
		return f
	}
	f.Editing = true
	f.Status = existing.Status
	f.Winner = existing.Winner
	s1, s2 := existing.Score1, existing.Score2
	if existing.Player1 != player1 {
		s1, s2 = s2, s1
	}
	if s1 != nil {
		f.Score1 = strconv.Itoa(*s1)
	}
	if s2 != nil {
		f.Score2 = strconv.Itoa(*s2)
	}
	return f
}
