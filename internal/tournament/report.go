package tournament

import "strings"

// WinningScore is the number of games that wins a played match.
const WinningScore = 4

// Report is a match result as submitted by the operator. ResultID is set when
// an already reported result is being edited.
type Report struct {
	ResultID int64       `json:"-"`
	GroupID  int64       `json:"groupId"`
	Player1  string      `json:"player1"`
	Player2  string      `json:"player2"`
	Score1   *int        `json:"score1"`
	Score2   *int        `json:"score2"`
	Status   MatchStatus `json:"status"`
	Winner   string      `json:"winner"`
}

// ValidateReport checks a report against the rules of its status and returns
// the normalized report that should be sent to the backend.
func ValidateReport(r Report) (Report, error) {
	r.Player1 = strings.TrimSpace(r.Player1)
	r.Player2 = strings.TrimSpace(r.Player2)
	r.Winner = strings.TrimSpace(r.Winner)

	if r.Player1 == "" || r.Player2 == "" || r.Player1 == r.Player2 {
		return r, ErrPlayersNotDistinct
	}

	switch r.Status {
	case StatusPlayed:
		if r.Score1 == nil || r.Score2 == nil {
			return r, ErrScoreMissing
		}
		s1, s2 := *r.Score1, *r.Score2
		if !inRange(s1) || !inRange(s2) {
			return r, ErrScoreOutOfRange
		}
		if s1 == WinningScore && s2 == WinningScore {
			return r, ErrBothScoresWinning
		}
		if s1 != WinningScore && s2 != WinningScore {
			return r, ErrNoWinningScore
		}
		if s1 > s2 {
			r.Winner = r.Player1
		} else {
			r.Winner = r.Player2
		}
		return r, nil

	case StatusWalkover:
		if err := checkWinner(r); err != nil {
			return r, err
		}
		r.Score1, r.Score2 = nil, nil
		return r, nil

	case StatusRetired:
		if err := checkWinner(r); err != nil {
			return r, err
		}
		if r.Score1 == nil || r.Score2 == nil {
			return r, ErrScoreMissing
		}
		if !inRange(*r.Score1) || !inRange(*r.Score2) {
			return r, ErrScoreOutOfRange
		}
		if *r.Score1 >= WinningScore || *r.Score2 >= WinningScore {
			return r, ErrRetiredScore
		}
		return r, nil
	}

	return r, ErrUnknownStatus
}

func checkWinner(r Report) error {
	if r.Winner == "" {
		return ErrWinnerRequired
	}
	if r.Winner != r.Player1 && r.Winner != r.Player2 {
		return ErrWinnerNotInMatch
	}
	return nil
}

func inRange(score int) bool {
	return score >= 0 && score <= WinningScore
}
