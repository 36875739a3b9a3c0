package tournament

import (
	"testing"

	"github.com/AdamBeresnev/tennis-fun/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReport(t *testing.T) {
	base := func(status MatchStatus, s1, s2 *int, winner string) Report {
		return Report{GroupID: 7, Player1: "Anna", Player2: "Bo", Score1: s1, Score2: s2, Status: status, Winner: winner}
	}

	testCases := []struct {
		name     string
		report   Report
		err      error
		winner   string
		noScores bool
	}{
		{name: "played 4-2", report: base(StatusPlayed, utils.Ptr(4), utils.Ptr(2), ""), winner: "Anna"},
		{name: "played 1-4 overrides winner", report: base(StatusPlayed, utils.Ptr(1), utils.Ptr(4), "Anna"), winner: "Bo"},
		{name: "played 4-4", report: base(StatusPlayed, utils.Ptr(4), utils.Ptr(4), ""), err: ErrBothScoresWinning},
		{name: "played 3-2", report: base(StatusPlayed, utils.Ptr(3), utils.Ptr(2), ""), err: ErrNoWinningScore},
		{name: "played missing score", report: base(StatusPlayed, utils.Ptr(4), nil, ""), err: ErrScoreMissing},
		{name: "played out of range", report: base(StatusPlayed, utils.Ptr(5), utils.Ptr(2), ""), err: ErrScoreOutOfRange},
		{name: "played negative", report: base(StatusPlayed, utils.Ptr(4), utils.Ptr(-1), ""), err: ErrScoreOutOfRange},
		{name: "walkover clears scores", report: base(StatusWalkover, utils.Ptr(4), utils.Ptr(0), "Bo"), winner: "Bo", noScores: true},
		{name: "walkover without winner", report: base(StatusWalkover, nil, nil, ""), err: ErrWinnerRequired},
		{name: "walkover foreign winner", report: base(StatusWalkover, nil, nil, "Cecilia"), err: ErrWinnerNotInMatch},
		{name: "retired 2-1", report: base(StatusRetired, utils.Ptr(2), utils.Ptr(1), "Bo"), winner: "Bo"},
		{name: "retired with 4", report: base(StatusRetired, utils.Ptr(4), utils.Ptr(1), "Anna"), err: ErrRetiredScore},
		{name: "retired missing score", report: base(StatusRetired, nil, utils.Ptr(1), "Anna"), err: ErrScoreMissing},
		{name: "retired without winner", report: base(StatusRetired, utils.Ptr(1), utils.Ptr(1), ""), err: ErrWinnerRequired},
		{name: "unknown status", report: base("DRAW", utils.Ptr(4), utils.Ptr(1), ""), err: ErrUnknownStatus},
		{name: "same player twice", report: Report{Player1: "Anna", Player2: "Anna", Status: StatusWalkover, Winner: "Anna"}, err: ErrPlayersNotDistinct},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateReport(tc.report)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.winner, got.Winner)
			if tc.noScores {
				assert.Nil(t, got.Score1)
				assert.Nil(t, got.Score2)
			}
		})
	}
}
