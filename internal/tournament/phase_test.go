package tournament

import (
	"testing"

	"github.com/AdamBeresnev/tennis-fun/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knockoutGroups(n, firstNumber int) []Group {
	groups := make([]Group, 0, n)
	for i := 0; i < n; i++ {
		groups = append(groups, Group{ID: int64(100 + firstNumber + i), GroupNumber: firstNumber + i})
	}
	return groups
}

func roundSizes(rounds []Round) []int {
	sizes := make([]int, 0, len(rounds))
	for _, r := range rounds {
		sizes = append(sizes, len(r.Groups))
	}
	return sizes
}

func TestClassifyGroups(t *testing.T) {
	groups := []Group{
		{ID: 1, GroupNumber: 1, Participants: []string{"A", "B", "C"}},
		{ID: 2, GroupNumber: 2, Participants: []string{"D", "E"}},
		{ID: 3, GroupNumber: 3},
		{ID: 4, GroupNumber: 4, Participants: []string{"F", "G", "H", "I"}},
	}

	roundRobin, knockout := ClassifyGroups(groups)
	require.Len(t, roundRobin, 2)
	require.Len(t, knockout, 2)
	assert.Equal(t, int64(1), roundRobin[0].ID)
	assert.Equal(t, int64(4), roundRobin[1].ID)
	assert.Equal(t, int64(2), knockout[0].ID)
	assert.Equal(t, int64(3), knockout[1].ID)
}

func TestPartitionRounds(t *testing.T) {
	testCases := []struct {
		name   string
		groups int
		sizes  []int
		titles []string
	}{
		{name: "none", groups: 0, sizes: []int{}, titles: []string{}},
		{name: "final only", groups: 1, sizes: []int{1}, titles: []string{"Final"}},
		{name: "semis and final", groups: 3, sizes: []int{2, 1}, titles: []string{"Semifinals", "Final"}},
		{name: "from quarterfinals", groups: 7, sizes: []int{4, 2, 1}, titles: []string{"Quarterfinals", "Semifinals", "Final"}},
		{
			name:   "from round of 16",
			groups: 15,
			sizes:  []int{8, 4, 2, 1},
			titles: []string{"Round of 16", "Quarterfinals", "Semifinals", "Final"},
		},
		{name: "partial second round", groups: 6, sizes: []int{4, 2}, titles: []string{"Quarterfinals", "Semifinals"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rounds := PartitionRounds(knockoutGroups(tc.groups, 10))
			assert.Equal(t, tc.sizes, roundSizes(rounds))

			titles := make([]string, 0, len(rounds))
			for i, r := range rounds {
				assert.Equal(t, i, r.Index)
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tc.titles, titles)
		})
	}
}

func TestPartitionRoundsSortsByGroupNumber(t *testing.T) {
	groups := []Group{
		{ID: 3, GroupNumber: 12},
		{ID: 1, GroupNumber: 10},
		{ID: 2, GroupNumber: 11},
	}

	rounds := PartitionRounds(groups)
	require.Len(t, rounds, 2)
	assert.Equal(t, []int{10, 11}, []int{rounds[0].Groups[0].GroupNumber, rounds[0].Groups[1].GroupNumber})
	assert.Equal(t, 12, rounds[1].Groups[0].GroupNumber)
}

func TestPartitionRoundsExplicitRound(t *testing.T) {
	groups := []Group{
		{ID: 1, GroupNumber: 10, Round: utils.Ptr(1)},
		{ID: 2, GroupNumber: 11, Round: utils.Ptr(1)},
		{ID: 3, GroupNumber: 12, Round: utils.Ptr(1)},
		{ID: 4, GroupNumber: 13, Round: utils.Ptr(2)},
	}

	rounds := PartitionRounds(groups)
	assert.Equal(t, []int{3, 1}, roundSizes(rounds))
	assert.Equal(t, "Round (3 matches)", rounds[0].Title)
	assert.Equal(t, "Final", rounds[1].Title)

	// a single untagged group falls back to the heuristic
	groups[3].Round = nil
	assert.Equal(t, []int{4}, roundSizes(PartitionRounds(groups)))
}

func TestRoundTitle(t *testing.T) {
	assert.Equal(t, "Final", RoundTitle(1))
	assert.Equal(t, "Semifinals", RoundTitle(2))
	assert.Equal(t, "Quarterfinals", RoundTitle(4))
	assert.Equal(t, "Round of 16", RoundTitle(8))
	assert.Equal(t, "Round of 32", RoundTitle(16))
	assert.Equal(t, "Round (3 matches)", RoundTitle(3))
	assert.Equal(t, "Quarterfinals", NextRoundTitle(8))
}

func TestActiveRoundAndWinners(t *testing.T) {
	rounds := []Round{
		{Index: 0, Groups: []Group{
			{ID: 1, GroupNumber: 10, Participants: []string{"A", "B"}},
			{ID: 2, GroupNumber: 11, Participants: []string{"C", "D"}},
		}},
		{Index: 1, Groups: []Group{{ID: 3, GroupNumber: 12}}},
	}
	results := Results{
		1: {played("A", "B", 1, 4)},
		2: {played("D", "C", 4, 3)},
	}

	assert.Equal(t, 1, ActiveRoundIndex(rounds))
	assert.Equal(t, []string{"A", "B", "C", "D"}, PlayersOfRound(rounds[0]))
	assert.Equal(t, map[string]bool{"B": true, "D": true}, WinnersOfRound(rounds[0], results))

	rounds[1].Groups[0].Participants = []string{"B", "D"}
	assert.Equal(t, -1, ActiveRoundIndex(rounds))
}
