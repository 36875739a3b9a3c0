package tournament

import (
	"fmt"
	"sort"
)

// ClassifyGroups splits groups into round robin groups (more than two
// participants) and knockout groups (two participants or still empty).
// Input order is kept.
func ClassifyGroups(groups []Group) (roundRobin, knockout []Group) {
	for _, g := range groups {
		if len(g.Participants) > 2 {
			roundRobin = append(roundRobin, g)
		} else {
			knockout = append(knockout, g)
		}
	}
	return roundRobin, knockout
}

type Round struct {
	Index  int
	Title  string
	Groups []Group
}

// PartitionRounds buckets knockout groups into rounds. If every group carries
// an explicit round number that is used. Otherwise groups are sorted by group
// number and taken from the front in chunks of 8, 4, 2 or 1, always the
// largest chunk that still fits.
func PartitionRounds(knockout []Group) []Round {
	if len(knockout) == 0 {
		return nil
	}

	sorted := append([]Group(nil), knockout...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GroupNumber < sorted[j].GroupNumber
	})

	var chunks [][]Group
	if explicit, ok := byExplicitRound(sorted); ok {
		chunks = explicit
	} else {
		for len(sorted) > 0 {
			size := chunkSize(len(sorted))
			chunks = append(chunks, sorted[:size])
			sorted = sorted[size:]
		}
	}

	rounds := make([]Round, 0, len(chunks))
	for i, c := range chunks {
		rounds = append(rounds, Round{Index: i, Title: RoundTitle(len(c)), Groups: c})
	}
	return rounds
}

func chunkSize(remaining int) int {
	for _, size := range []int{8, 4, 2} {
		if remaining >= size {
			return size
		}
	}
	return 1
}

func byExplicitRound(sorted []Group) ([][]Group, bool) {
	byRound := make(map[int][]Group)
	var nums []int
	for _, g := range sorted {
		if g.Round == nil {
			return nil, false
		}
		if _, exists := byRound[*g.Round]; !exists {
			nums = append(nums, *g.Round)
		}
		byRound[*g.Round] = append(byRound[*g.Round], g)
	}
	sort.Ints(nums)

	chunks := make([][]Group, 0, len(nums))
	for _, n := range nums {
		chunks = append(chunks, byRound[n])
	}
	return chunks, true
}

// RoundTitle names a round by how many matches it has.
func RoundTitle(matches int) string {
	switch matches {
	case 1:
		return "Final"
	case 2:
		return "Semifinals"
	case 4:
		return "Quarterfinals"
	case 8:
		return "Round of 16"
	case 16:
		return "Round of 32"
	}
	return fmt.Sprintf("Round (%d matches)", matches)
}

// ActiveRoundIndex is the first round that still has a match without
// players, or -1 when every round is set.
func ActiveRoundIndex(rounds []Round) int {
	for i, r := range rounds {
		for _, g := range r.Groups {
			if g.IsEmpty() {
				return i
			}
		}
	}
	return -1
}

// PlayersOfRound lists the round's participants in group order.
func PlayersOfRound(r Round) []string {
	var players []string
	for _, g := range r.Groups {
		players = append(players, g.Participants...)
	}
	return players
}

// WinnersOfRound returns the reported winners of a round's matches.
func WinnersOfRound(r Round, results Results) map[string]bool {
	winners := make(map[string]bool)
	for _, g := range r.Groups {
		idx := NewResultIndex(results[g.ID])
		for _, m := range DeriveMatches(g.Participants) {
			if res, ok := idx.Find(m.Player1, m.Player2); ok && res.Winner != "" {
				winners[res.Winner] = true
			}
		}
	}
	return winners
}
