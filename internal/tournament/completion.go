package tournament

// AllMatchesReported is false while any group is still waiting for players or
// any derived match has no result.
func AllMatchesReported(groups []Group, results Results) bool {
	for _, g := range groups {
		if g.IsEmpty() {
			return false
		}
		idx := NewResultIndex(results[g.ID])
		for _, m := range DeriveMatches(g.Participants) {
			if _, ok := idx.Find(m.Player1, m.Player2); !ok {
				return false
			}
		}
	}
	return true
}

// CanCreateNextRound gates the "create next round" action.
func CanCreateNextRound(readOnly, admin bool, t *Tournament, results Results, setup SlotSetup) bool {
	if readOnly || !admin || t == nil {
		return false
	}
	return AllMatchesReported(t.Groups, results) && !setup.HasEmptySlots()
}

// AdvancingPlayers decides how many players go into the next round. Before the
// first knockout round the operator picks the number, afterwards one player
// advances from every match of the latest round.
func AdvancingPlayers(rounds []Round, requested int) (int, error) {
	if len(rounds) == 0 {
		if requested < 2 || requested%2 != 0 {
			return 0, ErrInvalidPlayerCount
		}
		return requested, nil
	}

	last := len(rounds[len(rounds)-1].Groups)
	if last == 1 {
		return 0, ErrTournamentDecided
	}
	if last%2 != 0 {
		return 0, ErrInvalidPlayerCount
	}
	return last, nil
}

// NextRoundTitle previews the title of the round created for numberOfPlayers.
func NextRoundTitle(numberOfPlayers int) string {
	return RoundTitle(numberOfPlayers / 2)
}
