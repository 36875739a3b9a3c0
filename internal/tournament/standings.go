package tournament

import "sort"

// PointsPerWin is awarded to the winner of every reported match.
const PointsPerWin = 2

type Standing struct {
	Player        string `json:"player"`
	Played        int    `json:"played"`
	Wins          int    `json:"wins"`
	Points        int    `json:"points"`
	SetDifference int    `json:"setDifference"`
	GamesWon      int    `json:"gamesWon"`
}

func (s *Standing) add(o Standing) {
	s.Played += o.Played
	s.Wins += o.Wins
	s.Points += o.Points
	s.SetDifference += o.SetDifference
	s.GamesWon += o.GamesWon
}

// GroupStandings computes the table for one group. Results that do not
// involve a participant are ignored for that participant.
func GroupStandings(participants []string, results []MatchResult) []Standing {
	standings := make([]Standing, 0, len(participants))
	for _, p := range participants {
		st := Standing{Player: p}
		for _, r := range results {
			if !r.Involves(p) {
				continue
			}
			won, lost := r.Games(p)
			st.Played++
			st.SetDifference += won - lost
			st.GamesWon += won
			if r.Winner == p {
				st.Wins++
				st.Points += PointsPerWin
			}
		}
		standings = append(standings, st)
	}

	SortStandings(standings)
	return standings
}

// GlobalRanking sums every player's contribution over all groups they played in.
func GlobalRanking(groups []Group, results Results) []Standing {
	totals := make(map[string]*Standing)
	var order []string

	for _, g := range groups {
		for _, st := range GroupStandings(g.Participants, results[g.ID]) {
			total, ok := totals[st.Player]
			if !ok {
				total = &Standing{Player: st.Player}
				totals[st.Player] = total
				order = append(order, st.Player)
			}
			total.add(st)
		}
	}

	ranking := make([]Standing, 0, len(order))
	for _, p := range order {
		ranking = append(ranking, *totals[p])
	}
	SortStandings(ranking)
	return ranking
}

// SortStandings orders by points, set difference and games won, all
// descending. Anything still tied is ordered by player name.
func SortStandings(s []Standing) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.SetDifference != b.SetDifference {
			return a.SetDifference > b.SetDifference
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		return a.Player < b.Player
	})
}
