package views

import (
	"fmt"
	"strings"

	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
	"github.com/AdamBeresnev/tennis-fun/internal/utils"
)

type MatchRow struct {
	GroupID int64
	Player1 string
	Player2 string
	Result  *tournament.MatchResult
}

func (m MatchRow) Reported() bool {
	return m.Result != nil
}

// ScoreText renders the result from Player1's side.
func (m MatchRow) ScoreText() string {
	if m.Result == nil {
		return ""
	}
	r := *m.Result
	s1, s2 := utils.OrZero(r.Score1), utils.OrZero(r.Score2)
	if r.Player1 != m.Player1 {
		s1, s2 = s2, s1
	}
	switch r.Status {
	case tournament.StatusWalkover:
		return "W.O."
	case tournament.StatusRetired:
		return fmt.Sprintf("%d-%d ret.", s1, s2)
	}
	return fmt.Sprintf("%d-%d", s1, s2)
}

type GroupView struct {
	Group     tournament.Group
	Courts    string
	Standings []tournament.Standing
	Matches   []MatchRow
}

type KnockoutMatchView struct {
	Number   int
	Group    tournament.Group
	Match    *MatchRow
	Slot     *tournament.Slot
	Hint     string
	CanClear bool
}

type RoundView struct {
	Index   int
	Title   string
	Active  bool
	Matches []KnockoutMatchView
}

type CandidateView struct {
	Player     string
	Winner     bool
	Placed     bool
	Selectable bool
}

type RankingRow struct {
	Rank int
	tournament.Standing
	Placed     bool
	Selectable bool
}

type BoardData struct {
	Tournament  *tournament.Tournament
	ReadOnly    bool
	IsAdmin     bool
	Version     uint64
	LastError   string
	Groups      []GroupView
	Rounds      []RoundView
	ActiveRound int
	Candidates  []CandidateView
	Ranking     []RankingRow

	AllReported        bool
	HasEmptySlots      bool
	CanCreateNextRound bool
	NeedsPlayerCount   bool
	NextRoundPlayers   int
	NextRoundTitle     string
}

// PrepareBoardData turns a tournament snapshot into everything the board page
// shows: round robin tables, knockout rounds, candidates for open slots and
// the total ranking.
func PrepareBoardData(t *tournament.Tournament, results tournament.Results, slots tournament.SlotSetup, readOnly, isAdmin bool) BoardData {
	data := BoardData{Tournament: t, ReadOnly: readOnly, IsAdmin: isAdmin, ActiveRound: -1}
	if t == nil {
		return data
	}
	if slots == nil {
		slots = make(tournament.SlotSetup)
	}
	editable := !readOnly && isAdmin

	roundRobin, knockout := tournament.ClassifyGroups(t.Groups)
	for _, g := range roundRobin {
		data.Groups = append(data.Groups, GroupView{
			Group:     g,
			Courts:    courtLabel(g),
			Standings: tournament.GroupStandings(g.Participants, results[g.ID]),
			Matches:   matchRows(g, results[g.ID]),
		})
	}

	rounds := tournament.PartitionRounds(knockout)
	data.ActiveRound = tournament.ActiveRoundIndex(rounds)
	data.Rounds = roundViews(rounds, results, slots, data.ActiveRound, editable)

	placed := func(p string) bool {
		if slots.Contains(p) {
			return true
		}
		if data.ActiveRound < 0 {
			return false
		}
		for _, g := range rounds[data.ActiveRound].Groups {
			if g.HasParticipant(p) {
				return true
			}
		}
		return false
	}
	canPlace := editable && slots.HasEmptySlots()

	for i, st := range tournament.GlobalRanking(t.Groups, results) {
		isPlaced := placed(st.Player)
		data.Ranking = append(data.Ranking, RankingRow{
			Rank:       i + 1,
			Standing:   st,
			Placed:     isPlaced,
			Selectable: canPlace && data.ActiveRound == 0 && !isPlaced,
		})
	}

	if data.ActiveRound > 0 {
		prev := rounds[data.ActiveRound-1]
		winners := tournament.WinnersOfRound(prev, results)
		for _, p := range tournament.PlayersOfRound(prev) {
			isPlaced := placed(p)
			data.Candidates = append(data.Candidates, CandidateView{
				Player:     p,
				Winner:     winners[p],
				Placed:     isPlaced,
				Selectable: canPlace && !isPlaced,
			})
		}
	}

	data.AllReported = tournament.AllMatchesReported(t.Groups, results)
	data.HasEmptySlots = slots.HasEmptySlots()
	data.CanCreateNextRound = tournament.CanCreateNextRound(readOnly, isAdmin, t, results, slots)
	data.NeedsPlayerCount = len(rounds) == 0
	if !data.NeedsPlayerCount {
		if n, err := tournament.AdvancingPlayers(rounds, 0); err == nil {
			data.NextRoundPlayers = n
			data.NextRoundTitle = tournament.NextRoundTitle(n)
		} else {
			data.CanCreateNextRound = false
		}
	}
	return data
}

func matchRows(g tournament.Group, results []tournament.MatchResult) []MatchRow {
	idx := tournament.NewResultIndex(results)
	var rows []MatchRow
	for _, m := range tournament.DeriveMatches(g.Participants) {
		row := MatchRow{GroupID: g.ID, Player1: m.Player1, Player2: m.Player2}
		if r, ok := idx.Find(m.Player1, m.Player2); ok {
			row.Result = &r
		}
		rows = append(rows, row)
	}
	return rows
}

func roundViews(rounds []tournament.Round, results tournament.Results, slots tournament.SlotSetup, active int, editable bool) []RoundView {
	numbers := make(map[int64]int)
	n := 0
	for _, r := range rounds {
		for _, g := range r.Groups {
			n++
			numbers[g.ID] = n
		}
	}

	feeders, err := tournament.BuildFeederGraph(rounds)
	if err != nil {
		feeders = nil
	}

	views := make([]RoundView, 0, len(rounds))
	for _, r := range rounds {
		rv := RoundView{Index: r.Index, Title: r.Title, Active: r.Index == active}
		for _, g := range r.Groups {
			mv := KnockoutMatchView{Number: numbers[g.ID], Group: g}
			if g.IsEmpty() {
				slot, ok := slots[g.ID]
				if !ok {
					slot = tournament.EmptySlot(g)
				}
				mv.Slot = &slot
				if feeders != nil {
					mv.Hint = feederHint(feeders.Feeders(g.ID), numbers)
				}
			} else {
				rows := matchRows(g, results[g.ID])
				if len(rows) > 0 {
					mv.Match = &rows[0]
					mv.CanClear = editable && !rows[0].Reported()
				}
			}
			rv.Matches = append(rv.Matches, mv)
		}
		views = append(views, rv)
	}
	return views
}

func feederHint(feeders []tournament.Group, numbers map[int64]int) string {
	if len(feeders) == 0 {
		return ""
	}
	parts := make([]string, 0, len(feeders))
	for _, f := range feeders {
		parts = append(parts, fmt.Sprintf("Winner of match %d", numbers[f.ID]))
	}
	return strings.Join(parts, " / ")
}

func courtLabel(g tournament.Group) string {
	var courts []string
	for _, c := range []*string{g.Court1, g.Court2} {
		if v := utils.OrZero(c); v != "" {
			courts = append(courts, v)
		}
	}
	return strings.Join(courts, ", ")
}
