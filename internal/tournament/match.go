package tournament

type Match struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// DeriveMatches returns the pairings a group has to play. A two player group is
// a single knockout match, larger groups play every pair once in index order.
func DeriveMatches(participants []string) []Match {
	if len(participants) == 2 {
		return []Match{{Player1: participants[0], Player2: participants[1]}}
	}

	var matches []Match
	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			matches = append(matches, Match{Player1: participants[i], Player2: participants[j]})
		}
	}
	return matches
}

type MatchStatus string

const (
	StatusPlayed   MatchStatus = "PLAYED"
	StatusWalkover MatchStatus = "WALKOVER"
	StatusRetired  MatchStatus = "RETIRED"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case StatusPlayed, StatusWalkover, StatusRetired:
		return true
	}
	return false
}

type MatchResult struct {
	ID         int64       `json:"id"`
	GroupID    int64       `json:"groupId,omitempty"`
	Player1    string      `json:"player1"`
	Player2    string      `json:"player2"`
	Score1     *int        `json:"score1"`
	Score2     *int        `json:"score2"`
	Status     MatchStatus `json:"status"`
	Winner     string      `json:"winner"`
	ReportedAt string      `json:"reportedAt,omitempty"`
}

func (r MatchResult) Involves(player string) bool {
	return r.Player1 == player || r.Player2 == player
}

// Games returns the games won and lost by player. Missing scores count as 0.
func (r MatchResult) Games(player string) (won, lost int) {
	s1, s2 := deref(r.Score1), deref(r.Score2)
	switch player {
	case r.Player1:
		return s1, s2
	case r.Player2:
		return s2, s1
	}
	return 0, 0
}

func (r MatchResult) Loser() string {
	switch r.Winner {
	case r.Player1:
		return r.Player2
	case r.Player2:
		return r.Player1
	}
	return ""
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// Results holds the reported results of a tournament keyed by group id.
type Results map[int64][]MatchResult

func (rs Results) Clone() Results {
	c := make(Results, len(rs))
	for id, list := range rs {
		c[id] = append([]MatchResult(nil), list...)
	}
	return c
}

type pairKey struct {
	lo, hi string
}

func keyFor(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// ResultIndex looks up results by unordered player pair. When the backend
// returns more than one result for a pair the first one in list order wins.
type ResultIndex struct {
	byPair map[pairKey]MatchResult
}

func NewResultIndex(results []MatchResult) ResultIndex {
	idx := ResultIndex{byPair: make(map[pairKey]MatchResult, len(results))}
	for _, r := range results {
		k := keyFor(r.Player1, r.Player2)
		if _, exists := idx.byPair[k]; exists {
			continue
		}
		idx.byPair[k] = r
	}
	return idx
}

func (idx ResultIndex) Find(a, b string) (MatchResult, bool) {
	r, ok := idx.byPair[keyFor(a, b)]
	return r, ok
}

func (idx ResultIndex) Len() int {
	return len(idx.byPair)
}

// FindResult is the one-off form of ResultIndex.Find.
func FindResult(results []MatchResult, a, b string) (MatchResult, bool) {
	want := keyFor(a, b)
	for _, r := range results {
		if keyFor(r.Player1, r.Player2) == want {
			return r, true
		}
	}
	return MatchResult{}, false
}
