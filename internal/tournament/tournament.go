package tournament

import "sort"

type Group struct {
	ID           int64    `json:"id"`
	GroupNumber  int      `json:"groupNumber"`
	Participants []string `json:"participants"`
	Court1       *string  `json:"court1"`
	Court2       *string  `json:"court2"`

	// Round is only set by backends that tag knockout groups with the round they belong to
	Round *int `json:"round,omitempty"`
}

// IsEmpty reports whether the group is a knockout match still waiting for players.
func (g Group) IsEmpty() bool {
	return len(g.Participants) == 0
}

func (g Group) HasParticipant(name string) bool {
	for _, p := range g.Participants {
		if p == name {
			return true
		}
	}
	return false
}

type Tournament struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Date            string  `json:"date"`
	NumberOfWinners int     `json:"numberOfWinners"`
	CreatedAt       string  `json:"createdAt"`
	Archived        bool    `json:"archived"`
	Groups          []Group `json:"groups"`
}

// SortGroups orders groups by group number. Every snapshot coming from the
// backend goes through this so views can rely on a stable order.
func (t *Tournament) SortGroups() {
	sort.SliceStable(t.Groups, func(i, j int) bool {
		return t.Groups[i].GroupNumber < t.Groups[j].GroupNumber
	})
}

func (t *Tournament) Group(id int64) (*Group, bool) {
	for i := range t.Groups {
		if t.Groups[i].ID == id {
			return &t.Groups[i], true
		}
	}
	return nil, false
}

func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.Groups = make([]Group, len(t.Groups))
	for i, g := range t.Groups {
		g.Participants = append([]string(nil), g.Participants...)
		c.Groups[i] = g
	}
	return &c
}

type Summary struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Date             string `json:"date"`
	CreatedAt        string `json:"createdAt"`
	GroupCount       int    `json:"groupCount"`
	ParticipantCount int    `json:"participantCount"`
}
