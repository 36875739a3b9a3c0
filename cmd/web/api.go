package main

import (
	"time"

	"github.com/AdamBeresnev/tennis-fun/internal/live"
	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
)

type slotResponse struct {
	GroupID     int64  `json:"groupId"`
	GroupNumber int    `json:"groupNumber"`
	State       string `json:"state"`
	Player1     string `json:"player1,omitempty"`
	Player2     string `json:"player2,omitempty"`
}

type roundResponse struct {
	Title    string  `json:"title"`
	GroupIDs []int64 `json:"groupIds"`
}

// boardResponse is the JSON shape of /api/board for external displays.
type boardResponse struct {
	Tournament  *tournament.Tournament `json:"tournament"`
	Results     tournament.Results     `json:"results"`
	Rounds      []roundResponse        `json:"rounds"`
	Slots       []slotResponse         `json:"slots"`
	Ranking     []tournament.Standing  `json:"ranking"`
	Version     uint64                 `json:"version"`
	RefreshedAt time.Time              `json:"refreshedAt"`
	LastError   string                 `json:"lastError,omitempty"`
}

func newBoardResponse(snap live.Snapshot) boardResponse {
	resp := boardResponse{
		Tournament:  snap.Tournament,
		Results:     snap.Results,
		Rounds:      []roundResponse{},
		Slots:       []slotResponse{},
		Ranking:     []tournament.Standing{},
		Version:     snap.Version,
		RefreshedAt: snap.RefreshedAt,
		LastError:   snap.LastError,
	}
	if snap.Tournament == nil {
		return resp
	}

	_, knockout := tournament.ClassifyGroups(snap.Tournament.Groups)
	for _, r := range tournament.PartitionRounds(knockout) {
		rr := roundResponse{Title: r.Title}
		for _, g := range r.Groups {
			rr.GroupIDs = append(rr.GroupIDs, g.ID)
		}
		resp.Rounds = append(resp.Rounds, rr)
	}
	for _, s := range snap.Slots.Ordered() {
		resp.Slots = append(resp.Slots, slotResponse{
			GroupID:     s.GroupID,
			GroupNumber: s.GroupNumber,
			State:       s.State.String(),
			Player1:     s.Player1,
			Player2:     s.Player2,
		})
	}
	if ranking := tournament.GlobalRanking(snap.Tournament.Groups, snap.Results); ranking != nil {
		resp.Ranking = ranking
	}
	return resp
}
