package tournament

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
)

// FeederGraph links knockout matches to the match their winner moves on to.
type FeederGraph struct {
	g graph.Graph[int64, Group]
}

func groupHash(g Group) int64 {
	return g.ID
}

// BuildFeederGraph connects match i of a round to match i/2 of the following
// round. Rounds that do not halve the previous one are left unconnected since
// there is no positional pairing to infer.
func BuildFeederGraph(rounds []Round) (*FeederGraph, error) {
	g := graph.New(groupHash, graph.Directed(), graph.Acyclic())

	for _, r := range rounds {
		for _, grp := range r.Groups {
			if err := g.AddVertex(grp); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, fmt.Errorf("failed to add match %d: %w", grp.GroupNumber, err)
			}
		}
	}

	for i := 0; i+1 < len(rounds); i++ {
		cur, next := rounds[i].Groups, rounds[i+1].Groups
		if len(next) != (len(cur)+1)/2 {
			continue
		}
		for j, grp := range cur {
			if err := g.AddEdge(grp.ID, next[j/2].ID); err != nil {
				return nil, fmt.Errorf("failed to link match %d: %w", grp.GroupNumber, err)
			}
		}
	}

	return &FeederGraph{g: g}, nil
}

// Feeders returns the matches feeding into groupID, ordered by group number.
func (f *FeederGraph) Feeders(groupID int64) []Group {
	preds, err := f.g.PredecessorMap()
	if err != nil {
		return nil
	}

	var feeders []Group
	for id := range preds[groupID] {
		grp, err := f.g.Vertex(id)
		if err != nil {
			continue
		}
		feeders = append(feeders, grp)
	}
	sort.Slice(feeders, func(i, j int) bool {
		return feeders[i].GroupNumber < feeders[j].GroupNumber
	})
	return feeders
}
