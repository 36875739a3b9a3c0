package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tennis-fun/internal/tournament"
	"golang.org/x/sync/errgroup"
)

const resultFetchLimit = 8

type ResultFetcher interface {
	GroupResults(ctx context.Context, groupID int64) ([]tournament.MatchResult, error)
}

// FetchResults loads the results of all groups in parallel. A group whose
// results cannot be fetched is left out of results and listed in failed, in
// group order, instead of failing the whole load. Only cancellation aborts it.
func FetchResults(ctx context.Context, f ResultFetcher, groups []tournament.Group, logger *slog.Logger) (results tournament.Results, failed []int64, err error) {
	lists := make([][]tournament.MatchResult, len(groups))
	failures := make([]bool, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resultFetchLimit)
	for i, grp := range groups {
		g.Go(func() error {
			list, err := f.GroupResults(gctx, grp.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("failed to fetch group results", "group", grp.GroupNumber, "error", err)
				failures[i] = true
			}
			lists[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch results: %w", err)
	}

	results = make(tournament.Results, len(groups))
	for i, grp := range groups {
		if failures[i] {
			failed = append(failed, grp.ID)
			continue
		}
		results[grp.ID] = lists[i]
	}
	return results, failed, nil
}
