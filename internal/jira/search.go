package jira

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lotas/ticketdeck/internal/applog"
	"github.com/lotas/ticketdeck/internal/types"
)

// PageOffsets returns the startAt values 0, size, 2*size, ... below total.
func PageOffsets(total, size int) []int {
	if total <= 0 || size <= 0 {
		return nil
	}
	offsets := make([]int, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		offsets = append(offsets, start)
	}
	return offsets
}

// Search runs jql and returns every matching issue.
//
// A probe with maxResults=1 reads the total. Pages are then fetched by up
// to workers goroutines at a time, each admitted by the governor. A page
// answered with an error status or an undecodable body is logged and
// contributes nothing. A failed probe, a transport failure on any page or a
// cancelled ctx fails the whole search. Order across pages is not stable.
func (c *Client) Search(ctx context.Context, jql string, workers int) ([]types.Ticket, error) {
	probe, err := c.searchPage(ctx, jql, 0, 1)
	if err != nil {
		applog.Error("jira.search.probe", err, "jql", jql)
		return nil, err
	}
	offsets := PageOffsets(probe.Total, c.pageSize)
	applog.Info("jira.search.probe", "jql", jql, "total", probe.Total, "pages", len(offsets))

	workers = max(1, min(workers, c.gov.Capacity()))

	var (
		mu     sync.Mutex
		issues = make([]types.Ticket, 0, probe.Total)
	)
	for batch := 0; batch < len(offsets); batch += workers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(batch+workers, len(offsets))

		g, gctx := errgroup.WithContext(ctx)
		for _, startAt := range offsets[batch:end] {
			g.Go(func() error {
				return c.gov.Do(gctx, func() error {
					page, err := c.searchPage(gctx, jql, startAt, c.pageSize)
					if err != nil {
						applog.Error("jira.search.page", err, "startAt", startAt)
						if errors.Is(err, ErrOffline) || gctx.Err() != nil {
							return err
						}
						return nil
					}
					mu.Lock()
					for _, ij := range page.Issues {
						issues = append(issues, ij.ticket())
					}
					mu.Unlock()
					return nil
				})
			})
		}
		if err := g.Wait(); err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	applog.Info("jira.search.done", "jql", jql, "issues", len(issues))
	return issues, nil
}
