// Package concurrent holds the fan-out helpers used by admin tooling: the
// dashboard statistics and the bulk rating rebuild.
package concurrent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gamecatalog/models"
	"gamecatalog/repository"

	"golang.org/x/sync/errgroup"
)

const statsTimeout = 10 * time.Second

// CalculateDashboardStats runs each aggregate query in its own goroutine.
// The first failure cancels the rest.
func CalculateDashboardStats(ctx context.Context, repo repository.StatsRepository) (*models.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	stats := &models.DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&stats.TotalUsers, func(ctx context.Context) (int64, error) { return repo.CountUsers(ctx, "") })
	count(&stats.ActiveUsers, func(ctx context.Context) (int64, error) {
		return repo.CountUsers(ctx, models.UserStatusActive)
	})
	count(&stats.BlockedUsers, func(ctx context.Context) (int64, error) {
		return repo.CountUsers(ctx, models.UserStatusBlocked)
	})
	count(&stats.TotalGames, repo.CountGames)
	count(&stats.PendingReviews, func(ctx context.Context) (int64, error) {
		return repo.CountReviews(ctx, models.ReviewStatusPending)
	})
	count(&stats.ApprovedReviews, func(ctx context.Context) (int64, error) {
		return repo.CountReviews(ctx, models.ReviewStatusApproved)
	})
	count(&stats.RejectedReviews, func(ctx context.Context) (int64, error) {
		return repo.CountReviews(ctx, models.ReviewStatusRejected)
	})
	g.Go(func() error {
		avg, err := repo.AverageGameRating(ctx)
		if err != nil {
			return err
		}
		stats.AverageGameScore = avg
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to calculate dashboard stats: %w", err)
	}
	return stats, nil
}

// JobResult is the outcome of one job handed to ProcessInPool.
type JobResult struct {
	ID    uint
	Value float64
	Err   error
}

// ProcessInPool feeds ids to a fixed number of workers and collects one
// result per id. Results arrive in completion order. Jobs not yet started
// when ctx is cancelled report ctx.Err().
func ProcessInPool(ctx context.Context, ids []uint, numWorkers int, fn func(ctx context.Context, id uint) (float64, error)) []JobResult {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	jobs := make(chan uint, len(ids))
	results := make(chan JobResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := ctx.Err(); err != nil {
					results <- JobResult{ID: id, Err: err}
					continue
				}
				v, err := fn(ctx, id)
				results <- JobResult{ID: id, Value: v, Err: err}
			}
		}()
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]JobResult, 0, len(ids))
	for r := range results {
		all = append(all, r)
	}
	return all
}
