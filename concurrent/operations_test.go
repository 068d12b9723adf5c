package concurrent

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"

	"gamecatalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	users    map[string]int64
	reviews  map[string]int64
	games    int64
	avg      float64
	gamesErr error
}

func (f *fakeStats) CountUsers(_ context.Context, status string) (int64, error) {
	return f.users[status], nil
}

func (f *fakeStats) CountGames(context.Context) (int64, error) { return f.games, f.gamesErr }

func (f *fakeStats) CountReviews(_ context.Context, status string) (int64, error) {
	return f.reviews[status], nil
}

func (f *fakeStats) AverageGameRating(context.Context) (float64, error) { return f.avg, nil }

func TestCalculateDashboardStats(t *testing.T) {
	repo := &fakeStats{
		users: map[string]int64{"": 10, models.UserStatusActive: 8, models.UserStatusBlocked: 2},
		reviews: map[string]int64{
			models.ReviewStatusPending:  4,
			models.ReviewStatusApproved: 7,
			models.ReviewStatusRejected: 1,
		},
		games: 12,
		avg:   6.25,
	}

	stats, err := CalculateDashboardStats(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{
		TotalUsers:       10,
		ActiveUsers:      8,
		BlockedUsers:     2,
		TotalGames:       12,
		PendingReviews:   4,
		ApprovedReviews:  7,
		RejectedReviews:  1,
		AverageGameScore: 6.25,
	}, *stats)
}

func TestCalculateDashboardStatsPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := CalculateDashboardStats(context.Background(), &fakeStats{gamesErr: boom})
	assert.ErrorIs(t, err, boom)
}

func TestProcessInPool(t *testing.T) {
	ids := []uint{1, 2, 3, 4, 5, 6, 7}
	var calls int32
	results := ProcessInPool(context.Background(), ids, 3, func(_ context.Context, id uint) (float64, error) {
		atomic.AddInt32(&calls, 1)
		if id == 4 {
			return 0, errors.New("bad game")
		}
		return float64(id) * 2, nil
	})

	require.Len(t, results, len(ids))
	assert.EqualValues(t, len(ids), atomic.LoadInt32(&calls))
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	for _, r := range results {
		if r.ID == 4 {
			assert.Error(t, r.Err)
			continue
		}
		assert.NoError(t, r.Err)
		assert.Equal(t, float64(r.ID)*2, r.Value)
	}
}

func TestProcessInPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ProcessInPool(ctx, []uint{1, 2, 3}, 0, func(context.Context, uint) (float64, error) {
		t.Error("job ran after cancellation")
		return 0, nil
	})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
