package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gamecatalog/db/dbtest"
	"gamecatalog/models"
	"gamecatalog/monitoring"
	"gamecatalog/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reviewFixture struct {
	db    *gorm.DB
	svc   ReviewService
	admin *models.Principal
	user  *models.User
	game  *models.Game
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	gdb := dbtest.New(t)
	admin := dbtest.CreateUser(t, gdb, "admin", models.RoleAdmin)
	return &reviewFixture{
		db:    gdb,
		svc:   NewReviewService(repository.NewReviewRepository(gdb), nil, quietLogger()),
		admin: userPrincipal(admin),
		user:  dbtest.CreateUser(t, gdb, "player", models.RoleUser),
		game:  dbtest.CreateGame(t, gdb, models.Game{Name: "Outer Wilds"}),
	}
}

func (f *reviewFixture) review(t *testing.T, login string, rank int, status string) *models.Review {
	t.Helper()
	u := dbtest.CreateUser(t, f.db, login, models.RoleUser)
	return dbtest.CreateReview(t, f.db, u.ID, f.game.ID, rank, status)
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	p := userPrincipal(f.user)

	review, err := f.svc.Create(ctx, p, f.game.ID, models.CreateReviewInput{Rank: intPtr(8), ReviewText: strPtr("good")})
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, models.ReviewStatusPending, review.Status)
	assert.Equal(t, "good", review.ReviewText)

	_, err = f.svc.Create(ctx, p, f.game.ID, models.CreateReviewInput{Rank: intPtr(3), ReviewText: strPtr("")})
	assert.ErrorIs(t, err, ErrConflict)

	own, err := f.svc.GetOwn(ctx, p, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, own.ID)
	assert.Equal(t, 8, own.Rank)

	assert.Zero(t, dbtest.GameRating(t, f.db, f.game.ID))
}

func TestCreateReviewValidation(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	p := userPrincipal(f.user)

	for _, rank := range []*int{nil, intPtr(0), intPtr(11)} {
		_, err := f.svc.Create(ctx, p, f.game.ID, models.CreateReviewInput{Rank: rank, ReviewText: strPtr("")})
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err := f.svc.Create(ctx, p, f.game.ID, models.CreateReviewInput{Rank: intPtr(5)})
	assert.ErrorIs(t, err, ErrValidation, "review_text must be present")

	_, err = f.svc.Create(ctx, p, f.game.ID+99, models.CreateReviewInput{Rank: intPtr(5), ReviewText: strPtr("")})
	assert.ErrorIs(t, err, ErrNotFound)

	ghost := &models.Principal{ID: 4242, Role: models.RoleUser}
	_, err = f.svc.Create(ctx, ghost, f.game.ID, models.CreateReviewInput{Rank: intPtr(5), ReviewText: strPtr("")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Create(ctx, nil, f.game.ID, models.CreateReviewInput{Rank: intPtr(5), ReviewText: strPtr("")})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestConcurrentDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	p := userPrincipal(f.user)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(ctx, p, f.game.ID, models.CreateReviewInput{Rank: intPtr(7), ReviewText: strPtr("")})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, f.db.Model(&models.Review{}).Where("user_id = ? AND game_id = ?", f.user.ID, f.game.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestModerateRecomputesRating(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	r8 := f.review(t, "a", 8, models.ReviewStatusPending)
	r5 := f.review(t, "b", 5, models.ReviewStatusPending)
	f.review(t, "c", 1, models.ReviewStatusRejected)

	res, err := f.svc.Moderate(ctx, f.admin, r8.ID, models.ReviewStatusApproved)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 8.0, res.Rating)
	assert.Equal(t, 8.0, dbtest.GameRating(t, f.db, f.game.ID))

	res, err = f.svc.Moderate(ctx, f.admin, r5.ID, models.ReviewStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 6.5, res.Rating)
	assert.Equal(t, 6.5, dbtest.GameRating(t, f.db, f.game.ID))

	res, err = f.svc.Moderate(ctx, f.admin, r8.ID, models.ReviewStatusRejected)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 5.0, dbtest.GameRating(t, f.db, f.game.ID))

	res, err = f.svc.Moderate(ctx, f.admin, r5.ID, models.ReviewStatusPending)
	require.NoError(t, err)
	assert.Zero(t, res.Rating)
	assert.Zero(t, dbtest.GameRating(t, f.db, f.game.ID))
}

func TestModerateSameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	r := f.review(t, "a", 9, models.ReviewStatusApproved)
	require.NoError(t, f.db.Model(&models.Game{}).Where("id = ?", f.game.ID).Update("rating", 9).Error)

	res, err := f.svc.Moderate(ctx, f.admin, r.ID, models.ReviewStatusApproved)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 9.0, res.Rating)
}

func TestModerateRejectsBogusStatus(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	r := f.review(t, "a", 4, models.ReviewStatusApproved)

	_, err := f.svc.Moderate(ctx, f.admin, r.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.ErrorIs(t, err, ErrValidation)

	var stored models.Review
	require.NoError(t, f.db.First(&stored, r.ID).Error)
	assert.Equal(t, models.ReviewStatusApproved, stored.Status)

	_, err = f.svc.Moderate(ctx, f.admin, r.ID+100, models.ReviewStatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Moderate(ctx, userPrincipal(f.user), r.ID, models.ReviewStatusRejected)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateResetsApprovedReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	p := userPrincipal(f.user)

	created, err := f.svc.Create(ctx, p, f.game.ID, models.CreateReviewInput{Rank: intPtr(10), ReviewText: strPtr("perfect")})
	require.NoError(t, err)
	f.review(t, "other", 6, models.ReviewStatusApproved)

	_, err = f.svc.Moderate(ctx, f.admin, created.ID, models.ReviewStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 8.0, dbtest.GameRating(t, f.db, f.game.ID))

	updated, err := f.svc.Update(ctx, p, f.game.ID, models.UpdateReviewInput{ReviewText: strPtr("still great")})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusPending, updated.Status)
	assert.Equal(t, 10, updated.Rank)
	assert.Equal(t, "still great", updated.ReviewText)
	assert.Equal(t, 6.0, dbtest.GameRating(t, f.db, f.game.ID))

	updated, err = f.svc.Update(ctx, p, f.game.ID, models.UpdateReviewInput{Rank: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rank)
	assert.Equal(t, "still great", updated.ReviewText)
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	p := userPrincipal(f.user)

	_, err := f.svc.Update(ctx, p, f.game.ID, models.UpdateReviewInput{Rank: intPtr(5)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Create(ctx, p, f.game.ID, models.CreateReviewInput{Rank: intPtr(5), ReviewText: strPtr("")})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, p, f.game.ID, models.UpdateReviewInput{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Update(ctx, p, f.game.ID, models.UpdateReviewInput{Rank: intPtr(42)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	approved := f.review(t, "a", 9, models.ReviewStatusApproved)
	f.review(t, "b", 3, models.ReviewStatusApproved)
	_, err := f.svc.RecomputeAllRatings(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, dbtest.GameRating(t, f.db, f.game.ID))

	require.NoError(t, f.svc.Delete(ctx, f.admin, approved.ID))
	assert.Equal(t, 3.0, dbtest.GameRating(t, f.db, f.game.ID))

	assert.ErrorIs(t, f.svc.Delete(ctx, f.admin, approved.ID), ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, userPrincipal(f.user), approved.ID), ErrForbidden)
}

func TestReviewListings(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	f.review(t, "a", 9, models.ReviewStatusApproved)
	f.review(t, "b", 3, models.ReviewStatusPending)
	f.review(t, "c", 5, models.ReviewStatusRejected)

	approved, err := f.svc.ListApprovedForGame(ctx, f.game.ID)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "a", approved[0].UserLogin)

	pending, err := f.svc.ListPending(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].UserLogin)
	assert.Equal(t, "Outer Wilds", pending[0].GameTitle)

	_, err = f.svc.ListPending(ctx, userPrincipal(f.user))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetOwn(ctx, userPrincipal(f.user), f.game.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeAllRatings(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	second := dbtest.CreateGame(t, f.db, models.Game{Name: "Hades"})
	f.review(t, "a", 7, models.ReviewStatusApproved)
	f.review(t, "b", 9, models.ReviewStatusApproved)
	u := dbtest.CreateUser(t, f.db, "c", models.RoleUser)
	dbtest.CreateReview(t, f.db, u.ID, second.ID, 4, models.ReviewStatusApproved)

	n, err := f.svc.RecomputeAllRatings(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 8.0, dbtest.GameRating(t, f.db, f.game.ID))
	assert.Equal(t, 4.0, dbtest.GameRating(t, f.db, second.ID))
}

var errCommit = errors.New("commit failed")

// failingCommitRepo runs each transaction body and then rolls it back.
type failingCommitRepo struct {
	repository.ReviewRepository
}

func (r failingCommitRepo) Transaction(ctx context.Context, fn func(tx repository.ReviewRepository) error) error {
	return r.ReviewRepository.Transaction(ctx, func(tx repository.ReviewRepository) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errCommit
	})
}

func ratingObservations(t *testing.T, reg *prometheus.Registry) uint64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "game_rating_recomputed" {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	return 0
}

func TestRatingObservedOnlyAfterCommit(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	repo := repository.NewReviewRepository(f.db)
	r := f.review(t, "a", 7, models.ReviewStatusPending)

	rolledBack := NewReviewService(failingCommitRepo{repo}, metrics, quietLogger())
	_, err := rolledBack.Moderate(ctx, f.admin, r.ID, models.ReviewStatusApproved)
	require.ErrorIs(t, err, errCommit)
	assert.Zero(t, ratingObservations(t, reg))
	assert.Zero(t, dbtest.GameRating(t, f.db, f.game.ID))

	var stored models.Review
	require.NoError(t, f.db.First(&stored, r.ID).Error)
	assert.Equal(t, models.ReviewStatusPending, stored.Status)

	svc := NewReviewService(repo, metrics, quietLogger())
	res, err := svc.Moderate(ctx, f.admin, r.ID, models.ReviewStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.Rating)
	assert.Equal(t, uint64(1), ratingObservations(t, reg))

	assert.ErrorIs(t, rolledBack.Delete(ctx, f.admin, r.ID), errCommit)
	assert.Equal(t, uint64(1), ratingObservations(t, reg))

	require.NoError(t, svc.Delete(ctx, f.admin, r.ID))
	assert.Equal(t, uint64(2), ratingObservations(t, reg))
}
