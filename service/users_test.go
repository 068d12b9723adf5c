package service

import (
	"context"
	"testing"

	"gamecatalog/db/dbtest"
	"gamecatalog/models"
	"gamecatalog/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	users := repository.NewUserRepository(gdb)
	svc := NewUserService(users, repository.NewStatsRepository(gdb), quietLogger())
	admin := userPrincipal(dbtest.CreateUser(t, gdb, "admin", models.RoleAdmin))
	player := dbtest.CreateUser(t, gdb, "player", models.RoleUser)

	require.NoError(t, svc.SetStatus(ctx, admin, player.ID, models.UserStatusBlocked))
	stored, err := users.FindByID(ctx, player.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBlocked())

	assert.ErrorIs(t, svc.SetStatus(ctx, admin, player.ID, "banned"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.SetStatus(ctx, admin, player.ID+100, models.UserStatusActive), ErrNotFound)
	assert.ErrorIs(t, svc.SetStatus(ctx, userPrincipal(player), player.ID, models.UserStatusActive), ErrForbidden)

	all, err := svc.ListAll(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListAll(ctx, userPrincipal(player))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	svc := NewUserService(repository.NewUserRepository(gdb), repository.NewStatsRepository(gdb), quietLogger())
	admin := dbtest.CreateUser(t, gdb, "admin", models.RoleAdmin)
	blocked := dbtest.CreateUser(t, gdb, "blocked", models.RoleUser)
	require.NoError(t, gdb.Model(blocked).Update("status", models.UserStatusBlocked).Error)
	g1 := dbtest.CreateGame(t, gdb, models.Game{Name: "A", Rating: 8})
	dbtest.CreateGame(t, gdb, models.Game{Name: "B", Rating: 4})
	dbtest.CreateReview(t, gdb, admin.ID, g1.ID, 8, models.ReviewStatusApproved)
	dbtest.CreateReview(t, gdb, blocked.ID, g1.ID, 2, models.ReviewStatusPending)

	stats, err := svc.DashboardStats(ctx, userPrincipal(admin))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.BlockedUsers)
	assert.Equal(t, int64(2), stats.TotalGames)
	assert.Equal(t, int64(1), stats.PendingReviews)
	assert.Equal(t, int64(1), stats.ApprovedReviews)
	assert.Zero(t, stats.RejectedReviews)
	assert.Equal(t, 6.0, stats.AverageGameScore)

	_, err = svc.DashboardStats(ctx, userPrincipal(blocked))
	assert.ErrorIs(t, err, ErrForbidden)
}
