package repository

import (
	"context"
	"fmt"

	"gamecatalog/models"

	"gorm.io/gorm"
)

// StatsRepository exposes the aggregate queries behind the admin dashboard.
// Each method is a single independent statement.
type StatsRepository interface {
	CountUsers(ctx context.Context, status string) (int64, error)
	CountGames(ctx context.Context) (int64, error)
	CountReviews(ctx context.Context, status string) (int64, error)
	AverageGameRating(ctx context.Context) (float64, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// CountUsers counts users with the given status, or all users when status is empty.
func (r *statsRepository) CountUsers(ctx context.Context, status string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("users count: %w", err)
	}
	return n, nil
}

func (r *statsRepository) CountGames(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("games count: %w", err)
	}
	return n, nil
}

func (r *statsRepository) CountReviews(ctx context.Context, status string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("reviews count (%s): %w", status, err)
	}
	return n, nil
}

func (r *statsRepository) AverageGameRating(ctx context.Context) (float64, error) {
	var avg struct{ Avg *float64 }
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Select("AVG(rating) AS avg").Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	if avg.Avg == nil {
		return 0, nil
	}
	return *avg.Avg, nil
}
