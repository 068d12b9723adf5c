package repository

import (
	"context"
	"fmt"

	"gamecatalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository defines review persistence. Methods called on the
// repository handed to Transaction run inside that transaction.
type ReviewRepository interface {
	Transaction(ctx context.Context, fn func(tx ReviewRepository) error) error

	// LockGame takes a row lock on the game so rating updates for the same
	// game are serialized.
	LockGame(ctx context.Context, gameID uint) (*models.Game, error)
	UserExists(ctx context.Context, userID uint) (bool, error)

	FindByID(ctx context.Context, id uint) (*models.Review, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Review, error)
	FindByUserAndGame(ctx context.Context, userID, gameID uint) (*models.Review, error)
	FindByUserAndGameForUpdate(ctx context.Context, userID, gameID uint) (*models.Review, error)

	Create(ctx context.Context, review *models.Review) error
	Save(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error

	ListApprovedByGame(ctx context.Context, gameID uint) ([]models.PublicReview, error)
	ListPending(ctx context.Context) ([]models.PendingReview, error)

	// RecomputeGameRating stores the mean rank of approved reviews (0 if
	// none) on the game and returns it.
	RecomputeGameRating(ctx context.Context, gameID uint) (float64, error)
	ListGameIDs(ctx context.Context) ([]uint, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository instance.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Transaction(ctx context.Context, fn func(tx ReviewRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&reviewRepository{db: tx})
	})
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

func (r *reviewRepository) LockGame(ctx context.Context, gameID uint) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).Clauses(forUpdate()).First(&game, gameID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock game %d: %w", gameID, translateError(err))
	}
	return &game, nil
}

func (r *reviewRepository) UserExists(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	return count > 0, nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id), fmt.Sprintf("id %d", id))
}

func (r *reviewRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Review, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(forUpdate()).Where("id = ?", id), fmt.Sprintf("id %d", id))
}

func (r *reviewRepository) FindByUserAndGame(ctx context.Context, userID, gameID uint) (*models.Review, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND game_id = ?", userID, gameID)
	return r.findOne(q, fmt.Sprintf("user %d game %d", userID, gameID))
}

func (r *reviewRepository) FindByUserAndGameForUpdate(ctx context.Context, userID, gameID uint) (*models.Review, error) {
	q := r.db.WithContext(ctx).Clauses(forUpdate()).Where("user_id = ? AND game_id = ?", userID, gameID)
	return r.findOne(q, fmt.Sprintf("user %d game %d", userID, gameID))
}

func (r *reviewRepository) findOne(q *gorm.DB, what string) (*models.Review, error) {
	var review models.Review
	if err := q.First(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to find review %s: %w", what, translateError(err))
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", translateError(err))
	}
	return nil
}

func (r *reviewRepository) Save(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).
		Model(&models.Review{ID: review.ID}).
		Updates(map[string]interface{}{
			"rank":        review.Rank,
			"review_text": review.ReviewText,
			"status":      review.Status,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update review %d: %w", review.ID, translateError(err))
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *reviewRepository) ListApprovedByGame(ctx context.Context, gameID uint) ([]models.PublicReview, error) {
	reviews := []models.PublicReview{}
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.id, reviews.user_id, reviews.rank, reviews.review_text, reviews.created_at, users.login AS user_login").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.game_id = ? AND reviews.status = ?", gameID, models.ReviewStatusApproved).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list approved reviews for game %d: %w", gameID, err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListPending(ctx context.Context) ([]models.PendingReview, error) {
	reviews := []models.PendingReview{}
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.id, reviews.user_id, reviews.game_id, reviews.rank, reviews.review_text, " +
			"reviews.status, reviews.created_at, users.login AS user_login, games.name AS game_title").
		Joins("JOIN users ON users.id = reviews.user_id").
		Joins("JOIN games ON games.id = reviews.game_id").
		Where("reviews.status = ?", models.ReviewStatusPending).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) RecomputeGameRating(ctx context.Context, gameID uint) (float64, error) {
	var avg struct{ Avg *float64 }
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("AVG(rank) AS avg").
		Where("game_id = ? AND status = ?", gameID, models.ReviewStatusApproved).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to average ranks for game %d: %w", gameID, err)
	}

	rating := 0.0
	if avg.Avg != nil {
		rating = *avg.Avg
	}
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", gameID).Update("rating", rating).Error; err != nil {
		return 0, fmt.Errorf("failed to store rating for game %d: %w", gameID, err)
	}
	return rating, nil
}

func (r *reviewRepository) ListGameIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list game ids: %w", err)
	}
	return ids, nil
}
