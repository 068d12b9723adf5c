package service

import (
	"context"
	"errors"
	"fmt"

	"gamecatalog/concurrent"
	"gamecatalog/models"
	"gamecatalog/monitoring"
	"gamecatalog/repository"

	"github.com/sirupsen/logrus"
)

// ReviewService runs the review moderation workflow. Every mutation is one
// transaction that locks the game row before the review row, and recomputes
// the game rating whenever a review enters or leaves the approved state.
type ReviewService interface {
	Create(ctx context.Context, p *models.Principal, gameID uint, in models.CreateReviewInput) (*models.Review, error)
	Update(ctx context.Context, p *models.Principal, gameID uint, in models.UpdateReviewInput) (*models.Review, error)
	Moderate(ctx context.Context, p *models.Principal, reviewID uint, status string) (*models.ModerationResult, error)
	Delete(ctx context.Context, p *models.Principal, reviewID uint) error

	ListApprovedForGame(ctx context.Context, gameID uint) ([]models.PublicReview, error)
	ListPending(ctx context.Context, p *models.Principal) ([]models.PendingReview, error)
	GetOwn(ctx context.Context, p *models.Principal, gameID uint) (*models.Review, error)

	// RecomputeAllRatings rebuilds every game rating from approved reviews.
	RecomputeAllRatings(ctx context.Context, workers int) (int, error)
}

type reviewService struct {
	reviews repository.ReviewRepository
	metrics *monitoring.Metrics
	log     logrus.FieldLogger
}

func NewReviewService(reviews repository.ReviewRepository, metrics *monitoring.Metrics, log logrus.FieldLogger) ReviewService {
	return &reviewService{reviews: reviews, metrics: metrics, log: log}
}

func requireUser(p *models.Principal) error {
	if p == nil || p.ID == 0 {
		return ErrUnauthenticated
	}
	return nil
}

// notFound maps a repository miss to ErrNotFound with msg for the client.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "%s", msg)
	}
	return err
}

// ratingRecomputed records a recomputed rating. Call it only once the
// transaction that stored the rating has committed.
func (s *reviewService) ratingRecomputed(gameID uint, rating float64) {
	s.metrics.RatingRecomputed(rating)
	s.log.WithFields(logrus.Fields{"game_id": gameID, "rating": rating}).Debug("Game rating recomputed")
}

func (s *reviewService) Create(ctx context.Context, p *models.Principal, gameID uint, in models.CreateReviewInput) (*models.Review, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if in.Rank == nil {
		return nil, validationError("Rank is required")
	}
	if !models.ValidRank(*in.Rank) {
		return nil, validationError("Rank must be between %d and %d", models.MinRank, models.MaxRank)
	}

	if in.ReviewText == nil {
		return nil, validationError("review_text is required")
	}

	review := &models.Review{
		UserID:     p.ID,
		GameID:     gameID,
		Rank:       *in.Rank,
		ReviewText: *in.ReviewText,
		Status:     models.ReviewStatusPending,
	}

	err := s.reviews.Transaction(ctx, func(tx repository.ReviewRepository) error {
		if _, err := tx.LockGame(ctx, gameID); err != nil {
			return notFound(err, "Game not found")
		}
		exists, err := tx.UserExists(ctx, p.ID)
		if err != nil {
			return err
		}
		if !exists {
			return newError(ErrNotFound, "User not found")
		}

		if _, err := tx.FindByUserAndGame(ctx, p.ID, gameID); err == nil {
			return newError(ErrConflict, "Review already exists")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := tx.Create(ctx, review); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return newError(ErrConflict, "Review already exists")
			case errors.Is(err, repository.ErrMissingReference):
				return newError(ErrNotFound, "User or game not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReviewSubmitted("create")
	s.log.WithFields(logrus.Fields{
		"review_id": review.ID,
		"user_id":   review.UserID,
		"game_id":   review.GameID,
	}).Info("Review submitted")
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, p *models.Principal, gameID uint, in models.UpdateReviewInput) (*models.Review, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	if in.Rank == nil && in.ReviewText == nil {
		return nil, validationError("Nothing to update: supply rank or review_text")
	}
	if in.Rank != nil && !models.ValidRank(*in.Rank) {
		return nil, validationError("Rank must be between %d and %d", models.MinRank, models.MaxRank)
	}

	var (
		review     *models.Review
		recomputed bool
		rating     float64
	)
	err := s.reviews.Transaction(ctx, func(tx repository.ReviewRepository) error {
		recomputed = false
		if _, err := tx.LockGame(ctx, gameID); err != nil {
			return notFound(err, "Review not found")
		}
		var err error
		review, err = tx.FindByUserAndGameForUpdate(ctx, p.ID, gameID)
		if err != nil {
			return notFound(err, "Review not found")
		}

		wasApproved := review.Status == models.ReviewStatusApproved
		if in.Rank != nil {
			review.Rank = *in.Rank
		}
		if in.ReviewText != nil {
			review.ReviewText = *in.ReviewText
		}
		review.Status = models.ReviewStatusPending

		if err := tx.Save(ctx, review); err != nil {
			return err
		}
		if wasApproved {
			if rating, err = tx.RecomputeGameRating(ctx, gameID); err != nil {
				return err
			}
			recomputed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if recomputed {
		s.ratingRecomputed(gameID, rating)
	}
	s.metrics.ReviewSubmitted("update")
	s.log.WithFields(logrus.Fields{
		"review_id": review.ID,
		"user_id":   review.UserID,
		"game_id":   review.GameID,
	}).Info("Review resubmitted for moderation")
	return review, nil
}

// lockReview locks the game owning reviewID and then the review itself.
func lockReview(ctx context.Context, tx repository.ReviewRepository, reviewID uint) (*models.Game, *models.Review, error) {
	current, err := tx.FindByID(ctx, reviewID)
	if err != nil {
		return nil, nil, notFound(err, "Review not found")
	}
	game, err := tx.LockGame(ctx, current.GameID)
	if err != nil {
		return nil, nil, notFound(err, "Review not found")
	}
	// Re-read under lock: the review may have changed or vanished meanwhile.
	review, err := tx.FindByIDForUpdate(ctx, reviewID)
	if err != nil {
		return nil, nil, notFound(err, "Review not found")
	}
	return game, review, nil
}

func (s *reviewService) Moderate(ctx context.Context, p *models.Principal, reviewID uint, status string) (*models.ModerationResult, error) {
	if err := AuthorizeAdmin(p); err != nil {
		return nil, err
	}
	if !models.ValidReviewStatus(status) {
		return nil, newError(ErrInvalidStatus, "Invalid status %q", status)
	}

	result := &models.ModerationResult{ReviewID: reviewID, Status: status}
	var (
		gameID     uint
		recomputed bool
	)
	err := s.reviews.Transaction(ctx, func(tx repository.ReviewRepository) error {
		result.Changed, recomputed = false, false
		game, review, err := lockReview(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		result.Rating = game.Rating
		if review.Status == status {
			return nil
		}

		affectsRating := review.Status == models.ReviewStatusApproved || status == models.ReviewStatusApproved
		review.Status = status
		if err := tx.Save(ctx, review); err != nil {
			return err
		}
		result.Changed = true

		if affectsRating {
			if result.Rating, err = tx.RecomputeGameRating(ctx, review.GameID); err != nil {
				return err
			}
			gameID, recomputed = review.GameID, true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if recomputed {
		s.ratingRecomputed(gameID, result.Rating)
	}
	s.metrics.ReviewModerated(status, result.Changed)
	s.log.WithFields(logrus.Fields{
		"review_id": reviewID,
		"status":    status,
		"changed":   result.Changed,
		"admin_id":  p.ID,
	}).Info("Review moderated")
	return result, nil
}

func (s *reviewService) Delete(ctx context.Context, p *models.Principal, reviewID uint) error {
	if err := AuthorizeAdmin(p); err != nil {
		return err
	}

	var (
		gameID     uint
		rating     float64
		recomputed bool
	)
	err := s.reviews.Transaction(ctx, func(tx repository.ReviewRepository) error {
		recomputed = false
		_, review, err := lockReview(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if err := tx.Delete(ctx, review.ID); err != nil {
			return notFound(err, "Review not found")
		}
		if review.Status == models.ReviewStatusApproved {
			if rating, err = tx.RecomputeGameRating(ctx, review.GameID); err != nil {
				return err
			}
			gameID, recomputed = review.GameID, true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if recomputed {
		s.ratingRecomputed(gameID, rating)
	}

	s.log.WithFields(logrus.Fields{"review_id": reviewID, "admin_id": p.ID}).Info("Review deleted")
	return nil
}

func (s *reviewService) ListApprovedForGame(ctx context.Context, gameID uint) ([]models.PublicReview, error) {
	return s.reviews.ListApprovedByGame(ctx, gameID)
}

func (s *reviewService) ListPending(ctx context.Context, p *models.Principal) ([]models.PendingReview, error) {
	if err := AuthorizeAdmin(p); err != nil {
		return nil, err
	}
	return s.reviews.ListPending(ctx)
}

func (s *reviewService) GetOwn(ctx context.Context, p *models.Principal, gameID uint) (*models.Review, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	review, err := s.reviews.FindByUserAndGame(ctx, p.ID, gameID)
	if err != nil {
		return nil, notFound(err, "Review not found")
	}
	return review, nil
}

func (s *reviewService) RecomputeAllRatings(ctx context.Context, workers int) (int, error) {
	ids, err := s.reviews.ListGameIDs(ctx)
	if err != nil {
		return 0, err
	}

	results := concurrent.ProcessInPool(ctx, ids, workers, func(ctx context.Context, gameID uint) (float64, error) {
		var rating float64
		err := s.reviews.Transaction(ctx, func(tx repository.ReviewRepository) error {
			if _, err := tx.LockGame(ctx, gameID); err != nil {
				return err
			}
			var err error
			rating, err = tx.RecomputeGameRating(ctx, gameID)
			return err
		})
		if err != nil {
			return 0, err
		}
		s.ratingRecomputed(gameID, rating)
		return rating, nil
	})

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("game %d: %w", r.ID, r.Err))
		}
	}
	updated := len(results) - len(errs)
	s.log.WithFields(logrus.Fields{"games": updated, "failed": len(errs)}).Info("Ratings recomputed")
	return updated, errors.Join(errs...)
}
