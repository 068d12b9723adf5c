package models

import "time"

const (
	ReviewStatusPending  = "review"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"

	MinRank = 1
	MaxRank = 10
)

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_reviews_user_game" json:"user_id"`
	GameID     uint      `gorm:"not null;uniqueIndex:idx_reviews_user_game;index" json:"game_id"`
	Rank       int       `gorm:"not null;check:rank BETWEEN 1 AND 10" json:"rank"`
	ReviewText string    `gorm:"type:text;not null;default:''" json:"review_text"`
	Status     string    `gorm:"size:16;not null;default:review;index;check:status IN ('review','approved','rejected')" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Game       *Game     `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"-"`
}

// ValidReviewStatus reports whether s is a moderation target status.
func ValidReviewStatus(s string) bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

func ValidRank(rank int) bool {
	return rank >= MinRank && rank <= MaxRank
}

// PublicReview is an approved review as shown on a game page.
type PublicReview struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Rank       int       `json:"rank"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
	UserLogin  string    `json:"userLogin"`
}

// PendingReview is a review awaiting moderation, joined for admin triage.
type PendingReview struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	GameID     uint      `json:"game_id"`
	Rank       int       `json:"rank"`
	ReviewText string    `json:"review_text"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UserLogin  string    `json:"userLogin"`
	GameTitle  string    `json:"gameTitle"`
}

// CreateReviewInput - body of POST /reviews/game/:id; review_text must be
// present but may be empty
type CreateReviewInput struct {
	Rank       *int    `json:"rank" validate:"required,gte=1,lte=10"`
	ReviewText *string `json:"review_text" validate:"required"`
}

// UpdateReviewInput - body of PUT /reviews/game/:id/my; nil fields are left untouched
type UpdateReviewInput struct {
	Rank       *int    `json:"rank" validate:"omitempty,gte=1,lte=10"`
	ReviewText *string `json:"review_text"`
}

// ReviewStatusInput - body of PUT /reviews/:id/status
type ReviewStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ModerationResult reports the outcome of a status change.
type ModerationResult struct {
	ReviewID uint    `json:"review_id"`
	Status   string  `json:"status"`
	Changed  bool    `json:"changed"`
	Rating   float64 `json:"rating"`
}
