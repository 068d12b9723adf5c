package handlers

import (
	"net/http"

	"gamecatalog/models"
	"gamecatalog/service"
	"gamecatalog/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews service.ReviewService
}

func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// bindJSON decodes and validates the body; false means a 400 was written.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		utils.ValidationErrorResponse(c, err)
		return false
	}
	return true
}

// CreateReview - POST /reviews/game/:id
func (h *ReviewHandler) CreateReview(c *gin.Context, p *models.Principal) {
	gameID, ok := pathID(c)
	if !ok {
		return
	}
	var input models.CreateReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), p, gameID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted for moderation", "review": review})
}

// GetApprovedReviews - GET /reviews/game/:id
func (h *ReviewHandler) GetApprovedReviews(c *gin.Context) {
	gameID, ok := pathID(c)
	if !ok {
		return
	}

	reviews, err := h.reviews.ListApprovedForGame(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GetMyReview - GET /reviews/game/:id/my
func (h *ReviewHandler) GetMyReview(c *gin.Context, p *models.Principal) {
	gameID, ok := pathID(c)
	if !ok {
		return
	}

	review, err := h.reviews.GetOwn(c.Request.Context(), p, gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// UpdateMyReview - PUT /reviews/game/:id/my
func (h *ReviewHandler) UpdateMyReview(c *gin.Context, p *models.Principal) {
	gameID, ok := pathID(c)
	if !ok {
		return
	}
	var input models.UpdateReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), p, gameID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review updated and sent for moderation", "review": review})
}

// GetPendingReviews - GET /reviews (admin)
func (h *ReviewHandler) GetPendingReviews(c *gin.Context, p *models.Principal) {
	reviews, err := h.reviews.ListPending(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// SetReviewStatus - PUT /reviews/:id/status (admin)
func (h *ReviewHandler) SetReviewStatus(c *gin.Context, p *models.Principal) {
	reviewID, ok := pathID(c)
	if !ok {
		return
	}
	var input models.ReviewStatusInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.reviews.Moderate(c.Request.Context(), p, reviewID, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Review status updated"
	if !result.Changed {
		message = "Review status unchanged"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"result":  result,
	})
}

// DeleteReview - DELETE /reviews/:id (admin)
func (h *ReviewHandler) DeleteReview(c *gin.Context, p *models.Principal) {
	reviewID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), p, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
