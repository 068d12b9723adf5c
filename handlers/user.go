package handlers

import (
	"net/http"

	"gamecatalog/models"
	"gamecatalog/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetUsers - GET /users (admin)
func (h *UserHandler) GetUsers(c *gin.Context, p *models.Principal) {
	users, err := h.users.ListAll(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// SetUserStatus - PUT /users/:id (admin)
func (h *UserHandler) SetUserStatus(c *gin.Context, p *models.Principal) {
	userID, ok := pathID(c)
	if !ok {
		return
	}
	var input models.UserStatusInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.users.SetStatus(c.Request.Context(), p, userID, input.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User status updated"})
}

// GetDashboardStats - GET /admin/stats (admin)
func (h *UserHandler) GetDashboardStats(c *gin.Context, p *models.Principal) {
	stats, err := h.users.DashboardStats(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
