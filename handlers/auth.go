package handlers

import (
	"net/http"

	"gamecatalog/models"
	"gamecatalog/service"
	"gamecatalog/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func bindCredentials(c *gin.Context) (models.CredentialsInput, bool) {
	var input models.CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Login and password are required"})
		return input, false
	}
	if err := utils.ValidateStruct(input); err != nil {
		utils.ValidationErrorResponse(c, err)
		return input, false
	}
	return input, true
}

// Register - POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	input, ok := bindCredentials(c)
	if !ok {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input.Login, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"id":      user.ID,
		"login":   user.Login,
	})
}

// Login - POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	input, ok := bindCredentials(c)
	if !ok {
		return
	}

	token, err := h.auth.Login(c.Request.Context(), input.Login, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
