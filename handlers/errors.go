package handlers

import (
	"errors"
	"net/http"

	"gamecatalog/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Unexpected errors are
// attached to the context for the request logger and the client only sees a
// generic message.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, message = http.StatusBadRequest, "Invalid input"
	case errors.Is(err, service.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid login or password"
	case errors.Is(err, service.ErrInvalidToken):
		status, message = http.StatusForbidden, "Invalid or expired token"
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, "Access denied"
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrConflict):
		status, message = http.StatusConflict, "Conflict"
	default:
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}
	c.JSON(status, gin.H{"error": message})
}

// pathID parses the :id route parameter; false means a 400 was written.
func pathID(c *gin.Context) (uint, bool) {
	id, err := service.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	return id, true
}
