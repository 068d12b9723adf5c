package middleware

import (
	"errors"
	"net/http"

	"gamecatalog/models"
	"gamecatalog/service"

	"github.com/gin-gonic/gin"
)

// PrincipalKey holds the authenticated user id for request logging only.
// Handlers receive the principal as an argument.
const PrincipalKey = "principal_id"

// PrincipalHandler is a handler that runs on behalf of an authenticated user.
type PrincipalHandler func(c *gin.Context, p *models.Principal)

// RequireUser authenticates the bearer token and hands the principal to next.
func RequireUser(gate *service.Gate, next PrincipalHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := gate.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			abortAuth(c, err)
			return
		}
		c.Set(PrincipalKey, p.ID)
		next(c, p)
	}
}

// RequireAdmin authenticates the bearer token and then requires the admin role.
func RequireAdmin(gate *service.Gate, next PrincipalHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := gate.AuthenticateAdmin(c.GetHeader("Authorization"))
		if err != nil {
			abortAuth(c, err)
			return
		}
		c.Set(PrincipalKey, p.ID)
		next(c, p)
	}
}

func abortAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, service.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
	default:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
}
