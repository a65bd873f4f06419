package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ciet-hostel/gatepass-api/internal/models"
	appErrors "github.com/ciet-hostel/gatepass-api/pkg/errors"
	"github.com/ciet-hostel/gatepass-api/pkg/response"
)

// RequireRoles rejects requests whose authenticated role is not in the
// allowed set. This is the route-level gate; the services enforce the same
// rules again so the contract survives any caller.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
