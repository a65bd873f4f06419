package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ciet-hostel/gatepass-api/internal/middleware"
	"github.com/ciet-hostel/gatepass-api/internal/models"
	"github.com/ciet-hostel/gatepass-api/internal/service"
)

// currentClaims extracts the authenticated JWT claims from the gin context.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

// currentActor converts the authenticated claims into a service actor.
func currentActor(c *gin.Context) (service.Actor, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:        claims.UserID,
		Role:          claims.Role,
		FullName:      claims.FullName,
		StudentNumber: claims.StudentNumber,
	}, true
}
