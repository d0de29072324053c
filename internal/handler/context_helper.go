package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ait-ops/cmms-api/internal/middleware"
	"github.com/ait-ops/cmms-api/internal/models"
)

// claimsFromContext reads the JWT claims the auth middleware stored.
// A nil return means the route ran without authentication, which handlers
// treat as unauthorized rather than panicking on the type assertion.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	if claims, ok := value.(*models.JWTClaims); ok {
		return claims
	}
	return nil
}
