package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-hub-api/internal/middleware"
	"github.com/noah-isme/thesis-hub-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.PrincipalID
	}
	return ""
}
