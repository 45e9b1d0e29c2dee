package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-hub-api/internal/models"
	"github.com/noah-isme/thesis-hub-api/internal/service"
	"github.com/noah-isme/thesis-hub-api/pkg/middleware/requestid"
)

// Audit records a trail entry after successful requests on sensitive routes.
// Failed requests are skipped here; denials are recorded by the RBAC layer.
func Audit(audit *service.AuditService, action, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var actorID *string
		if claims, ok := c.Get(ContextPrincipalKey); ok {
			principal := claims.(*models.JWTClaims)
			actorID = &principal.PrincipalID
		}

		var entityID *string
		if id := c.Param("id"); id != "" {
			entityID = &id
		}

		metadata, _ := json.Marshal(map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"request_id": requestid.FromContext(c.Request.Context()),
		})

		audit.Record(c.Request.Context(), &models.AuditRecord{
			ActorID:     actorID,
			Action:      action,
			EntityType:  entityType,
			EntityID:    entityID,
			Severity:    models.AuditInfo,
			Description: "request completed",
			Metadata:    metadata,
		})
	}
}
