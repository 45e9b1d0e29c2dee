package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID between services.
const Header = "X-Request-ID"

const ginContextKey = "request_id"

type contextKey struct{}

// maxInboundLength caps IDs accepted from callers; anything longer is
// replaced so log fields stay bounded.
const maxInboundLength = 64

// Middleware assigns each request an ID, honoring a sane inbound header so
// IDs propagate across service hops. The ID is exposed on the response
// header, the gin context, and the request's context.Context.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(Header)
		if reqID == "" || len(reqID) > maxInboundLength {
			reqID = uuid.NewString()
		}

		c.Set(ginContextKey, reqID)
		c.Writer.Header().Set(Header, reqID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), contextKey{}, reqID))

		c.Next()
	}
}

// Value returns the request ID stored in the gin context.
func Value(c *gin.Context) string {
	if v, exists := c.Get(ginContextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// FromContext returns the request ID carried on a context.Context, for code
// below the HTTP layer.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
