package middleware

import (
	"cotdex/domain/core"

	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "requestID"

// RequestID tags every request with an ID. A well-formed caller-supplied ID
// is kept; anything else is replaced with a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := core.ParseRequestID(c.GetHeader(RequestIDHeader))
		if !ok {
			id = core.NewRequestID()
		}
		c.Set(RequestIDKey, string(id))
		c.Header(RequestIDHeader, string(id))
		c.Next()
	}
}
