package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Attaches a unique request ID, reusing the caller's X-Request-ID if set
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
