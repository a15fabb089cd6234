package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tagus-watch/config"
)

const headerRequestID = "X-Request-Id"

// RequestTrace assigns every inbound request an id, echoes it on the
// response, and logs method, path, status and duration on completion.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.Request.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Request.Header.Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerRequestID, requestID)

		c.Next()

		config.InfoWithFields("completed request", config.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": requestID,
		})
	}
}
