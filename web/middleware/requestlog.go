package middleware

import (
	"time"

	"github.com/acquisitions/api/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger writes one access-log line per request, tagged with a
// request id that is also returned in the X-Request-Id header.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader("X-Request-Id")
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", requestId)

		start := time.Now()
		c.Next()

		logger.Infof("%s %s %d %s ip=%s rid=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Round(time.Microsecond),
			c.ClientIP(),
			requestId,
		)
	}
}
