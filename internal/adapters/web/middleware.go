package web

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/art2ascii/artview/pkg/log"
)

// requestLogger logs each HTTP request at debug level.
func requestLogger(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		logger.Debug("http request",
			log.String("method", c.Request.Method),
			log.String("path", path),
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(start)),
		)
	}
}
