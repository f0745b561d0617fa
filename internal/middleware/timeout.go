package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// TimeoutConfig bounds the request context. Paths with one of the Skip
// prefixes keep the server's own deadline.
type TimeoutConfig struct {
	Duration time.Duration
	Skip     []string
}

func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Duration: 60 * time.Second,
		Skip:     []string{"/api/reportes/export"},
	}
}

// Timeout attaches a deadline to the request context. Repositories and the
// batch scanner observe it and stop with context.DeadlineExceeded.
func Timeout(config TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.Duration <= 0 {
			c.Next()
			return
		}
		for _, prefix := range config.Skip {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), config.Duration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
