package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/cupos-admin/internal/handler"
	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
	"github.com/jwalitptl/cupos-admin/pkg/logger"
)

// ErrorHandler renders the last error recorded by a handler as {error}.
// Server errors are logged with their full chain; clients only see the
// message of the AppError, if any.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		lastErr := c.Errors.Last().Err
		status, msg := apperrors.HTTPStatus(lastErr)

		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error().
				Err(lastErr).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(status, handler.ErrorResponse{Error: msg})
	}
}
