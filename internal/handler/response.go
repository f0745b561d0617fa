package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type OptionsResponse struct {
	Options interface{} `json:"options"`
}

type RowsResponse struct {
	Rows    interface{} `json:"rows"`
	Partial bool        `json:"partial,omitempty"`
	Scanned int         `json:"scanned,omitempty"`
}

// Error hands err to the error middleware and stops the handler chain.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// BindJSON decodes the request body into dest. An empty body leaves dest
// untouched.
func BindJSON(c *gin.Context, dest interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Validation("invalid JSON body: %s", err.Error())
	}
	return nil
}
