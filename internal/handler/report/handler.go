package report

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/cupos-admin/internal/export"
	"github.com/jwalitptl/cupos-admin/internal/filter"
	"github.com/jwalitptl/cupos-admin/internal/handler"
	reportService "github.com/jwalitptl/cupos-admin/internal/service/report"
)

type Handler struct {
	service reportService.ReportServicer
}

func NewHandler(service reportService.ReportServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reportes := r.Group("/reportes")
	{
		reportes.POST("/data", h.Data)
		reportes.GET("/export", h.Export)
	}
}

func (h *Handler) Data(c *gin.Context) {
	var raw filter.Raw
	if err := handler.BindJSON(c, &raw); err != nil {
		handler.Error(c, err)
		return
	}
	f, err := filter.Normalize(raw)
	if err != nil {
		handler.Error(c, err)
		return
	}

	res, err := h.service.Data(c.Request.Context(), f)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.RowsResponse{Rows: res.Rows, Partial: res.Partial, Scanned: res.Scanned})
}

// Export builds the whole workbook before writing the response so a failure
// still produces a JSON error.
func (h *Handler) Export(c *gin.Context) {
	raw, err := filter.FromQuery(c.Request.URL.Query())
	if err != nil {
		handler.Error(c, err)
		return
	}
	f, err := filter.Normalize(raw)
	if err != nil {
		handler.Error(c, err)
		return
	}

	var buf bytes.Buffer
	res, err := h.service.Export(c.Request.Context(), f, &buf)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	c.Header("X-Export-Rows", strconv.Itoa(res.Rows))
	if res.Partial {
		c.Header("X-Export-Partial", "true")
	}
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
