package cupo

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/cupos-admin/internal/filter"
	"github.com/jwalitptl/cupos-admin/internal/handler"
	cupoService "github.com/jwalitptl/cupos-admin/internal/service/cupo"
)

type Handler struct {
	service cupoService.CupoServicer
}

func NewHandler(service cupoService.CupoServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cupos := r.Group("/cupos")
	{
		cupos.POST("/list", h.List)
		cupos.POST("/delete", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	var raw filter.Raw
	if err := handler.BindJSON(c, &raw); err != nil {
		handler.Error(c, err)
		return
	}
	f, err := filter.NormalizeUnpaged(raw)
	if err != nil {
		handler.Error(c, err)
		return
	}

	res, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.RowsResponse{Rows: res.Rows, Partial: res.Partial, Scanned: res.Scanned})
}

func (h *Handler) Delete(c *gin.Context) {
	var req filter.IDsRequest
	if err := handler.BindJSON(c, &req); err != nil {
		handler.Error(c, err)
		return
	}
	ids, err := filter.ParseIDs(req.IDs)
	if err != nil {
		handler.Error(c, err)
		return
	}

	res, err := h.service.Delete(c.Request.Context(), ids)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
