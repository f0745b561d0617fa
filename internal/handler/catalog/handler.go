package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/cupos-admin/internal/filter"
	"github.com/jwalitptl/cupos-admin/internal/handler"
	catalogService "github.com/jwalitptl/cupos-admin/internal/service/catalog"
)

type Handler struct {
	service catalogService.CatalogServicer
}

func NewHandler(service catalogService.CatalogServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	catalog := r.Group("/catalog")
	{
		catalog.GET("/eps", h.EPS)
		catalog.GET("/especialidades", h.Especialidades)
		catalog.GET("/medicos", h.Medicos)
		catalog.POST("/medicos", h.Medicos)
	}
}

func (h *Handler) EPS(c *gin.Context) {
	opts, err := h.service.EPS(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.OptionsResponse{Options: opts})
}

func (h *Handler) Especialidades(c *gin.Context) {
	opts, err := h.service.Especialidades(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.OptionsResponse{Options: opts})
}

// Medicos takes specialty codes from the query string and, on POST, also
// from the JSON body.
func (h *Handler) Medicos(c *gin.Context) {
	codes := filter.SpecialtiesFromQuery(c.Request.URL.Query())
	if c.Request.Method == http.MethodPost {
		var req filter.SpecialtiesRequest
		if err := handler.BindJSON(c, &req); err != nil {
			handler.Error(c, err)
			return
		}
		codes = append(codes, req.Codes()...)
	}

	opts, err := h.service.Medicos(c.Request.Context(), codes)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.OptionsResponse{Options: opts})
}
