package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivispa/catalog-api/internal/model"
	catalogService "github.com/vivispa/catalog-api/internal/service/catalog"
	"github.com/vivispa/catalog-api/pkg/httputil"
)

type Handler struct {
	service      catalogService.CatalogServicer
	adminEnabled bool
}

func NewHandler(service catalogService.CatalogServicer, adminEnabled bool) *Handler {
	return &Handler{service: service, adminEnabled: adminEnabled}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	catalogs := r.Group("/catalogs")
	{
		catalogs.GET("", h.ListCatalogs)
		catalogs.GET("/:name/items", h.ListItems)
		catalogs.GET("/:name/groups", h.ListGroups)
		catalogs.GET("/:name/options/:field", h.ListOptions)
		catalogs.GET("/:name/filters", h.ListFilters)
	}
	r.GET("/offers", h.ListOffers)
	r.GET("/locations", h.ListLocations)
}

// RegisterAdminRoutes mounts the reload endpoint when admin routes are enabled.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	if !h.adminEnabled {
		return
	}
	r.Group("/admin").POST("/reload", h.Reload)
}

// bindCriteria reports false after attaching the binding error for the
// validation middleware.
func bindCriteria(c *gin.Context) (model.Criteria, bool) {
	var criteria model.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return criteria, false
	}
	return criteria, true
}

func (h *Handler) ListCatalogs(c *gin.Context) {
	infos, err := h.service.Catalogs(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, infos)
}

func (h *Handler) ListItems(c *gin.Context) {
	criteria, ok := bindCriteria(c)
	if !ok {
		return
	}

	res, err := h.service.Query(c.Request.Context(), c.Param("name"), criteria)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) ListGroups(c *gin.Context) {
	criteria, ok := bindCriteria(c)
	if !ok {
		return
	}

	res, err := h.service.Groups(c.Request.Context(), c.Param("name"), criteria)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) ListOptions(c *gin.Context) {
	values, err := h.service.Options(c.Request.Context(), c.Param("name"), c.Param("field"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, values)
}

func (h *Handler) ListFilters(c *gin.Context) {
	defs, err := h.service.Definitions(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, defs)
}

// ListOffers shows offers as they appear at the location criterion, with
// that location's booking links and badges.
func (h *Handler) ListOffers(c *gin.Context) {
	criteria, ok := bindCriteria(c)
	if !ok {
		return
	}

	res, err := h.service.Offers(c.Request.Context(), criteria.Location, criteria)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locs, err := h.service.Locations(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, locs)
}

type reloadResponse struct {
	Version  int64  `json:"version"`
	Source   string `json:"source"`
	Catalogs int    `json:"catalogs"`
	Items    int    `json:"items"`
}

func (h *Handler) Reload(c *gin.Context) {
	snap, err := h.service.Reload(c.Request.Context(), catalogService.TriggerAdmin)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.Response{
		Status:  "success",
		Message: "catalog reloaded",
		Data: reloadResponse{
			Version:  snap.Version,
			Source:   snap.Source,
			Catalogs: len(snap.Catalogs),
			Items:    snap.ItemCount(),
		},
	})
}
