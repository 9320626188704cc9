package handler

import (
	distributionapp "github.com/fpm2805/ayuda-penco/internal/application/distribution"
	"github.com/gin-gonic/gin"
)

// CatalogHandler handles the item catalog
type CatalogHandler struct {
	BaseHandler
	catalog *distributionapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *distributionapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CatalogItemData is the response of POST /catalog
type CatalogItemData struct {
	Name string `json:"name"`
}

// List handles GET /catalog
func (h *CatalogHandler) List(c *gin.Context) {
	items, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Add handles POST /catalog. Adding an existing name is not an error.
func (h *CatalogHandler) Add(c *gin.Context) {
	var req distributionapp.AddCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	name, err := h.catalog.Add(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, CatalogItemData{Name: name})
}
