package handler

import (
	distributionapp "github.com/fpm2805/ayuda-penco/internal/application/distribution"
	"github.com/gin-gonic/gin"
)

// LookupHandler serves the counter workflow
type LookupHandler struct {
	BaseHandler
	lookup *distributionapp.LookupService
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(lookup *distributionapp.LookupService) *LookupHandler {
	return &LookupHandler{lookup: lookup}
}

// LookupQuery is the query of GET /lookup
type LookupQuery struct {
	Identity string `form:"identity" binding:"max=40"`
}

// Lookup handles GET /lookup?identity=. The response tells apart a blank
// input, an unknown person and a found person.
func (h *LookupHandler) Lookup(c *gin.Context) {
	var q LookupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.lookup.Lookup(c.Request.Context(), q.Identity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
