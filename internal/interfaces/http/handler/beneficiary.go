package handler

import (
	"time"

	distributionapp "github.com/fpm2805/ayuda-penco/internal/application/distribution"
	registryapp "github.com/fpm2805/ayuda-penco/internal/application/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/dto"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BeneficiaryHandler handles the beneficiary directory and each person's
// deliveries.
type BeneficiaryHandler struct {
	BaseHandler
	directory *registryapp.DirectoryService
	ledger    *distributionapp.LedgerService
	guard     *distributionapp.HouseholdGuard
	loc       *time.Location
}

// NewBeneficiaryHandler creates a new BeneficiaryHandler
func NewBeneficiaryHandler(
	directory *registryapp.DirectoryService,
	ledger *distributionapp.LedgerService,
	guard *distributionapp.HouseholdGuard,
	loc *time.Location,
) *BeneficiaryHandler {
	return &BeneficiaryHandler{
		directory: directory,
		ledger:    ledger,
		guard:     guard,
		loc:       loc,
	}
}

// HouseholdAlertData wraps the alert so "no alert" is an explicit null
type HouseholdAlertData struct {
	Alert *distributionapp.HouseholdAlertResponse `json:"alert"`
}

// List handles GET /beneficiaries
func (h *BeneficiaryHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}.Normalize()
	list, total, err := h.directory.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, registryapp.ToBeneficiaryResponses(list, h.loc), total, filter.Page, filter.PageSize)
}

// Get handles GET /beneficiaries/:key
func (h *BeneficiaryHandler) Get(c *gin.Context) {
	b, ok := h.find(c)
	if !ok {
		return
	}
	h.Success(c, registryapp.ToBeneficiaryResponse(b, h.loc))
}

// Register handles POST /beneficiaries. Registering an existing identity
// overwrites the record.
func (h *BeneficiaryHandler) Register(c *gin.Context) {
	var req registryapp.RegisterBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	b, err := h.directory.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, registryapp.ToBeneficiaryResponse(b, h.loc))
}

// History handles GET /beneficiaries/:key/deliveries, most recent first
func (h *BeneficiaryHandler) History(c *gin.Context) {
	var uri dto.IdentityURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}

	history, err := h.ledger.HistoryFor(c.Request.Context(), uri.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, distributionapp.ToDeliveryResponses(history, h.loc))
}

// RecordDelivery handles POST /beneficiaries/:key/deliveries. The center and
// officer come from the request session.
func (h *BeneficiaryHandler) RecordDelivery(c *gin.Context) {
	var uri dto.IdentityURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var req distributionapp.RecordDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Identity = uri.Key

	d, err := h.ledger.RecordDelivery(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, distributionapp.ToDeliveryResponse(d, h.loc))
}

// HouseholdAlert handles GET /beneficiaries/:key/household-alert
func (h *BeneficiaryHandler) HouseholdAlert(c *gin.Context) {
	b, ok := h.find(c)
	if !ok {
		return
	}
	alert := h.guard.Check(c.Request.Context(), b)
	h.Success(c, HouseholdAlertData{Alert: distributionapp.ToHouseholdAlertResponse(alert)})
}

// find resolves the :key parameter, answering the request itself when the
// person cannot be returned.
func (h *BeneficiaryHandler) find(c *gin.Context) (*registry.Beneficiary, bool) {
	var uri dto.IdentityURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return nil, false
	}

	b, err := h.directory.Find(c.Request.Context(), uri.Key)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	if b == nil {
		h.NotFound(c, "Beneficiary not found")
		return nil, false
	}
	return b, true
}
