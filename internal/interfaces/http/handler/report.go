package handler

import (
	"bytes"
	"net/http"
	"strconv"

	reportapp "github.com/fpm2805/ayuda-penco/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ArchiveKeyHeader carries the storage key of an archived export
const ArchiveKeyHeader = "X-Archive-Key"

// ReportHandler serves the aggregate reports and the ledger export
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) filter(c *gin.Context) (reportapp.ReportFilter, bool) {
	var f reportapp.ReportFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return f, false
	}
	return f, true
}

// Summary handles GET /reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	summary, err := h.reports.Summary(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Centers handles GET /reports/centers
func (h *ReportHandler) Centers(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	counts, err := h.reports.DeliveriesByCenter(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// Recipients handles GET /reports/recipients
func (h *ReportHandler) Recipients(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	ranking, err := h.reports.TopRecipients(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ranking)
}

// Items handles GET /reports/items
func (h *ReportHandler) Items(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	totals, err := h.reports.ItemTotals(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// Export handles GET /reports/export as a CSV download
func (h *ReportHandler) Export(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	result, err := h.reports.ExportCSV(c.Request.Context(), &buf, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(result.FileName))
	if result.ArchiveKey != "" {
		c.Header(ArchiveKeyHeader, result.ArchiveKey)
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
