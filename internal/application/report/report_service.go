// Package report serves the admin dashboards and the ledger export.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/report"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ExportFileName is the download name of the ledger export
const ExportFileName = "reporte_entregas.csv"

// ExportHeader lists the columns of the ledger export
var ExportHeader = []string{"id", "identity_key", "item", "quantity", "center", "officer", "delivered_at"}

// LedgerReader reads the full ledger
type LedgerReader interface {
	AllDeliveries(ctx context.Context, filter distribution.LedgerFilter) ([]distribution.Delivery, error)
}

// ReportService computes aggregations on demand over the ledger. Nothing is
// cached: every call reads the ledger again.
type ReportService struct {
	ledger  LedgerReader
	loc     *time.Location
	top     int
	archive shared.FileArchive
}

// NewReportService creates a new ReportService. top is the ranking size used
// when a request asks for none; archive may be nil.
func NewReportService(ledger LedgerReader, loc *time.Location, top int, archive shared.FileArchive) *ReportService {
	if top <= 0 {
		top = report.DefaultTopRecipients
	}
	return &ReportService{
		ledger:  ledger,
		loc:     loc,
		top:     top,
		archive: archive,
	}
}

// ReportFilter bounds a report to a date range in the program zone
type ReportFilter struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Top  int    `form:"top" binding:"omitempty,min=1,max=100"`
}

// ledgerFilter turns inclusive local dates into a UTC range, To exclusive
func (s *ReportService) ledgerFilter(f ReportFilter) (distribution.LedgerFilter, error) {
	var out distribution.LedgerFilter
	if f.From != "" {
		from, err := time.ParseInLocation(time.DateOnly, f.From, s.loc)
		if err != nil {
			return out, shared.NewValidationError("from must be YYYY-MM-DD")
		}
		out.From = from.UTC()
	}
	if f.To != "" {
		to, err := time.ParseInLocation(time.DateOnly, f.To, s.loc)
		if err != nil {
			return out, shared.NewValidationError("to must be YYYY-MM-DD")
		}
		out.To = to.AddDate(0, 0, 1).UTC()
	}
	if !out.From.IsZero() && !out.To.IsZero() && !out.From.Before(out.To) {
		return out, shared.NewValidationError("from must not be after to")
	}
	return out, nil
}

func (s *ReportService) load(ctx context.Context, f ReportFilter) ([]distribution.Delivery, error) {
	filter, err := s.ledgerFilter(f)
	if err != nil {
		return nil, err
	}
	return s.ledger.AllDeliveries(ctx, filter)
}

func (s *ReportService) topN(f ReportFilter) int {
	if f.Top > 0 {
		return f.Top
	}
	return s.top
}

// Summary returns all aggregations and the ledger totals
func (s *ReportService) Summary(ctx context.Context, f ReportFilter) (*report.Summary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "summary")
	defer span.End()

	deliveries, err := s.load(ctx, f)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return report.Summarize(deliveries, s.topN(f)), nil
}

// DeliveriesByCenter counts deliveries per center
func (s *ReportService) DeliveriesByCenter(ctx context.Context, f ReportFilter) ([]report.CenterCount, error) {
	deliveries, err := s.load(ctx, f)
	if err != nil {
		return nil, err
	}
	return report.ByCenter(deliveries), nil
}

// TopRecipients ranks the most assisted people
func (s *ReportService) TopRecipients(ctx context.Context, f ReportFilter) ([]report.RecipientRanking, error) {
	deliveries, err := s.load(ctx, f)
	if err != nil {
		return nil, err
	}
	return report.TopRecipients(deliveries, s.topN(f)), nil
}

// ItemTotals sums units handed out per item
func (s *ReportService) ItemTotals(ctx context.Context, f ReportFilter) ([]report.ItemTotal, error) {
	deliveries, err := s.load(ctx, f)
	if err != nil {
		return nil, err
	}
	return report.ItemTotals(deliveries), nil
}

// ExportResult describes a written export
type ExportResult struct {
	FileName   string
	Rows       int
	ArchiveKey string
}

// ExportCSV writes the raw ledger to w, one row per delivery with local
// timestamps. A copy is archived when an archive is configured.
func (s *ReportService) ExportCSV(ctx context.Context, w io.Writer, f ReportFilter) (*ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export")
	defer span.End()

	deliveries, err := s.load(ctx, f)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeLedger(&buf, deliveries, s.loc); err != nil {
		return nil, err
	}

	result := &ExportResult{FileName: ExportFileName, Rows: len(deliveries)}
	if s.archive != nil {
		key, err := s.archive.Archive(ctx, shared.ArchiveKindExport, ExportFileName, buf.Bytes(), "text/csv")
		if err != nil {
			logger.L(ctx).Warn("Failed to archive ledger export", zap.Error(err))
		} else {
			result.ArchiveKey = key
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, err
	}
	return result, nil
}

func writeLedger(w io.Writer, deliveries []distribution.Delivery, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, d := range deliveries {
		record := []string{
			d.ID.String(),
			d.RecipientKey.String(),
			d.Item,
			strconv.Itoa(d.Quantity),
			d.Center,
			d.Officer,
			d.LocalTime(loc).Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
