package importapp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	csvimport "github.com/fpm2805/ayuda-penco/internal/infrastructure/import"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/telemetry"
)

// DeliveryRecorder appends deliveries that carry their own timestamp
type DeliveryRecorder interface {
	RecordImported(ctx context.Context, d *distribution.Delivery) error
}

// DeliveryImportRequest is a historical deliveries file. Without a mapped
// date column every row is dated FixedDate (YYYY-MM-DD, default today) at
// local midnight. Rows without a center take FixedCenter.
type DeliveryImportRequest struct {
	ImportRequest
	FixedDate   string
	FixedCenter string
}

// DeliveryImportService loads deliveries made before the system existed
type DeliveryImportService struct {
	ledger  DeliveryRecorder
	loc     *time.Location
	center  string
	officer string
	options
}

// NewDeliveryImportService creates a service that signs every imported
// delivery with officer and uses center when the file names none.
func NewDeliveryImportService(ledger DeliveryRecorder, loc *time.Location, center, officer string, opts ...Option) *DeliveryImportService {
	return &DeliveryImportService{
		ledger:  ledger,
		loc:     loc,
		center:  center,
		officer: officer,
		options: buildOptions(opts),
	}
}

// deliveryDefaults are resolved once per file
type deliveryDefaults struct {
	date    time.Time
	center  string
	officer string
}

// Import appends one delivery per row. Identity, item and quantity must be
// mapped. Rows naming an unregistered person are counted as missing
// recipients; no row aborts the import.
func (s *DeliveryImportService) Import(ctx context.Context, req DeliveryImportRequest) (*ImportResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "import", ModeDeliveries, telemetry.SpanAttrImportMode, ModeDeliveries)
	defer span.End()

	defaults, err := s.defaults(req)
	if err != nil {
		return nil, err
	}
	parser, err := openFile(req.Data, req.Mapping, FieldIdentity, FieldItem, FieldQuantity)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	rows, malformed, err := readRows(parser, s.maxRows)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	errs := csvimport.NewErrorCollection(s.maxErrors)
	result := newResult(ModeDeliveries, malformed, errs)
	result.ArchiveKey = s.archiveUpload(ctx, req.ImportRequest)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Total++

		d, ok := s.buildDelivery(req.Mapping, row, defaults, errs)
		if !ok {
			result.Failed++
			continue
		}
		if err := s.ledger.RecordImported(ctx, d); err != nil {
			if errors.Is(err, distribution.ErrRecipientNotFound) {
				result.MissingRecipient++
				errs.Add(csvimport.RowError{
					Row:     row.LineNumber,
					Column:  req.Mapping.Header(FieldIdentity),
					Code:    csvimport.ErrCodeMissingRecipient,
					Message: "recipient is not registered",
					Value:   d.RecipientKey.String(),
				})
				continue
			}
			result.Failed++
			errs.Add(csvimport.RowError{Row: row.LineNumber, Code: csvimport.ErrCodeWriteFailed, Message: err.Error(), Value: d.RecipientKey.String()})
			continue
		}
		result.Succeeded++
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrRows, result.Total)
	s.finish(ctx, result, errs, start)
	return result, nil
}

func (s *DeliveryImportService) defaults(req DeliveryImportRequest) (deliveryDefaults, error) {
	d := deliveryDefaults{
		center:  strings.TrimSpace(req.FixedCenter),
		officer: s.officer,
	}
	if d.center == "" {
		d.center = s.center
	}

	day := s.now().In(s.loc)
	if fixed := strings.TrimSpace(req.FixedDate); fixed != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, fixed, s.loc)
		if err != nil {
			return d, shared.NewValidationError("fixed date must be YYYY-MM-DD")
		}
		day = parsed
	}
	y, m, dd := day.Date()
	d.date = time.Date(y, m, dd, 0, 0, 0, 0, s.loc)
	return d, nil
}

func (s *DeliveryImportService) buildDelivery(mapping csvimport.ColumnMapping, row *csvimport.Row, defaults deliveryDefaults, errs *csvimport.ErrorCollection) (*distribution.Delivery, bool) {
	key := registry.NormalizeIdentity(mapping.Value(row, FieldIdentity))
	if key.IsEmpty() {
		errs.AddRequired(row.LineNumber, mapping.Header(FieldIdentity))
		return nil, false
	}
	item := mapping.Value(row, FieldItem)
	if item == "" {
		errs.AddParse(row.LineNumber, mapping.Header(FieldItem), "an item name", item)
		return nil, false
	}
	rawQty := mapping.Value(row, FieldQuantity)
	qty, ok := csvimport.ParseQuantity(rawQty)
	if !ok {
		errs.AddParse(row.LineNumber, mapping.Header(FieldQuantity), "a whole number of at least 1", rawQty)
		return nil, false
	}

	session := distribution.Session{Center: defaults.center, Officer: defaults.officer}
	if center := mapping.Value(row, FieldCenter); center != "" {
		session.Center = center
	}

	d, err := distribution.NewDelivery(key, item, qty, session, s.deliveredAt(mapping, row, defaults).UTC())
	if err != nil {
		errs.Add(csvimport.RowError{Row: row.LineNumber, Code: shared.CodeOf(err), Message: err.Error(), Value: key.String()})
		return nil, false
	}
	return d, true
}

// deliveredAt reads the date column when mapped. A blank or unreadable cell
// falls back to the current time.
func (s *DeliveryImportService) deliveredAt(mapping csvimport.ColumnMapping, row *csvimport.Row, defaults deliveryDefaults) time.Time {
	if !mapping.Has(FieldDate) {
		return defaults.date
	}
	if t, ok := csvimport.ParseDate(mapping.Value(row, FieldDate), s.loc); ok {
		return t
	}
	return s.now()
}
