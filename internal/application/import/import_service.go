// Package importapp loads people and historical deliveries from CSV files
// whose columns the operator maps to the fields of the directory and ledger.
package importapp

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	csvimport "github.com/fpm2805/ayuda-penco/internal/infrastructure/import"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Import modes
const (
	ModePeople     = "people"
	ModeDeliveries = "deliveries"
)

// Semantic fields a column can be mapped to
const (
	FieldIdentity      = "identity"
	FieldName          = "name"
	FieldAddress       = "address"
	FieldSector        = "sector"
	FieldHouseholdSize = "household_size"
	FieldItem          = "item"
	FieldQuantity      = "quantity"
	FieldDate          = "date"
	FieldCenter        = "center"
)

const (
	csvContentType   = "text/csv"
	defaultMaxErrors = 100
)

// ImportRequest is an uploaded file with its column mapping
type ImportRequest struct {
	FileName string
	Data     []byte
	Mapping  csvimport.ColumnMapping
}

// ImportResult summarizes an import. Every non-empty data row ends up in
// exactly one of Succeeded, MissingRecipient or Failed.
type ImportResult struct {
	Mode             string               `json:"mode"`
	Total            int                  `json:"total"`
	Succeeded        int                  `json:"succeeded"`
	MissingRecipient int                  `json:"missing_recipient"`
	Failed           int                  `json:"failed"`
	Errors           []csvimport.RowError `json:"errors"`
	ErrorsTruncated  bool                 `json:"errors_truncated,omitempty"`
	TotalErrors      int                  `json:"total_errors"`
	ArchiveKey       string               `json:"archive_key,omitempty"`
}

// Option configures the import services
type Option func(*options)

type options struct {
	now       func() time.Time
	metrics   *metrics.Metrics
	archive   shared.FileArchive
	maxRows   int
	maxErrors int
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics records row outcomes and durations in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithArchive stores every uploaded file in a
func WithArchive(a shared.FileArchive) Option {
	return func(o *options) { o.archive = a }
}

// WithMaxRows rejects files with more than n data rows. Zero means no limit.
func WithMaxRows(n int) Option {
	return func(o *options) { o.maxRows = n }
}

// WithMaxErrors caps the row errors kept in a result
func WithMaxErrors(n int) Option {
	return func(o *options) { o.maxErrors = n }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, maxErrors: defaultMaxErrors}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Preview returns the headers and the first rows of data so the operator
// can choose the column mapping.
func Preview(data []byte) (*csvimport.Preview, error) {
	preview, err := csvimport.BuildPreview(data)
	if err != nil {
		return nil, fileError(err)
	}
	return preview, nil
}

// fileError turns a file-level parse failure into a validation error
func fileError(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.WrapDomainError(shared.CodeValidation, "invalid import file: "+err.Error(), err)
}

// openFile parses the header and checks the mapping before any row is read
func openFile(data []byte, mapping csvimport.ColumnMapping, required ...string) (*csvimport.CSVParser, error) {
	parser, err := csvimport.ParseFromBytes(data)
	if err != nil {
		return nil, fileError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, fileError(err)
	}
	if err := mapping.Check(parser, required...); err != nil {
		return nil, err
	}
	return parser, nil
}

// readRows reads every data row, skipping blank lines. Rows the CSV reader
// cannot parse are returned as MALFORMED_ROW errors instead of aborting.
func readRows(parser *csvimport.CSVParser, maxRows int) ([]*csvimport.Row, []csvimport.RowError, error) {
	var (
		rows      []*csvimport.Row
		malformed []csvimport.RowError
	)
	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			malformed = append(malformed, malformedRow(err))
			continue
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
		if maxRows > 0 && len(rows)+len(malformed) > maxRows {
			return nil, nil, fileError(csvimport.ErrTooManyRows)
		}
	}
	return rows, malformed, nil
}

func malformedRow(err error) csvimport.RowError {
	rowErr := csvimport.RowError{Code: csvimport.ErrCodeMalformedRow, Message: err.Error()}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		rowErr.Row = pe.StartLine
		rowErr.Message = pe.Err.Error()
	}
	return rowErr
}

// archiveUpload keeps a copy of the uploaded file. A failed archive is
// logged and does not stop the import.
func (o *options) archiveUpload(ctx context.Context, req ImportRequest) string {
	if o.archive == nil || len(req.Data) == 0 {
		return ""
	}
	name := req.FileName
	if name == "" {
		name = "upload.csv"
	}
	key, err := o.archive.Archive(ctx, shared.ArchiveKindImport, name, req.Data, csvContentType)
	if err != nil {
		logger.L(ctx).Warn("Failed to archive import file",
			zap.String("file_name", name),
			zap.Error(err),
		)
		return ""
	}
	return key
}

// finish copies the collected errors into the result and records metrics
func (o *options) finish(ctx context.Context, result *ImportResult, errs *csvimport.ErrorCollection, start time.Time) {
	result.Errors = errs.Errors()
	result.ErrorsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()

	o.metrics.AddImportRows(result.Mode, metrics.OutcomeSucceeded, result.Succeeded)
	o.metrics.AddImportRows(result.Mode, metrics.OutcomeMissingRecipient, result.MissingRecipient)
	o.metrics.AddImportRows(result.Mode, metrics.OutcomeFailed, result.Failed)
	o.metrics.ObserveImport(result.Mode, start)

	logger.L(ctx).Info("Import finished",
		zap.String("mode", result.Mode),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("missing_recipient", result.MissingRecipient),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func newResult(mode string, malformed []csvimport.RowError, errs *csvimport.ErrorCollection) *ImportResult {
	for _, e := range malformed {
		errs.Add(e)
	}
	return &ImportResult{
		Mode:   mode,
		Total:  len(malformed),
		Failed: len(malformed),
	}
}
