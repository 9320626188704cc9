package importapp

import (
	"context"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	csvimport "github.com/fpm2805/ayuda-penco/internal/infrastructure/import"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/telemetry"
)

// BeneficiaryUpserter creates or overwrites beneficiaries
type BeneficiaryUpserter interface {
	Upsert(ctx context.Context, b *registry.Beneficiary) error
}

// PeopleImportService loads the official list of affected people. Every
// imported person is eligible; a row for an existing identity overwrites it.
type PeopleImportService struct {
	directory BeneficiaryUpserter
	options
}

// NewPeopleImportService creates a new PeopleImportService
func NewPeopleImportService(directory BeneficiaryUpserter, opts ...Option) *PeopleImportService {
	return &PeopleImportService{
		directory: directory,
		options:   buildOptions(opts),
	}
}

// Import upserts one beneficiary per row. Identity and name must be mapped;
// address, sector and household size are optional. A bad row is reported
// and the import goes on.
func (s *PeopleImportService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "import", ModePeople, telemetry.SpanAttrImportMode, ModePeople)
	defer span.End()

	parser, err := openFile(req.Data, req.Mapping, FieldIdentity, FieldName)
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
	result := newResult(ModePeople, malformed, errs)
	result.ArchiveKey = s.archiveUpload(ctx, req)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Total++
		if s.importRow(ctx, req.Mapping, row, errs) {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrRows, result.Total)
	s.finish(ctx, result, errs, start)
	return result, nil
}

func (s *PeopleImportService) importRow(ctx context.Context, mapping csvimport.ColumnMapping, row *csvimport.Row, errs *csvimport.ErrorCollection) bool {
	key := registry.NormalizeIdentity(mapping.Value(row, FieldIdentity))
	if key.IsEmpty() {
		errs.AddRequired(row.LineNumber, mapping.Header(FieldIdentity))
		return false
	}
	name := mapping.Value(row, FieldName)
	if name == "" {
		errs.AddRequired(row.LineNumber, mapping.Header(FieldName))
		return false
	}

	b, err := registry.NewImportedBeneficiary(
		key,
		name,
		mapping.Value(row, FieldAddress),
		mapping.Value(row, FieldSector),
		csvimport.ParseHouseholdSize(mapping.Value(row, FieldHouseholdSize)),
	)
	if err != nil {
		errs.Add(csvimport.RowError{Row: row.LineNumber, Code: shared.CodeOf(err), Message: err.Error(), Value: key.String()})
		return false
	}
	if err := s.directory.Upsert(ctx, b); err != nil {
		errs.Add(csvimport.RowError{Row: row.LineNumber, Code: csvimport.ErrCodeWriteFailed, Message: err.Error(), Value: key.String()})
		return false
	}
	return true
}
