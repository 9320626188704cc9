package dto

import (
	"encoding/json"
	"strings"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	csvimport "github.com/fpm2805/ayuda-penco/internal/infrastructure/import"
)

// ImportForm holds the non-file fields of an import upload. Mapping is a
// JSON object from field name to column header, e.g. {"identity":"RUT"}.
type ImportForm struct {
	Mapping     string `form:"mapping" binding:"required"`
	FixedDate   string `form:"fixed_date" binding:"omitempty,datetime=2006-01-02"`
	FixedCenter string `form:"fixed_center" binding:"omitempty,max=100"`
}

// ColumnMapping decodes Mapping
func (f ImportForm) ColumnMapping() (csvimport.ColumnMapping, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(f.Mapping), &raw); err != nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, "mapping must be a JSON object of field to column", err)
	}
	mapping := make(csvimport.ColumnMapping, len(raw))
	for field, header := range raw {
		mapping[strings.TrimSpace(field)] = header
	}
	return mapping, nil
}
