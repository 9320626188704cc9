package csvimport

import (
	"sort"
	"strings"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
)

// ColumnMapping maps a semantic field (e.g. "identity") to a header name in the file.
type ColumnMapping map[string]string

// Header returns the header mapped to field, or "" when unmapped
func (m ColumnMapping) Header(field string) string {
	return strings.TrimSpace(m[field])
}

// Has reports whether field is mapped to a header
func (m ColumnMapping) Has(field string) bool {
	return m.Header(field) != ""
}

// Value returns the cell of row for field, or "" when unmapped
func (m ColumnMapping) Value(row *Row, field string) string {
	header := m.Header(field)
	if header == "" {
		return ""
	}
	return row.Get(header)
}

// Check verifies that every required field is mapped and that every mapped
// header exists in the file. It returns a validation error naming the problems.
func (m ColumnMapping) Check(parser *CSVParser, required ...string) error {
	var problems []string
	for _, field := range required {
		if !m.Has(field) {
			problems = append(problems, "field '"+field+"' is not mapped")
		}
	}

	fields := make([]string, 0, len(m))
	for field := range m {
		if m.Has(field) {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	for _, field := range fields {
		if !parser.HasHeader(m.Header(field)) {
			problems = append(problems, "column '"+m.Header(field)+"' (for "+field+") not found in file")
		}
	}

	if len(problems) > 0 {
		return shared.NewValidationError("invalid column mapping: " + strings.Join(problems, "; "))
	}
	return nil
}
