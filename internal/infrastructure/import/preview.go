package csvimport

import "io"

// PreviewRows is the number of data rows shown to help with column mapping
const PreviewRows = 3

// Preview lists the headers and the first data rows of a file
type Preview struct {
	Headers   []string            `json:"headers"`
	Rows      []map[string]string `json:"rows"`
	Delimiter string              `json:"delimiter"`
}

// BuildPreview parses data and returns its headers and first PreviewRows rows.
func BuildPreview(data []byte) (*Preview, error) {
	parser, err := ParseFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	preview := &Preview{
		Headers:   parser.Headers(),
		Rows:      make([]map[string]string, 0, PreviewRows),
		Delimiter: string(parser.Delimiter()),
	}
	for len(preview.Rows) < PreviewRows {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		preview.Rows = append(preview.Rows, row.Data)
	}
	return preview, nil
}
