package shared

import "context"

// Archive kinds
const (
	ArchiveKindImport = "imports"
	ArchiveKindExport = "exports"
)

// FileArchive keeps a copy of uploaded import files and generated exports.
// Archive returns the key the file was stored under.
type FileArchive interface {
	Archive(ctx context.Context, kind, fileName string, data []byte, contentType string) (string, error)
}
