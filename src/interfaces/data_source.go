package interfaces

import (
	"context"

	"biometric-insights/src/models"
)

// -----------------------------------------------------------------------------
// ITableReader turns one export file into an untyped table.
// -----------------------------------------------------------------------------

type ITableReader interface {

	// Name returns the format handled by the reader (e.g. "csv")
	Name() string

	// -----------------------------------------------------------------------------

	// ReadTable parses the file at path. A file that exists but has no header
	// is an error; a header without records is an empty table.
	ReadTable(source models.SourceKey, path string) (*models.MRawTable, error)
}

// -----------------------------------------------------------------------------
// ISourceLoader locates and reads every export of a profile directory.
// -----------------------------------------------------------------------------

type ISourceLoader interface {

	// -----------------------------------------------------------------------------

	// LoadAll returns one table per source that could be found and read.
	// Missing or unreadable sources are absent from the result, never an error.
	LoadAll(ctx context.Context, profileDir string) (models.MSourceTables, error)
}
