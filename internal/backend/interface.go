package backend

import (
	"context"

	"reposcan/internal/sources"

	goption "google.golang.org/api/option"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult is a table reader plus its cleanup, which may be nil.
type BackendResult struct {
	Reader  sources.TableReader
	Cleanup CleanupFunc
}

// Factory creates table readers based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// file
	DataFile string

	// sqlite
	SQLiteDBPath string

	// sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string
	SheetsClientOptions []goption.ClientOption
}

// BackendType names a table source.
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
