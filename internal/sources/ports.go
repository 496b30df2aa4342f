package sources

import (
	"context"

	"reposcan/internal/core"
)

// Ports for table sources and the export log.
type (
	// TableReader loads the full repository table from a backing source.
	TableReader interface {
		ReadTable(ctx context.Context) (*core.Table, error)
	}

	// TableWriter replaces the stored snapshot with t.
	TableWriter interface {
		ReplaceTable(ctx context.Context, t *core.Table) error
	}

	ExportRecorder interface {
		RecordExport(ctx context.Context, e core.ExportRecord) error
	}

	// ExportLister returns the most recent export records, newest first.
	ExportLister interface {
		ListExports(ctx context.Context, limit int) ([]core.ExportRecord, error)
	}
)
