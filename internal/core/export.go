package core

import "time"

// ExportRecord is one entry of the export log: a CSV download of a filtered view.
type ExportRecord struct {
	ID                 int64
	RequestID          string
	Filter             FilterParams
	IncludeLastUpdated bool
	RowCount           int
	CreatedAt          time.Time
}
