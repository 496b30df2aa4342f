package google

import (
	"errors"
	"time"

	"reposcan/internal/core"
	"reposcan/internal/csvfile"
)

// parseValues converts a values matrix (as returned by the Sheets API) into a
// table. The first row is the header. Trailing empty cells are omitted by the
// API, so short rows are padded by the column lookup.
func parseValues(values [][]interface{}, source string, loadedAt time.Time) (*core.Table, error) {
	if len(values) == 0 {
		return nil, &csvfile.LoadError{Op: "sheets.header", Kind: csvfile.KindMissingColumn, Path: source, Err: errors.New("sheet is empty")}
	}
	header := toStrings(values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rows = append(rows, toStrings(row))
	}
	return csvfile.FromRecords(header, rows, source, loadedAt)
}
