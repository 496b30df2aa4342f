package csvfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"reposcan/internal/core"
)

// WriteOptions controls export serialization.
type WriteOptions struct {
	// IncludeLastUpdated appends the Last Updated column, using each row's
	// own value or the table load date.
	IncludeLastUpdated bool
}

// Header returns the export header for opts.
func Header(opts WriteOptions) []string {
	h := append([]string(nil), RequiredColumns...)
	if opts.IncludeLastUpdated {
		h = append(h, ColLastUpdated)
	}
	return h
}

// Write serializes rows, which must come from t, as CSV to w.
func Write(w io.Writer, t *core.Table, rows []core.Repository, opts WriteOptions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(opts)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Name, r.Description, strconv.Itoa(r.Stars), r.Language, r.Category}
		if opts.IncludeLastUpdated {
			rec = append(rec, t.LastUpdatedFor(r))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %q: %w", r.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Encode returns the CSV bytes for rows.
func Encode(t *core.Table, rows []core.Repository, opts WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t, rows, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
