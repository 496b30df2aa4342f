// Package csvfile reads and writes the classified repository table as CSV.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"reposcan/internal/core"
)

// Column names of the repository table.
const (
	ColName        = "name"
	ColDescription = "description"
	ColStars       = "stars"
	ColLanguage    = "language"
	ColCategory    = "category"
	ColLastUpdated = "Last Updated"
)

// RequiredColumns must all be present in the header, in any order.
var RequiredColumns = []string{ColName, ColDescription, ColStars, ColLanguage, ColCategory}

var knownColumns = []string{ColName, ColDescription, ColStars, ColLanguage, ColCategory, ColLastUpdated}

// LoadFile opens path and parses it as a repository table stamped with loadedAt.
func LoadFile(path string, loadedAt time.Time) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		kind := KindMalformed
		if errors.Is(err, os.ErrNotExist) {
			kind = KindNotFound
		}
		return nil, &LoadError{Op: "csvfile.load", Kind: kind, Path: path, Err: err}
	}
	defer f.Close()
	return Load(f, path, loadedAt)
}

// Load parses CSV from r. source is only used in error messages.
func Load(r io.Reader, source string, loadedAt time.Time) (*core.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &LoadError{Op: "csvfile.load", Kind: KindMalformed, Path: source, Err: err}
	}
	if len(records) == 0 {
		return nil, &LoadError{Op: "csvfile.load", Kind: KindMissingColumn, Path: source, Err: errors.New("empty input: no header row")}
	}
	return FromRecords(records[0], records[1:], source, loadedAt)
}

// FromRecords maps a header and data rows onto repository records. Columns are
// matched by name, ignoring case and surrounding whitespace; extra columns are
// ignored.
func FromRecords(header []string, rows [][]string, source string, loadedAt time.Time) (*core.Table, error) {
	idx, err := indexColumns(header)
	if err != nil {
		return nil, &LoadError{Op: "csvfile.header", Kind: KindMissingColumn, Path: source, Line: 1, Err: err}
	}

	out := make([]core.Repository, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		if isBlank(row) {
			continue
		}
		stars, err := parseStars(field(row, idx[ColStars]))
		if err != nil {
			return nil, &LoadError{Op: "csvfile.row", Kind: KindInvalidValue, Path: source, Line: line, Err: err}
		}
		rec := core.Repository{
			Name:        field(row, idx[ColName]),
			Description: field(row, idx[ColDescription]),
			Stars:       stars,
			Language:    field(row, idx[ColLanguage]),
			Category:    strings.TrimSpace(field(row, idx[ColCategory])),
		}
		if col, ok := idx[ColLastUpdated]; ok {
			rec.LastUpdated = strings.TrimSpace(field(row, col))
		}
		if err := rec.Validate(); err != nil {
			return nil, &LoadError{Op: "csvfile.row", Kind: KindInvalidValue, Path: source, Line: line, Err: err}
		}
		out = append(out, rec)
	}
	return core.NewTable(out, loadedAt), nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, want := range knownColumns {
			if _, seen := idx[want]; !seen && strings.EqualFold(h, want) {
				idx[want] = i
			}
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %s; got header=%v", strings.Join(missing, ","), header)
	}
	return idx, nil
}

// parseStars accepts integers and integral floats such as "12.0", which
// spreadsheet and dataframe exports commonly produce.
func parseStars(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty stars value")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid stars value %q", s)
	}
	return int(f), nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
