package core

import (
	"errors"
	"strings"
	"time"
)

// AllCategories is the category filter value that disables the category predicate.
const AllCategories = "All"

// MissingCategory labels the count bucket for rows without a category.
const MissingCategory = "(missing)"

// LastUpdatedLayout is the date format used for the Last Updated column.
const LastUpdatedLayout = "2006-01-02"

type (
	// Repository is one row of the classified repository table.
	Repository struct {
		Name        string
		Description string
		Stars       int
		Language    string
		Category    string // empty when the source row has no label
		LastUpdated string // optional, carried through from the source
	}

	// Table is the loaded repository table. It is never mutated after
	// construction; every derived view is a fresh slice.
	Table struct {
		rows     []Repository
		loadedAt time.Time
	}
)

var (
	ErrEmptyName     = errors.New("empty repository name")
	ErrNegativeStars = errors.New("negative star count")
)

func (r Repository) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if r.Stars < 0 {
		return ErrNegativeStars
	}
	return nil
}

// HasCategory reports whether the row carries a classification label.
func (r Repository) HasCategory() bool {
	return r.Category != ""
}

// NewTable copies rows into a new table stamped with loadedAt.
func NewTable(rows []Repository, loadedAt time.Time) *Table {
	cp := make([]Repository, len(rows))
	copy(cp, rows)
	return &Table{rows: cp, loadedAt: loadedAt}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of all rows in source order.
func (t *Table) Rows() []Repository {
	if t == nil {
		return []Repository{}
	}
	out := make([]Repository, len(t.rows))
	copy(out, t.rows)
	return out
}

// LoadedAt returns the time the table was loaded.
func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}

// LastUpdatedFor returns the row's Last Updated value, falling back to the
// table load date when the source did not carry one.
func (t *Table) LastUpdatedFor(r Repository) string {
	if r.LastUpdated != "" {
		return r.LastUpdated
	}
	if t == nil || t.loadedAt.IsZero() {
		return ""
	}
	return t.loadedAt.Format(LastUpdatedLayout)
}
