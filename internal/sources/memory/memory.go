package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"reposcan/internal/core"
	"reposcan/internal/csvfile"
	ports "reposcan/internal/sources"
)

// Store keeps the repository table and the export log in process memory.
// The file backend uses it with a table read from DATA_FILE; tests use it
// directly.
type Store struct {
	mu      sync.Mutex
	table   *core.Table
	exports []core.ExportRecord
	nextID  int64
}

var (
	_ ports.TableReader    = (*Store)(nil)
	_ ports.TableWriter    = (*Store)(nil)
	_ ports.ExportRecorder = (*Store)(nil)
	_ ports.ExportLister   = (*Store)(nil)
)

// ErrNoTable is returned by ReadTable before any table was stored.
var ErrNoTable = errors.New("no table loaded")

func New(t *core.Table) *Store {
	return &Store{table: t}
}

// NewFromFile loads the CSV at path once. Load failures are returned as
// *csvfile.LoadError.
func NewFromFile(path string, now time.Time) (*Store, error) {
	t, err := csvfile.LoadFile(path, now)
	if err != nil {
		return nil, err
	}
	return New(t), nil
}

func (s *Store) ReadTable(_ context.Context) (*core.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil, ErrNoTable
	}
	return s.table, nil
}

func (s *Store) ReplaceTable(_ context.Context, t *core.Table) error {
	if t == nil {
		return errors.New("nil table")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
	return nil
}

// RecordExport appends e and assigns it an id.
func (s *Store) RecordExport(_ context.Context, e core.ExportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.exports = append(s.exports, e)
	return nil
}

func (s *Store) ListExports(_ context.Context, limit int) ([]core.ExportRecord, error) {
	s.mu.Lock()
	out := append([]core.ExportRecord(nil), s.exports...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
