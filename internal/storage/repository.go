package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"reposcan/internal/core"
	ports "reposcan/internal/sources"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoSnapshot is returned by ReadTable before any table was imported.
var ErrNoSnapshot = errors.New("no repository snapshot imported")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ ports.TableReader    = (*SQLiteRepository)(nil)
	_ ports.TableWriter    = (*SQLiteRepository)(nil)
	_ ports.ExportRecorder = (*SQLiteRepository)(nil)
	_ ports.ExportLister   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; the server and worker may share the file.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReplaceTable swaps the stored snapshot for t in one transaction.
func (r *SQLiteRepository) ReplaceTable(ctx context.Context, t *core.Table) error {
	if t == nil {
		return errors.New("nil table")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteRepositories(ctx); err != nil {
		return fmt.Errorf("delete repositories: %w", err)
	}
	for i, rec := range t.Rows() {
		if err := q.InsertRepository(ctx, Repository{
			Position:    int64(i),
			Name:        rec.Name,
			Description: rec.Description,
			Stars:       int64(rec.Stars),
			Language:    rec.Language,
			Category:    rec.Category,
			LastUpdated: rec.LastUpdated,
		}); err != nil {
			return fmt.Errorf("insert repository %q: %w", rec.Name, err)
		}
	}
	loadedAt := t.LoadedAt()
	if loadedAt.IsZero() {
		loadedAt = time.Now()
	}
	if err := q.UpsertSnapshotMeta(ctx, SnapshotMeta{
		LoadedAt: loadedAt.UTC().Format(timeLayout),
		RowCount: int64(t.Len()),
	}); err != nil {
		return fmt.Errorf("update snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	slog.InfoContext(ctx, "Repository snapshot replaced", "row_count", t.Len())
	return nil
}

// ReadTable returns the imported snapshot in its original row order.
func (r *SQLiteRepository) ReadTable(ctx context.Context) (*core.Table, error) {
	meta, err := r.queries.GetSnapshotMeta(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot meta: %w", err)
	}
	loadedAt, err := time.Parse(timeLayout, meta.LoadedAt)
	if err != nil {
		return nil, fmt.Errorf("parse loaded_at %q: %w", meta.LoadedAt, err)
	}

	rows, err := r.queries.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	out := make([]core.Repository, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Repository{
			Name:        row.Name,
			Description: row.Description,
			Stars:       int(row.Stars),
			Language:    row.Language,
			Category:    row.Category,
			LastUpdated: row.LastUpdated,
		})
	}
	return core.NewTable(out, loadedAt), nil
}

// RecordExport stores one export log entry. Entries with a request id that
// was already recorded are ignored, so redelivered events are harmless.
func (r *SQLiteRepository) RecordExport(ctx context.Context, e core.ExportRecord) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	n, err := r.queries.InsertExport(ctx, Export{
		RequestID:          e.RequestID,
		Category:           e.Filter.Category,
		MinStars:           int64(e.Filter.MinStars),
		Search:             e.Filter.Search,
		IncludeLastUpdated: e.IncludeLastUpdated,
		RowCount:           int64(e.RowCount),
		CreatedAt:          createdAt.UTC().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Export already recorded", "request_id", e.RequestID)
	}
	return nil
}

// ListExports returns up to limit entries, newest first. limit <= 0 lists all.
func (r *SQLiteRepository) ListExports(ctx context.Context, limit int) ([]core.ExportRecord, error) {
	l := int64(limit)
	if l <= 0 {
		l = -1
	}
	rows, err := r.queries.ListExports(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	out := make([]core.ExportRecord, 0, len(rows))
	for _, row := range rows {
		createdAt, err := time.Parse(timeLayout, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", row.CreatedAt, err)
		}
		out = append(out, core.ExportRecord{
			ID:        row.ID,
			RequestID: row.RequestID,
			Filter: core.FilterParams{
				Category: row.Category,
				MinStars: int(row.MinStars),
				Search:   row.Search,
			},
			IncludeLastUpdated: row.IncludeLastUpdated,
			RowCount:           int(row.RowCount),
			CreatedAt:          createdAt,
		})
	}
	return out, nil
}
