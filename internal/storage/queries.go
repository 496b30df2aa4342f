package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Repository struct {
	Position    int64
	Name        string
	Description string
	Stars       int64
	Language    string
	Category    string
	LastUpdated string
}

type SnapshotMeta struct {
	LoadedAt string
	RowCount int64
}

type Export struct {
	ID                 int64
	RequestID          string
	Category           string
	MinStars           int64
	Search             string
	IncludeLastUpdated bool
	RowCount           int64
	CreatedAt          string
}

const deleteRepositories = `DELETE FROM repositories`

func (q *Queries) DeleteRepositories(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteRepositories)
	return err
}

const insertRepository = `INSERT INTO repositories (position, name, description, stars, language, category, last_updated)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertRepository(ctx context.Context, arg Repository) error {
	_, err := q.db.ExecContext(ctx, insertRepository,
		arg.Position,
		arg.Name,
		arg.Description,
		arg.Stars,
		arg.Language,
		arg.Category,
		arg.LastUpdated,
	)
	return err
}

const listRepositories = `SELECT position, name, description, stars, language, category, last_updated
FROM repositories ORDER BY position`

func (q *Queries) ListRepositories(ctx context.Context) ([]Repository, error) {
	rows, err := q.db.QueryContext(ctx, listRepositories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Repository
	for rows.Next() {
		var i Repository
		if err := rows.Scan(
			&i.Position,
			&i.Name,
			&i.Description,
			&i.Stars,
			&i.Language,
			&i.Category,
			&i.LastUpdated,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertSnapshotMeta = `INSERT INTO snapshot_meta (id, loaded_at, row_count) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET loaded_at = excluded.loaded_at, row_count = excluded.row_count`

func (q *Queries) UpsertSnapshotMeta(ctx context.Context, arg SnapshotMeta) error {
	_, err := q.db.ExecContext(ctx, upsertSnapshotMeta, arg.LoadedAt, arg.RowCount)
	return err
}

const getSnapshotMeta = `SELECT loaded_at, row_count FROM snapshot_meta WHERE id = 1`

func (q *Queries) GetSnapshotMeta(ctx context.Context) (SnapshotMeta, error) {
	row := q.db.QueryRowContext(ctx, getSnapshotMeta)
	var i SnapshotMeta
	err := row.Scan(&i.LoadedAt, &i.RowCount)
	return i, err
}

const insertExport = `INSERT OR IGNORE INTO exports (request_id, category, min_stars, search, include_last_updated, row_count, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// InsertExport returns the number of inserted rows; 0 means the request id
// was already recorded.
func (q *Queries) InsertExport(ctx context.Context, arg Export) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertExport,
		arg.RequestID,
		arg.Category,
		arg.MinStars,
		arg.Search,
		arg.IncludeLastUpdated,
		arg.RowCount,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listExports = `SELECT id, request_id, category, min_stars, search, include_last_updated, row_count, created_at
FROM exports ORDER BY created_at DESC, id DESC LIMIT ?`

func (q *Queries) ListExports(ctx context.Context, limit int64) ([]Export, error) {
	rows, err := q.db.QueryContext(ctx, listExports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Export
	for rows.Next() {
		var i Export
		if err := rows.Scan(
			&i.ID,
			&i.RequestID,
			&i.Category,
			&i.MinStars,
			&i.Search,
			&i.IncludeLastUpdated,
			&i.RowCount,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
