package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reposcan/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "reposcan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestReadTableWithoutSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.ReadTable(context.Background())
	assert.True(t, errors.Is(err, ErrNoSnapshot), "got %v", err)
}

func TestReplaceAndReadTablePreservesOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	loadedAt := time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC)
	rows := []core.Repository{
		{Name: "zeta", Description: "last alphabetically", Stars: 3, Language: "Go", Category: "Other"},
		{Name: "alpha", Description: "", Stars: 100, Language: "Rust", Category: "", LastUpdated: "2025-01-02"},
		{Name: "mid", Description: "chatbot", Stars: 7, Language: "Python", Category: "AI/ML"},
	}
	require.NoError(t, repo.ReplaceTable(ctx, core.NewTable(rows, loadedAt)))

	got, err := repo.ReadTable(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(rows, got.Rows()); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.LoadedAt().Equal(loadedAt))

	// A second import replaces the first entirely.
	require.NoError(t, repo.ReplaceTable(ctx, core.NewTable(rows[:1], loadedAt.Add(time.Hour))))
	got, err = repo.ReadTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.True(t, got.LoadedAt().Equal(loadedAt.Add(time.Hour)))
}

func TestReplaceTableRollsBackOnFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceTable(ctx, core.NewTable([]core.Repository{{Name: "keep", Stars: 1}}, time.Now())))

	// Negative stars violate the CHECK constraint half way through the import.
	bad := core.NewTable([]core.Repository{{Name: "ok", Stars: 1}, {Name: "bad", Stars: -1}}, time.Now())
	require.Error(t, repo.ReplaceTable(ctx, bad))

	got, err := repo.ReadTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "keep", got.Rows()[0].Name)
}

func TestRecordAndListExports(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

	recs := []core.ExportRecord{
		{RequestID: "req_a", Filter: core.FilterParams{Category: "All"}, RowCount: 10, CreatedAt: base},
		{RequestID: "req_b", Filter: core.FilterParams{Category: "AI/ML", MinStars: 5, Search: "bot"}, IncludeLastUpdated: true, RowCount: 1, CreatedAt: base.Add(500 * time.Millisecond)},
		{RequestID: "req_c", Filter: core.FilterParams{Category: "All"}, RowCount: 0, CreatedAt: base.Add(time.Second)},
	}
	for _, r := range recs {
		require.NoError(t, repo.RecordExport(ctx, r))
	}
	// Redelivery of the same event is ignored.
	require.NoError(t, repo.RecordExport(ctx, recs[1]))

	got, err := repo.ListExports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "req_c", got[0].RequestID)
	assert.Equal(t, "req_b", got[1].RequestID)
	assert.Equal(t, core.FilterParams{Category: "AI/ML", MinStars: 5, Search: "bot"}, got[1].Filter)
	assert.True(t, got[1].IncludeLastUpdated)
	assert.True(t, got[1].CreatedAt.Equal(recs[1].CreatedAt))

	all, err := repo.ListExports(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reposcan.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}
