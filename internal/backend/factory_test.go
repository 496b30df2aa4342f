package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reposcan/internal/config"
	"reposcan/internal/core"
	"reposcan/internal/csvfile"
	"reposcan/internal/storage"
)

const sampleCSV = "name,description,stars,language,category\nA,chatbot,5,Go,AI/ML\nB,infra tool,50,Rust,Other\n"

func TestCreateFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repos.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: FileBackend, DataFile: path})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tbl, err := res.Reader.ReadTable(context.Background())
	if err != nil || tbl.Len() != 2 {
		t.Fatalf("unexpected table: len=%d err=%v", tbl.Len(), err)
	}
	if res.Cleanup != nil {
		t.Error("file backend needs no cleanup")
	}
}

func TestCreateFileBackendMissingFile(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: FileBackend, DataFile: filepath.Join(t.TempDir(), "none.csv")})
	if !csvfile.IsKind(err, csvfile.KindNotFound) {
		t.Fatalf("expected not_found load error, got %v", err)
	}
}

func TestCreateSQLiteBackendReadsImportedSnapshot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reposcan.db")
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows := []core.Repository{{Name: "A", Stars: 5, Category: "AI/ML"}}
	if err := repo.ReplaceTable(context.Background(), core.NewTable(rows, time.Now())); err != nil {
		t.Fatalf("import: %v", err)
	}
	repo.Close()

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Cleanup()

	tbl, err := res.Reader.ReadTable(context.Background())
	if err != nil || tbl.Len() != 1 {
		t.Fatalf("unexpected table: len=%d err=%v", tbl.Len(), err)
	}
}

func TestCreateBackendValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"unknown type", Config{Type: "memory"}, "invalid backend type"},
		{"file without path", Config{Type: FileBackend}, "data file is required"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"sheets without id", Config{Type: SheetsBackend}, "Google Spreadsheet ID is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(nil).CreateBackend(context.Background(), tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sheets", GoogleSpreadsheetID: "id", GoogleSheetName: "Repositories"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if cfg.Type != SheetsBackend || cfg.GoogleSheetName != "Repositories" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "redis"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if got := GetBackendTypeStrings(); len(got) != 3 {
		t.Errorf("unexpected backend list %v", got)
	}
}
