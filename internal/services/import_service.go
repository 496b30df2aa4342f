package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reposcan/internal/csvfile"
	"reposcan/internal/sources"
)

// ImportService loads a CSV file into a writable table store.
type ImportService struct {
	writer sources.TableWriter
	now    func() time.Time
}

func NewImportService(writer sources.TableWriter) *ImportService {
	return &ImportService{writer: writer, now: time.Now}
}

// ImportFile parses path and replaces the stored snapshot. Nothing is written
// when the file fails to load.
func (s *ImportService) ImportFile(ctx context.Context, path string) (int, error) {
	t, err := csvfile.LoadFile(path, s.now())
	if err != nil {
		return 0, err
	}
	if err := s.writer.ReplaceTable(ctx, t); err != nil {
		return 0, fmt.Errorf("replace table: %w", err)
	}
	slog.InfoContext(ctx, "Imported repository table", "path", path, "row_count", t.Len())
	return t.Len(), nil
}
