package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"reposcan/internal/core"
	"reposcan/internal/csvfile"
	applog "reposcan/internal/log"
	"reposcan/internal/services"
	"reposcan/internal/storage"
)

func newImportCmd(e *env) *cobra.Command {
	var file, db string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the SQLite snapshot with the rows of a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(db)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer repo.Close()

			n, err := services.NewImportService(repo).ImportFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			e.log().Info("Snapshot imported",
				applog.FieldSource, file,
				applog.FieldRowCount, n,
				applog.FieldOperation, applog.OpImport)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d repositories from %s into %s\n", n, file, db)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", e.cfg.DataFile, "CSV file to import")
	cmd.Flags().StringVar(&db, "db", e.cfg.SQLiteDBPath, "SQLite database path")
	return cmd
}

func newFilterCmd(e *env) *cobra.Command {
	var (
		file        string
		p           core.FilterParams
		lastUpdated bool
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the filtered view of a CSV file as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := csvfile.LoadFile(file, e.now())
			if err != nil {
				return err
			}
			p.MinStars = core.ClampStars(t, p.MinStars)
			rows := core.Filter(t, p)
			e.log().Debug("Filtered view computed",
				applog.NewFields().WithFilter(p.Category, p.MinStars, p.Search).WithRowCount(len(rows)).ToSlice()...)
			return csvfile.Write(cmd.OutOrStdout(), t, rows, csvfile.WriteOptions{IncludeLastUpdated: lastUpdated})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", e.cfg.DataFile, "CSV file to read")
	cmd.Flags().StringVarP(&p.Category, "category", "c", core.AllCategories, "Category to keep, or All")
	cmd.Flags().IntVar(&p.MinStars, "min-stars", 0, "Minimum star count")
	cmd.Flags().StringVarP(&p.Search, "search", "s", "", "Case-insensitive description search")
	cmd.Flags().BoolVar(&lastUpdated, "last-updated", false, "Append the Last Updated column")
	return cmd
}

type statsOutput struct {
	Rows       int                 `json:"rows"`
	Categories []categoryCountJSON `json:"categories"`
	Top        []repositorySummary `json:"top"`
}

type categoryCountJSON struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type repositorySummary struct {
	Name     string `json:"name"`
	Stars    int    `json:"stars"`
	Category string `json:"category"`
}

func newStatsCmd(e *env) *cobra.Command {
	var (
		file string
		top  int
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print category counts and the top repositories by stars as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := csvfile.LoadFile(file, e.now())
			if err != nil {
				return err
			}
			out := statsOutput{
				Rows:       t.Len(),
				Categories: []categoryCountJSON{},
				Top:        []repositorySummary{},
			}
			for _, c := range core.SortedCategoryCounts(core.CategoryCounts(t)) {
				out.Categories = append(out.Categories, categoryCountJSON{Category: c.Category, Count: c.Count})
			}
			for _, r := range core.TopByStars(t, top) {
				out.Top = append(out.Top, repositorySummary{Name: r.Name, Stars: r.Stars, Category: r.Category})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", e.cfg.DataFile, "CSV file to read")
	cmd.Flags().IntVarP(&top, "top", "n", e.cfg.TopN, "Number of top repositories")
	return cmd
}

type exportJSON struct {
	ID                 int64  `json:"id"`
	RequestID          string `json:"request_id"`
	Category           string `json:"category"`
	MinStars           int    `json:"min_stars"`
	Search             string `json:"search"`
	IncludeLastUpdated bool   `json:"include_last_updated"`
	RowCount           int    `json:"row_count"`
	CreatedAt          string `json:"created_at"`
}

func newExportsCmd(e *env) *cobra.Command {
	var (
		db    string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List recent CSV exports recorded by the worker as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(db)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer repo.Close()

			records, err := repo.ListExports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := make([]exportJSON, 0, len(records))
			for _, r := range records {
				out = append(out, exportJSON{
					ID:                 r.ID,
					RequestID:          r.RequestID,
					Category:           r.Filter.Category,
					MinStars:           r.Filter.MinStars,
					Search:             r.Filter.Search,
					IncludeLastUpdated: r.IncludeLastUpdated,
					RowCount:           r.RowCount,
					CreatedAt:          r.CreatedAt.UTC().Format(time.RFC3339),
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&db, "db", e.cfg.SQLiteDBPath, "SQLite database path")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum entries, newest first (0 for all)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
