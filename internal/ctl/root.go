// Package ctl contains the reposcanctl commands, built using the Cobra library.
package ctl

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"reposcan/internal/cli"
	"reposcan/internal/config"
	applog "reposcan/internal/log"
)

// env carries what every subcommand needs.
type env struct {
	cfg    *config.Config
	logger *applog.Logger
	now    func() time.Time
}

// NewRootCmd builds the command tree. Defaults for --file and --db come from
// DATA_FILE and SQLITE_DB_PATH.
func NewRootCmd() *cobra.Command {
	cli.LoadEnvFile()
	e := &env{cfg: config.Load(), now: time.Now}

	root := &cobra.Command{
		Use:   "reposcanctl",
		Short: "Operate the reposcan repository table and export log.",
		Long: `reposcanctl imports classified repository CSVs into SQLite, prints
filtered views and aggregates, and lists the CSV export log.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			e.logger = applog.NewText(cmd.ErrOrStderr(), applog.ParseLevel(level), applog.ComponentCLI)
		},
	}
	root.PersistentFlags().String("log-level", e.cfg.LogLevel, "Log level (debug, info, warn, error)")

	root.AddCommand(
		newImportCmd(e),
		newFilterCmd(e),
		newStatsCmd(e),
		newExportsCmd(e),
	)
	return root
}

// Execute runs the root command with os.Args and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (e *env) log() *applog.Logger {
	if e.logger == nil {
		e.logger = applog.NewText(io.Discard, applog.ParseLevel("error"), applog.ComponentCLI)
	}
	return e.logger
}
