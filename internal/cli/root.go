// Package cli implements the pastiche command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmoravec/pastiche/internal/catalog"
	"github.com/tmoravec/pastiche/internal/engine"
	"github.com/tmoravec/pastiche/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	OpsDir   string // CUE operation catalog directory (optional)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pastiche CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pastiche",
		Short: "pastiche - edit-history stack copy/paste",
		Long: "Manage per-item edit-history stacks: copy, paste-with-merge,\n" +
			"delete and sidecar import/export over a shared SQLite catalog.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.PersistentFlags().StringVar(&opts.OpsDir, "ops", "", "directory of CUE operation definitions (default: built-in catalog)")
	_ = cmd.MarkPersistentFlagRequired("db")

	// Add subcommands
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewPasteCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openEngine opens the store, loads the operation catalog and builds
// an engine. The returned closer must be called when done.
func openEngine(opts *RootOptions) (*engine.Engine, *store.Store, func(), error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "open database", err)
	}

	var cat catalog.Catalog
	if opts.OpsDir != "" {
		loaded, err := catalog.LoadDir(opts.OpsDir)
		if err != nil {
			st.Close()
			return nil, nil, nil, WrapExitError(ExitCommandError, "load operation catalog", err)
		}
		cat = loaded
	} else {
		cat = catalog.Default()
	}

	eng := engine.New(st, cat, engine.Config{Logger: slog.Default()})
	return eng, st, func() { st.Close() }, nil
}
