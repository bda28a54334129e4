package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	HistoryOnly bool
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <item-id> <sidecar-file>",
		Short: "Replace an item's history from a sidecar file",
		Long: `Read a YAML sidecar document and replace the item's history and
masks with its contents. --history-only skips non-history fields in
the document.

Example:
  pastiche --db ./photos.db load 2 ./IMG_0042.pastiche.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid item id %q", args[0]))
			}

			eng, _, closer, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer closer()

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			if err := eng.LoadAndApplySidecar(cmd.Context(), itemID, args[1], opts.HistoryOnly); err != nil {
				return reportEngineError(out, err)
			}
			return out.Success(fmt.Sprintf("applied %s to item %d", args[1], itemID))
		},
	}

	cmd.Flags().BoolVar(&opts.HistoryOnly, "history-only", false, "apply only the history, skip other sidecar fields")

	return cmd
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <item-id> <sidecar-file>",
		Short: "Export an item's history to a sidecar file",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid item id %q", args[0]))
			}

			eng, _, closer, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			defer closer()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			if err := eng.WriteSidecar(cmd.Context(), itemID, args[1]); err != nil {
				return reportEngineError(out, err)
			}
			return out.Success(fmt.Sprintf("wrote %s", args[1]))
		},
	}
}
