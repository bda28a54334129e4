package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	OnSelection bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete [<item-id>]",
		Short: "Delete an item's history stack",
		Long: `Remove all history entries and masks for an item and reset its
active-length marker. Deleting an item with no history is a no-op.

With --selection, history is deleted for every selected item;
failures on one item do not stop the rest.

Examples:
  pastiche --db ./photos.db delete 2
  pastiche --db ./photos.db delete --selection`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, closer, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer closer()

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			ctx := cmd.Context()

			if opts.OnSelection {
				if len(args) > 0 {
					return NewExitError(ExitCommandError, "cannot combine --selection with an explicit item")
				}
				if err := eng.DeleteHistoryOnSelection(ctx); err != nil {
					return reportEngineError(out, err)
				}
				return out.Success("deleted history on selection")
			}

			if len(args) == 0 {
				return NewExitError(ExitCommandError, "item id required (or use --selection)")
			}
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid item id %q", args[0]))
			}

			if err := eng.DeleteHistory(ctx, itemID); err != nil {
				return reportEngineError(out, err)
			}
			return out.Success(fmt.Sprintf("deleted history of item %d", itemID))
		},
	}

	cmd.Flags().BoolVar(&opts.OnSelection, "selection", false, "delete history for every selected item")

	return cmd
}
