package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewItemCommand creates the item command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage items",
	}
	cmd.AddCommand(newItemAddCommand(rootOpts))
	return cmd
}

func newItemAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <item-id>...",
		Short: "Register items in the database",
		Long: `Register one or more items. Registering an existing item is a no-op.

Example:
  pastiche --db ./photos.db item add 1 2 3`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}

			_, st, closer, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			defer closer()

			for _, id := range ids {
				if err := st.AddItem(cmd.Context(), id); err != nil {
					return WrapExitError(ExitFailure, fmt.Sprintf("add item %d", id), err)
				}
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return out.Success(fmt.Sprintf("added %d item(s)", len(ids)))
		},
	}
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select [<item-id>...]",
		Short: "Replace the current selection",
		Long: `Replace the current selection with the given item IDs. With no
arguments the selection is cleared. Batch operations (paste
--selection, delete --selection) apply to the selected items.

Example:
  pastiche --db ./photos.db select 2 3 4`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}

			_, st, closer, err := openEngine(rootOpts)
			if err != nil {
				return err
			}
			defer closer()

			if err := st.SetSelection(cmd.Context(), ids); err != nil {
				return WrapExitError(ExitFailure, "set selection", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return out.Success(fmt.Sprintf("selected %d item(s)", len(ids)))
		},
	}
}

// parseItemIDs parses positional item ID arguments.
func parseItemIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid item id %q", arg))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
