package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	ActiveOnly bool
}

// listItem is the JSON shape of one listed history line.
type listItem struct {
	Seq     int    `json:"seq"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <item-id>",
		Short: "List an item's live history entries",
		Long: `List the live state of every (operation, instance) pair in the
item's stack, newest first. --active-only hides disabled entries.

Example:
  pastiche --db ./photos.db list 2 --active-only`,
		Args:          cobra.ExactArgs(1),
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

			seq, err := eng.ListHistory(cmd.Context(), itemID, opts.ActiveOnly)
			if err != nil {
				return reportEngineError(out, err)
			}

			if opts.Format == "json" {
				items := []listItem{}
				for it := range seq {
					items = append(items, listItem{Seq: it.Seq, Name: it.Name, Enabled: it.Enabled})
				}
				return out.Success(items)
			}

			w := cmd.OutOrStdout()
			for it := range seq {
				state := "off"
				if it.Enabled {
					state = "on"
				}
				fmt.Fprintf(w, "%3d  %s (%s)\n", it.Seq, it.Name, state)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.ActiveOnly, "active-only", false, "hide disabled entries")

	return cmd
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <item-id>",
		Short: "Print an item's full history, newest first",
		Args:          cobra.ExactArgs(1),
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

			summary, err := eng.HistorySummary(cmd.Context(), itemID)
			if err != nil {
				return reportEngineError(out, err)
			}
			return out.Success(summary)
		},
	}
}
