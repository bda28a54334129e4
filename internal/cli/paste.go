package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tmoravec/pastiche/internal/engine"
)

// PasteOptions holds flags for the paste command.
type PasteOptions struct {
	*RootOptions
	Merge       bool
	Entries     []int
	OnSelection bool
}

// NewPasteCommand creates the paste command.
func NewPasteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PasteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "paste <source-id> [<dest-id>]",
		Short: "Paste one item's history onto another",
		Long: `Copy the history stack of the source item onto a destination.

Without --merge the destination stack and masks are replaced. With
--merge the copied entries are reconciled into the existing stack:
incoming instances replace same-labeled destination instances, and
unmatched destination instances survive after them.

--entries restricts the copy to the given source stack positions.
With --merge and no --entries the source history is collapsed to the
live state of each instance before copying.

With --selection the history is pasted onto every other selected item
instead of a single destination; failures on one item do not stop the
rest.

Examples:
  pastiche --db ./photos.db paste 1 2 --merge
  pastiche --db ./photos.db paste 1 2 --entries 0,3,4
  pastiche --db ./photos.db paste 1 --selection --merge`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaste(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "merge into the destination stack instead of replacing it")
	cmd.Flags().IntSliceVar(&opts.Entries, "entries", nil, "source seq values to copy (default: all)")
	cmd.Flags().BoolVar(&opts.OnSelection, "selection", false, "paste onto every other selected item")

	return cmd
}

func runPaste(opts *PasteOptions, cmd *cobra.Command, args []string) error {
	sourceID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid source id %q", args[0]))
	}

	eng, _, closer, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	ctx := cmd.Context()

	if opts.OnSelection {
		if len(args) > 1 {
			return NewExitError(ExitCommandError, "cannot combine --selection with an explicit destination")
		}
		if err := eng.CopyAndPasteOnSelection(ctx, sourceID, opts.Merge, opts.Entries); err != nil {
			return reportEngineError(out, err)
		}
		return out.Success("pasted onto selection")
	}

	if len(args) < 2 {
		return NewExitError(ExitCommandError, "destination id required (or use --selection)")
	}
	destID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid destination id %q", args[1]))
	}

	if err := eng.CopyAndPaste(ctx, sourceID, destID, opts.Merge, opts.Entries); err != nil {
		return reportEngineError(out, err)
	}
	return out.Success(fmt.Sprintf("pasted %d -> %d", sourceID, destID))
}

// reportEngineError prints an engine error through the formatter and
// converts it into a failure exit code.
func reportEngineError(out *OutputFormatter, err error) error {
	var oe *engine.OpError
	if errors.As(err, &oe) {
		if ferr := out.Error(string(oe.Code), oe.Message); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, oe.Message)
	}
	if ferr := out.Error("UNKNOWN", err.Error()); ferr != nil {
		return ferr
	}
	return WrapExitError(ExitFailure, "operation failed", err)
}
