package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/plenar/internal/store"
)

// BackfillResult is the JSON payload of the backfill command.
type BackfillResult struct {
	Updated int64 `json:"updated"`
}

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fill derived agenda item columns from their protocols",
		Long: `Copy legislature_period and number from each agenda item's protocol and
synthesize match_ag. Safe to run any number of times.

Example:
  plenar backfill --dsn plenar.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(rootOpts, cmd)
		},
	}
}

func runBackfill(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := openRuntime(cmd, opts, formatter, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	n, err := rt.store.BackfillAgendaItems(cmd.Context())
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, "backfill failed", store.Describe(err))
	}
	rt.log.Info("backfill finished", "updated", n)

	if opts.Format == "json" {
		return formatter.Success(BackfillResult{Updated: n})
	}
	fmt.Fprintf(formatter.Writer, "%s backfilled %s agenda item(s)\n", okMark(), humanize.Comma(n))
	return nil
}
