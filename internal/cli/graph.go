package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/plenar/internal/graph"
	"github.com/roach88/plenar/internal/store"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Export the store into Neo4j",
		Long: `Export protocols, agenda items, speakers and speeches into Neo4j and link
speeches to agenda items through match_ag. Requires neo4j.uri in the
config file or NEO4J_URI in the environment.

Example:
  NEO4J_URI=neo4j://localhost:7687 NEO4J_PASSWORD=secret plenar graph`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(rootOpts, cmd)
		},
	}
}

func runGraph(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := openRuntime(cmd, opts, formatter, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	client, err := graph.Open(ctx, rt.cfg.Neo4j, rt.log)
	if err != nil {
		message := "failed to connect to neo4j"
		if errors.Is(err, graph.ErrDisabled) {
			message = "graph export disabled"
		}
		return fail(formatter, ExitCommandError, ErrCodeGraph, message, err)
	}
	defer func() {
		if err := client.Close(ctx); err != nil {
			rt.log.Error("error closing neo4j driver", "error", err)
		}
	}()

	snap, err := graph.BuildSnapshot(ctx, rt.store)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, "failed to read store", store.Describe(err))
	}
	formatter.VerboseLog("exporting %d protocols, %d agenda items, %d speakers, %d speeches",
		len(snap.Protocols), len(snap.AgendaItems), len(snap.Speakers), len(snap.Speeches))

	stats, err := client.Export(ctx, snap)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGraph, "graph export failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(stats)
	}
	fmt.Fprintf(formatter.Writer, "%s exported %s protocols, %s agenda items, %s speakers, %s speeches\n",
		okMark(),
		humanize.Comma(int64(stats.Protocols)),
		humanize.Comma(int64(stats.AgendaItems)),
		humanize.Comma(int64(stats.Speakers)),
		humanize.Comma(int64(stats.Speeches)))
	return nil
}
