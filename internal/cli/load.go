package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/plenar/internal/config"
	"github.com/roach88/plenar/internal/loader"
)

// LoadOptions holds flags for the loader commands.
type LoadOptions struct {
	*RootOptions
	DataDir     string
	SpeakerFile string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs loader.RunIDGenerator
}

func (o *LoadOptions) adjust(cfg *config.Config) {
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.SpeakerFile != "" {
		cfg.SpeakerFile = o.SpeakerFile
	}
}

// loadFunc runs one or more loaders against a resolved configuration.
type loadFunc func(ctx context.Context, l *loader.Loader, cfg config.Config) ([]*loader.Report, error)

// singleLoad adapts a directory loader to loadFunc.
func singleLoad(run func(*loader.Loader) func(context.Context, string) (*loader.Report, error), source func(config.Config) string) loadFunc {
	return func(ctx context.Context, l *loader.Loader, cfg config.Config) ([]*loader.Report, error) {
		rep, err := run(l)(ctx, source(cfg))
		if rep == nil {
			return nil, err
		}
		return []*loader.Report{rep}, err
	}
}

func dataDir(cfg config.Config) string     { return cfg.DataDir }
func speakerFile(cfg config.Config) string { return cfg.SpeakerFile }

// NewProtocolsCommand creates the protocols command.
func NewProtocolsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}
	cmd := newLoadCommand(opts, "protocols", "Load protocols from the export directory",
		`Load the top-level protocol object of every *.json file in the data
directory. Files without a protocol object are skipped and reported.

Example:
  plenar protocols --data-dir ./data`,
		singleLoad(func(l *loader.Loader) func(context.Context, string) (*loader.Report, error) { return l.Protocols }, dataDir),
		needDataDir)
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory of protocol export files")
	return cmd
}

// NewAgendaItemsCommand creates the agenda-items command.
func NewAgendaItemsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}
	cmd := newLoadCommand(opts, "agenda-items", "Load agenda items and backfill derived columns",
		`Load protocols and their agenda items from every *.json file in the data
directory, then fill legislature_period, number and match_ag on every
agenda item from its protocol.

Example:
  plenar agenda-items --data-dir ./data`,
		singleLoad(func(l *loader.Loader) func(context.Context, string) (*loader.Report, error) { return l.AgendaItems }, dataDir),
		needDataDir)
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory of protocol export files")
	return cmd
}

// NewSpeechesCommand creates the speeches command.
func NewSpeechesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}
	cmd := newLoadCommand(opts, "speeches", "Load speeches from the export directory",
		`Load the speeches listed under NLPSpeeches in every *.json file in the
data directory. Each speech is committed on its own.

Example:
  plenar speeches --data-dir ./data`,
		singleLoad(func(l *loader.Loader) func(context.Context, string) (*loader.Report, error) { return l.Speeches }, dataDir),
		needDataDir)
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory of protocol export files")
	return cmd
}

// NewSpeakersCommand creates the speakers command.
func NewSpeakersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}
	cmd := newLoadCommand(opts, "speakers", "Load the speaker lookup file",
		`Load successful responses from the speaker lookup file.

Example:
  plenar speakers --speaker-file ./speaker-details.json`,
		singleLoad(func(l *loader.Loader) func(context.Context, string) (*loader.Report, error) { return l.Speakers }, speakerFile),
		needSpeakerFile)
	cmd.Flags().StringVar(&opts.SpeakerFile, "speaker-file", "", "speaker lookup JSON file")
	return cmd
}

// NewLoadCommand creates the load command that runs every loader.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}
	all := func(ctx context.Context, l *loader.Loader, cfg config.Config) ([]*loader.Report, error) {
		return l.LoadAll(ctx, loader.Sources{DataDir: cfg.DataDir, SpeakerFile: cfg.SpeakerFile})
	}
	cmd := newLoadCommand(opts, "load", "Run every loader",
		`Load protocols, agenda items (with backfill), speeches and, when a
speaker file is configured, speakers.

Example:
  plenar load --data-dir ./data --speaker-file ./speaker-details.json
  plenar load --db-driver pgx --dsn postgres://localhost/plenar`,
		all, needDataDir)
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory of protocol export files")
	cmd.Flags().StringVar(&opts.SpeakerFile, "speaker-file", "", "speaker lookup JSON file (optional)")
	return cmd
}

func needDataDir(cfg config.Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("no data directory: set --data-dir, data_dir or %s", config.EnvDataDir)
	}
	return nil
}

func needSpeakerFile(cfg config.Config) error {
	if cfg.SpeakerFile == "" {
		return fmt.Errorf("no speaker file: set --speaker-file, speaker_file or %s", config.EnvSpeakerFile)
	}
	return nil
}

func newLoadCommand(opts *LoadOptions, use, short, long string, load loadFunc, check func(config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, cmd, load, check)
		},
	}
}

func runLoad(opts *LoadOptions, cmd *cobra.Command, load loadFunc, check func(config.Config) error) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rt, err := openRuntime(cmd, opts.RootOptions, formatter, opts.adjust)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := check(rt.cfg); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeSource, "missing input", err)
	}

	l := loader.New(rt.store, rt.log, opts.RunIDs)
	reports, err := load(cmd.Context(), l, rt.cfg)

	if opts.Format != "json" {
		renderReports(formatter.Writer, reports, opts.Verbose)
	}
	if err != nil {
		code := ErrCodeLoadFailed
		if len(reports) == 0 {
			code = ErrCodeSource
		}
		return fail(formatter, ExitCommandError, code, "load aborted", err)
	}

	failed := 0
	for _, rep := range reports {
		failed += rep.RecordsFailed
	}
	if opts.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	}
	if failed > 0 {
		if opts.Format != "json" {
			fmt.Fprintf(formatter.Writer, "Error [%s]: %d record(s) rejected by the store\n", ErrCodeRecordsFailed, failed)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d record(s) rejected by the store", failed))
	}
	return nil
}
