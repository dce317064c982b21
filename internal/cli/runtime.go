package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/plenar/internal/config"
	"github.com/roach88/plenar/internal/logger"
	"github.com/roach88/plenar/internal/store"
)

// runtime is what every store-backed command needs: resolved config,
// logger and an open store.
type runtime struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// resolveConfig applies defaults, the config file, the environment and
// finally the global flags, in that order.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.LookupEnv)
	if err != nil {
		return cfg, err
	}

	if opts.DBDriver != "" {
		cfg.Database.Driver = opts.DBDriver
	}
	if opts.DSN != "" {
		cfg.Database.DSN = opts.DSN
	}
	if opts.LogMode != "" {
		cfg.LogMode = opts.LogMode
	}
	return cfg, cfg.Validate()
}

// openRuntime resolves configuration, lets the command apply its own
// flags through adjust, builds the logger and opens the store. Errors
// are reported through out and returned as ExitCommandError.
func openRuntime(cmd *cobra.Command, opts *RootOptions, out *OutputFormatter, adjust func(*config.Config)) (*runtime, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, fail(out, ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	if adjust != nil {
		adjust(&cfg)
	}

	log, err := logger.New(cfg.LogMode, opts.Verbose)
	if err != nil {
		return nil, fail(out, ExitCommandError, ErrCodeConfig, "failed to build logger", err)
	}

	log.Debug("opening store", "driver", cfg.Database.Driver)
	st, err := store.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Sync()
		return nil, fail(out, ExitCommandError, ErrCodeStore, "failed to open store", store.Describe(err))
	}

	return &runtime{cfg: cfg, log: log, store: st}, nil
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		rt.log.Error("error closing store", "error", err)
	}
	rt.log.Sync()
}

// fail reports an error through the formatter and returns the
// matching ExitError.
func fail(out *OutputFormatter, exitCode int, code, message string, err error) error {
	text := message
	var details interface{}
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
		details = err.Error()
	}
	_ = out.Error(code, text, details)
	return WrapExitError(exitCode, message, err)
}

// Execute runs the root command and returns the process exit code.
// Errors from commands have already been reported; anything else
// (flag parsing, unknown commands) is printed here.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		err = WrapExitError(ExitCommandError, "command failed", err)
	}
	return GetExitCode(err)
}
