package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/luxql/internal/config"
	"github.com/roach88/luxql/internal/schema"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Schema  string // schema file; empty means the config's schema, then the embedded default
	Config  string // YAML config file

	// TraceIDs produces the trace_id attached to every response. Nil means
	// UUIDv7.
	TraceIDs TraceIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the luxql CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "luxql",
		Short: "luxql - LUX query translator",
		Long:  "Translate LUX JSON search queries into SPARQL for the search endpoint.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", "", "schema file (.json, .yaml, .cue)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (YAML)")

	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

// env is what every command needs after flag parsing: configuration, the
// loaded schema, a logger and the response formatter.
type env struct {
	cfg       *config.Config
	schema    *schema.Schema
	logger    *slog.Logger
	formatter *OutputFormatter
}

// newEnv loads configuration and schema for cmd. A failure is written
// through the formatter and returned as an ExitError.
func newEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	e := &env{
		logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
		formatter: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
			TraceID:   opts.traceID(),
		},
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		_ = e.formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "loading config", err)
	}
	e.cfg = cfg

	path := opts.Schema
	if path == "" {
		path = cfg.Schema
	}
	if path == "" {
		e.schema = schema.Default()
	} else {
		s, err := schema.LoadFile(path)
		if err != nil {
			_ = e.formatter.Error(errorCode(err), err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "loading schema", err)
		}
		e.schema = s
	}
	e.logger.Debug("environment ready",
		"trace_id", e.formatter.TraceID,
		"schema", path,
		"scopes", len(e.schema.Scopes()))
	return e, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
