package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/roach88/livestyle/internal/appconfig"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded in PersistentPreRunE; flags override it.
	Config appconfig.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = appconfig.Formats

// NewRootCommand creates the root command for the livestyle CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "livestyle",
		Short: "LiveStyle sync engine tools",
		Long: `Drive the LiveStyle per-tab sync engine from event documents.

Event documents are YAML or JSON files holding an ordered list of events.
They can be applied, validated, journaled to SQLite, replayed and traced.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/livestyle/config.yaml)")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// setup loads the config, applies flag overrides and installs the logger on
// the command context.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := appconfig.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	opts.Config = cfg

	if !cmd.Flags().Changed("format") {
		opts.Format = cfg.Output.Format
	}
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	opts.Config.Output.Format = opts.Format
	opts.Config.Log.Level = level
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd, level)
	cmd.SetContext(pslog.ContextWithLogger(ctx, logger))
	logger.Debug("config loaded", "format", opts.Format, "level", level, "journal", cfg.Journal.Path)
	return nil
}

// newLogger builds a console logger on the command's stderr.
func newLogger(cmd *cobra.Command, level string) pslog.Logger {
	options := pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.InfoLevel}
	switch level {
	case "trace":
		options.MinLevel = pslog.TraceLevel
	case "debug":
		options.MinLevel = pslog.DebugLevel
	case "error":
		options.MinLevel = pslog.ErrorLevel
	}
	return pslog.NewWithOptions(cmd.ErrOrStderr(), options)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter returns the output formatter for cmd.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// journalPath returns the --db flag value or the configured journal path.
func (opts *RootOptions) journalPath(flag string) string {
	if flag != "" {
		return flag
	}
	return opts.Config.Journal.Path
}
