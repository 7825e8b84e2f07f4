package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Uvecodes/daypool/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	DBPath   string // SQLite database path; overrides DAYPOOL_DB
	PoolsDir string // content catalog directory; overrides DAYPOOL_POOLS
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the daypool CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "daypool",
		Short: "daypool - deterministic daily content rotation",
		Long: `Serves each user one item per day from their age bracket's content
pool. Schedules are deterministic: the same user, pool, and calendar
day always resolve to the same item.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			// Commands that read config re-apply this with the
			// validated DAYPOOL_LOG_LEVEL via loadConfig.
			configureLogging(opts.Verbose, config.DefaultLogLevel)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (default $DAYPOOL_DB)")
	cmd.PersistentFlags().StringVar(&opts.PoolsDir, "pools", "", "content catalog directory (default $DAYPOOL_POOLS)")

	// Add subcommands
	cmd.AddCommand(NewTodayCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewPoolsCommand(opts))
	cmd.AddCommand(NewServeRetryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging routes slog to stderr so JSON output stays clean.
func configureLogging(verbose bool, level string) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFor(verbose, level),
	})
	slog.SetDefault(slog.New(handler))
}

// levelFor maps a configured log level to a slog level. The --verbose
// flag wins over the environment.
func levelFor(verbose bool, level string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// formatter builds the standard output formatter for a command.
func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
