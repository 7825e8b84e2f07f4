package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Uvecodes/daypool/internal/retry"
)

// NewServeRetryCommand creates the serve-retry command.
func NewServeRetryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-retry",
		Short: "Run the rotation-claim retry sweeper",
		Long: `Run the retry sweeper as a long-lived process. Rotation claims that
failed while the store was unreachable are replayed on the cron
schedule from DAYPOOL_RETRY_SPEC until the process is interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeRetry(rootOpts, cmd)
		},
	}

	return cmd
}

func runServeRetry(opts *RootOptions, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sweeper := retry.NewSweeper(st, slog.Default())
	if err := sweeper.Start(cfg.RetrySpec); err != nil {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("invalid retry spec %q", cfg.RetrySpec), err)
	}
	defer sweeper.Stop()
	f.VerboseLog("sweeping on %q against %s", cfg.RetrySpec, cfg.DatabasePath)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("retry sweeper stopping")
	return nil
}
