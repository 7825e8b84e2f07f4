package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Uvecodes/daypool/internal/engine"
	"github.com/Uvecodes/daypool/internal/retry"
)

// NewTodayCommand creates the today command.
func NewTodayCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Resolve today's item for a user",
		Long: `Resolve today's item for a user: derive the age bracket, initialize
the rotation on first contact, route around blocked items, and record
the serve so repeated calls on the same day return the same answer.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToday(rootOpts, userID, cmd)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runToday(opts *RootOptions, userID string, cmd *cobra.Command) error {
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

	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	f.VerboseLog("catalog loaded from %s", cfg.PoolsDir)

	sweeper := retry.NewSweeper(st, slog.Default())
	svc := engine.NewService(st, catalog,
		engine.WithRetryQueue(sweeper),
	)

	ctx := context.Background()
	item, err := svc.GetTodayItem(ctx, userID)
	if err != nil {
		return engineError(f, err)
	}

	// One immediate retry for a claim that failed mid-request; the
	// claim is idempotent so this can never clobber a concurrent winner.
	if sweeper.Pending() > 0 {
		resolved := sweeper.Sweep(ctx)
		f.VerboseLog("retried %d pending rotation claim(s)", resolved)
	}

	if opts.Format == "json" {
		return f.Success(item)
	}

	fmt.Fprintf(f.Writer, "%s (%d/%d in bracket %s)\n",
		item.Item.Ref, item.Index+1, item.TotalItems, item.GroupKey)
	if item.Item.Title != "" {
		fmt.Fprintf(f.Writer, "  %s\n", item.Item.Title)
	}
	if !item.Persisted {
		fmt.Fprintln(f.Writer, "  (rotation not yet persisted; result may differ after recovery)")
	}
	if item.PromptMigration {
		fmt.Fprintln(f.Writer, "  (birth data missing; run `daypool migrate submit` to pin birthdays)")
	}
	return nil
}
