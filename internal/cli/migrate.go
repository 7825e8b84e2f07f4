package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Uvecodes/daypool/internal/engine"
)

// NewMigrateCommand creates the migrate command group for the birth-data
// migration flow.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Collect exact birth data from legacy profiles",
		Long: `Legacy profiles carry only a coarse age. Submitting a birth month and
day upgrades age derivation to anniversary counting, which stops the
age from drifting against the calendar.`,
	}

	cmd.AddCommand(newMigrateSubmitCommand(rootOpts))
	cmd.AddCommand(newMigrateSkipCommand(rootOpts))
	cmd.AddCommand(newMigrateStatusCommand(rootOpts))

	return cmd
}

func newMigrateSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		userID string
		month  int
		day    int
	)

	cmd := &cobra.Command{
		Use:           "submit",
		Short:         "Submit a user's birth month and day",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(rootOpts, cmd)

			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			profile, err := svc.SubmitBirthMigration(context.Background(), userID, month, day)
			if err != nil {
				return engineError(f, err)
			}

			if rootOpts.Format == "json" {
				return f.Success(map[string]any{
					"user_id":     profile.UserID,
					"birth_month": profile.BirthMonth,
					"birth_day":   profile.BirthDay,
					"age_at_set":  profile.AgeAtSet,
					"age_set_at":  profile.AgeSetAt,
				})
			}
			fmt.Fprintf(f.Writer, "birthday %02d-%02d saved for %s (age %d as of %s)\n",
				profile.BirthMonth, profile.BirthDay, profile.UserID,
				profile.AgeAtSet, profile.AgeSetAt)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID (required)")
	cmd.Flags().IntVar(&month, "month", 0, "birth month, 1-12 (required)")
	cmd.Flags().IntVar(&day, "day", 0, "birth day, 1-31 (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("day")

	return cmd
}

func newMigrateSkipCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:           "skip",
		Short:         "Defer the birth-data prompt for a user",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(rootOpts, cmd)

			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := svc.SkipBirthMigration(context.Background(), userID); err != nil {
				return engineError(f, err)
			}

			if rootOpts.Format == "json" {
				return f.Success(map[string]any{"user_id": userID, "skipped_days": engine.DefaultRePromptDays})
			}
			fmt.Fprintf(f.Writer, "prompt deferred %d days for %s\n", engine.DefaultRePromptDays, userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newMigrateStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show whether a user would be prompted for birth data",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(rootOpts, cmd)

			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			profile, err := st.GetProfile(context.Background(), userID)
			if err != nil {
				return WrapExitError(ExitCommandError, "read profile", err)
			}
			if profile == nil {
				_ = f.Error(string(engine.ErrCodeNotFound), "user profile not found", nil)
				return NewExitError(ExitFailure, "user profile not found: "+userID)
			}

			today, err := engine.LocalDate(engine.RealClock{}.Now(), engine.ResolveTimezone(profile))
			if err != nil {
				today, _ = engine.LocalDate(engine.RealClock{}.Now(), "UTC")
			}
			prompt := engine.ShouldPromptMigration(profile, today)

			if rootOpts.Format == "json" {
				return f.Success(map[string]any{
					"user_id":      userID,
					"prompt":       prompt,
					"has_birthday": profile.HasBirthday(),
					"skip_until":   profile.MigrationSkipUntil,
				})
			}
			switch {
			case profile.HasBirthday():
				fmt.Fprintf(f.Writer, "%s already has birth data\n", userID)
			case prompt:
				fmt.Fprintf(f.Writer, "%s would be prompted today\n", userID)
			default:
				fmt.Fprintf(f.Writer, "%s is deferred until %s\n", userID, profile.MigrationSkipUntil)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
