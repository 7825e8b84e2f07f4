package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Uvecodes/daypool/internal/engine"
	"github.com/Uvecodes/daypool/internal/pool"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user profiles",
	}

	cmd.AddCommand(newUserCreateCommand(rootOpts))
	cmd.AddCommand(newUserShowCommand(rootOpts))
	cmd.AddCommand(newUserBlockCommand(rootOpts))
	cmd.AddCommand(newUserUnblockCommand(rootOpts))
	cmd.AddCommand(newUserSetTZCommand(rootOpts))

	return cmd
}

func newUserSetTZCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-tz <user-id> <zone>",
		Short: "Set a user's IANA timezone",
		Long: `Set a user's IANA timezone. Local calendar days, and with them the
day each rotation advances, follow the new zone from the next request
on.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(rootOpts, cmd)

			if _, err := time.LoadLocation(args[1]); err != nil {
				_ = f.Error("COMMAND_ERROR", fmt.Sprintf("unknown timezone %q", args[1]), nil)
				return WrapExitError(ExitCommandError, "unknown timezone", err)
			}

			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			tz := args[1]
			if err := st.MergeProfile(context.Background(), args[0], engine.ProfilePatch{Timezone: &tz}); err != nil {
				return WrapExitError(ExitCommandError, "update timezone", err)
			}

			if rootOpts.Format == "json" {
				return f.Success(map[string]string{"user_id": args[0], "timezone": tz})
			}
			fmt.Fprintf(f.Writer, "timezone %s set for %s\n", tz, args[0])
			return nil
		},
	}
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		id  string
		tz  string
		dob string
		age int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user profile",
		Long: `Create a user profile. Provide --dob for exact age derivation or
--age for a coarse snapshot taken today; with neither, the user has no
age source and cannot be assigned a bracket until one is set.`,
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

			if id == "" {
				id = uuid.Must(uuid.NewV7()).String()
			}
			if tz == "" {
				tz = cfg.DefaultTimezone
			}

			profile := &engine.UserProfile{
				UserID:   id,
				Timezone: tz,
				DOB:      dob,
			}
			ctx := context.Background()
			if err := st.CreateProfile(ctx, profile); err != nil {
				return WrapExitError(ExitCommandError, "create profile", err)
			}
			if cmd.Flags().Changed("age") {
				today, dateErr := engine.LocalDate(engine.RealClock{}.Now(), engine.ResolveTimezone(profile))
				if dateErr != nil {
					today, _ = engine.LocalDate(engine.RealClock{}.Now(), "UTC")
				}
				if err := st.SetAge(ctx, id, age, today); err != nil {
					return WrapExitError(ExitCommandError, "set age", err)
				}
			}

			if rootOpts.Format == "json" {
				return f.Success(map[string]string{"user_id": id})
			}
			fmt.Fprintln(f.Writer, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "user ID (default: generated UUID)")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone (default $DAYPOOL_TZ)")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth, YYYY-MM-DD")
	cmd.Flags().IntVar(&age, "age", 0, "coarse age snapshot taken today")

	return cmd
}

// userView is the JSON shape of `user show`.
type userView struct {
	UserID      string                  `json:"user_id"`
	Timezone    string                  `json:"timezone,omitempty"`
	DOB         string                  `json:"dob,omitempty"`
	BirthMonth  int                     `json:"birth_month,omitempty"`
	BirthDay    int                     `json:"birth_day,omitempty"`
	Age         *int                    `json:"age,omitempty"`
	ActiveGroup string                  `json:"active_group,omitempty"`
	BlockedRefs []string                `json:"blocked_refs,omitempty"`
	Rotations   map[string]rotationView `json:"rotations,omitempty"`
}

type rotationView struct {
	StartIndex      int    `json:"start_index"`
	StartDate       string `json:"start_date"`
	LastServedDate  string `json:"last_served_date,omitempty"`
	LastServedIndex int    `json:"last_served_index"`
}

func newUserShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "show <user-id>",
		Short:         "Show a user profile and its rotation states",
		Args:          cobra.ExactArgs(1),
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

			profile, err := st.GetProfile(context.Background(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "read profile", err)
			}
			if profile == nil {
				_ = f.Error(string(engine.ErrCodeNotFound), "user profile not found", nil)
				return NewExitError(ExitFailure, "user profile not found: "+args[0])
			}

			view := userView{
				UserID:      profile.UserID,
				Timezone:    profile.Timezone,
				DOB:         profile.DOB,
				BirthMonth:  profile.BirthMonth,
				BirthDay:    profile.BirthDay,
				Age:         profile.Age,
				ActiveGroup: string(profile.ActiveGroup),
				BlockedRefs: profile.BlockedRefs,
			}
			if len(profile.ContentState) > 0 {
				view.Rotations = make(map[string]rotationView, len(profile.ContentState))
				for group, state := range profile.ContentState {
					view.Rotations[string(group)] = rotationView{
						StartIndex:      state.StartIndex,
						StartDate:       state.StartDate,
						LastServedDate:  state.LastServedDate,
						LastServedIndex: state.LastServedIndex,
					}
				}
			}

			if rootOpts.Format == "json" {
				return f.Success(view)
			}

			fmt.Fprintf(f.Writer, "user:   %s\n", view.UserID)
			if view.Timezone != "" {
				fmt.Fprintf(f.Writer, "tz:     %s\n", view.Timezone)
			}
			if view.DOB != "" {
				fmt.Fprintf(f.Writer, "dob:    %s\n", view.DOB)
			}
			if view.BirthMonth != 0 {
				fmt.Fprintf(f.Writer, "bday:   %02d-%02d\n", view.BirthMonth, view.BirthDay)
			}
			if view.Age != nil {
				fmt.Fprintf(f.Writer, "age:    %d\n", *view.Age)
			}
			if view.ActiveGroup != "" {
				fmt.Fprintf(f.Writer, "group:  %s\n", view.ActiveGroup)
			}
			for group, r := range view.Rotations {
				fmt.Fprintf(f.Writer, "rotation[%s]: start %d on %s, last %d on %s\n",
					group, r.StartIndex, r.StartDate, r.LastServedIndex, r.LastServedDate)
			}
			for _, ref := range view.BlockedRefs {
				fmt.Fprintf(f.Writer, "blocked: %s\n", ref)
			}
			return nil
		},
	}
	return cmd
}

func newUserBlockCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "block <user-id> <ref>",
		Short:         "Add an item ref to a user's blocklist",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocklistEdit(rootOpts, cmd, args[0], args[1], true)
		},
	}
}

func newUserUnblockCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "unblock <user-id> <ref>",
		Short:         "Remove an item ref from a user's blocklist",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocklistEdit(rootOpts, cmd, args[0], args[1], false)
		},
	}
}

func runBlocklistEdit(opts *RootOptions, cmd *cobra.Command, userID, ref string, block bool) error {
	f := formatter(opts, cmd)

	// Catalog refs are NFC-normalized at compile time; normalizing here
	// too keeps the blocklist's byte comparison honest for input typed
	// in a decomposed form.
	ref = pool.NormalizeRef(ref)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if block {
		err = st.BlockRef(ctx, userID, ref)
	} else {
		err = st.UnblockRef(ctx, userID, ref)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "update blocklist", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{"user_id": userID, "ref": ref, "blocked": block})
	}
	if block {
		fmt.Fprintf(f.Writer, "blocked %s for %s\n", ref, userID)
	} else {
		fmt.Fprintf(f.Writer, "unblocked %s for %s\n", ref, userID)
	}
	return nil
}
