package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Uvecodes/daypool/internal/pool"
)

// poolIssue is the JSON shape of one catalog validation problem.
type poolIssue struct {
	Group   string `json:"group,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// PoolValidationResult holds catalog validation results.
type PoolValidationResult struct {
	Valid  bool        `json:"valid"`
	Issues []poolIssue `json:"issues,omitempty"`
}

// NewPoolsCommand creates the pools command group.
func NewPoolsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "Inspect and validate content catalogs",
	}

	cmd.AddCommand(newPoolsValidateCommand(rootOpts))
	cmd.AddCommand(newPoolsListCommand(rootOpts))

	return cmd
}

func newPoolsValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog-dir>",
		Short: "Validate a CUE content catalog",
		Long: `Validate a CUE content catalog: bracket keys must be known, every
pool needs at least one item, and item refs must be non-empty and
unique within their pool after Unicode normalization.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoolsValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runPoolsValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	_, errs := pool.LoadDir(dir)
	if len(errs) == 0 {
		if opts.Format == "json" {
			return f.Success(PoolValidationResult{Valid: true})
		}
		fmt.Fprintln(f.Writer, "catalog valid")
		return nil
	}

	issues := make([]poolIssue, 0, len(errs))
	for _, err := range errs {
		var ce *pool.CompileError
		if errors.As(err, &ce) {
			issues = append(issues, poolIssue{Group: ce.Group, Field: ce.Field, Message: ce.Message})
		} else {
			issues = append(issues, poolIssue{Message: err.Error()})
		}
	}

	if opts.Format == "json" {
		if err := f.Success(PoolValidationResult{Valid: false, Issues: issues}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "catalog invalid: %d issue(s)\n", len(issues))
		for _, issue := range issues {
			switch {
			case issue.Group != "" && issue.Field != "":
				fmt.Fprintf(f.Writer, "  pool %s, %s: %s\n", issue.Group, issue.Field, issue.Message)
			case issue.Group != "":
				fmt.Fprintf(f.Writer, "  pool %s: %s\n", issue.Group, issue.Message)
			default:
				fmt.Fprintf(f.Writer, "  %s\n", issue.Message)
			}
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("catalog validation failed with %d issue(s)", len(issues)))
}

// poolSummary is the JSON shape of one pool in `pools list`.
type poolSummary struct {
	Group string   `json:"group"`
	Count int      `json:"count"`
	Refs  []string `json:"refs"`
}

func newPoolsListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list <catalog-dir>",
		Short:         "List pools and items in a content catalog",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(rootOpts, cmd)

			catalog, errs := pool.LoadDir(args[0])
			if len(errs) > 0 {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("load catalog %s: %v", args[0], errs[0]), errs[0])
			}

			summaries := make([]poolSummary, 0, len(catalog.Groups()))
			for _, group := range catalog.Groups() {
				items, err := catalog.LoadPool(group)
				if err != nil {
					continue
				}
				refs := make([]string, len(items))
				for i, item := range items {
					refs[i] = item.Ref
				}
				summaries = append(summaries, poolSummary{
					Group: string(group),
					Count: len(items),
					Refs:  refs,
				})
			}

			if rootOpts.Format == "json" {
				return f.Success(summaries)
			}
			for _, s := range summaries {
				fmt.Fprintf(f.Writer, "%s (%d items)\n", s.Group, s.Count)
				for i, ref := range s.Refs {
					fmt.Fprintf(f.Writer, "  %2d  %s\n", i, ref)
				}
			}
			return nil
		},
	}
	return cmd
}
