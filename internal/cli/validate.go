package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/validate"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the workspace for structural and referential integrity",
		Long: `Run every integrity check: required documents and sections, ID sequence
health, cross-reference closure, and the single in-progress invariant.
Nothing is repaired or modified.

Exit status: 0 clean, 1 errors found, 2 warnings only.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	r, err := openRepo(opts)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("Validating %s", r.Dir)

	report, err := validate.New(r).Run()
	if err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else if err := formatter.Success(strings.TrimRight(report.Render(), "\n")); err != nil {
		return err
	}

	switch {
	case len(report.Errors) > 0:
		return &ExitError{Code: ExitFailure, Message: "validation failed"}
	case len(report.Warnings) > 0:
		return &ExitError{Code: ExitWarnings, Message: "validation passed with warnings"}
	}
	return nil
}
