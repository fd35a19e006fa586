package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/lifecycle"
	"github.com/specledger/specledger/internal/logbook"
	"github.com/specledger/specledger/internal/openitems"
)

// NewAddRevisionCommand creates the add-revision command.
func NewAddRevisionCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		story      int
		changeType string
		scope      string
		trigger    string
		before     string
		after      string
		decision   string
	)

	cmd := &cobra.Command{
		Use:   "add-revision",
		Short: "Record a change to a graduated story",
		Long: `Log a REV entry in archive/REVISIONS.md and apply the change to the
story's section in SPEC.md, bumping its revision marker. Additive and
modificative scopes bump the minor version, structural bumps the major.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rev := logbook.Revision{
				Story:      story,
				ChangeType: changeType,
				Scope:      logbook.Scope(scope),
				Trigger:    trigger,
				Before:     before,
				After:      after,
				Decision:   decision,
			}
			return runAddRevision(rootOpts, rev, cmd)
		},
	}

	cmd.Flags().IntVar(&story, "story", 0, "graduated story number")
	cmd.Flags().StringVar(&changeType, "change-type", "", "kind of change (scenario, requirement, wording, ...)")
	cmd.Flags().StringVar(&scope, "scope", "", "revision scope (additive|modificative|structural)")
	cmd.Flags().StringVar(&trigger, "trigger", "", "what prompted the revision")
	cmd.Flags().StringVar(&before, "before", "", "text being replaced (exact match)")
	cmd.Flags().StringVar(&after, "after", "", "replacement text")
	cmd.Flags().StringVar(&decision, "decision", "", "decision ID authorizing the change")

	return cmd
}

func runAddRevision(opts *RootOptions, rev logbook.Revision, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if rev.Story == 0 {
		return fail(formatter, fmt.Errorf("--story is required"))
	}

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	manager := lifecycle.NewManager(r, logbook.New(r), openitems.New(r))
	result, err := manager.Revise(rev)
	if err != nil {
		return fail(formatter, err)
	}
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ Logged %s: Story %d revised to %s (%s)",
		result.ID, result.Story, result.Version, result.Scope))
}
