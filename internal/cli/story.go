package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/lifecycle"
	"github.com/specledger/specledger/internal/logbook"
	"github.com/specledger/specledger/internal/openitems"
)

// NewUpdateStoryStatusCommand creates the update-story-status command.
func NewUpdateStoryStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		status  string
		blocked bool
	)

	cmd := &cobra.Command{
		Use:   "update-story-status <story-number>",
		Short: "Move a story to a new lifecycle status",
		Long: `Update a story's status cell in the STATE.md overview table. Only one
story may be in_progress at a time.

Statuses: ` + strings.Join(lifecycle.Statuses(), ", "),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseStoryArg(args[0])
			if err != nil {
				return err
			}
			return runUpdateStoryStatus(rootOpts, num, status, blocked, cmd)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "new status ("+strings.Join(lifecycle.Statuses(), "|")+")")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "mark the story blocked")

	return cmd
}

func runUpdateStoryStatus(opts *RootOptions, num int, status string, blocked bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if status == "" {
		return fail(formatter, fmt.Errorf("--status is required"))
	}

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	manager := lifecycle.NewManager(r, logbook.New(r), openitems.New(r))
	st := lifecycle.Status(status)
	if err := manager.UpdateStatus(num, st, blocked); err != nil {
		return fail(formatter, err)
	}
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]interface{}{
			"story": num, "status": status, "blocked": blocked,
		})
	}
	return formatter.Success(fmt.Sprintf("✓ Updated Story %d status to: %s", num, st.Label()))
}

// NewGraduateStoryCommand creates the graduate-story command.
func NewGraduateStoryCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "graduate-story <story-number>",
		Short: "Move a finished story from STATE.md into SPEC.md",
		Long: `Graduate a story: verify its preconditions, move its scenarios into the
User Scenarios section of SPEC.md at revision v1.0, and mark it In SPEC.
Any unmet precondition rejects the whole transaction with every document
untouched.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseStoryArg(args[0])
			if err != nil {
				return err
			}
			return runGraduateStory(rootOpts, num, dryRun, cmd)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show changes without applying them")

	return cmd
}

func runGraduateStory(opts *RootOptions, num int, dryRun bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	manager := lifecycle.NewManager(r, logbook.New(r), openitems.New(r))
	result, err := manager.Graduate(num, dryRun)
	if err != nil {
		return fail(formatter, err)
	}

	if dryRun {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		var b strings.Builder
		b.WriteString("DRY RUN - Would add the following to SPEC.md:\n\n")
		b.WriteString(result.StoryBlock)
		b.WriteString("\n")
		fmt.Fprintf(&b, "Would update Story %d status to '%s' in STATE.md",
			num, lifecycle.StatusGraduated.Label())
		return formatter.Success(b.String())
	}

	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Graduated Story %d: %s\n", result.Story, result.Title)
	fmt.Fprintf(&b, "  Priority: %s\n", result.Priority)
	fmt.Fprintf(&b, "  Scenarios: %d\n", result.Scenarios)
	b.WriteString("  Updated SPEC.md and STATE.md")
	return formatter.Success(b.String())
}

// parseStoryArg converts a positional story number argument.
func parseStoryArg(arg string) (int, error) {
	var num int
	if _, err := fmt.Sscanf(arg, "%d", &num); err != nil || num < 1 {
		return 0, NewExitError(ExitFailure, fmt.Sprintf("invalid story number %q", arg))
	}
	return num, nil
}
