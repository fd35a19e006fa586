package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/logbook"
)

// NewLogIterationCommand creates the log-iteration command.
func NewLogIterationCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		it        logbook.Iteration
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:           "log-iteration",
		Short:         "Append a work session summary to the iteration log",
		Long:          "Append an entry to archive/ITERATIONS.md with the next ITR-ID.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				parts, err := stdinFields(cmd, 3, "date_range|phase|goals")
				if err != nil {
					return err
				}
				it.DateRange = field(parts, 0)
				it.Phase = field(parts, 1)
				it.Goals = field(parts, 2)
				it.Activities = field(parts, 3)
				it.Outcomes = field(parts, 4)
				it.QuestionsAdded = field(parts, 5)
				it.DecisionsMade = field(parts, 6)
				it.ResearchConducted = field(parts, 7)
				it.NextSteps = field(parts, 8)
			}
			return runLogIteration(rootOpts, it, cmd)
		},
	}

	cmd.Flags().StringVar(&it.DateRange, "date-range", "", "session date range")
	cmd.Flags().StringVar(&it.Phase, "phase", "", "discovery phase")
	cmd.Flags().StringVar(&it.Goals, "goals", "", "session goals")
	cmd.Flags().StringVar(&it.Activities, "activities", "", "what was done")
	cmd.Flags().StringVar(&it.Outcomes, "outcomes", "", "key outcomes")
	cmd.Flags().StringVar(&it.QuestionsAdded, "questions-added", "", "questions raised this session")
	cmd.Flags().StringVar(&it.DecisionsMade, "decisions-made", "", "decisions logged this session")
	cmd.Flags().StringVar(&it.ResearchConducted, "research-conducted", "", "research logged this session")
	cmd.Flags().StringVar(&it.NextSteps, "next-steps", "", "planned next steps")
	cmd.Flags().BoolVar(&fromStdin, "from-stdin", false, "read pipe-separated input (date_range|phase|goals|activities|outcomes|questions_added|decisions_made|research_conducted|next_steps)")

	return cmd
}

func runLogIteration(opts *RootOptions, it logbook.Iteration, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	switch {
	case it.DateRange == "":
		return fail(formatter, fmt.Errorf("--date-range is required"))
	case it.Phase == "":
		return fail(formatter, fmt.Errorf("--phase is required"))
	case it.Goals == "":
		return fail(formatter, fmt.Errorf("--goals is required"))
	}

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	book := logbook.New(r)
	id, err := book.LogIteration(it)
	if err != nil {
		return fail(formatter, err)
	}
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"id": id, "phase": it.Phase})
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Logged %s: %s — %s", id, it.DateRange, it.Phase)
	if it.Outcomes != "" {
		fmt.Fprintf(&b, "\n  Outcomes: %s", it.Outcomes)
	}
	if it.NextSteps != "" {
		fmt.Fprintf(&b, "\n  Next: %s", it.NextSteps)
	}
	return formatter.Success(b.String())
}

// NewFindIterationsCommand creates the find-iterations command.
func NewFindIterationsCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &findFlags{}

	cmd := &cobra.Command{
		Use:           "find-iterations",
		Short:         "Query the iteration log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindIterations(rootOpts, ff, cmd)
		},
	}
	ff.register(cmd)

	return cmd
}

func runFindIterations(opts *RootOptions, ff *findFlags, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if !logbook.ValidOutput(ff.output) {
		return fail(formatter, fmt.Errorf("invalid output shape %q (valid: table, summary, json)", ff.output))
	}
	r, err := openRepo(opts)
	if err != nil {
		return fail(formatter, err)
	}
	book := logbook.New(r)
	iterations, err := book.Iterations()
	if err != nil {
		return fail(formatter, err)
	}
	matched := logbook.FilterIterations(iterations, ff.filter())
	formatter.VerboseLog("Matched %d of %d iterations", len(matched), len(iterations))

	out, err := logbook.RenderIterations(matched, ff.output)
	if err != nil {
		return fail(formatter, err)
	}
	return formatter.Success(strings.TrimRight(out, "\n"))
}
