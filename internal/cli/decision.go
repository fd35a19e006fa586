package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/logbook"
)

// NewLogDecisionCommand creates the log-decision command.
func NewLogDecisionCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		d         logbook.Decision
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "log-decision",
		Short: "Append a decision to the decision log",
		Long: `Append an entry to archive/DECISIONS.md with the next D-ID. The log is
append-only: corrections are new entries, never edits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				parts, err := stdinFields(cmd, 2, "title|context")
				if err != nil {
					return err
				}
				d.Title = field(parts, 0)
				d.Context = field(parts, 1)
				d.Options = field(parts, 2)
				d.Chosen = field(parts, 3)
				d.Rationale = field(parts, 4)
				d.Implications = field(parts, 5)
				d.Stories = field(parts, 6)
				d.Questions = field(parts, 7)
			}
			return runLogDecision(rootOpts, d, cmd)
		},
	}

	cmd.Flags().StringVar(&d.Title, "title", "", "short decision title")
	cmd.Flags().StringVar(&d.Context, "context", "", "situation that forced the decision")
	cmd.Flags().StringVar(&d.Question, "question", "", "question being answered")
	cmd.Flags().StringVar(&d.Options, "options", "", "options considered")
	cmd.Flags().StringVar(&d.Chosen, "decision", "", "what was decided")
	cmd.Flags().StringVar(&d.Rationale, "rationale", "", "why this option won")
	cmd.Flags().StringVar(&d.Implications, "implications", "", "downstream effects")
	cmd.Flags().StringVar(&d.Stories, "stories", "", "stories affected (comma-separated)")
	cmd.Flags().StringVar(&d.Questions, "questions", "", "related questions (comma-separated)")
	cmd.Flags().BoolVar(&fromStdin, "from-stdin", false, "read pipe-separated input (title|context|options|decision|rationale|implications|stories|questions)")

	return cmd
}

func runLogDecision(opts *RootOptions, d logbook.Decision, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if d.Title == "" {
		return fail(formatter, fmt.Errorf("--title is required"))
	}

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	book := logbook.New(r)
	id, err := book.LogDecision(d)
	if err != nil {
		return fail(formatter, err)
	}
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"id": id, "title": d.Title})
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Logged %s: %s", id, d.Title)
	if d.Stories != "" {
		fmt.Fprintf(&b, "\n  Stories: %s", d.Stories)
	}
	if d.Questions != "" {
		fmt.Fprintf(&b, "\n  Questions: %s", d.Questions)
	}
	return formatter.Success(b.String())
}

// findFlags are the filter flags shared by the find-* commands.
type findFlags struct {
	ids       []string
	story     string
	questions []string
	keyword   string
	output    string
}

func (ff *findFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&ff.ids, "id", nil, "filter by entry ID (repeatable)")
	cmd.Flags().StringVar(&ff.story, "story", "", "filter by story number")
	cmd.Flags().StringSliceVar(&ff.questions, "question", nil, "filter by related question ID (repeatable)")
	cmd.Flags().StringVar(&ff.keyword, "keyword", "", "case-insensitive keyword search")
	cmd.Flags().StringVar(&ff.output, "output", logbook.OutputTable, "output shape (table|summary|json)")
}

func (ff *findFlags) filter() logbook.Filter {
	return logbook.Filter{
		IDs:       ff.ids,
		Story:     ff.story,
		Questions: ff.questions,
		Keyword:   ff.keyword,
	}
}

// NewFindDecisionsCommand creates the find-decisions command.
func NewFindDecisionsCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &findFlags{}

	cmd := &cobra.Command{
		Use:           "find-decisions",
		Short:         "Query the decision log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindDecisions(rootOpts, ff, cmd)
		},
	}
	ff.register(cmd)

	return cmd
}

func runFindDecisions(opts *RootOptions, ff *findFlags, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if !logbook.ValidOutput(ff.output) {
		return fail(formatter, fmt.Errorf("invalid output shape %q (valid: table, summary, json)", ff.output))
	}
	r, err := openRepo(opts)
	if err != nil {
		return fail(formatter, err)
	}
	book := logbook.New(r)
	decisions, err := book.Decisions()
	if err != nil {
		return fail(formatter, err)
	}
	matched := logbook.FilterDecisions(decisions, ff.filter())
	formatter.VerboseLog("Matched %d of %d decisions", len(matched), len(decisions))

	out, err := logbook.RenderDecisions(matched, ff.output)
	if err != nil {
		return fail(formatter, err)
	}
	return formatter.Success(strings.TrimRight(out, "\n"))
}
