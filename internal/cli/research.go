package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/logbook"
)

// NewLogResearchCommand creates the log-research command.
func NewLogResearchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		r         logbook.Research
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:           "log-research",
		Short:         "Append a research note to the research log",
		Long:          "Append an entry to archive/RESEARCH.md with the next R-ID.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				parts, err := stdinFields(cmd, 2, "topic|findings")
				if err != nil {
					return err
				}
				r.Topic = field(parts, 0)
				r.Findings = field(parts, 1)
				r.Purpose = field(parts, 2)
				r.Approach = field(parts, 3)
				r.Patterns = field(parts, 4)
				r.Examples = field(parts, 5)
				r.Implications = field(parts, 6)
				r.Stories = field(parts, 7)
				r.Questions = field(parts, 8)
			}
			return runLogResearch(rootOpts, r, cmd)
		},
	}

	cmd.Flags().StringVar(&r.Topic, "topic", "", "research topic")
	cmd.Flags().StringVar(&r.Purpose, "purpose", "", "why the research was done")
	cmd.Flags().StringVar(&r.Approach, "approach", "", "how the research was done")
	cmd.Flags().StringVar(&r.Findings, "findings", "", "what was found")
	cmd.Flags().StringVar(&r.Patterns, "patterns", "", "industry patterns observed")
	cmd.Flags().StringVar(&r.Examples, "examples", "", "relevant examples")
	cmd.Flags().StringVar(&r.Implications, "implications", "", "what the findings imply")
	cmd.Flags().StringVar(&r.Stories, "stories", "", "stories informed (comma-separated)")
	cmd.Flags().StringVar(&r.Questions, "questions", "", "related questions (comma-separated)")
	cmd.Flags().BoolVar(&fromStdin, "from-stdin", false, "read pipe-separated input (topic|findings|purpose|approach|patterns|examples|implications|stories|questions)")

	return cmd
}

func runLogResearch(opts *RootOptions, entry logbook.Research, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if entry.Topic == "" {
		return fail(formatter, fmt.Errorf("--topic is required"))
	}

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	book := logbook.New(r)
	id, err := book.LogResearch(entry)
	if err != nil {
		return fail(formatter, err)
	}
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"id": id, "topic": entry.Topic})
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Logged %s: %s", id, entry.Topic)
	if entry.Stories != "" {
		fmt.Fprintf(&b, "\n  Stories: %s", entry.Stories)
	}
	return formatter.Success(b.String())
}

// NewFindResearchCommand creates the find-research command.
func NewFindResearchCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &findFlags{}

	cmd := &cobra.Command{
		Use:           "find-research",
		Short:         "Query the research log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindResearch(rootOpts, ff, cmd)
		},
	}
	ff.register(cmd)

	return cmd
}

func runFindResearch(opts *RootOptions, ff *findFlags, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if !logbook.ValidOutput(ff.output) {
		return fail(formatter, fmt.Errorf("invalid output shape %q (valid: table, summary, json)", ff.output))
	}
	r, err := openRepo(opts)
	if err != nil {
		return fail(formatter, err)
	}
	book := logbook.New(r)
	notes, err := book.ResearchNotes()
	if err != nil {
		return fail(formatter, err)
	}
	matched := logbook.FilterResearch(notes, ff.filter())
	formatter.VerboseLog("Matched %d of %d research notes", len(matched), len(notes))

	out, err := logbook.RenderResearch(matched, ff.output)
	if err != nil {
		return fail(formatter, err)
	}
	return formatter.Success(strings.TrimRight(out, "\n"))
}
