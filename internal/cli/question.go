package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/openitems"
)

func categoryNames() string {
	names := make([]string, 0, 4)
	for _, c := range openitems.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// NewAddQuestionCommand creates the add-question command.
func NewAddQuestionCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		question  string
		category  string
		context   string
		story     string
		blocking  string
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "add-question",
		Short: "Add a question to the open question registry",
		Long: `Add a question to OPEN_QUESTIONS.md under its category section. The
question receives the next Q-ID and keeps it for life.

Categories: ` + categoryNames(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				parts, err := stdinFields(cmd, 2, "question|category")
				if err != nil {
					return err
				}
				question = field(parts, 0)
				category = field(parts, 1)
				context = field(parts, 2)
				story = field(parts, 3)
				blocking = field(parts, 4)
			}
			return runAddQuestion(rootOpts, question, category, context, story, blocking, cmd)
		},
	}

	cmd.Flags().StringVar(&question, "question", "", "question text")
	cmd.Flags().StringVar(&category, "category", "", "category ("+categoryNames()+")")
	cmd.Flags().StringVar(&context, "context", "", "why this question matters")
	cmd.Flags().StringVar(&story, "story", "", "related story number")
	cmd.Flags().StringVar(&blocking, "blocking", "", "what this question is blocking")
	cmd.Flags().BoolVar(&fromStdin, "from-stdin", false, "read pipe-separated input (question|category|context|story|blocking)")

	return cmd
}

func runAddQuestion(opts *RootOptions, question, category, context, story, blocking string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if question == "" || category == "" {
		return fail(formatter, fmt.Errorf("--question and --category are required"))
	}
	cat := openitems.Category(strings.ToLower(category))
	if !openitems.Valid(cat) {
		return fail(formatter, fmt.Errorf("invalid category %q (valid: %s)", category, categoryNames()))
	}

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	registry := openitems.New(r)
	id, err := registry.Add(cat, openitems.Question{
		Text:     question,
		Context:  context,
		Story:    story,
		Blocking: blocking,
	})
	if err != nil {
		return fail(formatter, err)
	}
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"id": id, "category": string(cat)})
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Added %s to %s category\n", id, cat)
	fmt.Fprintf(&b, "  Question: %s", question)
	if story != "" {
		fmt.Fprintf(&b, "\n  Story: Story %s", story)
	}
	return formatter.Success(b.String())
}

// NewResolveQuestionCommand creates the resolve-question command.
func NewResolveQuestionCommand(rootOpts *RootOptions) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "resolve-question <id>",
		Short: "Remove a resolved question from the registry",
		Long: `Remove a question from OPEN_QUESTIONS.md, leaving a comment that keeps
its ID allocated. The permanent record of the resolution is the decision
that answers it; log one with log-decision if it is not already in the
archive.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolveQuestion(rootOpts, args[0], note, cmd)
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "resolution note kept as a comment")

	return cmd
}

func runResolveQuestion(opts *RootOptions, id, note string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	registry := openitems.New(r)
	if err := registry.Resolve(id, note); err != nil {
		return fail(formatter, err)
	}
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"id": id, "resolved": "true"})
	}
	return formatter.Success(fmt.Sprintf("✓ Resolved %s\n  Log the resolution with log-decision if not already recorded", id))
}

// NewMigrateQuestionCommand creates the migrate-question command.
func NewMigrateQuestionCommand(rootOpts *RootOptions) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:           "migrate-question <id>",
		Short:         "Move a question to a different category",
		Long:          "Move a question between category sections. The ID never changes.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateQuestion(rootOpts, args[0], to, cmd)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target category ("+categoryNames()+")")

	return cmd
}

func runMigrateQuestion(opts *RootOptions, id, to string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cat := openitems.Category(strings.ToLower(to))
	if !openitems.Valid(cat) {
		return fail(formatter, fmt.Errorf("invalid category %q (valid: %s)", to, categoryNames()))
	}

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	registry := openitems.New(r)
	if err := registry.Migrate(id, cat); err != nil {
		return fail(formatter, err)
	}
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"id": id, "category": string(cat)})
	}
	return formatter.Success(fmt.Sprintf("✓ Migrated %s to %s category", id, cat))
}
