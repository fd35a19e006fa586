package logbook

import (
	"embed"
	"strings"
	"text/template"
	"time"

	"github.com/specledger/specledger/internal/docmodel"
	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/repo"
)

//go:embed templates/*.md
var templateFS embed.FS

var entryTemplates = template.Must(template.ParseFS(templateFS, "templates/*.md"))

// Book writes and reads the append-only logs of one workspace.
type Book struct {
	repo *repo.Repo

	// Now supplies entry dates; overridable for deterministic tests.
	Now func() time.Time
}

// New creates a Book over the given repository handle.
func New(r *repo.Repo) *Book {
	return &Book{repo: r, Now: time.Now}
}

func (b *Book) date() string {
	return b.Now().Format("2006-01-02")
}

// orDefault substitutes the bracketed placeholder the logs use for fields
// the caller left empty.
func orDefault(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return docmodel.Normalize(s)
}

// logTitles seed each archive document on its first entry.
var logTitles = map[string]string{
	ids.FileDecisions:  "# Decision Log\n",
	ids.FileResearch:   "# Research Log\n",
	ids.FileIterations: "# Iteration Log\n",
	ids.FileRevisions:  "# Revision Log\n",
}

// append renders the named template and appends it to the log document,
// marking it dirty. The caller commits.
func (b *Book) append(rel, tmpl string, data any) error {
	doc, err := b.repo.LoadOrCreate(rel, logTitles[rel])
	if err != nil {
		return err
	}
	var buf strings.Builder
	if err := entryTemplates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return err
	}
	doc.AppendEntry(buf.String())
	b.repo.MarkDirty(rel)
	return nil
}

// LogDecision appends a Decision entry, returning its allocated ID.
// ID, Date and empty-field placeholders are filled in; everything else in
// d is stored as given.
func (b *Book) LogDecision(d Decision) (string, error) {
	id, err := b.repo.NextID(ids.Decision)
	if err != nil {
		return "", err
	}
	data := map[string]string{
		"Num":          strings.TrimPrefix(id, "D"),
		"Date":         b.date(),
		"Title":        docmodel.Normalize(d.Title),
		"Context":      orDefault(d.Context, "[Context not provided]"),
		"Question":     orDefault(d.Question, "[Question not provided]"),
		"Options":      orDefault(d.Options, "[Options not provided]"),
		"Decision":     orDefault(d.Chosen, "[Decision not provided]"),
		"Rationale":    orDefault(d.Rationale, "[Rationale not provided]"),
		"Implications": orDefault(d.Implications, "[Implications not provided]"),
		"Stories":      orDefault(d.Stories, "[Stories not specified]"),
		"Questions":    orDefault(d.Questions, "[Questions not specified]"),
	}
	if err := b.append(ids.FileDecisions, "decision.md", data); err != nil {
		return "", err
	}
	return id, nil
}

// LogResearch appends a Research entry, returning its allocated ID.
func (b *Book) LogResearch(r Research) (string, error) {
	id, err := b.repo.NextID(ids.Research)
	if err != nil {
		return "", err
	}
	data := map[string]string{
		"Num":          strings.TrimPrefix(id, "R"),
		"Date":         b.date(),
		"Topic":        docmodel.Normalize(r.Topic),
		"Purpose":      orDefault(r.Purpose, "[Purpose not provided]"),
		"Approach":     orDefault(r.Approach, "[Approach not provided]"),
		"Findings":     orDefault(r.Findings, "[Findings not provided]"),
		"Patterns":     orDefault(r.Patterns, "[Patterns not provided]"),
		"Examples":     orDefault(r.Examples, "[Examples not provided]"),
		"Implications": orDefault(r.Implications, "[Implications not provided]"),
		"Stories":      orDefault(r.Stories, "[Stories not specified]"),
		"Questions":    orDefault(r.Questions, "[Questions not specified]"),
	}
	if err := b.append(ids.FileResearch, "research.md", data); err != nil {
		return "", err
	}
	return id, nil
}

// LogIteration appends an Iteration summary, returning its allocated ID.
func (b *Book) LogIteration(it Iteration) (string, error) {
	id, err := b.repo.NextID(ids.Iteration)
	if err != nil {
		return "", err
	}
	data := map[string]string{
		"Num":               strings.TrimPrefix(id, "ITR-"),
		"DateRange":         docmodel.Normalize(it.DateRange),
		"Phase":             docmodel.Normalize(it.Phase),
		"Goals":             orDefault(it.Goals, "[Goals not provided]"),
		"Activities":        orDefault(it.Activities, "[Activities not provided]"),
		"Outcomes":          orDefault(it.Outcomes, "[Outcomes not provided]"),
		"QuestionsAdded":    orDefault(it.QuestionsAdded, "[Questions not specified]"),
		"DecisionsMade":     orDefault(it.DecisionsMade, "[Decisions not specified]"),
		"ResearchConducted": orDefault(it.ResearchConducted, "[Research not specified]"),
		"NextSteps":         orDefault(it.NextSteps, "[Next steps not provided]"),
	}
	if err := b.append(ids.FileIterations, "iteration.md", data); err != nil {
		return "", err
	}
	return id, nil
}

// LogRevision appends a Revision entry capturing the exact before/after
// story text, returning its allocated ID.
func (b *Book) LogRevision(rev Revision) (string, error) {
	id, err := b.repo.NextID(ids.Revision)
	if err != nil {
		return "", err
	}
	data := map[string]any{
		"Num":        strings.TrimPrefix(id, "REV-"),
		"Story":      rev.Story,
		"Date":       b.date(),
		"ChangeType": orDefault(rev.ChangeType, "[Change type not provided]"),
		"Scope":      string(rev.Scope),
		"Trigger":    orDefault(rev.Trigger, "[Trigger not provided]"),
		"Before":     docmodel.Normalize(rev.Before),
		"After":      docmodel.Normalize(rev.After),
		"Decision":   orDefault(rev.Decision, "[Not specified]"),
	}
	if err := b.append(ids.FileRevisions, "revision.md", data); err != nil {
		return "", err
	}
	return id, nil
}
