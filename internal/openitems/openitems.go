// Package openitems maintains OPEN_QUESTIONS.md: the mutable, categorized
// registry of unresolved questions.
//
// Questions keep their ID for life: migration between categories moves
// the entry, never renumbers it, and resolved IDs are never reused. A
// resolved entry is replaced by a comment that keeps the ID on record;
// the permanent record of the resolution itself is the Decision that
// references the question.
package openitems

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specledger/specledger/internal/docmodel"
	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/repo"
)

// Category is one of the registry's grouping sections.
type Category string

const (
	Blocking   Category = "blocking"
	Clarifying Category = "clarifying"
	Research   Category = "research"
	Watching   Category = "watching"
)

// Categories lists every category in document order.
func Categories() []Category {
	return []Category{Blocking, Clarifying, Research, Watching}
}

// Valid reports whether c names a known category.
func Valid(c Category) bool {
	_, ok := headers[c]
	return ok
}

var headers = map[Category]string{
	Blocking:   "## 🔴 Blocking",
	Clarifying: "## 🟡 Clarifying",
	Research:   "## 🔵 Research Pending",
	Watching:   "## 🟠 Watching (May Affect Graduated)",
}

// Header returns the section heading line for a category.
func Header(c Category) string { return headers[c] }

// Question is one registry entry.
type Question struct {
	ID       string   `json:"id"`
	Num      int      `json:"num"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Context  string   `json:"context,omitempty"`
	Story    string   `json:"story,omitempty"`
	Blocking string   `json:"blocking,omitempty"`

	// raw is the entry's exact source lines, kept for migration.
	raw []string
	// start/end bound the entry (plus one trailing blank) in the document.
	start, end int
}

// Registry provides the add / migrate / resolve operations.
type Registry struct {
	repo *repo.Repo
}

// New creates a Registry over the given repository handle.
func New(r *repo.Repo) *Registry {
	return &Registry{repo: r}
}

var (
	entryRe        = regexp.MustCompile(`^- \*\*Q(\d+)\*\*: (.*)$`)
	contextFieldRe = regexp.MustCompile(`^  - \*Context\*: (.*)$`)
	storyFieldRe   = regexp.MustCompile(`^  - \*Story\*: (.*)$`)
	blockedFieldRe = regexp.MustCompile(`^  - \*Blocking\*: (.*)$`)
)

// scan parses every entry out of the questions document.
func (g *Registry) scan() (*docmodel.Document, []Question, error) {
	doc, err := g.repo.Load(ids.FileQuestions)
	if err != nil {
		return nil, nil, err
	}
	lines := strings.Split(doc.Serialize(), "\n")

	headerFor := make(map[string]Category, len(headers))
	for c, h := range headers {
		headerFor[strings.TrimSpace(h)] = c
	}

	var questions []Question
	var current Category
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if c, ok := headerFor[strings.TrimSpace(line)]; ok {
			current = c
			continue
		}
		m := entryRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		q := Question{
			ID:       "Q" + m[1],
			Num:      num,
			Text:     m[2],
			Category: current,
			start:    i,
		}
		j := i + 1
		for j < len(lines) && strings.HasPrefix(lines[j], "  ") {
			if fm := contextFieldRe.FindStringSubmatch(lines[j]); fm != nil {
				q.Context = fm[1]
			} else if fm := storyFieldRe.FindStringSubmatch(lines[j]); fm != nil {
				q.Story = fm[1]
			} else if fm := blockedFieldRe.FindStringSubmatch(lines[j]); fm != nil {
				q.Blocking = fm[1]
			}
			j++
		}
		q.raw = append(q.raw, lines[i:j]...)
		q.end = j
		// Trailing blank belongs to the entry so removal leaves no gap.
		if q.end < len(lines) && strings.TrimSpace(lines[q.end]) == "" {
			q.end++
		}
		questions = append(questions, q)
		i = j - 1
	}
	return doc, questions, nil
}

// List returns every open question in document order.
func (g *Registry) List() ([]Question, error) {
	_, questions, err := g.scan()
	return questions, err
}

// Find returns the open question with the given ID.
func (g *Registry) Find(id string) (Question, error) {
	_, questions, err := g.scan()
	if err != nil {
		return Question{}, err
	}
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return Question{}, fmt.Errorf("question %s not found in %s", id, ids.FileQuestions)
}

// BlockingFor returns the blocking-category questions that reference the
// given story, either via their Story field or inline "Story <n>" text.
func (g *Registry) BlockingFor(story int) ([]Question, error) {
	_, questions, err := g.scan()
	if err != nil {
		return nil, err
	}
	ref := regexp.MustCompile(fmt.Sprintf(`\bStory %d\b`, story))
	var out []Question
	for _, q := range questions {
		if q.Category != Blocking {
			continue
		}
		if ref.MatchString(q.Story) || ref.MatchString(q.Text) || ref.MatchString(q.Blocking) {
			out = append(out, q)
		}
	}
	return out, nil
}

// entryLines renders the source lines for a new entry.
func entryLines(id string, q Question) []string {
	lines := []string{fmt.Sprintf("- **%s**: %s", id, docmodel.Normalize(q.Text))}
	if q.Context != "" {
		lines = append(lines, "  - *Context*: "+docmodel.Normalize(q.Context))
	}
	if q.Story != "" {
		lines = append(lines, "  - *Story*: Story "+q.Story)
	}
	if q.Blocking != "" {
		lines = append(lines, "  - *Blocking*: "+docmodel.Normalize(q.Blocking))
	}
	return lines
}

// Add allocates the next question ID and inserts the entry at the end of
// its category section. Returns the new ID; the caller commits.
func (g *Registry) Add(category Category, q Question) (string, error) {
	if !Valid(category) {
		return "", fmt.Errorf("invalid category: %s (valid: blocking, clarifying, research, watching)", category)
	}
	id, err := g.repo.NextID(ids.Question)
	if err != nil {
		return "", err
	}
	doc, err := g.repo.Load(ids.FileQuestions)
	if err != nil {
		return "", err
	}
	if err := appendToSection(doc, headers[category], entryLines(id, q)); err != nil {
		return "", err
	}
	g.repo.MarkDirty(ids.FileQuestions)
	return id, nil
}

// Migrate moves an entry to a different category, preserving its ID and
// every field. Order within the target category is preserved; the entry
// lands at the end.
func (g *Registry) Migrate(id string, to Category) error {
	if !Valid(to) {
		return fmt.Errorf("invalid category: %s (valid: blocking, clarifying, research, watching)", to)
	}
	doc, questions, err := g.scan()
	if err != nil {
		return err
	}
	var found *Question
	for i := range questions {
		if questions[i].ID == id {
			found = &questions[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("question %s not found in %s", id, ids.FileQuestions)
	}
	if found.Category == to {
		return nil
	}

	raw := append([]string(nil), found.raw...)
	removeEntry(doc, *found)
	if err := appendToSection(doc, headers[to], raw); err != nil {
		return err
	}
	g.repo.MarkDirty(ids.FileQuestions)
	return nil
}

// Resolve removes an entry, replacing it with a trailing comment that
// keeps the ID on record so it is never reallocated. The resolution
// should already be (or concurrently be) recorded as a Decision
// referencing this ID; the registry does not enforce that ordering.
func (g *Registry) Resolve(id, note string) error {
	doc, questions, err := g.scan()
	if err != nil {
		return err
	}
	for _, q := range questions {
		if q.ID != id {
			continue
		}
		removeEntry(doc, q)
		marker := fmt.Sprintf("<!-- Resolved: %s -->", id)
		if note != "" {
			marker = fmt.Sprintf("<!-- Resolved: %s - %s -->", id, docmodel.Normalize(note))
		}
		text := strings.TrimRight(doc.Serialize(), "\n")
		doc.Reparse(text + "\n\n" + marker + "\n")
		g.repo.MarkDirty(ids.FileQuestions)
		return nil
	}
	return fmt.Errorf("question %s not found in %s", id, ids.FileQuestions)
}

// removeEntry splices an entry's lines out of the document.
func removeEntry(doc *docmodel.Document, q Question) {
	lines := strings.Split(doc.Serialize(), "\n")
	lines = append(lines[:q.start], lines[q.end:]...)
	doc.Reparse(strings.Join(lines, "\n"))
}

// appendToSection inserts entry lines at the end of a category section,
// before the next heading, keeping one blank line of separation.
func appendToSection(doc *docmodel.Document, header string, entry []string) error {
	return doc.TransformSection(header, func(body []string) ([]string, error) {
		end := len(body)
		for end > 0 && strings.TrimSpace(body[end-1]) == "" {
			end--
		}
		out := make([]string, 0, len(body)+len(entry)+2)
		out = append(out, body[:end]...)
		out = append(out, "")
		out = append(out, entry...)
		out = append(out, "")
		return out, nil
	})
}
