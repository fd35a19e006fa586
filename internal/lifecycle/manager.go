// Package lifecycle orchestrates story status transitions: queueing,
// the single in-progress slot, the graduation transaction that moves a
// finished story into the deliverable, and post-graduation revisions.
//
// Graduation is all-or-nothing across STATE.md, SPEC.md, and
// OPEN_QUESTIONS.md: preconditions are checked first and a failure
// rejects the transaction with no document modified; on success all
// affected documents commit through the repository's staged atomic write.
package lifecycle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specledger/specledger/internal/docmodel"
	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/logbook"
	"github.com/specledger/specledger/internal/openitems"
	"github.com/specledger/specledger/internal/repo"
)

// maxConfidence is the confidence cell value required for graduation.
const maxConfidence = "100%"

// scenariosSection is the SPEC.md heading that receives graduated stories.
const scenariosSection = "## User Scenarios & Testing"

// Manager composes the document model, ID allocator, log writer, and
// open-item registry behind the story transitions.
type Manager struct {
	repo  *repo.Repo
	book  *logbook.Book
	items *openitems.Registry
}

// NewManager creates a Manager over the given repository handle.
func NewManager(r *repo.Repo, book *logbook.Book, items *openitems.Registry) *Manager {
	return &Manager{repo: r, book: book, items: items}
}

// UpdateStatus moves a story to a new status in the overview table.
// Setting in_progress is rejected while another story holds it.
func (m *Manager) UpdateStatus(num int, status Status, blocked bool) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid status: %s (valid: %s)", status, strings.Join(Statuses(), ", "))
	}
	state, err := m.repo.Load(ids.FileState)
	if err != nil {
		return err
	}
	if _, err := FindStory(state, num); err != nil {
		return err
	}

	if status == StatusInProgress {
		stories, err := Stories(state)
		if err != nil {
			return err
		}
		for _, s := range stories {
			if s.Num != num && s.Status == StatusInProgress {
				return NewRejectError(ErrCodeNotInProgress, num, "single in-progress slot",
					fmt.Sprintf("story %d is already In Progress; set it to queued first", s.Num))
			}
		}
	}

	err = state.UpdateTableRow(overviewSection, "#", strconv.Itoa(num),
		map[string]string{"Status": statusCell(status, blocked)})
	if err != nil {
		return err
	}
	m.repo.MarkDirty(ids.FileState)
	return nil
}

// GraduationResult describes a completed (or dry-run) graduation.
type GraduationResult struct {
	Story      int    `json:"story"`
	Title      string `json:"title"`
	Priority   string `json:"priority"`
	Scenarios  int    `json:"scenarios"`
	StoryBlock string `json:"story_block"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

// Graduate runs the graduation transaction for a story. With dryRun the
// rendered story block is returned and nothing is mutated.
//
// Preconditions, all required: the story is In Progress; no open
// blocking question references it; its confidence is at maximum; at
// least one acceptance scenario is fully specified; at least one
// functional requirement is attached. The first unmet precondition
// rejects the transaction with every document untouched.
func (m *Manager) Graduate(num int, dryRun bool) (*GraduationResult, error) {
	state, err := m.repo.Load(ids.FileState)
	if err != nil {
		return nil, err
	}
	spec, err := m.repo.Load(ids.FileSpec)
	if err != nil {
		return nil, err
	}

	story, err := FindStory(state, num)
	if err != nil {
		return nil, err
	}
	if story.Status == StatusGraduated {
		return nil, NewRejectError(ErrCodeAlreadyGraduated, num, "not yet graduated",
			"story has already graduated; subsequent changes are revisions")
	}
	if story.Status != StatusInProgress {
		return nil, NewRejectError(ErrCodeNotInProgress, num, "story in progress",
			fmt.Sprintf("status is %q, expected %q", statusCell(story.Status, story.Blocked), StatusInProgress.Label()))
	}

	blocking, err := m.items.BlockingFor(num)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		blockingIDs := make([]string, len(blocking))
		for i, q := range blocking {
			blockingIDs[i] = q.ID
		}
		return nil, NewRejectError(ErrCodeBlockingOpenItem, num, "no open blocking item",
			fmt.Sprintf("open blocking question(s): %s", strings.Join(blockingIDs, ", ")))
	}

	if story.Confidence != maxConfidence {
		return nil, NewRejectError(ErrCodeConfidenceLow, num, "confidence at maximum",
			fmt.Sprintf("confidence is %q, needs %s", story.Confidence, maxConfidence))
	}

	detail, err := StoryDetail(state, num)
	if err != nil {
		return nil, err
	}
	specified := 0
	for _, sc := range detail.Scenarios {
		if sc.FullySpecified() {
			specified++
		}
	}
	if specified == 0 {
		return nil, NewRejectError(ErrCodeNoScenario, num, "fully specified acceptance scenario",
			"no acceptance scenario free of open question references")
	}

	if err := m.requireRequirement(spec, num); err != nil {
		return nil, err
	}

	block := renderStoryBlock(detail)
	result := &GraduationResult{
		Story:      num,
		Title:      detail.Title,
		Priority:   detail.Priority,
		Scenarios:  len(detail.Scenarios),
		StoryBlock: block,
		DryRun:     dryRun,
	}
	if dryRun {
		return result, nil
	}

	// Mutations start here; everything below lands in one staged commit.
	if err := insertStoryBlock(spec, block); err != nil {
		return nil, err
	}
	touchLastUpdated(spec, m.book.Now().Format("2006-01-02"))
	m.repo.MarkDirty(ids.FileSpec)

	err = state.UpdateTableRow(overviewSection, "#", strconv.Itoa(num), map[string]string{
		"Status":     StatusGraduated.Label(),
		"Confidence": maxConfidence,
	})
	if err != nil {
		return nil, err
	}
	removeStoryDetail(state, num)
	m.repo.MarkDirty(ids.FileState)

	if err := m.sweepWatching(num); err != nil {
		return nil, err
	}
	return result, nil
}

// requireRequirement checks that at least one FR row cites the story.
func (m *Manager) requireRequirement(spec *docmodel.Document, num int) error {
	rows, err := spec.TableRows("### Functional Requirements")
	if err != nil {
		// The requirements table may sit directly under ## Requirements.
		rows, err = spec.TableRows("## Requirements")
		if err != nil {
			return err
		}
	}
	ref := regexp.MustCompile(fmt.Sprintf(`\bStory %d\b`, num))
	for _, row := range rows {
		if ref.MatchString(row["Stories"]) {
			return nil
		}
	}
	return NewRejectError(ErrCodeNoRequirement, num, "functional requirement attached",
		fmt.Sprintf("no functional requirement cites Story %d", num))
}

// sweepWatching removes watching items that explicitly named this story
// as resolved with no revision needed. Items still pending remain.
func (m *Manager) sweepWatching(num int) error {
	questions, err := m.items.List()
	if err != nil {
		return err
	}
	ref := regexp.MustCompile(fmt.Sprintf(`\bStory %d\b`, num))
	resolved := regexp.MustCompile(`(?i)resolved,? no revision needed`)
	for _, q := range questions {
		if q.Category != openitems.Watching {
			continue
		}
		text := q.Text + " " + q.Context + " " + q.Story
		if ref.MatchString(text) && resolved.MatchString(text) {
			if err := m.items.Resolve(q.ID, fmt.Sprintf("Story %d graduated", num)); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderStoryBlock formats a story for the deliverable at version v1.0.
func renderStoryBlock(d Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### User Story %d - %s (Priority: %s)\n\n", d.Num, d.Title, d.Priority)
	b.WriteString("**Revision**: v1.0\n\n")
	if d.Description != "" {
		b.WriteString(d.Description + "\n\n")
	}
	if len(d.Scenarios) > 0 {
		b.WriteString("**Acceptance Scenarios**:\n\n")
		for i, sc := range d.Scenarios {
			fmt.Fprintf(&b, "%d. **Given** %s, **When** %s, **Then** %s\n", i+1, sc.Given, sc.When, sc.Then)
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n")
	return b.String()
}

// insertStoryBlock appends the block to the end of the deliverable's
// scenarios section.
func insertStoryBlock(spec *docmodel.Document, block string) error {
	start, end, ok := spec.FindSectionTree(scenariosSection)
	if !ok {
		return docmodel.NewMissingSectionError(ids.FileSpec, scenariosSection)
	}
	existing := spec.NodeRangeText(start, end)
	spec.ReplaceNodeRange(start, end,
		strings.TrimRight(existing, "\n")+"\n\n"+strings.TrimRight(block, "\n")+"\n")
	return nil
}

var lastUpdatedRe = regexp.MustCompile(`\*\*Last Updated\*\*:\s*\d{4}-\d{2}-\d{2}`)

// touchLastUpdated rewrites the deliverable's Last Updated marker, if any.
func touchLastUpdated(spec *docmodel.Document, date string) {
	text := spec.Serialize()
	updated := lastUpdatedRe.ReplaceAllString(text, "**Last Updated**: "+date)
	if updated != text {
		spec.Reparse(updated)
	}
}

// removeStoryDetail drops the story's subsection from the working state.
// Working detail is scaffolding; the graduated block is the record.
func removeStoryDetail(state *docmodel.Document, num int) {
	start, end, ok := state.FindSectionTree(detailSection)
	if !ok {
		return
	}
	for i := start + 1; i < end; i++ {
		h, isHeading := state.Nodes[i].(*docmodel.Heading)
		if !isHeading {
			continue
		}
		m := detailHeadRe.FindStringSubmatch(strings.TrimSpace(h.Raw))
		if m == nil {
			continue
		}
		if n, _ := strconv.Atoi(m[1]); n != num {
			continue
		}
		subEnd := end
		for j := i + 1; j < end; j++ {
			if next, isH := state.Nodes[j].(*docmodel.Heading); isH && next.Level <= h.Level {
				subEnd = j
				break
			}
		}
		state.ReplaceNodeRange(i, subEnd, "")
		return
	}
}
