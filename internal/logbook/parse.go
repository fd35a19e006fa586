package logbook

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/specledger/specledger/internal/ids"
)

var (
	decisionHead  = regexp.MustCompile(`(?m)^## (D\d+):\s*(.+?)\s*—\s*(.+)$`)
	researchHead  = regexp.MustCompile(`(?m)^## (R\d+):\s*(.+?)\s*—\s*(.+)$`)
	iterationHead = regexp.MustCompile(`(?m)^## (ITR-\d+):\s*(.+?)\s*—\s*(.+)$`)
	revisionHead  = regexp.MustCompile(`(?m)^## (REV-\d+):\s*Story\s*(\d+)\s*—\s*(.+)$`)
)

// entryBlock is one raw log entry: the header match plus body lines.
type entryBlock struct {
	groups []string
	body   []string
}

// splitEntries cuts a log document into entry blocks at each header match.
func splitEntries(content string, head *regexp.Regexp) []entryBlock {
	locs := head.FindAllStringSubmatchIndex(content, -1)
	blocks := make([]entryBlock, 0, len(locs))
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		section := content[loc[0]:end]
		lines := strings.Split(strings.TrimSpace(section), "\n")

		m := head.FindStringSubmatch(lines[0])
		if m == nil {
			continue
		}
		blocks = append(blocks, entryBlock{groups: m, body: lines[1:]})
	}
	return blocks
}

// scanFields walks body lines assigning content to labeled fields. A line
// beginning with a known "**Label**:" starts that field with the remainder
// of the line; following unlabeled lines accumulate into it.
func scanFields(body []string, labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	var current string
	var acc []string
	flush := func() {
		if current != "" {
			out[current] = strings.TrimSpace(strings.Join(acc, "\n"))
		}
		acc = nil
	}
	for _, line := range body {
		matched := false
		for label, key := range labels {
			if strings.HasPrefix(line, label) {
				flush()
				current = key
				acc = []string{strings.TrimSpace(strings.TrimPrefix(line, label))}
				matched = true
				break
			}
		}
		if !matched && current != "" {
			acc = append(acc, line)
		}
	}
	flush()
	return out
}

// Decisions parses every Decision entry from the log. A log that has
// never received an entry yields an empty slice.
func (b *Book) Decisions() ([]Decision, error) {
	if !b.repo.Exists(ids.FileDecisions) {
		return nil, nil
	}
	doc, err := b.repo.Load(ids.FileDecisions)
	if err != nil {
		return nil, err
	}
	labels := map[string]string{
		"**Context**:":            "context",
		"**Question**:":           "question",
		"**Options Considered**:": "options",
		"**Decision**:":           "decision",
		"**Rationale**:":          "rationale",
		"**Implications**:":       "implications",
		"**Stories Affected**:":   "stories",
		"**Related Questions**:":  "questions",
	}
	var out []Decision
	for _, blk := range splitEntries(doc.Serialize(), decisionHead) {
		f := scanFields(blk.body, labels)
		out = append(out, Decision{
			ID:           blk.groups[1],
			Title:        blk.groups[2],
			Date:         blk.groups[3],
			Context:      f["context"],
			Question:     f["question"],
			Options:      f["options"],
			Chosen:       f["decision"],
			Rationale:    f["rationale"],
			Implications: f["implications"],
			Stories:      f["stories"],
			Questions:    f["questions"],
		})
	}
	return out, nil
}

// ResearchNotes parses every Research entry from the log.
func (b *Book) ResearchNotes() ([]Research, error) {
	if !b.repo.Exists(ids.FileResearch) {
		return nil, nil
	}
	doc, err := b.repo.Load(ids.FileResearch)
	if err != nil {
		return nil, err
	}
	labels := map[string]string{
		"**Purpose**:":           "purpose",
		"**Approach**:":          "approach",
		"**Findings**:":          "findings",
		"**Industry Patterns**:": "patterns",
		"**Relevant Examples**:": "examples",
		"**Implications**:":      "implications",
		"**Stories Informed**:":  "stories",
		"**Related Questions**:": "questions",
	}
	var out []Research
	for _, blk := range splitEntries(doc.Serialize(), researchHead) {
		f := scanFields(blk.body, labels)
		out = append(out, Research{
			ID:           blk.groups[1],
			Topic:        blk.groups[2],
			Date:         blk.groups[3],
			Purpose:      f["purpose"],
			Approach:     f["approach"],
			Findings:     f["findings"],
			Patterns:     f["patterns"],
			Examples:     f["examples"],
			Implications: f["implications"],
			Stories:      f["stories"],
			Questions:    f["questions"],
		})
	}
	return out, nil
}

// Iterations parses every Iteration summary from the log.
func (b *Book) Iterations() ([]Iteration, error) {
	if !b.repo.Exists(ids.FileIterations) {
		return nil, nil
	}
	doc, err := b.repo.Load(ids.FileIterations)
	if err != nil {
		return nil, err
	}
	labels := map[string]string{
		"**Phase**:":              "phase",
		"**Goals**:":              "goals",
		"**Activities**:":         "activities",
		"**Key Outcomes**:":       "outcomes",
		"**Questions Added**:":    "questions_added",
		"**Decisions Made**:":     "decisions_made",
		"**Research Conducted**:": "research_conducted",
		"**Next Steps**:":         "next_steps",
	}
	var out []Iteration
	for _, blk := range splitEntries(doc.Serialize(), iterationHead) {
		f := scanFields(blk.body, labels)
		out = append(out, Iteration{
			ID:                blk.groups[1],
			DateRange:         blk.groups[2],
			Phase:             blk.groups[3],
			Goals:             f["goals"],
			Activities:        f["activities"],
			Outcomes:          f["outcomes"],
			QuestionsAdded:    f["questions_added"],
			DecisionsMade:     f["decisions_made"],
			ResearchConducted: f["research_conducted"],
			NextSteps:         f["next_steps"],
		})
	}
	return out, nil
}

// Revisions parses every Revision entry from the log.
func (b *Book) Revisions() ([]Revision, error) {
	if !b.repo.Exists(ids.FileRevisions) {
		return nil, nil
	}
	doc, err := b.repo.Load(ids.FileRevisions)
	if err != nil {
		return nil, err
	}
	labels := map[string]string{
		"**Change Type**:": "change_type",
		"**Scope**:":       "scope",
		"**Trigger**:":     "trigger",
		"**Before**:":      "before",
		"**After**:":       "after",
		"**Decision**:":    "decision",
	}
	var out []Revision
	for _, blk := range splitEntries(doc.Serialize(), revisionHead) {
		f := scanFields(blk.body, labels)
		story, _ := strconv.Atoi(blk.groups[2])
		out = append(out, Revision{
			ID:         blk.groups[1],
			Story:      story,
			Date:       blk.groups[3],
			ChangeType: f["change_type"],
			Scope:      Scope(f["scope"]),
			Trigger:    f["trigger"],
			Before:     f["before"],
			After:      f["after"],
			Decision:   f["decision"],
		})
	}
	return out, nil
}
