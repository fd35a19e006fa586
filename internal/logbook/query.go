package logbook

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter narrows a set of log entries. Zero-valued fields do not filter.
type Filter struct {
	// IDs keeps only entries whose ID is in the set.
	IDs []string
	// Story keeps entries whose story field cites "Story <n>".
	Story string
	// Questions keeps entries whose question field cites any of these IDs.
	Questions []string
	// Keyword is a case-insensitive match over an entry's searchable text.
	Keyword string
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return len(f.IDs) == 0 && f.Story == "" && len(f.Questions) == 0 && f.Keyword == ""
}

func (f Filter) idSet() map[string]bool {
	if len(f.IDs) == 0 {
		return nil
	}
	set := make(map[string]bool, len(f.IDs))
	for _, id := range f.IDs {
		set[strings.TrimSpace(id)] = true
	}
	return set
}

func (f Filter) storyRe() *regexp.Regexp {
	if f.Story == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)\bStory ` + regexp.QuoteMeta(f.Story) + `\b`)
}

func (f Filter) questionRe() *regexp.Regexp {
	if len(f.Questions) == 0 {
		return nil
	}
	quoted := make([]string, len(f.Questions))
	for i, q := range f.Questions {
		quoted[i] = regexp.QuoteMeta(strings.TrimSpace(q)) + `\b`
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

func keywordMatch(keyword string, fields ...string) bool {
	kw := strings.ToLower(keyword)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), kw) {
			return true
		}
	}
	return false
}

// FilterDecisions returns the decisions matching f, preserving log order.
func FilterDecisions(decisions []Decision, f Filter) []Decision {
	idSet, storyRe, questionRe := f.idSet(), f.storyRe(), f.questionRe()
	var out []Decision
	for _, d := range decisions {
		if idSet != nil && !idSet[d.ID] {
			continue
		}
		if storyRe != nil && !storyRe.MatchString(d.Stories) {
			continue
		}
		if questionRe != nil && !questionRe.MatchString(d.Questions) {
			continue
		}
		if f.Keyword != "" && !keywordMatch(f.Keyword, d.Title, d.Context, d.Rationale) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FilterResearch returns the research notes matching f, preserving log order.
func FilterResearch(notes []Research, f Filter) []Research {
	idSet, storyRe, questionRe := f.idSet(), f.storyRe(), f.questionRe()
	var out []Research
	for _, r := range notes {
		if idSet != nil && !idSet[r.ID] {
			continue
		}
		if storyRe != nil && !storyRe.MatchString(r.Stories) {
			continue
		}
		if questionRe != nil && !questionRe.MatchString(r.Questions) {
			continue
		}
		if f.Keyword != "" && !keywordMatch(f.Keyword, r.Topic, r.Findings, r.Implications) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterIterations returns the iteration summaries matching f.
func FilterIterations(iterations []Iteration, f Filter) []Iteration {
	idSet := f.idSet()
	var out []Iteration
	for _, it := range iterations {
		if idSet != nil && !idSet[it.ID] {
			continue
		}
		if f.Story != "" {
			re := f.storyRe()
			if !re.MatchString(it.Outcomes) && !re.MatchString(it.Activities) && !re.MatchString(it.Goals) {
				continue
			}
		}
		if qre := f.questionRe(); qre != nil && !qre.MatchString(it.QuestionsAdded) {
			continue
		}
		if f.Keyword != "" && !keywordMatch(f.Keyword, it.Phase, it.Goals, it.Outcomes) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// FindRevisionsByStory returns the revisions targeting a story, in log order.
func FindRevisionsByStory(revisions []Revision, story int) []Revision {
	var out []Revision
	for _, rev := range revisions {
		if rev.Story == story {
			out = append(out, rev)
		}
	}
	return out
}

// FindByStoryRef is a convenience over the decision log for the lifecycle
// package: the IDs of decisions citing "Story <n>".
func FindByStoryRef(decisions []Decision, story int) []string {
	var out []string
	for _, d := range FilterDecisions(decisions, Filter{Story: fmt.Sprintf("%d", story)}) {
		out = append(out, d.ID)
	}
	return out
}
