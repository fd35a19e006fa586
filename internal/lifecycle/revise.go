package lifecycle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specledger/specledger/internal/docmodel"
	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/logbook"
)

var (
	versionRe = regexp.MustCompile(`\*\*Revision\*\*: v(\d+)\.(\d+)`)
	// Graduated story headings may carry a revision marker emoji.
	storyHeadFmt = `(?m)^### (?:🔄 )?User Story %d\b.*$`
)

// RevisionResult describes a recorded revision.
type RevisionResult struct {
	ID      string `json:"id"`
	Story   int    `json:"story"`
	Version string `json:"version"`
	Scope   string `json:"scope"`
}

// Revise records a change to an already graduated story: the revision
// is appended to the revision log, the story's section in the
// deliverable is updated in place, and its version marker is bumped.
// Additive and modificative scopes bump the minor version, structural
// bumps the major.
func (m *Manager) Revise(rev logbook.Revision) (*RevisionResult, error) {
	if !logbook.ValidScope(rev.Scope) {
		return nil, NewRejectError(ErrCodeInvalidScope, rev.Story, "recognized scope",
			fmt.Sprintf("scope %q is not additive, modificative, or structural", rev.Scope))
	}

	spec, err := m.repo.Load(ids.FileSpec)
	if err != nil {
		return nil, err
	}
	start, end, err := graduatedSection(spec, rev.Story)
	if err != nil {
		return nil, err
	}

	id, err := m.book.LogRevision(rev)
	if err != nil {
		return nil, err
	}

	body := spec.NodeRangeText(start, end)
	updated, version := applyRevision(body, rev)
	spec.ReplaceNodeRange(start, end, updated)
	m.repo.MarkDirty(ids.FileSpec)

	return &RevisionResult{ID: id, Story: rev.Story, Version: version, Scope: string(rev.Scope)}, nil
}

// graduatedSection locates a story's section in the deliverable,
// spanning its heading to the next heading of equal or higher level.
func graduatedSection(spec *docmodel.Document, story int) (start, end int, err error) {
	headRe := regexp.MustCompile(fmt.Sprintf(storyHeadFmt, story))
	for i, node := range spec.Nodes {
		h, ok := node.(*docmodel.Heading)
		if !ok || !headRe.MatchString(h.Raw) {
			continue
		}
		end = len(spec.Nodes)
		for j := i + 1; j < len(spec.Nodes); j++ {
			if next, isH := spec.Nodes[j].(*docmodel.Heading); isH && next.Level <= h.Level {
				end = j
				break
			}
		}
		return i, end, nil
	}
	return 0, 0, NewRejectError(ErrCodeNotGraduated, story, "story graduated",
		fmt.Sprintf("no graduated section for story %d; queue and graduate it first", story))
}

// applyRevision edits a story section's text and returns the new body
// plus the bumped version string.
func applyRevision(body string, rev logbook.Revision) (string, string) {
	if rev.Before != "" && strings.Contains(body, rev.Before) {
		body = strings.Replace(body, rev.Before, rev.After, 1)
	} else if rev.After != "" {
		// No anchor text to swap; append the change under the heading.
		body = strings.TrimRight(body, "\n") + "\n\n" + strings.TrimSpace(rev.After) + "\n"
	}
	version := "v1.0"
	body = versionRe.ReplaceAllStringFunc(body, func(mark string) string {
		m := versionRe.FindStringSubmatch(mark)
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		if rev.Scope == logbook.ScopeStructural {
			major++
			minor = 0
		} else {
			minor++
		}
		version = fmt.Sprintf("v%d.%d", major, minor)
		return "**Revision**: " + version
	})
	return body, version
}
