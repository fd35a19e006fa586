package lifecycle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specledger/specledger/internal/docmodel"
	"github.com/specledger/specledger/internal/ids"
)

// Status is a story's position in the lifecycle.
type Status string

const (
	StatusNew        Status = "new"
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusGraduated  Status = "in_spec"
)

var statusLabels = map[Status]string{
	StatusNew:        "🆕 New",
	StatusQueued:     "⏳ Queued",
	StatusInProgress: "🔄 In Progress",
	StatusGraduated:  "✅ In SPEC",
}

// Label returns the status cell text used in the Story Status Overview table.
func (s Status) Label() string { return statusLabels[s] }

// ValidStatus reports whether s names a known status.
func ValidStatus(s Status) bool {
	_, ok := statusLabels[s]
	return ok
}

// Statuses lists every status name accepted on the command line.
func Statuses() []string {
	return []string{string(StatusNew), string(StatusQueued), string(StatusInProgress), string(StatusGraduated)}
}

const blockedSuffix = " (blocked)"

// Story is one row of the Story Status Overview table in STATE.md.
type Story struct {
	Num        int    `json:"num"`
	Title      string `json:"title"`
	Priority   string `json:"priority"`
	Status     Status `json:"status"`
	Blocked    bool   `json:"blocked,omitempty"`
	Confidence string `json:"confidence"`
}

// overviewSection is the STATE.md heading that holds the story table.
const overviewSection = "## Story Status Overview"

// detailSection is the STATE.md heading that holds the in-progress story's
// working detail.
const detailSection = "## In-Progress Story Detail"

// parseStatusCell splits a status cell into its Status and blocked overlay.
func parseStatusCell(cell string) (Status, bool) {
	blocked := strings.HasSuffix(cell, blockedSuffix)
	cell = strings.TrimSuffix(cell, blockedSuffix)
	for s, label := range statusLabels {
		if cell == label {
			return s, blocked
		}
	}
	return "", blocked
}

// statusCell renders a status plus blocked overlay as the table cell text.
func statusCell(s Status, blocked bool) string {
	label := s.Label()
	if blocked && (s == StatusQueued || s == StatusInProgress) {
		label += blockedSuffix
	}
	return label
}

// Stories parses the Story Status Overview table.
func Stories(state *docmodel.Document) ([]Story, error) {
	rows, err := state.TableRows(overviewSection)
	if err != nil {
		return nil, err
	}
	var out []Story
	for _, row := range rows {
		num, convErr := strconv.Atoi(row["#"])
		if convErr != nil {
			continue // header-adjacent or placeholder row
		}
		status, blocked := parseStatusCell(row["Status"])
		out = append(out, Story{
			Num:        num,
			Title:      row["Story"],
			Priority:   row["Priority"],
			Status:     status,
			Blocked:    blocked,
			Confidence: row["Confidence"],
		})
	}
	return out, nil
}

// FindStory returns the overview row for one story.
func FindStory(state *docmodel.Document, num int) (Story, error) {
	stories, err := Stories(state)
	if err != nil {
		return Story{}, err
	}
	for _, s := range stories {
		if s.Num == num {
			return s, nil
		}
	}
	return Story{}, fmt.Errorf("story %d not found in %s", num, overviewSection)
}

// Scenario is one Given/When/Then acceptance scenario.
type Scenario struct {
	Given string `json:"given"`
	When  string `json:"when"`
	Then  string `json:"then"`
}

// FullySpecified reports whether the scenario embeds no open question
// reference. A scenario citing a Q-ID is still a draft.
func (s Scenario) FullySpecified() bool {
	re := regexp.MustCompile(`\bQ\d+\b`)
	return !re.MatchString(s.Given) && !re.MatchString(s.When) && !re.MatchString(s.Then)
}

// Detail is the working-state content of the in-progress story.
type Detail struct {
	Num         int
	Title       string
	Priority    string
	Description string
	Scenarios   []Scenario
}

var (
	detailHeadRe   = regexp.MustCompile(`^### Story (\d+): (.+?) \(Priority: (P\d+)\)\s*$`)
	scenarioItemRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	givenWhenThen  = regexp.MustCompile(`(?s)\*\*Given\*\*\s+(.+?)\s+\*\*When\*\*\s+(.+?)\s+\*\*Then\*\*\s+(.+)`)
)

// StoryDetail extracts the in-progress detail for a story from STATE.md.
func StoryDetail(state *docmodel.Document, num int) (Detail, error) {
	start, end, ok := state.FindSectionTree(detailSection)
	if !ok {
		return Detail{}, docmodel.NewMissingSectionError(ids.FileState, detailSection)
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
		n, _ := strconv.Atoi(m[1])
		if n != num {
			continue
		}

		subEnd := end
		for j := i + 1; j < end; j++ {
			if next, isH := state.Nodes[j].(*docmodel.Heading); isH && next.Level <= h.Level {
				subEnd = j
				break
			}
		}
		body := state.NodeRangeText(i+1, subEnd)

		d := Detail{Num: num, Title: m[2], Priority: m[3]}
		d.Description, d.Scenarios = parseDetailBody(body)
		return d, nil
	}
	return Detail{}, fmt.Errorf("story %d details not found in %s", num, detailSection)
}

// parseDetailBody separates the free description from the draft scenarios.
func parseDetailBody(body string) (string, []Scenario) {
	marker := "**Draft Acceptance Scenarios**:"
	idx := strings.Index(body, marker)
	if idx < 0 {
		return strings.TrimSpace(body), nil
	}
	description := strings.TrimSpace(body[:idx])
	rest := body[idx+len(marker):]
	if next := strings.Index(rest, "\n**"); next >= 0 {
		rest = rest[:next]
	}

	var scenarios []Scenario
	items := scenarioItemRe.Split(rest, -1)
	for _, item := range items[1:] { // Split's first piece precedes item 1
		m := givenWhenThen.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		scenarios = append(scenarios, Scenario{
			Given: strings.TrimSpace(m[1]),
			When:  strings.TrimSpace(m[2]),
			Then:  strings.TrimSpace(m[3]),
		})
	}
	return description, scenarios
}
