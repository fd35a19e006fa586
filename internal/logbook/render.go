package logbook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Output shapes for find queries.
const (
	OutputTable   = "table"
	OutputSummary = "summary"
	OutputJSON    = "json"
)

// ValidOutput reports whether shape is a recognized query output shape.
func ValidOutput(shape string) bool {
	switch shape {
	case OutputTable, OutputSummary, OutputJSON:
		return true
	}
	return false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}

func renderTable(header []string, rows [][]string, empty string) string {
	if len(rows) == 0 {
		return empty
	}
	lines := []string{
		"| " + strings.Join(header, " | ") + " |",
		"|" + strings.Repeat("----|", len(header)),
	}
	for _, row := range rows {
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

func renderJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RenderDecisions formats a decision list in the requested output shape.
func RenderDecisions(decisions []Decision, shape string) (string, error) {
	switch shape {
	case OutputJSON:
		return renderJSON(decisions)
	case OutputSummary:
		var lines []string
		for _, d := range decisions {
			lines = append(lines, fmt.Sprintf("%s: %s", d.ID, d.Title))
		}
		return strings.Join(lines, "\n"), nil
	default:
		rows := make([][]string, len(decisions))
		for i, d := range decisions {
			rows[i] = []string{d.ID, truncate(d.Title, 50), d.Date, d.Stories}
		}
		return renderTable([]string{"ID", "Title", "Date", "Stories"}, rows, "No decisions found."), nil
	}
}

// RenderResearch formats a research list in the requested output shape.
func RenderResearch(notes []Research, shape string) (string, error) {
	switch shape {
	case OutputJSON:
		return renderJSON(notes)
	case OutputSummary:
		var lines []string
		for _, r := range notes {
			lines = append(lines, fmt.Sprintf("%s: %s", r.ID, r.Topic))
		}
		return strings.Join(lines, "\n"), nil
	default:
		rows := make([][]string, len(notes))
		for i, r := range notes {
			rows[i] = []string{r.ID, truncate(r.Topic, 50), r.Date, r.Stories}
		}
		return renderTable([]string{"ID", "Topic", "Date", "Stories"}, rows, "No research found."), nil
	}
}

// RenderIterations formats an iteration list in the requested output shape.
func RenderIterations(iterations []Iteration, shape string) (string, error) {
	switch shape {
	case OutputJSON:
		return renderJSON(iterations)
	case OutputSummary:
		var lines []string
		for _, it := range iterations {
			lines = append(lines, fmt.Sprintf("%s: %s — %s", it.ID, it.DateRange, it.Phase))
		}
		return strings.Join(lines, "\n"), nil
	default:
		rows := make([][]string, len(iterations))
		for i, it := range iterations {
			rows[i] = []string{it.ID, it.DateRange, truncate(it.Phase, 40), truncate(it.Outcomes, 50)}
		}
		return renderTable([]string{"ID", "Date", "Phase", "Outcomes"}, rows, "No iterations found."), nil
	}
}
