package validate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validator finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	File     string   `json:"file,omitempty"`
	Message  string   `json:"message"`
}

// Finding codes (E600-E619 errors, W620-W639 warnings).
const (
	CodeMissingFile    = "E601" // required document absent
	CodeMissingSection = "E602" // required section absent
	CodeDanglingRef    = "E603" // reference to an ID never defined
	CodeDuplicateID    = "E604" // ID defined more than once
	CodeMultiProgress  = "E605" // more than one story In Progress
	CodeBadStatus      = "E606" // unrecognized status cell
	CodeSequenceGap    = "W621" // gap in an ID sequence
)

// Report aggregates findings grouped by severity.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Clean reports whether nothing was found at all.
func (r *Report) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

func (r *Report) errorf(code, file, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{
		Severity: SeverityError, Code: code, File: file,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *Report) warnf(code, file, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{
		Severity: SeverityWarning, Code: code, File: file,
		Message: fmt.Sprintf(format, args...),
	})
}

// Render formats the report for terminal output, errors first.
func (r *Report) Render() string {
	if r.Clean() {
		return "✅ All checks passed.\n"
	}
	var b strings.Builder
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(r.Errors))
		for _, issue := range r.Errors {
			writeIssue(&b, issue)
		}
	}
	if len(r.Warnings) > 0 {
		if len(r.Errors) > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Warnings (%d):\n", len(r.Warnings))
		for _, issue := range r.Warnings {
			writeIssue(&b, issue)
		}
	}
	return b.String()
}

func writeIssue(b *strings.Builder, issue Issue) {
	if issue.File != "" {
		fmt.Fprintf(b, "  [%s] %s: %s\n", issue.Code, issue.File, issue.Message)
	} else {
		fmt.Fprintf(b, "  [%s] %s\n", issue.Code, issue.Message)
	}
}

// RenderJSON formats the report as JSON.
func (r *Report) RenderJSON() (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}
