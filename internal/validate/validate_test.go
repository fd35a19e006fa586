package validate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/openitems"
	"github.com/specledger/specledger/internal/repo"
	"github.com/specledger/specledger/internal/testutil"
	"github.com/specledger/specledger/internal/validate"
)

func runValidator(t *testing.T, dir string) *validate.Report {
	t.Helper()
	r, err := repo.Open(dir)
	require.NoError(t, err)
	report, err := validate.New(r).Run()
	require.NoError(t, err)
	return report
}

func issueCodes(issues []validate.Issue) []string {
	codes := make([]string, len(issues))
	for i, issue := range issues {
		codes[i] = issue.Code
	}
	return codes
}

func TestRun_CleanWorkspace(t *testing.T) {
	ws := testutil.Seed(t)
	report := runValidator(t, ws.Dir)
	assert.True(t, report.Clean(), "unexpected findings: %+v", report)
	assert.Equal(t, "✅ All checks passed.\n", report.Render())
}

func TestRun_MissingDocument(t *testing.T) {
	ws := testutil.Seed(t)
	require.NoError(t, os.Remove(filepath.Join(ws.Dir, ids.FileState)))

	report := runValidator(t, ws.Dir)
	assert.Contains(t, issueCodes(report.Errors), validate.CodeMissingFile)
}

func TestRun_MissingSection(t *testing.T) {
	ws := testutil.Seed(t)
	spec := ws.Read(ids.FileSpec)
	ws.Write(ids.FileSpec, strings.Replace(spec, "## Requirements\n", "## Things\n", 1))

	report := runValidator(t, ws.Dir)
	require.Contains(t, issueCodes(report.Errors), validate.CodeMissingSection)
	found := false
	for _, issue := range report.Errors {
		if issue.Code == validate.CodeMissingSection {
			assert.Equal(t, ids.FileSpec, issue.File)
			assert.Contains(t, issue.Message, `"## Requirements"`)
			found = true
		}
	}
	assert.True(t, found)
}

func TestRun_DanglingReference(t *testing.T) {
	ws := testutil.Seed(t)
	spec := ws.Read(ids.FileSpec)
	ws.Write(ids.FileSpec, spec+"\nChunk sizing depends on Q9.\n")

	report := runValidator(t, ws.Dir)
	require.Len(t, report.Errors, 1)
	issue := report.Errors[0]
	assert.Equal(t, validate.CodeDanglingRef, issue.Code)
	assert.Equal(t, ids.FileSpec, issue.File)
	assert.Contains(t, issue.Message, "Q9 is cited but never defined")
}

func TestRun_ResolvedQuestionSurvivesInArchiveTrail(t *testing.T) {
	// D1 cites Q5, which no registry entry defines. The decision log
	// mention itself keeps the citation resolvable.
	ws := testutil.Seed(t)
	state := ws.Read(ids.FileState)
	ws.Write(ids.FileState, state+"\nEarlier scoping recorded under Q5.\n")

	report := runValidator(t, ws.Dir)
	assert.Empty(t, report.Errors)
}

func TestRun_ResolutionCommentKeepsCitationsValid(t *testing.T) {
	// Resolving swaps the entry for a comment that itself mentions the
	// ID. The comment must count as the question's trail, not as a
	// dangling citation.
	ws := testutil.Seed(t)
	r, err := repo.Open(ws.Dir)
	require.NoError(t, err)
	require.NoError(t, openitems.New(r).Resolve("Q3", "withdrawn"))
	require.NoError(t, r.Commit())

	report := runValidator(t, ws.Dir)
	assert.Empty(t, report.Errors, "findings: %+v", report.Errors)
}

func TestRun_DuplicateID(t *testing.T) {
	ws := testutil.Seed(t)
	spec := ws.Read(ids.FileSpec)
	dup := "| FR-001 | System MUST index notes by tag | Story 1 | ✅ Confirmed |\n"
	ws.Write(ids.FileSpec, strings.Replace(spec, dup, dup+dup, 1))

	report := runValidator(t, ws.Dir)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, validate.CodeDuplicateID, report.Errors[0].Code)
	assert.Contains(t, report.Errors[0].Message, "FR-001 defined 2 times")
}

func TestRun_SequenceGapWarns(t *testing.T) {
	ws := testutil.Seed(t)
	spec := ws.Read(ids.FileSpec)
	ws.Write(ids.FileSpec, strings.Replace(spec,
		"| FR-002 | System MUST export notebooks while offline | Story 2 | 🔄 Draft |",
		"| FR-002 | System MUST export notebooks while offline | Story 2 | 🔄 Draft |\n| FR-004 | System MUST verify archive checksums | Story 2 | 🔄 Draft |", 1))

	report := runValidator(t, ws.Dir)
	assert.Empty(t, report.Errors)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, validate.CodeSequenceGap, report.Warnings[0].Code)
	assert.Contains(t, report.Warnings[0].Message, "FR-002 jumps to FR-004")
	assert.False(t, report.Clean())
}

func TestRun_StoryNumberingGapsAreFine(t *testing.T) {
	ws := testutil.Seed(t)
	state := ws.Read(ids.FileState)
	ws.Write(ids.FileState, strings.Replace(state,
		"| 3 | Shared notebooks", "| 7 | Shared notebooks", 1))

	report := runValidator(t, ws.Dir)
	assert.Empty(t, report.Warnings)
}

func TestRun_MultipleInProgress(t *testing.T) {
	ws := testutil.Seed(t)
	state := ws.Read(ids.FileState)
	ws.Write(ids.FileState, strings.Replace(state,
		"| 3 | Shared notebooks | P3 | ⏳ Queued | 60% |",
		"| 3 | Shared notebooks | P3 | 🔄 In Progress | 60% |", 1))

	report := runValidator(t, ws.Dir)
	require.Contains(t, issueCodes(report.Errors), validate.CodeMultiProgress)
	for _, issue := range report.Errors {
		if issue.Code == validate.CodeMultiProgress {
			assert.Contains(t, issue.Message, "2, 3")
		}
	}
}

func TestRun_UnrecognizedStatus(t *testing.T) {
	ws := testutil.Seed(t)
	state := ws.Read(ids.FileState)
	ws.Write(ids.FileState, strings.Replace(state,
		"⏳ Queued | 60%", "❓ Someday | 60%", 1))

	report := runValidator(t, ws.Dir)
	require.Contains(t, issueCodes(report.Errors), validate.CodeBadStatus)
}

func TestReport_Render(t *testing.T) {
	report := &validate.Report{
		Errors: []validate.Issue{
			{Severity: validate.SeverityError, Code: validate.CodeDanglingRef, File: "SPEC.md", Message: "Q9 is cited but never defined"},
		},
		Warnings: []validate.Issue{
			{Severity: validate.SeverityWarning, Code: validate.CodeSequenceGap, File: "SPEC.md", Message: "FR-002 jumps to FR-004"},
		},
	}
	out := report.Render()
	assert.Equal(t, "Errors (1):\n  [E603] SPEC.md: Q9 is cited but never defined\n\nWarnings (1):\n  [W621] SPEC.md: FR-002 jumps to FR-004\n", out)
}

func TestReport_RenderJSON(t *testing.T) {
	report := &validate.Report{}
	out, err := report.RenderJSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"errors": null`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}
