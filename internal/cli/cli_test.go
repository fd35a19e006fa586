package cli_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/cli"
	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/testutil"
)

// runCLI executes one command against a workspace, capturing output.
func runCLI(t *testing.T, ws *testutil.Workspace, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(append([]string{"--dir", ws.Dir}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAllocateID_Text(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "allocate-id", "question")
	require.NoError(t, err)
	assert.Equal(t, "Q6\n", out)

	// Allocation is read-only: asking twice yields the same ID.
	out, _, err = runCLI(t, ws, "", "allocate-id", "question")
	require.NoError(t, err)
	assert.Equal(t, "Q6\n", out)
}

func TestAllocateID_JSON(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "allocate-id", "decision", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "decision", resp.Data["entity"])
	assert.Equal(t, "D2", resp.Data["id"])
}

func TestAllocateID_UnknownEntity(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "allocate-id", "widget")
	require.Error(t, err)
	assert.Equal(t, 1, cli.GetExitCode(err))
	assert.Contains(t, out, "Error [E100]")
	assert.Contains(t, out, "unknown entity type")
}

func TestAddQuestion_Flags(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "add-question",
		"--question", "Does export include attachments?",
		"--category", "blocking",
		"--story", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added Q6 to blocking category")
	assert.Contains(t, out, "  Question: Does export include attachments?")
	assert.Contains(t, out, "  Story: Story 2")
	assert.Contains(t, ws.Read(ids.FileQuestions), "- **Q6**: Does export include attachments?")
}

func TestAddQuestion_FromStdin(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "Does sync pause on battery saver?|research",
		"add-question", "--from-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added Q6 to research category")
}

func TestAddQuestion_StdinTooFewFields(t *testing.T) {
	ws := testutil.Seed(t)
	_, _, err := runCLI(t, ws, "just a question", "add-question", "--from-stdin")
	require.Error(t, err)
	assert.Equal(t, 1, cli.GetExitCode(err))
	assert.Contains(t, err.Error(), "question|category")
}

func TestAddQuestion_MissingFlags(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "add-question", "--question", "no category")
	require.Error(t, err)
	assert.Equal(t, 1, cli.GetExitCode(err))
	assert.Contains(t, out, "Error [E100]")
}

func TestResolveQuestion(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "resolve-question", "Q3", "--note", "Answered by R1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Resolved Q3")
	assert.Contains(t, out, "Log the resolution with log-decision if not already recorded")

	content := ws.Read(ids.FileQuestions)
	assert.NotContains(t, content, "- **Q3**:")
	assert.Contains(t, content, "<!-- Resolved: Q3 - Answered by R1 -->")
}

func TestMigrateQuestion(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "migrate-question", "Q3", "--to", "blocking")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Migrated Q3 to blocking category")
}

func TestLogDecisionAndFind(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "log-decision",
		"--title", "Export container is zip",
		"--decision", "Zip with manifest",
		"--stories", "Story 2",
		"--questions", "Q1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Logged D2: Export container is zip")
	assert.Contains(t, out, "  Stories: Story 2")
	assert.Contains(t, out, "  Questions: Q1")

	out, _, err = runCLI(t, ws, "", "find-decisions", "--story", "2", "--output", "summary")
	require.NoError(t, err)
	assert.Equal(t, "D2: Export container is zip\n", out)

	out, _, err = runCLI(t, ws, "", "find-decisions", "--keyword", "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "No decisions found.\n", out)
}

func TestLogDecision_FromStdin(t *testing.T) {
	ws := testutil.Seed(t)
	record := "Chunked writes|Resume needs checkpoints|single pass vs chunks|chunks of 4MB|resumable|slower on tiny notebooks|Story 2|Q1"
	out, _, err := runCLI(t, ws, record, "log-decision", "--from-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Logged D2: Chunked writes")
	assert.Contains(t, ws.Read(ids.FileDecisions), "**Decision**: chunks of 4MB")
}

func TestUpdateStoryStatus(t *testing.T) {
	ws := testutil.Seed(t)

	out, _, err := runCLI(t, ws, "", "update-story-status", "3", "--status", "in_progress")
	require.Error(t, err)
	assert.Equal(t, 1, cli.GetExitCode(err))
	assert.Contains(t, out, "Error [E401]")

	out, _, err = runCLI(t, ws, "", "update-story-status", "2", "--status", "queued")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Updated Story 2 status to: ⏳ Queued")

	out, _, err = runCLI(t, ws, "", "update-story-status", "3", "--status", "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Updated Story 3 status to: 🔄 In Progress")
}

func TestUpdateStoryStatus_BadNumber(t *testing.T) {
	ws := testutil.Seed(t)
	_, _, err := runCLI(t, ws, "", "update-story-status", "zero", "--status", "queued")
	require.Error(t, err)
	assert.Equal(t, 1, cli.GetExitCode(err))
}

func TestGraduateStory_BlockedByOpenQuestion(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "graduate-story", "2")
	require.Error(t, err)
	assert.Equal(t, 1, cli.GetExitCode(err))
	assert.Contains(t, out, "Error [E402]")
	assert.Contains(t, out, "Q1")
}

func TestGraduateStory_DryRun(t *testing.T) {
	ws := testutil.Seed(t)
	_, _, err := runCLI(t, ws, "", "resolve-question", "Q1")
	require.NoError(t, err)

	before := ws.Read(ids.FileSpec)
	out, _, err := runCLI(t, ws, "", "graduate-story", "2", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN - Would add the following to SPEC.md:")
	assert.Contains(t, out, "### User Story 2 - Offline export (Priority: P2)")
	assert.Contains(t, out, "Would update Story 2 status to '✅ In SPEC' in STATE.md")
	assert.Equal(t, before, ws.Read(ids.FileSpec), "dry run must not modify the deliverable")
}

func TestGraduateStory_Success(t *testing.T) {
	ws := testutil.Seed(t)
	_, _, err := runCLI(t, ws, "", "resolve-question", "Q1")
	require.NoError(t, err)

	out, _, err := runCLI(t, ws, "", "graduate-story", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Graduated Story 2: Offline export")
	assert.Contains(t, out, "  Priority: P2")
	assert.Contains(t, out, "  Scenarios: 2")
	assert.Contains(t, out, "  Updated SPEC.md and STATE.md")
	assert.Contains(t, ws.Read(ids.FileSpec), "### User Story 2 - Offline export (Priority: P2)")
}

func TestAddRequirement_AddAndUpdate(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "add-requirement",
		"--requirement", "System MUST checksum every archive chunk",
		"--stories", "Story 2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added FR-003: System MUST checksum every archive chunk")
	assert.Contains(t, out, "  Confidence: 🔄 Draft")
	assert.Contains(t, ws.Read(ids.FileSpec), "| FR-003 | System MUST checksum every archive chunk | Story 2 | 🔄 Draft |")

	out, _, err = runCLI(t, ws, "", "add-requirement",
		"--id", "FR-002",
		"--requirement", "System MUST export notebooks while offline",
		"--stories", "Story 2",
		"--confidence", "✅ Confirmed")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Updated FR-002: System MUST export notebooks while offline")
	assert.Contains(t, ws.Read(ids.FileSpec), "| FR-002 | System MUST export notebooks while offline | Story 2 | ✅ Confirmed |")
}

func TestAddRequirement_LongSummaryKeepsValidEncoding(t *testing.T) {
	ws := testutil.Seed(t)
	text := "Systém MUST " + strings.Repeat("répliquer ", 10) + "archives"
	out, _, err := runCLI(t, ws, "", "add-requirement",
		"--requirement", text,
		"--stories", "Story 2")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, string([]rune(text)[:60])+"...")
}

func TestAddEdgeCase_FromStdinWithLeadingID(t *testing.T) {
	ws := testutil.Seed(t)
	record := "EC-01|Export interrupted mid-write|Restart the chunk and verify checksum|Story 2"
	out, _, err := runCLI(t, ws, record, "add-edge-case", "--from-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Updated EC-01")
	assert.Contains(t, ws.Read(ids.FileSpec), "Restart the chunk and verify checksum")
}

func TestAddSuccessCriteria(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "add-success-criteria",
		"--criterion", "Exports complete offline",
		"--measurement", "100 sampled exports succeed with radios off",
		"--stories", "Story 2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added SC-002: Exports complete offline")
}

func TestAddRevision(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "add-revision",
		"--story", "1",
		"--change-type", "wording",
		"--scope", "additive",
		"--before", "matches appear within 50ms.",
		"--after", "matches appear within 30ms.")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Logged REV-001: Story 1 revised to v1.1 (additive)")
	assert.Contains(t, ws.Read(ids.FileSpec), "**Revision**: v1.1")
}

func TestValidate_ExitCodes(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "validate")
	require.NoError(t, err)
	assert.Equal(t, "✅ All checks passed.\n", out)

	// A numbering gap downgrades the run to warnings only.
	spec := ws.Read(ids.FileSpec)
	ws.Write(ids.FileSpec, strings.Replace(spec,
		"| FR-002 |", "| FR-004 |", 1))
	out, _, err = runCLI(t, ws, "", "validate")
	require.Error(t, err)
	assert.Equal(t, 2, cli.GetExitCode(err))
	assert.Contains(t, out, "[W621]")

	// A dangling reference is an error.
	ws.Write(ids.FileSpec, spec+"\nBlocked on Q9.\n")
	out, _, err = runCLI(t, ws, "", "validate")
	require.Error(t, err)
	assert.Equal(t, 1, cli.GetExitCode(err))
	assert.Contains(t, out, "[E603]")
}

func TestValidate_JSON(t *testing.T) {
	ws := testutil.Seed(t)
	out, _, err := runCLI(t, ws, "", "validate", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Errors   []any `json:"errors"`
			Warnings []any `json:"warnings"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.Errors)
}

func TestInvalidFormat(t *testing.T) {
	ws := testutil.Seed(t)
	_, _, err := runCLI(t, ws, "", "allocate-id", "question", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
