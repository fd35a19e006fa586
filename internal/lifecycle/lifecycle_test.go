package lifecycle_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/lifecycle"
	"github.com/specledger/specledger/internal/logbook"
	"github.com/specledger/specledger/internal/openitems"
	"github.com/specledger/specledger/internal/repo"
	"github.com/specledger/specledger/internal/testutil"
)

func openManager(t *testing.T, dir string) (*repo.Repo, *lifecycle.Manager) {
	t.Helper()
	r, err := repo.Open(dir)
	require.NoError(t, err)
	book := logbook.New(r)
	book.Now = testutil.FixedNow
	return r, lifecycle.NewManager(r, book, openitems.New(r))
}

// resolveBlocker clears Q1 so story 2 has no open blocking item.
func resolveBlocker(t *testing.T, ws *testutil.Workspace) {
	t.Helper()
	r, err := repo.Open(ws.Dir)
	require.NoError(t, err)
	require.NoError(t, openitems.New(r).Resolve("Q1", ""))
	require.NoError(t, r.Commit())
}

func rejectCode(t *testing.T, err error) string {
	t.Helper()
	var re *lifecycle.RejectError
	require.True(t, errors.As(err, &re), "expected RejectError, got %v", err)
	return re.Code
}

func TestValidStatus(t *testing.T) {
	for _, s := range lifecycle.Statuses() {
		assert.True(t, lifecycle.ValidStatus(lifecycle.Status(s)))
	}
	assert.False(t, lifecycle.ValidStatus("done"))
}

func TestStories_ParsesOverview(t *testing.T) {
	ws := testutil.Seed(t)
	r, _ := openManager(t, ws.Dir)
	state, err := r.Load(ids.FileState)
	require.NoError(t, err)

	stories, err := lifecycle.Stories(state)
	require.NoError(t, err)
	require.Len(t, stories, 3)

	assert.Equal(t, lifecycle.StatusGraduated, stories[0].Status)
	assert.Equal(t, "Fast lookups", stories[0].Title)
	assert.Equal(t, lifecycle.StatusInProgress, stories[1].Status)
	assert.Equal(t, "100%", stories[1].Confidence)
	assert.Equal(t, lifecycle.StatusQueued, stories[2].Status)
	assert.False(t, stories[2].Blocked)
}

func TestStoryDetail(t *testing.T) {
	ws := testutil.Seed(t)
	r, _ := openManager(t, ws.Dir)
	state, err := r.Load(ids.FileState)
	require.NoError(t, err)

	detail, err := lifecycle.StoryDetail(state, 2)
	require.NoError(t, err)
	assert.Equal(t, "Offline export", detail.Title)
	assert.Equal(t, "P2", detail.Priority)
	assert.Contains(t, detail.Description, "portable archive")
	require.Len(t, detail.Scenarios, 2)

	assert.True(t, detail.Scenarios[0].FullySpecified())
	assert.Equal(t, "a notebook with 100 notes", detail.Scenarios[0].Given)
	assert.False(t, detail.Scenarios[1].FullySpecified(), "scenario pending Q1 is still a draft")

	_, err = lifecycle.StoryDetail(state, 3)
	require.Error(t, err)
}

func TestUpdateStatus_RejectsSecondInProgress(t *testing.T) {
	ws := testutil.Seed(t)
	r, mgr := openManager(t, ws.Dir)

	err := mgr.UpdateStatus(3, lifecycle.StatusInProgress, false)
	assert.Equal(t, lifecycle.ErrCodeNotInProgress, rejectCode(t, err))
	assert.Contains(t, err.Error(), "story 2 is already In Progress")
	assert.Empty(t, r.Dirty())
}

func TestUpdateStatus_SlotFreesAfterQueueing(t *testing.T) {
	ws := testutil.Seed(t)
	r, mgr := openManager(t, ws.Dir)

	require.NoError(t, mgr.UpdateStatus(2, lifecycle.StatusQueued, false))
	require.NoError(t, mgr.UpdateStatus(3, lifecycle.StatusInProgress, false))
	require.NoError(t, r.Commit())

	content := ws.Read(ids.FileState)
	assert.Contains(t, content, "| 2 | Offline export | P2 | ⏳ Queued | 100% |")
	assert.Contains(t, content, "| 3 | Shared notebooks | P3 | 🔄 In Progress | 60% |")
}

func TestUpdateStatus_BlockedOverlay(t *testing.T) {
	ws := testutil.Seed(t)
	r, mgr := openManager(t, ws.Dir)

	require.NoError(t, mgr.UpdateStatus(3, lifecycle.StatusQueued, true))
	require.NoError(t, r.Commit())
	assert.Contains(t, ws.Read(ids.FileState), "| ⏳ Queued (blocked) |")

	r, _ = openManager(t, ws.Dir)
	state, err := r.Load(ids.FileState)
	require.NoError(t, err)
	story, err := lifecycle.FindStory(state, 3)
	require.NoError(t, err)
	assert.True(t, story.Blocked)
	assert.Equal(t, lifecycle.StatusQueued, story.Status)
}

func TestUpdateStatus_InvalidInputs(t *testing.T) {
	ws := testutil.Seed(t)
	_, mgr := openManager(t, ws.Dir)

	err := mgr.UpdateStatus(2, "done", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")

	err = mgr.UpdateStatus(9, lifecycle.StatusQueued, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "story 9 not found")
}

func TestGraduate_RejectsInOrder(t *testing.T) {
	t.Run("already graduated", func(t *testing.T) {
		ws := testutil.Seed(t)
		r, mgr := openManager(t, ws.Dir)
		_, err := mgr.Graduate(1, false)
		assert.Equal(t, lifecycle.ErrCodeAlreadyGraduated, rejectCode(t, err))
		assert.Empty(t, r.Dirty())
	})

	t.Run("not in progress", func(t *testing.T) {
		ws := testutil.Seed(t)
		_, mgr := openManager(t, ws.Dir)
		_, err := mgr.Graduate(3, false)
		assert.Equal(t, lifecycle.ErrCodeNotInProgress, rejectCode(t, err))
	})

	t.Run("open blocking question", func(t *testing.T) {
		ws := testutil.Seed(t)
		r, mgr := openManager(t, ws.Dir)
		_, err := mgr.Graduate(2, false)
		assert.Equal(t, lifecycle.ErrCodeBlockingOpenItem, rejectCode(t, err))
		assert.Contains(t, err.Error(), "Q1")
		assert.Empty(t, r.Dirty())
	})

	t.Run("confidence below maximum", func(t *testing.T) {
		ws := testutil.Seed(t)
		resolveBlocker(t, ws)
		r, mgr := openManager(t, ws.Dir)
		state, err := r.Load(ids.FileState)
		require.NoError(t, err)
		require.NoError(t, state.UpdateTableRow("## Story Status Overview", "#", "2",
			map[string]string{"Confidence": "80%"}))
		r.MarkDirty(ids.FileState)
		require.NoError(t, r.Commit())

		_, mgr = openManager(t, ws.Dir)
		_, err = mgr.Graduate(2, false)
		assert.Equal(t, lifecycle.ErrCodeConfidenceLow, rejectCode(t, err))
		assert.Contains(t, err.Error(), `"80%"`)
	})

	t.Run("no fully specified scenario", func(t *testing.T) {
		ws := testutil.Seed(t)
		resolveBlocker(t, ws)
		state := ws.Read(ids.FileState)
		ws.Write(ids.FileState, strings.Replace(state,
			"a complete archive is produced.",
			"a complete archive is produced (pending Q2).", 1))

		_, mgr := openManager(t, ws.Dir)
		_, err := mgr.Graduate(2, false)
		assert.Equal(t, lifecycle.ErrCodeNoScenario, rejectCode(t, err))
	})

	t.Run("no functional requirement", func(t *testing.T) {
		ws := testutil.Seed(t)
		resolveBlocker(t, ws)
		spec := ws.Read(ids.FileSpec)
		ws.Write(ids.FileSpec, strings.Replace(spec,
			"| FR-002 | System MUST export notebooks while offline | Story 2 | 🔄 Draft |\n", "", 1))

		_, mgr := openManager(t, ws.Dir)
		_, err := mgr.Graduate(2, false)
		assert.Equal(t, lifecycle.ErrCodeNoRequirement, rejectCode(t, err))
	})
}

func TestGraduate_DryRunMutatesNothing(t *testing.T) {
	ws := testutil.Seed(t)
	resolveBlocker(t, ws)
	r, mgr := openManager(t, ws.Dir)

	result, err := mgr.Graduate(2, true)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.Story)
	assert.Equal(t, "Offline export", result.Title)
	assert.Contains(t, result.StoryBlock, "### User Story 2 - Offline export (Priority: P2)")
	assert.Contains(t, result.StoryBlock, "**Revision**: v1.0")
	assert.Empty(t, r.Dirty())
}

func TestGraduate_Transaction(t *testing.T) {
	ws := testutil.Seed(t)
	resolveBlocker(t, ws)

	// A watching item already marked settled should sweep out on graduation.
	r, err := repo.Open(ws.Dir)
	require.NoError(t, err)
	_, err = openitems.New(r).Add(openitems.Watching, openitems.Question{
		Text: "Story 2 export naming: resolved, no revision needed",
	})
	require.NoError(t, err)
	require.NoError(t, r.Commit())

	r, mgr := openManager(t, ws.Dir)
	result, err := mgr.Graduate(2, false)
	require.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.Equal(t, "P2", result.Priority)
	assert.Equal(t, 2, result.Scenarios)
	require.NoError(t, r.Commit())

	spec := ws.Read(ids.FileSpec)
	assert.Contains(t, spec, "### User Story 2 - Offline export (Priority: P2)")
	assert.Contains(t, spec, "**Given** a notebook with 100 notes, **When** the user exports offline, **Then** a complete archive is produced.")
	assert.Contains(t, spec, "**Last Updated**: 2025-06-15")

	state := ws.Read(ids.FileState)
	assert.Contains(t, state, "| 2 | Offline export | P2 | ✅ In SPEC | 100% |")
	assert.NotContains(t, state, "### Story 2: Offline export")

	questions := ws.Read(ids.FileQuestions)
	assert.NotContains(t, questions, "Story 2 export naming")
	assert.Contains(t, questions, "- **Q4**:", "watching items without a settled marker survive")
}

func TestRevise_BumpsMinorVersion(t *testing.T) {
	ws := testutil.Seed(t)
	r, mgr := openManager(t, ws.Dir)

	result, err := mgr.Revise(logbook.Revision{
		Story:      1,
		ChangeType: "scenario_added",
		Scope:      logbook.ScopeAdditive,
		Trigger:    "Latency target tightened",
		Before:     "matches appear within 50ms.",
		After:      "matches appear within 30ms.",
	})
	require.NoError(t, err)
	assert.Equal(t, "REV-001", result.ID)
	assert.Equal(t, "v1.1", result.Version)
	require.NoError(t, r.Commit())

	spec := ws.Read(ids.FileSpec)
	assert.Contains(t, spec, "matches appear within 30ms.")
	assert.NotContains(t, spec, "within 50ms")
	assert.Contains(t, spec, "**Revision**: v1.1")
	assert.Contains(t, ws.Read(ids.FileRevisions), "## REV-001: Story 1 — 2025-06-15")
}

func TestRevise_StructuralBumpsMajor(t *testing.T) {
	ws := testutil.Seed(t)
	r, mgr := openManager(t, ws.Dir)

	result, err := mgr.Revise(logbook.Revision{
		Story: 1,
		Scope: logbook.ScopeStructural,
		After: "Tag lookups are now scoped per notebook.",
	})
	require.NoError(t, err)
	assert.Equal(t, "v2.0", result.Version)
	require.NoError(t, r.Commit())

	spec := ws.Read(ids.FileSpec)
	assert.Contains(t, spec, "**Revision**: v2.0")
	// No anchor text given, so the change lands appended to the section.
	assert.Contains(t, spec, "Tag lookups are now scoped per notebook.")
}

func TestRevise_RejectsInvalidScope(t *testing.T) {
	ws := testutil.Seed(t)
	_, mgr := openManager(t, ws.Dir)

	_, err := mgr.Revise(logbook.Revision{Story: 1, Scope: "cosmetic"})
	assert.Equal(t, lifecycle.ErrCodeInvalidScope, rejectCode(t, err))
}

func TestRevise_RejectsUngraduatedStory(t *testing.T) {
	ws := testutil.Seed(t)
	r, mgr := openManager(t, ws.Dir)

	_, err := mgr.Revise(logbook.Revision{Story: 2, Scope: logbook.ScopeAdditive})
	assert.Equal(t, lifecycle.ErrCodeNotGraduated, rejectCode(t, err))
	assert.Empty(t, r.Dirty(), "no revision is logged for a rejected target")
}

func TestRejectError_Messages(t *testing.T) {
	err := lifecycle.NewRejectError(lifecycle.ErrCodeConfidenceLow, 4, "confidence at maximum", "confidence is \"70%\"")
	assert.Equal(t, `E403: story 4: confidence at maximum: confidence is "70%"`, err.Error())
	assert.True(t, lifecycle.IsRejectError(err))
	assert.False(t, lifecycle.IsRejectError(assert.AnError))
}

func TestInvariantError_Messages(t *testing.T) {
	err := &lifecycle.InvariantError{Code: lifecycle.ErrCodeSingleInProgress, Message: "multiple stories In Progress", Stories: []int{2, 3}}
	assert.Equal(t, "E301: multiple stories In Progress (stories: 2, 3)", err.Error())
	assert.True(t, lifecycle.IsInvariantError(err))
}
