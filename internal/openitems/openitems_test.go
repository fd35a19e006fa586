package openitems_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/openitems"
	"github.com/specledger/specledger/internal/repo"
	"github.com/specledger/specledger/internal/testutil"
)

func openRegistry(t *testing.T, dir string) (*repo.Repo, *openitems.Registry) {
	t.Helper()
	r, err := repo.Open(dir)
	require.NoError(t, err)
	return r, openitems.New(r)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []openitems.Category{
		openitems.Blocking, openitems.Clarifying, openitems.Research, openitems.Watching,
	}, openitems.Categories())

	for _, c := range openitems.Categories() {
		assert.True(t, openitems.Valid(c))
		assert.NotEmpty(t, openitems.Header(c))
	}
	assert.False(t, openitems.Valid("urgent"))
}

func TestList_ParsesEveryCategory(t *testing.T) {
	ws := testutil.Seed(t)
	_, reg := openRegistry(t, ws.Dir)

	questions, err := reg.List()
	require.NoError(t, err)
	require.Len(t, questions, 4)

	q1 := questions[0]
	assert.Equal(t, "Q1", q1.ID)
	assert.Equal(t, 1, q1.Num)
	assert.Equal(t, "How should interrupted exports resume?", q1.Text)
	assert.Equal(t, openitems.Blocking, q1.Category)
	assert.Equal(t, "Sizing the export chunks depends on this", q1.Context)
	assert.Equal(t, "Story 2", q1.Story)
	assert.Equal(t, "Story 2 acceptance scenarios", q1.Blocking)

	assert.Equal(t, openitems.Clarifying, questions[1].Category)
	assert.Equal(t, openitems.Research, questions[2].Category)
	assert.Equal(t, openitems.Watching, questions[3].Category)
}

func TestFind(t *testing.T) {
	ws := testutil.Seed(t)
	_, reg := openRegistry(t, ws.Dir)

	q, err := reg.Find("Q3")
	require.NoError(t, err)
	assert.Equal(t, "What archive formats do competing tools emit?", q.Text)

	_, err = reg.Find("Q9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Q9 not found")
}

func TestBlockingFor(t *testing.T) {
	ws := testutil.Seed(t)
	_, reg := openRegistry(t, ws.Dir)

	blocking, err := reg.BlockingFor(2)
	require.NoError(t, err)
	require.Len(t, blocking, 1)
	assert.Equal(t, "Q1", blocking[0].ID)

	// Q4 cites Story 1 but sits in Watching, not Blocking.
	blocking, err = reg.BlockingFor(1)
	require.NoError(t, err)
	assert.Empty(t, blocking)
}

func TestAdd_AllocatesIDAndPlacesInCategory(t *testing.T) {
	ws := testutil.Seed(t)
	r, reg := openRegistry(t, ws.Dir)

	id, err := reg.Add(openitems.Clarifying, openitems.Question{
		Text:    "Does export include trashed notes?",
		Context: "Affects the manifest layout",
		Story:   "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Q6", id)
	require.NoError(t, r.Commit())

	content := ws.Read(ids.FileQuestions)
	assert.Contains(t, content, "- **Q6**: Does export include trashed notes?")
	assert.Contains(t, content, "  - *Context*: Affects the manifest layout")
	assert.Contains(t, content, "  - *Story*: Story 2")

	_, reg = openRegistry(t, ws.Dir)
	q, err := reg.Find("Q6")
	require.NoError(t, err)
	assert.Equal(t, openitems.Clarifying, q.Category)
}

func TestAdd_RejectsUnknownCategory(t *testing.T) {
	ws := testutil.Seed(t)
	_, reg := openRegistry(t, ws.Dir)

	_, err := reg.Add("urgent", openitems.Question{Text: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid category")
}

func TestMigrate_PreservesIDAndFields(t *testing.T) {
	ws := testutil.Seed(t)
	r, reg := openRegistry(t, ws.Dir)

	require.NoError(t, reg.Migrate("Q3", openitems.Blocking))
	require.NoError(t, r.Commit())

	_, reg = openRegistry(t, ws.Dir)
	q, err := reg.Find("Q3")
	require.NoError(t, err)
	assert.Equal(t, openitems.Blocking, q.Category)
	assert.Equal(t, "What archive formats do competing tools emit?", q.Text)

	// The research section no longer lists it.
	questions, err := reg.List()
	require.NoError(t, err)
	for _, other := range questions {
		if other.Category == openitems.Research {
			t.Fatalf("unexpected research entry %s", other.ID)
		}
	}
}

func TestMigrate_SameCategoryIsNoop(t *testing.T) {
	ws := testutil.Seed(t)
	r, reg := openRegistry(t, ws.Dir)

	require.NoError(t, reg.Migrate("Q1", openitems.Blocking))
	assert.Empty(t, r.Dirty())
}

func TestMigrate_UnknownQuestion(t *testing.T) {
	ws := testutil.Seed(t)
	_, reg := openRegistry(t, ws.Dir)
	require.Error(t, reg.Migrate("Q9", openitems.Watching))
}

func TestResolve_RemovesEntryAndKeepsNote(t *testing.T) {
	ws := testutil.Seed(t)
	r, reg := openRegistry(t, ws.Dir)

	require.NoError(t, reg.Resolve("Q2", "Settled by D2: case-insensitive"))
	require.NoError(t, r.Commit())

	content := ws.Read(ids.FileQuestions)
	assert.NotContains(t, content, "- **Q2**:")
	assert.Contains(t, content, "<!-- Resolved: Q2 - Settled by D2: case-insensitive -->")

	// Q2's number stays taken; allocation moves past it and past the
	// archive-held Q5.
	_, reg = openRegistry(t, ws.Dir)
	id, err := reg.Add(openitems.Research, openitems.Question{Text: "New question"})
	require.NoError(t, err)
	assert.Equal(t, "Q6", id)
}

func TestResolve_WithoutNote(t *testing.T) {
	ws := testutil.Seed(t)
	r, reg := openRegistry(t, ws.Dir)

	require.NoError(t, reg.Resolve("Q3", ""))
	require.NoError(t, r.Commit())

	content := ws.Read(ids.FileQuestions)
	assert.NotContains(t, content, "- **Q3**:")
	assert.Contains(t, content, "<!-- Resolved: Q3 -->")
}
