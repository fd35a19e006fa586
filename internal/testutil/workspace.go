// Package testutil provides seeded discovery workspaces and a fixed
// clock for deterministic tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// FixedDate is the date every seeded workspace and test clock uses.
var FixedDate = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// FixedNow returns FixedDate, matching the logbook clock signature.
func FixedNow() time.Time { return FixedDate }

// Workspace builds a discovery directory under t.TempDir.
type Workspace struct {
	t   *testing.T
	Dir string
}

// NewWorkspace creates an empty discovery directory.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "discovery")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "archive"), 0o755))
	return &Workspace{t: t, Dir: dir}
}

// Seed creates a workspace populated with the standard documents: two
// stories (1 graduated, 2 in progress), one open question per category,
// a decision, a research note, and one row per SPEC.md table.
func Seed(t *testing.T) *Workspace {
	t.Helper()
	ws := NewWorkspace(t)
	ws.Write("SPEC.md", SeedSpec)
	ws.Write("STATE.md", SeedState)
	ws.Write("OPEN_QUESTIONS.md", SeedQuestions)
	ws.Write("archive/DECISIONS.md", SeedDecisions)
	ws.Write("archive/RESEARCH.md", SeedResearch)
	return ws
}

// Write creates a file under the workspace, making parent directories.
func (w *Workspace) Write(rel, content string) {
	w.t.Helper()
	path := filepath.Join(w.Dir, rel)
	require.NoError(w.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(w.t, os.WriteFile(path, []byte(content), 0o644))
}

// Read returns a workspace file's content.
func (w *Workspace) Read(rel string) string {
	w.t.Helper()
	data, err := os.ReadFile(filepath.Join(w.Dir, rel))
	require.NoError(w.t, err)
	return string(data)
}

// Exists reports whether a workspace file exists.
func (w *Workspace) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(w.Dir, rel))
	return err == nil
}
