package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/config"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644))
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.Config{}, cfg)
}

func TestLoad_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "format: json\nverbose: true\n")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Verbose)
	assert.Empty(t, cfg.Dir)
}

func TestLoad_WalksAncestors(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeConfig(t, root, "format: json\n")

	cfg, err := config.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_NearestFileWins(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeConfig(t, root, "format: json\n")
	writeConfig(t, nested, "format: text\n")

	cfg, err := config.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoad_RelativeDirResolvesAgainstFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeConfig(t, root, "dir: docs/discovery\n")

	cfg, err := config.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "docs", "discovery"), cfg.Dir)
}

func TestLoad_AbsoluteDirKept(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dir: /srv/discovery\n")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/discovery", cfg.Dir)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "format: [unclosed\n")

	_, err := config.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
