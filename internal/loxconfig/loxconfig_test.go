package loxconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrcaldwell/lox/internal/loxconfig"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := loxconfig.Load()
	require.NoError(t, err)
	assert.False(t, cfg.Compat)
	assert.False(t, cfg.NoColor)
	assert.NotEmpty(t, cfg.HistoryFile, "HistoryFile should default to a path under the user's home directory")
}

func TestLoadReadsRCFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loxrc.yaml"), []byte("compat: true\nno_color: true\n"), 0o644))

	cfg, err := loxconfig.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Compat)
	assert.True(t, cfg.NoColor)
}

func TestEnvVarsOverrideRCFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loxrc.yaml"), []byte("compat: true\n"), 0o644))

	t.Setenv("CRAFTING_INTERPRETERS_COMPAT", "false")
	cfg, err := loxconfig.Load()
	require.NoError(t, err)
	assert.False(t, cfg.Compat, "environment variables must win over the .loxrc.yaml file")
}
