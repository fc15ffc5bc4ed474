package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.DataSource)
	assert.Equal(t, "atklabv1", cfg.Formula)
}

func TestLoad_NonExistentFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.DataSource)
}

func TestLoad_ParsesFormulaAndOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := "formula: ecsc2025\nparameters:\n  ecsc2025:\n    nop_team: GHOST\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ecsc2025", cfg.Formula)
	assert.Equal(t, "GHOST", cfg.OverridesFor("ecsc2025")["nop_team"])
}

func TestLoad_RejectsUnknownTopLevelKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bogus_key: true\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
