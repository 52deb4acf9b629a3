package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Arch)
	assert.Empty(t, cfg.Modules)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swiftbind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"arch: arm64\nmodules:\n  - test\n  - Swift\nworkers: 2\n",
	), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "arm64", cfg.Arch)
	assert.Equal(t, []string{"test", "Swift"}, cfg.Modules)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadConfigClampsWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swiftbind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -3\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("workers: [not a number\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}
