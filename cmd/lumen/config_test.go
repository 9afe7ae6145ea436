package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test. It stands in for
// t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaults(t *testing.T) {
	// No config file in a scratch working dir.
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "warehouse.db", cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.CacheTTL())
}

func TestLoadConfigFileWithComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumen.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// local development setup
		"addr": ":9090",
		"fixture_dir": "./fixtures",
		"cache_ttl_seconds": 60, // trailing comma is fine too
	}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "./fixtures", cfg.FixtureDir)
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	// Unset file fields keep their defaults.
	assert.Equal(t, "warehouse.db", cfg.DBPath)
}

func TestLoadConfigExplicitMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, errConfigFileRead)
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json at all"), 0o644))

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, errConfigInvalid)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LUMEN_ADDR", ":7070")
	t.Setenv("LUMEN_CACHE_TTL_SECONDS", "120")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL())
}
