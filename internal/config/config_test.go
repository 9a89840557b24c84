package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.ServerURL, cfg.ServerURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, StoreFile, cfg.CredentialStore)
	assert.True(t, cfg.ConfirmDelete)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.ServerURL = "https://diary.example.com"
	cfg.RequestTimeout = 3 * time.Second
	cfg.CredentialStore = StoreSQLite
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://diary.example.com", loaded.ServerURL)
	assert.Equal(t, 3*time.Second, loaded.RequestTimeout)
	assert.Equal(t, StoreSQLite, loaded.CredentialStore)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: http://from-file\n"), 0644))

	t.Setenv("DIARY_SERVER_URL", "http://from-env")
	t.Setenv("DIARY_REQUEST_TIMEOUT", "2s")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.ServerURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("credential_store: redis\n"), 0644))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "unknown credential_store")

	require.NoError(t, os.WriteFile(path, []byte("server_url: [broken\n"), 0644))
	_, err = LoadFrom(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestDerivedPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/diary"
	assert.Equal(t, filepath.Join("/tmp/diary", "session.json"), cfg.TokenFile())
	assert.Equal(t, filepath.Join("/tmp/diary", "diary.db"), cfg.DatabaseFile())
}
