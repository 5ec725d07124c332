package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "badger", cfg.Store.Provider)
	assert.Equal(t, "./data", cfg.Store.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Store.TTL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layoutctl.yaml")
		require.NoError(t, os.WriteFile(path, []byte("schema: records.yaml\nstore:\n  provider: mem\n  ttl: 5m\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "records.yaml", cfg.Schema)
		assert.Equal(t, "mem", cfg.Store.Provider)
		assert.Equal(t, 5*time.Minute, cfg.Store.TTL)
		assert.Equal(t, "default", cfg.Store.Namespace)
		assert.Equal(t, "json", cfg.Output)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store: [\n"), 0o600))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output: xml\n"), 0o600))
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "xml")
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "layoutctl.yaml")
	cfg := DefaultConfig()
	cfg.Record = "Account"

	require.NoError(t, SaveConfig(cfg, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
