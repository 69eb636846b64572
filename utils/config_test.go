package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureConfigAt_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")

	got, err := ensureConfigAt(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestEnsureConfigAt_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ui": {"theme": "dark"}}`), 0644))

	_, err := ensureConfigAt(path)
	require.NoError(t, err)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", config.UI.Theme)
	// Missing keys fall back to defaults
	assert.Equal(t, 14, config.UI.FontSize)
	assert.Equal(t, BackendSQLite, config.Settings.Backend)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveConfig(path, DefaultConfig()))
	t.Setenv("DBBROWSER_SETTINGS_BACKEND", "preferences")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendPreferences, config.Settings.Backend)
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"settings": {"backend": "registry"}}`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSettingsPath(t *testing.T) {
	config := DefaultConfig()
	config.Settings.Path = "/tmp/prefs.db"
	assert.Equal(t, "/tmp/prefs.db", config.SettingsPath())

	config.Settings.Path = ""
	assert.Equal(t, "dbbrowser.db", filepath.Base(config.SettingsPath()))
	assert.Equal(t, "dbbrowser", filepath.Base(filepath.Dir(config.SettingsPath())))
}
