package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SOLACE_STATE_DIR", dir)
	t.Setenv("SOLACE_CONFIG", "")
	t.Setenv("SOLACE_BASE_URL", "")
	t.Setenv("SOLACE_LOG_LEVEL", "")
	t.Setenv("SOLACE_UI", "")
	return dir
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := LoadFile(filepath.Join(dir, "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Server.BaseURL)
	assert.Equal(t, ModeAuto, cfg.UI.Mode)
	assert.Equal(t, "Sorry, I encountered an error. Please try again.", cfg.Chat.ErrorText)
	assert.Equal(t, filepath.Join(dir, "logs", "solace.log"), cfg.Logging.File)
}

func TestLoadFile_ParsesTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "http://assistant.internal:8000"

[chat]
greeting = "Welcome back."

[ui]
mode = "simple"

[logging]
level = "debug"
file = "~/solace-test.log"
`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, "http://assistant.internal:8000", cfg.Server.BaseURL)
	assert.Equal(t, "Welcome back.", cfg.Chat.Greeting)
	assert.Equal(t, "Clear conversation?", cfg.Chat.ConfirmPrompt)
	assert.Equal(t, ModeSimple, cfg.UI.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, "solace-test.log"), cfg.Logging.File)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	t.Setenv("SOLACE_BASE_URL", "https://override.example")
	t.Setenv("SOLACE_LOG_LEVEL", "warn")
	t.Setenv("SOLACE_UI", "tui")

	cfg, err := LoadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://override.example", cfg.Server.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ModeTUI, cfg.UI.Mode)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad toml", content: "[server\nbase_url ="},
		{name: "bad scheme", content: "[server]\nbase_url = \"ws://localhost:5000\""},
		{name: "bad mode", content: "[ui]\nmode = \"gui\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadFile(path)
			require.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://10.0.0.2:5000"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigPath(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, filepath.Join(dir, "config.toml"), ConfigPath())

	t.Setenv("SOLACE_CONFIG", "/etc/solace.toml")
	assert.Equal(t, "/etc/solace.toml", ConfigPath())
}

func TestEnsureDirs(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, EnsureDirs())

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
