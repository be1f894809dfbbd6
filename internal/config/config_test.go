package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/draftboard/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"DRAFTBOARD_CONFIG", "DRAFTBOARD_DB", "DRAFTBOARD_LOG_LEVEL",
		"DRAFTBOARD_TITLE_DEBOUNCE_MS", "DRAFTBOARD_STRUCTURAL_DEBOUNCE_MS", "DRAFTBOARD_CANVAS_DEBOUNCE_MS",
		"DRAFTBOARD_LLM_ENABLED", "DRAFTBOARD_LLM_PROVIDER", "DRAFTBOARD_LLM_MODEL",
	} {
		t.Setenv(name, "")
	}
	return home
}

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".draftboard", "draftboard.db"), cfg.DBPath)
	assert.Equal(t, 800*time.Millisecond, cfg.Delays().Text)
	assert.Equal(t, 500*time.Millisecond, cfg.Delays().Structural)
	assert.Equal(t, time.Second, cfg.Delays().Canvas)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())
	assert.False(t, cfg.LLM.Enabled)
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), `
db_path = "/tmp/notes.db"

[logging]
level = "debug"

[debounce]
text_ms = 300

[llm]
enabled = true
provider = "anthropic"
requests_per_minute = 10
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/notes.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, 300*time.Millisecond, cfg.Delays().Text)
	assert.Equal(t, 500*time.Millisecond, cfg.Delays().Structural, "unset keys keep defaults")
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, 10, cfg.LLM.RequestsPerMinute)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.NotEmpty(t, cfg.LLM.Tasks, "task defaults survive decoding")
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "db_path = \"/tmp/file.db\"\n[debounce]\ncanvas_ms = 2000\n")
	t.Setenv("DRAFTBOARD_DB", "/tmp/env.db")
	t.Setenv("DRAFTBOARD_CANVAS_DEBOUNCE_MS", "250")
	t.Setenv("DRAFTBOARD_LLM_MODEL", "mistral")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.Equal(t, 250*time.Millisecond, cfg.Delays().Canvas)
	assert.Equal(t, "mistral", cfg.LLM.Model)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "[debounce]\nstructural_ms = 42\n")
	t.Setenv("DRAFTBOARD_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 42*time.Millisecond, cfg.Delays().Structural)
}

func TestLoadFrom_Invalid(t *testing.T) {
	isolate(t)

	_, err := LoadFrom(writeFile(t, t.TempDir(), "db_path = [1, 2"))
	assert.Error(t, err, "malformed TOML")

	_, err = LoadFrom(writeFile(t, t.TempDir(), "[logging]\nlevel = \"loud\"\n"))
	assert.ErrorContains(t, err, "invalid log level")

	_, err = LoadFrom(writeFile(t, t.TempDir(), "[debounce]\ntext_ms = -5\n"))
	assert.ErrorContains(t, err, "negative")
}

func TestLoadFrom_InvalidEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("DRAFTBOARD_TITLE_DEBOUNCE_MS", "soon")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 800*time.Millisecond, cfg.Delays().Text)
}
