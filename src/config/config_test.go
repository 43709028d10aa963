package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, NewValidator().Validate(cfg))

	assert.Equal(t, 5, cfg.Agent.MaxToolRounds)
	assert.Equal(t, 2, cfg.Agent.ModelRetries)
	assert.Equal(t, 30, cfg.Agent.ToolTimeoutSecs)
	assert.Equal(t, 60, cfg.API.TimeoutSecs)
	assert.NotEmpty(t, cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API.Model, cfg.API.Model)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api": {"model": "gpt-4o", "base_url": "https://example.com/v1"},
		"agent": {"max_tool_rounds": 8},
		"log": {"level": "debug"}
	}`), 0644))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.API.Model)
	assert.Equal(t, "https://example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, 8, cfg.Agent.MaxToolRounds)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep their defaults
	assert.Equal(t, DefaultConfig().Agent.ModelRetries, cfg.Agent.ModelRetries)
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := NewLoader().Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log": {"level": "loud"}}`), 0644))

	_, err := NewLoader().Load(path)
	require.Error(t, err)

	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"MODEL", "env-model")
	t.Setenv(EnvPrefix+"LOG_LEVEL", "error")
	t.Setenv(EnvPrefix+"LOG_FORMAT", "json")
	t.Setenv(EnvPrefix+"MAX_TOOL_ROUNDS", "9")

	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "env-model", cfg.API.Model)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9, cfg.Agent.MaxToolRounds)
}

func TestAPIKeyResolvedFromConfiguredEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api": {"api_key_env_var": "TEST_KEY_VAR"}}`), 0644))
	t.Setenv("TEST_KEY_VAR", "sk-test")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.API.APIKey)
}

func TestSaveFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.API.Model = "saved-model"

	loader := NewLoader()
	require.NoError(t, loader.SaveFile(cfg, path))

	loaded, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-model", loaded.API.Model)
}
