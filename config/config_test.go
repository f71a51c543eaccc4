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
	require.NoError(t, cfg.Validate())
	assert.Equal(t, '@', cfg.TriggerRune())
	assert.Equal(t, 150*time.Millisecond, cfg.QueryDelay())
	assert.Equal(t, 100*time.Millisecond, cfg.LoadingDelay())
	assert.True(t, cfg.Sources.Files)
	assert.True(t, cfg.Sources.Symbols)
	assert.True(t, cfg.LogConfig().LogsEnabled)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	cfg := DefaultConfig()
	cfg.Trigger = "#"
	cfg.Sources.Changes = false
	cfg.QueryDebounceMs = 0
	cfg.Exclude = []string{"dist/**"}
	require.NoError(t, SaveConfigTo(dir, cfg))

	_, err := os.Stat(filepath.Join(dir, ConfigFileName+".tmp"))
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, '#', loaded.TriggerRune())
	assert.Equal(t, time.Duration(-1), loaded.QueryDelay())
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{"max_results": 5}`), 0644))

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, "@", cfg.Trigger)
	assert.Equal(t, 8, cfg.VisibleRows)
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"long trigger", func(c *Config) { c.Trigger = "@@" }},
		{"empty trigger", func(c *Config) { c.Trigger = "" }},
		{"no sources", func(c *Config) { c.Sources.Files, c.Sources.Symbols = false, false }},
		{"bad glob", func(c *Config) { c.Exclude = []string{"[oops"} }},
		{"negative max", func(c *Config) { c.MaxResults = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
			assert.Error(t, SaveConfigTo(t.TempDir(), cfg))
		})
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{not json`), 0644))
	_, err := LoadConfigFrom(dir)
	assert.Error(t, err)
}

func TestLoadConfigFallsBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MENTION_PICKER_HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{"trigger": "too long"}`), 0644))

	assert.Equal(t, DefaultConfig(), LoadConfig())

	cfg := DefaultConfig()
	cfg.VisibleRows = 3
	require.NoError(t, SaveConfig(cfg))
	assert.Equal(t, 3, LoadConfig().VisibleRows)
}
