package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Metadata.TimeoutSecs)
	assert.Equal(t, "css3convert/1.0", cfg.Metadata.UserAgent)
	assert.Equal(t, 5.0, cfg.Metadata.RateLimit)
	assert.Equal(t, 5, cfg.Metadata.Burst)
	assert.Equal(t, 3, cfg.Metadata.MaxRetries)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.False(t, cfg.Output.Archive)
	assert.Equal(t, "css3convert.db", cfg.RunLog.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CSS3CONVERT_LOG_LEVEL", "debug")
	t.Setenv("CSS3CONVERT_OUTPUT_DIR", "/data/css")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/data/css", cfg.Output.Dir)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
}
