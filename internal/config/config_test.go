package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Second, cfg.Poll.Interval)
}

func TestProductionSelectsDeployedBackend(t *testing.T) {
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://api.ecombuddha.ai/api", cfg.API.BaseURL)
}

func TestExplicitURLWinsOverEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("API_URL", "https://staging.ecombuddha.ai/api")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://staging.ecombuddha.ai/api", cfg.API.BaseURL)
}

func TestExplicitLocalURLSurvivesProduction(t *testing.T) {
	// Pointing a production build at the local backend is a deliberate
	// override, even though the address equals the development default.
	t.Setenv("ENV", "production")
	t.Setenv("API_URL", "http://localhost:5000/api")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
}

func TestOverrides(t *testing.T) {
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POLL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Poll.Enabled)
}
