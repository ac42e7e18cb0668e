package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://127.0.0.1:8001", cfg.Registry.URL)
	assert.Equal(t, "http://127.0.0.1:8002", cfg.ArtifactCache.URL)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.OnyxAPI.URL)
	assert.Equal(t, "python3", cfg.Eval.PythonBin)
	assert.False(t, cfg.Registry.AuthConfigured())
	assert.Zero(t, cfg.Eval.TimeoutSeconds)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("CAIA_SERVER_PORT", "9090")
	t.Setenv("CAIA_REGISTRY_URL", "http://registry.internal:8001/")
	t.Setenv("CAIA_REGISTRY_API_KEY", "  sk-registry  ")
	t.Setenv("CAIA_ONYX_API_KEY", "sk-onyx")
	t.Setenv("CAIA_EVAL_TIMEOUT_SECONDS", "90")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	// trailing slash stripped so path joins stay predictable
	assert.Equal(t, "http://registry.internal:8001", cfg.Registry.URL)
	assert.Equal(t, "sk-registry", cfg.Registry.APIKey)
	assert.True(t, cfg.Registry.AuthConfigured())
	assert.Equal(t, "sk-onyx", cfg.OnyxAPI.APIKey)
	assert.Equal(t, 90.0, cfg.Eval.TimeoutSeconds)
}

func TestLoadConfig_LegacyRunsDirVar(t *testing.T) {
	os.Clearenv()
	t.Setenv("CAIA_DASHBOARD_EVAL_RUNS_DIR", "/var/lib/caia/eval_runs")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/caia/eval_runs", cfg.Eval.RunsDir)
}

func TestOriginList(t *testing.T) {
	c := CORSConfig{Origins: "https://dash.caiatech.io, https://staging.caiatech.io ,"}
	assert.Equal(t, []string{"https://dash.caiatech.io", "https://staging.caiatech.io"}, c.OriginList())

	// empty config falls back to local dev servers
	assert.Len(t, CORSConfig{}.OriginList(), 4)
}
