package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig    `mapstructure:"server"`
	Registry      UpstreamConfig  `mapstructure:"registry"`
	ArtifactCache UpstreamConfig  `mapstructure:"artifact_cache"`
	OnyxAPI       UpstreamConfig  `mapstructure:"onyx_api"`
	Eval          EvalConfig      `mapstructure:"eval"`
	CORS          CORSConfig      `mapstructure:"cors"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
	Tracing       TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// UpstreamConfig identifies one backend service the gateway forwards to.
// An empty URL means "not configured" and is reported as such, never dialed.
type UpstreamConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

func (u UpstreamConfig) AuthConfigured() bool {
	return u.APIKey != ""
}

type EvalConfig struct {
	ServiceDir     string  `mapstructure:"service_dir"`
	RunsDir        string  `mapstructure:"runs_dir"`
	PythonBin      string  `mapstructure:"python_bin"`
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`
}

type CORSConfig struct {
	Origins string `mapstructure:"origins"`
}

// OriginList parses the comma-separated origins, falling back to the local
// dashboard dev servers when nothing is configured.
func (c CORSConfig) OriginList() []string {
	var out []string
	for _, p := range strings.Split(c.Origins, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}
	return out
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig reads configuration from CAIA_-prefixed environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("registry.url", "http://127.0.0.1:8001")
	v.SetDefault("registry.api_key", "")
	v.SetDefault("artifact_cache.url", "http://127.0.0.1:8002")
	v.SetDefault("artifact_cache.api_key", "")
	v.SetDefault("onyx_api.url", "http://127.0.0.1:8000")
	v.SetDefault("onyx_api.api_key", "")
	v.SetDefault("eval.service_dir", "../caiatech-eval-service")
	v.SetDefault("eval.runs_dir", "./eval_runs")
	v.SetDefault("eval.python_bin", "python3")
	v.SetDefault("eval.timeout_seconds", 0.0)
	v.SetDefault("cors.origins", "")
	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("tracing.enabled", false)

	// Environment Variables
	v.SetEnvPrefix("CAIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy variable names kept for compatibility with existing deployments.
	_ = v.BindEnv("onyx_api.api_key", "CAIA_ONYX_API_KEY", "CAIA_ONYX_API_API_KEY")
	_ = v.BindEnv("eval.runs_dir", "CAIA_DASHBOARD_EVAL_RUNS_DIR", "CAIA_EVAL_RUNS_DIR")
	_ = v.BindEnv("cors.origins", "CAIA_DASHBOARD_CORS_ORIGINS", "CAIA_CORS_ORIGINS")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	cfg.Registry = cleanUpstream(cfg.Registry)
	cfg.ArtifactCache = cleanUpstream(cfg.ArtifactCache)
	cfg.OnyxAPI = cleanUpstream(cfg.OnyxAPI)

	return &cfg, nil
}

// cleanUpstream normalizes a base URL (no trailing slash) and treats a
// blank API key as unset.
func cleanUpstream(u UpstreamConfig) UpstreamConfig {
	v := strings.TrimSpace(u.URL)
	if v != "" {
		v = strings.TrimRight(v, "/")
	}
	u.URL = v
	u.APIKey = strings.TrimSpace(u.APIKey)
	return u
}
