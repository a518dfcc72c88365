// 配置加载器与默认配置测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BaSui01/framelens/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- 默认配置测试 ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, 3*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxBodyBytes)

	assert.Equal(t, 2*time.Minute, cfg.Dispatch.AgentTimeout)
	assert.Equal(t, "gemini-1.5-flash", cfg.Dispatch.DefaultModel)

	assert.Equal(t, 640, cfg.Image.MaxWidth)
	assert.Equal(t, 70, cfg.Image.CompactQuality)
	assert.Equal(t, 90, cfg.Image.PreserveQuality)
	assert.Equal(t, int64(16383*16383), cfg.Image.MaxPixels)

	assert.Equal(t, "once", cfg.Client.RetryMode)
	assert.Equal(t, []string{"business", "web", "data", "film"}, cfg.Catalog.Categories)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "framelens", cfg.Telemetry.ServiceName)

	assert.NoError(t, cfg.Validate())
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	t.Setenv(FallbackAPIKeyEnv, "")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Empty(t, cfg.Gemini.APIKey)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
server:
  http_port: 8888
  read_timeout: 60s
  cors_allowed_origins: ["http://localhost:3000"]

dispatch:
  agent_timeout: 45s
  default_model: gemini-1.5-pro

image:
  max_width: 320

client:
  retry_mode: backoff

log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 45*time.Second, cfg.Dispatch.AgentTimeout)
	assert.Equal(t, "gemini-1.5-pro", cfg.Dispatch.DefaultModel)
	assert.Equal(t, 320, cfg.Image.MaxWidth)
	assert.Equal(t, 70, cfg.Image.CompactQuality, "unset fields keep defaults")
	assert.Equal(t, "backoff", cfg.Client.RetryMode)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("FRAMELENS_SERVER_HTTP_PORT", "9000")
	t.Setenv("FRAMELENS_DISPATCH_AGENT_TIMEOUT", "30s")
	t.Setenv("FRAMELENS_GEMINI_API_KEY", "env-key")
	t.Setenv("FRAMELENS_CATALOG_CATEGORIES", "film, web")
	t.Setenv("FRAMELENS_TELEMETRY_ENABLED", "true")
	t.Setenv("FRAMELENS_SERVER_RATE_LIMIT_RPS", "2.5")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Dispatch.AgentTimeout)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, []string{"film", "web"}, cfg.Catalog.Categories)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: 8888\n"), 0o644))
	t.Setenv("FRAMELENS_SERVER_HTTP_PORT", "7777")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.HTTPPort)
}

func TestLoader_GoogleAPIKeyFallback(t *testing.T) {
	t.Setenv(FallbackAPIKeyEnv, "google-key")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "google-key", cfg.Gemini.APIKey)

	t.Setenv("FRAMELENS_GEMINI_API_KEY", "primary-key")
	cfg, err = NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "primary-key", cfg.Gemini.APIKey, "prefixed key wins")
}

func TestLoader_RequireAPIKey(t *testing.T) {
	t.Setenv(FallbackAPIKeyEnv, "")
	t.Setenv("FRAMELENS_GEMINI_API_KEY", "")

	_, err := NewLoader().WithValidator(RequireAPIKey).Load()
	require.Error(t, err)
	assert.True(t, types.Is(err, types.ErrConfig))
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("LENS_SERVER_HTTP_PORT", "6060")

	cfg, err := NewLoader().WithEnvPrefix("LENS").Load()
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.HTTPPort)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("FRAMELENS_DISPATCH_AGENT_TIMEOUT", "soon")

	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestLoader_NonExistentFile(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [unterminated"), 0o644))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "bad port", modify: func(c *Config) { c.Server.HTTPPort = 0 }, wantErr: true},
		{name: "metrics on http port", modify: func(c *Config) { c.Server.MetricsPort = c.Server.HTTPPort }, wantErr: true},
		{name: "metrics disabled", modify: func(c *Config) { c.Server.MetricsPort = 0 }},
		{name: "half tls", modify: func(c *Config) { c.Server.TLSCertFile = "cert.pem" }, wantErr: true},
		{name: "write timeout too short", modify: func(c *Config) { c.Server.WriteTimeout = time.Minute }, wantErr: true},
		{name: "zero agent timeout", modify: func(c *Config) { c.Dispatch.AgentTimeout = 0 }, wantErr: true},
		{name: "bad quality", modify: func(c *Config) { c.Image.CompactQuality = 101 }, wantErr: true},
		{name: "bad retry mode", modify: func(c *Config) { c.Client.RetryMode = "forever" }, wantErr: true},
		{name: "bad sample rate", modify: func(c *Config) { c.Telemetry.SampleRate = 2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, types.Is(err, types.ErrConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMustLoad_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [unterminated"), 0o644))

	assert.Panics(t, func() { MustLoad(configPath) })
}
