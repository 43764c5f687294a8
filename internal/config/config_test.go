package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.ServerTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stable", cfg.Store.SortComparator)
	assert.Equal(t, "permissive", cfg.Store.CommitPolicy)
	assert.Equal(t, time.Duration(0), cfg.Seed.Latency)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "/metrics", cfg.Monitoring.MetricsPath)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
seed:
  path: /data/patients.yaml
  latency: 300ms
store:
  sort_comparator: legacy
  commit_policy: required
rate_limit:
  enabled: true
  requests_per_second: 5
  burst: 10
security:
  allowed_origins: ["http://localhost:3000"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/data/patients.yaml", cfg.Seed.Path)
	assert.Equal(t, 300*time.Millisecond, cfg.Seed.Latency)
	assert.Equal(t, "legacy", cfg.Store.SortComparator)
	assert.Equal(t, "required", cfg.Store.CommitPolicy)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Security.AllowedOrigins)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("PATIENTS_SERVER_PORT", "7070")
	t.Setenv("PATIENTS_STORE_COMMIT_POLICY", "required")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "required", cfg.Store.CommitPolicy)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad comparator", "store:\n  sort_comparator: random\n", "unknown sort comparator"},
		{"bad policy", "store:\n  commit_policy: strict\n", "unknown commit policy"},
		{"bad port", "server:\n  port: 70000\n", "invalid server port"},
		{"bad rate limit", "rate_limit:\n  enabled: true\n  burst: 0\n", "rate limit requires"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
