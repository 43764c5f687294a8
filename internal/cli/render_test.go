package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-table/internal/config"
)

const testSeed = `patients:
  - id: "1"
    first_name: Anna
    last_name: Smith
    medical_id: "300"
    age: "40"
    sex: F
  - id: "2"
    first_name: anne
    last_name: Jones
    medical_id: "100"
    age: "10"
    sex: F
  - id: "3"
    first_name: Bob
    last_name: Brown
    medical_id: "200"
    age: "25"
    sex: M
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patients.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRender_SortedByAge(t *testing.T) {
	out, err := runCLI(t, "render", "--seed", writeSeed(t), "--sort", "age")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "render_sorted_by_age", []byte(out))
}

func TestRender_Search(t *testing.T) {
	out, err := runCLI(t, "render", "--seed", writeSeed(t), "--search", "AN")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "render_search_an", []byte(out))
}

func TestRender_EmbeddedDataset(t *testing.T) {
	out, err := runCLI(t, "render", "--search", "j")
	require.NoError(t, err)

	assert.Contains(t, out, "Jane")
	assert.Contains(t, out, "John")
	assert.NotContains(t, out, "Maria")
}

func TestRender_InvalidSort(t *testing.T) {
	_, err := runCLI(t, "render", "--seed", writeSeed(t), "--sort", "email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --sort")
}

func TestRender_MissingSeed(t *testing.T) {
	_, err := runCLI(t, "render", "--seed", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read seed file")
}

func TestRouterConfig(t *testing.T) {
	cfg := &config.Config{
		RateLimit:  config.RateLimitConfig{Enabled: true, RequestsPerSecond: 3, Burst: 6},
		Security:   config.SecurityConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Monitoring: config.MonitoringConfig{PrometheusEnabled: true, MetricsPath: "/m"},
	}

	rc := routerConfig(cfg)

	require.NotNil(t, rc.RateLimit)
	assert.Equal(t, 3.0, rc.RateLimit.RPS)
	assert.Equal(t, 6, rc.RateLimit.Burst)
	assert.Equal(t, []string{"http://localhost:3000"}, rc.CORSConfig.AllowOrigins)
	assert.True(t, rc.MetricsEnabled)
	assert.Equal(t, "/m", rc.MetricsPath)

	cfg.RateLimit.Enabled = false
	assert.Nil(t, routerConfig(cfg).RateLimit)
}

func TestNewStore_RejectsUnknownNames(t *testing.T) {
	_, err := newStore(&config.Config{Store: config.StoreConfig{SortComparator: "random", CommitPolicy: "permissive"}}, nil)
	assert.Error(t, err)

	_, err = newStore(&config.Config{Store: config.StoreConfig{SortComparator: "legacy", CommitPolicy: "strict"}}, nil)
	assert.Error(t, err)
}
