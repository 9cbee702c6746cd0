package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/autoapi/internal/config"
	"github.com/ogulcanaydogan/autoapi/pkg/estimate"
)

// isolate points HOME and the working directory at empty temp dirs so no
// real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	{
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(t.TempDir()); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Apps.Include)
	assert.Empty(t, cfg.Apps.Exclude)
	assert.False(t, cfg.Apps.IncludeContrib)
	assert.Equal(t, "python3", cfg.Source.Python)
	assert.Equal(t, ".", cfg.Source.ProjectDir)
	assert.Equal(t, 60*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Zero(t, cfg.LLM.RequestsPerMinute)
	assert.Equal(t, estimate.DefaultParams(), cfg.Estimate)
	assert.Equal(t, "api_serializers_ai.py", cfg.Output.Filename)
	assert.Zero(t, cfg.Generation.MaxCostUSD)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, filepath.Join(home, ".autoapi", "history.db"), cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
apps:
  include: [blog, shop]
  exclude: [legacy]
llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
  requests_per_minute: 30
estimate:
  per_field_tokens: 10
generation:
  max_cost_usd: 2.5
notify:
  webhook:
    enabled: true
    url: https://hooks.example.com/autoapi
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"blog", "shop"}, cfg.Apps.Include)
	assert.Equal(t, []string{"legacy"}, cfg.Apps.Exclude)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.LLM.Model)
	assert.Equal(t, 30, cfg.LLM.RequestsPerMinute)
	assert.Equal(t, int64(10), cfg.Estimate.PerFieldTokens)
	assert.Equal(t, int64(estimate.DefaultPromptOverheadTokens), cfg.Estimate.PromptOverheadTokens)
	assert.InDelta(t, 2.5, cfg.Generation.MaxCostUSD, 1e-9)
	assert.True(t, cfg.Notify.Webhook.Enabled)
	assert.Equal(t, "https://hooks.example.com/autoapi", cfg.Notify.Webhook.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_DefaultLocations(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile("autoapi.yaml", []byte("llm:\n  model: gpt-4.1-mini\n"), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)

	// The home config wins over the project file.
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".autoapi"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".autoapi", "config.yaml"), []byte("llm:\n  model: gpt-4o\n"), 0o644))

	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("AUTOAPI_LOGGING_LEVEL", "error")
	t.Setenv("AUTOAPI_LLM_MODEL", "o3-mini")
	t.Setenv("AUTOAPI_STORAGE_ENABLED", "false")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "o3-mini", cfg.LLM.Model)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoad_InvalidFile(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("invalid: [yaml"), 0o644))

	_, err := config.Load(cfgPath)
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
