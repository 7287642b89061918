package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/pr-reviewer/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "60s", cfg.HTTP.Timeout)
	assert.Equal(t, 0, cfg.HTTP.MaxRetries)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Anthropic.Model)
	assert.Equal(t, 4096, cfg.Anthropic.MaxTokens)
	assert.True(t, cfg.Redaction.Enabled)
	assert.True(t, cfg.Observability.Logging.Enabled)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9090
webhook:
  secret: filesecret
  allowedRepos:
    - org/repo-one
    - org/repo-two
http:
  timeout: 10s
  maxRetries: 3
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prr.yaml"), content, 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "filesecret", cfg.Webhook.Secret)
	assert.Equal(t, []string{"org/repo-one", "org/repo-two"}, cfg.Webhook.AllowedRepos)
	assert.Equal(t, "10s", cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
}

func TestLoadExpandsEnvVarsInFileValues(t *testing.T) {
	t.Setenv("TEST_PRR_SECRET", "expanded-secret")

	dir := t.TempDir()
	content := []byte("webhook:\n  secret: ${TEST_PRR_SECRET}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prr.yaml"), content, 0o644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "expanded-secret", cfg.Webhook.Secret)
}

func TestLoadHonoursWellKnownEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	t.Setenv("GITHUB_WEBHOOK_SECRET", "hooksecret")
	t.Setenv("ALLOWED_REPOS", "org/one, org/two ,")

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-env", cfg.Anthropic.APIKey)
	assert.Equal(t, "hooksecret", cfg.Webhook.Secret)
	assert.Equal(t, []string{"org/one", "org/two"}, cfg.Webhook.AllowedRepos)
}

func TestLoadEmptyAllowedReposStaysEmpty(t *testing.T) {
	t.Setenv("ALLOWED_REPOS", "")

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Empty(t, cfg.Webhook.AllowedRepos)
}
