package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathfinderai/pathfinder/internal/llm"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.String(KeyDB, "", "")
	f.String(KeyCatalog, "", "")
	f.String(KeyConfig, "", "")
	f.String(KeyLogLevel, "info", "")
	require.NoError(t, f.Parse(args))
	return cmd
}

// isolate runs the test in an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func noEnv(string) string { return "" }

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newCmd(t), noEnv)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DB)
	assert.Empty(t, cfg.LLM.Provider)
	assert.False(t, cfg.LLM.Enabled())
	assert.Equal(t, llm.DefaultTimeout, cfg.LLM.Timeout)
	assert.Empty(t, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pathfinder.yaml"), []byte(`
db: /from/file.db
catalog: /from/file
log-level: debug
llm:
  provider: openai
  api-key: file-key
  timeout: 20s
`), 0o644))

	t.Setenv("PATHFINDER_CATALOG", "/from/env")
	t.Setenv("PATHFINDER_LLM_MODEL", "gpt-nano")

	cfg, err := Load(newCmd(t, "--db", "/from/flag.db"), noEnv)
	require.NoError(t, err)

	assert.Equal(t, "/from/flag.db", cfg.DB)
	assert.Equal(t, "/from/env", cfg.Catalog)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-nano", cfg.LLM.Model)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "pathfinder.yaml", filepath.Base(cfg.File))
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-file: /tmp/pf.log\n"), 0o644))

	cfg, err := Load(newCmd(t, "--config", path), noEnv)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pf.log", cfg.LogFile)

	_, err = Load(newCmd(t, "--config", filepath.Join(dir, "missing.yaml")), noEnv)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PATHFINDER_LOG_FILE=/from/dotenv.log\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PATHFINDER_LOG_FILE") })

	cfg, err := Load(newCmd(t), noEnv)
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv.log", cfg.LogFile)
}

func TestLoadDiscoversVendorKey(t *testing.T) {
	isolate(t)
	t.Setenv("PATHFINDER_LLM_PROVIDER", "anthropic")

	lookup := func(k string) string {
		if k == "ANTHROPIC_API_KEY" {
			return "sk-ant"
		}
		return ""
	}
	cfg, err := Load(newCmd(t), lookup)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)

	_, err = Load(newCmd(t), noEnv)
	assert.ErrorContains(t, err, "API key is required")
}

func TestLoadDiscoversVendorKeysWhenUnset(t *testing.T) {
	isolate(t)

	lookup := func(k string) string {
		if k == "OPENROUTER_API_KEY" {
			return "sk-or"
		}
		return ""
	}
	cfg, err := Load(newCmd(t), lookup)
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenRouter, cfg.LLM.Provider)
	assert.True(t, cfg.LLM.Enabled())

	// An explicit "none" wins over any vendor key.
	t.Setenv("PATHFINDER_LLM_PROVIDER", "none")
	cfg, err = Load(newCmd(t), lookup)
	require.NoError(t, err)
	assert.False(t, cfg.LLM.Enabled())
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	isolate(t)
	t.Setenv("PATHFINDER_LLM_PROVIDER", "Skynet")

	_, err := Load(newCmd(t), noEnv)
	assert.ErrorContains(t, err, `unknown LLM provider: "skynet"`)
}
