package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.UseLLM)
	assert.Equal(t, "markdown", cfg.OutputFormat)
	assert.Equal(t, "ollama", cfg.LLM.Service)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 120, cfg.LLM.TimeoutSecs)
	assert.Equal(t, 3, cfg.LLM.RetryWaitSecs)
	assert.True(t, cfg.Processors.EnableLLMTable)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TREEPRESS_USE_LLM", "true")
	t.Setenv("TREEPRESS_OUTPUT_FORMAT", "json")
	t.Setenv("TREEPRESS_LLM_SERVICE", "openai")
	t.Setenv("TREEPRESS_LLM_MAX_RETRIES", "5")
	t.Setenv("TREEPRESS_PROCESSORS_ENABLE_LLM_TABLE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UseLLM)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "openai", cfg.LLM.Service)
	assert.Equal(t, 5, cfg.LLM.MaxRetries)
	assert.False(t, cfg.Processors.EnableLLMTable)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/config.yaml", `
use_llm: true
output_format: html
llm:
  service: openai
  model: gpt-4o-mini
processors:
  enable_llm_form: false
`)
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UseLLM)
	assert.Equal(t, "html", cfg.OutputFormat)
	assert.Equal(t, "openai", cfg.LLM.Service)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.False(t, cfg.Processors.EnableLLMForm)
	// Untouched keys keep their defaults.
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.True(t, cfg.Processors.EnableLLMTable)
}

func TestDefaultMatchesViperDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	loaded, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), loaded)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
