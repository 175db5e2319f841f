// Copyright 2024 Workflow Generator Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the loader reads so tests are hermetic
func clearEnv(t *testing.T) {
	t.Helper()
	for _, m := range envMappings {
		t.Setenv(m.envVar, "")
	}
	t.Setenv("CONFIG_PATH", "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
provider:
  backend: "langchain"
  apikey: "sk-test-key"  # pragma: allowlist secret
  endpoint: "https://openrouter.ai/api/v1"
  model: "openai/gpt-4o"
generation:
  temperature: 0.2
  workflow_max_tokens: 3000
  tools_max_tokens: 900
  tabs_max_tokens: 120
  optimize_max_tokens: 800
  timeout: "12s"
  max_retries: 2
server:
  port: "9090"
logging:
  level: "debug"
  format: "text"
  output: "stdout"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "langchain", cfg.Provider.Backend)
	assert.Equal(t, "sk-test-key", cfg.Provider.APIKey)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Provider.Endpoint)
	assert.Equal(t, "openai/gpt-4o", cfg.Provider.Model)
	assert.InDelta(t, 0.2, cfg.Generation.Temperature, 1e-9)
	assert.Equal(t, 3000, cfg.Generation.WorkflowMaxTokens)
	assert.Equal(t, 900, cfg.Generation.ToolsMaxTokens)
	assert.Equal(t, 120, cfg.Generation.TabsMaxTokens)
	assert.Equal(t, 800, cfg.Generation.OptimizeMaxTokens)
	assert.Equal(t, 12*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 2, cfg.Generation.MaxRetries)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.HasCredentials())
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider.Backend)
	assert.Equal(t, "deepseek-chat", cfg.Provider.Model)
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.Provider.Endpoint)
	assert.InDelta(t, 0.7, cfg.Generation.Temperature, 1e-9)
	assert.Equal(t, 4000, cfg.Generation.WorkflowMaxTokens)
	assert.Equal(t, 1000, cfg.Generation.OptimizeMaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 0, cfg.Generation.MaxRetries)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.HasCredentials(), "a missing API key is not a load error")
}

func TestEnvironmentMappings(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")   // pragma: allowlist secret
	t.Setenv("OPENROUTER_API_KEY", "sk-or-other") // pragma: allowlist secret
	t.Setenv("LLM_MODEL", "deepseek-reasoner")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-deepseek", cfg.Provider.APIKey, "earlier mapping wins")
	assert.Equal(t, "deepseek-reasoner", cfg.Provider.Model)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
provider:
  apikey: "sk-from-file"  # pragma: allowlist secret
`)
	t.Setenv("OPENAI_API_KEY", "sk-from-env") // pragma: allowlist secret

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Provider.APIKey)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		fields []string
	}{
		{
			name:   "unknown backend",
			yaml:   "provider:\n  backend: \"anthropic\"\n",
			fields: []string{"provider.backend"},
		},
		{
			name:   "temperature out of range",
			yaml:   "generation:\n  temperature: 3.5\n",
			fields: []string{"generation.temperature"},
		},
		{
			name:   "zero max tokens",
			yaml:   "generation:\n  workflow_max_tokens: 0\n  tabs_max_tokens: -1\n",
			fields: []string{"generation.workflow_max_tokens", "generation.tabs_max_tokens"},
		},
		{
			name:   "negative retries",
			yaml:   "generation:\n  max_retries: -1\n",
			fields: []string{"generation.max_retries"},
		},
		{
			name:   "bad log level",
			yaml:   "logging:\n  level: \"verbose\"\n  format: \"xml\"\n",
			fields: []string{"logging.level", "logging.format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := writeConfig(t, tt.yaml)

			_, err := Load(path)
			require.Error(t, err)
			for _, field := range tt.fields {
				assert.Contains(t, err.Error(), field)
			}

			cfg, err := LoadWithOptions(LoadOptions{ConfigPath: path, ValidateRequired: false})
			require.NoError(t, err)
			assert.NotNil(t, cfg)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestConfigPathEnvironment(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "server:\n  port: \"6060\"\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Server.Port)
}

func TestMaskSensitiveValues(t *testing.T) {
	cfg := &Config{Provider: ProviderConfig{APIKey: "sk-1234567890abcdef"}} // pragma: allowlist secret

	masked := cfg.MaskSensitiveValues()
	assert.True(t, strings.HasPrefix(masked.Provider.APIKey, "sk-12345"))
	assert.NotContains(t, masked.Provider.APIKey, "abcdef")
	assert.Equal(t, "sk-1234567890abcdef", cfg.Provider.APIKey, "original untouched")

	assert.Equal(t, "****", maskValue("abcd"))
}

func TestWatchConfigRequiresFile(t *testing.T) {
	clearEnv(t)

	err := WatchConfig(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}
