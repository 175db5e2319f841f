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
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Provider   ProviderConfig   `mapstructure:"provider"`
	Generation GenerationConfig `mapstructure:"generation"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ProviderConfig selects and authenticates the completion provider.
// An empty APIKey is valid and means generation always falls back.
type ProviderConfig struct {
	Backend  string `mapstructure:"backend"`
	APIKey   string `mapstructure:"apikey"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// GenerationConfig holds per-operation completion limits
type GenerationConfig struct {
	Temperature       float64       `mapstructure:"temperature"`
	WorkflowMaxTokens int           `mapstructure:"workflow_max_tokens"`
	ToolsMaxTokens    int           `mapstructure:"tools_max_tokens"`
	TabsMaxTokens     int           `mapstructure:"tabs_max_tokens"`
	OptimizeMaxTokens int           `mapstructure:"optimize_max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// LoadOptions contains options for configuration loading
type LoadOptions struct {
	ConfigPath       string
	ValidateRequired bool
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over config file values.
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{
		ConfigPath:       configPath,
		ValidateRequired: true,
	})
}

// LoadWithOptions loads configuration with additional options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := setConfigFile(v, opts.ConfigPath); err != nil {
		return nil, fmt.Errorf("failed to set config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("WORKFLOW_GEN")

	if err := v.ReadInConfig(); err != nil {
		// Running purely on defaults and environment is supported
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setEnvironmentMappings(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if opts.ValidateRequired {
		if err := validateConfig(&config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.backend", "openai")
	v.SetDefault("provider.apikey", "")
	v.SetDefault("provider.endpoint", "https://api.deepseek.com/v1")
	v.SetDefault("provider.model", "deepseek-chat")

	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.workflow_max_tokens", 4000)
	v.SetDefault("generation.tools_max_tokens", 1500)
	v.SetDefault("generation.tabs_max_tokens", 200)
	v.SetDefault("generation.optimize_max_tokens", 1000)
	v.SetDefault("generation.timeout", "30s")
	v.SetDefault("generation.max_retries", 0)

	v.SetDefault("server.port", "8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// setConfigFile sets the configuration file path with fallback logic.
// Unlike an explicit path, the default locations are optional.
func setConfigFile(v *viper.Viper, configPath string) error {
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return fmt.Errorf("config file specified by CONFIG_PATH does not exist: %s", envPath)
		}
		v.SetConfigFile(envPath)
		return nil
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	return nil
}

// envMapping binds a plain environment variable to a config key. Earlier
// entries win when several variables target the same key.
type envMapping struct {
	envVar    string
	configKey string
}

var envMappings = []envMapping{
	{"OPENAI_API_KEY", "provider.apikey"},
	{"DEEPSEEK_API_KEY", "provider.apikey"},
	{"OPENROUTER_API_KEY", "provider.apikey"},
	{"LLM_BACKEND", "provider.backend"},
	{"LLM_ENDPOINT", "provider.endpoint"},
	{"LLM_MODEL", "provider.model"},
	{"PORT", "server.port"},
	{"LOG_LEVEL", "logging.level"},
	{"LOG_FORMAT", "logging.format"},
	{"LOG_OUTPUT", "logging.output"},
}

// setEnvironmentMappings sets explicit environment variable mappings
func setEnvironmentMappings(v *viper.Viper) {
	assigned := make(map[string]bool)
	for _, m := range envMappings {
		if assigned[m.configKey] {
			continue
		}
		if value := os.Getenv(m.envVar); value != "" {
			v.Set(m.configKey, value)
			assigned[m.configKey] = true
		}
	}
}

// validateConfig validates the configuration for valid values
func validateConfig(config *Config) error {
	var errors []ValidationError

	validBackends := []string{"openai", "langchain"}
	if !slices.Contains(validBackends, config.Provider.Backend) {
		errors = append(errors, ValidationError{
			Field:   "provider.backend",
			Message: fmt.Sprintf("backend must be one of: %s", strings.Join(validBackends, ", ")),
		})
	}

	if config.Provider.Model == "" {
		errors = append(errors, ValidationError{
			Field:   "provider.model",
			Message: "model is required",
		})
	}

	if config.Generation.Temperature < 0 || config.Generation.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "generation.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	maxTokens := map[string]int{
		"generation.workflow_max_tokens": config.Generation.WorkflowMaxTokens,
		"generation.tools_max_tokens":    config.Generation.ToolsMaxTokens,
		"generation.tabs_max_tokens":     config.Generation.TabsMaxTokens,
		"generation.optimize_max_tokens": config.Generation.OptimizeMaxTokens,
	}
	for _, field := range sortedKeys(maxTokens) {
		if maxTokens[field] <= 0 {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "max tokens must be greater than 0",
			})
		}
	}

	if config.Generation.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "generation.timeout",
			Message: "timeout must be greater than 0",
		})
	}

	if config.Generation.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "generation.max_retries",
			Message: "max_retries must be greater than or equal to 0",
		})
	}

	if config.Server.Port == "" {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "port is required",
		})
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, config.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, config.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	if len(errors) > 0 {
		var errorMessages []string
		for _, err := range errors {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errorMessages, "\n"))
	}

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// HasCredentials reports whether an API key is configured
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.Provider.APIKey) != ""
}

// MaskSensitiveValues returns a copy of the config with sensitive values masked
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c
	if masked.Provider.APIKey != "" {
		masked.Provider.APIKey = maskValue(masked.Provider.APIKey)
	}
	return &masked
}

// maskValue masks sensitive values, showing only the first 8 characters
func maskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:8] + strings.Repeat("*", len(value)-8)
}

// WatchConfig reloads the configuration whenever the config file changes and
// hands the new value to callback. Invalid reloads are reported through
// onError and leave the previous configuration in place.
func WatchConfig(configPath string, callback func(*Config), onError func(error)) error {
	v := viper.New()

	if err := setConfigFile(v, configPath); err != nil {
		return err
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file for watching: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		config, err := Load(configPath)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to reload config %s: %w", e.Name, err))
			}
			return
		}
		callback(config)
	})
	v.WatchConfig()

	return nil
}
