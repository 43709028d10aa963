package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "TASKCHAT_"

// Loader loads configuration from the defaults, an optional JSON file, and
// environment variable overrides, in that order.
type Loader struct {
	validator *Validator
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{validator: NewValidator()}
}

// Load loads the configuration. An empty path uses the default user config
// location; a missing file is not an error.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	if cfg, err := l.loadFile(path); err == nil {
		config = l.mergeConfigs(config, cfg)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	l.applyEnvironmentOverrides(config)
	l.resolveAPIKey(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFile loads a single configuration file.
func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &config, nil
}

// SaveFile saves configuration to a file.
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// mergeConfigs merges two configurations with the second taking precedence.
func (l *Loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.API.BaseURL != "" {
		result.API.BaseURL = override.API.BaseURL
	}
	if override.API.APIKey != "" {
		result.API.APIKey = override.API.APIKey
	}
	if override.API.APIKeyEnvVar != "" {
		result.API.APIKeyEnvVar = override.API.APIKeyEnvVar
	}
	if override.API.Model != "" {
		result.API.Model = override.API.Model
	}
	if override.API.TimeoutSecs != 0 {
		result.API.TimeoutSecs = override.API.TimeoutSecs
	}
	if override.Agent.MaxToolRounds != 0 {
		result.Agent.MaxToolRounds = override.Agent.MaxToolRounds
	}
	if override.Agent.ModelRetries != 0 {
		result.Agent.ModelRetries = override.Agent.ModelRetries
	}
	if override.Agent.ToolTimeoutSecs != 0 {
		result.Agent.ToolTimeoutSecs = override.Agent.ToolTimeoutSecs
	}
	if override.Database.Path != "" {
		result.Database.Path = override.Database.Path
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		result.Log.Format = override.Log.Format
	}

	return &result
}

// applyEnvironmentOverrides applies TASKCHAT_* environment variables.
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv(EnvPrefix + "API_BASE_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "API_KEY"); v != "" {
		config.API.APIKey = v
	}
	if v := os.Getenv(EnvPrefix + "MODEL"); v != "" {
		config.API.Model = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_TOOL_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Agent.MaxToolRounds = n
		}
	}
}

// resolveAPIKey resolves the API key from the configured env var when the key
// itself is not set.
func (l *Loader) resolveAPIKey(config *Config) {
	if config.API.APIKey != "" || config.API.APIKeyEnvVar == "" {
		return
	}
	if v := os.Getenv(config.API.APIKeyEnvVar); v != "" {
		config.API.APIKey = v
	}
}
