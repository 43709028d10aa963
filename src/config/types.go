package config

import "fmt"

// Config is the complete application configuration.
type Config struct {
	Version  string         `json:"version,omitempty"`
	API      APIConfig      `json:"api"`
	Agent    AgentConfig    `json:"agent"`
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
}

// APIConfig configures the model endpoint.
type APIConfig struct {
	BaseURL      string `json:"base_url,omitempty" validate:"omitempty,url"`
	APIKey       string `json:"api_key,omitempty"`
	APIKeyEnvVar string `json:"api_key_env_var,omitempty"`
	Model        string `json:"model,omitempty"`
	TimeoutSecs  int    `json:"timeout_secs,omitempty" validate:"omitempty,min=1,max=600"`
}

// AgentConfig configures the conversational loop.
type AgentConfig struct {
	// MaxToolRounds is how many tool-calling rounds a turn may use before the
	// model is forced to answer.
	MaxToolRounds int `json:"max_tool_rounds,omitempty" validate:"omitempty,min=1,max=25"`
	// ModelRetries is how many times a failed model call is retried.
	ModelRetries int `json:"model_retries,omitempty" validate:"omitempty,min=0,max=10"`
	// ToolTimeoutSecs bounds a single tool execution within a turn.
	ToolTimeoutSecs int `json:"tool_timeout_secs,omitempty" validate:"omitempty,min=1,max=600"`
}

// DatabaseConfig configures task and conversation storage.
type DatabaseConfig struct {
	Path string `json:"path,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `json:"level,omitempty" validate:"omitempty,log_level"`
	Format string `json:"format,omitempty" validate:"omitempty,log_format"`
}

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config validation error: %s", e.Message)
}
