package config

// DefaultConfig returns the configuration used before any file or environment
// overrides are applied.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			BaseURL:      "https://api.openai.com/v1",
			APIKeyEnvVar: "OPENAI_API_KEY",
			Model:        "gpt-4o-mini",
			TimeoutSecs:  60,
		},
		Agent: AgentConfig{
			MaxToolRounds:   5,
			ModelRetries:    2,
			ToolTimeoutSecs: 30,
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
