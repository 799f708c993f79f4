package config

import "time"

// AIConfig holds the narrative generation settings
type AIConfig struct {
	APIKey    string `json:"-"` // Never serialize
	BaseURL   string `json:"baseUrl"`
	Model     string `json:"model"`
	TimeoutMS int    `json:"timeoutMs"`
	MaxTokens int    `json:"maxTokens"`
}

// DefaultAIConfig returns the AI configuration from the environment
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:    getEnv("OPENAI_API_KEY", ""),
		BaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		TimeoutMS: getInt("OPENAI_TIMEOUT_MS", 15000),
		MaxTokens: getInt("OPENAI_MAX_TOKENS", 1800),
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c != nil && c.APIKey != ""
}

// Timeout is the bound on one narrative call
func (c *AIConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
