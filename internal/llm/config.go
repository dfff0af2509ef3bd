package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the explanation model.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter",
	// "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one explanation including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv reads EXAMDECK_LLM_* style variables over the defaults.
// It reports false when no provider was selected and none could be
// discovered from the common vendor key variables.
func ConfigFromEnv() (Config, bool) {
	provider := os.Getenv("EXAMDECK_LLM_PROVIDER")
	if provider == "" {
		return DiscoverConfig()
	}

	cfg := DefaultConfig()
	cfg.Provider = provider
	setFromEnv(&cfg.Anthropic.APIKey, "EXAMDECK_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "EXAMDECK_ANTHROPIC_MODEL")
	setFromEnv(&cfg.Anthropic.BaseURL, "EXAMDECK_ANTHROPIC_BASE_URL")
	setFromEnv(&cfg.OpenAI.APIKey, "EXAMDECK_OPENAI_API_KEY", "OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.Model, "EXAMDECK_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "EXAMDECK_OPENAI_BASE_URL")
	setFromEnv(&cfg.Gemini.APIKey, "EXAMDECK_GEMINI_API_KEY", "GEMINI_API_KEY")
	setFromEnv(&cfg.Gemini.Model, "EXAMDECK_GEMINI_MODEL")
	setFromEnv(&cfg.OpenRouter.APIKey, "EXAMDECK_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.Model, "EXAMDECK_OPENROUTER_MODEL")
	setFromEnv(&cfg.OpenRouter.BaseURL, "EXAMDECK_OPENROUTER_BASE_URL")
	if v := os.Getenv("EXAMDECK_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg, true
}

// setFromEnv assigns the first non-empty variable among names.
func setFromEnv(dst *string, names ...string) {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			*dst = v
			return
		}
	}
}

// DiscoverConfig picks the first provider whose vendor key variable is
// set, in the order Gemini, OpenAI, Anthropic, OpenRouter.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Validate checks the selected provider has an API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "anthropic":
		key, env = c.Anthropic.APIKey, "EXAMDECK_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "EXAMDECK_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "EXAMDECK_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "EXAMDECK_OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
