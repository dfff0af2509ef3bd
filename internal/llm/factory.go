package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// NewProvider builds the configured provider and wraps it so that every
// attempt is recorded and transient failures are retried:
// caller → retry → recording → backend. rec may be nil.
func NewProvider(ctx context.Context, cfg Config, rec Recorder) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		mock := NewMockProvider()
		mock.Fallback = &MockResponse{Content: json.RawMessage(`{"explanation":"No model is configured; this is a placeholder explanation."}`)}
		base = mock
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if rec != nil {
		base = WithRecording(base, rec)
	}
	return WithRetry(base, cfg.Retry), nil
}
