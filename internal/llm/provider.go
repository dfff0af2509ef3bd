// Package llm is a small provider-neutral client for large language
// models, used to write explanations for questions the question bank
// ships without one.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends a single request to a model and returns its output.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the output has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the backend name, e.g. "anthropic".
	Name() string

	// ModelID returns the model identifier the provider is configured for.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	System    string
	Messages  []Message
	Schema    *Schema
	MaxTokens int
	// Temperature in [0, 1]; zero leaves the backend default.
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON Schema the response must satisfy. Name must be
// unique per definition; it keys the compile cache.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is the JSON object produced for a schema request, or the raw
	// text otherwise.
	Content json.RawMessage
	Usage   Usage
	// Model is the model that actually served the request.
	Model string
	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Usage reports token consumption of a request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}
