package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examdeck/internal/store"
)

var explainTestSchema = Schema{
	Name: "test-explanation",
	Definition: map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"explanation": map[string]any{"type": "string"}},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	r1, err := mock.Generate(context.Background(), UserPrompt("", "first"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(r1.Content))
	assert.Equal(t, 10, r1.Usage.InputTokens)

	r2, err := mock.Generate(context.Background(), UserPrompt("", "second"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(r2.Content))

	require.Len(t, mock.Calls, 2)
	assert.Equal(t, "second", mock.Calls[1].Messages[0].Content)

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail))
}

func TestMockProvider_Fallback(t *testing.T) {
	mock := NewMockProvider()
	mock.Fallback = &MockResponse{Content: json.RawMessage(`{"explanation":"x"}`)}
	for range 3 {
		resp, err := mock.Generate(context.Background(), Request{Schema: &explainTestSchema})
		require.NoError(t, err)
		assert.JSONEq(t, `{"explanation":"x"}`, string(resp.Content))
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"other":1}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: &explainTestSchema})
	var inv *ErrInvalidResponse
	assert.True(t, errors.As(err, &inv))
}

type memRecorder struct {
	events []store.LLMRequestEventData
	err    error
}

func (m *memRecorder) Append(_ context.Context, d store.LLMRequestEventData) error {
	m.events = append(m.events, d)
	return m.err
}

func TestRecordingProvider(t *testing.T) {
	rec := &memRecorder{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"explanation":"ok"}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithRecording(mock, rec)
	ctx := WithPurpose(context.Background(), "explain")

	_, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "why?"}}, Schema: &explainTestSchema})
	require.NoError(t, err)
	_, err = p.Generate(ctx, UserPrompt("", "again"))
	require.Error(t, err)

	require.Len(t, rec.events, 2)
	first := rec.events[0]
	assert.Equal(t, "mock", first.Provider)
	assert.Equal(t, "explain", first.Purpose)
	assert.True(t, first.Success)
	assert.Equal(t, 7, first.InputTokens)
	assert.Contains(t, first.RequestBody, "[system]\nsys")
	assert.Contains(t, first.RequestBody, "[user]\nwhy?")
	assert.Contains(t, first.RequestBody, "[schema: test-explanation]")
	assert.JSONEq(t, `{"explanation":"ok"}`, first.ResponseBody)

	assert.False(t, rec.events[1].Success)
	assert.Equal(t, "boom", rec.events[1].ErrorMessage)
}

func TestRecordingProvider_RecorderFailureIgnored(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	p := WithRecording(NewMockProvider(MockResponse{Content: json.RawMessage(`"x"`)}), rec)
	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestPurposeFrom(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "explain", PurposeFrom(WithPurpose(context.Background(), "explain")))
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	rec := &memRecorder{}
	p, err := NewProvider(context.Background(), cfg, rec)
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{Schema: &explainTestSchema})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Content), "explanation")
	assert.Len(t, rec.events, 1)

	cfg.Provider = "anthropic"
	_, err = NewProvider(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "EXAMDECK_ANTHROPIC_API_KEY")

	cfg.Provider = "carrier-pigeon"
	_, err = NewProvider(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestConfigFromEnv(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "EXAMDECK_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}

	_, ok := ConfigFromEnv()
	assert.False(t, ok)

	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	cfg, ok := ConfigFromEnv()
	require.True(t, ok)
	assert.Equal(t, "openai", cfg.Provider)

	t.Setenv("EXAMDECK_LLM_PROVIDER", "anthropic")
	t.Setenv("EXAMDECK_ANTHROPIC_MODEL", "claude-sonnet")
	t.Setenv("EXAMDECK_LLM_TIMEOUT", "45s")
	cfg, ok = ConfigFromEnv()
	require.True(t, ok)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.Anthropic.APIKey)
	assert.Equal(t, "claude-sonnet", cfg.Anthropic.Model)
	assert.Equal(t, "45s", cfg.Timeout.String())
	assert.NoError(t, cfg.Validate())
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini-2024-07-18")
	require.NotNil(t, c)
	assert.Equal(t, 0.15, c.InputPerMTok)

	c = LookupCost("claude-haiku-4-5-20251001")
	require.NotNil(t, c)
	assert.InDelta(t, 0.006, c.Cost(1000, 1000), 1e-9)

	assert.NotNil(t, LookupCost("openai/gpt-4o"))
	assert.Nil(t, LookupCost("llama-3"))
}
