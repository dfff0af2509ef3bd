// Package explain writes explanations for exam questions that ship
// without one, using an LLM and caching the result locally.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/llm"
	"github.com/abhisek/examdeck/internal/store"
)

// Purpose labels explanation requests in the LLM request log.
const Purpose = "explain"

// ErrDisabled is returned when no model is configured.
var ErrDisabled = errors.New("explain: no LLM provider configured")

const systemPrompt = `You explain multiple-choice exam answers to students.
Given a question, its answers and the correct key, explain in at most
120 words why the correct answer is right and, briefly, why the others are
not. Answer in the language of the question. Do not restate the question.`

var responseSchema = &llm.Schema{
	Name:        "explanation",
	Description: "Explanation of the correct answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string", "minLength": 1},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

// Service produces explanations. A nil provider disables it.
type Service struct {
	provider llm.Provider
	cache    store.ExplanationRepo
	timeout  time.Duration
	now      func() time.Time
}

// New returns a Service. cache may be nil.
func New(provider llm.Provider, cache store.ExplanationRepo, timeout time.Duration) *Service {
	return &Service{provider: provider, cache: cache, timeout: timeout, now: time.Now}
}

// Enabled reports whether Explain can reach a model.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// Explain returns the explanation for q. The question's own explanation
// wins, then a cached one, then a fresh one from the model.
func (s *Service) Explain(ctx context.Context, q exam.Question) (string, error) {
	if q.Explanation != "" {
		return q.Explanation, nil
	}
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, q.Text)
		if err != nil {
			return "", err
		}
		if cached != nil {
			return cached.Text, nil
		}
	}
	if !s.Enabled() {
		return "", ErrDisabled
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	req := llm.UserPrompt(systemPrompt, prompt(q))
	req.Schema = responseSchema
	req.MaxTokens = 512
	req.Temperature = 0.2

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, Purpose), req)
	if err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}
	var out struct {
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("explain: decode response: %w", err)
	}
	text := strings.TrimSpace(out.Explanation)

	if s.cache != nil {
		model := resp.Model
		if model == "" {
			model = s.provider.ModelID()
		}
		e := store.Explanation{Text: text, Model: model, CreatedAt: s.now().UnixMilli()}
		if err := s.cache.Put(ctx, q.Text, e); err != nil {
			log.Printf("[explain] cache explanation: %v", err)
		}
	}
	return text, nil
}

func prompt(q exam.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", q.Text)
	for _, a := range q.Answers {
		fmt.Fprintf(&b, "%s. %s\n", a.Key, a.Text)
	}
	fmt.Fprintf(&b, "Correct answer: %s", q.CorrectKey)
	return b.String()
}
