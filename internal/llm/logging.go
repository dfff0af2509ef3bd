package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abhisek/examdeck/internal/store"
)

// Recorder persists one entry per model request.
type Recorder interface {
	Append(ctx context.Context, data store.LLMRequestEventData) error
}

// RecordingProvider stores every request it forwards, successful or not.
type RecordingProvider struct {
	inner Provider
	rec   Recorder
}

// WithRecording wraps p so each Generate call is appended to rec.
func WithRecording(p Provider, rec Recorder) Provider {
	return &RecordingProvider{inner: p, rec: rec}
}

func (l *RecordingProvider) Name() string    { return l.inner.Name() }
func (l *RecordingProvider) ModelID() string { return l.inner.ModelID() }

func (l *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.inner.Name(),
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: describeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		log.Printf("[llm] %s %s failed after %dms: %v", data.Provider, data.Purpose, data.LatencyMs, err)
	}

	// A failed write must not fail the request.
	if recErr := l.rec.Append(context.WithoutCancel(ctx), data); recErr != nil {
		log.Printf("[llm] record request: %v", recErr)
	}
	return resp, err
}

// describeRequest renders req as readable text for the request log.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
