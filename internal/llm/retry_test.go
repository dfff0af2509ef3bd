package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRetry wraps inner and records the backoff waits instead of
// sleeping.
func newTestRetry(inner Provider) (*RetryProvider, *[]time.Duration) {
	var waits []time.Duration
	r := WithRetry(inner, RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     150 * time.Millisecond,
		Multiplier:  2,
	}).(*RetryProvider)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return r, &waits
}

var down = MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(down, MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	p, waits := newTestRetry(mock)

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
	assert.Equal(t, 2, mock.CallCount())
	require.Len(t, *waits, 1)
	assert.InDelta(t, float64(100*time.Millisecond), float64((*waits)[0]), float64(20*time.Millisecond))
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(down, down, down, MockResponse{Content: json.RawMessage(`{}`)})
	p, waits := newTestRetry(mock)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail))
	assert.Equal(t, 3, mock.CallCount())
	require.Len(t, *waits, 2)
	assert.LessOrEqual(t, (*waits)[1], 180*time.Millisecond, "capped at MaxWait plus jitter")
}

func TestRetry_MaxTokensNotRetried(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{}})
	p, _ := newTestRetry(mock)

	_, err := p.Generate(context.Background(), Request{})
	var trunc *ErrMaxTokensExceeded
	assert.True(t, errors.As(err, &trunc))
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	bad := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad")}}
	mock := NewMockProvider(bad, bad, MockResponse{Content: json.RawMessage(`{}`)})
	p, _ := newTestRetry(mock)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_CancelledContextStops(t *testing.T) {
	mock := NewMockProvider(down, down, MockResponse{Content: json.RawMessage(`{}`)})
	p, _ := newTestRetry(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_RateLimitUsesRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 3 * time.Second, Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p, waits := newTestRetry(mock)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second}, *waits)
}

func TestRetry_Delegates(t *testing.T) {
	p, _ := newTestRetry(NewMockProvider())
	assert.Equal(t, "mock", p.ModelID())
	assert.Equal(t, "mock", p.Name())
}
