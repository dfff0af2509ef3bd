package counter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/examdeck/visits/up", r.URL.Path)
		w.Write([]byte(`{"count":1234}`))
	}))
	defer srv.Close()

	n, err := New(srv.URL+"/v1/", "examdeck", "visits", time.Second).Hit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1234, n)
}

func TestHitFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"status", http.StatusTooManyRequests, `{"count":1}`},
		{"bad json", http.StatusOK, `nope`},
		{"missing count", http.StatusOK, `{"value":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "ns", "k", time.Second).Hit(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0", Format(0))
	assert.Equal(t, "999", Format(999))
	assert.Equal(t, "1,000", Format(1000))
	assert.Equal(t, "1,234,567", Format(1234567))
	assert.Equal(t, "-12,345", Format(-12345))
}
