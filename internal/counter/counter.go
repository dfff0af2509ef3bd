// Package counter records a visit with a hosted hit counter.
package counter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Placeholders shown in place of the count.
const (
	Pending = "..."
	Failed  = "err"
)

// Client increments a named counter.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a Client for {baseURL}/{namespace}/{key}/up.
func New(baseURL, namespace, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/" +
		url.PathEscape(namespace) + "/" + url.PathEscape(key) + "/up"
	return &Client{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

// Hit increments the counter and returns its new value.
func (c *Client) Hit(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("counter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("counter returned status %d", resp.StatusCode)
	}

	var payload struct {
		Count *int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode counter: %w", err)
	}
	if payload.Count == nil {
		return 0, fmt.Errorf("counter response has no count")
	}
	return *payload.Count, nil
}

// Format renders a count with thousands separators.
func Format(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
