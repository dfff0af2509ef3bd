// Package examapi is the HTTP client for the remote question bank.
package examapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/schemacheck"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

// Source is the question bank capability used by the quiz machine.
type Source interface {
	ListSubjects(ctx context.Context) ([]exam.Subject, error)
	ListChapters(ctx context.Context, subjectID int) ([]exam.Chapter, error)
	GenerateQuestions(ctx context.Context, subjectID int, mode exam.Mode, chapter string) ([]exam.Question, error)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the question bank over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ Source = (*Client)(nil)

// New creates a Client for the service rooted at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.Parse(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, apiKey: cfg.APIKey, http: hc}, nil
}

// ListSubjects fetches every subject.
func (c *Client) ListSubjects(ctx context.Context) ([]exam.Subject, error) {
	var out []exam.Subject
	if err := c.get(ctx, "subjects", "/subjects", nil, subjectsSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListChapters fetches the chapters of a subject.
func (c *Client) ListChapters(ctx context.Context, subjectID int) ([]exam.Chapter, error) {
	var out []exam.Chapter
	path := "/chapters/" + strconv.Itoa(subjectID)
	if err := c.get(ctx, "chapters", path, nil, chaptersSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateQuestions asks the service for a question set. An empty slice
// with a nil error means the service had no questions for the request.
// Questions that cannot be answered are dropped.
func (c *Client) GenerateQuestions(ctx context.Context, subjectID int, mode exam.Mode, chapter string) ([]exam.Question, error) {
	q := url.Values{}
	q.Set("subjectId", strconv.Itoa(subjectID))
	q.Set("mode", string(mode))
	if mode.NeedsChapter() && chapter != "" {
		q.Set("chapterId", chapter)
	}

	var raw []exam.Question
	if err := c.get(ctx, "generate", "/generate", q, questionsSchema, &raw); err != nil {
		return nil, err
	}

	valid, rejected := exam.FilterValid(raw)
	for _, r := range rejected {
		log.Printf("[examapi] dropping %v", r)
	}
	return valid, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, schema map[string]any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", endpoint, err)
	}
	log.Printf("[examapi] GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	if err := schemacheck.Validate("examapi-"+endpoint, schema, body); err != nil {
		return &PayloadError{Endpoint: endpoint, Content: body, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &PayloadError{Endpoint: endpoint, Content: body, Err: err}
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
