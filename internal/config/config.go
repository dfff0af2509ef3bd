// Package config resolves runtime settings for the exam client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Subject cache TTL bounds.
const (
	MinSubjectCacheTTL = 20 * time.Minute
	MaxSubjectCacheTTL = 60 * time.Minute
)

// Config holds all exam client configuration.
type Config struct {
	// API configures the remote question bank.
	API APIConfig

	// Counter configures the visitor counter. Disabled when BaseURL is empty.
	Counter CounterConfig

	// SubjectCacheTTL bounds how long the subject list is served from the
	// local cache. Clamped to [20m, 60m].
	SubjectCacheTTL time.Duration

	// LogFile receives the diagnostic log while the TUI runs.
	LogFile string
}

// APIConfig holds question bank settings.
type APIConfig struct {
	BaseURL string
	// APIKey is sent in the x-api-key header of every request.
	APIKey  string
	Timeout time.Duration
}

// CounterConfig holds visitor counter settings.
type CounterConfig struct {
	BaseURL   string
	Namespace string
	Key       string
	Timeout   time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000/nldk/Exam",
			Timeout: 15 * time.Second,
		},
		Counter: CounterConfig{
			BaseURL:   "https://api.counterapi.dev/v1",
			Namespace: "examdeck",
			Key:       "visits",
			Timeout:   5 * time.Second,
		},
		SubjectCacheTTL: MinSubjectCacheTTL,
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("EXAMDECK_API_URL"); u != "" {
		cfg.API.BaseURL = u
	}
	if k := os.Getenv("EXAMDECK_API_KEY"); k != "" {
		cfg.API.APIKey = k
	}
	if d, ok := durationEnv("EXAMDECK_HTTP_TIMEOUT"); ok {
		cfg.API.Timeout = d
	}
	if d, ok := durationEnv("EXAMDECK_SUBJECT_CACHE_TTL"); ok {
		cfg.SubjectCacheTTL = d
	}

	if u, ok := os.LookupEnv("EXAMDECK_COUNTER_URL"); ok {
		cfg.Counter.BaseURL = u
	}
	if n := os.Getenv("EXAMDECK_COUNTER_NAMESPACE"); n != "" {
		cfg.Counter.Namespace = n
	}
	if k := os.Getenv("EXAMDECK_COUNTER_KEY"); k != "" {
		cfg.Counter.Key = k
	}

	if p := os.Getenv("EXAMDECK_LOG_FILE"); p != "" {
		cfg.LogFile = p
	}

	cfg.SubjectCacheTTL = ClampSubjectCacheTTL(cfg.SubjectCacheTTL)
	return cfg
}

// durationEnv parses a Go duration, or a bare number of seconds.
func durationEnv(name string) (time.Duration, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, true
	}
	fmt.Fprintf(os.Stderr, "warning: ignoring invalid %s=%q\n", name, v)
	return 0, false
}

// ClampSubjectCacheTTL limits d to the supported cache window.
func ClampSubjectCacheTTL(d time.Duration) time.Duration {
	switch {
	case d < MinSubjectCacheTTL:
		return MinSubjectCacheTTL
	case d > MaxSubjectCacheTTL:
		return MaxSubjectCacheTTL
	default:
		return d
	}
}

// CounterEnabled reports whether the visitor counter should be queried.
func (c Config) CounterEnabled() bool {
	return c.Counter.BaseURL != "" && c.Counter.Namespace != "" && c.Counter.Key != ""
}

// Validate checks that the question bank settings are usable.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("EXAMDECK_API_URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: must be absolute", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %s", c.API.Timeout)
	}
	return nil
}

// DefaultLogPath resolves the TUI log file in priority order:
// 1. EXAMDECK_LOG_FILE environment variable
// 2. $XDG_STATE_HOME/examdeck/examdeck.log
// 3. ~/.local/state/examdeck/examdeck.log
func DefaultLogPath() (string, error) {
	if p := os.Getenv("EXAMDECK_LOG_FILE"); p != "" {
		return p, nil
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateHome, "examdeck")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "examdeck.log"), nil
}
