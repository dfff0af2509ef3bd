package examapi

import (
	"encoding/json"
	"fmt"
)

// StatusError indicates the question bank answered with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
}

// PayloadError indicates a response body that is not valid JSON or does
// not match the expected shape.
type PayloadError struct {
	Endpoint string
	Content  json.RawMessage
	Err      error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: invalid payload: %v", e.Endpoint, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }
