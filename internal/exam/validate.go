package exam

import (
	"fmt"
	"strings"
)

// ValidationError describes why a question was rejected.
type ValidationError struct {
	Index   int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Index, e.Message)
}

// Validate checks that q is answerable.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("empty question text")
	}
	if len(q.Answers) == 0 {
		return fmt.Errorf("no answers")
	}
	seen := make(map[string]bool, len(q.Answers))
	for _, a := range q.Answers {
		if a.Key == "" {
			return fmt.Errorf("answer with empty key")
		}
		if seen[a.Key] {
			return fmt.Errorf("duplicate answer key %q", a.Key)
		}
		seen[a.Key] = true
	}
	if !seen[q.CorrectKey] {
		return fmt.Errorf("correct key %q matches no answer", q.CorrectKey)
	}
	return nil
}

// FilterValid returns the answerable questions of qs and the errors for
// the rejected ones.
func FilterValid(qs []Question) ([]Question, []*ValidationError) {
	valid := make([]Question, 0, len(qs))
	var rejected []*ValidationError
	for i, q := range qs {
		if err := q.Validate(); err != nil {
			rejected = append(rejected, &ValidationError{Index: i, Message: err.Error()})
			continue
		}
		valid = append(valid, q)
	}
	return valid, rejected
}
