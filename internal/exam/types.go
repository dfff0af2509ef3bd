// Package exam holds the data model shared by the exam source, the quiz
// state machine and persistence.
package exam

import (
	"encoding/json"
	"fmt"
)

// Subject is a course that questions can be generated for.
type Subject struct {
	ID            int    `json:"id"`
	Name          string `json:"ten"`
	QuestionCount *int   `json:"soCau,omitempty"`
}

// Chapter scopes chapter-review questions. Its name is both the label and
// the filter value sent to the exam source.
type Chapter struct {
	Name string `json:"name"`
}

// Answer is one labelled choice of a question.
type Answer struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question is a multiple-choice question.
type Question struct {
	Text        string   `json:"text"`
	Answers     []Answer `json:"answers"`
	CorrectKey  string   `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// IsCorrect reports whether key is this question's correct answer.
func (q Question) IsCorrect(key string) bool {
	return key != "" && key == q.CorrectKey
}

// AnswerText returns the text of the answer labelled key.
func (q Question) AnswerText(key string) (string, bool) {
	for _, a := range q.Answers {
		if a.Key == key {
			return a.Text, true
		}
	}
	return "", false
}

// AnswerMap maps a question index to the chosen answer key.
type AnswerMap map[int]string

// Clone returns an independent copy of m.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Mode is the exam mode picked by the user.
type Mode string

const (
	ModeMockExam      Mode = "thithu"
	ModeRandomReview  Mode = "on_ngaunhien"
	ModeChapterReview Mode = "on_chuong"
)

// AllModes lists modes in menu order.
var AllModes = []Mode{ModeMockExam, ModeRandomReview, ModeChapterReview}

// ParseMode converts a wire value into a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range AllModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown exam mode %q", s)
}

// Label returns a human-readable name for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeMockExam:
		return "Mock exam"
	case ModeRandomReview:
		return "Random review"
	case ModeChapterReview:
		return "Chapter review"
	default:
		return string(m)
	}
}

// Timed reports whether the mode runs a countdown.
func (m Mode) Timed() bool {
	return m == ModeMockExam
}

// NeedsChapter reports whether the mode is scoped to a chapter.
func (m Mode) NeedsChapter() bool {
	return m == ModeChapterReview
}

// MockExamSeconds is the countdown length of a mock exam.
const MockExamSeconds = 3600

// InitialSeconds returns the countdown length for the mode; zero means
// unbounded.
func (m Mode) InitialSeconds() int {
	if m.Timed() {
		return MockExamSeconds
	}
	return 0
}

// Presentation controls how a running quiz accepts input and shows
// feedback.
type Presentation int

const (
	// MockExam allows re-selecting answers and hides feedback until submit.
	MockExam Presentation = iota
	// LiveReview locks an answer once chosen and reveals feedback at once.
	LiveReview
	// HistoryReadOnly replays a submitted attempt with full feedback.
	HistoryReadOnly
)

// PresentationFor derives the live presentation of a mode.
func PresentationFor(m Mode) Presentation {
	if m == ModeMockExam {
		return MockExam
	}
	return LiveReview
}

func (p Presentation) String() string {
	switch p {
	case MockExam:
		return "mock-exam"
	case LiveReview:
		return "live-review"
	case HistoryReadOnly:
		return "history"
	default:
		return fmt.Sprintf("presentation(%d)", int(p))
	}
}

// CanSelect reports whether key may be recorded for a question that
// currently holds prev ("" when unanswered).
func (p Presentation) CanSelect(prev string) bool {
	switch p {
	case MockExam:
		return true
	case LiveReview:
		return prev == ""
	default:
		return false
	}
}

// Reveals reports whether correctness and explanation are shown for a
// question whose chosen answer is chosen ("" when unanswered).
func (p Presentation) Reveals(chosen string) bool {
	switch p {
	case LiveReview:
		return chosen != ""
	case HistoryReadOnly:
		return true
	default:
		return false
	}
}

// UnmarshalJSON accepts chapter names sent as strings or numbers.
func (c *Chapter) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var s string
	if err := json.Unmarshal(raw.Name, &s); err == nil {
		c.Name = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Name, &n); err != nil {
		return fmt.Errorf("chapter name: %w", err)
	}
	c.Name = n.String()
	return nil
}
