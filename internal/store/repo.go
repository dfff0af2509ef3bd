package store

import (
	"context"
	"time"

	"github.com/abhisek/examdeck/internal/exam"
)

// Storage keys.
const (
	SubjectsKey       = "danh_sach_mon_hoc"
	SessionKey        = "exam_ongoing_session"
	historyKeyPrefix  = "history_sub_"
	explainKeyPrefix  = "explain_"
	HistoryLimit      = 20
	SessionTTL        = 24 * time.Hour
	DefaultSubjectTTL = 20 * time.Minute
)

// SessionSnapshot is the persisted state of a live, resumable attempt.
type SessionSnapshot struct {
	Subject      exam.Subject    `json:"subject"`
	Mode         exam.Mode       `json:"mode"`
	Chapter      string          `json:"chapter,omitempty"`
	Questions    []exam.Question `json:"questions"`
	Index        int             `json:"index"`
	Answers      exam.AnswerMap  `json:"answers"`
	TimeLeft     int             `json:"timeLeft"`
	IsReviewMode bool            `json:"isReviewMode"`
	// SavedAt is the save time in epoch milliseconds.
	SavedAt int64 `json:"timestamp"`
}

// HistoryItem is the persisted record of a submitted attempt.
type HistoryItem struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Mode        string          `json:"mode"`
	ModeValue   exam.Mode       `json:"modeValue,omitempty"`
	Chapter     string          `json:"chapter,omitempty"`
	Correct     int             `json:"correct"`
	Total       int             `json:"total"`
	Score       string          `json:"score"`
	Questions   []exam.Question `json:"questions"`
	Answers     exam.AnswerMap  `json:"userAnswers"`
	SubmittedAt int64           `json:"submittedAt"`
}

// Explanation is a cached AI-written explanation for a question.
type Explanation struct {
	Text      string `json:"text"`
	Model     string `json:"model"`
	CreatedAt int64  `json:"createdAt"`
}

// SubjectCacheRepo caches the subject list with a TTL.
type SubjectCacheRepo interface {
	// Get returns the cached list when it is younger than the TTL.
	Get(ctx context.Context) ([]exam.Subject, bool, error)

	// Put replaces the cached list.
	Put(ctx context.Context, subjects []exam.Subject) error

	// Invalidate drops the cached list.
	Invalidate(ctx context.Context) error
}

// SessionRepo persists the single in-progress attempt.
type SessionRepo interface {
	// Save overwrites the snapshot, stamping it with the current time.
	Save(ctx context.Context, snap *SessionSnapshot) error

	// Load returns the snapshot, or nil when none is restorable. Stale
	// snapshots are removed.
	Load(ctx context.Context) (*SessionSnapshot, error)

	// Discard removes the snapshot.
	Discard(ctx context.Context) error
}

// HistoryRepo keeps the most recent attempts per subject, newest first.
type HistoryRepo interface {
	List(ctx context.Context, subjectID int) ([]HistoryItem, error)
	Add(ctx context.Context, subjectID int, item HistoryItem) error
	Clear(ctx context.Context, subjectID int) error
}

// ExplanationRepo caches AI explanations by question text.
type ExplanationRepo interface {
	Get(ctx context.Context, question string) (*Explanation, error)
	Put(ctx context.Context, question string, e Explanation) error
}
