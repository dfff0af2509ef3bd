package session

import (
	"errors"
	"time"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/scoring"
	"github.com/abhisek/examdeck/internal/store"
)

// View is the screen the machine is currently showing.
type View int

const (
	ViewSubjects View = iota // Picking a subject
	ViewModes                // Picking an exam mode
	ViewQuiz                 // Answering or replaying questions
	ViewHistory              // Browsing submitted attempts
)

func (v View) String() string {
	switch v {
	case ViewSubjects:
		return "subjects"
	case ViewModes:
		return "modes"
	case ViewQuiz:
		return "quiz"
	case ViewHistory:
		return "history"
	default:
		return "unknown"
	}
}

// PromptKind identifies the decision a Prompt asks for.
type PromptKind int

const (
	PromptExit         PromptKind = iota + 1 // Leave a live quiz, discarding it
	PromptSubmit                             // Submit a live quiz
	PromptRestore                            // Resume a saved attempt
	PromptClearHistory                       // Delete the subject's history
)

// Prompt is a pending yes/no decision. The transition it guards resumes
// when Resolve is called.
type Prompt struct {
	Kind    PromptKind
	Message string
}

// NoticeLevel classifies a Notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a user-facing message. A zero Expires keeps it until replaced.
type Notice struct {
	Level   NoticeLevel
	Text    string
	Expires time.Time
}

// RestoreNoticeDuration is how long the restore confirmation stays up.
const RestoreNoticeDuration = 3 * time.Second

// Result is the outcome of a submitted attempt.
type Result struct {
	scoring.Result
	Subject exam.Subject
	Item    store.HistoryItem
	// Auto is true when the countdown submitted the attempt.
	Auto bool
}

// StartRequest identifies one start attempt. Completions for anything but
// the latest request are ignored.
type StartRequest struct {
	Seq       int
	SubjectID int
	Mode      exam.Mode
	Chapter   string
}

// StartOutcome is the result of CompleteStart.
type StartOutcome int

const (
	StartStarted   StartOutcome = iota // Quiz is active
	StartNoContent                     // Source returned no questions
	StartFailed                        // Source returned an error
	StartStale                         // Superseded request, ignored
)

// TickOutcome is the result of Tick.
type TickOutcome int

const (
	TickIgnored   TickOutcome = iota // Token did not match the running countdown
	TickContinue                     // Countdown decremented
	TickSubmitted                    // Countdown hit zero and submitted
)

// Sentinel errors returned by transitions whose preconditions do not hold.
var (
	ErrNoSubject       = errors.New("no subject selected")
	ErrChapterRequired = errors.New("chapter review requires a chapter")
	ErrWrongView       = errors.New("operation not available in this view")
	ErrNotInQuiz       = errors.New("no live quiz")
	ErrPromptPending   = errors.New("a confirmation is pending")
)
