// Package screentest provides fixtures for screen tests.
package screentest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/session"
	"github.com/abhisek/examdeck/internal/store"
)

// Source is an in-memory examapi.Source.
type Source struct {
	mu        sync.Mutex
	Subjects  []exam.Subject
	Chapters  []exam.Chapter
	Questions []exam.Question
	Err       error

	Generated []exam.Mode
}

func (s *Source) ListSubjects(context.Context) ([]exam.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Subjects, s.Err
}

func (s *Source) ListChapters(context.Context, int) ([]exam.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Chapters, s.Err
}

func (s *Source) GenerateQuestions(_ context.Context, _ int, mode exam.Mode, _ string) ([]exam.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Generated = append(s.Generated, mode)
	return s.Questions, s.Err
}

// Questions returns n questions whose correct answer is "B".
func Questions(n int) []exam.Question {
	qs := make([]exam.Question, n)
	for i := range qs {
		qs[i] = exam.Question{
			Text:       fmt.Sprintf("Question %d", i+1),
			Answers:    []exam.Answer{{Key: "A", Text: "alpha"}, {Key: "B", Text: "beta"}, {Key: "C", Text: "gamma"}},
			CorrectKey: "B",
		}
	}
	return qs
}

// Fixture bundles a machine over memory storage.
type Fixture struct {
	Env     screen.Env
	Source  *Source
	KV      *store.MemoryKV
	History store.HistoryRepo

	deps session.Deps
}

// New returns a fixture whose source serves two subjects, two chapters
// and three questions.
func New(t *testing.T) *Fixture {
	t.Helper()
	kv := store.NewMemoryKV()
	now := func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	src := &Source{
		Subjects:  []exam.Subject{{ID: 1, Name: "Networks"}, {ID: 2, Name: "Databases"}},
		Chapters:  []exam.Chapter{{Name: "Routing"}, {Name: "Switching"}},
		Questions: Questions(3),
	}
	history := store.NewHistoryRepo(kv)
	deps := session.Deps{
		Source:   src,
		Sessions: store.NewSessionRepo(kv, now),
		History:  history,
		Now:      now,
	}
	return &Fixture{
		Env:     screen.Env{Ctx: context.Background(), Machine: session.New(deps)},
		Source:  src,
		KV:      kv,
		History: history,
		deps:    deps,
	}
}

// Reopen returns a fresh machine over the fixture's storage, as after a
// restart.
func (f *Fixture) Reopen() *session.Machine {
	return session.New(f.deps)
}

// Key builds a key press for a printable key or a named one such as
// "enter", "esc", "left".
func Key(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

// Run executes cmd and returns its message, or nil. Batches are
// flattened and the first message that is not a spinner frame is
// returned. Commands that sleep, such as cursor blinks, must not be
// passed in.
func Run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if m := Run(c); m != nil {
				return m
			}
		}
		return nil
	case spinner.TickMsg:
		return nil
	}
	return msg
}
