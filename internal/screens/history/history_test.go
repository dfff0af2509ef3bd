package history

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/screen/screentest"
	"github.com/abhisek/examdeck/internal/session"
)

// attempt runs and submits one quiz answering the first n questions
// correctly.
func attempt(t *testing.T, f *screentest.Fixture, mode exam.Mode, chapter string, n int) {
	t.Helper()
	m := f.Env.Machine
	if m.View() == session.ViewHistory {
		require.NoError(t, m.Back())
	}
	outcome, err := m.Start(f.Env.Ctx, mode, chapter)
	require.NoError(t, err)
	require.Equal(t, session.StartStarted, outcome)
	for i := 0; i < n; i++ {
		require.True(t, m.Goto(f.Env.Ctx, i) || i == 0)
		m.Choose(f.Env.Ctx, "B")
	}
	_, err = m.Submit(f.Env.Ctx)
	require.NoError(t, err)
}

func press(s *Screen, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = s.Update(screentest.Key(k))
	}
	return cmd
}

func newFixture(t *testing.T) *screentest.Fixture {
	f := screentest.New(t)
	require.NoError(t, f.Env.Machine.SelectSubject(exam.Subject{ID: 1, Name: "Networks"}))
	return f
}

func TestHistoryEmpty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.Env.Machine.ShowHistory())
	s := New(f.Env)

	assert.Contains(t, s.View(100, 30), "No attempts yet")
	press(s, "x")
	assert.Nil(t, f.Env.Machine.Pending(), "nothing to clear")
}

func TestHistoryListsNewestFirstWithBanner(t *testing.T) {
	f := newFixture(t)
	attempt(t, f, exam.ModeRandomReview, "", 1)
	attempt(t, f, exam.ModeChapterReview, "Routing", 3)
	s := New(f.Env)

	require.Len(t, s.items, 2)
	view := s.View(120, 40)
	assert.Contains(t, view, "PASSED")
	assert.Contains(t, view, "3/3 correct")
	assert.Contains(t, view, "Chapter review · Routing")
	assert.Contains(t, view, "Random review")
	assert.Contains(t, view, "10.0")
	assert.Contains(t, view, "3.3")
}

func TestHistoryOpenReview(t *testing.T) {
	f := newFixture(t)
	attempt(t, f, exam.ModeRandomReview, "", 1)
	s := New(f.Env)

	press(s, "enter")
	m := f.Env.Machine
	require.Equal(t, session.ViewQuiz, m.View())
	assert.Equal(t, exam.HistoryReadOnly, m.Presentation())
	assert.Equal(t, "B", m.Answer(0))
}

func TestHistoryBannerGoneAfterReplay(t *testing.T) {
	f := newFixture(t)
	attempt(t, f, exam.ModeRandomReview, "", 1)
	s := New(f.Env)
	assert.Contains(t, s.View(120, 40), "FAILED")

	press(s, "enter")
	m := f.Env.Machine
	require.Equal(t, session.ViewQuiz, m.View())
	require.NoError(t, m.Back())
	require.Equal(t, session.ViewHistory, m.View())

	view := New(f.Env).View(120, 40)
	assert.NotContains(t, view, "FAILED")
	assert.NotContains(t, view, "correct  score")
	assert.Contains(t, view, "Random review", "the attempt is still listed")
}

func TestHistoryClearAfterConfirm(t *testing.T) {
	f := newFixture(t)
	attempt(t, f, exam.ModeRandomReview, "", 0)
	s := New(f.Env)
	m := f.Env.Machine

	press(s, "x")
	require.NotNil(t, m.Pending())
	assert.Equal(t, session.PromptClearHistory, m.Pending().Kind)

	require.NoError(t, m.Resolve(f.Env.Ctx, true))
	s.Update(screen.RefreshMsg{})
	assert.Empty(t, s.items)
	assert.Contains(t, s.View(100, 30), "No attempts yet")
}

func TestHistoryAutoSubmitBanner(t *testing.T) {
	f := newFixture(t)
	m := f.Env.Machine
	_, err := m.Start(f.Env.Ctx, exam.ModeMockExam, "")
	require.NoError(t, err)
	for m.Tick(f.Env.Ctx, m.TimerToken()) == session.TickContinue {
	}
	require.Equal(t, session.ViewHistory, m.View())

	s := New(f.Env)
	view := s.View(100, 30)
	assert.Contains(t, view, "Time's up")
	assert.Contains(t, view, "FAILED")
}

func TestHistoryBack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.Env.Machine.ShowHistory())
	s := New(f.Env)

	press(s, "esc")
	assert.Equal(t, session.ViewModes, f.Env.Machine.View())
}
