package confirm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/screen/screentest"
	"github.com/abhisek/examdeck/internal/session"
	"github.com/abhisek/examdeck/internal/ui/components"
)

func liveQuiz(t *testing.T, f *screentest.Fixture) {
	t.Helper()
	m := f.Env.Machine
	require.NoError(t, m.SelectSubject(exam.Subject{ID: 1, Name: "Networks"}))
	_, err := m.Start(f.Env.Ctx, exam.ModeMockExam, "")
	require.NoError(t, err)
}

// answer presses k and feeds the resulting choice back to the screen.
func answer(t *testing.T, s *Screen, k string) {
	t.Helper()
	_, cmd := s.Update(screentest.Key(k))
	msg := screentest.Run(cmd)
	require.IsType(t, components.ChoiceMsg{}, msg)
	s.Update(msg)
}

func TestConfirmSubmitAccept(t *testing.T) {
	f := screentest.New(t)
	liveQuiz(t, f)
	m := f.Env.Machine
	require.NoError(t, m.RequestSubmit())

	s := New(f.Env)
	assert.Equal(t, session.PromptSubmit, s.Kind())
	view := s.View(100, 30)
	assert.Contains(t, view, "Keep going")
	assert.Contains(t, view, "unanswered")

	answer(t, s, "y")
	assert.True(t, s.Done())
	assert.Nil(t, m.Pending())
	assert.Equal(t, session.ViewHistory, m.View())
}

func TestConfirmExitDefaultsToStay(t *testing.T) {
	f := screentest.New(t)
	liveQuiz(t, f)
	m := f.Env.Machine
	require.NoError(t, m.Back())

	s := New(f.Env)
	assert.Equal(t, session.PromptExit, s.Kind())
	answer(t, s, "enter")
	assert.Nil(t, m.Pending())
	assert.Equal(t, session.ViewQuiz, m.View())
}

func TestConfirmExitToggleThenAccept(t *testing.T) {
	f := screentest.New(t)
	liveQuiz(t, f)
	m := f.Env.Machine
	require.NoError(t, m.Back())

	s := New(f.Env)
	s.Update(screentest.Key("left"))
	answer(t, s, "enter")
	assert.Equal(t, session.ViewModes, m.View())
}

func TestConfirmEscDeclines(t *testing.T) {
	f := screentest.New(t)
	liveQuiz(t, f)
	m := f.Env.Machine
	require.NoError(t, m.RequestSubmit())

	s := New(f.Env)
	answer(t, s, "esc")
	assert.Equal(t, session.ViewQuiz, m.View())
	assert.Nil(t, m.Pending())
}
