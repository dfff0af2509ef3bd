package modes

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/screen/screentest"
	"github.com/abhisek/examdeck/internal/session"
)

func setup(t *testing.T, f *screentest.Fixture) *Screen {
	t.Helper()
	require.NoError(t, f.Env.Machine.SelectSubject(exam.Subject{ID: 1, Name: "Networks"}))
	s := New(f.Env)
	msg := screentest.Run(s.Init())
	require.IsType(t, chaptersMsg{}, msg)
	s.Update(msg)
	return s
}

func press(s *Screen, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = s.Update(screentest.Key(k))
	}
	return cmd
}

// complete runs a start command and applies the fetch result the way the
// root model does.
func complete(t *testing.T, f *screentest.Fixture, cmd tea.Cmd) session.StartOutcome {
	t.Helper()
	msg := screentest.Run(cmd)
	fetched, ok := msg.(screen.StartFetchedMsg)
	require.True(t, ok, "expected StartFetchedMsg, got %T", msg)
	return f.Env.Machine.CompleteStart(f.Env.Ctx, fetched.Req, fetched.Questions, fetched.Err)
}

func TestModesStartMockExam(t *testing.T) {
	f := screentest.New(t)
	s := setup(t, f)

	assert.Contains(t, s.View(100, 30), "Mock exam")

	cmd := press(s, "enter")
	require.NotNil(t, cmd)
	assert.True(t, f.Env.Machine.Loading())
	assert.Contains(t, s.View(100, 30), "Loading questions")

	assert.Equal(t, session.StartStarted, complete(t, f, cmd))
	assert.Equal(t, session.ViewQuiz, f.Env.Machine.View())
	assert.Equal(t, exam.ModeMockExam, f.Env.Machine.Mode())
	assert.True(t, f.Env.Machine.Timed())
}

func TestModesChapterCycling(t *testing.T) {
	f := screentest.New(t)
	s := setup(t, f)

	press(s, "down", "down")
	require.Equal(t, itemChapter, s.menu.Selected)
	assert.Contains(t, s.View(100, 30), "‹ Routing ›")

	press(s, "right")
	assert.Contains(t, s.View(100, 30), "‹ Switching ›")
	press(s, "right")
	assert.Contains(t, s.View(100, 30), "‹ Routing ›")
	press(s, "left")
	assert.Contains(t, s.View(100, 30), "‹ Switching ›")

	cmd := press(s, "enter")
	require.Equal(t, session.StartStarted, complete(t, f, cmd))
	assert.Equal(t, exam.ModeChapterReview, f.Env.Machine.Mode())
	assert.Equal(t, "Switching", f.Env.Machine.Chapter())
}

func TestModesChapterDisabledWithoutChapters(t *testing.T) {
	f := screentest.New(t)
	f.Source.Chapters = nil
	s := setup(t, f)

	assert.Contains(t, s.View(100, 30), "no chapters")
	press(s, "down", "down")
	// The disabled row is skipped.
	assert.Equal(t, 3, s.menu.Selected)
}

func TestModesNoQuestionsShowsNotice(t *testing.T) {
	f := screentest.New(t)
	s := setup(t, f)
	f.Source.Questions = nil

	cmd := press(s, "down", "enter")
	assert.Equal(t, session.StartNoContent, complete(t, f, cmd))
	assert.Equal(t, session.ViewModes, f.Env.Machine.View())
	assert.Contains(t, s.View(100, 30), "No questions found")
}

func TestModesFetchErrorShowsNotice(t *testing.T) {
	f := screentest.New(t)
	s := setup(t, f)
	f.Source.Err = errors.New("HTTP error! status: 500")

	cmd := press(s, "enter")
	assert.Equal(t, session.StartFailed, complete(t, f, cmd))
	assert.Contains(t, s.View(100, 30), "Failed to load exam")
}

func TestModesHistoryAndBack(t *testing.T) {
	f := screentest.New(t)
	s := setup(t, f)

	press(s, "down", "down", "down", "enter")
	assert.Equal(t, session.ViewHistory, f.Env.Machine.View())

	require.NoError(t, f.Env.Machine.Back())
	require.Equal(t, session.ViewModes, f.Env.Machine.View())
	press(s, "esc")
	assert.Equal(t, session.ViewSubjects, f.Env.Machine.View())
}

func TestModesIgnoresChaptersOfOtherSubject(t *testing.T) {
	f := screentest.New(t)
	s := setup(t, f)

	s.Update(chaptersMsg{subjectID: 99, chapters: []exam.Chapter{{Name: "Other"}}})
	assert.NotContains(t, s.View(100, 30), "Other")
}
