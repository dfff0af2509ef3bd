package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/store"
)

// fakeSource is an in-memory question bank.
type fakeSource struct {
	subjects  []exam.Subject
	chapters  []exam.Chapter
	questions []exam.Question
	err       error

	subjectCalls  int
	generateCalls int
	lastMode      exam.Mode
	lastChapter   string
}

func (f *fakeSource) ListSubjects(context.Context) ([]exam.Subject, error) {
	f.subjectCalls++
	return f.subjects, f.err
}

func (f *fakeSource) ListChapters(context.Context, int) ([]exam.Chapter, error) {
	return f.chapters, f.err
}

func (f *fakeSource) GenerateQuestions(_ context.Context, _ int, mode exam.Mode, chapter string) ([]exam.Question, error) {
	f.generateCalls++
	f.lastMode = mode
	f.lastChapter = chapter
	return f.questions, f.err
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	m        *Machine
	src      *fakeSource
	kv       *store.MemoryKV
	clk      *clock
	sessions store.SessionRepo
	history  store.HistoryRepo
}

func makeQuestions(n int) []exam.Question {
	qs := make([]exam.Question, n)
	for i := range qs {
		qs[i] = exam.Question{
			Text:        fmt.Sprintf("Question %d", i+1),
			Answers:     []exam.Answer{{Key: "A", Text: "alpha"}, {Key: "B", Text: "beta"}, {Key: "C", Text: "gamma"}},
			CorrectKey:  "B",
			Explanation: "beta is right",
		}
	}
	return qs
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	kv := store.NewMemoryKV()
	clk := &clock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	src := &fakeSource{
		subjects:  []exam.Subject{{ID: 1, Name: "Networks"}, {ID: 2, Name: "Databases"}},
		chapters:  []exam.Chapter{{Name: "1"}, {Name: "2"}},
		questions: makeQuestions(4),
	}
	h := &harness{
		src:      src,
		kv:       kv,
		clk:      clk,
		sessions: store.NewSessionRepo(kv, clk.Now),
		history:  store.NewHistoryRepo(kv),
	}
	ids := 0
	h.m = New(Deps{
		Source:   src,
		Sessions: h.sessions,
		History:  h.history,
		Subjects: store.NewSubjectCache(kv, 20*time.Minute, clk.Now),
		Now:      clk.Now,
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	})
	return h
}

func (h *harness) startQuiz(t *testing.T, mode exam.Mode, chapter string) {
	t.Helper()
	require.NoError(t, h.m.SelectSubject(h.src.subjects[0]))
	out, err := h.m.Start(context.Background(), mode, chapter)
	require.NoError(t, err)
	require.Equal(t, StartStarted, out)
}

func (h *harness) snapshot(t *testing.T) *store.SessionSnapshot {
	t.Helper()
	snap, err := h.sessions.Load(context.Background())
	require.NoError(t, err)
	return snap
}

func TestSelectSubjectAndBack(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ViewSubjects, h.m.View())

	require.NoError(t, h.m.SelectSubject(exam.Subject{ID: 9, Name: "Compilers"}))
	assert.Equal(t, ViewModes, h.m.View())
	assert.Equal(t, 9, h.m.Subject().ID)

	require.NoError(t, h.m.Back())
	assert.Equal(t, ViewSubjects, h.m.View())
	assert.Nil(t, h.m.Subject())
}

func TestStartRequiresSubjectAndChapter(t *testing.T) {
	h := newHarness(t)
	_, err := h.m.BeginStart(exam.ModeMockExam, "")
	assert.ErrorIs(t, err, ErrWrongView)

	require.NoError(t, h.m.SelectSubject(h.src.subjects[0]))
	_, err = h.m.BeginStart(exam.ModeChapterReview, "")
	assert.ErrorIs(t, err, ErrChapterRequired)
	_, err = h.m.BeginStart(exam.Mode("bogus"), "")
	assert.Error(t, err)
	assert.False(t, h.m.Loading())
}

func TestStartMockExam(t *testing.T) {
	h := newHarness(t)
	h.startQuiz(t, exam.ModeMockExam, "ignored")

	assert.Equal(t, ViewQuiz, h.m.View())
	assert.Equal(t, exam.MockExam, h.m.Presentation())
	assert.Equal(t, 3600, h.m.TimeLeft())
	assert.NotZero(t, h.m.TimerToken())
	assert.Equal(t, 0, h.m.Index())
	assert.Equal(t, "", h.src.lastChapter)

	snap := h.snapshot(t)
	require.NotNil(t, snap)
	assert.Equal(t, exam.ModeMockExam, snap.Mode)
	assert.False(t, snap.IsReviewMode)
}

func TestStartReviewModes(t *testing.T) {
	for _, mode := range []exam.Mode{exam.ModeRandomReview, exam.ModeChapterReview} {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(t)
			h.startQuiz(t, mode, "2")
			assert.Equal(t, exam.LiveReview, h.m.Presentation())
			assert.Equal(t, 0, h.m.TimeLeft())
			assert.Zero(t, h.m.TimerToken())
			assert.False(t, h.m.Timed())
			if mode == exam.ModeChapterReview {
				assert.Equal(t, "2", h.src.lastChapter)
			}
		})
	}
}

func TestStartEmptyResult(t *testing.T) {
	h := newHarness(t)
	h.src.questions = nil
	require.NoError(t, h.m.SelectSubject(h.src.subjects[0]))

	out, err := h.m.Start(context.Background(), exam.ModeChapterReview, "7")
	require.NoError(t, err)
	assert.Equal(t, StartNoContent, out)
	assert.Equal(t, ViewModes, h.m.View())
	require.NotNil(t, h.m.Notice())
	assert.Equal(t, "No questions found", h.m.Notice().Text)

	_, ok, err := h.kv.Get(context.Background(), store.SessionKey)
	require.NoError(t, err)
	assert.False(t, ok, "no session must be persisted")
}

func TestStartTransportFailure(t *testing.T) {
	h := newHarness(t)
	h.src.err = errors.New("connection refused")
	require.NoError(t, h.m.SelectSubject(h.src.subjects[0]))

	out, err := h.m.Start(context.Background(), exam.ModeRandomReview, "")
	require.NoError(t, err)
	assert.Equal(t, StartFailed, out)
	assert.Equal(t, ViewModes, h.m.View())
	require.NotNil(t, h.m.Notice())
	assert.Equal(t, NoticeError, h.m.Notice().Level)
	assert.Contains(t, h.m.Notice().Text, "connection refused")
	assert.Nil(t, h.snapshot(t))
}

func TestStaleStartIgnored(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.m.SelectSubject(h.src.subjects[0]))

	first, err := h.m.BeginStart(exam.ModeMockExam, "")
	require.NoError(t, err)
	second, err := h.m.BeginStart(exam.ModeRandomReview, "")
	require.NoError(t, err)

	assert.Equal(t, StartStale, h.m.CompleteStart(ctx, first, makeQuestions(2), nil))
	assert.Equal(t, ViewModes, h.m.View())
	assert.Equal(t, StartStarted, h.m.CompleteStart(ctx, second, makeQuestions(2), nil))
	assert.Equal(t, exam.ModeRandomReview, h.m.Mode())
}

func TestStartResponseAfterNavigatingAway(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.m.SelectSubject(h.src.subjects[0]))
	req, err := h.m.BeginStart(exam.ModeMockExam, "")
	require.NoError(t, err)

	require.NoError(t, h.m.Back())
	require.NoError(t, h.m.SelectSubject(h.src.subjects[1]))

	assert.Equal(t, StartStale, h.m.CompleteStart(ctx, req, makeQuestions(3), nil))
	assert.Equal(t, ViewModes, h.m.View())
	assert.Nil(t, h.snapshot(t))
}

func TestMockExamAnswersOverwrite(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeMockExam, "")

	assert.True(t, h.m.Choose(ctx, "A"))
	assert.True(t, h.m.Choose(ctx, "C"))
	assert.Equal(t, "C", h.m.Answer(0))
	assert.False(t, h.m.Reveal(0), "mock exam hides feedback")
	assert.False(t, h.m.Choose(ctx, "Z"), "unknown key ignored")

	assert.Equal(t, exam.AnswerMap{0: "C"}, h.snapshot(t).Answers)
}

func TestReviewAnswersLock(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeRandomReview, "")

	assert.False(t, h.m.Reveal(0))
	assert.True(t, h.m.Choose(ctx, "A"))
	assert.False(t, h.m.Choose(ctx, "B"))
	assert.Equal(t, "A", h.m.Answer(0))
	assert.True(t, h.m.Reveal(0))
}

func TestNavigation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeRandomReview, "")

	assert.False(t, h.m.Prev(ctx))
	assert.True(t, h.m.Next(ctx))
	assert.Equal(t, 1, h.m.Index())
	assert.True(t, h.m.Goto(ctx, 3))
	assert.False(t, h.m.Next(ctx))
	assert.False(t, h.m.Goto(ctx, 4))
	assert.False(t, h.m.Goto(ctx, -1))
	assert.Equal(t, 3, h.m.Index())
	assert.Equal(t, 3, h.snapshot(t).Index)
}

func TestTimerTicksAndAutoSubmit(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeMockExam, "")
	h.m.Choose(ctx, "B")
	token := h.m.TimerToken()

	assert.Equal(t, TickIgnored, h.m.Tick(ctx, token+1))
	assert.Equal(t, TickContinue, h.m.Tick(ctx, token))
	assert.Equal(t, 3599, h.m.TimeLeft())
	assert.Equal(t, 3599, h.snapshot(t).TimeLeft)

	h.m.timeLeft = 1
	require.NoError(t, h.m.RequestSubmit())
	assert.Equal(t, TickSubmitted, h.m.Tick(ctx, token))
	assert.Nil(t, h.m.Pending(), "auto submit needs no confirmation")
	assert.Equal(t, ViewHistory, h.m.View())
	assert.Zero(t, h.m.TimerToken())

	// Late ticks from the cancelled countdown do nothing.
	assert.Equal(t, TickIgnored, h.m.Tick(ctx, token))

	items, err := h.history.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1, "exactly one history entry")
	assert.Equal(t, 1, items[0].Correct)
	assert.Equal(t, "2.5", items[0].Score)
	assert.Nil(t, h.snapshot(t))

	res := h.m.LastResult()
	require.NotNil(t, res)
	assert.True(t, res.Auto)
}

func TestSubmitFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeMockExam, "")
	h.m.Choose(ctx, "B")
	h.m.Next(ctx)
	h.m.Choose(ctx, "B")

	require.NoError(t, h.m.RequestSubmit())
	p := h.m.Pending()
	require.NotNil(t, p)
	assert.Equal(t, PromptSubmit, p.Kind)
	assert.Contains(t, p.Message, "2 question(s) unanswered")

	require.NoError(t, h.m.Resolve(ctx, false))
	assert.Equal(t, ViewQuiz, h.m.View())

	require.NoError(t, h.m.RequestSubmit())
	require.NoError(t, h.m.Resolve(ctx, true))
	assert.Equal(t, ViewHistory, h.m.View())

	res := h.m.LastResult()
	require.NotNil(t, res)
	assert.False(t, res.Auto)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, "5.0", res.Score)
	assert.Equal(t, "id-1", res.Item.ID)
	assert.Equal(t, "10:00:00 04/05/2026", res.Item.Date)
	assert.Equal(t, "Mock exam", res.Item.Mode)
	assert.Nil(t, h.snapshot(t))
}

func TestExitConfirmation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeMockExam, "")
	h.m.Choose(ctx, "A")

	require.NoError(t, h.m.Back())
	require.NotNil(t, h.m.Pending())
	assert.Equal(t, PromptExit, h.m.Pending().Kind)
	assert.ErrorIs(t, h.m.Back(), ErrPromptPending)

	require.NoError(t, h.m.Resolve(ctx, false))
	assert.Equal(t, ViewQuiz, h.m.View())
	assert.NotNil(t, h.snapshot(t))

	require.NoError(t, h.m.Back())
	require.NoError(t, h.m.Resolve(ctx, true))
	assert.Equal(t, ViewModes, h.m.View())
	assert.Zero(t, h.m.TimerToken())
	assert.Nil(t, h.snapshot(t))
}

func TestHistoryReadOnlyReplay(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeRandomReview, "")
	h.m.Choose(ctx, "A")
	_, err := h.m.Submit(ctx)
	require.NoError(t, err)

	items, err := h.m.History(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, h.m.LastResult())

	require.NoError(t, h.m.OpenHistoryItem(items[0]))
	assert.Nil(t, h.m.LastResult(), "a replay drops the submit banner")
	assert.Equal(t, ViewQuiz, h.m.View())
	assert.Equal(t, exam.HistoryReadOnly, h.m.Presentation())
	assert.Zero(t, h.m.TimerToken())
	assert.True(t, h.m.Reveal(0))
	assert.True(t, h.m.Reveal(1), "unanswered questions reveal in history")
	assert.False(t, h.m.Choose(ctx, "B"))
	assert.Equal(t, "A", h.m.Answer(0))
	assert.True(t, h.m.Next(ctx))
	assert.Nil(t, h.snapshot(t), "read-only replay is never persisted")

	require.NoError(t, h.m.Back())
	assert.Nil(t, h.m.Pending())
	assert.Equal(t, ViewHistory, h.m.View())
	assert.Nil(t, h.m.LastResult())

	require.NoError(t, h.m.Back())
	assert.Equal(t, ViewModes, h.m.View())
}

func TestHistoryBackWithoutSubject(t *testing.T) {
	h := newHarness(t)
	h.m.view = ViewHistory
	require.NoError(t, h.m.Back())
	assert.Equal(t, ViewSubjects, h.m.View())
}

func TestHistoryCapThroughMachine(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.m.SelectSubject(h.src.subjects[0]))
	for i := 0; i < store.HistoryLimit+1; i++ {
		out, err := h.m.Start(ctx, exam.ModeRandomReview, "")
		require.NoError(t, err)
		require.Equal(t, StartStarted, out)
		_, err = h.m.Submit(ctx)
		require.NoError(t, err)
		require.NoError(t, h.m.Back())
	}
	items, err := h.m.History(ctx)
	require.NoError(t, err)
	assert.Len(t, items, store.HistoryLimit)
	assert.Equal(t, fmt.Sprintf("id-%d", store.HistoryLimit+1), items[0].ID)
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeRandomReview, "")
	_, err := h.m.Submit(ctx)
	require.NoError(t, err)

	require.NoError(t, h.m.RequestClearHistory())
	require.NoError(t, h.m.Resolve(ctx, false))
	items, _ := h.m.History(ctx)
	assert.Len(t, items, 1)

	require.NoError(t, h.m.RequestClearHistory())
	assert.Contains(t, h.m.Pending().Message, "Networks")
	require.NoError(t, h.m.Resolve(ctx, true))
	items, _ = h.m.History(ctx)
	assert.Empty(t, items)
}

func TestRestoreAccepted(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeMockExam, "")
	h.m.Next(ctx)
	h.m.Choose(ctx, "C")
	h.m.Tick(ctx, h.m.TimerToken())

	h.clk.Advance(2 * time.Hour)
	fresh := New(Deps{Source: h.src, Sessions: h.sessions, History: h.history, Now: h.clk.Now})
	require.NoError(t, fresh.CheckRestore(ctx))
	p := fresh.Pending()
	require.NotNil(t, p)
	assert.Equal(t, PromptRestore, p.Kind)
	assert.Contains(t, p.Message, "Networks")

	require.NoError(t, fresh.Resolve(ctx, true))
	assert.Equal(t, ViewQuiz, fresh.View())
	assert.Equal(t, 1, fresh.Index())
	assert.Equal(t, "C", fresh.Answer(1))
	assert.Equal(t, 3599, fresh.TimeLeft())
	assert.NotZero(t, fresh.TimerToken(), "countdown resumes")

	n := fresh.Notice()
	require.NotNil(t, n)
	assert.Equal(t, "Restored previous attempt", n.Text)
	h.clk.Advance(RestoreNoticeDuration)
	assert.Nil(t, fresh.Notice())
}

func TestRestoreDeclined(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeRandomReview, "")

	fresh := New(Deps{Source: h.src, Sessions: h.sessions, History: h.history, Now: h.clk.Now})
	require.NoError(t, fresh.CheckRestore(ctx))
	require.NoError(t, fresh.Resolve(ctx, false))
	assert.Equal(t, ViewSubjects, fresh.View())
	assert.Nil(t, h.snapshot(t))
}

func TestRestoreStale(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.startQuiz(t, exam.ModeRandomReview, "")

	h.clk.Advance(24*time.Hour + time.Minute)
	fresh := New(Deps{Source: h.src, Sessions: h.sessions, History: h.history, Now: h.clk.Now})
	require.NoError(t, fresh.CheckRestore(ctx))
	assert.Nil(t, fresh.Pending())
	_, ok, _ := h.kv.Get(ctx, store.SessionKey)
	assert.False(t, ok)
}

func TestSubjectsUsesCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.m.Subjects(ctx, false)
	require.NoError(t, err)
	h.clk.Advance(10 * time.Minute)
	subjects, err := h.m.Subjects(ctx, false)
	require.NoError(t, err)
	assert.Len(t, subjects, 2)
	assert.Equal(t, 1, h.src.subjectCalls)

	h.clk.Advance(11 * time.Minute)
	_, err = h.m.Subjects(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, h.src.subjectCalls)

	_, err = h.m.Subjects(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 3, h.src.subjectCalls)
}

func TestSubjectsFailure(t *testing.T) {
	h := newHarness(t)
	h.src.err = errors.New("offline")
	_, err := h.m.Subjects(context.Background(), false)
	assert.ErrorContains(t, err, "offline")
}

func TestShowHistory(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.m.ShowHistory(), ErrNoSubject)
	require.NoError(t, h.m.SelectSubject(h.src.subjects[0]))
	require.NoError(t, h.m.ShowHistory())
	assert.Equal(t, ViewHistory, h.m.View())
}
