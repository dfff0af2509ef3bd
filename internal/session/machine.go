// Package session implements the exam session state machine: view
// transitions, answering policy, the mock-exam countdown, autosave and
// restore of in-progress attempts, and submission into history.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/examapi"
	"github.com/abhisek/examdeck/internal/scoring"
	"github.com/abhisek/examdeck/internal/store"
)

// DateLayout formats history dates.
const DateLayout = "15:04:05 02/01/2006"

// Deps are the collaborators of a Machine.
type Deps struct {
	Source   examapi.Source
	Sessions store.SessionRepo
	History  store.HistoryRepo
	// Subjects caches the subject list. Optional.
	Subjects store.SubjectCacheRepo
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to uuid.NewString.
	NewID func() string
}

// Machine owns all in-memory exam state. It is not safe for concurrent
// use; the UI loop drives it from a single goroutine.
type Machine struct {
	deps Deps

	view    View
	subject *exam.Subject

	mode         exam.Mode
	chapter      string
	questions    []exam.Question
	index        int
	answers      exam.AnswerMap
	timeLeft     int
	presentation exam.Presentation
	historyItem  *store.HistoryItem

	startSeq int
	loading  bool

	timerSeq   int
	timerToken int

	prompt     *Prompt
	restore    *store.SessionSnapshot
	notice     *Notice
	lastResult *Result
}

// New creates a Machine showing the subject picker.
func New(deps Deps) *Machine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Machine{deps: deps, view: ViewSubjects, answers: exam.AnswerMap{}}
}

// View returns the current view.
func (m *Machine) View() View { return m.view }

// Subject returns the selected subject, or nil.
func (m *Machine) Subject() *exam.Subject { return m.subject }

// Mode returns the mode of the active quiz.
func (m *Machine) Mode() exam.Mode { return m.mode }

// Chapter returns the chapter of the active chapter-review quiz.
func (m *Machine) Chapter() string { return m.chapter }

// Presentation returns how the active quiz accepts input.
func (m *Machine) Presentation() exam.Presentation { return m.presentation }

// Questions returns the active question list.
func (m *Machine) Questions() []exam.Question { return m.questions }

// Index returns the current question index.
func (m *Machine) Index() int { return m.index }

// Current returns the current question.
func (m *Machine) Current() (exam.Question, bool) {
	if m.index < 0 || m.index >= len(m.questions) {
		return exam.Question{}, false
	}
	return m.questions[m.index], true
}

// Answer returns the key chosen for question i, or "".
func (m *Machine) Answer(i int) string { return m.answers[i] }

// AnsweredCount returns how many questions have an answer.
func (m *Machine) AnsweredCount() int {
	n := 0
	for i := range m.questions {
		if m.answers[i] != "" {
			n++
		}
	}
	return n
}

// TimeLeft returns the remaining countdown seconds; 0 when unbounded.
func (m *Machine) TimeLeft() int { return m.timeLeft }

// Timed reports whether the active quiz runs a countdown.
func (m *Machine) Timed() bool {
	return m.view == ViewQuiz && m.presentation == exam.MockExam
}

// TimerToken identifies the running countdown; 0 when none runs.
func (m *Machine) TimerToken() int { return m.timerToken }

// Loading reports whether a start request is in flight.
func (m *Machine) Loading() bool { return m.loading }

// Pending returns the prompt awaiting a decision, or nil.
func (m *Machine) Pending() *Prompt { return m.prompt }

// LastResult returns the most recent submission result, or nil.
func (m *Machine) LastResult() *Result { return m.lastResult }

// HistoryItem returns the item being replayed in read-only mode, or nil.
func (m *Machine) HistoryItem() *store.HistoryItem { return m.historyItem }

// Reveal reports whether correctness and explanation show for question i.
func (m *Machine) Reveal(i int) bool {
	if m.view != ViewQuiz {
		return false
	}
	return m.presentation.Reveals(m.answers[i])
}

// Notice returns the current notice, dropping it once expired.
func (m *Machine) Notice() *Notice {
	if m.notice != nil && !m.notice.Expires.IsZero() && !m.deps.Now().Before(m.notice.Expires) {
		m.notice = nil
	}
	return m.notice
}

// DismissNotice clears the current notice.
func (m *Machine) DismissNotice() { m.notice = nil }

func (m *Machine) setNotice(level NoticeLevel, text string, ttl time.Duration) {
	n := &Notice{Level: level, Text: text}
	if ttl > 0 {
		n.Expires = m.deps.Now().Add(ttl)
	}
	m.notice = n
}

// liveQuiz reports whether a non-history quiz is active.
func (m *Machine) liveQuiz() bool {
	return m.view == ViewQuiz && m.presentation != exam.HistoryReadOnly
}

// Subjects returns the subject list, served from the cache when fresh.
// It only touches its collaborators and may run off the UI goroutine.
func (m *Machine) Subjects(ctx context.Context, refresh bool) ([]exam.Subject, error) {
	if m.deps.Subjects != nil && !refresh {
		cached, ok, err := m.deps.Subjects.Get(ctx)
		if err != nil {
			log.Printf("[session] read subject cache: %v", err)
		} else if ok {
			return cached, nil
		}
	}
	subjects, err := m.deps.Source.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	if m.deps.Subjects != nil {
		if err := m.deps.Subjects.Put(ctx, subjects); err != nil {
			log.Printf("[session] write subject cache: %v", err)
		}
	}
	return subjects, nil
}

// Chapters fetches the chapters of the selected subject.
func (m *Machine) Chapters(ctx context.Context) ([]exam.Chapter, error) {
	if m.subject == nil {
		return nil, ErrNoSubject
	}
	return m.FetchChapters(ctx, m.subject.ID)
}

// FetchChapters lists the chapters of subjectID without touching machine
// state, so it may run off the UI goroutine.
func (m *Machine) FetchChapters(ctx context.Context, subjectID int) ([]exam.Chapter, error) {
	chapters, err := m.deps.Source.ListChapters(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load chapters: %w", err)
	}
	return chapters, nil
}

// SelectSubject remembers s and moves to the mode picker.
func (m *Machine) SelectSubject(s exam.Subject) error {
	if m.prompt != nil {
		return ErrPromptPending
	}
	if m.view != ViewSubjects {
		return ErrWrongView
	}
	m.subject = &s
	m.cancelStart()
	m.notice = nil
	m.view = ViewModes
	return nil
}

// cancelStart invalidates any in-flight start request.
func (m *Machine) cancelStart() {
	m.startSeq++
	m.loading = false
}

// BeginStart validates a start intent and returns the request to fetch.
// The caller fetches questions and hands them to CompleteStart.
func (m *Machine) BeginStart(mode exam.Mode, chapter string) (StartRequest, error) {
	if m.prompt != nil {
		return StartRequest{}, ErrPromptPending
	}
	if m.view != ViewModes {
		return StartRequest{}, ErrWrongView
	}
	if m.subject == nil {
		return StartRequest{}, ErrNoSubject
	}
	if _, err := exam.ParseMode(string(mode)); err != nil {
		return StartRequest{}, err
	}
	if mode.NeedsChapter() && chapter == "" {
		return StartRequest{}, ErrChapterRequired
	}
	if !mode.NeedsChapter() {
		chapter = ""
	}

	m.startSeq++
	m.loading = true
	m.notice = nil
	return StartRequest{
		Seq:       m.startSeq,
		SubjectID: m.subject.ID,
		Mode:      mode,
		Chapter:   chapter,
	}, nil
}

// Fetch runs req against the configured source. Like FetchChapters it
// may run off the UI goroutine.
func (m *Machine) Fetch(ctx context.Context, req StartRequest) ([]exam.Question, error) {
	return m.deps.Source.GenerateQuestions(ctx, req.SubjectID, req.Mode, req.Chapter)
}

// CompleteStart applies the fetch result for req. Results for a request
// that is no longer current are ignored.
func (m *Machine) CompleteStart(ctx context.Context, req StartRequest, questions []exam.Question, err error) StartOutcome {
	if req.Seq != m.startSeq || !m.loading || m.view != ViewModes ||
		m.subject == nil || m.subject.ID != req.SubjectID {
		log.Printf("[session] ignoring stale start response (seq %d, current %d)", req.Seq, m.startSeq)
		return StartStale
	}
	m.loading = false

	if err != nil {
		log.Printf("[session] start %s failed: %v", req.Mode, err)
		m.setNotice(NoticeError, "Failed to load exam: "+err.Error(), 0)
		return StartFailed
	}
	if len(questions) == 0 {
		m.setNotice(NoticeInfo, "No questions found", 0)
		return StartNoContent
	}

	m.mode = req.Mode
	m.chapter = req.Chapter
	m.questions = questions
	m.index = 0
	m.answers = exam.AnswerMap{}
	m.timeLeft = req.Mode.InitialSeconds()
	m.presentation = exam.PresentationFor(req.Mode)
	m.historyItem = nil
	m.view = ViewQuiz
	if m.presentation == exam.MockExam {
		m.startTimer()
	}
	m.autosave(ctx)
	return StartStarted
}

// Start runs BeginStart, Fetch and CompleteStart in sequence.
func (m *Machine) Start(ctx context.Context, mode exam.Mode, chapter string) (StartOutcome, error) {
	req, err := m.BeginStart(mode, chapter)
	if err != nil {
		return StartFailed, err
	}
	qs, fetchErr := m.Fetch(ctx, req)
	return m.CompleteStart(ctx, req, qs, fetchErr), nil
}

// Choose records key for the current question, following the
// presentation's selection policy. It reports whether the answer changed.
func (m *Machine) Choose(ctx context.Context, key string) bool {
	if m.prompt != nil || !m.liveQuiz() {
		return false
	}
	q, ok := m.Current()
	if !ok {
		return false
	}
	if _, ok := q.AnswerText(key); !ok {
		return false
	}
	prev := m.answers[m.index]
	if prev == key || !m.presentation.CanSelect(prev) {
		return false
	}
	m.answers[m.index] = key
	m.autosave(ctx)
	return true
}

// Next moves to the following question, stopping at the last.
func (m *Machine) Next(ctx context.Context) bool { return m.Goto(ctx, m.index+1) }

// Prev moves to the previous question, stopping at the first.
func (m *Machine) Prev(ctx context.Context) bool { return m.Goto(ctx, m.index-1) }

// Goto jumps to question i. Out-of-range indices are ignored.
func (m *Machine) Goto(ctx context.Context, i int) bool {
	if m.prompt != nil || m.view != ViewQuiz {
		return false
	}
	if i < 0 || i >= len(m.questions) || i == m.index {
		return false
	}
	m.index = i
	if m.liveQuiz() {
		m.autosave(ctx)
	}
	return true
}

// startTimer begins a new countdown, invalidating any previous one.
func (m *Machine) startTimer() {
	m.timerSeq++
	m.timerToken = m.timerSeq
}

// stopTimer cancels the running countdown.
func (m *Machine) stopTimer() {
	m.timerToken = 0
}

// Tick advances the countdown identified by token by one second. When the
// countdown reaches zero the attempt is submitted without confirmation.
func (m *Machine) Tick(ctx context.Context, token int) TickOutcome {
	if token == 0 || token != m.timerToken || !m.Timed() {
		return TickIgnored
	}
	if m.timeLeft > 0 {
		m.timeLeft--
	}
	if m.timeLeft > 0 {
		m.autosave(ctx)
		return TickContinue
	}
	log.Printf("[session] countdown expired, submitting")
	m.submit(ctx, true)
	return TickSubmitted
}

// RequestSubmit asks for confirmation before submitting.
func (m *Machine) RequestSubmit() error {
	if m.prompt != nil {
		return ErrPromptPending
	}
	if !m.liveQuiz() {
		return ErrNotInQuiz
	}
	msg := "Submit your answers?"
	if left := len(m.questions) - m.AnsweredCount(); left > 0 {
		msg = fmt.Sprintf("Submit your answers? %d question(s) unanswered.", left)
	}
	m.prompt = &Prompt{Kind: PromptSubmit, Message: msg}
	return nil
}

// Submit scores the live quiz immediately, records it in history and
// moves to the history browser.
func (m *Machine) Submit(ctx context.Context) (*Result, error) {
	if !m.liveQuiz() {
		return nil, ErrNotInQuiz
	}
	return m.submit(ctx, false), nil
}

func (m *Machine) submit(ctx context.Context, auto bool) *Result {
	now := m.deps.Now()
	score := scoring.Score(m.questions, m.answers)
	item := store.HistoryItem{
		ID:          m.deps.NewID(),
		Date:        now.Format(DateLayout),
		Mode:        m.mode.Label(),
		ModeValue:   m.mode,
		Chapter:     m.chapter,
		Correct:     score.Correct,
		Total:       score.Total,
		Score:       score.Score,
		Questions:   m.questions,
		Answers:     m.answers.Clone(),
		SubmittedAt: now.UnixMilli(),
	}

	m.stopTimer()
	m.prompt = nil
	if err := m.deps.History.Add(ctx, m.subject.ID, item); err != nil {
		log.Printf("[session] record history: %v", err)
		m.setNotice(NoticeError, "Could not save result to history", 0)
	}
	m.discardSnapshot(ctx)

	m.lastResult = &Result{Result: score, Subject: *m.subject, Item: item, Auto: auto}
	m.clearQuiz()
	m.view = ViewHistory
	return m.lastResult
}

func (m *Machine) clearQuiz() {
	m.stopTimer()
	m.questions = nil
	m.answers = exam.AnswerMap{}
	m.index = 0
	m.timeLeft = 0
	m.historyItem = nil
}

// Back performs the back action of the current view. Leaving a live quiz
// raises an exit prompt instead of transitioning.
func (m *Machine) Back() error {
	if m.prompt != nil {
		return ErrPromptPending
	}
	switch m.view {
	case ViewModes:
		m.cancelStart()
		m.subject = nil
		m.notice = nil
		m.view = ViewSubjects
	case ViewQuiz:
		if m.presentation == exam.HistoryReadOnly {
			m.clearQuiz()
			m.view = ViewHistory
			return nil
		}
		m.prompt = &Prompt{Kind: PromptExit, Message: "Exiting discards your unsaved progress. Continue?"}
	case ViewHistory:
		m.lastResult = nil
		if m.subject != nil {
			m.view = ViewModes
		} else {
			m.view = ViewSubjects
		}
	}
	return nil
}

// ShowHistory opens the history browser of the selected subject.
func (m *Machine) ShowHistory() error {
	if m.prompt != nil {
		return ErrPromptPending
	}
	if m.subject == nil {
		return ErrNoSubject
	}
	if m.view == ViewQuiz {
		return ErrWrongView
	}
	m.cancelStart()
	m.lastResult = nil
	m.view = ViewHistory
	return nil
}

// History lists the selected subject's submitted attempts.
func (m *Machine) History(ctx context.Context) ([]store.HistoryItem, error) {
	if m.subject == nil {
		return nil, ErrNoSubject
	}
	return m.deps.History.List(ctx, m.subject.ID)
}

// OpenHistoryItem replays item read-only.
func (m *Machine) OpenHistoryItem(item store.HistoryItem) error {
	if m.prompt != nil {
		return ErrPromptPending
	}
	if m.view != ViewHistory {
		return ErrWrongView
	}
	if len(item.Questions) == 0 {
		return fmt.Errorf("history item %s has no questions", item.ID)
	}
	m.stopTimer()
	m.mode = item.ModeValue
	m.chapter = item.Chapter
	m.questions = item.Questions
	m.answers = item.Answers.Clone()
	m.index = 0
	m.timeLeft = 0
	m.presentation = exam.HistoryReadOnly
	m.historyItem = &item
	// The banner belongs to the attempt just submitted, not to a replay.
	m.lastResult = nil
	m.view = ViewQuiz
	return nil
}

// RequestClearHistory asks for confirmation before deleting the selected
// subject's history.
func (m *Machine) RequestClearHistory() error {
	if m.prompt != nil {
		return ErrPromptPending
	}
	if m.subject == nil {
		return ErrNoSubject
	}
	if m.view != ViewHistory {
		return ErrWrongView
	}
	m.prompt = &Prompt{
		Kind:    PromptClearHistory,
		Message: fmt.Sprintf("Delete all history for %q?", m.subject.Name),
	}
	return nil
}

// CheckRestore looks for a saved attempt and, when one is restorable,
// raises a restore prompt naming its subject.
func (m *Machine) CheckRestore(ctx context.Context) error {
	if m.prompt != nil || m.view != ViewSubjects {
		return nil
	}
	snap, err := m.deps.Sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("check restore: %w", err)
	}
	if snap == nil {
		return nil
	}
	if _, err := exam.ParseMode(string(snap.Mode)); err != nil {
		log.Printf("[session] discarding snapshot: %v", err)
		m.discardSnapshot(ctx)
		return nil
	}
	m.restore = snap
	m.prompt = &Prompt{
		Kind:    PromptRestore,
		Message: fmt.Sprintf("Resume your unfinished exam for %q?", snap.Subject.Name),
	}
	return nil
}

// Resolve answers the pending prompt and performs the guarded transition
// when accepted.
func (m *Machine) Resolve(ctx context.Context, accept bool) error {
	p := m.prompt
	if p == nil {
		return nil
	}
	m.prompt = nil

	switch p.Kind {
	case PromptExit:
		if !accept || !m.liveQuiz() {
			return nil
		}
		m.discardSnapshot(ctx)
		m.clearQuiz()
		m.view = ViewModes
	case PromptSubmit:
		if !accept || !m.liveQuiz() {
			return nil
		}
		m.submit(ctx, false)
	case PromptRestore:
		snap := m.restore
		m.restore = nil
		if snap == nil {
			return nil
		}
		if !accept {
			m.discardSnapshot(ctx)
			return nil
		}
		m.applySnapshot(ctx, snap)
	case PromptClearHistory:
		if !accept || m.subject == nil {
			return nil
		}
		if err := m.deps.History.Clear(ctx, m.subject.ID); err != nil {
			m.setNotice(NoticeError, "Could not clear history", 0)
			return fmt.Errorf("clear history: %w", err)
		}
		m.lastResult = nil
	}
	return nil
}

func (m *Machine) applySnapshot(ctx context.Context, snap *store.SessionSnapshot) {
	subject := snap.Subject
	m.subject = &subject
	m.mode = snap.Mode
	m.chapter = snap.Chapter
	m.questions = snap.Questions
	m.answers = snap.Answers
	if m.answers == nil {
		m.answers = exam.AnswerMap{}
	}
	m.index = snap.Index
	if m.index < 0 || m.index >= len(m.questions) {
		m.index = 0
	}
	m.presentation = exam.PresentationFor(snap.Mode)
	m.timeLeft = snap.TimeLeft
	m.historyItem = nil
	m.view = ViewQuiz
	if m.presentation == exam.MockExam {
		if m.timeLeft <= 0 {
			m.timeLeft = 1
		}
		m.startTimer()
	} else {
		m.timeLeft = 0
	}
	m.setNotice(NoticeInfo, "Restored previous attempt", RestoreNoticeDuration)
	m.autosave(ctx)
}

// Snapshot captures the live quiz for persistence. It returns nil when no
// live quiz is active.
func (m *Machine) Snapshot() *store.SessionSnapshot {
	if !m.liveQuiz() || m.subject == nil {
		return nil
	}
	return &store.SessionSnapshot{
		Subject:      *m.subject,
		Mode:         m.mode,
		Chapter:      m.chapter,
		Questions:    m.questions,
		Index:        m.index,
		Answers:      m.answers.Clone(),
		TimeLeft:     m.timeLeft,
		IsReviewMode: m.presentation == exam.LiveReview,
	}
}

func (m *Machine) autosave(ctx context.Context) {
	snap := m.Snapshot()
	if snap == nil {
		return
	}
	if err := m.deps.Sessions.Save(ctx, snap); err != nil {
		log.Printf("[session] autosave: %v", err)
	}
}

func (m *Machine) discardSnapshot(ctx context.Context) {
	if err := m.deps.Sessions.Discard(ctx); err != nil {
		log.Printf("[session] discard snapshot: %v", err)
	}
}
