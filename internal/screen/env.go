package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/explain"
	"github.com/abhisek/examdeck/internal/session"
	"github.com/abhisek/examdeck/internal/ui/theme"
)

// Env is what every screen acts on. Machine must only be mutated from
// Update; commands may call its methods documented as goroutine safe.
type Env struct {
	Ctx     context.Context
	Machine *session.Machine
	// Explain is nil when no model is configured.
	Explain *explain.Service
}

// StartFetchedMsg carries the questions fetched for a start request.
type StartFetchedMsg struct {
	Req       session.StartRequest
	Questions []exam.Question
	Err       error
}

// FetchCmd fetches the questions for req off the UI goroutine.
func FetchCmd(env Env, req session.StartRequest) tea.Cmd {
	return func() tea.Msg {
		qs, err := env.Machine.Fetch(env.Ctx, req)
		return StartFetchedMsg{Req: req, Questions: qs, Err: err}
	}
}

// RenderNotice renders the machine's current notice, or "".
func RenderNotice(m *session.Machine) string {
	n := m.Notice()
	if n == nil {
		return ""
	}
	if n.Level == session.NoticeError {
		return theme.Incorrect.Render("! " + n.Text)
	}
	return theme.Warning.Render(n.Text)
}
