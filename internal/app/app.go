// Package app is the root Bubble Tea model. It keeps the screen stack in
// step with the session machine.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examdeck/internal/counter"
	"github.com/abhisek/examdeck/internal/explain"
	"github.com/abhisek/examdeck/internal/router"
	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/screens/confirm"
	"github.com/abhisek/examdeck/internal/screens/history"
	"github.com/abhisek/examdeck/internal/screens/modes"
	"github.com/abhisek/examdeck/internal/screens/quiz"
	"github.com/abhisek/examdeck/internal/screens/subjects"
	"github.com/abhisek/examdeck/internal/session"
	"github.com/abhisek/examdeck/internal/ui/layout"
)

// Counter records a visit and returns the total.
type Counter interface {
	Hit(ctx context.Context) (int, error)
}

// Options configure the TUI.
type Options struct {
	Machine *session.Machine
	// Explain is optional.
	Explain *explain.Service
	// Counter is optional; the footer hides the visit count without it.
	Counter Counter
	Version string
}

type tickMsg struct{ token int }

type noticeExpiredMsg struct{}

type visitsMsg struct {
	count int
	err   error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env     screen.Env
	router  *router.Router
	counter Counter
	version string

	view         session.View
	timerToken   int
	noticeExpiry time.Time
	visits       string

	width  int
	height int
}

func newAppModel(ctx context.Context, opts Options) *AppModel {
	env := screen.Env{Ctx: ctx, Machine: opts.Machine, Explain: opts.Explain}
	m := &AppModel{
		env:     env,
		counter: opts.Counter,
		version: opts.Version,
		view:    opts.Machine.View(),
		visits:  counter.Pending,
	}
	m.router = router.New(m.screenFor(m.view))
	return m
}

// screenFor builds the base screen of a machine view.
func (m *AppModel) screenFor(v session.View) screen.Screen {
	switch v {
	case session.ViewModes:
		return modes.New(m.env)
	case session.ViewQuiz:
		return quiz.New(m.env)
	case session.ViewHistory:
		return history.New(m.env)
	default:
		return subjects.New(m.env)
	}
}

func (m *AppModel) Init() tea.Cmd {
	if err := m.env.Machine.CheckRestore(m.env.Ctx); err != nil {
		log.Printf("[app] check restore: %v", err)
	}
	cmds := []tea.Cmd{m.router.Active().Init(), m.sync()}
	if m.counter != nil {
		c, ctx := m.counter, m.env.Ctx
		cmds = append(cmds, func() tea.Msg {
			n, err := c.Hit(ctx)
			return visitsMsg{count: n, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd = m.router.Update(msg)

	case tickMsg:
		if m.env.Machine.Tick(m.env.Ctx, msg.token) == session.TickContinue {
			cmd = tick(msg.token)
		}

	case noticeExpiredMsg:
		// Notice() drops the expired notice; the re-render picks it up.
		m.env.Machine.Notice()

	case visitsMsg:
		if msg.err != nil {
			log.Printf("[app] visit counter: %v", msg.err)
			m.visits = counter.Failed
		} else {
			m.visits = counter.Format(msg.count)
		}
		return m, nil

	case screen.StartFetchedMsg:
		m.env.Machine.CompleteStart(m.env.Ctx, msg.Req, msg.Questions, msg.Err)

	default:
		cmd = m.router.Update(msg)
	}

	return m, tea.Batch(cmd, m.sync())
}

// sync reconciles the screen stack, the countdown and notice expiry with
// the machine after it may have changed.
func (m *AppModel) sync() tea.Cmd {
	mc := m.env.Machine
	var cmds []tea.Cmd

	if c, ok := m.router.Active().(*confirm.Screen); ok && (c.Done() || mc.Pending() == nil) {
		m.router.Pop()
		cmds = append(cmds, func() tea.Msg { return screen.RefreshMsg{} })
	}

	if v := mc.View(); v != m.view {
		m.view = v
		cmds = append(cmds, m.router.Reset(m.screenFor(v)))
	}

	if mc.Pending() != nil {
		if _, ok := m.router.Active().(*confirm.Screen); !ok {
			cmds = append(cmds, m.router.Push(confirm.New(m.env)))
		}
	}

	if tok := mc.TimerToken(); tok != m.timerToken {
		m.timerToken = tok
		if tok != 0 {
			cmds = append(cmds, tick(tok))
		}
	}

	if n := mc.Notice(); n != nil && !n.Expires.IsZero() && !n.Expires.Equal(m.noticeExpiry) {
		m.noticeExpiry = n.Expires
		cmds = append(cmds, tea.Tick(time.Until(n.Expires), func(time.Time) tea.Msg {
			return noticeExpiredMsg{}
		}))
	}

	return tea.Batch(cmds...)
}

func tick(token int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{token: token} })
}

func (m *AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame: header, active screen and footer.
func (m *AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	status := ""
	// The base screen owns the status so the countdown stays visible under
	// a confirmation.
	if sp, ok := m.router.Base().(screen.StatusProvider); ok {
		status = sp.Status()
	}
	header := layout.RenderHeader(active.Title(), status, m.width)

	var hints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = hp.KeyHints()
	}
	if !layout.IsCompactWidth(m.width) {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	extra := ""
	if m.counter != nil {
		extra = "visits " + m.visits
	}
	if m.version != "" && !layout.IsCompactWidth(m.width) {
		extra += "  " + m.version
	}
	footer := layout.RenderFooter(hints, extra, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(ctx, opts), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
