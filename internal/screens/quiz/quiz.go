// Package quiz runs a quiz: the live attempt and the read-only replay of
// a submitted one.
package quiz

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/explain"
	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/session"
	"github.com/abhisek/examdeck/internal/ui/components"
	"github.com/abhisek/examdeck/internal/ui/layout"
	"github.com/abhisek/examdeck/internal/ui/theme"
)

// WarnSeconds is the remaining time below which the clock turns amber.
const WarnSeconds = 300

var (
	keyChoose  = key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "choose"))
	keySubmit  = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit"))
	keyGoto    = key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to"))
	keyExplain = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "explain"))
)

type explainedMsg struct {
	question string
	text     string
	err      error
}

// FormatClock renders a countdown as mm:ss, or ∞ when untimed.
func FormatClock(seconds int, timed bool) string {
	if !timed {
		return "∞"
	}
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Screen shows the current question of the machine's quiz.
type Screen struct {
	env screen.Env

	cursor    int
	lastIndex int

	jumping bool
	jump    components.TextInput

	// explanations holds model answers keyed by question text.
	explanations map[string]string
	explainErr   map[string]error
	explaining   string
	spinner      spinner.Model
}

var _ screen.Screen = (*Screen)(nil)

func New(env screen.Env) *Screen {
	s := &Screen{
		env:          env,
		lastIndex:    -1,
		explanations: map[string]string{},
		explainErr:   map[string]error{},
		spinner:      spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Selected)),
	}
	s.syncCursor()
	return s
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string {
	m := s.env.Machine
	return fmt.Sprintf("Question %d/%d", m.Index()+1, len(m.Questions()))
}

// Status renders the countdown for the header.
func (s *Screen) Status() string {
	m := s.env.Machine
	if m.Presentation() == exam.HistoryReadOnly {
		return theme.Hint.Render("review")
	}
	clock := FormatClock(m.TimeLeft(), m.Timed())
	if m.Timed() && m.TimeLeft() < WarnSeconds {
		return theme.Warning.Render("⏱ " + clock)
	}
	return theme.Body.Render("⏱ " + clock)
}

// syncCursor puts the cursor on the chosen answer whenever the question
// changes.
func (s *Screen) syncCursor() {
	m := s.env.Machine
	if m.Index() == s.lastIndex {
		return
	}
	s.lastIndex = m.Index()
	s.cursor = 0
	q, ok := m.Current()
	if !ok {
		return
	}
	chosen := m.Answer(m.Index())
	for i, a := range q.Answers {
		if a.Key == chosen {
			s.cursor = i
		}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	defer s.syncCursor()

	switch msg := msg.(type) {
	case explainedMsg:
		if msg.question == s.explaining {
			s.explaining = ""
		}
		if msg.err != nil {
			log.Printf("[quiz] explain: %v", msg.err)
			s.explainErr[msg.question] = msg.err
		} else {
			s.explanations[msg.question] = msg.text
			delete(s.explainErr, msg.question)
		}
		return s, nil
	case spinner.TickMsg:
		if s.explaining == "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.KeyPressMsg:
		if s.jumping {
			return s.updateJump(msg)
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) updateJump(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.jumping = false
		return s, nil
	case "enter":
		s.jumping = false
		if n, err := s.jump.NumericValue(); err == nil {
			s.env.Machine.Goto(s.env.Ctx, n-1)
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.jump, cmd = s.jump.Update(msg)
	return s, cmd
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	m := s.env.Machine
	ctx := s.env.Ctx
	q, ok := m.Current()
	if !ok {
		return s, nil
	}

	switch {
	case key.Matches(msg, components.KeyBack):
		if err := m.Back(); err != nil {
			log.Printf("[quiz] back: %v", err)
		}
	case key.Matches(msg, components.KeyLeft):
		m.Prev(ctx)
	case key.Matches(msg, components.KeyRight):
		m.Next(ctx)
	case key.Matches(msg, components.KeyUp):
		s.cursor = max(s.cursor-1, 0)
	case key.Matches(msg, components.KeyDown):
		s.cursor = min(s.cursor+1, max(len(q.Answers)-1, 0))
	case key.Matches(msg, keyChoose):
		if s.cursor < len(q.Answers) {
			m.Choose(ctx, q.Answers[s.cursor].Key)
		}
	case key.Matches(msg, keySubmit):
		if err := m.RequestSubmit(); err != nil && !errors.Is(err, session.ErrNotInQuiz) {
			log.Printf("[quiz] submit: %v", err)
		}
	case key.Matches(msg, keyGoto):
		s.jumping = true
		s.jump = components.NewTextInput(
			fmt.Sprintf("Go to (1-%d): ", len(m.Questions())), "", true,
			len(strconv.Itoa(len(m.Questions()))),
		)
	case key.Matches(msg, keyExplain):
		return s, s.explain(q)
	default:
		if i, ok := answerShortcut(msg.Text, q); ok {
			s.cursor = i
			m.Choose(ctx, q.Answers[i].Key)
		}
	}
	return s, nil
}

// answerShortcut maps 1-9 to answer positions and letters to answer keys.
func answerShortcut(text string, q exam.Question) (int, bool) {
	r := []rune(text)
	if len(r) != 1 {
		return 0, false
	}
	if r[0] >= '1' && r[0] <= '9' {
		i := int(r[0] - '1')
		return i, i < len(q.Answers)
	}
	if !unicode.IsLetter(r[0]) {
		return 0, false
	}
	for i, a := range q.Answers {
		if strings.EqualFold(a.Key, text) {
			return i, true
		}
	}
	return 0, false
}

// explain asks the model for an explanation of q when feedback is shown
// and q carries none.
func (s *Screen) explain(q exam.Question) tea.Cmd {
	m := s.env.Machine
	if !m.Reveal(m.Index()) || q.Explanation != "" || s.explaining != "" {
		return nil
	}
	if _, ok := s.explanations[q.Text]; ok {
		return nil
	}
	if s.env.Explain == nil {
		s.explainErr[q.Text] = explain.ErrDisabled
		return nil
	}
	s.explaining = q.Text
	delete(s.explainErr, q.Text)
	svc, ctx := s.env.Explain, s.env.Ctx
	return tea.Batch(func() tea.Msg {
		text, err := svc.Explain(ctx, q)
		return explainedMsg{question: q.Text, text: text, err: err}
	}, s.spinner.Tick)
}

func (s *Screen) View(width, height int) string {
	m := s.env.Machine
	q, ok := m.Current()
	if !ok {
		return components.Centered(theme.Hint.Render("No question"), width, height)
	}
	cw := components.ContentWidth(width)
	idx := m.Index()
	reveal := m.Reveal(idx)

	var parts []string
	if banner := s.reviewBanner(); banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts,
		components.ProgressBar{
			Label: m.Mode().Label(),
			Done:  m.AnsweredCount(),
			Total: len(m.Questions()),
			Width: cw,
		}.View(),
		"",
		theme.Title.Render(fmt.Sprintf("Question %d", idx+1)),
		lipgloss.NewStyle().Width(cw).Render(theme.Body.Render(q.Text)),
		"",
		components.AnswerList{
			Question: q,
			Cursor:   s.cursor,
			Chosen:   m.Answer(idx),
			Reveal:   reveal,
			Width:    cw,
		}.View(),
	)
	if reveal {
		parts = append(parts, s.explanationPanel(q, cw))
	}
	if s.jumping {
		parts = append(parts, s.jump.View())
	}
	parts = append(parts, "", s.palette(cw))
	if n := screen.RenderNotice(m); n != "" {
		parts = append(parts, n)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return lipgloss.NewStyle().Padding(0, 3).MaxHeight(height).Render(content)
}

func (s *Screen) reviewBanner() string {
	item := s.env.Machine.HistoryItem()
	if item == nil {
		return ""
	}
	text := fmt.Sprintf("Reviewing %s · %s · %d/%d ", item.Mode, item.Date, item.Correct, item.Total)
	return theme.Hint.Render(text) + components.ScoreBadge(item.Correct, item.Total) + "\n"
}

func (s *Screen) explanationPanel(q exam.Question, cw int) string {
	var body string
	switch {
	case q.Explanation != "":
		body = q.Explanation
	case s.explanations[q.Text] != "":
		body = s.explanations[q.Text] + "\n" + theme.Hint.Render("AI generated")
	case s.explaining == q.Text:
		body = s.spinner.View() + " Asking the model..."
	case s.explainErr[q.Text] != nil:
		if errors.Is(s.explainErr[q.Text], explain.ErrDisabled) {
			body = theme.Hint.Render("No explanation available")
		} else {
			body = theme.Incorrect.Render("Could not explain: " + s.explainErr[q.Text].Error())
		}
	case s.env.Explain.Enabled():
		body = theme.Hint.Render("No explanation. Press e to ask the model.")
	default:
		body = theme.Hint.Render("No explanation available")
	}
	return components.Card(theme.Title.Render("Explanation")+"\n"+body, cw-2)
}

// palette renders one cell per question: answered cells are filled,
// revealed ones coloured by correctness and the current one boxed.
func (s *Screen) palette(cw int) string {
	m := s.env.Machine
	qs := m.Questions()
	perRow := max(cw/5, 1)

	var rows []string
	var row strings.Builder
	for i, q := range qs {
		label := fmt.Sprintf("%3d", i+1)
		chosen := m.Answer(i)
		style := theme.Disabled
		switch {
		case m.Reveal(i) && q.IsCorrect(chosen):
			style = theme.Correct
		case m.Reveal(i) && chosen != "":
			style = theme.Incorrect
		case m.Reveal(i):
			style = theme.Warning
		case chosen != "":
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		if i == m.Index() {
			row.WriteString(style.Reverse(true).Render(label) + "  ")
		} else {
			row.WriteString(style.Render(label) + "  ")
		}
		if (i+1)%perRow == 0 {
			rows = append(rows, row.String())
			row.Reset()
		}
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.jumping {
		return []layout.KeyHint{{Key: "Enter", Description: "Go"}, {Key: "Esc", Description: "Cancel"}}
	}
	m := s.env.Machine
	hints := []layout.KeyHint{
		{Key: "←→", Description: "Prev/Next"},
		{Key: "g", Description: "Go to"},
	}
	if m.Presentation() != exam.HistoryReadOnly {
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Move"},
			layout.KeyHint{Key: "Enter", Description: "Choose"},
			layout.KeyHint{Key: "s", Description: "Submit"},
		)
	}
	if m.Reveal(m.Index()) {
		hints = append(hints, layout.KeyHint{Key: "e", Description: "Explain"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}
