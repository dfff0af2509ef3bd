// Package subjects is the subject picker.
package subjects

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/ui/components"
	"github.com/abhisek/examdeck/internal/ui/layout"
	"github.com/abhisek/examdeck/internal/ui/theme"
)

var (
	keyFilter  = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter"))
	keyRefresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	keyQuit    = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
)

type loadedMsg struct {
	subjects []exam.Subject
	err      error
}

// Screen lists subjects and hands the chosen one to the machine.
type Screen struct {
	env       screen.Env
	all       []exam.Subject
	visible   []exam.Subject
	cursor    int
	loading   bool
	err       error
	filtering bool
	filter    components.TextInput
	spinner   spinner.Model
}

var _ screen.Screen = (*Screen)(nil)

func New(env screen.Env) *Screen {
	return &Screen{
		env:     env,
		loading: true,
		filter:  components.NewTextInput("/ ", "type to filter", false, 64),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Selected)),
	}
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.load(false), s.spinner.Tick)
}

func (s *Screen) load(refresh bool) tea.Cmd {
	s.loading = true
	s.err = nil
	env := s.env
	return func() tea.Msg {
		subjects, err := env.Machine.Subjects(env.Ctx, refresh)
		return loadedMsg{subjects: subjects, err: err}
	}
}

func (s *Screen) Title() string { return "Subjects" }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		s.err = msg.err
		s.all = msg.subjects
		s.applyFilter()
		return s, nil
	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.KeyPressMsg:
		if s.filtering {
			return s.updateFilter(msg)
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) updateFilter(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.filtering = false
		s.filter.Model.SetValue("")
		s.applyFilter()
		return s, nil
	case "enter", "down", "up":
		s.filtering = false
		if msg.String() == "enter" {
			return s, nil
		}
		return s.handleKey(msg)
	}
	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	s.applyFilter()
	return s, cmd
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, components.KeyUp):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, components.KeyDown):
		if s.cursor < len(s.visible)-1 {
			s.cursor++
		}
	case key.Matches(msg, components.KeyEnter):
		if s.cursor < len(s.visible) {
			_ = s.env.Machine.SelectSubject(s.visible[s.cursor])
		}
	case key.Matches(msg, keyFilter):
		s.filtering = true
		return s, s.filter.Model.Focus()
	case key.Matches(msg, keyRefresh):
		if !s.loading {
			return s, tea.Batch(s.load(true), s.spinner.Tick)
		}
	case key.Matches(msg, keyQuit):
		return s, tea.Quit
	}
	return s, nil
}

// applyFilter keeps subjects whose name contains the filter text, case
// insensitively.
func (s *Screen) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(s.filter.Value()))
	s.visible = s.visible[:0]
	for _, sub := range s.all {
		if q == "" || strings.Contains(strings.ToLower(sub.Name), q) {
			s.visible = append(s.visible, sub)
		}
	}
	if s.cursor >= len(s.visible) {
		s.cursor = max(len(s.visible)-1, 0)
	}
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(theme.Title.Render("Choose a subject") + "\n\n")

	if s.filtering || s.filter.Value() != "" {
		b.WriteString(s.filter.View() + "\n\n")
	}

	switch {
	case s.loading:
		b.WriteString(s.spinner.View() + " Loading subjects...\n")
	case s.err != nil:
		b.WriteString(theme.Incorrect.Render("Could not load subjects: "+s.err.Error()) + "\n")
		b.WriteString(theme.Hint.Render("Press r to retry.") + "\n")
	case len(s.all) == 0:
		b.WriteString(theme.Hint.Render("No subjects available") + "\n")
	case len(s.visible) == 0:
		b.WriteString(theme.Hint.Render("No subjects match the filter") + "\n")
	default:
		b.WriteString(s.renderList(cw, height-6))
	}

	if n := screen.RenderNotice(s.env.Machine); n != "" {
		b.WriteString("\n" + n + "\n")
	}
	return lipgloss.NewStyle().Padding(1, 3).Render(b.String())
}

// renderList renders a window of rows around the cursor.
func (s *Screen) renderList(width, rows int) string {
	rows = max(rows, 3)
	start := 0
	if s.cursor >= rows {
		start = s.cursor - rows + 1
	}
	end := min(start+rows, len(s.visible))

	var b strings.Builder
	for i := start; i < end; i++ {
		sub := s.visible[i]
		line := sub.Name
		if sub.QuestionCount != nil {
			line += theme.Hint.Render(fmt.Sprintf("  %d questions", *sub.QuestionCount))
		}
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("▸ ") + theme.Selected.Width(width-2).Render(line))
		} else {
			b.WriteString("  " + theme.Unselected.Width(width-2).Render(line))
		}
		b.WriteString("\n")
	}
	if len(s.visible) > rows {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d/%d", s.cursor+1, len(s.visible))) + "\n")
	}
	return b.String()
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.filtering {
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}, {Key: "Esc", Description: "Clear"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "/", Description: "Filter"},
		{Key: "r", Description: "Refresh"},
		{Key: "q", Description: "Quit"},
	}
}
