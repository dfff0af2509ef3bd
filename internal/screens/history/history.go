// Package history lists the submitted attempts of the selected subject.
package history

import (
	"fmt"
	"log"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/store"
	"github.com/abhisek/examdeck/internal/ui/components"
	"github.com/abhisek/examdeck/internal/ui/layout"
	"github.com/abhisek/examdeck/internal/ui/theme"
)

var keyClear = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear"))

// Screen is the history browser. Items are read from the local store
// on creation and on screen.RefreshMsg.
type Screen struct {
	env    screen.Env
	items  []store.HistoryItem
	err    error
	cursor int
}

var _ screen.Screen = (*Screen)(nil)

func New(env screen.Env) *Screen {
	s := &Screen{env: env}
	s.reload()
	return s
}

func (s *Screen) reload() {
	s.items, s.err = s.env.Machine.History(s.env.Ctx)
	if s.err != nil {
		log.Printf("[history] load: %v", s.err)
	}
	s.cursor = min(s.cursor, max(len(s.items)-1, 0))
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "History" }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.RefreshMsg:
		s.reload()
	case tea.KeyPressMsg:
		m := s.env.Machine
		switch {
		case key.Matches(msg, components.KeyUp):
			s.cursor = max(s.cursor-1, 0)
		case key.Matches(msg, components.KeyDown):
			s.cursor = min(s.cursor+1, max(len(s.items)-1, 0))
		case key.Matches(msg, components.KeyEnter):
			if s.cursor < len(s.items) {
				if err := m.OpenHistoryItem(s.items[s.cursor]); err != nil {
					log.Printf("[history] open: %v", err)
				}
			}
		case key.Matches(msg, keyClear):
			if len(s.items) > 0 {
				if err := m.RequestClearHistory(); err != nil {
					log.Printf("[history] clear: %v", err)
				}
			}
		case key.Matches(msg, components.KeyBack):
			if err := m.Back(); err != nil {
				log.Printf("[history] back: %v", err)
			}
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var parts []string

	title := "History"
	if sub := s.env.Machine.Subject(); sub != nil {
		title = "History · " + sub.Name
	}
	parts = append(parts, theme.Title.Render(title))

	if banner := s.resultBanner(cw); banner != "" {
		parts = append(parts, banner)
	}

	switch {
	case s.err != nil:
		parts = append(parts, theme.Incorrect.Render("Could not load history: "+s.err.Error()))
	case len(s.items) == 0:
		parts = append(parts, "", theme.Hint.Render("No attempts yet"))
	default:
		parts = append(parts, "", s.renderList(cw, height-lipgloss.Height(strings.Join(parts, "\n"))-3))
	}

	if n := screen.RenderNotice(s.env.Machine); n != "" {
		parts = append(parts, "", n)
	}
	return lipgloss.NewStyle().Padding(1, 3).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// resultBanner summarises the attempt that was just submitted.
func (s *Screen) resultBanner(cw int) string {
	r := s.env.Machine.LastResult()
	if r == nil {
		return ""
	}
	var b strings.Builder
	if r.Auto {
		b.WriteString(theme.Warning.Render("Time's up! Your answers were submitted.") + "\n")
	}
	verdict := theme.FailBadge.Render("FAILED")
	if r.Passed() {
		verdict = theme.PassBadge.Render("PASSED")
	}
	fmt.Fprintf(&b, "%s  %d/%d correct  score %s",
		verdict, r.Correct, r.Total, components.ScoreBadge(r.Correct, r.Total))
	return components.Card(b.String(), cw-2)
}

func (s *Screen) renderList(cw, rows int) string {
	rows = max(rows, 3)
	start := 0
	if s.cursor >= rows {
		start = s.cursor - rows + 1
	}
	end := min(start+rows, len(s.items))

	var b strings.Builder
	for i := start; i < end; i++ {
		it := s.items[i]
		mode := it.Mode
		if it.Chapter != "" {
			mode += " · " + it.Chapter
		}
		line := fmt.Sprintf("%-19s  %-28s %3d/%-3d ", it.Date, truncate(mode, 28), it.Correct, it.Total)
		badge := components.ScoreBadge(it.Correct, it.Total)
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("▸ "+line) + badge)
		} else {
			b.WriteString(theme.Unselected.Render("  "+line) + badge)
		}
		b.WriteString("\n")
	}
	if len(s.items) > rows {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d/%d", s.cursor+1, len(s.items))))
	}
	return lipgloss.NewStyle().MaxWidth(cw).Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if len(s.items) == 0 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Review"},
		{Key: "x", Description: "Clear all"},
		{Key: "Esc", Description: "Back"},
	}
}
