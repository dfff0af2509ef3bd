// Package modes is the exam mode picker shown after a subject is chosen.
package modes

import (
	"fmt"
	"log"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/ui/components"
	"github.com/abhisek/examdeck/internal/ui/layout"
	"github.com/abhisek/examdeck/internal/ui/theme"
)

// itemChapter is the menu row of chapter review.
const itemChapter = 2

type chaptersMsg struct {
	subjectID int
	chapters  []exam.Chapter
	err       error
}

// Screen offers the exam modes and the history browser of one subject.
type Screen struct {
	env       screen.Env
	subjectID int

	chapters    []exam.Chapter
	chapter     int
	chaptersErr error
	loadingCh   bool

	menu    components.Menu
	spinner spinner.Model
}

var _ screen.Screen = (*Screen)(nil)

func New(env screen.Env) *Screen {
	s := &Screen{
		env:       env,
		loadingCh: true,
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Selected)),
	}
	if sub := env.Machine.Subject(); sub != nil {
		s.subjectID = sub.ID
	}
	s.buildMenu()
	return s
}

func (s *Screen) Init() tea.Cmd {
	env, id := s.env, s.subjectID
	load := func() tea.Msg {
		chapters, err := env.Machine.FetchChapters(env.Ctx, id)
		return chaptersMsg{subjectID: id, chapters: chapters, err: err}
	}
	return tea.Batch(load, s.spinner.Tick)
}

func (s *Screen) Title() string {
	if sub := s.env.Machine.Subject(); sub != nil {
		return sub.Name
	}
	return "Modes"
}

// buildMenu rebuilds the menu items, keeping the highlighted row.
func (s *Screen) buildMenu() {
	chapterItem := components.MenuItem{
		Label:  exam.ModeChapterReview.Label(),
		Action: s.start(exam.ModeChapterReview),
	}
	switch {
	case s.loadingCh:
		chapterItem.Detail = "loading chapters..."
		chapterItem.Disabled = true
	case s.chaptersErr != nil:
		chapterItem.Detail = "chapters unavailable"
		chapterItem.Disabled = true
	case len(s.chapters) == 0:
		chapterItem.Detail = "no chapters"
		chapterItem.Disabled = true
	default:
		chapterItem.Detail = fmt.Sprintf("‹ %s ›", s.chapters[s.chapter].Name)
	}

	items := []components.MenuItem{
		{Label: exam.ModeMockExam.Label(), Detail: "60:00", Action: s.start(exam.ModeMockExam)},
		{Label: exam.ModeRandomReview.Label(), Action: s.start(exam.ModeRandomReview)},
		chapterItem,
		{Label: "History", Action: s.showHistory},
	}
	selected := s.menu.Selected
	s.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Disabled {
		s.menu.Selected = selected
	}
}

func (s *Screen) start(mode exam.Mode) func() tea.Cmd {
	return func() tea.Cmd {
		chapter := ""
		if mode.NeedsChapter() && s.chapter < len(s.chapters) {
			chapter = s.chapters[s.chapter].Name
		}
		req, err := s.env.Machine.BeginStart(mode, chapter)
		if err != nil {
			log.Printf("[modes] start %s: %v", mode, err)
			return nil
		}
		return tea.Batch(screen.FetchCmd(s.env, req), s.spinner.Tick)
	}
}

func (s *Screen) showHistory() tea.Cmd {
	if err := s.env.Machine.ShowHistory(); err != nil {
		log.Printf("[modes] show history: %v", err)
	}
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chaptersMsg:
		if msg.subjectID != s.subjectID {
			return s, nil
		}
		s.loadingCh = false
		s.chaptersErr = msg.err
		s.chapters = msg.chapters
		s.chapter = 0
		if msg.err != nil {
			log.Printf("[modes] %v", msg.err)
		}
		s.buildMenu()
		return s, nil
	case spinner.TickMsg:
		if !s.loadingCh && !s.env.Machine.Loading() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if key.Matches(msg, components.KeyBack) {
		if err := s.env.Machine.Back(); err != nil {
			log.Printf("[modes] back: %v", err)
		}
		return s, nil
	}
	if s.env.Machine.Loading() {
		return s, nil
	}
	if s.menu.Selected == itemChapter && len(s.chapters) > 0 {
		switch {
		case key.Matches(msg, components.KeyLeft):
			s.chapter = (s.chapter - 1 + len(s.chapters)) % len(s.chapters)
			s.buildMenu()
			return s, nil
		case key.Matches(msg, components.KeyRight):
			s.chapter = (s.chapter + 1) % len(s.chapters)
			s.buildMenu()
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	name := "Modes"
	if sub := s.env.Machine.Subject(); sub != nil {
		name = sub.Name
	}
	b.WriteString(theme.Title.Render(name) + "\n")
	b.WriteString(theme.Hint.Render("Pick how you want to practise") + "\n\n")
	b.WriteString(s.menu.View())

	if s.env.Machine.Loading() {
		b.WriteString("\n" + s.spinner.View() + " Loading questions...\n")
	}
	if n := screen.RenderNotice(s.env.Machine); n != "" {
		b.WriteString("\n" + n + "\n")
	}
	return components.Centered(
		components.Card(b.String(), min(components.ContentWidth(width), 60)),
		width, height,
	)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
	}
	if s.menu.Selected == itemChapter && len(s.chapters) > 1 {
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Chapter"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}
