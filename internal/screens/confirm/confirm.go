// Package confirm overlays the machine's pending yes/no prompt.
package confirm

import (
	"log"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examdeck/internal/screen"
	"github.com/abhisek/examdeck/internal/session"
	"github.com/abhisek/examdeck/internal/ui/components"
	"github.com/abhisek/examdeck/internal/ui/layout"
	"github.com/abhisek/examdeck/internal/ui/theme"
)

// Screen shows one prompt and resolves it with the user's answer.
type Screen struct {
	env    screen.Env
	prompt session.Prompt
	choice components.YesNo
	done   bool
}

var _ screen.Screen = (*Screen)(nil)

// New captures the machine's pending prompt. It must only be created
// while one is pending.
func New(env screen.Env) *Screen {
	s := &Screen{env: env}
	if p := env.Machine.Pending(); p != nil {
		s.prompt = *p
	}
	s.choice = components.NewYesNo(labels(s.prompt.Kind))
	// Destructive prompts default to the safe answer.
	if s.prompt.Kind == session.PromptExit || s.prompt.Kind == session.PromptClearHistory {
		s.choice.OnYes = false
	}
	return s
}

func labels(kind session.PromptKind) (yes, no string) {
	switch kind {
	case session.PromptExit:
		return "Leave", "Stay"
	case session.PromptSubmit:
		return "Submit", "Keep going"
	case session.PromptRestore:
		return "Resume", "Discard"
	case session.PromptClearHistory:
		return "Delete", "Cancel"
	default:
		return "Yes", "No"
	}
}

func title(kind session.PromptKind) string {
	switch kind {
	case session.PromptExit:
		return "Leave the exam?"
	case session.PromptSubmit:
		return "Submit"
	case session.PromptRestore:
		return "Unfinished exam found"
	case session.PromptClearHistory:
		return "Clear history"
	default:
		return "Confirm"
	}
}

// Kind returns the kind of prompt shown.
func (s *Screen) Kind() session.PromptKind { return s.prompt.Kind }

// Done reports whether the prompt was answered.
func (s *Screen) Done() bool { return s.done }

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return title(s.prompt.Kind) }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.ChoiceMsg:
		if s.done {
			return s, nil
		}
		s.done = true
		if err := s.env.Machine.Resolve(s.env.Ctx, msg.Accept); err != nil {
			log.Printf("[confirm] %v", err)
		}
		return s, nil
	case tea.KeyPressMsg:
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Render(title(s.prompt.Kind)),
		"",
		lipgloss.NewStyle().Width(min(components.ContentWidth(width)-8, 56)).Align(lipgloss.Center).Render(s.prompt.Message),
		"",
		s.choice.View(),
	)
	return components.Centered(theme.Dialog.Render(body), width, height)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "y/n", Description: "Answer"},
		{Key: "←→", Description: "Switch"},
		{Key: "Enter", Description: "Confirm"},
	}
}
