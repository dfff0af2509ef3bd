package components

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examdeck/internal/ui/theme"
)

// Button is a single labelled button.
type Button struct {
	Label  string
	Active bool
}

func (b Button) View() string {
	if b.Active {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}

// ChoiceMsg reports the answer picked in a YesNo.
type ChoiceMsg struct {
	Accept bool
}

// YesNo is a pair of buttons. y and n answer directly; ←/→ or tab move
// the focus and enter picks the focused button.
type YesNo struct {
	Yes, No string
	// OnYes is true while the yes button has focus.
	OnYes bool
}

func NewYesNo(yes, no string) YesNo {
	return YesNo{Yes: yes, No: no, OnYes: true}
}

func (y YesNo) Update(msg tea.Msg) (YesNo, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return y, nil
	}
	switch {
	case key.Matches(kmsg, KeyYes):
		return y, choice(true)
	case key.Matches(kmsg, KeyNo):
		return y, choice(false)
	case key.Matches(kmsg, KeyLeft, KeyRight, KeyToggle):
		y.OnYes = !y.OnYes
	case key.Matches(kmsg, KeyEnter):
		return y, choice(y.OnYes)
	}
	return y, nil
}

func choice(accept bool) tea.Cmd {
	return func() tea.Msg { return ChoiceMsg{Accept: accept} }
}

func (y YesNo) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		Button{Label: y.Yes, Active: y.OnYes}.View(),
		"   ",
		Button{Label: y.No, Active: !y.OnYes}.View(),
	)
}
