package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examdeck/internal/ui/layout"
)

// Screen is one page of the TUI.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status, such as
// the countdown, at the right of the header.
type StatusProvider interface {
	Status() string
}

// RefreshMsg asks screens to reload data they derived from storage, e.g.
// after a confirmed history wipe.
type RefreshMsg struct{}
