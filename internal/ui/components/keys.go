package components

import "charm.land/bubbles/v2/key"

// Shared bindings for list-like components.
var (
	KeyUp     = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	KeyDown   = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	KeyLeft   = key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left"))
	KeyRight  = key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right"))
	KeyEnter  = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	KeyBack   = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	KeyYes    = key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes"))
	KeyNo     = key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no"))
	KeyToggle = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch"))
)
