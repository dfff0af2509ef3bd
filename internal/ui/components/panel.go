package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examdeck/internal/ui/theme"
)

// ContentWidth is the width screens lay their main column out at.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 90)
}

// Centered places content in the middle of a width x height box.
func Centered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Card wraps content in a rounded border of content width cw.
func Card(content string, cw int) string {
	return theme.Card.Width(cw).Render(content)
}
