package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examdeck/internal/ui/theme"
)

// ProgressBar renders "label [████····] done/total".
type ProgressBar struct {
	Label string
	Done  int
	Total int
	Width int
}

func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Done)/float64(p.Total), 0), 1)
}

func (p ProgressBar) View() string {
	var prefix string
	if p.Label != "" {
		prefix = theme.Body.Render(p.Label) + "  "
	}
	suffix := theme.Hint.Render(fmt.Sprintf("  %d/%d", p.Done, p.Total))

	barWidth := max(p.Width-lipgloss.Width(prefix)-lipgloss.Width(suffix), 4)
	filled := int(float64(barWidth) * p.Percent())

	return prefix +
		lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)) +
		suffix
}
