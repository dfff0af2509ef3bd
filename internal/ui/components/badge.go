package components

import (
	"github.com/abhisek/examdeck/internal/scoring"
	"github.com/abhisek/examdeck/internal/ui/theme"
)

// ScoreBadge renders the 0-10 score of correct/total, green when it
// passes and red otherwise.
func ScoreBadge(correct, total int) string {
	tenths := scoring.Tenths(correct, total)
	style := theme.FailBadge
	if tenths >= scoring.PassTenths {
		style = theme.PassBadge
	}
	return style.Render(scoring.FormatTenths(tenths))
}
