package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/ui/theme"
)

// AnswerList renders the answers of one question. Cursor highlights the
// answer under the keyboard cursor; Chosen marks the recorded answer.
// With Reveal set the correct answer is marked ✓ and a wrong choice ✗.
type AnswerList struct {
	Question exam.Question
	Cursor   int
	Chosen   string
	Reveal   bool
	Width    int
}

// Move shifts the cursor by delta, clamped to the answers.
func (a *AnswerList) Move(delta int) {
	a.Cursor = min(max(a.Cursor+delta, 0), max(len(a.Question.Answers)-1, 0))
}

// KeyAt returns the answer key under the cursor.
func (a AnswerList) KeyAt() (string, bool) {
	if a.Cursor < 0 || a.Cursor >= len(a.Question.Answers) {
		return "", false
	}
	return a.Question.Answers[a.Cursor].Key, true
}

func (a AnswerList) View() string {
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(max(a.Width-6, 10))
	for i, ans := range a.Question.Answers {
		pointer := "  "
		if i == a.Cursor && !a.Reveal {
			pointer = "▸ "
		}
		chosen := ans.Key == a.Chosen
		mark := "  "
		if chosen {
			mark = "● "
		}
		style := theme.Unselected
		switch {
		case a.Reveal && ans.Key == a.Question.CorrectKey:
			style, mark = theme.Correct, "✓ "
		case a.Reveal && chosen:
			style, mark = theme.Incorrect, "✗ "
		case a.Reveal:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case chosen:
			style = theme.Selected
		case i == a.Cursor:
			style = lipgloss.NewStyle().Foreground(theme.Primary)
		}
		line := fmt.Sprintf("%s%s%s. %s", pointer, mark, ans.Key, ans.Text)
		b.WriteString(style.Render(wrap.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
