// Package scoring grades a submitted attempt.
package scoring

import (
	"fmt"

	"github.com/abhisek/examdeck/internal/exam"
)

// PassTenths is the lowest passing score, in tenths of a point.
const PassTenths = 50

// Result is the outcome of grading an attempt.
type Result struct {
	Correct int
	Total   int
	// Tenths is the 0-10 score multiplied by ten.
	Tenths int
	// Score is the score formatted with one decimal, e.g. "7.5".
	Score string
}

// Passed reports whether the score reaches PassTenths.
func (r Result) Passed() bool {
	return r.Tenths >= PassTenths
}

// Score counts the questions whose chosen answer matches the correct key
// and scales the ratio to 0-10, rounded half up to one decimal.
func Score(questions []exam.Question, answers exam.AnswerMap) Result {
	total := len(questions)
	correct := 0
	for i, q := range questions {
		if q.IsCorrect(answers[i]) {
			correct++
		}
	}
	tenths := Tenths(correct, total)
	return Result{
		Correct: correct,
		Total:   total,
		Tenths:  tenths,
		Score:   FormatTenths(tenths),
	}
}

// Tenths scales correct/total to 0-100, rounding exact halves up. An
// empty attempt scores zero. Binary floating point rounds some exact
// halves down (3/200 is 0.15, stored just below it, so 0.1); integer
// arithmetic always gives 0.2.
func Tenths(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (correct*200 + total) / (2 * total)
}

// FormatTenths renders a tenths value as "x.y".
func FormatTenths(tenths int) string {
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
