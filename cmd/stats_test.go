package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/examdeck/internal/exam"
	"github.com/abhisek/examdeck/internal/store"
)

func TestSummarize(t *testing.T) {
	items := []store.HistoryItem{
		{Date: "10:00:00 04/05/2026", Correct: 9, Total: 10},
		{Date: "09:00:00 03/05/2026", Correct: 3, Total: 10},
		{Date: "08:00:00 02/05/2026", Correct: 5, Total: 10},
	}
	s := summarize(items)
	assert.Equal(t, 3, s.Attempts)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 90, s.BestTenths)
	assert.Equal(t, 57, s.AvgTenths)
	assert.Equal(t, "10:00:00 04/05/2026", s.LastDate)

	assert.Zero(t, summarize(nil).Attempts)
}

func TestMatchAnswerKey(t *testing.T) {
	q := exam.Question{Answers: []exam.Answer{{Key: "A"}, {Key: "B"}}}
	assert.Equal(t, "B", matchAnswerKey(q, "b"))
	assert.Equal(t, "A", matchAnswerKey(q, "A"))
	assert.Empty(t, matchAnswerKey(q, "z"))
	assert.Empty(t, matchAnswerKey(q, ""))
}

func TestParseSubjectID(t *testing.T) {
	id, err := parseSubjectID("12")
	assert.NoError(t, err)
	assert.Equal(t, 12, id)

	_, err = parseSubjectID("0")
	assert.Error(t, err)
	_, err = parseSubjectID("abc")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "Toá", truncate("Toán học", 3))
}
