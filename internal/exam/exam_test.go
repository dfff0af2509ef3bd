package exam

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestion() Question {
	return Question{
		Text: "2 + 2?",
		Answers: []Answer{
			{Key: "A", Text: "3"},
			{Key: "B", Text: "4"},
		},
		CorrectKey: "B",
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range AllModes {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("bogus")
	assert.Error(t, err)
}

func TestModeTimer(t *testing.T) {
	assert.Equal(t, 3600, ModeMockExam.InitialSeconds())
	assert.Equal(t, 0, ModeRandomReview.InitialSeconds())
	assert.Equal(t, 0, ModeChapterReview.InitialSeconds())
	assert.True(t, ModeChapterReview.NeedsChapter())
	assert.False(t, ModeMockExam.NeedsChapter())
}

func TestPresentationPolicy(t *testing.T) {
	tests := []struct {
		name    string
		p       Presentation
		prev    string
		canSel  bool
		reveal  bool
	}{
		{"mock unanswered", MockExam, "", true, false},
		{"mock answered", MockExam, "A", true, false},
		{"review unanswered", LiveReview, "", true, false},
		{"review answered", LiveReview, "A", false, true},
		{"history unanswered", HistoryReadOnly, "", false, true},
		{"history answered", HistoryReadOnly, "A", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canSel, tt.p.CanSelect(tt.prev))
			assert.Equal(t, tt.reveal, tt.p.Reveals(tt.prev))
		})
	}
	assert.Equal(t, MockExam, PresentationFor(ModeMockExam))
	assert.Equal(t, LiveReview, PresentationFor(ModeChapterReview))
}

func TestQuestionValidate(t *testing.T) {
	require.NoError(t, sampleQuestion().Validate())

	bad := sampleQuestion()
	bad.CorrectKey = "Z"
	assert.ErrorContains(t, bad.Validate(), "matches no answer")

	empty := sampleQuestion()
	empty.Answers = nil
	assert.ErrorContains(t, empty.Validate(), "no answers")

	dup := sampleQuestion()
	dup.Answers = append(dup.Answers, Answer{Key: "A", Text: "again"})
	assert.ErrorContains(t, dup.Validate(), "duplicate")
}

func TestFilterValid(t *testing.T) {
	bad := sampleQuestion()
	bad.CorrectKey = "C"
	valid, rejected := FilterValid([]Question{sampleQuestion(), bad, sampleQuestion()})
	assert.Len(t, valid, 2)
	require.Len(t, rejected, 1)
	assert.Equal(t, 1, rejected[0].Index)
}

func TestAnswerText(t *testing.T) {
	q := sampleQuestion()
	text, ok := q.AnswerText("B")
	assert.True(t, ok)
	assert.Equal(t, "4", text)
	_, ok = q.AnswerText("Z")
	assert.False(t, ok)
	assert.True(t, q.IsCorrect("B"))
	assert.False(t, q.IsCorrect(""))
}

func TestChapterUnmarshal(t *testing.T) {
	var chapters []Chapter
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"1"},{"name":2}]`), &chapters))
	assert.Equal(t, []Chapter{{Name: "1"}, {Name: "2"}}, chapters)

	var bad Chapter
	assert.Error(t, json.Unmarshal([]byte(`{"name":true}`), &bad))
}

func TestAnswerMapJSONRoundTrip(t *testing.T) {
	m := AnswerMap{0: "A", 12: "C"}
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var got AnswerMap
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, m, got)

	clone := m.Clone()
	clone[0] = "B"
	assert.Equal(t, "A", m[0])
}
