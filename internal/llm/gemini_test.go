package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string", "description": "why"},
			"confidence":  map[string]any{"type": "number"},
			"key":         map[string]any{"type": "string", "enum": []any{"a", "b", "c"}},
			"steps": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"explanation"},
	}

	s := geminiSchema(def)
	assert.Equal(t, genai.TypeObject, s.Type)
	require.Len(t, s.Properties, 4)
	assert.Equal(t, genai.TypeString, s.Properties["explanation"].Type)
	assert.Equal(t, "why", s.Properties["explanation"].Description)
	assert.Equal(t, genai.TypeNumber, s.Properties["confidence"].Type)
	assert.Equal(t, []string{"a", "b", "c"}, s.Properties["key"].Enum)
	assert.Equal(t, genai.TypeArray, s.Properties["steps"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["steps"].Items.Type)
	assert.Equal(t, []string{"explanation"}, s.Required)
}

func TestGeminiSchema_RequiredAsAny(t *testing.T) {
	s := geminiSchema(map[string]any{"type": "object", "required": []any{"a", 1, "b"}})
	assert.Equal(t, []string{"a", "b"}, s.Required)
}

func TestGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(t.Context(), GeminiConfig{})
	assert.Error(t, err)
}
