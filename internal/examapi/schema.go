package examapi

// Payload schemas. Extra properties are allowed so the service may grow
// fields without breaking the client.
var (
	subjectsSchema = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"id", "ten"},
			"properties": map[string]any{
				"id":    map[string]any{"type": "integer"},
				"ten":   map[string]any{"type": "string"},
				"soCau": map[string]any{"type": []string{"integer", "null"}},
			},
		},
	}

	chaptersSchema = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": []string{"string", "integer"}},
			},
		},
	}

	questionsSchema = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"text", "answers", "correct"},
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
				"answers": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"key", "text"},
						"properties": map[string]any{
							"key":  map[string]any{"type": "string"},
							"text": map[string]any{"type": "string"},
						},
					},
				},
				"correct":     map[string]any{"type": "string"},
				"explanation": map[string]any{"type": []string{"string", "null"}},
			},
		},
	}
)
