package review

import "github.com/pathfinderai/pathfinder/internal/llm"

// Schema is the JSON shape requested from the model.
var Schema = &llm.Schema{
	Name:        "exam-review",
	Description: "A short study plan based on a mock exam result",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentence overview of the performance",
			},
			"recommendations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"subject": map[string]any{
							"type":        "string",
							"description": "Subject name exactly as given",
						},
						"priority": map[string]any{
							"type": "string",
							"enum": []any{"high", "medium", "low"},
						},
						"advice": map[string]any{
							"type":        "string",
							"description": "One or two concrete study actions",
						},
					},
					"required":             []any{"subject", "priority", "advice"},
					"additionalProperties": false,
				},
			},
			"pacing": map[string]any{
				"type":        "string",
				"description": "One sentence on time management",
			},
		},
		"required":             []any{"summary", "recommendations", "pacing"},
		"additionalProperties": false,
	},
}
