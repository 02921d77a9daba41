package ai

import (
	"context"
	"strings"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/ai"
)

// MockProvider returns deterministic canned output so the workflow can be
// exercised without a real model. The response shape is picked from the
// system prompt of the calling stage.
type MockProvider struct {
	Model string
}

func (p *MockProvider) ID() string {
	return "mock:" + p.Model
}

const mockClarifyComplete = `{
  "summary": {
    "goals": ["deliver the requested feature"],
    "acceptance_criteria": ["feature works as described"]
  },
  "is_complete": true,
  "next_question": ""
}`

const mockStories = `{
  "epic_label": "Mock Epic",
  "stories": [
    {
      "title": "Implement the feature",
      "description": "Build the backend api for the requested feature",
      "acceptance_criteria": ["feature works as described"],
      "points": 3,
      "priority": "high"
    },
    {
      "title": "Test the feature",
      "description": "Add qa coverage for the new endpoints",
      "acceptance_criteria": ["all checks pass"],
      "points": 2,
      "priority": "medium"
    }
  ]
}`

func (p *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	text := mockClarifyComplete
	if strings.Contains(req.System, "scrum master") {
		text = mockStories
	}
	return &ai.CompletionResponse{
		Text:  text,
		Model: "mock",
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}
