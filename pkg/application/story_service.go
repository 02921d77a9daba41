package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gateway "github.com/Anajrajeev/AutoScrum/pkg/ai"
	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/feature"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
)

// StoryService turns a clarified feature context into a preview set of
// stories. Nothing is persisted here; the orchestrator commits the preview
// only after explicit approval.
type StoryService struct {
	gateway *gateway.Gateway
	audit   domain.AuditLogger
}

const storiesSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["stories"],
  "properties": {
    "epic_label": { "type": "string" },
    "stories": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": { "type": "string" },
          "description": { "type": "string" },
          "acceptance_criteria": { "type": "array", "items": { "type": "string" } },
          "points": { "type": "integer" },
          "priority": { "type": "string" },
          "depends_on": { "type": "array", "items": { "type": "string" } }
        }
      }
    }
  }
}`

const storiesSystem = "You are an experienced scrum master breaking a clarified feature into user stories. " +
	"Every story needs a title, a description, at least one acceptance criterion, a fibonacci point estimate (1, 2, 3, 5, 8 or 13) and a priority of low, medium or high. " +
	"Group related stories under a short epic_label. " +
	"Return ONLY a JSON object with fields epic_label and stories."

func NewStoryService(gw *gateway.Gateway, audit domain.AuditLogger) *StoryService {
	return &StoryService{gateway: gw, audit: audit}
}

// SynthesisResult is a preview story set, not yet authoritative.
type SynthesisResult struct {
	Stories   []planning.Story
	EpicLabel string
}

type storyPayload struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Points             int      `json:"points"`
	Priority           string   `json:"priority"`
	DependsOn          []string `json:"depends_on"`
}

type synthesisPayload struct {
	EpicLabel string         `json:"epic_label"`
	Stories   []storyPayload `json:"stories"`
}

// Synthesize generates stories from the accumulated context. The context
// must be complete; a gateway output with a missing title or no acceptance
// criteria rejects the whole set rather than emitting partial items.
func (s *StoryService) Synthesize(ctx context.Context, f *feature.Feature) (*SynthesisResult, error) {
	if !f.Context.Complete {
		return nil, &domain.PreconditionError{Op: "synthesize", Reason: "clarification is not complete for feature " + f.ID}
	}

	raw, err := s.gateway.Complete(ctx, "stories", gateway.StructuredRequest{
		System:      storiesSystem,
		Prompt:      buildSynthesisPrompt(f),
		Schema:      storiesSchemaJSON,
		Temperature: 0.3,
		MaxTokens:   3000,
	})
	if err != nil {
		return nil, err
	}

	var out synthesisPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &domain.MalformedOutputError{Op: "synthesize", Reason: fmt.Sprintf("cannot decode payload: %v", err)}
	}
	if len(out.Stories) == 0 {
		return nil, &domain.MalformedOutputError{Op: "synthesize", Reason: "gateway returned no stories"}
	}

	epic := strings.TrimSpace(out.EpicLabel)
	now := time.Now().UTC()
	stories := make([]planning.Story, 0, len(out.Stories))
	for i, item := range out.Stories {
		story := planning.Story{
			ID:                 domain.GenerateStoryID().String(),
			FeatureID:          f.ID,
			Title:              strings.TrimSpace(item.Title),
			Description:        strings.TrimSpace(item.Description),
			AcceptanceCriteria: trimAll(item.AcceptanceCriteria),
			Points:             planning.NormalizePoints(item.Points),
			Priority:           parsePriority(item.Priority),
			DependsOn:          trimAll(item.DependsOn),
			EpicLabel:          epic,
			Status:             planning.StatusTodo,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := story.Validate(); err != nil {
			return nil, &domain.MalformedOutputError{Op: "synthesize", Reason: fmt.Sprintf("story %d: %v", i+1, err)}
		}
		stories = append(stories, story)
	}

	if s.audit != nil {
		_ = s.audit.Log("stories.synthesized", "ai", map[string]interface{}{
			"feature_id": f.ID,
			"count":      len(stories),
			"epic_label": epic,
		})
	}

	return &SynthesisResult{Stories: stories, EpicLabel: epic}, nil
}

func buildSynthesisPrompt(f *feature.Feature) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feature: %s\nDescription: %s\n\n", f.Name, f.Description)

	writeList := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(label + ":\n")
		for _, item := range items {
			b.WriteString("- " + item + "\n")
		}
	}
	writeList("Goals", f.Context.Goals)
	writeList("User personas", f.Context.UserPersonas)
	writeList("Key features", f.Context.KeyFeatures)
	writeList("Acceptance criteria", f.Context.AcceptanceCriteria)
	writeList("Technical constraints", f.Context.TechnicalConstraints)
	writeList("Success metrics", f.Context.SuccessMetrics)

	b.WriteString("\nWrite the user stories that implement this feature.")
	return b.String()
}

func parsePriority(raw string) planning.StoryPriority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "urgent", "critical":
		return planning.PriorityHigh
	case "low":
		return planning.PriorityLow
	default:
		return planning.PriorityMedium
	}
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
