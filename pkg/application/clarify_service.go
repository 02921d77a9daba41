package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gateway "github.com/Anajrajeev/AutoScrum/pkg/ai"
	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/feature"
)

// ClarifyService runs the clarification dialogue for a feature. It merges
// the gateway's field-level summary into the feature context on every
// accepted turn and decides when the dialogue is complete.
type ClarifyService struct {
	repo    WorkspaceRepository
	gateway *gateway.Gateway
	audit   domain.AuditLogger
}

const clarifySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary", "is_complete"],
  "properties": {
    "summary": {
      "type": "object",
      "properties": {
        "goals": { "type": "array", "items": { "type": "string" } },
        "user_personas": { "type": "array", "items": { "type": "string" } },
        "key_features": { "type": "array", "items": { "type": "string" } },
        "acceptance_criteria": { "type": "array", "items": { "type": "string" } },
        "technical_constraints": { "type": "array", "items": { "type": "string" } },
        "success_metrics": { "type": "array", "items": { "type": "string" } }
      }
    },
    "is_complete": { "type": "boolean" },
    "next_question": { "type": "string" }
  }
}`

const clarifySystem = "You are a product analyst refining a feature request. " +
	"You extract goals, user personas, key features, acceptance criteria, technical constraints and success metrics from the conversation. " +
	"You return ONLY a JSON object with fields summary, is_complete and next_question. " +
	"Set is_complete to true once the context is sufficient to write user stories; otherwise ask exactly one focused question in next_question."

func NewClarifyService(repo WorkspaceRepository, gw *gateway.Gateway, audit domain.AuditLogger) *ClarifyService {
	return &ClarifyService{repo: repo, gateway: gw, audit: audit}
}

// ClarifyResult is the outcome of one clarification submission.
type ClarifyResult struct {
	NextPrompt string
	IsComplete bool
	Context    feature.Context

	// Duplicate marks a resubmission of the previous answer; the turn was
	// ignored and NextPrompt repeats the standing question.
	Duplicate bool
}

type clarifyPayload struct {
	Summary      feature.Summary `json:"summary"`
	IsComplete   bool            `json:"is_complete"`
	NextQuestion string          `json:"next_question"`
}

// Submit appends the user turn, asks the gateway for an updated summary and
// either the next question or a completion verdict. A failed gateway call
// leaves the stored feature untouched, so the turn is rolled back.
func (s *ClarifyService) Submit(ctx context.Context, f *feature.Feature, userText string) (*ClarifyResult, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, fmt.Errorf("clarification text cannot be empty")
	}

	if f.Context.Complete {
		return nil, &domain.PreconditionError{Op: "clarify", Reason: "clarification already complete for feature " + f.ID}
	}

	if !f.Context.AppendTurn(feature.RoleUser, userText) {
		// Duplicate resubmission of the last turn, re-serve the prior prompt.
		return &ClarifyResult{
			NextPrompt: f.Context.LastAssistantPrompt(),
			IsComplete: f.Context.Complete,
			Context:    f.Context,
			Duplicate:  true,
		}, nil
	}

	cfg, err := s.repo.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.AllowAI {
		return nil, fmt.Errorf("AI usage is disabled by workspace config")
	}
	maxQuestions := cfg.MaxClarifyQuestions
	if maxQuestions <= 0 {
		maxQuestions = domain.DefaultWorkspaceConfig().MaxClarifyQuestions
	}

	raw, err := s.gateway.Complete(ctx, "clarify", gateway.StructuredRequest{
		System:      clarifySystem,
		Prompt:      buildClarifyPrompt(f),
		Schema:      clarifySchemaJSON,
		Temperature: 0.2,
		MaxTokens:   1500,
	})
	if err != nil {
		return nil, err
	}

	var out clarifyPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &domain.MalformedOutputError{Op: "clarify", Reason: fmt.Sprintf("cannot decode payload: %v", err)}
	}

	f.Context.Merge(out.Summary)

	next := strings.TrimSpace(out.NextQuestion)
	complete := out.IsComplete
	if !complete {
		if next == "" {
			return nil, &domain.MalformedOutputError{Op: "clarify", Reason: "incomplete context but no next question"}
		}
		f.Context.QuestionsAsked++
		if f.Context.QuestionsAsked >= maxQuestions {
			// Question cap reached, proceed with what we have.
			complete = true
		} else {
			f.Context.AppendTurn(feature.RoleAssistant, next)
		}
	}
	if complete {
		f.Context.Complete = true
		next = ""
	}

	if err := s.repo.SaveFeature(f); err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Log("clarify.submitted", "human", map[string]interface{}{
			"feature_id":      f.ID,
			"is_complete":     f.Context.Complete,
			"questions_asked": f.Context.QuestionsAsked,
		})
	}

	return &ClarifyResult{NextPrompt: next, IsComplete: f.Context.Complete, Context: f.Context}, nil
}

func buildClarifyPrompt(f *feature.Feature) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feature: %s\nDescription: %s\n\n", f.Name, f.Description)

	if data, err := json.MarshalIndent(struct {
		Goals                []string `json:"goals"`
		UserPersonas         []string `json:"user_personas"`
		KeyFeatures          []string `json:"key_features"`
		AcceptanceCriteria   []string `json:"acceptance_criteria"`
		TechnicalConstraints []string `json:"technical_constraints"`
		SuccessMetrics       []string `json:"success_metrics"`
	}{
		f.Context.Goals, f.Context.UserPersonas, f.Context.KeyFeatures,
		f.Context.AcceptanceCriteria, f.Context.TechnicalConstraints, f.Context.SuccessMetrics,
	}, "", "  "); err == nil {
		b.WriteString("Current context:\n")
		b.Write(data)
		b.WriteString("\n\n")
	}

	b.WriteString("Conversation so far:\n")
	for _, turn := range f.Context.Transcript {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
	}

	b.WriteString("\nUpdate the context summary with any new facts from the latest answer, judge whether the context is complete, and if not ask the single most useful clarifying question.")
	return b.String()
}
