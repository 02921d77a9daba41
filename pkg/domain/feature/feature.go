package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
)

// Role identifies who produced a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry in the clarification transcript.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Context holds the accumulated clarification state for a feature.
// Transcript order is the only ordering signal; the semantic fields are
// idempotently mergeable sets (restating a goal does not duplicate it).
type Context struct {
	Goals                []string `json:"goals,omitempty"`
	UserPersonas         []string `json:"user_personas,omitempty"`
	KeyFeatures          []string `json:"key_features,omitempty"`
	AcceptanceCriteria   []string `json:"acceptance_criteria,omitempty"`
	TechnicalConstraints []string `json:"technical_constraints,omitempty"`
	SuccessMetrics       []string `json:"success_metrics,omitempty"`

	Transcript     []Turn `json:"transcript,omitempty"`
	QuestionsAsked int    `json:"questions_asked"`
	Complete       bool   `json:"complete"`
}

// Summary is the field-level update extracted by the completion gateway on
// each clarification turn. Merging a Summary into a Context is a set union
// per field, never a replacement.
type Summary struct {
	Goals                []string `json:"goals"`
	UserPersonas         []string `json:"user_personas"`
	KeyFeatures          []string `json:"key_features"`
	AcceptanceCriteria   []string `json:"acceptance_criteria"`
	TechnicalConstraints []string `json:"technical_constraints"`
	SuccessMetrics       []string `json:"success_metrics"`
}

// Merge folds a gateway summary into the context. Entries that normalize to
// an already-present entry are dropped, so repeated submissions are
// idempotent.
func (c *Context) Merge(s Summary) {
	c.Goals = appendUnique(c.Goals, s.Goals)
	c.UserPersonas = appendUnique(c.UserPersonas, s.UserPersonas)
	c.KeyFeatures = appendUnique(c.KeyFeatures, s.KeyFeatures)
	c.AcceptanceCriteria = appendUnique(c.AcceptanceCriteria, s.AcceptanceCriteria)
	c.TechnicalConstraints = appendUnique(c.TechnicalConstraints, s.TechnicalConstraints)
	c.SuccessMetrics = appendUnique(c.SuccessMetrics, s.SuccessMetrics)
}

// AppendTurn adds a turn to the transcript. Returns false without modifying
// the transcript when the turn is identical to the most recent turn of the
// same role, so a client retry of the last submission never grows the
// transcript.
func (c *Context) AppendTurn(role Role, text string) bool {
	for i := len(c.Transcript) - 1; i >= 0; i-- {
		if c.Transcript[i].Role != role {
			continue
		}
		if c.Transcript[i].Text == text {
			return false
		}
		break
	}
	c.Transcript = append(c.Transcript, Turn{Role: role, Text: text})
	return true
}

// LastAssistantPrompt returns the most recent assistant turn, or "" if the
// assistant has not spoken yet.
func (c *Context) LastAssistantPrompt() string {
	for i := len(c.Transcript) - 1; i >= 0; i-- {
		if c.Transcript[i].Role == RoleAssistant {
			return c.Transcript[i].Text
		}
	}
	return ""
}

func appendUnique(existing []string, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[normalize(v)] = true
	}
	for _, v := range incoming {
		key := normalize(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		existing = append(existing, strings.TrimSpace(v))
	}
	return existing
}

// normalize lowercases and collapses whitespace so semantically identical
// restatements compare equal.
func normalize(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}

// Feature represents a product feature request moving through the workflow.
type Feature struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Context     Context   `json:"context"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Version supports optimistic concurrency in the repository.
	Version int `json:"-"`
}

// New creates a feature with a generated ID.
func New(name, description string) (*Feature, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("feature name cannot be empty")
	}
	now := time.Now().UTC()
	return &Feature{
		ID:          domain.GenerateFeatureID().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
