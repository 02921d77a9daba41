package planning

import (
	"fmt"
	"time"
)

type StoryPriority string

const (
	PriorityLow    StoryPriority = "low"
	PriorityMedium StoryPriority = "medium"
	PriorityHigh   StoryPriority = "high"
)

// Weight returns a numeric rank for ordering; higher means more urgent.
func (p StoryPriority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium, "":
		return 2
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// fibonacciPoints is the allowed story-point scale.
var fibonacciPoints = []int{1, 2, 3, 5, 8, 13}

// NormalizePoints snaps a raw estimate onto the story-point scale,
// rounding to the nearest allowed value.
func NormalizePoints(raw int) int {
	if raw <= 1 {
		return 1
	}
	if raw >= 13 {
		return 13
	}
	best := fibonacciPoints[0]
	for _, p := range fibonacciPoints {
		if abs(raw-p) < abs(raw-best) {
			best = p
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Story is a unit of work generated from a clarified feature context.
type Story struct {
	ID                 string        `json:"id" yaml:"id"`
	FeatureID          string        `json:"feature_id" yaml:"feature_id"`
	Title              string        `json:"title" yaml:"title"`
	Description        string        `json:"description" yaml:"description"`
	AcceptanceCriteria []string      `json:"acceptance_criteria" yaml:"acceptance_criteria"`
	Points             int           `json:"points" yaml:"points"` // size estimate, positive
	Priority           StoryPriority `json:"priority" yaml:"priority"`
	DependsOn          []string      `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	EpicLabel          string        `json:"epic_label,omitempty" yaml:"epic_label,omitempty"`
	ExternalKey        string        `json:"external_key,omitempty" yaml:"external_key,omitempty"`
	Status             StoryStatus   `json:"status" yaml:"status"`
	Assignee           string        `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	SprintID           string        `json:"sprint_id,omitempty" yaml:"sprint_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" yaml:"updated_at"`

	// Version supports optimistic concurrency in the repository.
	Version int `json:"-" yaml:"-"`
}

// Validate checks the structural invariants every synthesized story must
// satisfy before it can leave the synthesizer.
func (s *Story) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("story %s has an empty title", s.ID)
	}
	if len(s.AcceptanceCriteria) == 0 {
		return fmt.Errorf("story %s has no acceptance criteria", s.ID)
	}
	if s.Points <= 0 {
		return fmt.Errorf("story %s has non-positive size estimate %d", s.ID, s.Points)
	}
	return nil
}
