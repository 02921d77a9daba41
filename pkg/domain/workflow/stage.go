package workflow

import (
	"encoding/json"
	"fmt"
)

// Stage is the lifecycle position of a workflow run.
type Stage string

const (
	StageCreated          Stage = "created"
	StageClarifying       Stage = "clarifying"
	StageGenerating       Stage = "generating"
	StagePrioritizing     Stage = "prioritizing"
	StageAwaitingApproval Stage = "awaiting_approval"
	StageCommitting       Stage = "committing"
	StageCompleted        Stage = "completed"
	StageFailed           Stage = "failed"
)

// stageTransitions defines the allowed stage transitions and their events.
// Map: currentStage -> event -> targetStage. "fail" is reachable from every
// non-terminal stage; re-entry after a failure goes through Run.Retry, not
// the table.
var stageTransitions = map[Stage]map[string]Stage{
	StageCreated: {
		"clarify": StageClarifying,
		"fail":    StageFailed,
	},
	StageClarifying: {
		"generate": StageGenerating,
		"fail":     StageFailed,
	},
	StageGenerating: {
		"prioritize": StagePrioritizing,
		"fail":       StageFailed,
	},
	StagePrioritizing: {
		"review": StageAwaitingApproval,
		"fail":   StageFailed,
	},
	StageAwaitingApproval: {
		"approve": StageCommitting,
		"cancel":  StageFailed,
		"fail":    StageFailed,
	},
	StageCommitting: {
		"finish": StageCompleted,
		"fail":   StageFailed,
	},
}

// AllStages returns all valid stages.
func AllStages() []Stage {
	return []Stage{
		StageCreated,
		StageClarifying,
		StageGenerating,
		StagePrioritizing,
		StageAwaitingApproval,
		StageCommitting,
		StageCompleted,
		StageFailed,
	}
}

// IsValid returns true if the stage is a recognized value.
func (s Stage) IsValid() bool {
	switch s {
	case StageCreated, StageClarifying, StageGenerating, StagePrioritizing,
		StageAwaitingApproval, StageCommitting, StageCompleted, StageFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsTerminal returns true when no event can move the run out of this stage.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageFailed
}

// CanTransitionWith returns true if the given event can trigger a transition from this stage.
func (s Stage) CanTransitionWith(event string) bool {
	transitions, ok := stageTransitions[s]
	if !ok {
		return false
	}
	_, ok = transitions[event]
	return ok
}

// TransitionWith returns the target stage for a given event, or an error if not allowed.
func (s Stage) TransitionWith(event string) (Stage, error) {
	transitions, ok := stageTransitions[s]
	if !ok {
		return s, fmt.Errorf("no transitions defined for stage: %s", s)
	}

	target, ok := transitions[event]
	if !ok {
		return s, fmt.Errorf("event '%s' not allowed from stage '%s'", event, s)
	}

	return target, nil
}

// ValidEvents returns all valid events that can be triggered from this stage.
func (s Stage) ValidEvents() []string {
	transitions, ok := stageTransitions[s]
	if !ok {
		return nil
	}

	var events []string
	for event := range transitions {
		events = append(events, event)
	}
	return events
}

// DisplayName returns a human-readable display name for the stage.
func (s Stage) DisplayName() string {
	switch s {
	case StageCreated:
		return "Created"
	case StageClarifying:
		return "Clarifying"
	case StageGenerating:
		return "Generating"
	case StagePrioritizing:
		return "Prioritizing"
	case StageAwaitingApproval:
		return "Awaiting Approval"
	case StageCommitting:
		return "Committing"
	case StageCompleted:
		return "Completed"
	case StageFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// ParseStage parses a string into a Stage.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid workflow stage: %s", s)
	}
	return stage, nil
}

// MarshalJSON implements json.Marshaler interface.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	if str == "" {
		*s = StageCreated
		return nil
	}

	stage := Stage(str)
	if !stage.IsValid() {
		return fmt.Errorf("invalid workflow stage: %s", str)
	}

	*s = stage
	return nil
}
