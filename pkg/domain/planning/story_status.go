package planning

import (
	"encoding/json"
	"fmt"
)

type StoryStatus string

const (
	StatusTodo       StoryStatus = "todo"
	StatusInProgress StoryStatus = "in_progress"
	StatusInReview   StoryStatus = "in_review"
	StatusDone       StoryStatus = "done"
	StatusBlocked    StoryStatus = "blocked"
)

// validTransitions defines the allowed state transitions and their events.
// Map: currentStatus -> event -> targetStatus
var validTransitions = map[StoryStatus]map[string]StoryStatus{
	StatusTodo: {
		"start": StatusInProgress,
		"block": StatusBlocked,
	},
	StatusInProgress: {
		"review": StatusInReview,
		"block":  StatusBlocked,
		"stop":   StatusTodo,
	},
	StatusInReview: {
		"approve": StatusDone,
		"reject":  StatusInProgress,
		"block":   StatusBlocked,
	},
	StatusBlocked: {
		"unblock": StatusTodo,
	},
	StatusDone: {
		"reopen": StatusTodo,
	},
}

// AllStoryStatuses returns all valid story statuses.
func AllStoryStatuses() []StoryStatus {
	return []StoryStatus{
		StatusTodo,
		StatusInProgress,
		StatusInReview,
		StatusDone,
		StatusBlocked,
	}
}

// IsValid returns true if the status is a valid story status.
func (s StoryStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone, StatusBlocked:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s StoryStatus) String() string {
	return string(s)
}

// CanTransitionWith returns true if the given event can trigger a transition from this status.
func (s StoryStatus) CanTransitionWith(event string) bool {
	transitions, ok := validTransitions[s]
	if !ok {
		return false
	}

	_, ok = transitions[event]
	return ok
}

// TransitionWith returns the target status for a given event, or an error if not allowed.
func (s StoryStatus) TransitionWith(event string) (StoryStatus, error) {
	transitions, ok := validTransitions[s]
	if !ok {
		return s, fmt.Errorf("no transitions defined for status: %s", s)
	}

	target, ok := transitions[event]
	if !ok {
		return s, fmt.Errorf("event '%s' not allowed from status '%s'", event, s)
	}

	return target, nil
}

// ValidEvents returns all valid events that can be triggered from this status.
func (s StoryStatus) ValidEvents() []string {
	transitions, ok := validTransitions[s]
	if !ok {
		return nil
	}

	var events []string
	for event := range transitions {
		events = append(events, event)
	}
	return events
}

// IsComplete returns true if the story is done.
func (s StoryStatus) IsComplete() bool {
	return s == StatusDone
}

// IsBlocked returns true if the story is blocked.
func (s StoryStatus) IsBlocked() bool {
	return s == StatusBlocked
}

// DisplayName returns a human-readable display name for the status.
func (s StoryStatus) DisplayName() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusInReview:
		return "In Review"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	default:
		return string(s)
	}
}

// ParseStoryStatus parses a string into a StoryStatus.
func ParseStoryStatus(s string) (StoryStatus, error) {
	status := StoryStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid story status: %s", s)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler interface.
func (s StoryStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *StoryStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Accept empty string as todo for backward compatibility
	if str == "" {
		*s = StatusTodo
		return nil
	}

	status := StoryStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid story status: %s", str)
	}

	*s = status
	return nil
}
