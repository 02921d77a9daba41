package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// idPattern matches valid ID formats: alphanumeric with hyphens/underscores
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// FeatureID represents a validated feature identifier.
type FeatureID struct {
	value string
}

// NewFeatureID creates a new FeatureID from a string value.
// Returns an error if the value is invalid.
func NewFeatureID(value string) (FeatureID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return FeatureID{}, fmt.Errorf("feature ID cannot be empty")
	}
	if !idPattern.MatchString(value) {
		return FeatureID{}, fmt.Errorf("invalid feature ID format: %s", value)
	}
	return FeatureID{value: value}, nil
}

// GenerateFeatureID creates a fresh random FeatureID.
func GenerateFeatureID() FeatureID {
	return FeatureID{value: uuid.NewString()}
}

// MustFeatureID creates a FeatureID or panics if invalid. Use only in tests.
func MustFeatureID(value string) FeatureID {
	id, err := NewFeatureID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation of the FeatureID.
func (id FeatureID) String() string {
	return id.value
}

// IsZero returns true if the FeatureID is empty.
func (id FeatureID) IsZero() bool {
	return id.value == ""
}

// Equals checks if two FeatureIDs are equal.
func (id FeatureID) Equals(other FeatureID) bool {
	return id.value == other.value
}

// StoryID represents a validated story identifier.
type StoryID struct {
	value string
}

// NewStoryID creates a new StoryID from a string value.
func NewStoryID(value string) (StoryID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return StoryID{}, fmt.Errorf("story ID cannot be empty")
	}
	if !idPattern.MatchString(value) {
		return StoryID{}, fmt.Errorf("invalid story ID format: %s", value)
	}
	return StoryID{value: value}, nil
}

// GenerateStoryID creates a fresh random StoryID.
func GenerateStoryID() StoryID {
	return StoryID{value: uuid.NewString()}
}

// MustStoryID creates a StoryID or panics if invalid. Use only in tests.
func MustStoryID(value string) StoryID {
	id, err := NewStoryID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation of the StoryID.
func (id StoryID) String() string {
	return id.value
}

// IsZero returns true if the StoryID is empty.
func (id StoryID) IsZero() bool {
	return id.value == ""
}

// Equals checks if two StoryIDs are equal.
func (id StoryID) Equals(other StoryID) bool {
	return id.value == other.value
}

// MemberID represents a validated team member identifier.
type MemberID struct {
	value string
}

// NewMemberID creates a new MemberID from a string value.
func NewMemberID(value string) (MemberID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return MemberID{}, fmt.Errorf("member ID cannot be empty")
	}
	if !idPattern.MatchString(value) {
		return MemberID{}, fmt.Errorf("invalid member ID format: %s", value)
	}
	return MemberID{value: value}, nil
}

// MustMemberID creates a MemberID or panics if invalid. Use only in tests.
func MustMemberID(value string) MemberID {
	id, err := NewMemberID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation of the MemberID.
func (id MemberID) String() string {
	return id.value
}

// IsZero returns true if the MemberID is empty.
func (id MemberID) IsZero() bool {
	return id.value == ""
}

// Equals checks if two MemberIDs are equal.
func (id MemberID) Equals(other MemberID) bool {
	return id.value == other.value
}

// RunID represents a validated workflow run identifier.
type RunID struct {
	value string
}

// NewRunID creates a new RunID from a string value.
func NewRunID(value string) (RunID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return RunID{}, fmt.Errorf("run ID cannot be empty")
	}
	if !idPattern.MatchString(value) {
		return RunID{}, fmt.Errorf("invalid run ID format: %s", value)
	}
	return RunID{value: value}, nil
}

// GenerateRunID creates a fresh random RunID.
func GenerateRunID() RunID {
	return RunID{value: uuid.NewString()}
}

// String returns the string representation of the RunID.
func (id RunID) String() string {
	return id.value
}

// IsZero returns true if the RunID is empty.
func (id RunID) IsZero() bool {
	return id.value == ""
}
