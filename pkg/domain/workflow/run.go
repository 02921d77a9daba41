package workflow

import (
	"fmt"
	"time"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
)

// ItemState is the per-item outcome during commit.
type ItemState string

const (
	// ItemPending means the ticket call has not produced a terminal result
	// yet: either not attempted, or failed transiently and awaiting an
	// explicit retry.
	ItemPending   ItemState = "pending"
	ItemSucceeded ItemState = "succeeded"
	ItemFailed    ItemState = "failed"
)

// ItemResult records the ticket-service outcome for one committed story.
type ItemResult struct {
	StoryID     string    `json:"story_id"`
	ExternalKey string    `json:"external_key,omitempty"`
	State       ItemState `json:"state"`
	Error       string    `json:"error,omitempty"`
}

// Terminal reports whether this item needs no further ticket calls.
func (r ItemResult) Terminal() bool {
	return r.State == ItemSucceeded || r.State == ItemFailed
}

// Run is the per-feature workflow state machine record. It is owned
// exclusively by the orchestrator; one active run exists per feature.
type Run struct {
	ID        string `json:"id"`
	FeatureID string `json:"feature_id"`
	Stage     Stage  `json:"stage"`

	// FailedStage is the stage that was active when the run failed, so an
	// explicit retry can re-enter it rather than restarting the pipeline.
	FailedStage Stage  `json:"failed_stage,omitempty"`
	LastError   string `json:"last_error,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`

	// CancelRequested stops the commit loop from starting new items.
	CancelRequested bool `json:"cancel_requested,omitempty"`

	// Preview output of the generation and prioritization stages; not
	// authoritative until the run is approved and committed.
	PreviewStories     []planning.Story      `json:"preview_stories,omitempty"`
	PreviewEpic        string                `json:"preview_epic,omitempty"`
	PreviewAssignments []planning.Assignment `json:"preview_assignments,omitempty"`
	PreviewWarnings    []planning.Warning    `json:"preview_warnings,omitempty"`

	CommitResults []ItemResult `json:"commit_results,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version supports optimistic concurrency in the repository.
	Version int `json:"-"`
}

// NewRun creates a run in the created stage for the given feature.
func NewRun(featureID string) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:        domain.GenerateRunID().String(),
		FeatureID: featureID,
		Stage:     StageCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition applies an event to the run's stage. The machine is rebuilt
// from the persisted stage on every call, so the record stays the single
// source of truth.
func (r *Run) Transition(event string) error {
	sm, err := NewRunStateMachine(string(r.Stage), r.ID, nil)
	if err != nil {
		return err
	}
	if err := sm.Transition(event); err != nil {
		return &domain.PreconditionError{Op: event, Reason: err.Error()}
	}
	r.Stage = sm.CurrentStage()
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail moves the run to the failed stage, retaining the triggering error and
// the stage it interrupted.
func (r *Run) Fail(err error, kind string) {
	if r.Stage.IsTerminal() {
		return
	}
	r.FailedStage = r.Stage
	r.Stage = StageFailed
	r.LastError = err.Error()
	r.ErrorKind = kind
	r.UpdatedAt = time.Now().UTC()
}

// Retry re-enters the stage that failed. It is an explicit action, never
// triggered automatically, and only valid from the failed stage.
func (r *Run) Retry() error {
	if r.Stage != StageFailed {
		return &domain.PreconditionError{Op: "retry", Reason: fmt.Sprintf("run is %s, not failed", r.Stage)}
	}
	if r.FailedStage == "" {
		return &domain.PreconditionError{Op: "retry", Reason: "run has no recorded failed stage"}
	}
	r.Stage = r.FailedStage
	r.FailedStage = ""
	r.LastError = ""
	r.ErrorKind = ""
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Active reports whether the run still owns its feature. Completed runs
// release the feature; failed runs stay active because they are resumable.
func (r *Run) Active() bool {
	return r.Stage != StageCompleted
}

// CommitDone reports whether every commit item has a terminal result.
func (r *Run) CommitDone() bool {
	if len(r.CommitResults) == 0 {
		return false
	}
	for _, item := range r.CommitResults {
		if !item.Terminal() {
			return false
		}
	}
	return true
}

// ResultFor returns the commit result for a story, or nil.
func (r *Run) ResultFor(storyID string) *ItemResult {
	for i := range r.CommitResults {
		if r.CommitResults[i].StoryID == storyID {
			return &r.CommitResults[i]
		}
	}
	return nil
}
