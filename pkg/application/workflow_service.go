package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/feature"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ticket"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/workflow"
)

// WorkflowService is the per-feature orchestrator. It owns the WorkflowRun
// records, sequences clarification, synthesis, assignment and commit, and
// enforces the single-active-operation invariant per feature.
type WorkflowService struct {
	repo    WorkspaceRepository
	clarify *ClarifyService
	stories *StoryService
	team    *TeamService
	tickets ticket.Provider
	audit   domain.AuditLogger

	mu           sync.Mutex
	featureLocks map[string]*sync.Mutex
}

func NewWorkflowService(repo WorkspaceRepository, clarify *ClarifyService, stories *StoryService, team *TeamService, tickets ticket.Provider, audit domain.AuditLogger) *WorkflowService {
	return &WorkflowService{
		repo:         repo,
		clarify:      clarify,
		stories:      stories,
		team:         team,
		tickets:      tickets,
		audit:        audit,
		featureLocks: make(map[string]*sync.Mutex),
	}
}

// SetTicketProvider wires the ticket plugin after it has been loaded.
func (s *WorkflowService) SetTicketProvider(p ticket.Provider) {
	s.tickets = p
}

// lockFeature rejects a second concurrent entry into any stage for the same
// feature instead of queueing it.
func (s *WorkflowService) lockFeature(featureID string) (func(), error) {
	s.mu.Lock()
	l, ok := s.featureLocks[featureID]
	if !ok {
		l = &sync.Mutex{}
		s.featureLocks[featureID] = l
	}
	s.mu.Unlock()

	if !l.TryLock() {
		return nil, &domain.ConflictError{
			Resource: "run",
			ID:       featureID,
			Reason:   "another operation is active for this feature",
		}
	}
	return l.Unlock, nil
}

// StartFeature creates a feature and its workflow run.
func (s *WorkflowService) StartFeature(ctx context.Context, name, description string) (*workflow.Run, error) {
	f, err := feature.New(name, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveFeature(f); err != nil {
		return nil, err
	}

	run := workflow.NewRun(f.ID)
	if err := s.repo.SaveRun(run); err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Log("run.started", "human", map[string]interface{}{
			"feature_id": f.ID,
			"run_id":     run.ID,
			"name":       name,
		})
	}
	return run, nil
}

// SubmitClarification feeds one user answer into the clarification stage.
// When the context becomes complete, synthesis and assignment run
// automatically and the run lands in awaiting_approval.
func (s *WorkflowService) SubmitClarification(ctx context.Context, featureID, text string) (*ClarifyResult, error) {
	unlock, err := s.lockFeature(featureID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	run, err := s.loadRun(featureID)
	if err != nil {
		return nil, err
	}

	if run.Stage == workflow.StageCreated {
		if err := run.Transition("clarify"); err != nil {
			return nil, err
		}
	}
	if run.Stage != workflow.StageClarifying {
		return nil, &domain.PreconditionError{
			Op:     "clarify",
			Reason: fmt.Sprintf("run is %s, clarification is closed", run.Stage),
		}
	}

	f, err := s.repo.LoadFeature(featureID)
	if err != nil {
		return nil, err
	}

	result, err := s.clarify.Submit(ctx, f, text)
	if err != nil {
		return nil, s.failRun(run, err)
	}

	if result.IsComplete {
		if err := run.Transition("generate"); err != nil {
			return nil, s.failRun(run, err)
		}
		if err := s.generateAndPrioritize(ctx, run, f); err != nil {
			return nil, s.failRun(run, err)
		}
	}

	if err := s.repo.SaveRun(run); err != nil {
		return nil, err
	}
	return result, nil
}

// generateAndPrioritize runs synthesis and assignment on a run that just
// entered the generating stage, leaving it in awaiting_approval.
func (s *WorkflowService) generateAndPrioritize(ctx context.Context, run *workflow.Run, f *feature.Feature) error {
	synth, err := s.stories.Synthesize(ctx, f)
	if err != nil {
		return err
	}
	run.PreviewStories = synth.Stories
	run.PreviewEpic = synth.EpicLabel

	if err := run.Transition("prioritize"); err != nil {
		return err
	}
	return s.prioritize(run)
}

// prioritize computes the preview assignment and advances the run to
// awaiting_approval.
func (s *WorkflowService) prioritize(run *workflow.Run) error {
	roster, err := s.team.Roster()
	if err != nil {
		return err
	}

	result := planning.Assign(run.PreviewStories, roster.Members)
	run.PreviewAssignments = result.Assignments
	run.PreviewWarnings = result.Warnings

	return run.Transition("review")
}

// PreviewStories returns the generated story set awaiting approval.
func (s *WorkflowService) PreviewStories(featureID string) (*SynthesisResult, error) {
	run, err := s.loadRun(featureID)
	if err != nil {
		return nil, err
	}
	if len(run.PreviewStories) == 0 {
		return nil, &domain.PreconditionError{Op: "preview", Reason: "no stories have been generated yet"}
	}
	return &SynthesisResult{Stories: run.PreviewStories, EpicLabel: run.PreviewEpic}, nil
}

// PreviewAssignment recomputes the assignment for the given stories without
// persisting anything. With nil stories the run's preview set is used.
func (s *WorkflowService) PreviewAssignment(featureID string, stories []planning.Story) (*planning.AssignResult, error) {
	if stories == nil {
		preview, err := s.PreviewStories(featureID)
		if err != nil {
			return nil, err
		}
		stories = preview.Stories
	}

	roster, err := s.team.Roster()
	if err != nil {
		return nil, err
	}
	result := planning.Assign(stories, roster.Members)
	return &result, nil
}

// ApproveAndCommit persists the approved story set as authoritative and
// creates one external ticket per story. Callers may pass an edited story or
// assignment set (a trimmed preview); nil means approve the preview as is.
// Partial ticket failures keep the run in committing with per-item results;
// it completes once every item has a terminal result.
func (s *WorkflowService) ApproveAndCommit(ctx context.Context, featureID string, stories []planning.Story, assignments []planning.Assignment) ([]workflow.ItemResult, error) {
	unlock, err := s.lockFeature(featureID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if s.tickets == nil {
		return nil, &domain.PreconditionError{Op: "approve", Reason: "no ticket provider configured"}
	}

	run, err := s.loadRun(featureID)
	if err != nil {
		return nil, err
	}

	if stories != nil {
		run.PreviewStories = stories
	}
	if assignments != nil {
		run.PreviewAssignments = assignments
	}

	if err := run.Transition("approve"); err != nil {
		return nil, err
	}

	if len(run.CommitResults) == 0 {
		run.CommitResults = make([]workflow.ItemResult, 0, len(run.PreviewStories))
		for _, story := range run.PreviewStories {
			run.CommitResults = append(run.CommitResults, workflow.ItemResult{
				StoryID: story.ID,
				State:   workflow.ItemPending,
			})
		}
	}
	if err := s.repo.SaveRun(run); err != nil {
		return nil, err
	}

	return s.runCommit(ctx, run)
}

// RetryCommit re-attempts the pending items of a run stuck in committing.
func (s *WorkflowService) RetryCommit(ctx context.Context, featureID string) ([]workflow.ItemResult, error) {
	unlock, err := s.lockFeature(featureID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	run, err := s.loadRun(featureID)
	if err != nil {
		return nil, err
	}
	if run.Stage != workflow.StageCommitting {
		return nil, &domain.PreconditionError{
			Op:     "retry_commit",
			Reason: fmt.Sprintf("run is %s, not committing", run.Stage),
		}
	}
	run.CancelRequested = false

	return s.runCommit(ctx, run)
}

func (s *WorkflowService) runCommit(ctx context.Context, run *workflow.Run) ([]workflow.ItemResult, error) {
	s.commitItems(ctx, run)

	if err := s.persistStories(run); err != nil {
		return nil, err
	}

	if run.CommitDone() {
		if err := run.Transition("finish"); err != nil {
			return nil, err
		}
	}
	if err := s.repo.SaveRun(run); err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Log("run.committed", "human", map[string]interface{}{
			"feature_id": run.FeatureID,
			"stage":      string(run.Stage),
			"items":      len(run.CommitResults),
		})
	}
	return run.CommitResults, nil
}

// commitItems drives the per-item ticket calls. A transient failure leaves
// the item pending for an explicit retry; a permanent one marks it failed.
// No new item is started after a cancellation request.
func (s *WorkflowService) commitItems(ctx context.Context, run *workflow.Run) {
	assignments := make(map[string]planning.Assignment, len(run.PreviewAssignments))
	for _, a := range run.PreviewAssignments {
		assignments[a.StoryID] = a
	}

	for i := range run.PreviewStories {
		story := &run.PreviewStories[i]
		result := run.ResultFor(story.ID)
		if result == nil || result.Terminal() {
			continue
		}
		if run.CancelRequested || ctx.Err() != nil {
			break
		}

		if result.ExternalKey == "" {
			key, err := s.tickets.CreateItem(*story)
			if err != nil {
				tse := classifyTicketError(story.ID, err)
				result.Error = tse.Error()
				if tse.Permanent {
					result.State = workflow.ItemFailed
				}
				continue
			}
			result.ExternalKey = key
			story.ExternalKey = key
		}

		result.State = workflow.ItemSucceeded
		result.Error = ""

		if a, ok := assignments[story.ID]; ok {
			story.Assignee = a.MemberID
			if err := s.team.ApplyLoad(a.MemberID, story.Points); err != nil && s.audit != nil {
				_ = s.audit.Log("run.load_update_failed", "system", map[string]interface{}{
					"story_id":  story.ID,
					"member_id": a.MemberID,
					"error":     err.Error(),
				})
			}
		}
	}
}

// persistStories writes the run's story set as the authoritative one.
func (s *WorkflowService) persistStories(run *workflow.Run) error {
	_, version, err := s.repo.LoadStories(run.FeatureID)
	if err != nil {
		return err
	}
	return s.repo.SaveStories(run.FeatureID, run.PreviewStories, &version)
}

// Cancel aborts a run. Only allowed while awaiting approval; during commit
// it merely stops new items from starting.
func (s *WorkflowService) Cancel(featureID string) (*workflow.Run, error) {
	unlock, err := s.lockFeature(featureID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	run, err := s.loadRun(featureID)
	if err != nil {
		return nil, err
	}

	switch run.Stage {
	case workflow.StageAwaitingApproval:
		if err := run.Transition("cancel"); err != nil {
			return nil, err
		}
		run.LastError = "cancelled by user"
		run.ErrorKind = "cancelled"
	case workflow.StageCommitting:
		run.CancelRequested = true
	default:
		return nil, &domain.PreconditionError{
			Op:     "cancel",
			Reason: fmt.Sprintf("run is %s and cannot be cancelled", run.Stage),
		}
	}

	if err := s.repo.SaveRun(run); err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Log("run.cancelled", "human", map[string]interface{}{
			"feature_id": featureID,
			"stage":      string(run.Stage),
		})
	}
	return run, nil
}

// Retry re-enters the stage a failed run was in and resumes the automatic
// pipeline from there.
func (s *WorkflowService) Retry(ctx context.Context, featureID string) (*workflow.Run, error) {
	unlock, err := s.lockFeature(featureID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	run, err := s.loadRun(featureID)
	if err != nil {
		return nil, err
	}
	if err := run.Retry(); err != nil {
		return nil, err
	}

	switch run.Stage {
	case workflow.StageGenerating:
		f, err := s.repo.LoadFeature(featureID)
		if err != nil {
			return nil, err
		}
		if err := s.generateAndPrioritize(ctx, run, f); err != nil {
			return nil, s.failRun(run, err)
		}
	case workflow.StagePrioritizing:
		if err := s.prioritize(run); err != nil {
			return nil, s.failRun(run, err)
		}
	case workflow.StageCommitting:
		if _, err := s.runCommit(ctx, run); err != nil {
			return nil, err
		}
		return run, nil
	}

	if err := s.repo.SaveRun(run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRunState returns the current workflow run for a feature.
func (s *WorkflowService) GetRunState(featureID string) (*workflow.Run, error) {
	return s.loadRun(featureID)
}

func (s *WorkflowService) loadRun(featureID string) (*workflow.Run, error) {
	run, err := s.repo.LoadRun(featureID)
	if err != nil {
		if isNotFound(err) {
			return nil, &domain.PreconditionError{Op: "load_run", Reason: "no workflow run for feature " + featureID}
		}
		return nil, err
	}
	return run, nil
}

// failRun records the triggering error on the run and persists it. The
// original error is always returned to the caller verbatim.
func (s *WorkflowService) failRun(run *workflow.Run, cause error) error {
	kind := errorKind(cause)
	if kind == "" {
		// Not part of the workflow error taxonomy, leave the run as is.
		return cause
	}

	run.Fail(cause, kind)
	if err := s.repo.SaveRun(run); err != nil {
		return errors.Join(cause, err)
	}

	if s.audit != nil {
		_ = s.audit.Log("run.failed", "system", map[string]interface{}{
			"feature_id": run.FeatureID,
			"stage":      string(run.FailedStage),
			"kind":       kind,
			"error":      cause.Error(),
		})
	}
	return cause
}

func errorKind(err error) string {
	switch {
	case domain.IsGatewayError(err):
		return "gateway"
	case domain.IsMalformedOutput(err):
		return "malformed_output"
	case domain.IsPrecondition(err):
		return "precondition"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return ""
	}
}

func classifyTicketError(storyID string, err error) *domain.TicketServiceError {
	var tse *domain.TicketServiceError
	if errors.As(err, &tse) {
		return tse
	}

	// Plugin errors arrive flattened over RPC, so classification falls back
	// to the message. 4xx responses and explicit "permanent:" prefixes are
	// not worth retrying.
	msg := err.Error()
	permanent := strings.Contains(msg, "permanent:")
	for _, marker := range []string{"status 400", "status 401", "status 403", "status 404", "status 422"} {
		if strings.Contains(msg, marker) {
			permanent = true
			break
		}
	}
	return &domain.TicketServiceError{StoryID: storyID, Permanent: permanent, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
