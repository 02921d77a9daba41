package workflow

import (
	"errors"
	"testing"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
)

func TestStage_TransitionTable(t *testing.T) {
	tests := []struct {
		from  Stage
		event string
		want  Stage
		ok    bool
	}{
		{StageCreated, "clarify", StageClarifying, true},
		{StageClarifying, "generate", StageGenerating, true},
		{StageGenerating, "prioritize", StagePrioritizing, true},
		{StagePrioritizing, "review", StageAwaitingApproval, true},
		{StageAwaitingApproval, "approve", StageCommitting, true},
		{StageAwaitingApproval, "cancel", StageFailed, true},
		{StageCommitting, "finish", StageCompleted, true},
		{StageClarifying, "fail", StageFailed, true},
		// No path back into clarifying once generation started.
		{StageGenerating, "clarify", "", false},
		{StageCompleted, "fail", "", false},
		{StageFailed, "approve", "", false},
		{StageCreated, "approve", "", false},
	}

	for _, tt := range tests {
		got, err := tt.from.TransitionWith(tt.event)
		if tt.ok {
			if err != nil {
				t.Errorf("%s --%s--> failed: %v", tt.from, tt.event, err)
			} else if got != tt.want {
				t.Errorf("%s --%s--> %s, want %s", tt.from, tt.event, got, tt.want)
			}
		} else if err == nil {
			t.Errorf("%s --%s--> should be rejected, got %s", tt.from, tt.event, got)
		}
	}
}

func TestRun_Transition(t *testing.T) {
	run := NewRun("feat-1")
	if run.Stage != StageCreated {
		t.Fatalf("fresh run should be created, got %s", run.Stage)
	}

	if err := run.Transition("clarify"); err != nil {
		t.Fatalf("clarify failed: %v", err)
	}
	if err := run.Transition("generate"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// Re-entering clarification after generation started is out of order.
	err := run.Transition("clarify")
	if err == nil {
		t.Fatal("expected clarify to be rejected after generating")
	}
	var pe *domain.PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PreconditionError, got %T", err)
	}
}

func TestRun_FailAndRetry(t *testing.T) {
	run := NewRun("feat-1")
	_ = run.Transition("clarify")
	_ = run.Transition("generate")

	run.Fail(errors.New("gateway timeout"), "gateway")

	if run.Stage != StageFailed {
		t.Fatalf("expected failed, got %s", run.Stage)
	}
	if run.FailedStage != StageGenerating {
		t.Fatalf("expected failed stage generating, got %s", run.FailedStage)
	}
	if run.LastError == "" || run.ErrorKind != "gateway" {
		t.Fatalf("expected retained error, got %q kind %q", run.LastError, run.ErrorKind)
	}

	if err := run.Retry(); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if run.Stage != StageGenerating {
		t.Fatalf("retry should re-enter generating, got %s", run.Stage)
	}
	if run.LastError != "" {
		t.Fatal("retry should clear the retained error")
	}

	// A second retry without a failure is invalid.
	if err := run.Retry(); err == nil {
		t.Fatal("expected retry on non-failed run to error")
	}
}

func TestRun_CommitResults(t *testing.T) {
	run := NewRun("feat-1")

	if run.CommitDone() {
		t.Fatal("empty results should not count as done")
	}

	run.CommitResults = []ItemResult{
		{StoryID: "s1", State: ItemSucceeded, ExternalKey: "PROJ-1"},
		{StoryID: "s2", State: ItemPending},
	}
	if run.CommitDone() {
		t.Fatal("pending item should keep commit open")
	}

	run.CommitResults[1].State = ItemFailed
	run.CommitResults[1].Error = "401 unauthorized"
	if !run.CommitDone() {
		t.Fatal("all-terminal results should complete commit")
	}

	if got := run.ResultFor("s1"); got == nil || got.ExternalKey != "PROJ-1" {
		t.Fatalf("ResultFor(s1) = %+v", got)
	}
	if run.ResultFor("missing") != nil {
		t.Fatal("expected nil for unknown story")
	}
}

func TestRunStateMachine(t *testing.T) {
	sm, err := NewRunStateMachine(StateCreated, "run-1", nil)
	if err != nil {
		t.Fatalf("failed to build machine: %v", err)
	}

	steps := []string{"clarify", "generate", "prioritize", "review", "approve", "finish"}
	for _, event := range steps {
		if err := sm.Transition(event); err != nil {
			t.Fatalf("transition %s failed: %v", event, err)
		}
	}
	if sm.Current() != StateCompleted {
		t.Fatalf("expected completed, got %s", sm.Current())
	}
	if !sm.IsTerminal() {
		t.Fatal("completed should be terminal")
	}

	if err := sm.Transition("clarify"); err == nil {
		t.Fatal("completed run must reject further events")
	}
}

func TestRunStateMachine_Guard(t *testing.T) {
	denied := func(runID, event string) bool { return event != "approve" }

	sm, err := NewRunStateMachine(StateAwaitingApproval, "run-1", denied)
	if err != nil {
		t.Fatalf("failed to build machine: %v", err)
	}

	if err := sm.Transition("approve"); err == nil {
		t.Fatal("guard should have blocked approve")
	}
	if sm.Current() != StateAwaitingApproval {
		t.Fatalf("stage should be unchanged, got %s", sm.Current())
	}
}
