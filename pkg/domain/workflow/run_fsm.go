package workflow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID compatibility.
// Values are kept in sync with Stage constants in stage.go.
const (
	StateCreated          = "created"
	StateClarifying       = "clarifying"
	StateGenerating       = "generating"
	StatePrioritizing     = "prioritizing"
	StateAwaitingApproval = "awaiting_approval"
	StateCommitting       = "committing"
	StateCompleted        = "completed"
	StateFailed           = "failed"
)

// init validates at startup that FSM state constants match Stage values.
// This ensures the FSM and value object stay in sync.
func init() {
	stateMap := map[string]Stage{
		StateCreated:          StageCreated,
		StateClarifying:       StageClarifying,
		StateGenerating:       StageGenerating,
		StatePrioritizing:     StagePrioritizing,
		StateAwaitingApproval: StageAwaitingApproval,
		StateCommitting:       StageCommitting,
		StateCompleted:        StageCompleted,
		StateFailed:           StageFailed,
	}

	for fsmState, stage := range stateMap {
		if fsmState != string(stage) {
			panic(fmt.Sprintf("FSM state %q does not match Stage %q - constants are out of sync", fsmState, stage))
		}
	}
}

// RunContext carries state data.
type RunContext struct {
	RunID string
	Guard func(runID string, event string) bool
}

// RunStateMachine drives a workflow run through its stage graph.
type RunStateMachine struct {
	interpreter *statekit.Interpreter[RunContext]
}

// NewRunStateMachine builds the stage machine starting at initialStage.
// The optional guard is consulted before approve and cancel transitions.
func NewRunStateMachine(initialStage string, runID string, guard func(string, string) bool) (*RunStateMachine, error) {
	if guard == nil {
		guard = func(string, string) bool { return true }
	}

	builder := statekit.NewMachine[RunContext]("workflow-run").
		WithInitial(statekit.StateID(initialStage)).
		WithContext(RunContext{
			RunID: runID,
			Guard: guard,
		}).
		WithGuard("runGuard", func(ctx RunContext, e statekit.Event) bool {
			return ctx.Guard(ctx.RunID, string(e.Type))
		})

	builder.State(StateCreated).
		On("clarify").Target(StateClarifying).
		On("fail").Target(StateFailed).
		Done()

	builder.State(StateClarifying).
		On("generate").Target(StateGenerating).
		On("fail").Target(StateFailed).
		Done()

	builder.State(StateGenerating).
		On("prioritize").Target(StatePrioritizing).
		On("fail").Target(StateFailed).
		Done()

	builder.State(StatePrioritizing).
		On("review").Target(StateAwaitingApproval).
		On("fail").Target(StateFailed).
		Done()

	builder.State(StateAwaitingApproval).
		On("approve").Target(StateCommitting).Guard("runGuard").
		On("cancel").Target(StateFailed).Guard("runGuard").
		On("fail").Target(StateFailed).
		Done()

	builder.State(StateCommitting).
		On("finish").Target(StateCompleted).
		On("fail").Target(StateFailed).
		Done()

	// Terminal states
	builder.State(StateCompleted).Done()
	builder.State(StateFailed).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &RunStateMachine{interpreter: interpreter}, nil
}

// Transition attempts to move the run to a new stage.
func (sm *RunStateMachine) Transition(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}

	// In statekit, if no transition matches or a guard fails, the state
	// stays the same.
	return fmt.Errorf("the action '%s' is not allowed while the run is in the '%s' stage", event, before)
}

// Current returns the current stage as a raw string.
func (sm *RunStateMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// CurrentStage returns the current stage as a Stage value object.
func (sm *RunStateMachine) CurrentStage() Stage {
	return Stage(sm.Current())
}

// CanTransition checks if the given event is valid for the current stage.
// This delegates to the Stage value object for consistency.
func (sm *RunStateMachine) CanTransition(event string) bool {
	return sm.CurrentStage().CanTransitionWith(event)
}

// ValidEvents returns the valid events for the current stage.
func (sm *RunStateMachine) ValidEvents() []string {
	return sm.CurrentStage().ValidEvents()
}

// IsTerminal returns true if the current stage is terminal.
func (sm *RunStateMachine) IsTerminal() bool {
	return sm.CurrentStage().IsTerminal()
}
