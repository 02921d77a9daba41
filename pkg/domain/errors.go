package domain

import (
	"errors"
	"fmt"
)

// GatewayError indicates the completion-text service was unreachable or
// returned output that failed schema validation. Only transport-level
// failures are marked Transient and eligible for retry.
type GatewayError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway %s failed", e.Op)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError wraps err as a gateway failure for the given operation.
func NewGatewayError(op string, transient bool, err error) *GatewayError {
	return &GatewayError{Op: op, Transient: transient, Err: err}
}

// MalformedOutputError indicates schema-valid but semantically incomplete
// synthesis output, e.g. a story without a title or acceptance criteria.
// It is never retried automatically.
type MalformedOutputError struct {
	Op     string
	Reason string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed %s output: %s", e.Op, e.Reason)
}

// PreconditionError indicates a stage was invoked out of order.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition for %s not met: %s", e.Op, e.Reason)
}

// ConflictError indicates a concurrent-run or optimistic-concurrency
// violation.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %s: %s", e.Resource, e.ID, e.Reason)
}

// TicketServiceError indicates an external ticket system failure for a
// single work item. Permanent errors are terminal; transient ones leave the
// item pending until an explicit retry.
type TicketServiceError struct {
	StoryID   string
	Permanent bool
	Err       error
}

func (e *TicketServiceError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("ticket service (%s, story %s): %v", kind, e.StoryID, e.Err)
}

func (e *TicketServiceError) Unwrap() error {
	return e.Err
}

// IsGatewayError reports whether err is (or wraps) a GatewayError.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// IsMalformedOutput reports whether err is (or wraps) a MalformedOutputError.
func IsMalformedOutput(err error) bool {
	var me *MalformedOutputError
	return errors.As(err, &me)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsTransient reports whether err is a retry-safe transport failure:
// a transient GatewayError or a non-permanent TicketServiceError.
func IsTransient(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Transient
	}
	var te *TicketServiceError
	if errors.As(err, &te) {
		return !te.Permanent
	}
	return false
}
