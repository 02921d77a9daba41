package cli

import (
	"errors"
	"fmt"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s\nHint: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var pe *domain.PreconditionError
	if errors.As(err, &pe) {
		return NewCLIError(
			pe.Error(),
			"Run 'autoscrum status <feature-id>' to see the current stage",
			err,
		)
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return NewCLIError(
			ce.Error(),
			"Another operation is in flight for this feature, retry in a moment",
			err,
		)
	}

	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		hint := "Check the AI provider configuration in .autoscrum/config.yaml"
		if ge.Transient {
			hint = "The AI service was unreachable, run 'autoscrum retry <feature-id>'"
		}
		return NewCLIError(ge.Error(), hint, err)
	}

	var me *domain.MalformedOutputError
	if errors.As(err, &me) {
		return NewCLIError(
			me.Error(),
			"The model produced unusable output, run 'autoscrum retry <feature-id>'",
			err,
		)
	}

	return err
}
