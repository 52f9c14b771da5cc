package processor

import (
	"errors"
	"fmt"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/money"
)

// IllegalTransitionError rejects a command the current stage does not accept.
type IllegalTransitionError struct {
	Stage   string
	Command Command
	Reason  string
}

func (e *IllegalTransitionError) Error() string {
	msg := fmt.Sprintf("cannot %s from stage %s", e.Command, e.Stage)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError reports a command that lost to concurrent or existing state.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Reason)
}

// attachStage records the stage at rejection on validation and calculation errors.
func attachStage(err error, stage string) error {
	if err == nil || stage == "" {
		return err
	}
	var vErr *money.ValidationError
	if errors.As(err, &vErr) && vErr.Stage == "" {
		vErr.Stage = stage
	}
	var cErr *calculator.CalculationError
	if errors.As(err, &cErr) && cErr.Stage == "" {
		cErr.Stage = stage
	}
	return err
}
