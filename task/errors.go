package task

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Store wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("task not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)

var (
	// ErrDescriptionLength is returned when a trimmed description is outside
	// MinDescriptionLength..MaxDescriptionLength characters.
	ErrDescriptionLength = fmt.Errorf("%w: description must be %d-%d characters", ErrValidation, MinDescriptionLength, MaxDescriptionLength)

	// ErrEstimateRange is returned when an estimate is outside
	// MinEstimatedMinutes..MaxEstimatedMinutes.
	ErrEstimateRange = fmt.Errorf("%w: estimated time must be %d-%d minutes", ErrValidation, MinEstimatedMinutes, MaxEstimatedMinutes)

	// ErrNonPositiveMinutes is returned when manual time is zero or negative.
	ErrNonPositiveMinutes = fmt.Errorf("%w: minutes must be positive", ErrValidation)

	// ErrReorderMismatch is returned when a reorder does not name every task exactly once.
	ErrReorderMismatch = fmt.Errorf("%w: reorder must list every task exactly once", ErrValidation)

	// ErrAmbiguousID is returned when an id prefix matches several tasks.
	ErrAmbiguousID = fmt.Errorf("%w: ambiguous task id prefix", ErrValidation)

	// ErrTimerBusy is returned when starting a timer while another task's is running.
	ErrTimerBusy = fmt.Errorf("%w: another task's timer is running", ErrConflict)

	// ErrTaskCompleted is returned when timing a completed task.
	ErrTaskCompleted = fmt.Errorf("%w: task is completed", ErrInvalidState)

	// ErrTaskFailed is returned when timing a task whose scheduled date has passed.
	ErrTaskFailed = fmt.Errorf("%w: task is failed", ErrInvalidState)

	// ErrTimerRunning is returned by operations that require a stopped timer.
	ErrTimerRunning = fmt.Errorf("%w: timer is running", ErrInvalidState)

	// ErrTimerNotRunning is returned when pausing a timer that isn't running.
	ErrTimerNotRunning = fmt.Errorf("%w: timer is not running", ErrInvalidState)
)

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
