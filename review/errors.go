package review

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("review item not found")
)

var (
	// ErrEmptyTitle is returned when a title is blank after trimming.
	ErrEmptyTitle = fmt.Errorf("%w: title cannot be empty", ErrValidation)

	// ErrTitleTooLong is returned when a title exceeds MaxTitleLength.
	ErrTitleTooLong = fmt.Errorf("%w: title exceeds %d characters", ErrValidation, MaxTitleLength)

	// ErrInvalidDifficulty is returned for anything but easy, medium or hard.
	ErrInvalidDifficulty = fmt.Errorf("%w: invalid difficulty", ErrValidation)

	// ErrAmbiguousID is returned when an id prefix matches several items.
	ErrAmbiguousID = fmt.Errorf("%w: ambiguous review id prefix", ErrValidation)
)

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
