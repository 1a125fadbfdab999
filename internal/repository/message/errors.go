package message

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMessage = errors.New("invalid chat message")
	ErrInvalidRoom    = errors.New("invalid room")
	ErrInvalidLimit   = errors.New("invalid limit: must be between 1 and 1000")
)

// MaxRecentLimit caps a single history read.
const MaxRecentLimit = 1000

// PersistenceError reports that a message could not be written durably.
type PersistenceError struct {
	Op    string
	Room  string
	Cause error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persistence error in %s for room %q: %v", e.Op, e.Room, e.Cause)
	}
	return fmt.Sprintf("persistence error in %s for room %q", e.Op, e.Room)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// IsPersistenceError reports whether err carries a *PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
