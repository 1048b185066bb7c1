package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned for an action on a movement that is
	// no longer pending, or a link the movement cannot take.
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
	ErrNoActiveStatement = errors.New("no active statement")
)

// CollaboratorError reports a failure of the ledger. The movement involved
// is left untouched.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
