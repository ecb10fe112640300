package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownCondition is returned when a tree refers to a condition key that
// is not in the ConditionsMap.
var ErrUnknownCondition = errors.New("unknown condition")

// ErrNilPredicate is returned when an inline condition or a ConditionsMap
// entry has no predicate.
var ErrNilPredicate = errors.New("nil predicate")

// ErrEmptyFork is returned when a fork has no children.
var ErrEmptyFork = errors.New("fork has no children")

// ErrNilNode is returned when a tree contains a nil node.
var ErrNilNode = errors.New("nil node")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEntryNotInHistory is returned when rewinding to an entry the session
// has not visited.
var ErrEntryNotInHistory = errors.New("entry not in history")

// ConditionError reports a condition that could not be evaluated.
type ConditionError struct {
	// Condition is the condition label (its key for refs).
	Condition string
	// Node is the label of the node being evaluated, empty for the up-front
	// evaluation of the ConditionsMap.
	Node string
	Err  error
}

func (e *ConditionError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("condition %q: %v", e.Condition, e.Err)
	}
	return fmt.Sprintf("condition %q on %q: %v", e.Condition, e.Node, e.Err)
}

func (e *ConditionError) Unwrap() error { return e.Err }
