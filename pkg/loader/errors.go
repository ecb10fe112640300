package loader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDefinition is matched by every error reporting a malformed flow
// file.
var ErrInvalidDefinition = errors.New("invalid flow definition")

// ValidationError is one problem found in a flow file.
type ValidationError struct {
	// Path locates the problem, for example "states/1/requirements/0".
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidDefinition }

// AggregateError holds every problem found in a flow file.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err.Error())
	}
	return b.String()
}

func (e *AggregateError) Is(target error) bool { return target == ErrInvalidDefinition }

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns the problems held by err, or nil when err does not
// carry any.
func ValidationErrors(err error) []error {
	var agg *AggregateError
	if errors.As(err, &agg) {
		return agg.Errors
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return []error{ve}
	}
	return nil
}

func problems(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}
