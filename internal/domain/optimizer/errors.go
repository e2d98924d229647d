package optimizer

import (
	"errors"
	"fmt"
)

// Sentinel causes, matchable with errors.Is through *Error.
var (
	ErrInvalidBudget    = errors.New("budget must be a positive finite number")
	ErrInvalidWeight    = errors.New("weights must be non-negative finite numbers")
	ErrInvalidCostFloor = errors.New("cost floor must be a positive finite number")
	ErrInvalidAsset     = errors.New("asset metrics must be non-negative finite numbers")
	ErrNonFinite        = errors.New("non-finite value")
)

// Kind classifies a failed run.
type Kind string

// Failure kinds.
const (
	KindInvalidConfig Kind = "invalid_config"
	KindInvalidInput  Kind = "invalid_input"
	KindComputation   Kind = "computation"
)

// Error is the typed failure returned at the optimizer boundary.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewComputationError wraps an unexpected failure, such as a recovered panic.
func NewComputationError(err error) *Error {
	return newError(KindComputation, err)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err, or KindComputation for foreign errors.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindComputation
}
