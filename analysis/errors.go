package analysis

import (
	"errors"
	"fmt"

	"github.com/njchilds90/gocalculus/symbolic"
)

// ErrNoEvaluableExtrema is the status of a global search in which every
// candidate failed to evaluate. It is reported, not returned.
var ErrNoEvaluableExtrema = errors.New("no evaluable extrema")

// ParamError rejects a request parameter before any computation happens.
type ParamError struct {
	Field string
	Msg   string
}

func (e *ParamError) Error() string { return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg) }

// EvaluationError records why a single candidate could not be evaluated.
type EvaluationError struct {
	Location complex128
	Stage    string // "f" or "f''"
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s at %s: %v", e.Stage, symbolic.FormatComplex(e.Location), e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
