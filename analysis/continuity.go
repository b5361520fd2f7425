package analysis

import (
	"errors"

	"github.com/njchilds90/gocalculus/symbolic"
)

// ContinuityResult reports the one-sided limits and the value at Point.
// LeftErr, RightErr and ValueErr explain any of the three that is missing.
type ContinuityResult struct {
	Point      float64
	Left       symbolic.Expr
	Right      symbolic.Expr
	Value      symbolic.Expr
	LeftErr    error
	RightErr   error
	ValueErr   error
	Continuous bool
}

var errUndefinedValue = errors.New("function is undefined at the point")

// CheckContinuity tests f for continuity at p: both one-sided limits and the
// direct value must exist and be equivalent. An undefined value makes the
// result "not continuous", never an error.
func CheckContinuity(f symbolic.Expr, varName string, p float64) ContinuityResult {
	pt := symbolic.Real(p)
	res := ContinuityResult{Point: p}

	left := symbolic.Limit(f, varName, pt, symbolic.FromLeft)
	if left.Success {
		res.Left = left.Value
	} else {
		res.LeftErr = errors.New(left.Error)
	}
	right := symbolic.Limit(f, varName, pt, symbolic.FromRight)
	if right.Success {
		res.Right = right.Value
	} else {
		res.RightErr = errors.New(right.Error)
	}

	res.Value = symbolic.Sub(f, varName, pt)
	if _, err := symbolic.Evaluate(res.Value, varName, complex(p, 0)); err != nil {
		res.ValueErr = err
	} else if !symbolic.IsFinite(res.Value) {
		res.ValueErr = errUndefinedValue
	}

	res.Continuous = res.LeftErr == nil && res.RightErr == nil && res.ValueErr == nil &&
		symbolic.Equivalent(res.Left, res.Right) && symbolic.Equivalent(res.Left, res.Value)
	return res
}
