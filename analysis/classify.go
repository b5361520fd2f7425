package analysis

import (
	"math"

	"github.com/njchilds90/gocalculus/symbolic"
)

// PointKind is the outcome of the second-derivative test.
type PointKind int

const (
	Indeterminate PointKind = iota
	Minimum
	Maximum
	Inflection
)

func (k PointKind) String() string {
	switch k {
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case Inflection:
		return "inflection"
	}
	return "indeterminate"
}

func (k PointKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ClassifiedPoint is a candidate with f and f'' evaluated there. The kind is
// always derived from Curvature, never stored.
type ClassifiedPoint struct {
	Location  complex128
	Value     complex128
	Curvature complex128
	imagTol   float64
}

// Kind applies the second-derivative test: a real f'' (|Im| below the
// tolerance) classifies by sign, a complex one is indeterminate.
func (p ClassifiedPoint) Kind() PointKind {
	tol := p.imagTol
	if tol == 0 {
		tol = DefaultImagTolerance
	}
	if math.Abs(imag(p.Curvature)) >= tol {
		return Indeterminate
	}
	switch re := real(p.Curvature); {
	case re > 0:
		return Minimum
	case re < 0:
		return Maximum
	}
	return Inflection
}

// Outcome is the result of classifying one candidate: exactly one of Point
// and Err is set.
type Outcome struct {
	Location complex128
	Point    *ClassifiedPoint
	Err      error
}

// Classifier evaluates f and f'' at candidate points.
type Classifier struct {
	f, f2   func(complex128) (complex128, error)
	imagTol float64
}

// NewClassifier compiles f and its second derivative in varName.
func NewClassifier(f symbolic.Expr, varName string, imagTol float64) *Classifier {
	return &Classifier{
		f:       symbolic.Compile(f, varName),
		f2:      symbolic.Compile(symbolic.Diff2(f, varName), varName),
		imagTol: imagTol,
	}
}

// Classify evaluates the candidate c. Failures are *EvaluationError.
func (c *Classifier) Classify(loc complex128) (ClassifiedPoint, error) {
	v, err := c.f(loc)
	if err != nil {
		return ClassifiedPoint{}, &EvaluationError{Location: loc, Stage: "f", Err: err}
	}
	curv, err := c.f2(loc)
	if err != nil {
		return ClassifiedPoint{}, &EvaluationError{Location: loc, Stage: "f''", Err: err}
	}
	return ClassifiedPoint{Location: loc, Value: v, Curvature: curv, imagTol: c.imagTol}, nil
}

// ClassifyAll classifies every candidate. One failing candidate never
// affects the others.
func (c *Classifier) ClassifyAll(locs []complex128) []Outcome {
	out := make([]Outcome, len(locs))
	for i, loc := range locs {
		p, err := c.Classify(loc)
		if err != nil {
			out[i] = Outcome{Location: loc, Err: err}
			continue
		}
		out[i] = Outcome{Location: loc, Point: &p}
	}
	return out
}
