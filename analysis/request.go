package analysis

import (
	"fmt"
	"math"

	"github.com/njchilds90/gocalculus/symbolic"
)

// MaxDerivativeOrder bounds DerivativeRequest.Order.
const MaxDerivativeOrder = 100

// Request is the immutable input of one analysis. Either Expression (text)
// or Expr (an already built tree) must be set; Expr wins when both are.
type Request struct {
	ID         string
	Expression string
	Expr       symbolic.Expr
	Variable   string
	Analysis   Analysis
}

// Analysis is the closed set of analysis kinds. The unexported method keeps
// other packages from adding kinds Engine.Analyze would not handle.
type Analysis interface {
	Kind() Kind
	validate() error
	sealed()
}

// Kind names an analysis.
type Kind string

const (
	KindLimit      Kind = "limit"
	KindDerivative Kind = "derivative"
	KindContinuity Kind = "continuity"
	KindLocal      Kind = "local"
	KindGlobal     Kind = "global"
)

// Kinds lists every analysis kind in presentation order.
func Kinds() []Kind {
	return []Kind{KindLimit, KindDerivative, KindContinuity, KindLocal, KindGlobal}
}

// LimitRequest asks for the limit at Point from Direction.
type LimitRequest struct {
	Point     float64
	Direction symbolic.Direction
}

// DerivativeRequest asks for every derivative up to Order.
type DerivativeRequest struct {
	Order int
}

// ContinuityRequest asks whether the function is continuous at Point.
type ContinuityRequest struct {
	Point float64
}

// LocalExtremaRequest asks for critical points on the whole real line and
// their second-derivative classification.
type LocalExtremaRequest struct{}

// GlobalExtremaRequest asks for the minimum and maximum on Interval.
type GlobalExtremaRequest struct {
	Interval Interval
}

func (LimitRequest) Kind() Kind         { return KindLimit }
func (DerivativeRequest) Kind() Kind    { return KindDerivative }
func (ContinuityRequest) Kind() Kind    { return KindContinuity }
func (LocalExtremaRequest) Kind() Kind  { return KindLocal }
func (GlobalExtremaRequest) Kind() Kind { return KindGlobal }

func (LimitRequest) sealed()         {}
func (DerivativeRequest) sealed()    {}
func (ContinuityRequest) sealed()    {}
func (LocalExtremaRequest) sealed()  {}
func (GlobalExtremaRequest) sealed() {}

func (r LimitRequest) validate() error {
	if !isFinite(r.Point) {
		return &ParamError{Field: "point", Msg: "must be a finite number"}
	}
	switch r.Direction {
	case symbolic.Both, symbolic.FromLeft, symbolic.FromRight:
		return nil
	}
	return &ParamError{Field: "direction", Msg: fmt.Sprintf("unknown direction %d", r.Direction)}
}

func (r DerivativeRequest) validate() error {
	if r.Order < 1 || r.Order > MaxDerivativeOrder {
		return &ParamError{Field: "order", Msg: fmt.Sprintf("must be between 1 and %d, got %d", MaxDerivativeOrder, r.Order)}
	}
	return nil
}

func (r ContinuityRequest) validate() error {
	if !isFinite(r.Point) {
		return &ParamError{Field: "point", Msg: "must be a finite number"}
	}
	return nil
}

func (LocalExtremaRequest) validate() error { return nil }

func (r GlobalExtremaRequest) validate() error { return r.Interval.Validate() }

// Interval is the closed real interval [A, B].
type Interval struct {
	A, B float64
}

// NewInterval returns [a, b] or a *ParamError if a > b or either bound is
// not finite.
func NewInterval(a, b float64) (Interval, error) {
	iv := Interval{A: a, B: b}
	return iv, iv.Validate()
}

func (iv Interval) Validate() error {
	if !isFinite(iv.A) || !isFinite(iv.B) {
		return &ParamError{Field: "interval", Msg: "bounds must be finite"}
	}
	if iv.A > iv.B {
		return &ParamError{Field: "interval", Msg: fmt.Sprintf("a (%g) must not exceed b (%g)", iv.A, iv.B)}
	}
	return nil
}

// Contains reports whether x lies in [A, B].
func (iv Interval) Contains(x float64) bool { return x >= iv.A && x <= iv.B }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
