package analysis

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/njchilds90/gocalculus/symbolic"
)

// Extremum is a candidate location together with f evaluated there.
type Extremum struct {
	Location complex128
	Value    complex128
}

// LocalResult is the output of a local (whole real line) analysis.
// Vanishing is set when f' is identically zero, i.e. f is constant.
type LocalResult struct {
	CriticalPoints []complex128
	ClosedForm     bool
	Vanishing      bool
	Classified     []Outcome
}

// GlobalResult is the output of a global search on an interval. Status is
// nil or ErrNoEvaluableExtrema; Min and Max are nil exactly when Status is
// set.
type GlobalResult struct {
	Interval       Interval
	CriticalPoints []complex128
	Candidates     []complex128
	Evaluated      []Extremum
	Dropped        []Outcome
	Classified     []Outcome
	Min, Max       *Extremum
	Status         error
	Vanishing      bool
}

// ExtremumSearch locates and classifies the critical points of a function.
type ExtremumSearch struct {
	Finder  RootFinder
	Epsilon float64
	Places  int
	ImagTol float64
	// StrictReal additionally drops critical points whose imaginary part is
	// not below ImagTol.
	StrictReal bool
	// ScanInterval seeds the multi-start solve over [a, b] instead of the
	// finder's own range.
	ScanInterval bool
	Logger       *zap.Logger
}

func (s ExtremumSearch) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s ExtremumSearch) imagTol() float64 {
	if s.ImagTol <= 0 {
		return DefaultImagTolerance
	}
	return s.ImagTol
}

// CriticalPoints returns the zeros of f' after proximity deduplication.
func (s ExtremumSearch) CriticalPoints(ctx context.Context, f symbolic.Expr, varName string) (RootSet, error) {
	return s.criticalPoints(ctx, s.Finder, f, varName)
}

func (s ExtremumSearch) criticalPoints(ctx context.Context, rf RootFinder, f symbolic.Expr, varName string) (RootSet, error) {
	set, err := rf.FindRoots(ctx, symbolic.Diff(f, varName), varName)
	if err != nil {
		return RootSet{}, err
	}
	set.Roots = Dedupe(set.Roots, s.Epsilon)
	return set, nil
}

// Local finds the critical points of f on the whole real line and classifies
// each of them.
func (s ExtremumSearch) Local(ctx context.Context, f symbolic.Expr, varName string) (*LocalResult, error) {
	set, err := s.CriticalPoints(ctx, f, varName)
	if err != nil {
		return nil, err
	}
	cl := NewClassifier(f, varName, s.imagTol())
	res := &LocalResult{
		CriticalPoints: set.Roots,
		ClosedForm:     set.ClosedForm,
		Vanishing:      set.Vanishing,
		Classified:     cl.ClassifyAll(set.Roots),
	}
	for _, o := range res.Classified {
		if o.Err != nil {
			s.logger().Debug("critical point not classified", zap.Error(o.Err))
		}
	}
	return res, nil
}

// Global searches [iv.A, iv.B] for the minimum and maximum of f. Candidates
// are the critical points whose real part lies in the interval plus both
// endpoints; a candidate that cannot be evaluated is dropped and recorded in
// Dropped. The only returned errors are an invalid interval and ctx being
// done.
func (s ExtremumSearch) Global(ctx context.Context, f symbolic.Expr, varName string, iv Interval) (*GlobalResult, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	rf := s.Finder
	if s.ScanInterval {
		rf.Lo, rf.Hi = iv.A, iv.B
	}
	set, err := s.criticalPoints(ctx, rf, f, varName)
	if err != nil {
		return nil, err
	}

	res := &GlobalResult{Interval: iv, Vanishing: set.Vanishing}
	tol := s.imagTol()
	for _, c := range set.Roots {
		if !iv.Contains(real(c)) {
			continue
		}
		if s.StrictReal && math.Abs(imag(c)) >= tol {
			continue
		}
		res.CriticalPoints = append(res.CriticalPoints, c)
	}

	cands := make([]complex128, 0, len(res.CriticalPoints)+2)
	cands = append(cands, res.CriticalPoints...)
	cands = append(cands, complex(iv.A, 0), complex(iv.B, 0))
	res.Candidates = DedupeRounded(cands, s.Places)
	symbolic.SortComplex(res.Candidates)

	eval := symbolic.Compile(f, varName)
	for _, c := range res.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := eval(c)
		if err != nil {
			ee := &EvaluationError{Location: c, Stage: "f", Err: err}
			s.logger().Debug("candidate dropped", zap.Error(ee))
			res.Dropped = append(res.Dropped, Outcome{Location: c, Err: ee})
			continue
		}
		res.Evaluated = append(res.Evaluated, Extremum{Location: c, Value: v})
	}

	if len(res.Evaluated) == 0 {
		res.Status = ErrNoEvaluableExtrema
		return res, nil
	}
	res.Min, res.Max = selectExtrema(res.Evaluated)

	locs := make([]complex128, len(res.Evaluated))
	for i, e := range res.Evaluated {
		locs[i] = e.Location
	}
	res.Classified = NewClassifier(f, varName, tol).ClassifyAll(locs)
	return res, nil
}

// selectExtrema picks the smallest and the largest real part of the value.
// Among equal real parts both prefer the smaller |Im|; the earlier entry wins
// exact ties.
func selectExtrema(ev []Extremum) (lo, hi *Extremum) {
	lo, hi = &ev[0], &ev[0]
	for i := 1; i < len(ev); i++ {
		e := &ev[i]
		re, im := real(e.Value), math.Abs(imag(e.Value))
		if lr := real(lo.Value); re < lr || (re == lr && im < math.Abs(imag(lo.Value))) {
			lo = e
		}
		if hr := real(hi.Value); re > hr || (re == hr && im < math.Abs(imag(hi.Value))) {
			hi = e
		}
	}
	return lo, hi
}
