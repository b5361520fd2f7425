package analysis

import (
	"context"
	"math"
	"math/cmplx"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"github.com/njchilds90/gocalculus/symbolic"
)

const (
	// stepTol is the Newton step, relative to max(1, |z|), below which the
	// iteration has converged. A small residual alone never counts: g can
	// flatten out (exp(x), -1/x^2) without reaching zero.
	stepTol = 1e-10
	// residualTol is the largest |g(z)| accepted for a converged seed.
	residualTol = 1e-8
	// divergeModulus drops iterates running off to infinity.
	divergeModulus = 1e8
)

// RootFinder finds the zeros of an expression, symbolically when possible
// and by multi-start Newton iteration otherwise.
type RootFinder struct {
	Seeds   int
	Lo, Hi  float64
	MaxIter int
	Workers int
	Logger  *zap.Logger
}

// RootSet is the raw output of FindRoots. Duplicates are expected.
type RootSet struct {
	Roots      []complex128
	ClosedForm bool
	// Vanishing means g is identically zero. Every point is then a root and
	// none is reported.
	Vanishing bool
}

// FindRoots returns the roots of g in varName. A failed symbolic solve is
// not an error; the only error is ctx being done.
func (rf RootFinder) FindRoots(ctx context.Context, g symbolic.Expr, varName string) (RootSet, error) {
	log := rf.logger()
	if isZeroExpr(g) {
		return RootSet{Vanishing: true}, nil
	}
	roots, err := symbolic.Solve(g, varName)
	if err == nil && len(roots) > 0 {
		return RootSet{Roots: roots, ClosedForm: true}, nil
	}
	if err != nil {
		log.Debug("closed-form solve failed, falling back to multi-start",
			zap.String("expr", g.String()), zap.Error(err))
	}
	raw, err := rf.multiStart(ctx, g, varName)
	if err != nil {
		return RootSet{}, err
	}
	return RootSet{Roots: raw}, nil
}

func isZeroExpr(e symbolic.Expr) bool {
	n, ok := e.Simplify().(*symbolic.Num)
	return ok && n.IsZero()
}

func (rf RootFinder) logger() *zap.Logger {
	if rf.Logger == nil {
		return zap.NewNop()
	}
	return rf.Logger
}

// SeedGrid returns the evenly spaced starting points.
func (rf RootFinder) SeedGrid() []float64 {
	switch {
	case rf.Seeds <= 0:
		return nil
	case rf.Seeds == 1:
		return []float64{(rf.Lo + rf.Hi) / 2}
	}
	return floats.Span(make([]float64, rf.Seeds), rf.Lo, rf.Hi)
}

type seedResult struct {
	root complex128
	ok   bool
}

func (rf RootFinder) multiStart(ctx context.Context, g symbolic.Expr, varName string) ([]complex128, error) {
	seeds := rf.SeedGrid()
	gf := symbolic.Compile(g, varName)
	dg := symbolic.Compile(symbolic.Diff(g, varName), varName)
	results := make([]seedResult, len(seeds))

	workers := rf.Workers
	if workers < 1 {
		workers = 1
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, seed := range seeds {
		i, seed := i, seed
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			z, ok := rf.newton(gf, dg, complex(seed, 0))
			results[i] = seedResult{root: z, ok: ok}
			if !ok {
				rf.logger().Debug("seed dropped", zap.Float64("seed", seed))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	roots := make([]complex128, 0, len(seeds))
	for _, r := range results {
		if r.ok {
			roots = append(roots, r.root)
		}
	}
	return roots, nil
}

type pointFunc func(complex128) (complex128, error)

// newton runs complex Newton iteration from z. The derivative falls back to
// a central finite difference along the real axis where dg fails. A root is
// accepted only when the step has converged, the residual is small and the
// root lies within reach of the seed range.
func (rf RootFinder) newton(g, dg pointFunc, z complex128) (complex128, bool) {
	maxIter := rf.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}
	converged := false
	for i := 0; i < maxIter; i++ {
		gz, err := g(z)
		if err != nil {
			return 0, false
		}
		if gz == 0 {
			converged = true
			break
		}
		d, err := dg(z)
		if err != nil || d == 0 {
			d = finiteDifference(g, z)
		}
		if d == 0 || cmplx.IsNaN(d) || cmplx.IsInf(d) {
			return 0, false
		}
		step := gz / d
		z -= step
		if cmplx.IsNaN(z) || cmplx.IsInf(z) || cmplx.Abs(z) > divergeModulus {
			return 0, false
		}
		if cmplx.Abs(step) <= stepTol*math.Max(1, cmplx.Abs(z)) {
			converged = true
			break
		}
	}
	if !converged || !rf.withinReach(z) {
		return 0, false
	}
	gz, err := g(z)
	if err != nil || cmplx.Abs(gz) >= residualTol {
		return 0, false
	}
	return z, true
}

// withinReach reports whether z lies in the disk around the seed range that
// extends one range width (at least 1) past either end. Iterates that drift
// further have followed g towards an asymptote rather than a root.
func (rf RootFinder) withinReach(z complex128) bool {
	width := math.Max(rf.Hi-rf.Lo, 1)
	center := complex((rf.Lo+rf.Hi)/2, 0)
	return cmplx.Abs(z-center) <= (rf.Hi-rf.Lo)/2+width
}

// finiteDifference estimates g'(z) along the real direction.
func finiteDifference(g pointFunc, z complex128) complex128 {
	part := func(pick func(complex128) float64) func(float64) float64 {
		return func(t float64) float64 {
			v, err := g(z + complex(t, 0))
			if err != nil {
				return math.NaN()
			}
			return pick(v)
		}
	}
	settings := &fd.Settings{Formula: fd.Central}
	re := fd.Derivative(part(func(v complex128) float64 { return real(v) }), 0, settings)
	im := fd.Derivative(part(func(v complex128) float64 { return imag(v) }), 0, settings)
	if math.IsNaN(re) || math.IsNaN(im) {
		return cmplx.NaN()
	}
	return complex(re, im)
}

// ============================================================
// Deduplication
// ============================================================

// Dedupe keeps roots in discovery order, dropping any root within eps
// (complex modulus) of one already kept. Every pair in the result is at
// least eps apart.
func Dedupe(roots []complex128, eps float64) []complex128 {
	kept := make([]complex128, 0, len(roots))
	for _, r := range roots {
		near := false
		for _, k := range kept {
			if cmplx.Abs(r-k) < eps {
				near = true
				break
			}
		}
		if !near {
			kept = append(kept, r)
		}
	}
	return kept
}

// DedupeRounded rounds both parts of every point to places decimals and
// drops exact duplicates. It is idempotent and, as a set, independent of
// input order; the first occurrence fixes the output order.
func DedupeRounded(points []complex128, places int) []complex128 {
	seen := make(map[complex128]struct{}, len(points))
	out := make([]complex128, 0, len(points))
	for _, p := range points {
		r := complex(roundTo(real(p), places), roundTo(imag(p), places))
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func roundTo(f float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	r := math.Round(f*scale) / scale
	if math.IsNaN(r) || math.IsInf(r, 0) {
		// f*scale overflowed; f is already coarser than places.
		r = f
	}
	return r + 0 // -0 -> 0
}
