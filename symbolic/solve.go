package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

// ============================================================
// Solvers
// ============================================================

// ErrUnsolvable means Solve found no closed form. Callers are expected to
// fall back to a numeric search.
var ErrUnsolvable = errors.New("no closed-form solution")

// maxPolyDegree bounds the polynomials Solve will attempt.
const maxPolyDegree = 64

// Solve returns every complex root of expr = 0, sorted by real then
// imaginary part. A polynomial in varName (after expansion) is solved in
// closed form up to degree 3 and by Durand-Kerner iteration above that.
// Anything else, and an expression that is identically zero, yields
// ErrUnsolvable. An expression that does not involve varName and is not
// zero has no roots.
func Solve(expr Expr, varName string) ([]complex128, error) {
	e := Expand(expr.Simplify())
	if !IsFinite(e) {
		return nil, fmt.Errorf("%w: %s is undefined", ErrUnsolvable, expr)
	}
	if !dependsOn(e, varName) {
		if n, ok := e.(*Num); ok && n.IsZero() {
			return nil, fmt.Errorf("%w: %s = 0 holds for every %s", ErrUnsolvable, expr, varName)
		}
		if v, err := Evaluate(e, varName, 0); err == nil && v != 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s is constant in %s", ErrUnsolvable, expr, varName)
	}
	coeffs, ok := polyCoefficients(e, varName)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a polynomial in %s", ErrUnsolvable, expr, varName)
	}
	roots := polyRoots(coeffs)
	SortComplex(roots)
	return roots, nil
}

// SortComplex orders values by real part, then imaginary part.
func SortComplex(zs []complex128) {
	sort.SliceStable(zs, func(i, j int) bool {
		if real(zs[i]) != real(zs[j]) {
			return real(zs[i]) < real(zs[j])
		}
		return imag(zs[i]) < imag(zs[j])
	})
}

// ============================================================
// Polynomial utilities
// ============================================================

// polyCoefficients returns the real coefficients of e in ascending degree,
// or false if e is not a polynomial in varName with real coefficients.
func polyCoefficients(e Expr, varName string) ([]float64, bool) {
	byDegree := map[int]float64{}
	maxDeg := 0
	for _, t := range termsOf(e) {
		c, d, ok := monomial(t, varName)
		if !ok {
			return nil, false
		}
		byDegree[d] += c
		if d > maxDeg {
			maxDeg = d
		}
	}
	coeffs := make([]float64, maxDeg+1)
	for d, c := range byDegree {
		coeffs[d] = c
	}
	for len(coeffs) > 1 && coeffs[len(coeffs)-1] == 0 {
		coeffs = coeffs[:len(coeffs)-1]
	}
	return coeffs, true
}

func monomial(t Expr, varName string) (coeff float64, degree int, ok bool) {
	if !dependsOn(t, varName) {
		v, err := Evaluate(t, varName, 0)
		if err != nil || imag(v) != 0 {
			return 0, 0, false
		}
		return real(v), 0, true
	}
	switch v := t.(type) {
	case *Sym:
		return 1, 1, true
	case *Pow:
		s, isSym := v.base.(*Sym)
		n, isNum := v.exp.(*Num)
		if !isSym || s.name != varName || !isNum || !n.IsInteger() || n.IsNegative() {
			return 0, 0, false
		}
		k := n.val.Num().Int64()
		if k > maxPolyDegree {
			return 0, 0, false
		}
		return 1, int(k), true
	case *Mul:
		coeff, degree = 1, 0
		for _, f := range v.factors {
			c, d, ok := monomial(f, varName)
			if !ok {
				return 0, 0, false
			}
			coeff *= c
			degree += d
		}
		if degree > maxPolyDegree {
			return 0, 0, false
		}
		return coeff, degree, true
	}
	return 0, 0, false
}

// polyRoots solves sum(coeffs[i] x^i) = 0 for a polynomial of degree >= 1.
func polyRoots(coeffs []float64) []complex128 {
	var roots []complex128
	// Factor out x^k so zero roots are exact.
	for len(coeffs) > 1 && coeffs[0] == 0 {
		roots = append(roots, 0)
		coeffs = coeffs[1:]
	}
	switch len(coeffs) - 1 {
	case 0:
	case 1:
		roots = append(roots, complex(-coeffs[0]/coeffs[1], 0))
	case 2:
		roots = append(roots, quadraticRoots(coeffs[2], coeffs[1], coeffs[0])...)
	case 3:
		roots = append(roots, cubicRoots(coeffs[3], coeffs[2], coeffs[1], coeffs[0])...)
	default:
		roots = append(roots, durandKerner(coeffs)...)
	}
	for i, z := range roots {
		roots[i] = cleanRoot(z)
	}
	return roots
}

func quadraticRoots(a, b, c float64) []complex128 {
	disc := b*b - 4*a*c
	if disc < 0 {
		re := -b / (2 * a)
		im := math.Sqrt(-disc) / (2 * math.Abs(a))
		return []complex128{complex(re, -im), complex(re, im)}
	}
	sb := 1.0
	if b < 0 {
		sb = -1
	}
	q := -(b + sb*math.Sqrt(disc)) / 2
	if q == 0 {
		return []complex128{0, 0}
	}
	return []complex128{complex(q/a, 0), complex(c/q, 0)}
}

func cubicRoots(a, b, c, d float64) []complex128 {
	p := (3*a*c - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c + 27*a*a*d) / (27 * a * a * a)
	offset := b / (3 * a)
	disc := -(4*p*p*p + 27*q*q)

	switch {
	case disc > 0:
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(3*q/(p*m)) / 3
		roots := make([]complex128, 3)
		for k := 0; k < 3; k++ {
			roots[k] = complex(m*math.Cos(theta-2*math.Pi*float64(k)/3)-offset, 0)
		}
		return roots
	case disc == 0:
		if q == 0 {
			return []complex128{complex(-offset, 0), complex(-offset, 0), complex(-offset, 0)}
		}
		double := -3*q/(2*p) - offset
		return []complex128{complex(3*q/p-offset, 0), complex(double, 0), complex(double, 0)}
	}
	s := math.Sqrt(q*q/4 + p*p*p/27)
	A := math.Cbrt(-q/2 + s)
	B := math.Cbrt(-q/2 - s)
	re := -(A+B)/2 - offset
	im := math.Sqrt(3) / 2 * math.Abs(A-B)
	return []complex128{complex(A+B-offset, 0), complex(re, -im), complex(re, im)}
}

// durandKerner finds all roots of a polynomial of degree >= 2 by
// simultaneous iteration from points on a circle of Cauchy-bound radius.
func durandKerner(coeffs []float64) []complex128 {
	n := len(coeffs) - 1
	lead := coeffs[n]
	monic := make([]float64, n+1)
	for i := range coeffs {
		monic[i] = coeffs[i] / lead
	}

	var maxAbs float64
	for i := 0; i < n; i++ {
		maxAbs = math.Max(maxAbs, math.Abs(monic[i]))
	}
	radius := 1 + maxAbs

	roots := make([]complex128, n)
	for k := 0; k < n; k++ {
		// The 0.4 rad offset breaks the conjugate symmetry of the start.
		theta := 2*math.Pi*float64(k)/float64(n) + 0.4
		roots[k] = complex(radius*math.Cos(theta), radius*math.Sin(theta))
	}

	const (
		tol     = 1e-14
		maxIter = 500
	)
	for iter := 0; iter < maxIter; iter++ {
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			zi := roots[i]
			den := complex(1, 0)
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				d := zi - roots[j]
				if d == 0 {
					d = complex(1e-9, 1e-9)
				}
				den *= d
			}
			if den == 0 {
				continue
			}
			dz := hornerComplex(monic, zi) / den
			roots[i] = zi - dz
			maxDelta = math.Max(maxDelta, cmplx.Abs(dz))
		}
		if maxDelta <= tol {
			break
		}
	}
	return roots
}

func hornerComplex(coeffs []float64, z complex128) complex128 {
	var out complex128
	for i := len(coeffs) - 1; i >= 0; i-- {
		out = out*z + complex(coeffs[i], 0)
	}
	return out
}

// cleanRoot drops imaginary parts that are rounding noise and normalises -0.
func cleanRoot(z complex128) complex128 {
	re, im := real(z), imag(z)
	if math.Abs(im) < 1e-10*math.Max(1, math.Abs(re)) {
		im = 0
	}
	if math.Abs(re) < 1e-14 {
		re = 0
	}
	return complex(re+0, im+0)
}
