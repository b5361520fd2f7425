package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func Diff2(expr Expr, varName string) Expr {
	return Diff(Diff(expr, varName), varName)
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

// ============================================================
// Limits
// ============================================================

// Direction selects which side a limit approaches from.
type Direction int

const (
	Both Direction = iota
	FromLeft
	FromRight
)

func (d Direction) String() string {
	switch d {
	case FromLeft:
		return "-"
	case FromRight:
		return "+"
	}
	return "+-"
}

// ParseDirection accepts "both", "left" and "right" as well as the symbolic
// spellings "+-", "-" and "+".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both", "+-", "two-sided":
		return Both, nil
	case "left", "-":
		return FromLeft, nil
	case "right", "+":
		return FromRight, nil
	}
	return Both, fmt.Errorf("unknown limit direction %q", s)
}

// LimitResult holds the result of a limit computation.
type LimitResult struct {
	Value   Expr
	Success bool
	Error   string
}

const maxLHopital = 5

// Limit computes the limit of expr as varName approaches point from dir.
// A two-sided limit exists only when both one-sided limits exist and agree.
// Each side tries direct substitution, L'Hôpital on 0/0 quotients, signed
// divergence on c/0 quotients, and finally numeric probing.
func Limit(expr Expr, varName string, point Expr, dir Direction) LimitResult {
	expr = expr.Simplify()
	pv, err := Evaluate(point, varName, 0)
	if err != nil || math.Abs(imag(pv)) > 0 || !dependsOnlyOnConstants(point) {
		return LimitResult{Error: "limit point must be a finite real number, got " + point.String()}
	}
	p := real(pv)
	if dir != Both {
		return limitSide(expr, varName, point, p, dir, maxLHopital)
	}
	left := limitSide(expr, varName, point, p, FromLeft, maxLHopital)
	if !left.Success {
		return left
	}
	right := limitSide(expr, varName, point, p, FromRight, maxLHopital)
	if !right.Success {
		return right
	}
	if !Equivalent(left.Value, right.Value) {
		return LimitResult{Error: fmt.Sprintf("limit does not exist: left-hand limit %s differs from right-hand limit %s",
			left.Value, right.Value)}
	}
	return left
}

func dependsOnlyOnConstants(e Expr) bool { return len(FreeSymbols(e)) == 0 }

func limitSide(expr Expr, varName string, point Expr, p float64, dir Direction, depth int) LimitResult {
	jumps := hasJump(expr)
	if !jumps {
		subbed := Sub(expr, varName, point)
		if IsFinite(subbed) && !dependsOn(subbed, varName) {
			if v, err := Evaluate(subbed, varName, 0); err == nil && cmplx.Abs(v) < 1e12 {
				return LimitResult{Value: subbed, Success: true}
			}
		}
	}
	if depth > 0 && !jumps {
		if num, den, ok := extractQuotient(expr); ok {
			nv, nerr := Evaluate(num, varName, complex(p, 0))
			dv, derr := Evaluate(den, varName, complex(p, 0))
			if nerr == nil && derr == nil && isZeroish(dv) {
				if isZeroish(nv) {
					quotient := MulOf(Diff(num, varName), PowOf(Diff(den, varName), N(-1)))
					if r := limitSide(quotient, varName, point, p, dir, depth-1); r.Success {
						return r
					}
				} else if s := divergenceSign(expr, varName, p, dir); s != 0 {
					return LimitResult{Value: Infinity(s), Success: true}
				}
			}
		}
	}
	return probeLimit(expr, varName, p, dir)
}

func isZeroish(z complex128) bool { return cmplx.Abs(z) < 1e-12 }

func hasJump(e Expr) bool {
	found := false
	walk(e, func(n Expr) {
		if f, ok := n.(*Func); ok && jumpFuncs[f.name] {
			found = true
		}
	})
	return found
}

// extractQuotient splits a product into numerator and denominator. Factors
// with a negative numeric exponent go to the denominator.
func extractQuotient(e Expr) (num, denom Expr, ok bool) {
	var factors []Expr
	switch v := e.(type) {
	case *Mul:
		factors = v.factors
	case *Pow:
		factors = []Expr{v}
	default:
		return nil, nil, false
	}
	var numFactors, denomFactors []Expr
	for _, f := range factors {
		if p, isPow := f.(*Pow); isPow {
			if en, isNum := p.exp.(*Num); isNum && en.IsNegative() {
				denomFactors = append(denomFactors, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		numFactors = append(numFactors, f)
	}
	if len(denomFactors) == 0 {
		return nil, nil, false
	}
	return MulOf(numFactors...), MulOf(denomFactors...), true
}

// probeSteps are the offsets used for numeric one-sided probing.
var probeSteps = []float64{1e-3, 1e-5, 1e-7, 1e-9}

// coarseSteps are tried when the fine ladder fails, e.g. when exp(1/x)
// already overflows at the first fine offset.
var coarseSteps = []float64{1e-1, 1e-2, 1e-3}

func sideSign(dir Direction) float64 {
	if dir == FromLeft {
		return -1
	}
	return 1
}

// divergenceSign returns +1 or -1 if expr grows without bound with a fixed
// sign as the variable approaches p from dir, and 0 otherwise.
func divergenceSign(expr Expr, varName string, p float64, dir Direction) int {
	if sign, ok := divergenceOver(expr, varName, p, dir, probeSteps); ok {
		return sign
	}
	sign, _ := divergenceOver(expr, varName, p, dir, coarseSteps)
	return sign
}

// divergenceOver walks steps toward p. The magnitude must grow with a fixed
// sign and end above 1e6; overflowing float64 after at least two such
// values also counts.
func divergenceOver(expr Expr, varName string, p float64, dir Direction, steps []float64) (int, bool) {
	s := sideSign(dir)
	sign, seen := 0, 0
	prev := 0.0
	for _, h := range steps {
		v, err := Evaluate(expr, varName, complex(p+s*h, 0))
		if err != nil {
			if seen >= 2 && errors.Is(err, ErrNonFinite) {
				return sign, true
			}
			return 0, false
		}
		if math.Abs(imag(v)) > ImagTolerance*math.Max(1, math.Abs(real(v))) {
			return 0, false
		}
		r := real(v)
		cur := 1
		if r < 0 {
			cur = -1
		}
		if sign != 0 && (cur != sign || math.Abs(r) < math.Abs(prev)) {
			return 0, false
		}
		sign, prev = cur, r
		seen++
	}
	if math.Abs(prev) < 1e6 {
		return 0, false
	}
	return sign, true
}

// probeLimit approaches p numerically. The limit is accepted when successive
// probes settle; the value is rounded to the agreement the probes reached.
func probeLimit(expr Expr, varName string, p float64, dir Direction) LimitResult {
	fail := LimitResult{Error: fmt.Sprintf("limit could not be determined: %s as %s -> %s%s",
		expr, varName, FormatFloat(p), dir)}
	if dir == Both {
		return fail
	}
	if s := divergenceSign(expr, varName, p, dir); s != 0 {
		return LimitResult{Value: Infinity(s), Success: true}
	}
	s := sideSign(dir)
	vals := make([]complex128, 0, len(probeSteps))
	for _, h := range probeSteps {
		v, err := Evaluate(expr, varName, complex(p+s*h, 0))
		if err != nil {
			return fail
		}
		vals = append(vals, v)
	}
	n := len(vals)
	last := vals[n-1]
	d1 := cmplx.Abs(last - vals[n-2])
	d0 := cmplx.Abs(vals[n-2] - vals[n-3])
	scale := 1 + cmplx.Abs(last)
	if d1 > 1e-5*scale || d1 > d0+1e-12*scale {
		return fail
	}
	return LimitResult{Value: ComplexExpr(complex(roundSig(real(last)), roundSig(imag(last)))), Success: true}
}

// roundSig rounds to six decimal places, snapping tiny values to zero.
func roundSig(f float64) float64 {
	if math.Abs(f) < 1e-7 {
		return 0
	}
	r := math.Round(f*1e6) / 1e6
	if r == 0 {
		return 0
	}
	return r
}

// ============================================================
// Expansion
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		result := Expr(N(1))
		for _, f := range v.factors {
			result = expandProduct(result, expandExpr(f))
		}
		return result
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			k := n.val.Num().Int64()
			if _, isAdd := base.(*Add); isAdd && k >= 0 && k <= 16 {
				result := Expr(N(1))
				for i := int64(0); i < k; i++ {
					result = expandProduct(result, base)
				}
				return result
			}
		}
		return PowOf(base, expandExpr(v.exp))
	}
	return e
}

// expandProduct distributes a*b term by term.
func expandProduct(a, b Expr) Expr {
	at, bt := termsOf(a), termsOf(b)
	if len(at) == 1 && len(bt) == 1 {
		return MulOf(a, b)
	}
	out := make([]Expr, 0, len(at)*len(bt))
	for _, x := range at {
		for _, y := range bt {
			out = append(out, MulOf(x, y))
		}
	}
	return AddOf(out...)
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	walk(e, func(n Expr) {
		if s, ok := n.(*Sym); ok {
			result[s.name] = struct{}{}
		}
	})
	return result
}
