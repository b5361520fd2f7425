// Package symbolic is the expression kernel behind the analysis engine.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat) with an inexact flag for
//     values folded from float64 math
//   - Deterministic simplification and stable output
//   - Complex-valued numeric evaluation of any expression tree
//   - LaTeX and JSON renderings for presentation layers
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable node of an expression tree. Every constructor returns
// a simplified value; Simplify is idempotent.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational number
// ============================================================

// Num is a rational constant. Values produced by float64 math (sin(1),
// sqrt(2.5), ...) carry the inexact flag, which only affects rendering.
type Num struct {
	val     *big.Rat
	inexact bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat wraps a finite float64. It panics on NaN or ±Inf; use Real when
// the input may be non-finite.
func NFloat(f float64) *Num {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		panic("symbolic: non-finite float")
	}
	return &Num{val: r, inexact: true}
}

// Real converts a float64 to an expression: integral values become exact
// integers, other finite values inexact rationals and non-finite values
// Undefined or a signed infinity.
func Real(f float64) Expr {
	switch {
	case math.IsNaN(f):
		return Undef()
	case math.IsInf(f, 1):
		return Infinity(1)
	case math.IsInf(f, -1):
		return Infinity(-1)
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return N(int64(f))
	}
	return NFloat(f)
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsInexact() bool       { return n.inexact }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	if n.inexact {
		return strconv.FormatFloat(n.Float64(), 'g', 12, 64)
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	if n.inexact {
		return floatLaTeX(n.Float64())
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func floatLaTeX(f float64) string {
	s := strconv.FormatFloat(f, 'g', 12, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%s \\times 10^{%d}", mant, e)
}

func (n *Num) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "num", "value": n.val.RatString()}
	if n.inexact {
		m["inexact"] = true
	}
	return m
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), inexact: a.inexact} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), inexact: a.inexact}
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numbers and collects like terms
// (c1*t + c2*t -> (c1+c2)*t). Terms are ordered by their string form with
// the numeric constant last.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	infSign := 0
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	keys := []string{}
	for _, t := range flat {
		switch v := t.(type) {
		case *Undefined:
			return v
		case *Num:
			numAccum = numAdd(numAccum, v)
		case *Inf:
			if infSign != 0 && infSign != v.sign {
				return Undef()
			}
			infSign = v.sign
		default:
			coeff, rest := extractCoefficient(t)
			key := rest.String()
			if _, seen := coeffs[key]; !seen {
				keys = append(keys, key)
				coeffs[key] = N(0)
				rests[key] = rest
			}
			coeffs[key] = numAdd(coeffs[key], coeff)
		}
	}
	if infSign != 0 {
		return Infinity(infSign)
	}
	sort.Strings(keys)
	result := []Expr{}
	for _, key := range keys {
		coeff := coeffs[key]
		switch {
		case coeff.IsZero():
			continue
		case coeff.IsOne():
			result = append(result, rests[key])
		default:
			result = append(result, MulOf(coeff, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		switch {
		case i == 0 && neg:
			b.WriteString("-" + abs.String())
		case i == 0:
			b.WriteString(t.String())
		case neg:
			b.WriteString(" - " + abs.String())
		default:
			b.WriteString(" + " + t.String())
		}
	}
	return b.String()
}

func (a *Add) LaTeX() string {
	var b strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		switch {
		case i == 0 && neg:
			b.WriteString("-" + abs.LaTeX())
		case i == 0:
			b.WriteString(t.LaTeX())
		case neg:
			b.WriteString(" - " + abs.LaTeX())
		default:
			b.WriteString(" + " + t.LaTeX())
		}
	}
	return b.String()
}

// splitSign reports whether t renders with a leading minus and returns its
// magnitude.
func splitSign(t Expr) (bool, Expr) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return true, numNeg(v)
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			return true, MulOf(append([]Expr{numNeg(c)}, v.factors[1:]...)...)
		}
	}
	return false, t
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds the numeric coefficient and
// merges powers of a common base (x*x^-1 -> 1). The coefficient, if any, is
// the first factor.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	infSign := 1
	hasInf := false
	bases := map[string]Expr{}
	exps := map[string][]Expr{}
	keys := []string{}
	for _, f := range flat {
		switch v := f.(type) {
		case *Undefined:
			return v
		case *Num:
			coeff = numMul(coeff, v)
		case *Inf:
			hasInf = true
			infSign *= v.sign
		default:
			base, exp := splitPower(f)
			key := base.String()
			if _, seen := bases[key]; !seen {
				keys = append(keys, key)
				bases[key] = base
			}
			exps[key] = append(exps[key], exp)
		}
	}
	others := []Expr{}
	for _, key := range keys {
		var merged Expr
		if len(exps[key]) == 1 {
			merged = PowOf(bases[key], exps[key][0])
		} else {
			merged = PowOf(bases[key], AddOf(exps[key]...))
		}
		switch v := merged.(type) {
		case *Undefined:
			return v
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			for _, inner := range v.factors {
				if n, ok := inner.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					others = append(others, inner)
				}
			}
		default:
			others = append(others, merged)
		}
	}
	if hasInf {
		if coeff.IsZero() {
			return Undef()
		}
		if coeff.IsNegative() {
			infSign = -infSign
		}
		if len(others) == 0 {
			return Infinity(infSign)
		}
		coeff = N(1)
		others = append(others, Infinity(infSign))
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

func splitPower(e Expr) (base, exp Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// fraction splits factors into numerator and denominator, moving every
// factor with a negative numeric exponent below the bar.
func (m *Mul) fraction() (num, den []Expr) {
	for _, f := range m.factors {
		if p, ok := f.(*Pow); ok {
			if en, ok2 := p.exp.(*Num); ok2 && en.IsNegative() {
				den = append(den, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		num = append(num, f)
	}
	return num, den
}

func (m *Mul) String() string {
	num, den := m.fraction()
	top := joinFactors(num, "*", func(e Expr) string { return e.String() }, "(", ")")
	if len(den) == 0 {
		return top
	}
	bottom := joinFactors(den, "*", func(e Expr) string { return e.String() }, "(", ")")
	if len(den) > 1 {
		bottom = "(" + bottom + ")"
	}
	return top + "/" + bottom
}

func (m *Mul) LaTeX() string {
	num, den := m.fraction()
	top := joinFactors(num, " ", func(e Expr) string { return e.LaTeX() }, "\\left(", "\\right)")
	if len(den) == 0 {
		return top
	}
	bottom := joinFactors(den, " ", func(e Expr) string { return e.LaTeX() }, "\\left(", "\\right)")
	return "\\frac{" + top + "}{" + bottom + "}"
}

func joinFactors(fs []Expr, sep string, render func(Expr) string, open, close string) string {
	if len(fs) == 0 {
		return "1"
	}
	parts := make([]string, 0, len(fs))
	for i, f := range fs {
		if n, ok := f.(*Num); ok && i == 0 && n.IsNegOne() && len(fs) > 1 {
			parts = append(parts, "-")
			continue
		}
		s := render(f)
		if _, isAdd := f.(*Add); isAdd {
			s = open + s + close
		}
		if n, ok := f.(*Num); ok && i > 0 && n.IsNegative() {
			s = open + s + close
		}
		parts = append(parts, s)
	}
	if parts[0] == "-" {
		return "-" + strings.Join(parts[1:], sep)
	}
	return strings.Join(parts, sep)
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}

func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if IsUndefined(base) || IsUndefined(exp) {
		return Undef()
	}
	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if expIsNum {
			if en.IsNegative() {
				return Undef()
			}
			return N(0)
		}
		return &Pow{base: base, exp: exp}
	}
	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	if inf, ok := base.(*Inf); ok && expIsNum {
		if en.IsNegative() {
			return N(0)
		}
		if inf.sign < 0 && en.IsInteger() && new(big.Int).Rem(en.val.Num(), big.NewInt(2)).Sign() == 0 {
			return Infinity(1)
		}
		return inf
	}
	if c, ok := base.(*Const); ok && c.name == "I" && expIsNum && en.IsInteger() && en.val.Num().IsInt64() {
		switch ((en.val.Num().Int64() % 4) + 4) % 4 {
		case 0:
			return N(1)
		case 1:
			return ImagUnit
		case 2:
			return N(-1)
		default:
			return MulOf(N(-1), ImagUnit)
		}
	}
	if bn, ok := base.(*Num); ok && expIsNum {
		if folded, ok := foldNumPow(bn, en); ok {
			return folded
		}
	}
	if inner, ok := base.(*Pow); ok {
		newExp := MulOf(inner.exp, exp)
		return PowOf(inner.base, newExp)
	}
	return &Pow{base: base, exp: exp}
}

// foldNumPow evaluates numeric powers that have an exact (or, for inexact
// bases, a real float) result.
func foldNumPow(bn, en *Num) (Expr, bool) {
	if en.IsInteger() && en.val.Num().IsInt64() {
		e := en.val.Num().Int64()
		if e >= -20 && e <= 20 {
			posE := e
			if posE < 0 {
				posE = -posE
			}
			result := N(1)
			for i := int64(0); i < posE; i++ {
				result = numMul(result, bn)
			}
			if e < 0 {
				return numRecip(result), true
			}
			return result, true
		}
	}
	if bn.IsPositive() && en.val.Cmp(big.NewRat(1, 2)) == 0 {
		if r, ok := exactSqrt(bn.val); ok {
			return &Num{val: r, inexact: bn.inexact}, true
		}
	}
	if (bn.inexact || en.inexact) && (bn.IsPositive() || en.IsInteger()) {
		f := math.Pow(bn.Float64(), en.Float64())
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			return NFloat(f), true
		}
	}
	return nil, false
}

func exactSqrt(r *big.Rat) (*big.Rat, bool) {
	num := new(big.Int).Sqrt(r.Num())
	den := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(num, num).Cmp(r.Num()) != 0 || new(big.Int).Mul(den, den).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok && en.IsNegative() {
		den := PowOf(p.base, numNeg(en))
		switch den.(type) {
		case *Add, *Mul:
			return "1/(" + den.String() + ")"
		}
		return "1/" + den.String()
	}
	if en, ok := p.exp.(*Num); ok && en.val.Cmp(big.NewRat(1, 2)) == 0 {
		return "sqrt(" + p.base.String() + ")"
	}
	return wrapBase(p.base, p.base.String(), "(", ")") + "^" + wrapExp(p.exp, p.exp.String(), "(", ")")
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && en.IsNegative() {
		return "\\frac{1}{" + PowOf(p.base, numNeg(en)).LaTeX() + "}"
	}
	if en, ok := p.exp.(*Num); ok && en.val.Cmp(big.NewRat(1, 2)) == 0 {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	return wrapBase(p.base, p.base.LaTeX(), "\\left(", "\\right)") + "^{" + p.exp.LaTeX() + "}"
}

func wrapBase(base Expr, s, open, close string) string {
	switch v := base.(type) {
	case *Add, *Mul, *Pow:
		return open + s + close
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return open + s + close
		}
	}
	return s
}

func wrapExp(exp Expr, s, open, close string) string {
	switch v := exp.(type) {
	case *Sym, *Const:
		return s
	case *Num:
		if v.IsInteger() && !v.IsNegative() {
			return s
		}
	}
	return open + s + close
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	_, expIsNum := p.exp.(*Num)
	if expIsNum {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if !dependsOn(p.exp, varName) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if !dependsOn(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if ok1 && ok2 {
		if folded, ok := foldNumPow(b, e); ok {
			if n, isNum := folded.(*Num); isNum {
				return n, true
			}
		}
		pf := math.Pow(b.Float64(), e.Float64())
		if math.IsNaN(pf) || math.IsInf(pf, 0) {
			return nil, false
		}
		return NFloat(pf), true
	}
	return nil, false
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

func dependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}
