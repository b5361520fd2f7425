package symbolic

import (
	"math"
	"sort"
)

// ============================================================
// Func: named elementary function of one argument
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr  { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func FloorOf(arg Expr) Expr { return funcOf("floor", arg).Simplify() }
func CeilOf(arg Expr) Expr  { return funcOf("ceil", arg).Simplify() }
func SignOf(arg Expr) Expr  { return funcOf("sign", arg).Simplify() }

// knownFuncs maps every function name the kernel understands to its
// constructor.
var knownFuncs = map[string]func(Expr) Expr{
	"sin": SinOf, "cos": CosOf, "tan": TanOf,
	"exp": ExpOf, "ln": LnOf, "abs": AbsOf,
	"asin": AsinOf, "acos": AcosOf, "atan": AtanOf,
	"sinh": SinhOf, "cosh": CoshOf, "tanh": TanhOf,
	"floor": FloorOf, "ceil": CeilOf, "sign": SignOf,
}

// FuncNames lists the function names accepted by the parser, sorted.
func FuncNames() []string {
	names := make([]string, 0, len(knownFuncs)+2)
	for name := range knownFuncs {
		names = append(names, name)
	}
	names = append(names, "log", "sqrt")
	sort.Strings(names)
	return names
}

// jumpFuncs are piecewise constant; they have one-sided limits that differ
// from their value at integer (or zero) arguments.
var jumpFuncs = map[string]bool{"floor": true, "ceil": true, "sign": true}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if IsUndefined(arg) {
		return arg
	}
	if n, ok := arg.(*Num); ok {
		if folded, ok := foldFunc(f.name, n); ok {
			return folded
		}
	}
	switch f.name {
	case "sin":
		if isNumEqual(arg, 0) || arg.Equal(Pi) {
			return N(0)
		}
	case "cos":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if arg.Equal(Pi) {
			return N(-1)
		}
	case "ln":
		if n2, ok := arg.(*Num); ok && n2.IsZero() {
			return Undef()
		}
		if arg.Equal(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if n2, ok := arg.(*Num); ok && n2.IsZero() {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 1 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegOne() {
				inner := m.factors[1:]
				if len(inner) == 1 {
					return AbsOf(inner[0])
				}
				return AbsOf(MulOf(inner...))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

// foldFunc evaluates a function at a rational argument. Exact results stay
// exact; everything else becomes an inexact float, provided it is finite.
func foldFunc(name string, n *Num) (Expr, bool) {
	v := n.Float64()
	switch name {
	case "abs":
		if n.IsNegative() {
			return numNeg(n), true
		}
		return n, true
	case "sign":
		return N(int64(n.val.Sign())), true
	case "floor", "ceil":
		if n.IsInteger() {
			return n, true
		}
		if name == "floor" {
			return Real(math.Floor(v)), true
		}
		return Real(math.Ceil(v)), true
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if n.IsZero() {
			return N(0), true
		}
	case "cos", "cosh", "exp":
		if n.IsZero() {
			return N(1), true
		}
	case "acos":
		if n.IsOne() {
			return N(0), true
		}
	case "ln":
		if n.IsOne() {
			return N(0), true
		}
	}
	var r float64
	switch name {
	case "sin":
		r = math.Sin(v)
	case "cos":
		r = math.Cos(v)
	case "tan":
		r = math.Tan(v)
	case "exp":
		r = math.Exp(v)
	case "ln":
		if v <= 0 {
			return nil, false
		}
		r = math.Log(v)
	case "asin":
		r = math.Asin(v)
	case "acos":
		r = math.Acos(v)
	case "atan":
		r = math.Atan(v)
	case "sinh":
		r = math.Sinh(v)
	case "cosh":
		r = math.Cosh(v)
	case "tanh":
		r = math.Tanh(v)
	default:
		return nil, false
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, false
	}
	return NFloat(r), true
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	case "sign":
		return "\\operatorname{sign}\\left(" + f.arg.LaTeX() + "\\right)"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "abs":
		outer = SignOf(f.arg)
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "floor", "ceil", "sign":
		// Zero almost everywhere; the jumps are handled by the limit code.
		return N(0)
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	folded, ok := foldFunc(f.name, n)
	if !ok {
		return nil, false
	}
	r, ok := folded.(*Num)
	return r, ok
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// ============================================================
// Deep Simplification and Trig Identities
// ============================================================

// TrigSimplify applies sin²+cos²=1 wherever both squares appear with the
// same coefficient.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(newTerms...))
	case *Mul:
		newFactors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			newFactors[i] = trigSimplifyExpr(f)
		}
		return MulOf(newFactors...)
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		return funcOf(v.name, trigSimplifyExpr(v.arg)).Simplify()
	}
	return e
}

func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type square struct {
		fn    string
		arg   string
		coeff *Num
		idx   int
	}
	var squares []square
	for idx, t := range add.terms {
		coeff, inner := extractCoefficient(t)
		p, ok := inner.(*Pow)
		if !ok || !isNumEqual(p.exp, 2) {
			continue
		}
		if fn, ok := p.base.(*Func); ok && (fn.name == "sin" || fn.name == "cos") {
			squares = append(squares, square{fn.name, fn.arg.String(), coeff, idx})
		}
	}
	for i := 0; i < len(squares); i++ {
		for j := i + 1; j < len(squares); j++ {
			si, sj := squares[i], squares[j]
			if si.arg != sj.arg || si.fn == sj.fn || !si.coeff.Equal(sj.coeff) {
				continue
			}
			rest := []Expr{si.coeff}
			for idx, t := range add.terms {
				if idx != si.idx && idx != sj.idx {
					rest = append(rest, t)
				}
			}
			return AddOf(rest...)
		}
	}
	return e
}

// DeepSimplify repeats expansion and trig passes until the printed form is
// stable.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(Expand(curr))
	}
	return curr
}

// Equivalent reports whether a and b are the same value under structural
// equality or after their difference simplifies to zero. It never compares
// with a floating tolerance.
func Equivalent(a, b Expr) bool {
	if IsUndefined(a) || IsUndefined(b) {
		return false
	}
	if a.Equal(b) {
		return true
	}
	if _, ok := a.(*Inf); ok {
		return false
	}
	if _, ok := b.(*Inf); ok {
		return false
	}
	d := DeepSimplify(AddOf(a, MulOf(N(-1), b)))
	n, ok := d.(*Num)
	return ok && n.IsZero()
}
