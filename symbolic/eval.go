package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"strconv"
)

// ============================================================
// Numeric evaluation
// ============================================================

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("argument outside function domain")
	ErrNonFinite      = errors.New("non-finite result")
	ErrUnbound        = errors.New("unbound symbol")
)

// EvalError reports why an expression has no finite value at a point.
// errors.Is matches the wrapped sentinel (ErrDivisionByZero, ErrDomain, ...).
type EvalError struct {
	Expr string
	At   complex128
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %s at %s: %v", e.Expr, FormatComplex(e.At), e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Evaluate computes expr at varName = z in complex arithmetic. Real inputs
// inside a function's real domain use the real branch, so sqrt(4) is exactly
// 2 and ln(-1) is i*pi. Any undefined or non-finite result is an *EvalError.
func Evaluate(expr Expr, varName string, z complex128) (complex128, error) {
	v, err := evalAt(expr, varName, z)
	if err == nil && !isFiniteComplex(v) {
		err = ErrNonFinite
	}
	if err != nil {
		return 0, &EvalError{Expr: expr.String(), At: z, Err: err}
	}
	return v, nil
}

// Compile fixes expr and varName and returns a point evaluator.
func Compile(expr Expr, varName string) func(complex128) (complex128, error) {
	e := expr.Simplify()
	return func(z complex128) (complex128, error) {
		return Evaluate(e, varName, z)
	}
}

// Lambdify returns a vectorised evaluator. Points without a finite value map
// to cmplx.NaN() instead of failing the whole batch.
func Lambdify(expr Expr, varName string) func([]complex128) []complex128 {
	f := Compile(expr, varName)
	return func(zs []complex128) []complex128 {
		out := make([]complex128, len(zs))
		for i, z := range zs {
			v, err := f(z)
			if err != nil {
				out[i] = cmplx.NaN()
				continue
			}
			out[i] = v
		}
		return out
	}
}

func evalAt(e Expr, varName string, z complex128) (complex128, error) {
	switch v := e.(type) {
	case *Num:
		return complex(v.Float64(), 0), nil
	case *Sym:
		if v.name == varName {
			return z, nil
		}
		return 0, fmt.Errorf("%w %q", ErrUnbound, v.name)
	case *Const:
		switch v.name {
		case "pi":
			return complex(math.Pi, 0), nil
		case "E":
			return complex(math.E, 0), nil
		}
		return complex(0, 1), nil
	case *Inf:
		return 0, ErrNonFinite
	case *Undefined:
		return 0, ErrNonFinite
	case *Add:
		var acc complex128
		for _, t := range v.terms {
			tv, err := evalAt(t, varName, z)
			if err != nil {
				return 0, err
			}
			acc += tv
		}
		return acc, nil
	case *Mul:
		acc := complex(1, 0)
		for _, f := range v.factors {
			fv, err := evalAt(f, varName, z)
			if err != nil {
				return 0, err
			}
			acc *= fv
		}
		return acc, nil
	case *Pow:
		return evalPow(v, varName, z)
	case *Func:
		arg, err := evalAt(v.arg, varName, z)
		if err != nil {
			return 0, err
		}
		return evalFunc(v.name, arg)
	}
	return 0, fmt.Errorf("%w: cannot evaluate %s", ErrDomain, e.String())
}

var half = big.NewRat(1, 2)

func evalPow(p *Pow, varName string, z complex128) (complex128, error) {
	b, err := evalAt(p.base, varName, z)
	if err != nil {
		return 0, err
	}
	if en, ok := p.exp.(*Num); ok && en.IsInteger() && en.val.Num().IsInt64() {
		k := en.val.Num().Int64()
		if k < 0 {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return 1 / ipow(b, -k), nil
		}
		return ipow(b, k), nil
	}
	x, err := evalAt(p.exp, varName, z)
	if err != nil {
		return 0, err
	}
	if b == 0 {
		if real(x) > 0 {
			return 0, nil
		}
		return 0, ErrDivisionByZero
	}
	if en, ok := p.exp.(*Num); ok {
		switch {
		case en.val.Cmp(half) == 0:
			return csqrt(b), nil
		case new(big.Rat).Neg(en.val).Cmp(half) == 0:
			return 1 / csqrt(b), nil
		}
	}
	if imag(b) == 0 && imag(x) == 0 && real(b) > 0 {
		return complex(math.Pow(real(b), real(x)), 0), nil
	}
	return cmplx.Pow(b, x), nil
}

func csqrt(b complex128) complex128 {
	if imag(b) == 0 && real(b) >= 0 {
		return complex(math.Sqrt(real(b)), 0)
	}
	return cmplx.Sqrt(b)
}

// ipow computes b^k by repeated squaring so integer powers of real numbers
// stay real.
func ipow(b complex128, k int64) complex128 {
	result := complex(1, 0)
	for k > 0 {
		if k&1 == 1 {
			result *= b
		}
		b *= b
		k >>= 1
	}
	return result
}

func evalFunc(name string, z complex128) (complex128, error) {
	re := real(z)
	isReal := imag(z) == 0
	switch name {
	case "sin":
		if isReal {
			return complex(math.Sin(re), 0), nil
		}
		return cmplx.Sin(z), nil
	case "cos":
		if isReal {
			return complex(math.Cos(re), 0), nil
		}
		return cmplx.Cos(z), nil
	case "tan":
		if isReal {
			if math.Cos(re) == 0 {
				return 0, ErrDivisionByZero
			}
			return complex(math.Tan(re), 0), nil
		}
		return cmplx.Tan(z), nil
	case "exp":
		if isReal {
			return complex(math.Exp(re), 0), nil
		}
		return cmplx.Exp(z), nil
	case "ln":
		if z == 0 {
			return 0, fmt.Errorf("%w: ln(0)", ErrDomain)
		}
		if isReal && re > 0 {
			return complex(math.Log(re), 0), nil
		}
		return cmplx.Log(z), nil
	case "abs":
		return complex(cmplx.Abs(z), 0), nil
	case "asin":
		if isReal && math.Abs(re) <= 1 {
			return complex(math.Asin(re), 0), nil
		}
		return cmplx.Asin(z), nil
	case "acos":
		if isReal && math.Abs(re) <= 1 {
			return complex(math.Acos(re), 0), nil
		}
		return cmplx.Acos(z), nil
	case "atan":
		if isReal {
			return complex(math.Atan(re), 0), nil
		}
		return cmplx.Atan(z), nil
	case "sinh":
		if isReal {
			return complex(math.Sinh(re), 0), nil
		}
		return cmplx.Sinh(z), nil
	case "cosh":
		if isReal {
			return complex(math.Cosh(re), 0), nil
		}
		return cmplx.Cosh(z), nil
	case "tanh":
		if isReal {
			return complex(math.Tanh(re), 0), nil
		}
		return cmplx.Tanh(z), nil
	case "floor", "ceil", "sign":
		if !isReal {
			return 0, fmt.Errorf("%w: %s of a complex number", ErrDomain, name)
		}
		switch name {
		case "floor":
			return complex(math.Floor(re), 0), nil
		case "ceil":
			return complex(math.Ceil(re), 0), nil
		}
		switch {
		case re > 0:
			return 1, nil
		case re < 0:
			return -1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: no numeric rule for %s", ErrDomain, name)
}

func isFiniteComplex(z complex128) bool {
	return !cmplx.IsNaN(z) && !cmplx.IsInf(z)
}

// ============================================================
// Complex formatting
// ============================================================

// ImagTolerance is the magnitude below which an imaginary part is not shown.
const ImagTolerance = 1e-8

// FormatFloat renders f with six significant digits ("%.6g").
func FormatFloat(f float64) string {
	if f == 0 {
		f = 0 // normalise -0
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// FormatComplex renders z as "re" when |im| < ImagTolerance and as
// "re + imi" (or "re - |im|i") otherwise.
func FormatComplex(z complex128) string {
	re, im := real(z), imag(z)
	if math.Abs(im) < ImagTolerance {
		return FormatFloat(re)
	}
	if im < 0 {
		return FormatFloat(re) + " - " + FormatFloat(-im) + "i"
	}
	return FormatFloat(re) + " + " + FormatFloat(im) + "i"
}

// ComplexExpr converts a numeric value into an expression, exact for
// integral parts.
func ComplexExpr(z complex128) Expr {
	re := Real(real(z))
	if imag(z) == 0 {
		return re
	}
	return AddOf(re, MulOf(Real(imag(z)), ImagUnit))
}
