package symbolic

import "math"

// ============================================================
// Const: named mathematical constants
// ============================================================

// Const is one of the named constants pi, E and I.
type Const struct{ name string }

var (
	Pi       = &Const{name: "pi"}
	E        = &Const{name: "E"}
	ImagUnit = &Const{name: "I"}
)

func constByName(name string) (*Const, bool) {
	switch name {
	case "pi":
		return Pi, true
	case "E":
		return E, true
	case "I":
		return ImagUnit, true
	}
	return nil, false
}

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Name() string          { return c.name }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func (c *Const) LaTeX() string {
	switch c.name {
	case "pi":
		return "\\pi"
	case "E":
		return "e"
	}
	return "i"
}

// Eval returns an inexact approximation of pi and E. I has no real value.
func (c *Const) Eval() (*Num, bool) {
	switch c.name {
	case "pi":
		return NFloat(math.Pi), true
	case "E":
		return NFloat(math.E), true
	}
	return nil, false
}

// ============================================================
// Inf: signed infinity
// ============================================================

// Inf is +oo or -oo, produced by limits that diverge.
type Inf struct{ sign int }

func Infinity(sign int) *Inf {
	if sign < 0 {
		return &Inf{sign: -1}
	}
	return &Inf{sign: 1}
}

func (i *Inf) Simplify() Expr        { return i }
func (i *Inf) Sub(string, Expr) Expr { return i }
func (i *Inf) Diff(string) Expr      { return N(0) }
func (i *Inf) Eval() (*Num, bool)    { return nil, false }
func (i *Inf) Equal(other Expr) bool { o, ok := other.(*Inf); return ok && i.sign == o.sign }
func (i *Inf) exprType() string      { return "inf" }
func (i *Inf) Sign() int             { return i.sign }
func (i *Inf) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "inf", "sign": i.sign}
}

func (i *Inf) String() string {
	if i.sign < 0 {
		return "-oo"
	}
	return "oo"
}

func (i *Inf) LaTeX() string {
	if i.sign < 0 {
		return "-\\infty"
	}
	return "\\infty"
}

// ============================================================
// Undefined: result of an indeterminate operation
// ============================================================

// Undefined absorbs every operation it takes part in (0*oo, oo-oo, 1/0) and
// is never equal to anything, itself included.
type Undefined struct{}

var undefined = &Undefined{}

func Undef() *Undefined { return undefined }

func (u *Undefined) Simplify() Expr        { return u }
func (u *Undefined) String() string        { return "nan" }
func (u *Undefined) LaTeX() string         { return "\\mathrm{undefined}" }
func (u *Undefined) Sub(string, Expr) Expr { return u }
func (u *Undefined) Diff(string) Expr      { return u }
func (u *Undefined) Eval() (*Num, bool)    { return nil, false }
func (u *Undefined) Equal(Expr) bool       { return false }
func (u *Undefined) exprType() string      { return "undefined" }
func (u *Undefined) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "undefined"}
}

func IsUndefined(e Expr) bool {
	_, ok := e.(*Undefined)
	return ok
}

// IsFinite reports whether e contains neither Undefined nor an infinity.
func IsFinite(e Expr) bool {
	finite := true
	walk(e, func(n Expr) {
		switch n.(type) {
		case *Undefined, *Inf:
			finite = false
		}
	})
	return finite
}

func walk(e Expr, visit func(Expr)) {
	visit(e)
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			walk(t, visit)
		}
	case *Mul:
		for _, f := range v.factors {
			walk(f, visit)
		}
	case *Pow:
		walk(v.base, visit)
		walk(v.exp, visit)
	case *Func:
		walk(v.arg, visit)
	}
}
