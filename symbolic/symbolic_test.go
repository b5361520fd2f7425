package symbolic_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"github.com/njchilds90/gocalculus/symbolic"
)

func mustParse(t *testing.T, src string) symbolic.Expr {
	t.Helper()
	e, err := symbolic.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return e
}

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := symbolic.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestNum_Inexact(t *testing.T) {
	n := symbolic.NFloat(0.1)
	if !n.IsInexact() {
		t.Fatal("NFloat should be inexact")
	}
	if n.String() != "0.1" {
		t.Errorf("want 0.1, got %s", n.String())
	}
}

func TestReal_NonFinite(t *testing.T) {
	if !symbolic.IsUndefined(symbolic.Real(math.NaN())) {
		t.Error("Real(NaN) should be undefined")
	}
	if symbolic.Real(math.Inf(-1)).String() != "-oo" {
		t.Errorf("want -oo, got %s", symbolic.Real(math.Inf(-1)))
	}
	if symbolic.Real(3).String() != "3" {
		t.Errorf("want 3, got %s", symbolic.Real(3))
	}
}

// ============================================================
// Simplification tests
// ============================================================

func TestAdd_CollectsLikeTerms(t *testing.T) {
	x := symbolic.S("x")
	got := symbolic.AddOf(x, x)
	if got.String() != "2*x" {
		t.Errorf("want 2*x, got %s", got)
	}
}

func TestAdd_CancelsToZero(t *testing.T) {
	x := symbolic.S("x")
	got := symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), x))
	if got.String() != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestMul_MergesPowers(t *testing.T) {
	x := symbolic.S("x")
	got := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(-1)))
	if got.String() != "1" {
		t.Errorf("want 1, got %s", got)
	}
	got = symbolic.MulOf(x, x, x)
	if got.String() != "x^3" {
		t.Errorf("want x^3, got %s", got)
	}
}

func TestUndefined_Absorbs(t *testing.T) {
	x := symbolic.S("x")
	zeroInv := symbolic.PowOf(symbolic.N(0), symbolic.N(-1))
	if !symbolic.IsUndefined(zeroInv) {
		t.Fatalf("1/0 should be undefined, got %s", zeroInv)
	}
	if got := symbolic.MulOf(symbolic.N(0), zeroInv); !symbolic.IsUndefined(got) {
		t.Errorf("0*(1/0) should stay undefined, got %s", got)
	}
	if got := symbolic.AddOf(x, zeroInv); !symbolic.IsUndefined(got) {
		t.Errorf("x + 1/0 should be undefined, got %s", got)
	}
	if got := symbolic.SinOf(zeroInv); !symbolic.IsUndefined(got) {
		t.Errorf("sin(1/0) should be undefined, got %s", got)
	}
}

func TestInfinity_Arithmetic(t *testing.T) {
	oo := symbolic.Infinity(1)
	if got := symbolic.MulOf(symbolic.N(-2), oo); got.String() != "-oo" {
		t.Errorf("want -oo, got %s", got)
	}
	if got := symbolic.AddOf(oo, symbolic.Infinity(-1)); !symbolic.IsUndefined(got) {
		t.Errorf("oo - oo should be undefined, got %s", got)
	}
	if got := symbolic.MulOf(symbolic.N(0), oo); !symbolic.IsUndefined(got) {
		t.Errorf("0*oo should be undefined, got %s", got)
	}
}

func TestImagUnit_Powers(t *testing.T) {
	if got := symbolic.PowOf(symbolic.ImagUnit, symbolic.N(2)); got.String() != "-1" {
		t.Errorf("want -1, got %s", got)
	}
	if got := symbolic.MulOf(symbolic.ImagUnit, symbolic.ImagUnit); got.String() != "-1" {
		t.Errorf("want -1, got %s", got)
	}
}

func TestFunc_ExactFolding(t *testing.T) {
	cases := map[string]string{
		"sin(0)":   "0",
		"cos(0)":   "1",
		"ln(1)":    "0",
		"log(E)":   "1",
		"exp(0)":   "1",
		"abs(-3)":  "3",
		"sqrt(4)":  "2",
		"sin(pi)":  "0",
		"floor(2)": "2",
		"sign(-5)": "-1",
	}
	for src, want := range cases {
		if got := mustParse(t, src).String(); got != want {
			t.Errorf("%s: want %s, got %s", src, want, got)
		}
	}
}

func TestFunc_LnZeroUndefined(t *testing.T) {
	if got := mustParse(t, "ln(0)"); !symbolic.IsUndefined(got) {
		t.Errorf("ln(0) should be undefined, got %s", got)
	}
}

func TestTrigSimplify_Pythagorean(t *testing.T) {
	got := symbolic.TrigSimplify(mustParse(t, "sin(x)^2 + cos(x)^2"))
	if got.String() != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestEquivalent(t *testing.T) {
	if !symbolic.Equivalent(mustParse(t, "(x+1)^2"), mustParse(t, "x^2 + 2*x + 1")) {
		t.Error("(x+1)^2 should be equivalent to x^2 + 2x + 1")
	}
	if symbolic.Equivalent(mustParse(t, "x"), mustParse(t, "x + 1")) {
		t.Error("x should not be equivalent to x + 1")
	}
	if symbolic.Equivalent(symbolic.Undef(), symbolic.Undef()) {
		t.Error("undefined is never equivalent to anything")
	}
	if !symbolic.Equivalent(symbolic.Infinity(1), symbolic.Infinity(1)) {
		t.Error("oo should equal oo")
	}
}

// ============================================================
// Parser tests
// ============================================================

func TestParse_Rendering(t *testing.T) {
	cases := map[string]string{
		"x^2 - 1":        "x^2 - 1",
		"2x":             "2*x",
		"-x^2":           "-x^2",
		"x**3":           "x^3",
		"2^3":            "8",
		"3/6":            "1/2",
		"0.5":            "1/2",
		"1e-3":           "1/1000",
		"sin(x)/x":       "sin(x)/x",
		"1/(x - 1)":      "1/(x - 1)",
		"2^-1":           "1/2",
		"sqrt(x)":        "sqrt(x)",
		"x*x^-1":         "1",
		"(x + 1)(x + 1)": "(x + 1)^2",
	}
	for src, want := range cases {
		if got := mustParse(t, src).String(); got != want {
			t.Errorf("Parse(%q): want %s, got %s", src, want, got)
		}
	}
}

func TestParse_PowerIsRightAssociative(t *testing.T) {
	if got := mustParse(t, "2^3^2").String(); got != "512" {
		t.Errorf("want 512, got %s", got)
	}
}

func TestParse_Constants(t *testing.T) {
	if !mustParse(t, "pi").Equal(symbolic.Pi) {
		t.Error("pi should parse to the constant")
	}
	if !mustParse(t, "E").Equal(symbolic.E) {
		t.Error("E should parse to the constant")
	}
	syms := symbolic.FreeSymbols(mustParse(t, "pi*x + E"))
	if len(syms) != 1 {
		t.Errorf("want only x free, got %v", syms)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{"", "x +", "(x", "foo(x)", "x $ 2", "sin", "sin(x, y)", ")"} {
		_, err := symbolic.Parse(src)
		var perr *symbolic.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q): want *ParseError, got %v", src, err)
		}
	}
}

func TestParse_DeepNestingRejected(t *testing.T) {
	src := strings.Repeat("(", 1000) + "x" + strings.Repeat(")", 1000)
	if _, err := symbolic.Parse(src); err == nil {
		t.Error("deeply nested input should be rejected")
	}
}

// ============================================================
// Differentiation tests
// ============================================================

func TestDiff_Power(t *testing.T) {
	got := symbolic.Diff(mustParse(t, "x^3"), "x")
	if got.String() != "3*x^2" {
		t.Errorf("want 3*x^2, got %s", got)
	}
}

func TestDiffN_Second(t *testing.T) {
	got := symbolic.DiffN(mustParse(t, "x^4"), "x", 2)
	if got.String() != "12*x^2" {
		t.Errorf("want 12*x^2, got %s", got)
	}
}

func TestDiff2_MatchesDiffN(t *testing.T) {
	f := mustParse(t, "x^3*sin(x)")
	if got, want := symbolic.Diff2(f, "x"), symbolic.DiffN(f, "x", 2); !symbolic.Equivalent(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestDiff_Sin(t *testing.T) {
	got := symbolic.Diff(mustParse(t, "sin(x)"), "x")
	if got.String() != "cos(x)" {
		t.Errorf("want cos(x), got %s", got)
	}
	got = symbolic.DiffN(mustParse(t, "sin(x)"), "x", 2)
	if got.String() != "-sin(x)" {
		t.Errorf("want -sin(x), got %s", got)
	}
}

func TestDiff_Abs(t *testing.T) {
	got := symbolic.Diff(mustParse(t, "abs(x)"), "x")
	if got.String() != "sign(x)" {
		t.Errorf("want sign(x), got %s", got)
	}
}

func TestDiff_Constant(t *testing.T) {
	got := symbolic.Diff(mustParse(t, "5 + pi"), "x")
	if got.String() != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

// ============================================================
// Evaluation tests
// ============================================================

func TestEvaluate_Real(t *testing.T) {
	v, err := symbolic.Evaluate(mustParse(t, "x^2 + 1"), "x", 3)
	if err != nil || v != 10 {
		t.Errorf("want 10, got %v (%v)", v, err)
	}
}

func TestEvaluate_ComplexBranch(t *testing.T) {
	v, err := symbolic.Evaluate(mustParse(t, "sqrt(x)"), "x", -4)
	if err != nil || v != complex(0, 2) {
		t.Errorf("want 2i, got %v (%v)", v, err)
	}
	v, err = symbolic.Evaluate(mustParse(t, "ln(x)"), "x", -1)
	if err != nil || math.Abs(imag(v)-math.Pi) > 1e-12 {
		t.Errorf("want i*pi, got %v (%v)", v, err)
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	_, err := symbolic.Evaluate(mustParse(t, "1/x"), "x", 0)
	if !errors.Is(err, symbolic.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
	var eerr *symbolic.EvalError
	if !errors.As(err, &eerr) {
		t.Errorf("want *EvalError, got %T", err)
	}
}

func TestEvaluate_Domain(t *testing.T) {
	_, err := symbolic.Evaluate(mustParse(t, "ln(x)"), "x", 0)
	if !errors.Is(err, symbolic.ErrDomain) {
		t.Errorf("want ErrDomain, got %v", err)
	}
	_, err = symbolic.Evaluate(mustParse(t, "floor(x)"), "x", complex(1, 1))
	if !errors.Is(err, symbolic.ErrDomain) {
		t.Errorf("want ErrDomain for complex floor, got %v", err)
	}
}

func TestEvaluate_UnboundSymbol(t *testing.T) {
	_, err := symbolic.Evaluate(mustParse(t, "x + y"), "x", 1)
	if !errors.Is(err, symbolic.ErrUnbound) {
		t.Errorf("want ErrUnbound, got %v", err)
	}
}

func TestLambdify_MasksUndefined(t *testing.T) {
	f := symbolic.Lambdify(mustParse(t, "1/x"), "x")
	out := f([]complex128{-1, 0, 2})
	if out[0] != -1 || out[2] != 0.5 {
		t.Errorf("unexpected values %v", out)
	}
	if !cmplx.IsNaN(out[1]) {
		t.Errorf("want NaN at 0, got %v", out[1])
	}
}

func TestFormatComplex(t *testing.T) {
	cases := []struct {
		z    complex128
		want string
	}{
		{complex(1.5, 2), "1.5 + 2i"},
		{complex(1, -2), "1 - 2i"},
		{complex(3, 1e-9), "3"},
		{complex(math.Copysign(0, -1), 0), "0"},
		{complex(1.0/3, 0), "0.333333"},
	}
	for _, c := range cases {
		if got := symbolic.FormatComplex(c.z); got != c.want {
			t.Errorf("FormatComplex(%v): want %s, got %s", c.z, c.want, got)
		}
	}
}

// ============================================================
// Limit tests
// ============================================================

func TestLimit_Substitution(t *testing.T) {
	r := symbolic.Limit(mustParse(t, "x^2 + 1"), "x", symbolic.N(2), symbolic.Both)
	if !r.Success || r.Value.String() != "5" {
		t.Errorf("want 5, got %+v", r)
	}
}

func TestLimit_SinXOverX(t *testing.T) {
	r := symbolic.Limit(mustParse(t, "sin(x)/x"), "x", symbolic.N(0), symbolic.Both)
	if !r.Success || r.Value.String() != "1" {
		t.Errorf("want 1, got %+v", r)
	}
}

func TestLimit_RemovableSingularity(t *testing.T) {
	r := symbolic.Limit(mustParse(t, "(x^2 - 1)/(x - 1)"), "x", symbolic.N(1), symbolic.Both)
	if !r.Success || r.Value.String() != "2" {
		t.Errorf("want 2, got %+v", r)
	}
}

func TestLimit_OneSidedDivergence(t *testing.T) {
	f := mustParse(t, "1/x")
	right := symbolic.Limit(f, "x", symbolic.N(0), symbolic.FromRight)
	if !right.Success || right.Value.String() != "oo" {
		t.Errorf("right: want oo, got %+v", right)
	}
	left := symbolic.Limit(f, "x", symbolic.N(0), symbolic.FromLeft)
	if !left.Success || left.Value.String() != "-oo" {
		t.Errorf("left: want -oo, got %+v", left)
	}
	both := symbolic.Limit(f, "x", symbolic.N(0), symbolic.Both)
	if both.Success {
		t.Errorf("two-sided limit of 1/x at 0 should not exist, got %s", both.Value)
	}
}

func TestLimit_ExponentialBlowUp(t *testing.T) {
	f := mustParse(t, "exp(1/x)")
	right := symbolic.Limit(f, "x", symbolic.N(0), symbolic.FromRight)
	if !right.Success || right.Value.String() != "oo" {
		t.Errorf("right: want oo, got %+v", right)
	}
	left := symbolic.Limit(f, "x", symbolic.N(0), symbolic.FromLeft)
	if !left.Success || left.Value.String() != "0" {
		t.Errorf("left: want 0, got %+v", left)
	}
}

func TestLimit_EvenPole(t *testing.T) {
	r := symbolic.Limit(mustParse(t, "1/x^2"), "x", symbolic.N(0), symbolic.Both)
	if !r.Success || r.Value.String() != "oo" {
		t.Errorf("want oo, got %+v", r)
	}
}

func TestLimit_Floor(t *testing.T) {
	f := mustParse(t, "floor(x)")
	if r := symbolic.Limit(f, "x", symbolic.N(1), symbolic.FromLeft); !r.Success || r.Value.String() != "0" {
		t.Errorf("left: want 0, got %+v", r)
	}
	if r := symbolic.Limit(f, "x", symbolic.N(1), symbolic.FromRight); !r.Success || r.Value.String() != "1" {
		t.Errorf("right: want 1, got %+v", r)
	}
}

func TestLimit_XLogX(t *testing.T) {
	r := symbolic.Limit(mustParse(t, "x*ln(x)"), "x", symbolic.N(0), symbolic.FromRight)
	if !r.Success || r.Value.String() != "0" {
		t.Errorf("want 0, got %+v", r)
	}
}

func TestLimit_SymbolicPointRejected(t *testing.T) {
	r := symbolic.Limit(mustParse(t, "x"), "x", symbolic.S("a"), symbolic.Both)
	if r.Success {
		t.Error("a symbolic limit point should be rejected")
	}
}

func TestParseDirection(t *testing.T) {
	cases := map[string]symbolic.Direction{
		"both": symbolic.Both, "+-": symbolic.Both, "": symbolic.Both,
		"left": symbolic.FromLeft, "-": symbolic.FromLeft,
		"right": symbolic.FromRight, "+": symbolic.FromRight,
	}
	for in, want := range cases {
		got, err := symbolic.ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q): want %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := symbolic.ParseDirection("up"); err == nil {
		t.Error("want error for unknown direction")
	}
}

// ============================================================
// Solver tests
// ============================================================

func assertRoots(t *testing.T, got, want []complex128, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("want %d roots %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if cmplx.Abs(got[i]-want[i]) > tol {
			t.Errorf("root %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSolve_Quadratic(t *testing.T) {
	roots, err := symbolic.Solve(mustParse(t, "x^2 - 4"), "x")
	if err != nil {
		t.Fatal(err)
	}
	assertRoots(t, roots, []complex128{-2, 2}, 0)
}

func TestSolve_ComplexPair(t *testing.T) {
	roots, err := symbolic.Solve(mustParse(t, "x^2 + 1"), "x")
	if err != nil {
		t.Fatal(err)
	}
	assertRoots(t, roots, []complex128{complex(0, -1), complex(0, 1)}, 0)
}

func TestSolve_ZeroRootFactored(t *testing.T) {
	roots, err := symbolic.Solve(mustParse(t, "x^3 - x"), "x")
	if err != nil {
		t.Fatal(err)
	}
	assertRoots(t, roots, []complex128{-1, 0, 1}, 0)
}

func TestSolve_Cubic(t *testing.T) {
	roots, err := symbolic.Solve(mustParse(t, "x^3 - 6x^2 + 11x - 6"), "x")
	if err != nil {
		t.Fatal(err)
	}
	assertRoots(t, roots, []complex128{1, 2, 3}, 1e-9)
}

func TestSolve_QuarticDurandKerner(t *testing.T) {
	roots, err := symbolic.Solve(mustParse(t, "(x-1)*(x-2)*(x-3)*(x-4)"), "x")
	if err != nil {
		t.Fatal(err)
	}
	assertRoots(t, roots, []complex128{1, 2, 3, 4}, 1e-6)
}

func TestSolve_Unsolvable(t *testing.T) {
	_, err := symbolic.Solve(mustParse(t, "sin(x) - x/2"), "x")
	if !errors.Is(err, symbolic.ErrUnsolvable) {
		t.Errorf("want ErrUnsolvable, got %v", err)
	}
	_, err = symbolic.Solve(symbolic.N(0), "x")
	if !errors.Is(err, symbolic.ErrUnsolvable) {
		t.Errorf("identically zero: want ErrUnsolvable, got %v", err)
	}
}

func TestSolve_NonzeroConstantHasNoRoots(t *testing.T) {
	roots, err := symbolic.Solve(symbolic.N(5), "x")
	if err != nil || len(roots) != 0 {
		t.Errorf("want no roots, got %v (%v)", roots, err)
	}
}

// ============================================================
// JSON tests
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	e := mustParse(t, "sin(x) + x^2/3 + pi")
	s, err := symbolic.ToJSON(e)
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		t.Fatal(err)
	}
	back, err := symbolic.FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(e) {
		t.Errorf("round trip: want %s, got %s", e, back)
	}
}

func TestJSON_UnknownFunctionRejected(t *testing.T) {
	data := map[string]interface{}{
		"type": "func", "name": "gamma",
		"arg": map[string]interface{}{"type": "sym", "name": "x"},
	}
	if _, err := symbolic.FromJSON(data); err == nil {
		t.Error("want error for unknown function")
	}
}

func TestJSON_TreeDecodesDirectly(t *testing.T) {
	e := mustParse(t, "x^3 - 2*x + floor(x)")
	back, err := symbolic.FromJSON(symbolic.Tree(e))
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(e) {
		t.Errorf("want %s, got %s", e, back)
	}

	neg, err := symbolic.FromJSON(symbolic.Tree(symbolic.Infinity(-1)))
	if err != nil {
		t.Fatal(err)
	}
	if neg.String() != "-oo" {
		t.Errorf("want -oo, got %s", neg)
	}
}

func TestJSON_DeepNestingRejected(t *testing.T) {
	data := map[string]interface{}{"type": "sym", "name": "x"}
	for i := 0; i < 300; i++ {
		data = map[string]interface{}{"type": "func", "name": "sin", "arg": data}
	}
	if _, err := symbolic.FromJSON(data); err == nil {
		t.Error("want error for over-deep tree")
	}
}
