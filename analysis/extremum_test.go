package analysis

import (
	"context"
	"errors"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalculus/symbolic"
)

func defaultSearch() ExtremumSearch {
	return ExtremumSearch{
		Finder:       defaultFinder(),
		Epsilon:      1e-3,
		Places:       8,
		ImagTol:      DefaultImagTolerance,
		ScanInterval: true,
	}
}

// ---------------------------------------------------------------------------
// Classifier
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr string
		at   complex128
		want PointKind
	}{
		{"x^2", 0, Minimum},
		{"-x^2", 0, Maximum},
		{"x^3", 0, Inflection},
		{"x^3", 1i, Indeterminate},
		{"cos(x)", 0, Maximum},
		{"x^4 - 2x^2", 1, Minimum},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			p, err := NewClassifier(parse(t, tc.expr), "x", DefaultImagTolerance).Classify(tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Kind())
		})
	}
}

func TestClassify_ZeroValueUsesDefaultTolerance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Minimum, ClassifiedPoint{Curvature: 2 + 1e-10i}.Kind())
	assert.Equal(t, Indeterminate, ClassifiedPoint{Curvature: 2 + 1e-6i}.Kind())
}

func TestClassifyAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	out := NewClassifier(parse(t, "1/x"), "x", DefaultImagTolerance).ClassifyAll([]complex128{0, 1, -1})
	require.Len(t, out, 3)

	require.Error(t, out[0].Err)
	assert.Nil(t, out[0].Point)
	var ee *EvaluationError
	require.True(t, errors.As(out[0].Err, &ee))
	assert.Equal(t, "f", ee.Stage)
	assert.ErrorIs(t, out[0].Err, symbolic.ErrDivisionByZero)

	require.NoError(t, out[1].Err)
	assert.Equal(t, Minimum, out[1].Point.Kind())
	require.NoError(t, out[2].Err)
	assert.Equal(t, Maximum, out[2].Point.Kind())
}

func TestPointKind_MarshalText(t *testing.T) {
	t.Parallel()

	b, err := Inflection.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "inflection", string(b))
}

// ---------------------------------------------------------------------------
// Local
// ---------------------------------------------------------------------------

func TestLocal_Parabola(t *testing.T) {
	t.Parallel()

	res, err := defaultSearch().Local(context.Background(), parse(t, "x^2"), "x")
	require.NoError(t, err)
	assert.True(t, res.ClosedForm)
	assert.Equal(t, []complex128{0}, res.CriticalPoints)
	require.Len(t, res.Classified, 1)
	require.NoError(t, res.Classified[0].Err)
	assert.Equal(t, Minimum, res.Classified[0].Point.Kind())
}

func TestLocal_Cubic(t *testing.T) {
	t.Parallel()

	// 3x^2 has a double root; proximity dedup keeps one.
	res, err := defaultSearch().Local(context.Background(), parse(t, "x^3"), "x")
	require.NoError(t, err)
	assert.Equal(t, []complex128{0}, res.CriticalPoints)
	require.Len(t, res.Classified, 1)
	assert.Equal(t, Inflection, res.Classified[0].Point.Kind())
}

func TestLocal_NumericFallback(t *testing.T) {
	t.Parallel()

	res, err := defaultSearch().Local(context.Background(), parse(t, "sin(x)"), "x")
	require.NoError(t, err)
	assert.False(t, res.ClosedForm)
	require.NotEmpty(t, res.CriticalPoints)
	for i := range res.CriticalPoints {
		for j := i + 1; j < len(res.CriticalPoints); j++ {
			assert.GreaterOrEqual(t, cmplx.Abs(res.CriticalPoints[i]-res.CriticalPoints[j]), 1e-3)
		}
	}
	for _, o := range res.Classified {
		require.NoError(t, o.Err)
		k := o.Point.Kind()
		assert.True(t, k == Minimum || k == Maximum, "cos(x)=0 should be a strict extremum, got %s", k)
	}
}

func TestLocal_NoCriticalPoints(t *testing.T) {
	t.Parallel()

	// f' approaches zero without reaching it.
	for _, src := range []string{"exp(x)", "1/x"} {
		res, err := defaultSearch().Local(context.Background(), parse(t, src), "x")
		require.NoError(t, err, src)
		assert.Empty(t, res.CriticalPoints, "%s: spurious critical points", src)
		assert.Empty(t, res.Classified, src)
		assert.False(t, res.Vanishing, src)
	}
}

func TestLocal_Constant(t *testing.T) {
	t.Parallel()

	res, err := defaultSearch().Local(context.Background(), parse(t, "5"), "x")
	require.NoError(t, err)
	assert.True(t, res.Vanishing)
	assert.Empty(t, res.CriticalPoints)
	assert.Empty(t, res.Classified)
}

func TestGlobal_Constant(t *testing.T) {
	t.Parallel()

	res, err := defaultSearch().Global(context.Background(), parse(t, "5"), "x", Interval{A: 0, B: 1})
	require.NoError(t, err)
	assert.True(t, res.Vanishing)
	assert.Equal(t, []complex128{0, 1}, res.Candidates)
	require.NotNil(t, res.Min)
	assert.Equal(t, complex128(5), res.Min.Value)
}

// ---------------------------------------------------------------------------
// Global
// ---------------------------------------------------------------------------

func TestGlobal_Parabola(t *testing.T) {
	t.Parallel()

	iv, err := NewInterval(-2, 3)
	require.NoError(t, err)
	res, err := defaultSearch().Global(context.Background(), parse(t, "x^2"), "x", iv)
	require.NoError(t, err)
	require.NoError(t, res.Status)

	if diff := cmp.Diff([]complex128{-2, 0, 3}, res.Candidates); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}
	assert.Equal(t, &Extremum{Location: 0, Value: 0}, res.Min)
	assert.Equal(t, &Extremum{Location: 3, Value: 9}, res.Max)
	assert.Empty(t, res.Dropped)

	require.Len(t, res.Classified, 3)
	for _, o := range res.Classified {
		require.NoError(t, o.Err)
		assert.Equal(t, Minimum, o.Point.Kind())
	}
}

func TestGlobal_ComplexCriticalPoints(t *testing.T) {
	t.Parallel()

	iv := Interval{A: -1, B: 1}
	f := parse(t, "x^3 + 3x")

	res, err := defaultSearch().Global(context.Background(), f, "x", iv)
	require.NoError(t, err)
	if diff := cmp.Diff([]complex128{-1, -1i, 1i, 1}, res.Candidates, approxComplex); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}
	assert.Equal(t, complex128(-4), res.Min.Value)
	assert.Equal(t, complex128(4), res.Max.Value)

	strict := defaultSearch()
	strict.StrictReal = true
	res, err = strict.Global(context.Background(), f, "x", iv)
	require.NoError(t, err)
	assert.Equal(t, []complex128{-1, 1}, res.Candidates)
}

func TestGlobal_DegenerateInterval(t *testing.T) {
	t.Parallel()

	res, err := defaultSearch().Global(context.Background(), parse(t, "x^2"), "x", Interval{A: 2, B: 2})
	require.NoError(t, err)
	assert.Equal(t, []complex128{2}, res.Candidates)
	assert.Equal(t, res.Min, res.Max)
	assert.Equal(t, complex128(4), res.Min.Value)
}

func TestGlobal_NoEvaluableExtrema(t *testing.T) {
	t.Parallel()

	res, err := defaultSearch().Global(context.Background(), parse(t, "1/x"), "x", Interval{A: 0, B: 0})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Status, ErrNoEvaluableExtrema)
	assert.Nil(t, res.Min)
	assert.Nil(t, res.Max)
	assert.Empty(t, res.Evaluated)
	require.Len(t, res.Dropped, 1)
	assert.ErrorIs(t, res.Dropped[0].Err, symbolic.ErrDivisionByZero)
}

func TestGlobal_DropsUnevaluableCandidate(t *testing.T) {
	t.Parallel()

	// ln is undefined at 0 but fine at 1.
	res, err := defaultSearch().Global(context.Background(), parse(t, "ln(x)"), "x", Interval{A: 0, B: 1})
	require.NoError(t, err)
	require.NoError(t, res.Status)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, complex128(0), res.Dropped[0].Location)
	assert.Equal(t, complex128(1), res.Min.Location)
	assert.Equal(t, res.Min, res.Max)
}

func TestGlobal_InvalidInterval(t *testing.T) {
	t.Parallel()

	_, err := defaultSearch().Global(context.Background(), parse(t, "x"), "x", Interval{A: 1, B: 0})
	var pe *ParamError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "interval", pe.Field)
}

func TestSelectExtrema_TieBreak(t *testing.T) {
	t.Parallel()

	ev := []Extremum{
		{Location: 0, Value: 1 + 2i},
		{Location: 1, Value: 1 - 0.5i},
		{Location: 2, Value: 1 + 0.5i},
		{Location: 3, Value: 1 + 3i},
	}
	lo, hi := selectExtrema(ev)
	assert.Equal(t, complex128(1), lo.Location)
	assert.Equal(t, complex128(1), hi.Location)

	ev = append(ev, Extremum{Location: 4, Value: 5 + 9i}, Extremum{Location: 5, Value: -1 + 9i})
	lo, hi = selectExtrema(ev)
	assert.Equal(t, complex128(5), lo.Location)
	assert.Equal(t, complex128(4), hi.Location)
}

// ---------------------------------------------------------------------------
// Continuity
// ---------------------------------------------------------------------------

func TestCheckContinuity_RemovableSingularity(t *testing.T) {
	t.Parallel()

	res := CheckContinuity(parse(t, "sin(x)/x"), "x", 0)
	require.NoError(t, res.LeftErr)
	require.NoError(t, res.RightErr)
	assert.Equal(t, "1", res.Left.String())
	assert.Equal(t, "1", res.Right.String())
	assert.Error(t, res.ValueErr)
	assert.False(t, res.Continuous)
}

func TestCheckContinuity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr string
		at   float64
		want bool
	}{
		{"x^2", 1, true},
		{"abs(x)", 0, true},
		{"sin(x) + 2", 0.5, true},
		{"floor(x)", 1, false},
		{"1/x", 0, false},
		{"sign(x)", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			res := CheckContinuity(parse(t, tc.expr), "x", tc.at)
			assert.Equal(t, tc.want, res.Continuous)
		})
	}
}
