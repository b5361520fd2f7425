// Package render samples expressions on a real grid and draws the samples as
// static (PNG, SVG) or interactive (HTML) charts.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrNoFiniteSamples means every grid point of a series was undefined.
var ErrNoFiniteSamples = errors.New("no finite samples")

// PlotError ties a sampling or drawing failure to the series it concerns.
type PlotError struct {
	Label string
	Err   error
}

func (e *PlotError) Error() string { return fmt.Sprintf("plot %s: %v", e.Label, e.Err) }
func (e *PlotError) Unwrap() error { return e.Err }

// Grid returns n evenly spaced points over [lo, hi].
func Grid(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{(lo + hi) / 2}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Series is one sampled function. Re and Im hold NaN where the function has
// no finite value.
type Series struct {
	Label string
	X     []float64
	Re    []float64
	Im    []float64
}

// Sample evaluates fn on grid. The returned error is a *PlotError wrapping
// ErrNoFiniteSamples when no grid point produced a finite value; the series
// is returned regardless.
func Sample(label string, fn func([]complex128) []complex128, grid []float64) (Series, error) {
	zs := make([]complex128, len(grid))
	for i, x := range grid {
		zs[i] = complex(x, 0)
	}
	vs := fn(zs)
	s := Series{
		Label: label,
		X:     append([]float64(nil), grid...),
		Re:    make([]float64, len(grid)),
		Im:    make([]float64, len(grid)),
	}
	for i := range grid {
		var v complex128
		if i < len(vs) {
			v = vs[i]
		} else {
			v = complex(math.NaN(), math.NaN())
		}
		re, im := real(v), imag(v)
		if !finite(re) || !finite(im) {
			re, im = math.NaN(), math.NaN()
		}
		s.Re[i], s.Im[i] = re, im
	}
	if !s.Finite() {
		return s, &PlotError{Label: label, Err: ErrNoFiniteSamples}
	}
	return s, nil
}

// Finite reports whether at least one sample is defined.
func (s Series) Finite() bool {
	for _, v := range s.Re {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// HasImag reports whether any defined sample has a nonzero imaginary part.
func (s Series) HasImag() bool {
	for _, v := range s.Im {
		if !math.IsNaN(v) && v != 0 {
			return true
		}
	}
	return false
}

// MarshalJSON writes undefined samples as null.
func (s Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label string     `json:"label"`
		X     []float64  `json:"x"`
		Re    []*float64 `json:"re"`
		Im    []*float64 `json:"im"`
	}{s.Label, s.X, nullable(s.Re), nullable(s.Im)})
}

func nullable(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		if !math.IsNaN(vs[i]) {
			out[i] = &vs[i]
		}
	}
	return out
}

// segments splits ys into maximal runs of defined samples, returned as index
// ranges [start, end).
func segments(ys []float64) [][2]int {
	var out [][2]int
	start := -1
	for i, y := range ys {
		switch {
		case math.IsNaN(y) && start >= 0:
			out = append(out, [2]int{start, i})
			start = -1
		case !math.IsNaN(y) && start < 0:
			start = i
		}
	}
	if start >= 0 {
		out = append(out, [2]int{start, len(ys)})
	}
	return out
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
