package render

import (
	"bytes"
	"encoding/json"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reciprocal(zs []complex128) []complex128 {
	out := make([]complex128, len(zs))
	for i, z := range zs {
		if z == 0 {
			out[i] = cmplx.NaN()
			continue
		}
		out[i] = 1 / z
	}
	return out
}

func sqrtC(zs []complex128) []complex128 {
	out := make([]complex128, len(zs))
	for i, z := range zs {
		out[i] = cmplx.Sqrt(z)
	}
	return out
}

func TestGrid(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, Grid(-1, 1, 5))
	assert.Equal(t, []float64{2}, Grid(1, 3, 1))
	assert.Nil(t, Grid(0, 1, 0))
}

func TestSample(t *testing.T) {
	t.Parallel()

	s, err := Sample("1/x", reciprocal, Grid(-1, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, "1/x", s.Label)
	assert.True(t, s.Finite())
	assert.False(t, s.HasImag())
	assert.True(t, math.IsNaN(s.Re[2]))
	assert.True(t, math.IsNaN(s.Im[2]))
	assert.Equal(t, -1.0, s.Re[0])
	assert.Equal(t, 2.0, s.Re[3])
}

func TestSample_ComplexParts(t *testing.T) {
	t.Parallel()

	s, err := Sample("sqrt", sqrtC, []float64{-4, 4})
	require.NoError(t, err)
	assert.True(t, s.HasImag())
	if diff := cmp.Diff([]float64{0, 2}, s.Re); diff != "" {
		t.Errorf("Re (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{2, 0}, s.Im)
}

func TestSample_NoFiniteSamples(t *testing.T) {
	t.Parallel()

	nan := func(zs []complex128) []complex128 {
		out := make([]complex128, len(zs))
		for i := range out {
			out[i] = complex(math.Inf(1), 0)
		}
		return out
	}
	s, err := Sample("inf", nan, Grid(0, 1, 3))
	require.ErrorIs(t, err, ErrNoFiniteSamples)
	var pe *PlotError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "inf", pe.Label)
	assert.False(t, s.Finite())
}

func TestSeries_MarshalJSON(t *testing.T) {
	t.Parallel()

	s, err := Sample("1/x", reciprocal, Grid(-1, 1, 3))
	require.NoError(t, err)
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"1/x","x":[-1,0,1],"re":[-1,null,1],"im":[0,null,0]}`, string(b))
}

func TestSegments(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	cases := []struct {
		name string
		in   []float64
		want [][2]int
	}{
		{"all defined", []float64{1, 2, 3}, [][2]int{{0, 3}}},
		{"hole", []float64{1, nan, 3, 4}, [][2]int{{0, 1}, {2, 4}}},
		{"edges", []float64{nan, 2, nan}, [][2]int{{1, 2}}},
		{"none", []float64{nan, nan}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, segments(tc.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"png": PNG, ".SVG": SVG, "html": HTML, ".htm": HTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("gif")
	assert.Error(t, err)

	f, err := FormatFromPath("/tmp/out.png")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	assert.Equal(t, "image/svg+xml", SVG.ContentType())
}

func testFigure(t *testing.T) Figure {
	t.Helper()
	f, err := Sample("1/x", reciprocal, Grid(-2, 2, 41))
	require.NoError(t, err)
	g, err := Sample("sqrt(x)", sqrtC, Grid(-2, 2, 41))
	require.NoError(t, err)
	return Figure{
		Title:  "test",
		Series: []Series{f, g},
		Marks:  []Mark{{Label: "critical point", X: 1, Y: 1}},
	}
}

func TestFigure_Render(t *testing.T) {
	t.Parallel()

	fig := testFigure(t)

	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, fig.Render(&buf, PNG))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	})
	t.Run("svg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, fig.Render(&buf, SVG))
		assert.Contains(t, buf.String(), "<svg")
	})
	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, fig.Render(&buf, HTML))
		out := buf.String()
		assert.Contains(t, out, "echarts")
		assert.Contains(t, out, "test")
	})
	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, fig.Render(&bytes.Buffer{}, Format("bmp")))
	})
}

func TestFigure_WriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plot.svg")
	require.NoError(t, testFigure(t).WriteFile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")

	assert.Error(t, testFigure(t).WriteFile(filepath.Join(t.TempDir(), "plot.txt")))
}
