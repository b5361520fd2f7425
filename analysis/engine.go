package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njchilds90/gocalculus/render"
	"github.com/njchilds90/gocalculus/symbolic"
)

// DefaultImagTolerance is the largest |Im| still treated as real.
const DefaultImagTolerance = symbolic.ImagTolerance

// Options tunes the numeric parts of an Engine. Zero fields take the value
// from DefaultOptions.
type Options struct {
	Seeds   int     // multi-start seeds
	ScanMin float64 // seed range for local analysis
	ScanMax float64
	MaxIter int // Newton iterations per seed
	Workers int
	Epsilon float64 // proximity dedup radius
	Places  int     // rounding dedup decimals
	ImagTol float64
	// StrictReal drops complex critical points from global candidates.
	StrictReal bool
	// ScanDefaultRange seeds global searches over [ScanMin, ScanMax]
	// instead of the requested interval.
	ScanDefaultRange bool
	Samples          int
	PlotMin          float64
	PlotMax          float64
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		Seeds:   20,
		ScanMin: -10,
		ScanMax: 10,
		MaxIter: 100,
		Workers: runtime.GOMAXPROCS(0),
		Epsilon: 1e-3,
		Places:  8,
		ImagTol: DefaultImagTolerance,
		Samples: 400,
		PlotMin: -10,
		PlotMax: 10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Seeds <= 0 {
		o.Seeds = d.Seeds
	}
	if o.ScanMin == 0 && o.ScanMax == 0 {
		o.ScanMin, o.ScanMax = d.ScanMin, d.ScanMax
	}
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	if o.Places <= 0 {
		o.Places = d.Places
	}
	if o.ImagTol <= 0 {
		o.ImagTol = d.ImagTol
	}
	if o.Samples <= 0 {
		o.Samples = d.Samples
	}
	if o.PlotMin == 0 && o.PlotMax == 0 {
		o.PlotMin, o.PlotMax = d.PlotMin, d.PlotMax
	}
	return o
}

// Engine runs analyses. It holds only configuration and a logger and is safe
// for concurrent use.
type Engine struct {
	opts Options
	log  *zap.Logger
}

// NewEngine returns an engine using opts. A nil logger discards output.
func NewEngine(opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{opts: opts.withDefaults(), log: log}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

func (e *Engine) search() ExtremumSearch {
	return ExtremumSearch{
		Finder: RootFinder{
			Seeds:   e.opts.Seeds,
			Lo:      e.opts.ScanMin,
			Hi:      e.opts.ScanMax,
			MaxIter: e.opts.MaxIter,
			Workers: e.opts.Workers,
			Logger:  e.log,
		},
		Epsilon:      e.opts.Epsilon,
		Places:       e.opts.Places,
		ImagTol:      e.opts.ImagTol,
		StrictReal:   e.opts.StrictReal,
		ScanInterval: !e.opts.ScanDefaultRange,
		Logger:       e.log,
	}
}

// Analyze parses and validates req and runs the requested analysis.
// Errors are a wrapped *symbolic.ParseError, a *ParamError, or ctx.Err();
// everything that goes wrong inside an analysis is part of the report.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	if req.Analysis == nil {
		return nil, &ParamError{Field: "analysis", Msg: "missing"}
	}
	if err := req.Analysis.validate(); err != nil {
		return nil, err
	}
	varName := req.Variable
	if varName == "" {
		varName = "x"
	}
	if !validIdent(varName) {
		return nil, &ParamError{Field: "variable", Msg: fmt.Sprintf("%q is not an identifier", varName)}
	}
	f := req.Expr
	if f == nil {
		var err error
		if f, err = symbolic.Parse(req.Expression); err != nil {
			return nil, fmt.Errorf("parse expression: %w", err)
		}
	}
	f = f.Simplify()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	rep := &Report{
		ID:         id,
		Kind:       req.Analysis.Kind(),
		Expression: f.String(),
		Tree:       symbolic.Tree(f),
		Variable:   varName,
	}
	b := builder{e: e, f: f, v: varName, rep: rep}

	var err error
	switch a := req.Analysis.(type) {
	case LimitRequest:
		b.limit(a)
	case DerivativeRequest:
		b.derivatives(a)
	case ContinuityRequest:
		b.continuity(a)
	case LocalExtremaRequest:
		err = b.local(ctx)
	case GlobalExtremaRequest:
		err = b.global(ctx, a)
	default:
		err = fmt.Errorf("unsupported analysis %T", a)
	}
	if err != nil {
		return nil, err
	}

	e.log.Info("analysis complete",
		zap.String("id", rep.ID),
		zap.String("kind", string(rep.Kind)),
		zap.String("expr", rep.Expression),
		zap.Int("entries", len(rep.Entries)),
		zap.Int("warnings", len(rep.Warnings)),
		zap.Duration("elapsed", time.Since(start)))
	return rep, nil
}

func validIdent(s string) bool {
	for i, r := range s {
		if !unicode.IsLetter(r) && r != '_' && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return s != ""
}

// builder fills one report.
type builder struct {
	e   *Engine
	f   symbolic.Expr
	v   string
	rep *Report
}

func (b *builder) warn(format string, args ...interface{}) {
	b.rep.Warnings = append(b.rep.Warnings, fmt.Sprintf(format, args...))
}

func (b *builder) entry(label, text, latex string) {
	b.rep.Entries = append(b.rep.Entries, Entry{Label: label, Text: text, LaTeX: latex})
}

// plot samples expr on [lo, hi]. A series without any finite sample is
// skipped with a warning.
func (b *builder) plot(label string, expr symbolic.Expr, lo, hi float64) {
	grid := render.Grid(lo, hi, b.e.opts.Samples)
	s, err := render.Sample(label, symbolic.Lambdify(expr, b.v), grid)
	if err != nil {
		var pe *render.PlotError
		if errors.As(err, &pe) && errors.Is(pe.Err, render.ErrNoFiniteSamples) {
			b.warn("could not plot %s: no finite samples", label)
			return
		}
		b.warn("could not plot %s: %v", label, err)
		return
	}
	b.rep.Series = append(b.rep.Series, s)
}

func (b *builder) fx() string { return "f(" + b.v + ")" }

func (b *builder) limit(a LimitRequest) {
	pt := symbolic.Real(a.Point)
	res := symbolic.Limit(b.f, b.v, pt, a.Direction)
	payload := &LimitPayload{Point: a.Point, Direction: directionName(a.Direction), Exists: res.Success}

	sup := ""
	switch a.Direction {
	case symbolic.FromLeft:
		sup = "^{-}"
	case symbolic.FromRight:
		sup = "^{+}"
	}
	lhs := fmt.Sprintf("\\lim_{%s \\to %s%s} %s", b.v, pt.LaTeX(), sup, b.fx())
	if res.Success {
		payload.Value = res.Value.String()
		payload.LaTeX = res.Value.LaTeX()
		b.entry("limit",
			fmt.Sprintf("lim %s->%s%s %s = %s", b.v, pt, dirSuffix(a.Direction), b.fx(), res.Value),
			lhs+" = "+res.Value.LaTeX())
	} else {
		payload.Reason = res.Error
		text := res.Error
		if !strings.HasPrefix(text, "limit does not exist") {
			text = "limit does not exist: " + text
		}
		b.entry("limit", text, lhs+" \\text{ does not exist}")
		b.warn("%s", res.Error)
	}
	b.rep.Limit = payload
	b.rep.Title = fmt.Sprintf("%s = %s", b.fx(), b.f)
	b.plot(b.fx(), b.f, b.e.opts.PlotMin, b.e.opts.PlotMax)
}

func (b *builder) derivatives(a DerivativeRequest) {
	b.rep.Title = fmt.Sprintf("%s and its derivatives up to order %d", b.fx(), a.Order)
	b.plot(b.fx(), b.f, b.e.opts.PlotMin, b.e.opts.PlotMax)
	d := b.f
	for i := 1; i <= a.Order; i++ {
		d = symbolic.Diff(d, b.v)
		label := derivLabel(i, b.v)
		b.rep.Derivatives = append(b.rep.Derivatives, DerivativePayload{Order: i, Expr: d.String(), LaTeX: d.LaTeX()})
		b.entry(label, d.String(), fmt.Sprintf("f^{(%d)}(%s) = %s", i, b.v, d.LaTeX()))
		b.plot(label, d, b.e.opts.PlotMin, b.e.opts.PlotMax)
	}
}

func (b *builder) continuity(a ContinuityRequest) {
	res := CheckContinuity(b.f, b.v, a.Point)
	p := symbolic.FormatFloat(a.Point)
	payload := &ContinuityPayload{Point: a.Point, Continuous: res.Continuous}
	show := func(e symbolic.Expr, err error) string {
		if err != nil {
			return "undefined (" + err.Error() + ")"
		}
		return e.String()
	}
	payload.Left = show(res.Left, res.LeftErr)
	payload.Right = show(res.Right, res.RightErr)
	payload.Value = show(res.Value, res.ValueErr)
	b.entry("left limit", payload.Left, fmt.Sprintf("\\lim_{%s \\to %s^{-}} %s", b.v, p, b.fx()))
	b.entry("right limit", payload.Right, fmt.Sprintf("\\lim_{%s \\to %s^{+}} %s", b.v, p, b.fx()))
	b.entry("value", fmt.Sprintf("f(%s) = %s", p, payload.Value), "")
	if res.Continuous {
		b.entry("continuity", fmt.Sprintf("continuous at %s = %s", b.v, p), "")
	} else {
		b.entry("continuity", fmt.Sprintf("not continuous at %s = %s", b.v, p), "")
	}
	b.rep.Continuity = payload
	b.rep.Title = fmt.Sprintf("%s = %s", b.fx(), b.f)
	b.plot(b.fx(), b.f, b.e.opts.PlotMin, b.e.opts.PlotMax)
}

func (b *builder) local(ctx context.Context) error {
	res, err := b.e.search().Local(ctx, b.f, b.v)
	if err != nil {
		return err
	}
	payload := &LocalPayload{ClosedForm: res.ClosedForm}
	for _, c := range res.CriticalPoints {
		payload.CriticalPoints = append(payload.CriticalPoints, NumberOf(c))
		b.entry("critical point", b.v+" = "+symbolic.FormatComplex(c), "")
	}
	switch {
	case res.Vanishing:
		b.warn("%s is identically zero; every point is stationary", derivLabel(1, b.v))
	case len(res.CriticalPoints) == 0:
		b.warn("no critical points found")
	}
	for _, o := range res.Classified {
		pr := pointReport(o, "local ")
		payload.Points = append(payload.Points, pr)
		b.entry("local extremum", pr.describe(b.v), "")
		if o.Point != nil {
			b.mark("critical point", o.Point.Location, o.Point.Value)
		}
	}
	b.rep.Local = payload
	b.rep.Title = fmt.Sprintf("%s and derivatives with critical points", b.fx())
	b.plotWithDerivatives(b.e.opts.PlotMin, b.e.opts.PlotMax)
	return nil
}

func (b *builder) global(ctx context.Context, a GlobalExtremaRequest) error {
	res, err := b.e.search().Global(ctx, b.f, b.v, a.Interval)
	if err != nil {
		return err
	}
	payload := &GlobalPayload{A: a.Interval.A, B: a.Interval.B}
	if res.Vanishing {
		b.warn("%s is identically zero; every point is stationary", derivLabel(1, b.v))
	}
	for _, c := range res.Candidates {
		payload.Candidates = append(payload.Candidates, NumberOf(c))
	}
	for _, o := range res.Dropped {
		b.warn("candidate %s dropped: %v", symbolic.FormatComplex(o.Location), o.Err)
	}
	for _, ev := range res.Evaluated {
		er := ExtremumPayload{Location: NumberOf(ev.Location), Value: NumberOf(ev.Value)}
		payload.Evaluated = append(payload.Evaluated, er)
		b.entry("candidate", fmt.Sprintf("%s = %s, %s = %s", b.v, er.Location.Text, b.fx(), er.Value.Text), "")
		b.mark("global extremum", ev.Location, ev.Value)
	}
	if res.Status != nil {
		payload.Status = res.Status.Error()
		b.warn("no real or complex extrema could be evaluated on [%s, %s]",
			symbolic.FormatFloat(a.Interval.A), symbolic.FormatFloat(a.Interval.B))
	} else {
		lo := ExtremumPayload{Location: NumberOf(res.Min.Location), Value: NumberOf(res.Min.Value)}
		hi := ExtremumPayload{Location: NumberOf(res.Max.Location), Value: NumberOf(res.Max.Value)}
		payload.Min, payload.Max = &lo, &hi
		b.entry("global minimum", fmt.Sprintf("f(%s) = %s", lo.Location.Text, lo.Value.Text), "")
		b.entry("global maximum", fmt.Sprintf("f(%s) = %s", hi.Location.Text, hi.Value.Text), "")
		for _, o := range res.Classified {
			pr := pointReport(o, "global ")
			payload.Points = append(payload.Points, pr)
			b.entry("global extremum", pr.describe(b.v), "")
		}
	}
	b.rep.Global = payload
	b.rep.Title = fmt.Sprintf("%s and derivatives on [%s, %s]", b.fx(),
		symbolic.FormatFloat(a.Interval.A), symbolic.FormatFloat(a.Interval.B))
	b.plotWithDerivatives(a.Interval.A, a.Interval.B)
	return nil
}

func (b *builder) plotWithDerivatives(lo, hi float64) {
	d1 := symbolic.Diff(b.f, b.v)
	d2 := symbolic.Diff(d1, b.v)
	b.plot(b.fx(), b.f, lo, hi)
	b.plot(derivLabel(1, b.v), d1, lo, hi)
	b.plot(derivLabel(2, b.v), d2, lo, hi)
}

// mark records (Re loc, Re value), the projection the charts draw.
func (b *builder) mark(label string, loc, val complex128) {
	b.rep.Marks = append(b.rep.Marks, render.Mark{Label: label, X: real(loc), Y: real(val)})
}

func dirSuffix(d symbolic.Direction) string {
	switch d {
	case symbolic.FromLeft:
		return "-"
	case symbolic.FromRight:
		return "+"
	}
	return ""
}

func directionName(d symbolic.Direction) string {
	switch d {
	case symbolic.FromLeft:
		return "left"
	case symbolic.FromRight:
		return "right"
	}
	return "both"
}

func derivLabel(order int, v string) string {
	switch order {
	case 1:
		return "f'(" + v + ")"
	case 2:
		return "f''(" + v + ")"
	case 3:
		return "f'''(" + v + ")"
	}
	return fmt.Sprintf("f^(%d)(%s)", order, v)
}
