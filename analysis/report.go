package analysis

import (
	"fmt"

	"github.com/njchilds90/gocalculus/render"
	"github.com/njchilds90/gocalculus/symbolic"
)

// Report is the presentation-ready result of one analysis. Exactly one of
// the typed payloads is set, matching Kind.
type Report struct {
	ID         string                 `json:"id"`
	Kind       Kind                   `json:"kind"`
	Expression string                 `json:"expression"`
	Tree       map[string]interface{} `json:"tree,omitempty"`
	Variable   string                 `json:"variable"`
	Title      string                 `json:"title"`
	Entries    []Entry                `json:"entries"`
	Marks      []render.Mark          `json:"marks,omitempty"`
	Series     []render.Series        `json:"series,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`

	Limit       *LimitPayload       `json:"limit,omitempty"`
	Derivatives []DerivativePayload `json:"derivatives,omitempty"`
	Continuity  *ContinuityPayload  `json:"continuity,omitempty"`
	Local       *LocalPayload       `json:"local,omitempty"`
	Global      *GlobalPayload      `json:"global,omitempty"`
}

// Entry is one displayable line of a report.
type Entry struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	LaTeX string `json:"latex,omitempty"`
}

// Figure converts the report's series and marks into a drawable figure.
func (r *Report) Figure() render.Figure {
	return render.Figure{
		Title:    r.Title,
		Variable: r.Variable,
		Series:   r.Series,
		Marks:    r.Marks,
	}
}

// Number is a complex value in JSON-friendly form.
type Number struct {
	Re   float64 `json:"re"`
	Im   float64 `json:"im"`
	Text string  `json:"text"`
}

// NumberOf converts z.
func NumberOf(z complex128) Number {
	return Number{Re: real(z), Im: imag(z), Text: symbolic.FormatComplex(z)}
}

func (n Number) Complex() complex128 { return complex(n.Re, n.Im) }

type LimitPayload struct {
	Point     float64 `json:"point"`
	Direction string  `json:"direction"`
	Exists    bool    `json:"exists"`
	Value     string  `json:"value,omitempty"`
	LaTeX     string  `json:"latex,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

type DerivativePayload struct {
	Order int    `json:"order"`
	Expr  string `json:"expr"`
	LaTeX string `json:"latex"`
}

type ContinuityPayload struct {
	Point      float64 `json:"point"`
	Left       string  `json:"left"`
	Right      string  `json:"right"`
	Value      string  `json:"value"`
	Continuous bool    `json:"continuous"`
}

// PointReport is a classified candidate, or the reason it could not be
// classified.
type PointReport struct {
	Location  Number  `json:"location"`
	Value     *Number `json:"value,omitempty"`
	Curvature *Number `json:"curvature,omitempty"`
	Kind      string  `json:"kind,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func pointReport(o Outcome, scope string) PointReport {
	pr := PointReport{Location: NumberOf(o.Location)}
	if o.Err != nil {
		pr.Error = o.Err.Error()
		return pr
	}
	v, c := NumberOf(o.Point.Value), NumberOf(o.Point.Curvature)
	pr.Value, pr.Curvature = &v, &c
	switch k := o.Point.Kind(); k {
	case Minimum, Maximum:
		pr.Kind = scope + k.String()
	default:
		pr.Kind = k.String()
	}
	return pr
}

func (pr PointReport) describe(v string) string {
	if pr.Error != "" {
		return fmt.Sprintf("%s = %s: %s", v, pr.Location.Text, pr.Error)
	}
	return fmt.Sprintf("%s = %s, f(%s) = %s: %s", v, pr.Location.Text, v, pr.Value.Text, pr.Kind)
}

type LocalPayload struct {
	CriticalPoints []Number      `json:"critical_points"`
	ClosedForm     bool          `json:"closed_form"`
	Points         []PointReport `json:"points"`
}

type ExtremumPayload struct {
	Location Number `json:"location"`
	Value    Number `json:"value"`
}

type GlobalPayload struct {
	A          float64           `json:"a"`
	B          float64           `json:"b"`
	Candidates []Number          `json:"candidates"`
	Evaluated  []ExtremumPayload `json:"evaluated"`
	Min        *ExtremumPayload  `json:"min,omitempty"`
	Max        *ExtremumPayload  `json:"max,omitempty"`
	Points     []PointReport     `json:"points,omitempty"`
	Status     string            `json:"status,omitempty"`
}
