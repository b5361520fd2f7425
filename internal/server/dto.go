package server

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/njchilds90/gocalculus/analysis"
	"github.com/njchilds90/gocalculus/symbolic"
)

// AnalyzeRequest is the JSON body of /api/v1/analyze and /api/v1/plot.
// Either expression (text) or tree (a JSON expression tree) is required.
type AnalyzeRequest struct {
	ID         string                 `json:"id,omitempty" validate:"omitempty,max=64"`
	Expression string                 `json:"expression,omitempty" validate:"required_without=Tree,max=4096"`
	Tree       map[string]interface{} `json:"tree,omitempty" validate:"required_without=Expression"`
	Variable   string                 `json:"variable,omitempty" validate:"omitempty,max=32"`
	Analysis   string                 `json:"analysis" validate:"required,oneof=limit derivative continuity local global"`
	Point      *float64               `json:"point,omitempty"`
	Direction  string                 `json:"direction,omitempty" validate:"omitempty,oneof=both left right"`
	Order      *int                   `json:"order,omitempty" validate:"required_if=Analysis derivative"`
	A          *float64               `json:"a,omitempty" validate:"required_if=Analysis global"`
	B          *float64               `json:"b,omitempty" validate:"required_if=Analysis global"`
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists every rule the body broke.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s (%s)", f.Field, f.Rule)
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateRequest(v *validator.Validate, req *AnalyzeRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// toRequest converts a validated body into an analysis request.
func (r *AnalyzeRequest) toRequest() (analysis.Request, error) {
	req := analysis.Request{ID: r.ID, Expression: r.Expression, Variable: r.Variable}
	if r.Expression == "" && r.Tree != nil {
		e, err := symbolic.FromJSON(r.Tree)
		if err != nil {
			return req, &ValidationError{Fields: []FieldError{{Field: "tree", Rule: err.Error()}}}
		}
		req.Expr = e
	}
	kind := analysis.Kind(r.Analysis)
	if r.Point == nil && (kind == analysis.KindLimit || kind == analysis.KindContinuity) {
		return req, &ValidationError{Fields: []FieldError{{Field: "point", Rule: "required_if"}}}
	}
	switch kind {
	case analysis.KindLimit:
		dir, err := symbolic.ParseDirection(r.Direction)
		if err != nil {
			return req, err
		}
		req.Analysis = analysis.LimitRequest{Point: *r.Point, Direction: dir}
	case analysis.KindDerivative:
		req.Analysis = analysis.DerivativeRequest{Order: *r.Order}
	case analysis.KindContinuity:
		req.Analysis = analysis.ContinuityRequest{Point: *r.Point}
	case analysis.KindLocal:
		req.Analysis = analysis.LocalExtremaRequest{}
	case analysis.KindGlobal:
		req.Analysis = analysis.GlobalExtremaRequest{Interval: analysis.Interval{A: *r.A, B: *r.B}}
	default:
		return req, fmt.Errorf("unknown analysis %q", r.Analysis)
	}
	return req, nil
}
