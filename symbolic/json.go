package symbolic

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes e as a tree of {"type": ...} objects.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// Tree returns the JSON-ready form of e, for embedding in larger documents.
func Tree(e Expr) map[string]interface{} { return e.toJSON() }

// maxTreeDepth bounds nesting the same way the parser does.
const maxTreeDepth = maxParseDepth

// FromJSON rebuilds an expression from the form produced by ToJSON or Tree.
// Function names are restricted to the ones the kernel can evaluate.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	return decodeNode(data, 0)
}

// node is one object of an encoded tree.
type node struct {
	typ  string
	data map[string]interface{}
}

func (n node) child(field string, depth int) (Expr, error) {
	v, ok := n.data[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q", n.typ, field)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an object", n.typ, field)
	}
	e, err := decodeNode(m, depth+1)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", n.typ, field, err)
	}
	return e, nil
}

// children accepts both []interface{} (decoded JSON) and
// []map[string]interface{} (the output of Tree).
func (n node) children(field string, depth int) ([]Expr, error) {
	v, ok := n.data[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q", n.typ, field)
	}
	var objs []map[string]interface{}
	switch raw := v.(type) {
	case []map[string]interface{}:
		objs = raw
	case []interface{}:
		objs = make([]map[string]interface{}, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", n.typ, field, i)
			}
			objs[i] = m
		}
	default:
		return nil, fmt.Errorf("%s: %q must be an array", n.typ, field)
	}
	if len(objs) == 0 {
		return nil, fmt.Errorf("%s: %q is empty", n.typ, field)
	}
	out := make([]Expr, len(objs))
	for i, m := range objs {
		e, err := decodeNode(m, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d]: %w", n.typ, field, i, err)
		}
		out[i] = e
	}
	return out, nil
}

func (n node) str(field string) (string, error) {
	s, ok := n.data[field].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: %q must be a non-empty string", n.typ, field)
	}
	return s, nil
}

func decodeNode(data map[string]interface{}, depth int) (Expr, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("expression nested deeper than %d levels", maxTreeDepth)
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}
	n := node{typ: typ, data: data}

	switch typ {
	case "num":
		val, err := n.str("value")
		if err != nil {
			return nil, err
		}
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, fmt.Errorf("num: invalid value %q", val)
		}
		inexact, _ := data["inexact"].(bool)
		return &Num{val: r, inexact: inexact}, nil

	case "sym":
		name, err := n.str("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "const":
		name, err := n.str("name")
		if err != nil {
			return nil, err
		}
		c, ok := constByName(name)
		if !ok {
			return nil, fmt.Errorf("const: unknown constant %q", name)
		}
		return c, nil

	case "inf":
		sign := 1
		switch s := data["sign"].(type) {
		case float64:
			if s < 0 {
				sign = -1
			}
		case int:
			if s < 0 {
				sign = -1
			}
		}
		return Infinity(sign), nil

	case "undefined":
		return Undef(), nil

	case "add":
		terms, err := n.children("terms", depth)
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := n.children("factors", depth)
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := n.child("base", depth)
		if err != nil {
			return nil, err
		}
		exp, err := n.child("exp", depth)
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := n.str("name")
		if err != nil {
			return nil, err
		}
		ctor, ok := knownFuncs[name]
		if !ok {
			return nil, fmt.Errorf("func: unknown function %q", name)
		}
		arg, err := n.child("arg", depth)
		if err != nil {
			return nil, err
		}
		return ctor(arg), nil
	}
	return nil, fmt.Errorf("unknown expression type %q", typ)
}
