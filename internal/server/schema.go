package server

import "github.com/njchilds90/gocalculus/analysis"

// Schema describes each analysis as a tool with a JSON input schema, so
// agent frameworks can register the endpoints without reading docs.
func Schema() map[string]interface{} {
	descriptions := map[analysis.Kind]string{
		analysis.KindLimit:      "Limit of f at a point. direction is both, left or right",
		analysis.KindDerivative: "Derivatives of f up to order n",
		analysis.KindContinuity: "Compare both one-sided limits with f(point)",
		analysis.KindLocal:      "Critical points of f classified by the second derivative test",
		analysis.KindGlobal:     "Global minimum and maximum of f on [a, b]",
	}
	extra := map[analysis.Kind]map[string]string{
		analysis.KindLimit:      {"point": "number", "direction": "string"},
		analysis.KindDerivative: {"order": "integer"},
		analysis.KindContinuity: {"point": "number"},
		analysis.KindLocal:      {},
		analysis.KindGlobal:     {"a": "number", "b": "number"},
	}
	required := map[analysis.Kind][]string{
		analysis.KindLimit:      {"expression", "point"},
		analysis.KindDerivative: {"expression", "order"},
		analysis.KindContinuity: {"expression", "point"},
		analysis.KindLocal:      {"expression"},
		analysis.KindGlobal:     {"expression", "a", "b"},
	}

	var tools []map[string]interface{}
	for _, k := range analysis.Kinds() {
		props := map[string]string{"expression": "string", "tree": "object", "variable": "string"}
		for name, typ := range extra[k] {
			props[name] = typ
		}
		tools = append(tools, tool(string(k), descriptions[k], required[k], props))
	}
	return map[string]interface{}{
		"name":    "gocalculus",
		"version": "1.0.0",
		"tools":   tools,
	}
}

func tool(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
