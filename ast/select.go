// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/theory/jsonpath"
)

// Select evaluates the RFC 9535 JSONPath query expr against v and returns the
// selected nodes as plain Go values. These are as for ToAny, except that
// numbers are json.Number values holding the original text, so that ToValue
// restores them exactly.
func Select(v Value, expr string) ([]any, error) {
	p, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}
	return p.Select(selectValue(v)), nil
}

func selectValue(v Value) any {
	switch t := v.(type) {
	case Object:
		out := make(map[string]any, len(t))
		for _, m := range t {
			out[m.Key] = selectValue(m.Value)
		}
		return out
	case Array:
		out := make([]any, len(t))
		for i, elt := range t {
			out[i] = selectValue(elt)
		}
		return out
	case Number:
		return json.Number(t.text)
	default:
		return ToAny(v)
	}
}

// ToYAML renders v as a YAML document. Object members keep their order.
func ToYAML(v Value) ([]byte, error) {
	out, err := yaml.Marshal(yamlValue(v))
	if err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return out, nil
}

func yamlValue(v Value) any {
	switch t := v.(type) {
	case Object:
		out := make(yaml.MapSlice, len(t))
		for i, m := range t {
			out[i] = yaml.MapItem{Key: m.Key, Value: yamlValue(m.Value)}
		}
		return out
	case Array:
		out := make([]any, len(t))
		for i, elt := range t {
			out[i] = yamlValue(elt)
		}
		return out
	case Number:
		if t.IsInt() {
			return t.Int64()
		} else if u, err := strconv.ParseUint(t.text, 10, 64); err == nil {
			return u
		}
		return t.Float64()
	default:
		return ToAny(v)
	}
}
