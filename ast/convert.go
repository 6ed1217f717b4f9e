// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ToValue converts a Go value into an equivalent Value. The input must be a
// Value, nil, bool, string, an int type, a float type, json.Number, []any,
// or map[string]any. Object members constructed from a map are ordered by
// key. ToValue panics for any other type.
func ToValue(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return Null
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		return Number{text: string(t)}
	case []any:
		out := make(Array, len(t))
		for i, elt := range t {
			out[i] = ToValue(elt)
		}
		return out
	case map[string]any:
		out := make(Object, 0, len(t))
		for _, key := range slices.Sorted(maps.Keys(t)) {
			out = append(out, Field(key, t[key]))
		}
		return out
	default:
		panic(fmt.Sprintf("invalid value %T", v))
	}
}

// ToAny converts v into a plain Go value of the kind produced by the
// encoding/json package: objects become map[string]any, arrays []any, and
// numbers float64. Numbers that float64 cannot represent exactly lose
// precision; Select keeps their text instead. If an object has duplicate
// keys, the last one wins.
func ToAny(v Value) any {
	switch t := v.(type) {
	case Object:
		out := make(map[string]any, len(t))
		for _, m := range t {
			out[m.Key] = ToAny(m.Value)
		}
		return out
	case *Member:
		return ToAny(t.Value)
	case Array:
		out := make([]any, len(t))
		for i, elt := range t {
			out[i] = ToAny(elt)
		}
		return out
	case String:
		return string(t)
	case Number:
		return t.Float64()
	case Bool:
		return bool(t)
	default:
		return nil
	}
}

// Path traverses a sequential path through the structure of a value starting
// at v, where path elements are either strings (denoting object keys) or
// integers (denoting offsets into arrays).  If the path is valid, the element
// reached is returned. In case of error, the input v is returned along with
// the error.
//
// If a path element is an integer, negative indices count backward from the
// end of the array (-1 is last, -2 second last, etc.).
//
// If a path element is a function, the function is executed and its result
// becomes the next object in the sequence. The function must have a signature
//
//	func(ast.Value) (ast.Value, error)
func Path(v Value, path ...any) (Value, error) {
	cur := v
	for _, elt := range path {
		if m, ok := cur.(*Member); ok {
			cur = m.Value
		}
		switch t := elt.(type) {
		case string:
			c, ok := cur.(Object)
			if !ok {
				return v, fmt.Errorf("cannot traverse %T with %q", cur, elt)
			}
			m := c.Find(t)
			if m == nil {
				return v, fmt.Errorf("key %q not found", t)
			}
			cur = m.Value
		case int:
			c, ok := cur.(Array)
			if !ok {
				return v, fmt.Errorf("cannot traverse %T with %v", cur, elt)
			}
			i, ok := fixArrayBound(len(c), t)
			if !ok {
				return v, fmt.Errorf("array index %d out of bounds (n=%d)", t, len(c))
			}
			cur = c[i]
		case func(Value) (Value, error):
			next, err := t(cur)
			if err != nil {
				return v, err
			}
			cur = next
		default:
			return v, fmt.Errorf("invalid path element %T", elt)
		}
	}
	return cur, nil
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
