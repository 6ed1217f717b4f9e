// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/creachadair/jreader/ast"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": 2
    }
  ],
  "y": {
    "hello": "there"
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  }
}`

var valueOpt = cmp.AllowUnexported(ast.Number{})

func mustParse(t *testing.T, input string) ast.Value {
	t.Helper()
	v, err := ast.ParseSingle(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return v
}

func TestPath(t *testing.T) {
	v := mustParse(t, testJSON)

	tests := []struct {
		name string
		path []any
		want ast.Value
		fail bool
	}{
		{"NilInput", nil, v, false},
		{"NoMatch", []any{"nonesuch"}, v, true},
		{"WrongType", []any{11}, v, true},

		{"ArrayPos", []any{"list", 1},
			v.(ast.Object).Find("list").Value.(ast.Array)[1],
			false,
		},
		{"ArrayNeg", []any{"list", -1},
			v.(ast.Object).Find("list").Value.(ast.Array)[1],
			false,
		},
		{"ArrayRange", []any{"o", 25}, v, true},
		{"ObjPath", []any{"xyz", "d"},
			v.(ast.Object).Find("xyz").Value.(ast.Object).Find("d").Value,
			false,
		},

		{"FuncArray", []any{"o", testPathFunc}, ast.ToValue(2), false},
		{"FuncObj", []any{"xyz", testPathFunc}, ast.ToValue(3), false},
		{"FuncWrong", []any{"xyz", "d", testPathFunc}, v, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ast.Path(v, tc.path...)
			if err != nil {
				if tc.fail {
					t.Logf("Got expected error: %v", err)
				} else {
					t.Fatalf("Path: unexpected error: %v", err)
				}
			} else if tc.fail {
				t.Errorf("Path: got %s, want error", got.JSON())
			}
			if diff := cmp.Diff(got, tc.want, valueOpt); diff != "" {
				t.Errorf("Wrong result (-got, +want):\n%s", diff)
			} else if err == nil {
				t.Logf("Found %s OK", got.JSON())
			}
		})
	}
}

func testPathFunc(v ast.Value) (ast.Value, error) {
	if ln, ok := v.(interface{ Len() int }); ok {
		return ast.ToValue(ln.Len()), nil
	}
	return nil, errors.New("not a thing with length")
}

func TestToValue(t *testing.T) {
	got := ast.ToValue(map[string]any{
		"b": []any{1, 2.5, "three", nil, true},
		"a": map[string]any{"z": false},
	})
	const want = `{"a":{"z":false},"b":[1,2.5,"three",null,true]}`
	if s := got.JSON(); s != want {
		t.Errorf("ToValue: got %s, want %s", s, want)
	}

	mtest.MustPanic(t, func() { ast.ToValue(struct{}{}) })
	mtest.MustPanic(t, func() { ast.ToValue([]bool{true}) })
}

func TestToAny(t *testing.T) {
	v := mustParse(t, `{"a":[1,"x",true,null,{"b":-2.5}],"a2":{}}`)
	want := map[string]any{
		"a":  []any{1.0, "x", true, nil, map[string]any{"b": -2.5}},
		"a2": map[string]any{},
	}
	if diff := cmp.Diff(want, ast.ToAny(v)); diff != "" {
		t.Errorf("ToAny (-want, +got):\n%s", diff)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		input ast.Number
		isInt bool
		z     int64
		f     float64
	}{
		{ast.Int(0), true, 0, 0},
		{ast.Int(-25), true, -25, -25},
		{ast.Float(2.5), false, 2, 2.5},
		{ast.Float(1e15), false, 1e15, 1e15},
		{ast.ToValue(-3.0).(ast.Number), true, -3, -3},
	}
	for _, test := range tests {
		if got := test.input.IsInt(); got != test.isInt {
			t.Errorf("%v IsInt: got %v, want %v", test.input, got, test.isInt)
		}
		if got := test.input.Int64(); got != test.z {
			t.Errorf("%v Int64: got %v, want %v", test.input, got, test.z)
		}
		if got := test.input.Float64(); got != test.f {
			t.Errorf("%v Float64: got %v, want %v", test.input, got, test.f)
		}
	}

	if nan := ast.Float(math.NaN()); nan.JSON() != "NaN" || !math.IsNaN(nan.Float64()) {
		t.Errorf("Float(NaN): got %s (%v)", nan.JSON(), nan.Float64())
	}
	if inf := ast.Float(math.Inf(-1)); inf.JSON() != "-Infinity" || !math.IsInf(inf.Float64(), -1) {
		t.Errorf("Float(-Inf): got %s (%v)", inf.JSON(), inf.Float64())
	}
}

func TestSelect(t *testing.T) {
	v := mustParse(t, `{"store": {"book": [
  {"title": "Sayings of the Century", "price": 8.95},
  {"title": "Moby Dick", "price": 8.99, "isbn": "0-553-21311-3"},
  {"title": "The Lord of the Rings", "price": 22.99, "isbn": "0-395-19395-8"}
], "bicycle": {"color": "red", "price": 399, "serial": 12345678901234567890}}}`)

	tests := []struct {
		expr string
		want []any
	}{
		{"$.store.book[*].title", []any{"Sayings of the Century", "Moby Dick", "The Lord of the Rings"}},
		{"$.store.book[1].isbn", []any{"0-553-21311-3"}},
		{"$.store.book[-1].price", []any{json.Number("22.99")}},
		{"$.store.bicycle.serial", []any{json.Number("12345678901234567890")}},
		{"$.store.book[?@.price < 10].title", []any{"Sayings of the Century", "Moby Dick"}},
		{"$.store.bicycle.color", []any{"red"}},
		{"$.store.nonesuch", nil},
	}
	for _, test := range tests {
		got, err := ast.Select(v, test.expr)
		if err != nil {
			t.Errorf("Select %q: unexpected error: %v", test.expr, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, cmpEmpty); diff != "" {
			t.Errorf("Select %q (-want, +got):\n%s", test.expr, diff)
		}
	}

	// Selected numbers convert back to values without loss.
	got, err := ast.Select(v, "$.store.bicycle")
	if err != nil {
		t.Fatalf("Select: unexpected error: %v", err)
	}
	const want = `{"color":"red","price":399,"serial":12345678901234567890}`
	if len(got) != 1 {
		t.Errorf("Select: got %d results, want 1", len(got))
	} else if s := ast.ToValue(got[0]).JSON(); s != want {
		t.Errorf("Select: got %s, want %s", s, want)
	}

	if got, err := ast.Select(v, "$.store["); err == nil {
		t.Errorf("Select: got %v, want error", got)
	}
}

// cmpEmpty treats nil and empty slices as equal.
var cmpEmpty = cmp.FilterValues(func(a, b []any) bool {
	return len(a) == 0 && len(b) == 0
}, cmp.Comparer(func(a, b []any) bool { return true }))

func TestToYAML(t *testing.T) {
	v := mustParse(t, `{"name":"Jake Wharton","age":31,"score":2.5,"tags":["a","b"],"ok":true,"none":null,"big":12345678901234567890}`)
	got, err := ast.ToYAML(v)
	if err != nil {
		t.Fatalf("ToYAML: unexpected error: %v", err)
	}
	const want = `name: Jake Wharton
age: 31
score: 2.5
tags:
- a
- b
ok: true
none: null
big: 12345678901234567890
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("ToYAML (-want, +got):\n%s", diff)
	}
}
