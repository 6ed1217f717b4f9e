// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package cursor_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jreader"
	"github.com/creachadair/jreader/ast"
	"github.com/creachadair/jreader/ast/cursor"
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

func mustParse(t *testing.T) ast.Value {
	t.Helper()
	v, err := ast.ParseSingle(strings.NewReader(testJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return v
}

func TestCursor(t *testing.T) {
	v := mustParse(t)
	obj := v.(ast.Object)

	tests := []struct {
		name string
		path []any
		want ast.Value
		loc  string
		fail bool
	}{
		{"NilInput", nil, v, "$", false},
		{"NoMatch", []any{"nonesuch"}, v, "$", true},
		{"WrongType", []any{11}, v, "$", true},

		{"ArrayPos", []any{"list", 1},
			obj.Find("list").Value.(ast.Array)[1],
			"$.list[1]", false,
		},
		{"ArrayNeg", []any{"list", -1},
			obj.Find("list").Value.(ast.Array)[1],
			"$.list[1]", false,
		},
		{"ArrayRange", []any{"o", 25},
			obj.Find("o").Value,
			"$.o", true,
		},
		{"ObjPath", []any{"xyz", "d"},
			obj.Find("xyz").Value.(ast.Object).Find("d").Value,
			"$.xyz.d", false,
		},
		{"ObjIndex", []any{"xyz", -1},
			obj.Find("xyz").Value.(ast.Object).Find("q").Value,
			"$.xyz.q", false,
		},

		{"FuncArray", []any{"o", testPathFunc}, ast.ToValue(2), "$.o", false},
		{"FuncObj", []any{"xyz", testPathFunc}, ast.ToValue(3), "$.xyz", false},
		{"FuncWrong", []any{"xyz", "d", testPathFunc},
			obj.Find("xyz").Value.(ast.Object).Find("d").Value,
			"$.xyz.d", true,
		},
		{"BadElement", []any{"list", 1.5}, obj.Find("list").Value, "$.list", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cursor.New(v).Down(tc.path...)
			if err := c.Err(); err != nil {
				if tc.fail {
					t.Logf("Got expected error: %v", err)
				} else {
					t.Fatalf("Down: unexpected error: %v", err)
				}
			} else if tc.fail {
				t.Errorf("Down: got %s, want error", c.Value().JSON())
			}
			if diff := cmp.Diff(c.Value(), tc.want, valueOpt); diff != "" {
				t.Errorf("Wrong result (-got, +want):\n%s", diff)
			}
			if got := c.Path(); got != tc.loc {
				t.Errorf("Path: got %q, want %q", got, tc.loc)
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

func TestCursorMoves(t *testing.T) {
	v := mustParse(t)
	c := cursor.New(v)
	if !c.AtOrigin() {
		t.Error("New cursor is not at its origin")
	}

	c.Down("list", 0, "x")
	if got, want := c.Value().JSON(), "1"; got != want {
		t.Errorf("Value: got %s, want %s", got, want)
	}
	if got := len(c.Values()); got != 4 {
		t.Errorf("Values: got %d entries, want 4", got)
	}

	c.Up().Up()
	if got, want := c.Path(), "$.list"; got != want {
		t.Errorf("Path after Up: got %q, want %q", got, want)
	}
	c.Down(-1, "x")
	if got, want := c.Path(), "$.list[1].x"; got != want {
		t.Errorf("Path after Down: got %q, want %q", got, want)
	}

	c.Up().Up().Up().Up().Up()
	if !c.AtOrigin() {
		t.Errorf("Cursor at %q, want origin", c.Path())
	}

	c.Down("nonesuch")
	if c.Err() == nil {
		t.Error("Down: got nil error, want error")
	}
	c.Reset()
	if c.Err() != nil || !c.AtOrigin() {
		t.Errorf("Reset: err=%v, path=%q", c.Err(), c.Path())
	}
	if diff := cmp.Diff(v, c.Origin(), valueOpt); diff != "" {
		t.Errorf("Origin (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(v, c.Value(), valueOpt); diff != "" {
		t.Errorf("Value at origin (-want, +got):\n%s", diff)
	}
}

func TestSeek(t *testing.T) {
	v := mustParse(t)
	tests := []struct {
		proj string
		want string
		fail bool
	}{
		{"$", testJSON, false},
		{"$.list[0].x", "1", false},
		{"$.y.hello", `"there"`, false},
		{"$.o[1]", `"yourself"`, false},
		{"$.xyz.", "", false},
		{"$.list[5]", "", true},
		{"$.y[0]", "", true},
		{"$.o.hi", "", true},
		{"$.nonesuch", "", true},
		{"$.[x", "", true},
	}
	for _, tc := range tests {
		c := cursor.New(v).Seek(tc.proj)
		if err := c.Err(); err != nil {
			if !tc.fail {
				t.Errorf("Seek %q: unexpected error: %v", tc.proj, err)
			}
			continue
		} else if tc.fail {
			t.Errorf("Seek %q: got %s, want error", tc.proj, c.Value().JSON())
			continue
		}
		if tc.want == "" {
			continue
		}
		want, err := ast.ParseSingle(strings.NewReader(tc.want))
		if err != nil {
			t.Fatalf("Parse %q: %v", tc.want, err)
		}
		if diff := cmp.Diff(want, c.Value(), valueOpt); diff != "" {
			t.Errorf("Seek %q (-want, +got):\n%s", tc.proj, diff)
		}
	}
}

// Every path reported by a reader locates the corresponding value in the
// parsed tree.
func TestSeekReaderPaths(t *testing.T) {
	v := mustParse(t)
	r := jreader.NewReader(strings.NewReader(testJSON))
	var n int
	for {
		tok, err := r.Peek()
		if err != nil {
			t.Fatalf("Peek: %v", err)
		}
		switch tok {
		case jreader.BeginObject:
			must(t, r.BeginObject())
		case jreader.EndObject:
			must(t, r.EndObject())
		case jreader.BeginArray:
			must(t, r.BeginArray())
		case jreader.EndArray:
			must(t, r.EndArray())
		case jreader.MemberName:
			_, err := r.NextName()
			must(t, err)
		case jreader.EndDocument:
			if n == 0 {
				t.Error("No scalar values were checked")
			}
			return
		default:
			path := r.Path()
			got, err := cursor.Seek[ast.Value](v, path)
			if err != nil {
				t.Fatalf("Seek %q: %v", path, err)
			}
			text, err := scalarText(r, tok)
			must(t, err)
			if got.JSON() != text {
				t.Errorf("Seek %q: got %s, want %s", path, got.JSON(), text)
			}
			n++
		}
	}
}

func scalarText(r *jreader.Reader, tok jreader.Kind) (string, error) {
	switch tok {
	case jreader.StringValue:
		s, err := r.NextString()
		return ast.String(s).JSON(), err
	case jreader.NumberValue:
		z, err := r.NextInt()
		return ast.Int(int64(z)).JSON(), err
	case jreader.BoolValue:
		b, err := r.NextBool()
		return ast.Bool(b).JSON(), err
	default:
		return "null", r.NextNull()
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestPathGeneric(t *testing.T) {
	v := mustParse(t)
	s, err := cursor.Path[ast.String](v, "y", "hello")
	if err != nil {
		t.Fatalf("Path: %v", err)
	} else if s != "there" {
		t.Errorf("Path: got %q, want %q", s, "there")
	}
	if got, err := cursor.Path[ast.Array](v, "y"); err == nil {
		t.Errorf("Path: got %v, want type error", got)
	}
	if got, err := cursor.Seek[ast.Bool](v, "$.xyz.q"); err != nil || got {
		t.Errorf("Seek: got %v, %v; want false, nil", got, err)
	}
}
