// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the AST of a JSON value, with
// locations expressed as the path projections reported by a jreader.Reader.
package cursor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/jreader/ast"
	"github.com/creachadair/jreader/jpath"
)

// Path traverses a sequential path into the structure of v where path elements
// are as documented for the Cursor.Down method.  This is a convenience wrapper
// for creating a cursor, applying path, and retrieving its value.
func Path[T ast.Value](v ast.Value, path ...any) (T, error) {
	return value[T](New(v).Down(path...))
}

// Seek is a convenience wrapper for creating a cursor, seeking to the
// location described by a path projection, and retrieving its value.
func Seek[T ast.Value](v ast.Value, projection string) (T, error) {
	return value[T](New(v).Seek(projection))
}

func value[T ast.Value](c *Cursor) (T, error) {
	var result T
	if err := c.Err(); err != nil {
		return result, err
	}
	v, ok := c.Value().(T)
	if !ok {
		return result, fmt.Errorf("wrong value type %T", c.Value())
	}
	return v, nil
}

// A Cursor is a pointer that navigates into the structure of an ast.Value.
type Cursor struct {
	org ast.Value
	stk []step
	err error
}

// A step is a single level of descent. The label is the path projection
// step that reached the value, or "" if the value was computed.
type step struct {
	v     ast.Value
	label string
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin ast.Value) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() ast.Value { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() ast.Value {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1].v
}

// Path reports the location of c as a path projection, in the format of
// jreader.Reader.Path. Values produced by path functions do not contribute a
// step to the path.
func (c *Cursor) Path() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, s := range c.stk {
		sb.WriteString(s.label)
	}
	return sb.String()
}

// Values reports the complete sequence of values from the origin to the
// current location in c.
func (c *Cursor) Values() []ast.Value {
	out := []ast.Value{c.org}
	for _, s := range c.stk {
		out = append(out, s.v)
	}
	return out
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() *Cursor { c.stk = c.stk[:0]; c.err = nil; return c }

// Down traverses a sequential path into the structure of c starting from the
// current value, where path elements are either strings (denoting object
// keys), integers (denoting offsets into arrays), or functions (see below).
// If the path cannot be completely consumed, traversal stops and an error is
// recorded. Use Err to recover the error.
//
// If a path element is a string, the corresponding value must be an object,
// and the string resolves the value of the first object member with that
// name.
//
// If a path element is an integer, the corresponding value must be an array or
// object, and the integer resolves to an index in the array or object.
// Negative indices count backward from the end (-1 is last, -2 second last).
// An error is reported if the index is out of bounds.
//
// If a path element is a function, the function is executed and its result
// becomes the next object in the sequence. The function must have a signature
//
//	func(ast.Value) (ast.Value, error)
//
// If the function reports an error, traversal stops and the error is recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Value()
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			e, ok := cur.(ast.Object)
			if !ok {
				return c.setErrorf("cannot traverse %T with %q", cur, elt)
			}
			m := e.Find(t)
			if m == nil {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(m.Value, "."+m.Key)

		case int:
			switch e := cur.(type) {
			case ast.Array:
				i, ok := fixArrayBound(len(e), t)
				if !ok {
					return c.setErrorf("array index %d out of bounds (n=%d)", t, len(e))
				}
				cur = c.push(e[i], "["+strconv.Itoa(i)+"]")
			case ast.Object:
				i, ok := fixArrayBound(len(e), t)
				if !ok {
					return c.setErrorf("object index %d out of bounds (n=%d)", t, len(e))
				}
				cur = c.push(e[i].Value, "."+e[i].Key)
			default:
				return c.setErrorf("cannot traverse %T with %v", cur, elt)
			}

		case func(ast.Value) (ast.Value, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			}
			cur = c.push(next, "")

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

// Seek resets c to its origin and traverses the location described by a path
// projection such as "$.users[0].name". A bare "." step, as reported inside
// an object before any name is read, leaves the cursor at the object.
func (c *Cursor) Seek(projection string) *Cursor {
	c.Reset()
	p, err := jpath.ParseProjection(projection)
	if err != nil {
		return c.setErrorf("invalid projection %q: %v", projection, err)
	}
	for _, s := range p {
		switch s.Op {
		case jpath.Member:
			if s.Arg1 == "" {
				if _, ok := c.Value().(ast.Object); !ok {
					return c.setErrorf("cannot traverse %T with %q", c.Value(), ".")
				}
				continue
			}
			c.Down(s.Arg1)
		case jpath.Index:
			i, _ := strconv.Atoi(s.Arg1)
			if _, ok := c.Value().(ast.Array); !ok {
				return c.setErrorf("cannot traverse %T with [%d]", c.Value(), i)
			}
			c.Down(i)
		}
		if c.err != nil {
			return c
		}
	}
	return c
}

func (c *Cursor) push(v ast.Value, label string) ast.Value {
	c.stk = append(c.stk, step{v: v, label: label})
	return v
}

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
