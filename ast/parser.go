// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jreader"
)

// Parse parses and returns the JSON values from r. In case of error, any
// complete values already parsed are returned along with the error.
// More than one value is only possible if opts.Lenient is true.
func Parse(r io.Reader, opts jreader.Options) ([]Value, error) {
	return ParseReader(jreader.NewReaderWithOptions(r, opts))
}

// ParseReader parses and returns the remaining JSON values from r.
func ParseReader(r *jreader.Reader) ([]Value, error) {
	h := new(parseHandler)
	var vs []Value
	for {
		if err := jreader.Walk(r, h); err == io.EOF {
			return vs, nil
		} else if err != nil {
			return vs, err
		}
		if h.result == nil {
			return vs, errors.New("incomplete value")
		}
		vs = append(vs, h.result)
		h.result = nil
	}
}

// ParseSingle parses and returns a single strict JSON value from r. It is an
// error if the input is empty or contains anything after the value.
func ParseSingle(r io.Reader) (Value, error) {
	rd := jreader.NewReader(r)
	h := new(parseHandler)
	if err := jreader.Walk(rd, h); err == io.EOF {
		return nil, fmt.Errorf("no JSON value: %w", jreader.ErrPrematureEnd)
	} else if err != nil {
		return nil, err
	}
	if _, err := rd.Peek(); err != nil {
		return nil, err
	}
	return h.result, nil
}

// A parseHandler implements the jreader.Handler interface to construct
// abstract syntax trees for JSON values. Containers under construction are
// held on the stack by pointer.
type parseHandler struct {
	stk    []Value
	result Value
}

func (h *parseHandler) reduce() error {
	switch v := h.pop().(type) {
	case *Object:
		return h.reduceValue(*v)
	case *Array:
		return h.reduceValue(*v)
	default:
		return fmt.Errorf("unexpected %T on stack", v)
	}
}

func (h *parseHandler) reduceValue(v Value) error {
	if len(h.stk) == 0 {
		h.result = v
		return nil
	}
	switch prev := h.top().(type) {
	case *Member:
		prev.Value = v
	case *Array:
		*prev = append(*prev, v)
	default:
		return fmt.Errorf("unexpected value in %T", prev)
	}
	return nil
}

func (h *parseHandler) top() Value { return h.stk[len(h.stk)-1] }

func (h *parseHandler) pop() Value {
	last := h.top()
	h.stk = h.stk[:len(h.stk)-1]
	return last
}

func (h *parseHandler) push(v Value) { h.stk = append(h.stk, v) }

func (h *parseHandler) BeginObject(loc jreader.Anchor) error {
	h.push(new(Object))
	return nil
}

func (h *parseHandler) EndObject(loc jreader.Anchor) error { return h.reduce() }

func (h *parseHandler) BeginArray(loc jreader.Anchor) error {
	h.push(new(Array))
	return nil
}

func (h *parseHandler) EndArray(loc jreader.Anchor) error { return h.reduce() }

func (h *parseHandler) BeginMember(loc jreader.Anchor) error {
	// The object this member belongs to is atop the stack.  Add the new
	// member to it eagerly, so the value need only be filled in when known.
	mem := &Member{Key: loc.Token().Text}
	obj := h.top().(*Object)
	*obj = append(*obj, mem)
	h.push(mem)
	return nil
}

func (h *parseHandler) EndMember(loc jreader.Anchor) error {
	h.pop()
	return nil
}

func (h *parseHandler) Value(loc jreader.Anchor) error {
	tok := loc.Token()
	switch tok.Kind {
	case jreader.StringValue:
		return h.reduceValue(String(tok.Text))
	case jreader.NumberValue:
		return h.reduceValue(Number{text: tok.Text})
	case jreader.BoolValue:
		return h.reduceValue(Bool(tok.Bool()))
	case jreader.NullValue:
		return h.reduceValue(Null)
	default:
		return fmt.Errorf("unknown value %v", tok)
	}
}

func (h *parseHandler) EndOfInput(loc jreader.Anchor) {}
