// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jreader

import (
	"io"
)

// An Anchor describes the position of a parse event. The Anchor passed to a
// Handler method is only valid for the duration of that call.
type Anchor interface {
	Token() Token       // Returns the token that triggered the event
	Path() string       // Returns the path projection of the event
	Location() Location // Returns the location of the token in the input
}

// A Handler handles events from walking the values of a Reader. If a method
// reports an error, the walk stops and that error is returned to the caller.
// Walk ensures objects and arrays are correctly balanced.
//
// The Path of each event is the path of the value the event concerns: for
// BeginObject and EndObject the path of the object itself, for BeginMember
// and EndMember the path of the member, and for Value the path of the value.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose name is at loc.  The name is decoded,
	// and is available as the text of the token.
	BeginMember(loc Anchor) error

	// End the current object member. The location is that of its value.
	EndMember(loc Anchor) error

	// Report a scalar value at the given location.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// Walk reads a single value from r and delivers events to h until the value
// is complete or an error occurs. If no further value is available from r,
// Walk calls h.EndOfInput and returns io.EOF.
func Walk(r *Reader, h Handler) (err error) {
	defer recoverWalkError(&err)

	w := walker{r: r, h: h}
	if k := w.peek(); k == EndDocument {
		h.EndOfInput(w.anchor(Token{Kind: EndDocument}, r.Path()))
		return io.EOF
	}
	w.walkValue()
	return nil
}

// WalkAll calls Walk repeatedly until the input of r is exhausted or an error
// occurs. A strict reader will report an error if the input contains more
// than one value.
func WalkAll(r *Reader, h Handler) error {
	for {
		if err := Walk(r, h); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

type walker struct {
	r *Reader
	h Handler
}

// walkValue consumes a single value of any type.
func (w walker) walkValue() {
	path := w.r.Path()
	tok := w.next()
	switch tok.Kind {
	case BeginObject:
		w.check(w.h.BeginObject(w.anchor(tok, path)))
		for w.peek() != EndObject {
			name := w.next()
			mpath := w.r.Path()
			w.check(w.h.BeginMember(w.anchor(name, mpath)))
			w.walkValue()
			w.check(w.h.EndMember(w.anchor(name, mpath)))
		}
		w.check(w.h.EndObject(w.anchor(w.next(), path)))
	case BeginArray:
		w.check(w.h.BeginArray(w.anchor(tok, path)))
		for w.peek() != EndArray {
			w.walkValue()
		}
		w.check(w.h.EndArray(w.anchor(w.next(), path)))
	default:
		w.check(w.h.Value(w.anchor(tok, path)))
	}
}

func (w walker) peek() Kind {
	k, err := w.r.Peek()
	w.check(err)
	return k
}

func (w walker) next() Token {
	tok, err := w.r.Next()
	w.check(err)
	return tok
}

func (w walker) anchor(tok Token, path string) Anchor {
	return anchor{tok: tok, path: path, loc: w.r.Location()}
}

func (w walker) check(err error) {
	if err != nil {
		panic(walkError{err})
	}
}

type walkError struct{ error }

func recoverWalkError(errp *error) {
	if x := recover(); x != nil {
		if err, ok := x.(walkError); ok {
			*errp = err.error
			return
		}
		panic(x)
	}
}

type anchor struct {
	tok  Token
	path string
	loc  Location
}

func (a anchor) Token() Token       { return a.tok }
func (a anchor) Path() string       { return a.path }
func (a anchor) Location() Location { return a.loc }
