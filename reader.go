// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jreader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Options carry the configuration settings for a Reader or Writer.
// A zero value is ready for use and selects strict RFC 8259 behavior.
type Options struct {
	// Lenient enables the relaxed grammar. See Reader.SetLenient.
	Lenient bool

	// AllowComments permits comments without enabling the rest of the lenient
	// grammar. Comments are always allowed in lenient mode.
	AllowComments bool

	// Indent, if non-empty, is the per-level indentation used by a Writer.
	// It is ignored by a Reader.
	Indent string
}

// A Reader reads a stream of JSON tokens from an input, one token at a time
// on demand, and tracks the path of the current location in the document.
//
// A Reader holds one token of lookahead. Methods that read a value check the
// kind of the next token before consuming it; if the kind does not suit the
// method, or a number does not fit the requested type, the method reports an
// error and the token is not consumed, so the caller may read it another way.
// Lexical errors, structural errors in the input, and premature end of input
// are terminal: once one is reported, every later call reports it again.
//
// A Reader is not safe for concurrent use by multiple goroutines.
type Reader struct {
	s       *Scanner
	lenient bool
	stack   []frame // stack[0] is the document frame
	ahead   lookahead
	loc     Location // location of the most recently consumed token
	err     error    // terminal error, if any
}

// NewReader constructs a new strict Reader that consumes input from r.
func NewReader(r io.Reader) *Reader { return NewReaderWithScanner(NewScanner(r)) }

// NewReaderWithOptions constructs a new Reader that consumes input from r
// with the settings from opts.
func NewReaderWithOptions(r io.Reader, opts Options) *Reader {
	rd := NewReader(r)
	rd.SetLenient(opts.Lenient)
	rd.AllowComments(opts.AllowComments)
	return rd
}

// NewReaderWithScanner constructs a new Reader that consumes tokens from s.
// The lenient setting of the reader is taken from s.
func NewReaderWithScanner(s *Scanner) *Reader {
	return &Reader{
		s:       s,
		lenient: s.lenient,
		stack:   []frame{{scope: emptyDocument}},
	}
}

// SetLenient configures r to accept (true) or reject (false) the relaxed
// grammar for subsequent reads. In lenient mode the reader accepts:
//
//   - unquoted identifiers as member names and string values
//   - single-quoted strings and unescaped control characters in strings
//   - comments: // ... and # ... to end of line, and /* ... */
//   - the numbers NaN, Infinity, and -Infinity
//   - multiple top-level values in the same input
//   - a trailing comma before "]" or "}"
//   - "=" or "=>" between a name and its value, and ";" between elements
//
// Changing the setting does not validate tokens already read, including a
// token already held as lookahead.
func (r *Reader) SetLenient(ok bool) {
	r.lenient = ok
	r.s.AllowLenient(ok)
}

// Lenient reports whether r is in lenient mode.
func (r *Reader) Lenient() bool { return r.lenient }

// AllowComments configures r to skip (true) or reject (false) comments in
// strict mode. Comments are always skipped in lenient mode.
func (r *Reader) AllowComments(ok bool) { r.s.AllowComments(ok) }

// Err returns the terminal error of r, if any.
func (r *Reader) Err() error { return r.err }

// Location returns the location of the most recently consumed token.
func (r *Reader) Location() Location { return r.loc }

// Depth reports the number of open objects and arrays.
func (r *Reader) Depth() int { return len(r.stack) - 1 }

// Path returns the path projection of the current location of r.
//
// The path is "$" at the root, followed by ".name" for each enclosing object
// member and "[i]" for each enclosing array element. Inside an object before
// any name has been read, the step is a bare "."; after a value was skipped
// with SkipValue, the step is ".null". Array indices give the position of the
// next element to be read.
func (r *Reader) Path() string { return pathOf(r.stack) }

// Peek reports the kind of the next token without consuming it.
// At the end of the input Peek reports EndDocument.
func (r *Reader) Peek() (Kind, error) {
	a, err := r.peek()
	if err != nil {
		return Unknown, err
	}
	return a.kind, nil
}

// HasNext reports whether the current object or array has another element.
// At the top level it reports whether another value is available, which is
// only possible for a second or later value in lenient mode.
//
// If the input is invalid, HasNext reports false, and the next read reports
// the error.
func (r *Reader) HasNext() bool {
	a, err := r.peek()
	if err != nil {
		return false
	}
	switch a.kind {
	case EndObject, EndArray, EndDocument:
		return false
	}
	return true
}

// BeginObject consumes the start of an object.
func (r *Reader) BeginObject() error {
	if _, err := r.expect(BeginObject); err != nil {
		return err
	}
	r.consume()
	r.push(emptyObject)
	return nil
}

// EndObject consumes the end of an object.
func (r *Reader) EndObject() error {
	if _, err := r.expect(EndObject); err != nil {
		return err
	}
	r.consume()
	r.pop()
	r.afterValue()
	return nil
}

// BeginArray consumes the start of an array.
func (r *Reader) BeginArray() error {
	if _, err := r.expect(BeginArray); err != nil {
		return err
	}
	r.consume()
	r.push(emptyArray)
	return nil
}

// EndArray consumes the end of an array.
func (r *Reader) EndArray() error {
	if _, err := r.expect(EndArray); err != nil {
		return err
	}
	r.consume()
	r.pop()
	r.afterValue()
	return nil
}

// NextName consumes and returns the name of the next object member.
func (r *Reader) NextName() (string, error) {
	a, err := r.expect(MemberName)
	if err != nil {
		return "", err
	}
	name, err := r.decode(a)
	if err != nil {
		return "", err
	}
	r.consume()
	r.top().name = name
	return name, nil
}

// NextString consumes and returns the next string value. A number is
// accepted, and its text is returned as written.
func (r *Reader) NextString() (string, error) {
	a, err := r.peek()
	if err != nil {
		return "", err
	}
	var s string
	switch a.kind {
	case StringValue:
		s, err = r.decode(a)
		if err != nil {
			return "", err
		}
	case NumberValue:
		s = string(a.text)
	default:
		return "", r.unexpected("a string", a)
	}
	r.consume()
	r.afterValue()
	return s, nil
}

// NextBool consumes and returns the next Boolean value.
func (r *Reader) NextBool() (bool, error) {
	a, err := r.expect(BoolValue)
	if err != nil {
		return false, err
	}
	v := a.lex == True
	r.consume()
	r.afterValue()
	return v, nil
}

// NextNull consumes the next value, which must be null.
func (r *Reader) NextNull() error {
	if _, err := r.expect(NullValue); err != nil {
		return err
	}
	r.consume()
	r.afterValue()
	return nil
}

// NextNumber consumes and returns the text of the next number value, as
// written in the input. A string whose contents are a valid number is also
// accepted.
func (r *Reader) NextNumber() (string, error) {
	text, a, err := r.numberText("a number")
	if err != nil {
		return "", err
	}
	if !isNumber(text) && !(r.lenient && isNonFinite(text)) {
		return "", r.failAt(ErrNumberFormat, a.loc, nil, "expected a number but was %q", text)
	}
	r.consume()
	r.afterValue()
	return text, nil
}

// NextDouble consumes and returns the next number value as a float64. A
// string whose contents are a valid number is also accepted. In lenient mode
// NaN, Infinity, and -Infinity are accepted; otherwise a non-finite value is
// reported as an ErrNumberFormat error.
func (r *Reader) NextDouble() (float64, error) {
	text, a, err := r.numberText("a double")
	if err != nil {
		return 0, err
	}
	var v float64
	if isNonFinite(text) {
		if !r.lenient {
			return 0, r.failAt(ErrNumberFormat, a.loc, nil, "JSON forbids NaN and infinities: %s", text)
		}
		v = nonFinite(text)
	} else if !isNumber(text) {
		return 0, r.failAt(ErrNumberFormat, a.loc, nil, "expected a double but was %q", text)
	} else if v, err = strconv.ParseFloat(text, 64); err != nil && !r.lenient {
		return 0, r.failAt(ErrNumberFormat, a.loc, err, "number out of range: %s", text)
	}
	r.consume()
	r.afterValue()
	return v, nil
}

// NextInt64 consumes and returns the next number value as an int64. A string
// whose contents are a valid number is also accepted. A number with a
// fractional part, or one that does not fit in an int64, is reported as an
// ErrNumberFormat error; an integral value written with a fraction or
// exponent (31.0, 1e2) is accepted.
func (r *Reader) NextInt64() (int64, error) { return r.nextInt(64) }

// NextInt consumes and returns the next number value as an int.
// It follows the same rules as NextInt64.
func (r *Reader) NextInt() (int, error) {
	v, err := r.nextInt(strconv.IntSize)
	return int(v), err
}

func (r *Reader) nextInt(bitSize int) (int64, error) {
	text, a, err := r.numberText("an int")
	if err != nil {
		return 0, err
	}
	v, ok := parseInt(text)
	if ok && bitSize < 64 {
		lim := int64(1) << (bitSize - 1)
		ok = v >= -lim && v < lim
	}
	if !ok {
		return 0, r.failAt(ErrNumberFormat, a.loc, nil, "expected an int but was %s", text)
	}
	r.consume()
	r.afterValue()
	return v, nil
}

// numberText returns the text of the next token, which must be a number or a
// string, without consuming it.
func (r *Reader) numberText(want string) (string, *lookahead, error) {
	a, err := r.peek()
	if err != nil {
		return "", nil, err
	}
	switch a.kind {
	case NumberValue:
		return string(a.text), a, nil
	case StringValue:
		s, err := r.decode(a)
		return s, a, err
	default:
		return "", nil, r.unexpected(want, a)
	}
}

// Next consumes and returns the next token of any kind. At the end of the
// input, Next returns a token of kind EndDocument and does not advance.
func (r *Reader) Next() (Token, error) {
	a, err := r.peek()
	if err != nil {
		return Token{}, err
	}
	tok := Token{Kind: a.kind}
	switch a.kind {
	case BeginObject:
		err = r.BeginObject()
	case EndObject:
		err = r.EndObject()
	case BeginArray:
		err = r.BeginArray()
	case EndArray:
		err = r.EndArray()
	case MemberName:
		tok.Text, err = r.NextName()
	case StringValue:
		tok.Text, err = r.NextString()
	case NumberValue, BoolValue:
		tok.Text = string(a.text)
		r.consume()
		r.afterValue()
	case NullValue:
		err = r.NextNull()
	case EndDocument:
		// Do not advance.
	}
	if err != nil {
		return Token{}, err
	}
	return tok, nil
}

// SkipValue consumes and discards the next value, including the complete
// contents of an object or array. If the next token is a member name, the
// whole member is skipped. Afterward the path reports ".null" in place of the
// name of the skipped member.
func (r *Reader) SkipValue() error {
	depth := 0
	for {
		a, err := r.peek()
		if err != nil {
			return err
		}
		switch a.kind {
		case BeginObject:
			r.consume()
			r.push(emptyObject)
			depth++
		case BeginArray:
			r.consume()
			r.push(emptyArray)
			depth++
		case EndObject, EndArray:
			if depth == 0 {
				return r.unexpected("a value", a)
			}
			r.consume()
			r.pop()
			depth--
		case MemberName:
			r.consume()
			if depth == 0 {
				continue // skip the value of this member
			}
		case EndDocument:
			return r.unexpected("a value", a)
		default:
			r.consume()
		}
		if depth == 0 {
			break
		}
	}
	top := r.top()
	top.index++
	top.name = "null"
	return nil
}

// peek ensures a lookahead token is buffered and returns it. Separators are
// consumed here according to the state of the innermost scope.
func (r *Reader) peek() (*lookahead, error) {
	if r.err != nil {
		return nil, r.err
	} else if r.ahead.kind != Unknown {
		return &r.ahead, nil
	}

	top := r.top()
	switch top.scope {
	case emptyArray:
		top.scope = nonemptyArray
		lex, err := r.lex(false)
		if err != nil {
			return nil, err
		} else if lex == RSquare {
			return r.setAhead(EndArray, lex), nil
		}
		return r.value(lex)

	case nonemptyArray:
		lex, err := r.lex(false)
		if err != nil {
			return nil, err
		}
		switch lex {
		case RSquare:
			return r.setAhead(EndArray, lex), nil
		case Comma:
		default:
			return nil, r.badInput("expected %v or %v, got %v", Comma, RSquare, lex)
		}
		lex, err = r.lex(false)
		if err != nil {
			return nil, err
		} else if lex == RSquare && r.lenient {
			return r.setAhead(EndArray, lex), nil // trailing comma
		}
		return r.value(lex)

	case emptyObject, nonemptyObject:
		lex, err := r.lex(false)
		if err != nil {
			return nil, err
		}
		if lex == RBrace {
			return r.setAhead(EndObject, lex), nil
		} else if top.scope == nonemptyObject {
			if lex != Comma {
				return nil, r.badInput("expected %v or %v, got %v", Comma, RBrace, lex)
			}
			lex, err = r.lex(false)
			if err != nil {
				return nil, err
			} else if lex == RBrace && r.lenient {
				return r.setAhead(EndObject, lex), nil // trailing comma
			}
		}
		if !r.isName(lex) {
			return nil, r.badInput("expected name, got %v", lex)
		}
		top.scope = danglingName
		return r.setAhead(MemberName, lex), nil

	case danglingName:
		lex, err := r.lex(false)
		if err != nil {
			return nil, err
		} else if lex != Colon {
			return nil, r.badInput("expected %v after name, got %v", Colon, lex)
		}
		top.scope = nonemptyObject
		lex, err = r.lex(false)
		if err != nil {
			return nil, err
		}
		return r.value(lex)

	case emptyDocument, nonemptyDocument:
		lex, err := r.lex(true)
		if err == io.EOF {
			return r.setAhead(EndDocument, Invalid), nil
		} else if err != nil {
			return nil, err
		} else if top.scope == nonemptyDocument && !r.lenient {
			return nil, r.badInput("unexpected %v after top-level value", lex)
		}
		top.scope = nonemptyDocument
		return r.value(lex)
	}
	panic(fmt.Sprintf("invalid scope %d", top.scope))
}

// value classifies lex as the start of a value and buffers it.
func (r *Reader) value(lex Lexeme) (*lookahead, error) {
	switch lex {
	case LBrace:
		return r.setAhead(BeginObject, lex), nil
	case LSquare:
		return r.setAhead(BeginArray, lex), nil
	case String:
		return r.setAhead(StringValue, lex), nil
	case Integer, Number:
		return r.setAhead(NumberValue, lex), nil
	case True, False:
		return r.setAhead(BoolValue, lex), nil
	case Null:
		return r.setAhead(NullValue, lex), nil
	case Ident:
		if isNonFinite(string(r.s.Text())) {
			return r.setAhead(NumberValue, lex), nil
		}
		return r.setAhead(StringValue, lex), nil // unquoted string
	default:
		return nil, r.badInput("unexpected %v", lex)
	}
}

// isName reports whether lex may be used as a member name.
func (r *Reader) isName(lex Lexeme) bool {
	switch lex {
	case String:
		return true
	case Ident, Integer, Number, True, False, Null:
		return r.lenient
	}
	return false
}

// lex returns the next lexeme from the scanner, skipping comments.
// If eofOK is true, the end of input is reported as io.EOF; otherwise it is
// reported as a terminal ErrPrematureEnd error.
func (r *Reader) lex(eofOK bool) (Lexeme, error) {
	for {
		err := r.s.Next()
		if err == io.EOF {
			if eofOK {
				return Invalid, io.EOF
			}
			return Invalid, r.terminal(ErrPrematureEnd, io.ErrUnexpectedEOF, "unexpected end of input")
		} else if err != nil {
			kind := ErrMalformedInput
			if errors.Is(err, io.ErrUnexpectedEOF) {
				kind = ErrPrematureEnd
			}
			return Invalid, r.terminal(kind, err, err.Error())
		}
		if tok := r.s.Token(); tok != LineComment && tok != BlockComment {
			return tok, nil
		}
	}
}

func (r *Reader) setAhead(kind Kind, lex Lexeme) *lookahead {
	r.ahead = lookahead{
		kind: kind,
		lex:  lex,
		text: r.s.Copy(),
		loc:  r.s.Location(),
	}
	return &r.ahead
}

func (r *Reader) consume() {
	r.loc = r.ahead.loc
	r.ahead = lookahead{}
}

// expect returns the lookahead if it has the given kind, or an error.
func (r *Reader) expect(want Kind) (*lookahead, error) {
	a, err := r.peek()
	if err != nil {
		return nil, err
	} else if a.kind != want {
		return nil, r.unexpected(want.String(), a)
	}
	return a, nil
}

// decode returns the string content of a.
func (r *Reader) decode(a *lookahead) (string, error) {
	if a.lex != String {
		return string(a.text), nil
	}
	dec, err := Unquote(a.text)
	if err != nil {
		return "", r.terminal(ErrMalformedInput, err, err.Error())
	}
	return string(dec), nil
}

func (r *Reader) top() *frame { return &r.stack[len(r.stack)-1] }

func (r *Reader) push(s scope) { r.stack = append(r.stack, frame{scope: s}) }

func (r *Reader) pop() { r.stack = r.stack[:len(r.stack)-1] }

// afterValue records that a complete value was consumed in the current scope.
func (r *Reader) afterValue() { r.top().index++ }

// unexpected reports that a does not have the kind the caller wanted.
// The lookahead is not consumed.
func (r *Reader) unexpected(want string, a *lookahead) error {
	kind := ErrUnexpectedToken
	if a.kind == EndDocument {
		kind = ErrPrematureEnd
	}
	return r.failAt(kind, a.loc, nil, "expected %s but was %s", want, a.kind)
}

// badInput reports a terminal structural error at the current scanner token.
func (r *Reader) badInput(msg string, args ...any) error {
	return r.terminal(ErrUnexpectedToken, nil, fmt.Sprintf(msg, args...))
}

// terminal records and returns an error that ends reading.
func (r *Reader) terminal(kind ErrorKind, err error, msg string) error {
	r.err = r.failAt(kind, r.s.Location(), err, "%s", msg)
	return r.err
}

func (r *Reader) failAt(kind ErrorKind, loc Location, err error, msg string, args ...any) error {
	return &SyntaxError{
		Kind:     kind,
		Location: loc.First,
		Path:     r.Path(),
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	}
}

// A lookahead is a token that has been scanned but not consumed.
type lookahead struct {
	kind Kind
	lex  Lexeme
	text []byte
	loc  Location
}

// scope is the state of a single frame of the scope stack.
type scope byte

const (
	emptyDocument    scope = iota // no value read yet
	nonemptyDocument              // at least one top-level value read
	emptyObject                   // no members read yet
	danglingName                  // a name was read, its value was not
	nonemptyObject                // at least one member read
	emptyArray                    // no elements read yet
	nonemptyArray                 // at least one element read
)

// A frame is an element of the scope stack. The name is the most recent
// member name of an object; the index counts complete values read.
type frame struct {
	scope scope
	name  string
	index int
}

// pathOf renders the path projection of the given scope stack.
func pathOf(stack []frame) string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, f := range stack {
		switch f.scope {
		case emptyArray, nonemptyArray:
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(f.index))
			sb.WriteByte(']')
		case emptyObject, danglingName, nonemptyObject:
			sb.WriteByte('.')
			sb.WriteString(f.name)
		}
	}
	return sb.String()
}

// parseInt parses text as an integral number. Text with a fraction or
// exponent is accepted if its value is integral and in range.
func parseInt(text string) (int64, bool) {
	if !isNumber(text) {
		return 0, false
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}
