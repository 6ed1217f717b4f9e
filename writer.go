// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jreader

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/creachadair/jreader/internal/escape"

	"go4.org/mem"
)

// A Writer writes a stream of JSON tokens to an output. It enforces the same
// nesting rules as a Reader: names only appear directly inside objects, each
// name is followed by exactly one value, and containers are closed in order.
// A misuse is reported as an ErrUnexpectedToken error and ends writing.
//
// Output is buffered; call Flush to write any buffered data to the
// underlying writer. A Writer is not safe for concurrent use by multiple
// goroutines.
type Writer struct {
	w       *bufio.Writer
	indent  string
	lenient bool
	stack   []frame
	buf     []byte
	err     error
}

// NewWriter constructs a new strict Writer that writes compact output to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:     bufio.NewWriter(w),
		stack: []frame{{scope: emptyDocument}},
	}
}

// NewWriterWithOptions constructs a new Writer that writes to w with the
// settings from opts.
func NewWriterWithOptions(w io.Writer, opts Options) *Writer {
	jw := NewWriter(w)
	jw.SetIndent(opts.Indent)
	jw.SetLenient(opts.Lenient)
	return jw
}

// SetIndent sets the per-level indentation. If indent == "", output is
// compact; otherwise each element and member is written on its own line.
func (w *Writer) SetIndent(indent string) { w.indent = indent }

// SetLenient configures w to permit (true) or reject (false) non-finite
// numbers and multiple top-level values.
func (w *Writer) SetLenient(ok bool) { w.lenient = ok }

// Path returns the path projection of the current location of w, in the same
// format as Reader.Path.
func (w *Writer) Path() string { return pathOf(w.stack) }

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// BeginObject writes the start of an object.
func (w *Writer) BeginObject() error { return w.open(emptyObject, '{') }

// EndObject writes the end of the current object.
func (w *Writer) EndObject() error { return w.close(emptyObject, nonemptyObject, '}') }

// BeginArray writes the start of an array.
func (w *Writer) BeginArray() error { return w.open(emptyArray, '[') }

// EndArray writes the end of the current array.
func (w *Writer) EndArray() error { return w.close(emptyArray, nonemptyArray, ']') }

// Name writes the name of the next object member.
func (w *Writer) Name(name string) error {
	if w.err != nil {
		return w.err
	}
	top := w.top()
	switch top.scope {
	case emptyObject:
	case nonemptyObject:
		w.buf = append(w.buf, ',')
	default:
		return w.fail("name %q is not valid here", name)
	}
	w.newline()
	w.buf = append(w.buf, '"')
	w.buf = escape.AppendQuote(w.buf, mem.S(name))
	w.buf = append(w.buf, '"')
	top.scope = danglingName
	top.name = name
	return w.emit()
}

// String writes a string value.
func (w *Writer) String(s string) error {
	return w.scalar(func(buf []byte) []byte {
		buf = append(buf, '"')
		buf = escape.AppendQuote(buf, mem.S(s))
		return append(buf, '"')
	})
}

// Bool writes a Boolean value.
func (w *Writer) Bool(v bool) error {
	return w.scalar(func(buf []byte) []byte { return strconv.AppendBool(buf, v) })
}

// Null writes a null value.
func (w *Writer) Null() error {
	return w.scalar(func(buf []byte) []byte { return append(buf, "null"...) })
}

// Int writes an integer value.
func (w *Writer) Int(v int64) error {
	return w.scalar(func(buf []byte) []byte { return strconv.AppendInt(buf, v, 10) })
}

// Float writes a floating-point value. NaN and infinities are written as
// NaN, Infinity, and -Infinity if w is lenient, and rejected otherwise.
func (w *Writer) Float(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if !w.lenient {
			return w.failKind(ErrNumberFormat, "JSON forbids NaN and infinities: %v", v)
		}
		text := "NaN"
		if math.IsInf(v, 1) {
			text = "Infinity"
		} else if math.IsInf(v, -1) {
			text = "-Infinity"
		}
		return w.scalar(func(buf []byte) []byte { return append(buf, text...) })
	}
	return w.scalar(func(buf []byte) []byte { return appendFloat(buf, v) })
}

// Number writes a number value given as text. The text must be a valid JSON
// number or, if w is lenient, one of NaN, Infinity, or -Infinity.
func (w *Writer) Number(text string) error {
	if !isNumber(text) && !(w.lenient && isNonFinite(text)) {
		return w.failKind(ErrNumberFormat, "invalid number %q", text)
	}
	return w.scalar(func(buf []byte) []byte { return append(buf, text...) })
}

func (w *Writer) open(s scope, delim byte) error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	w.buf = append(w.buf, delim)
	w.stack = append(w.stack, frame{scope: s})
	return w.emit()
}

func (w *Writer) close(empty, nonempty scope, delim byte) error {
	if w.err != nil {
		return w.err
	}
	sc := w.top().scope
	if sc != empty && sc != nonempty {
		return w.fail("unexpected %q", delim)
	}
	w.stack = w.stack[:len(w.stack)-1]
	if sc == nonempty {
		w.newline()
	}
	w.buf = append(w.buf, delim)
	w.top().index++
	return w.emit()
}

func (w *Writer) scalar(add func([]byte) []byte) error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	w.buf = add(w.buf)
	w.top().index++
	return w.emit()
}

// beforeValue writes whatever separator is needed before a value in the
// current scope, or reports an error if a value is not permitted.
func (w *Writer) beforeValue() error {
	if w.err != nil {
		return w.err
	}
	top := w.top()
	switch top.scope {
	case emptyDocument:
		top.scope = nonemptyDocument
	case nonemptyDocument:
		if !w.lenient {
			return w.fail("multiple top-level values")
		}
		w.buf = append(w.buf, '\n')
	case emptyArray:
		top.scope = nonemptyArray
		w.newline()
	case nonemptyArray:
		w.buf = append(w.buf, ',')
		w.newline()
	case danglingName:
		top.scope = nonemptyObject
		w.buf = append(w.buf, ':')
		if w.indent != "" {
			w.buf = append(w.buf, ' ')
		}
	default:
		return w.fail("expected a name")
	}
	return nil
}

func (w *Writer) newline() {
	if w.indent == "" {
		return
	}
	w.buf = append(w.buf, '\n')
	w.buf = append(w.buf, strings.Repeat(w.indent, len(w.stack)-1)...)
}

// emit writes the pending buffer to the output.
func (w *Writer) emit() error {
	_, err := w.w.Write(w.buf)
	w.buf = w.buf[:0]
	if err != nil {
		w.err = err
	}
	return err
}

func (w *Writer) top() *frame { return &w.stack[len(w.stack)-1] }

func (w *Writer) fail(msg string, args ...any) error {
	return w.failKind(ErrUnexpectedToken, msg, args...)
}

func (w *Writer) failKind(kind ErrorKind, msg string, args ...any) error {
	w.buf = w.buf[:0]
	err := &SyntaxError{Kind: kind, Path: w.Path(), Message: fmt.Sprintf(msg, args...)}
	if kind != ErrNumberFormat {
		w.err = err
	}
	return err
}

// appendFloat formats v in the shortest form that round-trips, using
// exponent notation only for very large or very small magnitudes.
func appendFloat(buf []byte, v float64) []byte {
	format := byte('f')
	if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return strconv.AppendFloat(buf, v, format, -1, 64)
}

// Copy reads one complete value from r and writes it to w. If a member name
// is next, Copy copies the whole member. If no further value is available
// from r, Copy returns io.EOF. If the end of an object or array is next, Copy
// reports ErrUnexpectedToken and nothing is consumed.
func Copy(w *Writer, r *Reader) error {
	a, err := r.peek()
	if err != nil {
		return err
	}
	switch {
	case a.kind == EndDocument:
		return io.EOF
	case a.kind != MemberName && !a.kind.IsValue():
		return r.unexpected("a value", a)
	}
	depth := 0
	for {
		tok, err := r.Next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case BeginObject:
			err = w.BeginObject()
			depth++
		case EndObject:
			err = w.EndObject()
			depth--
		case BeginArray:
			err = w.BeginArray()
			depth++
		case EndArray:
			err = w.EndArray()
			depth--
		case MemberName:
			if err := w.Name(tok.Text); err != nil {
				return err
			}
			continue
		case StringValue:
			err = w.String(tok.Text)
		case NumberValue:
			err = w.Number(tok.Text)
		case BoolValue:
			err = w.Bool(tok.Bool())
		case NullValue:
			err = w.Null()
		case EndDocument:
			return io.EOF
		}
		if err != nil {
			return err
		} else if depth == 0 {
			return nil
		}
	}
}
