// Package jpath implements a minimal JSONPath expression parser, and matching
// of parsed expressions against the path projections reported by a
// jreader.Reader.
package jpath

import (
	"fmt"
	"strings"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = ".." name
  step = "[" value "]"
  step = "[" slice "]"
  name = WORD
  name = "'" QTEXT "'"
  name = "*"
 value = name
 value = INDEX ["," INDEX ...]
 value = script
 value = filter
 slice = [INDEX] ":" [INDEX]
script = "(" TEXT ")"
filter = "?(" TEXT ")"

  WORD = letters, digits, and "_"
 QTEXT = any text not containing "'"
 INDEX = ["-"] digits
  TEXT = { all text with nested parentheses }

Source:
  https://www.ietf.org/archive/id/draft-goessner-dispatch-jsonpath-00.html
*/

// An Expr is a parsed JSONPath expression.
type Expr []Step

// Parse parses s as a JSONPath expression.
func Parse(s string) (Expr, error) {
	p := &parser{src: s}
	if !p.skip("$") {
		return Expr{}, p.fail("missing root marker")
	}
	var out Expr
	for !p.done() {
		st, err := p.step()
		if err != nil {
			return Expr{}, err
		}
		out = append(out, st)
	}
	return out, nil
}

// A ParseError reports a syntax error in a path expression.
type ParseError struct {
	Offset  int    // byte offset of the error in the input
	Message string // description of the error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range e {
		switch s.Op {
		case Member, Recur:
			if s.Arg2 == QName.String() {
				fmt.Fprintf(&buf, "%s'%s'", s.Op, s.Arg1)
			} else {
				fmt.Fprint(&buf, s.Op, s.Arg1)
			}
		case Slice:
			fmt.Fprintf(&buf, "[%s:%s]", s.Arg1, s.Arg2)
		case Script:
			fmt.Fprintf(&buf, "[(%s)]", s.Arg1)
		case Filter:
			fmt.Fprintf(&buf, "[?(%s)]", s.Arg1)
		case QName:
			fmt.Fprintf(&buf, "['%s']", s.Arg1)
		default:
			fmt.Fprintf(&buf, "[%s]", s.Arg1)
		}
	}
	return buf.String()
}

// A parser consumes an expression from left to right.
type parser struct {
	src string
	pos int
}

func (p *parser) done() bool   { return p.pos >= len(p.src) }
func (p *parser) rest() string { return p.src[p.pos:] }

// skip consumes tag if it is next in the input.
func (p *parser) skip(tag string) bool {
	if strings.HasPrefix(p.rest(), tag) {
		p.pos += len(tag)
		return true
	}
	return false
}

// take consumes and returns the longest prefix whose bytes satisfy f.
func (p *parser) take(f func(byte) bool) string {
	start := p.pos
	for !p.done() && f(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) fail(msg string, args ...any) error {
	return &ParseError{Offset: p.pos, Message: fmt.Sprintf(msg, args...)}
}

func (p *parser) step() (Step, error) {
	switch {
	case p.skip(".."):
		kind, name, err := p.name()
		if err != nil {
			return Step{}, p.fail("invalid ..name: %v", err)
		}
		return Step{Op: Recur, Arg1: name, Arg2: kind.String()}, nil

	case p.skip("."):
		kind, name, err := p.name()
		if err != nil {
			return Step{}, p.fail("invalid .name: %v", err)
		}
		return Step{Op: Member, Arg1: name, Arg2: kind.String()}, nil

	case p.skip("["):
		out, err := p.value()
		if err != nil {
			return Step{}, err
		}
		if !p.skip("]") {
			return Step{}, p.fail("missing close bracket")
		}
		return out, nil
	}
	return Step{}, p.fail("invalid path step")
}

func (p *parser) name() (Op, string, error) {
	if p.skip("*") {
		return Wildcard, "*", nil
	}
	if w := p.take(isWord); w != "" {
		return Name, w, nil
	}
	if p.skip("'") {
		i := strings.IndexByte(p.rest(), '\'')
		if i < 0 {
			return Invalid, "", p.fail("unterminated quoted name")
		}
		text := p.src[p.pos : p.pos+i]
		p.pos += i + 1
		return QName, text, nil
	}
	return Invalid, "", p.fail("invalid name")
}

// index consumes a comma-separated list of one or more integers.
func (p *parser) index() (string, bool) {
	start := p.pos
	for {
		p.skip("-")
		if p.take(isDigit) == "" {
			p.pos = start
			return "", false
		}
		mark := p.pos
		if !p.skip(",") {
			return p.src[start:p.pos], true
		} else if p.done() || (p.src[p.pos] != '-' && !isDigit(p.src[p.pos])) {
			p.pos = mark
			return p.src[start:p.pos], true
		}
	}
}

// value parses the contents of a bracketed step.
func (p *parser) value() (Step, error) {
	if p.skip("?(") {
		text, err := p.script()
		return Step{Op: Filter, Arg1: text}, err
	}
	if p.skip("(") {
		text, err := p.script()
		return Step{Op: Script, Arg1: text}, err
	}
	lo, ok := p.index()
	if ok && !p.skip(":") {
		return Step{Op: Index, Arg1: lo}, nil
	}
	if ok || p.skip(":") {
		out := Step{Op: Slice, Arg1: lo}
		if hi, ok := p.index(); ok {
			out.Arg2 = hi
		} else if out.Arg1 == "" {
			return Step{}, p.fail("invalid slice")
		}
		return out, nil
	}
	if kind, text, err := p.name(); err == nil {
		return Step{Op: kind, Arg1: text}, nil
	}
	return Step{}, p.fail("invalid value: %q", p.rest())
}

// script consumes text up to and including a close parenthesis that balances
// the open parenthesis already consumed.
func (p *parser) script() (string, error) {
	np := 1
	for i := p.pos; i < len(p.src); i++ {
		switch p.src[i] {
		case '(':
			np++
		case ')':
			if np--; np == 0 {
				text := p.src[p.pos:i]
				p.pos = i + 1
				return text, nil
			}
		}
	}
	return "", p.fail("unbalanced parentheses")
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isWord(b byte) bool {
	return isDigit(b) || b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// An Op is a path operator.
type Op byte

const (
	Invalid  Op = iota // invalid operator
	Member             // member lookup (.)
	Index              // array index lookup
	Slice              // array slice
	Wildcard           // wildcard expansion (*)
	Name               // unquoted name expansion
	QName              // quoted name expansion
	Recur              // recur operator
	Filter             // filter operator
	Script             // script operator
)

var opText = [...]string{
	Invalid:  "invalid",
	Member:   ".",
	Index:    "index",
	Slice:    "slice",
	Wildcard: "*",
	Name:     "name",
	QName:    "qname",
	Recur:    "..",
	Filter:   "?(...)",
	Script:   "(...)",
}

func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return opText[Invalid]
}

// A Step is a single step of a JSONPath expression.
//
// For Member and Recur steps, Arg1 is the name and Arg2 is the kind of name
// (Name, QName, or Wildcard). For Index steps Arg1 is a comma-separated list
// of indexes, and for Slice steps Arg1 and Arg2 are the bounds, either of
// which may be empty.
type Step struct {
	Op   Op
	Arg1 string
	Arg2 string
}
