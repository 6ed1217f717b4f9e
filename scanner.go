// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jreader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"go4.org/mem"
)

// Lexeme is the type of a lexical token in the JSON grammar.
type Lexeme byte

// Constants defining the valid Lexeme values.
const (
	Invalid Lexeme = iota // invalid token
	LBrace                // left brace "{"
	RBrace                // right brace "}"
	LSquare               // left square bracket "["
	RSquare               // right square bracket "]"
	Comma                 // comma "," (lenient: also ";")
	Colon                 // colon ":" (lenient: also "=" and "=>")
	Integer               // number: integer with no fraction or exponent
	Number                // number with fraction and/or exponent
	String                // quoted string (lenient: also single-quoted)
	True                  // constant: true
	False                 // constant: false
	Null                  // constant: null
	Ident                 // lenient: unquoted word, including NaN and Infinity

	BlockComment // comment: /* ... */
	LineComment  // comment: // ... <LF> (lenient: also # ... <LF>)
)

var lexemeStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",
	Ident:   "identifier",

	BlockComment: "block comment",
	LineComment:  "line comment",
}

func (t Lexeme) String() string {
	v := int(t)
	if v >= len(lexemeStr) {
		return lexemeStr[Invalid]
	}
	return lexemeStr[v]
}

// A Scanner reads lexical tokens from an input stream.  Each call to Next
// advances the scanner to the next token, or reports an error.
type Scanner struct {
	r        *bufio.Reader
	comments bool         // allow comments
	lenient  bool         // allow the lenient lexical extensions
	buf      bytes.Buffer // current token
	tok      Lexeme
	err      error

	pos, end int // start and end offsets of current token
	last     int // size in bytes of last-read input rune

	// Apparent line and column offsets (0-based)
	pline, pcol int
	eline, ecol int
	lline, lcol int // position before the last-read rune
}

// NewScanner constructs a new lexical scanner that consumes input from r.
func NewScanner(r io.Reader) *Scanner {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Scanner{r: br}
}

// AllowComments configures the scanner to report (true) or reject (false)
// comment tokens. Comments are a non-standard extension of RFC 8259.  If
// enabled, C++ style block comments (/* ... */) and line comments (// ...)
// are recognized and emitted as tokens.
func (s *Scanner) AllowComments(ok bool) { s.comments = ok }

// AllowLenient configures the scanner to accept (true) or reject (false) the
// lenient lexical extensions: comments (including "#" line comments),
// single-quoted strings, unescaped control characters inside strings, the \'
// escape, unquoted identifiers (reported as Ident), "-Infinity", and the
// alternative separators ";", "=" and "=>".
func (s *Scanner) AllowLenient(ok bool) { s.lenient = ok }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF.
func (s *Scanner) Next() error {
	s.buf.Reset()
	s.err = nil
	s.tok = Invalid
	s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol

	for {
		ch, err := s.rune()
		if err == io.EOF {
			return s.setErr(err)
		} else if err != nil {
			return s.fail(err)
		}

		// Discard whitespace.
		if isSpace(ch) {
			s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol
			continue
		}

		// Handle punctuation.
		if t, ok := selfDelim(ch); ok {
			s.buf.WriteRune(ch)
			s.tok = t
			return nil
		}
		if s.lenient {
			switch ch {
			case ';':
				s.buf.WriteRune(ch)
				s.tok = Comma
				return nil
			case '=':
				return s.scanArrow(ch)
			}
		}

		// Handle numbers.
		if isNumStart(ch) {
			return s.scanNumber(ch)
		}

		// Handle string values.
		if ch == '"' || (ch == '\'' && s.lenient) {
			return s.scanString(ch)
		}

		// Handle comments, if enabled.
		if ch == '/' && (s.comments || s.lenient) {
			return s.scanComment(ch)
		}
		if ch == '#' && s.lenient {
			s.buf.WriteRune(ch)
			return s.scanLine()
		}

		// In lenient mode, any identifier is acceptable. Constants are still
		// reported as their own token types.
		if s.lenient && isIdentStart(ch) {
			if err := s.scanWord(ch, isIdentRune); err != nil {
				return err
			}
			switch got := mem.B(s.buf.Bytes()); {
			case got.EqualString("true"):
				s.tok = True
			case got.EqualString("false"):
				s.tok = False
			case got.EqualString("null"):
				s.tok = Null
			default:
				s.tok = Ident
			}
			return nil
		}

		// Handle constants: true, false, null
		var want mem.RO
		switch ch {
		case 't':
			s.tok = True
			want = mem.S("true")
			err = s.scanWord(ch, isNameRune)
		case 'f':
			s.tok = False
			want = mem.S("false")
			err = s.scanWord(ch, isNameRune)
		case 'n':
			s.tok = Null
			want = mem.S("null")
			err = s.scanWord(ch, isNameRune)
		default:
			return s.failf("unexpected %q", ch)
		}
		if err != nil {
			return err
		} else if got := mem.B(s.buf.Bytes()); !got.Equal(want) {
			s.tok = Invalid
			return s.failf("unknown constant %q", got.StringCopy())
		}
		return nil // OK, token is already set
	}
}

// Token returns the type of the current token.
func (s *Scanner) Token() Lexeme { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token.  The return value is
// only valid until the next call of Next. The caller must copy the contents of
// the returned slice if it is needed beyond that.
func (s *Scanner) Text() []byte { return s.buf.Bytes() }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return bytes.Clone(s.buf.Bytes()) }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: LineCol{Line: s.pline + 1, Column: s.pcol},
		Last:  LineCol{Line: s.eline + 1, Column: s.ecol},
	}
}

func (s *Scanner) scanString(open rune) error {
	s.buf.WriteRune(open)
	var esc bool
	for {
		ch, err := s.rune()
		if err != nil {
			return s.fail(err)
		} else if ch == open && !esc {
			s.buf.WriteRune(ch)
			s.tok = String
			return nil
		}
		if esc {
			// We are awaiting the completion of a \-escape.
			switch ch {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				s.buf.WriteByte(byte(ch))
			case '\'':
				if !s.lenient {
					return s.failf("invalid %q after escape", ch)
				}
				s.buf.WriteByte(byte(ch))
			case 'u':
				s.buf.WriteByte(byte(ch))
				if err := s.readHex4(); err != nil {
					return s.failf("invalid Unicode escape: %w", err)
				}
			default:
				return s.failf("invalid %q after escape", ch)
			}
			esc = false
		} else if ch < ' ' && !s.lenient {
			return s.failf("unescaped control %q", ch)
		} else if ch > unicode.MaxRune {
			return s.failf("invalid Unicode rune %q", ch)
		} else {
			s.buf.WriteRune(ch)
			esc = ch == '\\'
		}
	}
}

func (s *Scanner) scanNumber(start rune) error {
	s.buf.WriteRune(start)

	if start == '-' {
		// If there is a leading sign, we need at least one digit.
		// Otherwise, we already have one in start. Lenient input also
		// permits "-Infinity".
		if s.lenient {
			ch, err := s.rune()
			if err != nil {
				return s.fail(err)
			}
			if ch == 'I' {
				if err := s.scanWord(ch, isIdentRune); err != nil {
					return err
				}
				if got := mem.B(s.buf.Bytes()); !got.EqualString("-Infinity") {
					return s.failf("invalid number %q", got.StringCopy())
				}
				s.tok = Ident
				return nil
			}
			s.unrune()
		}
		ch, err := s.require(isDigit, "digit")
		if err != nil {
			return err
		}
		s.buf.WriteRune(ch)
	}

	// Consume the remainder of an integer.
	_, ch, err := s.readWhile(isDigit)
	if err != nil {
		if err == io.EOF {
			if hasExtraLeadingZeroes(s.buf.Bytes()) {
				return s.failf("extra leading zeroes")
			}
			s.tok = Integer
			return nil
		}
		return s.fail(err)
	}

	// Check for extra leading zeroes, which are disallowed by RFC 8259.
	// That is: 0.12 is OK, 01.2 is not.
	if hasExtraLeadingZeroes(s.buf.Bytes()) {
		return s.failf("extra leading zeroes")
	}

	// If a decimal point follows, consume a fractional part.
	var isFloat bool
	if ch == '.' {
		s.buf.WriteRune(ch)
		var nr int
		nr, ch, err = s.readWhile(isDigit)
		if err != nil && err != io.EOF {
			return s.fail(err)
		} else if nr == 0 {
			return s.failf("no digits after decimal point")
		} else if err == io.EOF {
			s.tok = Number
			return nil
		}
		isFloat = true
	}

	// If an exponent follows, consume it.
	if ch != 'E' && ch != 'e' {
		s.unrune()
		if isFloat {
			s.tok = Number
		} else {
			s.tok = Integer
		}
		return nil
	}

	s.buf.WriteRune(ch)
	ch, err = s.require(isExpStart, "sign or digit")
	if err != nil {
		return err
	}
	s.buf.WriteRune(ch)
	nr, _, err := s.readWhile(isDigit)
	if nr == 0 && (ch == '-' || ch == '+') {
		// It's OK to have no digits if the previous rune was not a sign,
		// otherwise we have to have at least one.
		return s.failf("missing exponent digits")
	} else if err == io.EOF {
		s.tok = Number
		return nil
	} else if err != nil {
		return s.fail(err)
	}
	s.unrune()
	s.tok = Number
	return nil
}

func (s *Scanner) scanComment(first rune) error {
	s.buf.WriteRune(first)
	ch, err := s.rune()
	if err != nil {
		return s.fail(err)
	}
	switch ch {
	case '/': // line comment to LF
		s.buf.WriteRune(ch)
		return s.scanLine()

	case '*': // block comment
		s.buf.WriteRune(ch)
		for {
			_, end, err := s.readWhile(isNotStar)
			if err != nil {
				return s.failf("unterminated block comment: %w", err)
			}
			s.buf.WriteRune(end) // end == '*'

			// Check whether we have "*/", which would end the comment.
			next, err := s.rune()
			if err != nil {
				return s.failf("unterminated block comment: %w", err)
			}
			s.buf.WriteRune(next)
			if next == '/' {
				s.tok = BlockComment
				return nil
			}

			// We saw "*" but not "/", so keep scanning for the end of the block.
			// The next rune may itself be a "*".
			if next == '*' {
				s.unrune()
				s.buf.Truncate(s.buf.Len() - 1)
			}
		}

	default:
		s.unrune()
		return s.failf("invalid %q in comment", ch)
	}
}

// scanLine consumes the remainder of a line comment, including the
// terminating newline if one is present.
func (s *Scanner) scanLine() error {
	_, end, err := s.readWhile(isNotLF)
	if err == nil {
		s.buf.WriteRune(end)
	} else if err != io.EOF {
		return s.fail(err)
	}
	s.tok = LineComment
	return nil
}

// scanArrow handles the lenient name separators "=" and "=>".
func (s *Scanner) scanArrow(first rune) error {
	s.buf.WriteRune(first)
	s.tok = Colon
	ch, err := s.rune()
	if err == io.EOF {
		return nil
	} else if err != nil {
		return s.fail(err)
	} else if ch == '>' {
		s.buf.WriteRune(ch)
	} else {
		s.unrune()
	}
	return nil
}

func (s *Scanner) scanWord(first rune, f func(rune) bool) error {
	s.buf.WriteRune(first)
	_, _, err := s.readWhile(f)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return s.fail(err)
	}
	s.unrune()
	return nil
}

func (s *Scanner) rune() (rune, error) {
	ch, nb, err := s.r.ReadRune()
	s.last = nb
	s.lline, s.lcol = s.eline, s.ecol
	s.end += nb
	if ch == '\n' && err == nil {
		s.eline++
		s.ecol = 0
	} else {
		s.ecol += nb
	}
	return ch, err
}

// unrune unreads the last rune read by rune. It must not be called more than
// once without an intervening call to rune.
func (s *Scanner) unrune() {
	if s.last == 0 {
		return
	}
	s.end -= s.last
	s.eline, s.ecol = s.lline, s.lcol
	s.last = 0
	s.r.UnreadRune()
}

// require reads a single rune matching f from the input, or returns an error
// mentioning the desired label.
func (s *Scanner) require(f func(rune) bool, label string) (rune, error) {
	ch, err := s.rune()
	if err != nil {
		return 0, s.failf("want %s, got error: %w", label, eofToUnexpected(err))
	} else if !f(ch) {
		s.unrune()
		return 0, s.failf("got %q, want %s", ch, label)
	}
	return ch, nil
}

// readWhile consumes runes matching f from the input until EOF or until a rune
// not matching f is found. The first non-matching rune (if any) is returned.
// It is the caller's responsibility to unread this rune, if desired.
// The int reports the number of runes consumed.
func (s *Scanner) readWhile(f func(rune) bool) (int, rune, error) {
	var nr int
	for {
		ch, err := s.rune()
		if err != nil {
			return nr, 0, err
		} else if !f(ch) {
			return nr, ch, nil
		}
		s.buf.WriteRune(ch)
		nr++
	}
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (s *Scanner) readHex4() error {
	for range 4 {
		ch, err := s.rune()
		if err != nil {
			return eofToUnexpected(err)
		} else if !isHexDigit(ch) {
			return fmt.Errorf("not a hex digit: %q", ch)
		}
		s.buf.WriteRune(ch)
	}
	return nil
}

type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

// fail reports err as occurring at the current offset. Since fail is only
// used within a token, an end of input is reported as io.ErrUnexpectedEOF.
func (s *Scanner) fail(err error) error {
	return s.setErr(posError{s.end, eofToUnexpected(err)})
}

func (s *Scanner) failf(msg string, args ...any) error {
	return s.setErr(posError{s.end, fmt.Errorf(msg, args...)})
}

func eofToUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNotStar(ch rune) bool  { return ch != '*' }
func isNotLF(ch rune) bool    { return ch != '\n' }
func isNumStart(ch rune) bool { return ch == '-' || isDigit(ch) }
func isExpStart(ch rune) bool { return ch == '-' || ch == '+' || isDigit(ch) }
func isDigit(ch rune) bool    { return '0' <= ch && ch <= '9' }
func isNameRune(ch rune) bool { return ch >= 'a' && ch <= 'z' }

// isIdentStart reports whether ch may begin an unquoted lenient identifier.
func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

// isIdentRune reports whether ch may continue an unquoted lenient identifier.
func isIdentRune(ch rune) bool {
	switch ch {
	case '_', '$', '-', '+', '.':
		return true
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// hasExtraLeadingZeroes reports whether the representation of an integer in
// buf has redundant leading zeroes, disallowed by RFC 8259.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf []byte) bool {
	if buf[0] == '-' {
		buf = buf[1:] // skip leading sign
	}
	if buf[0] == '0' {
		// A leading zero is OK if it's the only digit.
		return len(buf) > 1
	}
	return false
}

var self = [...]Lexeme{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Lexeme, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
