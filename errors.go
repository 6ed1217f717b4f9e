// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jreader

import "fmt"

// ErrorKind classifies the errors reported by a Reader or Writer. The
// constants of this type are comparable error values, so a caller may test
// the kind of a failure with errors.Is:
//
//	if errors.Is(err, jreader.ErrNumberFormat) { ... }
type ErrorKind byte

// Constants defining the kinds of errors.
const (
	// ErrMalformedInput reports a lexically invalid token.
	ErrMalformedInput ErrorKind = 1 + iota

	// ErrUnexpectedToken reports a token that is not valid in the current
	// state, such as a scalar read where a container is next.
	ErrUnexpectedToken

	// ErrNumberFormat reports numeric text that does not fit the requested
	// numeric type.
	ErrNumberFormat

	// ErrPrematureEnd reports that the input ended within a token or before
	// an open container was closed.
	ErrPrematureEnd
)

var kindStr = [...]string{
	ErrMalformedInput:  "malformed input",
	ErrUnexpectedToken: "unexpected token",
	ErrNumberFormat:    "invalid number format",
	ErrPrematureEnd:    "premature end of input",
}

// Error satisfies the error interface.
func (k ErrorKind) Error() string {
	if int(k) < len(kindStr) && kindStr[k] != "" {
		return kindStr[k]
	}
	return fmt.Sprintf("error kind %d", byte(k))
}

// SyntaxError is the concrete type of errors reported by a Reader or Writer.
type SyntaxError struct {
	Kind     ErrorKind
	Location LineCol // zero for errors reported by a Writer
	Path     string  // the path projection where the error occurred
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	if s.Location.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", s.Path, s.Kind, s.Message)
	}
	return fmt.Sprintf("at %s (%s): %s: %s", s.Location, s.Path, s.Kind, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// Is reports whether target is the kind of s.
func (s *SyntaxError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == s.Kind
}
