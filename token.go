// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jreader

import (
	"math"
	"strconv"
)

// Kind is the kind of a token produced by a Reader.
type Kind byte

// Constants defining the valid Kind values.
const (
	Unknown     Kind = iota // no token
	BeginObject             // start of an object "{"
	EndObject               // end of an object "}"
	BeginArray              // start of an array "["
	EndArray                // end of an array "]"
	MemberName              // object member name
	StringValue             // string value
	NumberValue             // number value
	BoolValue               // true or false
	NullValue               // null
	EndDocument             // end of the input
)

var kindNames = [...]string{
	Unknown:     "unknown",
	BeginObject: "BEGIN_OBJECT",
	EndObject:   "END_OBJECT",
	BeginArray:  "BEGIN_ARRAY",
	EndArray:    "END_ARRAY",
	MemberName:  "NAME",
	StringValue: "STRING",
	NumberValue: "NUMBER",
	BoolValue:   "BOOLEAN",
	NullValue:   "NULL",
	EndDocument: "END_DOCUMENT",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

// IsValue reports whether k begins a value: a scalar or a container.
func (k Kind) IsValue() bool {
	switch k {
	case BeginObject, BeginArray, StringValue, NumberValue, BoolValue, NullValue:
		return true
	}
	return false
}

// A Token is a single token produced by a Reader.
//
// For MemberName and StringValue tokens, Text is the decoded string.
// For NumberValue tokens Text is the number as written in the input, which in
// lenient mode may be NaN, Infinity, or -Infinity. For BoolValue tokens Text
// is "true" or "false". Text is empty for all other kinds.
type Token struct {
	Kind Kind
	Text string
}

// Bool reports whether t is the BoolValue true.
func (t Token) Bool() bool { return t.Kind == BoolValue && t.Text == "true" }

func (t Token) String() string {
	switch t.Kind {
	case MemberName, NumberValue, BoolValue:
		return t.Kind.String() + "(" + t.Text + ")"
	case StringValue:
		return t.Kind.String() + "(" + strconv.Quote(t.Text) + ")"
	}
	return t.Kind.String()
}

// isNonFinite reports whether s is one of the lenient non-finite number
// literals.
func isNonFinite(s string) bool {
	return s == "NaN" || s == "Infinity" || s == "-Infinity"
}

func nonFinite(s string) float64 {
	switch s {
	case "Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	return math.NaN()
}

// isNumber reports whether s is a number in the strict JSON grammar.
func isNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := func() int {
		n := 0
		for i < len(s) && isDigit(rune(s[i])) {
			i++
			n++
		}
		return n
	}
	start := i
	if n := digits(); n == 0 || (n > 1 && s[start] == '0') {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(s)
}
