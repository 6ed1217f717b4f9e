// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines an abstract syntax tree for JSON values,
// and a parser that constructs syntax trees from JSON source.
package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/creachadair/jreader"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// JSON returns the compact JSON encoding of the value.
	JSON() string
}

// An Object is a collection of key-value members, in input order.
type Object []*Member

// Find returns the first member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	if i := o.IndexKey(func(s string) bool { return s == key }); i >= 0 {
		return o[i]
	}
	return nil
}

// IndexKey returns the index of the first member of o for whose key f
// reports true, or -1.
func (o Object) IndexKey(f func(string) bool) int {
	for i, m := range o {
		if f(m.Key) {
			return i
		}
	}
	return -1
}

// Len reports the number of members in o.
func (o Object) Len() int { return len(o) }

func (o Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o)) }

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// Field constructs an object member with the given key and value.
// The value must be a type accepted by ToValue.
func Field(key string, value any) *Member {
	return &Member{Key: key, Value: ToValue(value)}
}

func (m Member) JSON() string { return jreader.Quote(m.Key) + ":" + m.Value.JSON() }

func (m Member) String() string { return fmt.Sprintf("Member(key=%q)", m.Key) }

// An Array is a sequence of values.
type Array []Value

// Len reports the number of elements in a.
func (a Array) Len() int { return len(a) }

func (a Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a)) }

// A String is a string value. The contents are decoded.
type String string

func (s String) JSON() string { return jreader.Quote(string(s)) }

// Len reports the length of s in bytes.
func (s String) Len() int { return len(s) }

// A Number is a numeric value. It retains the text of the number as written,
// which for input read in lenient mode may be NaN, Infinity, or -Infinity.
type Number struct{ text string }

// Int constructs a Number from an integer value.
func Int(z int64) Number { return Number{text: strconv.FormatInt(z, 10)} }

// Float constructs a Number from a floating-point value.
func Float(f float64) Number {
	switch {
	case math.IsNaN(f):
		return Number{text: "NaN"}
	case math.IsInf(f, 1):
		return Number{text: "Infinity"}
	case math.IsInf(f, -1):
		return Number{text: "-Infinity"}
	}
	return Number{text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// IsInt reports whether n is written as an integer that fits in an int64.
func (n Number) IsInt() bool {
	_, err := strconv.ParseInt(n.text, 10, 64)
	return err == nil
}

// Int64 returns n as an int64, truncating a fraction if necessary.
func (n Number) Int64() int64 {
	if z, err := strconv.ParseInt(n.text, 10, 64); err == nil {
		return z
	}
	return int64(n.Float64())
}

// Float64 returns n as a float64.
func (n Number) Float64() float64 {
	switch n.text {
	case "NaN":
		return math.NaN()
	case "Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, _ := strconv.ParseFloat(n.text, 64)
	return f
}

func (n Number) JSON() string { return n.text }

func (n Number) String() string { return n.text }

// A Bool is a Boolean constant, true or false.
type Bool bool

func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

type nullValue struct{}

func (nullValue) JSON() string   { return "null" }
func (nullValue) String() string { return "null" }

// Null is the null constant.
var Null Value = nullValue{}
