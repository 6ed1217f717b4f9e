// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jreader implements a pull-based JSON reader that tracks the path of
// its position in the document, with an optional lenient grammar.
//
// # Reading
//
// The Reader type delivers the tokens of a JSON input one at a time, on
// demand. The caller drives the traversal, calling the method that matches
// the structure it expects:
//
//	r := jreader.NewReader(input)
//	if err := r.BeginObject(); err != nil {
//	   log.Fatalf("BeginObject: %v", err)
//	}
//	for r.HasNext() {
//	   name, err := r.NextName()
//	   ...
//	   switch name {
//	   case "name":
//	      user.Name, err = r.NextString()
//	   case "age":
//	      user.Age, err = r.NextInt()
//	   default:
//	      err = r.SkipValue()
//	   }
//	}
//	if err := r.EndObject(); err != nil {
//	   log.Fatalf("EndObject: %v", err)
//	}
//
// Peek reports the kind of the next token without consuming it, and Next
// consumes a token of any kind.
//
// # Paths
//
// The Path method reports the current position as a path projection:
//
//	Path           | Meaning
//	-------------- | -----------------------------------------------
//	$              | the root, before or after the top-level value
//	$.             | inside an object, before any name is read
//	$.users        | the member "users" of the top-level object
//	$.users[1]     | the next element of "users" to be read is #1
//	$.users[0].null| the value of a member of users[0] was skipped
//
// # Lenient mode
//
// By default a Reader accepts exactly the grammar of RFC 8259. Call
// SetLenient(true), or construct the reader with Options.Lenient, to accept
// a superset: comments, unquoted names and strings, single-quoted strings,
// NaN and infinities, trailing commas, and multiple top-level values.
//
// # Errors
//
// Errors reported by a Reader or Writer have concrete type *SyntaxError, and
// match one of the ErrorKind constants with errors.Is.
//
// # Scanning
//
// The Scanner type implements the lexical scanner underlying a Reader.
// Construct a scanner from an io.Reader and call its Next method to iterate
// over the stream. Next returns io.EOF when the input has been fully
// consumed. Any other error indicates an I/O or lexical error in the input.
//
// # Walking
//
// Walk drives a Reader over a complete value and reports its structure to a
// Handler, and Copy transfers a complete value from a Reader to a Writer.
package jreader
