// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jreader_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/creachadair/jreader"
	"github.com/creachadair/jreader/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func TestWalk(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "."},
		{"   ", "."},

		{`"a b"`, `
Value STRING("a b") $
.`},

		{`{}`, "BeginObject $\nEndObject $\n."},

		{`{"a":15}`, `
BeginObject $
BeginMember a $.a
Value NUMBER(15) $.a
EndMember $.a
EndObject $
.`},

		{`{"x":null, "y":[true, "s"]}`, `
BeginObject $
BeginMember x $.x
Value NULL $.x
EndMember $.x
BeginMember y $.y
BeginArray $.y
Value BOOLEAN(true) $.y[0]
Value STRING("s") $.y[1]
EndArray $.y
EndMember $.y
EndObject $
.`},

		{`[[], {}, -0.5]`, `
BeginArray $
BeginArray $[0]
EndArray $[0]
BeginObject $[1]
EndObject $[1]
Value NUMBER(-0.5) $[2]
EndArray $
.`},
	}

	for _, test := range tests {
		th := new(testHandler)
		if err := jreader.WalkAll(testutil.NewReader(test.input, false), th); err != nil {
			t.Errorf("WalkAll failed: %v", err)
		}
		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestWalkErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
		kind  jreader.ErrorKind
	}{
		{`{`, `BeginObject $`, jreader.ErrPrematureEnd},
		{`}`, ``, jreader.ErrUnexpectedToken},
		{`{"true":}`, `
BeginObject $
BeginMember true $.true`, jreader.ErrUnexpectedToken},
		{`[15,]`, `
BeginArray $
Value NUMBER(15) $[0]`, jreader.ErrUnexpectedToken},
		{`1 2`, `Value NUMBER(1) $`, jreader.ErrUnexpectedToken},
		{`[1 forthright]`, `
BeginArray $
Value NUMBER(1) $[0]`, jreader.ErrMalformedInput},
		{`["what did you`, `BeginArray $`, jreader.ErrPrematureEnd},
	}

	for _, test := range tests {
		th := new(testHandler)
		err := jreader.WalkAll(testutil.NewReader(test.input, false), th)
		if err == nil {
			t.Errorf("Input %#q: WalkAll did not report an error", test.input)
			continue
		} else if !errors.Is(err, test.kind) {
			t.Errorf("Input %#q: got error %v, want %v", test.input, err, test.kind)
		}
		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestWalkOne(t *testing.T) {
	const input = `{ love: true } [] ok // fin`
	const want = `
BeginObject $
BeginMember love $.love
Value BOOLEAN(true) $.love
EndMember $.love
EndObject $
---
BeginArray $
EndArray $
---
Value STRING("ok") $
---
.`
	th := new(testHandler)
	r := testutil.NewReader(input, true)
	for {
		err := jreader.Walk(r, th)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Walk failed: %v", err)
		}
		th.pr("---")
	}

	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", input, diff)
	}
}

func TestWalkHandlerError(t *testing.T) {
	errStop := errors.New("stop")
	th := &testHandler{stopAt: "b", err: errStop}
	err := jreader.Walk(testutil.NewReader(`{"a":1, "b":2, "c":3}`, false), th)
	if !errors.Is(err, errStop) {
		t.Errorf("Walk: got %v, want %v", err, errStop)
	}
	const want = `
BeginObject $
BeginMember a $.a
Value NUMBER(1) $.a
EndMember $.a`
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestWalkLocation(t *testing.T) {
	const input = "[\n  1,\n  {\"x\": \"y\"}\n]"
	lh := new(locHandler)
	if err := jreader.WalkAll(testutil.NewReader(input, false), lh); err != nil {
		t.Fatalf("WalkAll failed: %v", err)
	}
	want := []string{
		"BeginArray 1:0-1",
		"Value 2:2-3",
		"BeginObject 3:2-3",
		"BeginMember 3:3-6",
		"Value 3:8-11",
		"EndObject 3:11-12",
		"EndArray 4:0-1",
	}
	if diff := cmp.Diff(want, lh.log); diff != "" {
		t.Errorf("Locations: (-want, +got)\n%s", diff)
	}
}

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}

type testHandler struct {
	buf    bytes.Buffer
	stopAt string // if set, fail at a member with this name
	err    error
}

func (t *testHandler) pr(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(&t.buf, msg, args...)
}

func (t *testHandler) output() string { return t.buf.String() }

func (t *testHandler) BeginObject(loc jreader.Anchor) error { t.pr("BeginObject %s", loc.Path()); return nil }
func (t *testHandler) EndObject(loc jreader.Anchor) error   { t.pr("EndObject %s", loc.Path()); return nil }
func (t *testHandler) BeginArray(loc jreader.Anchor) error  { t.pr("BeginArray %s", loc.Path()); return nil }
func (t *testHandler) EndArray(loc jreader.Anchor) error    { t.pr("EndArray %s", loc.Path()); return nil }
func (t *testHandler) EndOfInput(loc jreader.Anchor)        { t.pr(".") }

func (t *testHandler) BeginMember(loc jreader.Anchor) error {
	if name := loc.Token().Text; t.stopAt != "" && name == t.stopAt {
		return t.err
	}
	t.pr("BeginMember %s %s", loc.Token().Text, loc.Path())
	return nil
}

func (t *testHandler) EndMember(loc jreader.Anchor) error {
	t.pr("EndMember %s", loc.Path())
	return nil
}

func (t *testHandler) Value(loc jreader.Anchor) error {
	t.pr("Value %s %s", loc.Token(), loc.Path())
	return nil
}

// locHandler records the location of each event other than member ends.
type locHandler struct{ log []string }

func (h *locHandler) add(tag string, loc jreader.Anchor) error {
	h.log = append(h.log, tag+" "+loc.Location().String())
	return nil
}

func (h *locHandler) BeginObject(loc jreader.Anchor) error { return h.add("BeginObject", loc) }
func (h *locHandler) EndObject(loc jreader.Anchor) error   { return h.add("EndObject", loc) }
func (h *locHandler) BeginArray(loc jreader.Anchor) error  { return h.add("BeginArray", loc) }
func (h *locHandler) EndArray(loc jreader.Anchor) error    { return h.add("EndArray", loc) }
func (h *locHandler) BeginMember(loc jreader.Anchor) error { return h.add("BeginMember", loc) }
func (h *locHandler) EndMember(loc jreader.Anchor) error   { return nil }
func (h *locHandler) Value(loc jreader.Anchor) error       { return h.add("Value", loc) }
func (h *locHandler) EndOfInput(loc jreader.Anchor)        {}
