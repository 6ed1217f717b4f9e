package jpath

import (
	"errors"
	"strconv"
	"strings"
)

// ParseProjection parses a path projection as reported by jreader.Reader.Path
// into an expression of Member and Index steps. A bare "." step, denoting an
// object before any name was read, becomes a Member step with an empty name.
//
// Names in a projection are not quoted, so a name containing "." or "[" is
// split at that character.
func ParseProjection(path string) (Expr, error) {
	t, ok := strings.CutPrefix(path, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var out Expr
	for t != "" {
		switch t[0] {
		case '.':
			i := strings.IndexAny(t[1:], ".[")
			if i < 0 {
				i = len(t) - 1
			}
			out = append(out, Step{Op: Member, Arg1: t[1 : i+1], Arg2: Name.String()})
			t = t[i+1:]
		case '[':
			end := strings.IndexByte(t, ']')
			if end < 0 {
				return nil, errors.New("missing close bracket")
			}
			if _, err := strconv.Atoi(t[1:end]); err != nil {
				return nil, errors.New("invalid index")
			}
			out = append(out, Step{Op: Index, Arg1: t[1:end]})
			t = t[end+1:]
		default:
			return nil, errors.New("invalid path step")
		}
	}
	return out, nil
}

// Match reports whether the path projection matches e. Filter and script
// steps never match, since they require the value at the path. An invalid
// projection matches nothing.
func (e Expr) Match(path string) bool {
	p, err := ParseProjection(path)
	if err != nil {
		return false
	}
	return e.MatchProjection(p)
}

// MatchProjection reports whether p, which must consist only of Member and
// Index steps, matches e.
func (e Expr) MatchProjection(p Expr) bool { return matchSteps(e, p) }

func matchSteps(steps, path []Step) bool {
	if len(steps) == 0 {
		return len(path) == 0
	}
	s := steps[0]
	if s.Op == Recur {
		// Recursive descent matches zero or more steps before its name.
		for i := range path {
			if s.matchOne(path[i]) && matchSteps(steps[1:], path[i+1:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 || !s.matchOne(path[0]) {
		return false
	}
	return matchSteps(steps[1:], path[1:])
}

// matchOne reports whether s matches the concrete projection step p.
func (s Step) matchOne(p Step) bool {
	switch s.Op {
	case Member, Recur:
		if s.Arg2 == Wildcard.String() {
			return true
		}
		return p.Op == Member && p.Arg1 == s.Arg1
	case Wildcard:
		return true
	case Name, QName:
		return p.Op == Member && p.Arg1 == s.Arg1
	case Index:
		if p.Op != Index {
			return false
		}
		for _, idx := range strings.Split(s.Arg1, ",") {
			if idx == p.Arg1 {
				return true
			}
		}
		return false
	case Slice:
		if p.Op != Index {
			return false
		}
		i, _ := strconv.Atoi(p.Arg1)
		lo, hi, ok := sliceBounds(s.Arg1, s.Arg2)
		return ok && i >= lo && (hi < 0 || i < hi)
	}
	return false
}

// sliceBounds returns the bounds of a slice, with hi < 0 for an open upper
// bound. Negative bounds are relative to the array length, which is unknown
// to a projection, so they are reported as not ok.
func sliceBounds(a1, a2 string) (lo, hi int, ok bool) {
	hi = -1
	if a1 != "" {
		v, err := strconv.Atoi(a1)
		if err != nil || v < 0 {
			return 0, 0, false
		}
		lo = v
	}
	if a2 != "" {
		v, err := strconv.Atoi(a2)
		if err != nil || v < 0 {
			return 0, 0, false
		}
		hi = v
	}
	return lo, hi, true
}
