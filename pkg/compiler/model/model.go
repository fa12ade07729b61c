// Package model parses v-model style assignment targets.
package model

import "strings"

// Target is a parsed assignment target. Key is empty for plain paths such as
// `a.b.c`; for `a[b]` style targets it holds the trailing computed key.
type Target struct {
	Exp string
	Key string
}

// HasKey reports whether the target ends in a computed key.
func (t Target) HasKey() bool {
	return t.Key != ""
}

// Parse splits val into the object expression and its trailing computed key:
//
//	test[key]          -> test, key
//	test[test1[key]]   -> test, test1[key]
//	test["a"][key]     -> test["a"], key
//	xxx.test[a[a].test1[key]] -> xxx.test, a[a].test1[key]
//
// Targets without a trailing `]`, or whose last bracket never closes, are
// returned whole.
func Parse(val string) Target {
	val = strings.TrimSpace(val)
	n := len(val)
	if !strings.Contains(val, "[") || strings.LastIndex(val, "]") < n-1 {
		return Target{Exp: val}
	}

	s := scanner{str: val}
	for !s.eof() {
		c := s.next()
		if isStringStart(c) {
			s.skipString(c)
		} else if c == '[' {
			s.bracket()
		}
	}
	if s.expressionPos == 0 || s.expressionEndPos <= s.expressionPos {
		return Target{Exp: val}
	}
	return Target{
		Exp: val[:s.expressionPos],
		Key: val[s.expressionPos+1 : s.expressionEndPos],
	}
}

// GenAssignmentCode returns the statement that writes assignment into the
// target described by value.
func GenAssignmentCode(value, assignment string) string {
	t := Parse(value)
	if !t.HasKey() {
		return value + "=" + assignment
	}
	return "$set(" + t.Exp + ", " + t.Key + ", " + assignment + ")"
}

type scanner struct {
	str              string
	index            int
	expressionPos    int
	expressionEndPos int
}

func (s *scanner) next() byte {
	s.index++
	if s.index >= len(s.str) {
		return 0
	}
	return s.str[s.index]
}

func (s *scanner) eof() bool {
	return s.index >= len(s.str)
}

func (s *scanner) bracket() {
	depth := 1
	s.expressionPos = s.index
	for !s.eof() {
		c := s.next()
		if isStringStart(c) {
			s.skipString(c)
			continue
		}
		if c == '[' {
			depth++
		}
		if c == ']' {
			depth--
		}
		if depth == 0 {
			s.expressionEndPos = s.index
			break
		}
	}
}

func (s *scanner) skipString(quote byte) {
	for !s.eof() {
		if s.next() == quote {
			break
		}
	}
}

func isStringStart(c byte) bool {
	return c == '"' || c == '\''
}
