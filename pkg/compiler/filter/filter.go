// Package filter rewrites Vue template filter pipelines
// (`value | capitalize | truncate(10)`) into nested `_f` calls.
package filter

import (
	"regexp"
	"strings"
)

var validDivisionCharRE = regexp.MustCompile(`[\w).+\-_$\]]`)

// Parse rewrites exp so that every top-level `| name` or `| name(args)`
// segment wraps the preceding expression. Pipes inside string, template or
// regex literals and inside brackets are left untouched, as is `||`.
func Parse(exp string) string {
	var (
		inSingle, inDouble, inTemplate, inRegex bool
		curly, square, paren                    int
		lastFilterIndex                         int
		expression                              string
		haveExpression                          bool
		filters                                 []string
		c, prev                                 byte
		i                                       int
	)

	pushFilter := func() {
		filters = append(filters, strings.TrimSpace(exp[lastFilterIndex:i]))
		lastFilterIndex = i + 1
	}

	for i = 0; i < len(exp); i++ {
		prev = c
		c = exp[i]
		switch {
		case inSingle:
			if c == '\'' && prev != '\\' {
				inSingle = false
			}
		case inDouble:
			if c == '"' && prev != '\\' {
				inDouble = false
			}
		case inTemplate:
			if c == '`' && prev != '\\' {
				inTemplate = false
			}
		case inRegex:
			if c == '/' && prev != '\\' {
				inRegex = false
			}
		case c == '|' && byteAt(exp, i+1) != '|' && byteAt(exp, i-1) != '|' &&
			curly == 0 && square == 0 && paren == 0:
			if !haveExpression {
				lastFilterIndex = i + 1
				expression = strings.TrimSpace(exp[:i])
				haveExpression = true
			} else {
				pushFilter()
			}
		default:
			switch c {
			case '"':
				inDouble = true
			case '\'':
				inSingle = true
			case '`':
				inTemplate = true
			case '(':
				paren++
			case ')':
				paren--
			case '[':
				square++
			case ']':
				square--
			case '{':
				curly++
			case '}':
				curly--
			}
			if c == '/' && startsRegex(exp, i) {
				inRegex = true
			}
		}
	}

	if !haveExpression {
		expression = strings.TrimSpace(exp[:i])
	} else if lastFilterIndex != 0 {
		pushFilter()
	}

	for _, f := range filters {
		expression = wrap(expression, f)
	}
	return expression
}

// startsRegex reports whether the slash at i opens a regex literal rather
// than a division, judged by the nearest non-space character before it.
func startsRegex(exp string, i int) bool {
	var p byte
	found := false
	for j := i - 1; j >= 0; j-- {
		p = exp[j]
		found = true
		if p != ' ' {
			break
		}
	}
	return !found || !validDivisionCharRE.Match([]byte{p})
}

func wrap(exp, filter string) string {
	i := strings.IndexByte(filter, '(')
	if i < 0 {
		return `_f("` + filter + `")(` + exp + `)`
	}
	name := filter[:i]
	args := filter[i+1:]
	if args == ")" {
		return `_f("` + name + `")(` + exp + args
	}
	return `_f("` + name + `")(` + exp + "," + args
}

func byteAt(s string, i int) byte {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}
