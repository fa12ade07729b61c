// Package text parses mustache-style interpolation in template text.
package text

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/recera/vuec/pkg/compiler/filter"
)

// Delimiters holds the opening and closing interpolation markers. The zero
// value selects the default `{{` / `}}` pair.
type Delimiters struct {
	Open  string
	Close string
}

// IsZero reports whether d selects the default delimiters.
func (d Delimiters) IsZero() bool {
	return d.Open == "" && d.Close == ""
}

// Segment is one piece of parsed text: either a literal run or a binding
// expression (already passed through the filter engine).
type Segment struct {
	Value   string `json:"value"`
	Binding bool   `json:"binding,omitempty"`
}

// String renders the segment the way diagnostics print raw tokens.
func (s Segment) String() string {
	if s.Binding {
		return "@binding: " + s.Value
	}
	return s.Value
}

// Result is the outcome of parsing a text node that contains interpolation.
type Result struct {
	Expression string
	Tokens     []Segment
}

var defaultTagRE = regexp.MustCompile(`(?s)\{\{(.+?)\}\}`)

var (
	cacheMu  sync.Mutex
	tagCache = make(map[Delimiters]*regexp.Regexp)
)

func tagRegexp(d Delimiters) *regexp.Regexp {
	if d.IsZero() {
		return defaultTagRE
	}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if re, ok := tagCache[d]; ok {
		return re
	}
	re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(d.Open) + `(.+?)` + regexp.QuoteMeta(d.Close))
	tagCache[d] = re
	return re
}

// Parse scans text for interpolation spans. It returns false when the text
// holds no interpolation at all.
func Parse(text string, d Delimiters) (Result, bool) {
	re := tagRegexp(d)
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return Result{}, false
	}

	var (
		exprs     []string
		segments  []Segment
		lastIndex int
	)
	for _, m := range matches {
		index := m[0]
		if index > lastIndex {
			lit := text[lastIndex:index]
			segments = append(segments, Segment{Value: lit})
			exprs = append(exprs, Quote(lit))
		}
		exp := filter.Parse(strings.TrimSpace(text[m[2]:m[3]]))
		exprs = append(exprs, "_s("+exp+")")
		segments = append(segments, Segment{Value: exp, Binding: true})
		lastIndex = m[1]
	}
	if lastIndex < len(text) {
		lit := text[lastIndex:]
		segments = append(segments, Segment{Value: lit})
		exprs = append(exprs, Quote(lit))
	}

	return Result{
		Expression: strings.Join(exprs, "+"),
		Tokens:     segments,
	}, true
}

// Quote renders s as a JavaScript string literal.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
