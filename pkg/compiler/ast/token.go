package ast

import "strings"

// TokenKind identifies what a lexer token carries.
type TokenKind int

const (
	OpenTag TokenKind = iota
	CloseTag
	Text
	Comment
	CommentEnd
)

func (k TokenKind) String() string {
	switch k {
	case OpenTag:
		return "open"
	case CloseTag:
		return "close"
	case Text:
		return "text"
	case Comment:
		return "comment"
	case CommentEnd:
		return "comment-end"
	default:
		return "unknown"
	}
}

// QuoteType records how an attribute value was written in the source.
type QuoteType int

const (
	// NoValue marks an attribute written without `=value`.
	NoValue QuoteType = iota
	Unquoted
	Single
	Double
)

// RawAttr is an attribute as it appeared on an open tag.
type RawAttr struct {
	Name  string    `json:"name"`
	Value string    `json:"value,omitempty"`
	Quote QuoteType `json:"quote,omitempty"`
}

// HasValue reports whether the attribute was written with a value.
func (a RawAttr) HasValue() bool {
	return a.Quote != NoValue
}

// Attrs is the attribute list of an open tag. Lookups are case-insensitive;
// the source order is kept so processing is deterministic.
type Attrs []RawAttr

func (as Attrs) index(name string) int {
	for i, a := range as {
		if strings.EqualFold(a.Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the attribute named name.
func (as Attrs) Get(name string) (RawAttr, bool) {
	if i := as.index(name); i >= 0 {
		return as[i], true
	}
	return RawAttr{}, false
}

// Has reports whether an attribute named name exists.
func (as Attrs) Has(name string) bool {
	return as.index(name) >= 0
}

// Set replaces the attribute named a.Name or appends it.
func (as *Attrs) Set(a RawAttr) {
	if i := as.index(a.Name); i >= 0 {
		(*as)[i] = a
		return
	}
	*as = append(*as, a)
}

// Delete removes the attribute named name.
func (as *Attrs) Delete(name string) {
	if i := as.index(name); i >= 0 {
		*as = append((*as)[:i], (*as)[i+1:]...)
	}
}

// Token is one unit of lexer output.
type Token struct {
	Kind TokenKind `json:"kind"`
	// Data is the tag name for tag tokens and the text for text and comments.
	Data  string `json:"data,omitempty"`
	Attrs Attrs  `json:"attrs,omitempty"`
	// Implied marks close tags the lexer synthesized (void, self-closing or
	// unclosed elements).
	Implied bool `json:"implied,omitempty"`
}

// Clone returns a copy of t that does not share its attribute slice.
func (t Token) Clone() Token {
	c := t
	if t.Attrs != nil {
		c.Attrs = append(Attrs(nil), t.Attrs...)
	}
	return c
}
