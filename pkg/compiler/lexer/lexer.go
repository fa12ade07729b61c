// Package lexer turns template source into the token stream consumed by the
// parser. Tokenization is delegated to golang.org/x/net/html; the lexer adds
// what a template compiler needs on top of it: original-case tag and
// attribute names, quote styles, and balanced open/close tokens.
package lexer

import (
	"io"
	"iter"
	"strings"

	"golang.org/x/net/html"

	"github.com/recera/vuec/pkg/compiler/ast"
)

// Options configures a Lexer.
type Options struct {
	// IsUnaryTag reports void elements such as <input> that never take a
	// close tag.
	IsUnaryTag func(tag string) bool
	// Warn receives structural diagnostics. It may be nil.
	Warn func(msg string)
}

// Lexer produces tokens for one template.
type Lexer struct {
	z       *html.Tokenizer
	opts    Options
	stack   []string
	pending []ast.Token
	done    bool
}

// New creates a lexer over src.
func New(src string, opts Options) *Lexer {
	return &Lexer{
		z:    html.NewTokenizer(strings.NewReader(src)),
		opts: opts,
	}
}

// Tokenize lexes src completely.
func Tokenize(src string, opts Options) []ast.Token {
	var out []ast.Token
	for tok := range New(src, opts).All() {
		out = append(out, tok)
	}
	return out
}

// All returns the remaining tokens as an iterator.
func (l *Lexer) All() iter.Seq[ast.Token] {
	return func(yield func(ast.Token) bool) {
		for {
			tok, ok := l.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Next returns the next token, or false once the input is exhausted and
// every open element has been closed.
func (l *Lexer) Next() (ast.Token, bool) {
	for len(l.pending) == 0 {
		if l.done {
			return ast.Token{}, false
		}
		l.advance()
	}
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok, true
}

func (l *Lexer) emit(tok ast.Token) {
	l.pending = append(l.pending, tok)
}

func (l *Lexer) warn(msg string) {
	if l.opts.Warn != nil {
		l.opts.Warn(msg)
	}
}

func (l *Lexer) isUnary(tag string) bool {
	return l.opts.IsUnaryTag != nil && l.opts.IsUnaryTag(strings.ToLower(tag))
}

// plainTextTags are the only elements whose content is not tokenized as
// markup; title, noscript, iframe and the like hold child elements.
var plainTextTags = map[string]bool{"script": true, "style": true, "textarea": true}

func (l *Lexer) advance() {
	tt := l.z.Next()
	switch tt {
	case html.ErrorToken:
		if err := l.z.Err(); err != nil && err != io.EOF {
			l.warn("template tokenizer stopped: " + err.Error())
		}
		for i := len(l.stack) - 1; i >= 0; i-- {
			l.warn("tag <" + l.stack[i] + "> has no matching end tag.")
			l.emit(ast.Token{Kind: ast.CloseTag, Data: l.stack[i], Implied: true})
		}
		l.stack = nil
		l.done = true

	case html.TextToken:
		l.emit(ast.Token{Kind: ast.Text, Data: string(l.z.Text())})

	case html.CommentToken:
		l.emit(ast.Token{Kind: ast.Comment, Data: string(l.z.Text())})

	case html.StartTagToken, html.SelfClosingTagToken:
		// Raw must be copied before TagName/TagAttr lower-case the buffer.
		raw := string(l.z.Raw())
		tok := l.openTag(raw)
		if tt == html.StartTagToken && !plainTextTags[strings.ToLower(tok.Data)] {
			l.z.NextIsNotRawText()
		}
		l.emit(tok)
		if tt == html.SelfClosingTagToken || l.isUnary(tok.Data) {
			l.emit(ast.Token{Kind: ast.CloseTag, Data: tok.Data, Implied: true})
			return
		}
		l.stack = append(l.stack, tok.Data)

	case html.EndTagToken:
		raw := string(l.z.Raw())
		l.closeTag(rawTagName(raw))
	}
}

func (l *Lexer) openTag(raw string) ast.Token {
	name, hasAttr := l.z.TagName()
	tag := rawTagName(raw)
	if !strings.EqualFold(tag, string(name)) {
		tag = string(name)
	}
	tok := ast.Token{Kind: ast.OpenTag, Data: tag}
	if !hasAttr {
		return tok
	}

	scanned := scanAttrs(raw)
	for i := 0; ; i++ {
		key, val, more := l.z.TagAttr()
		a := ast.RawAttr{Name: string(key), Value: string(val), Quote: ast.Double}
		if i < len(scanned) && strings.EqualFold(scanned[i].name, a.Name) {
			a.Name = scanned[i].name
			a.Quote = scanned[i].quote
		} else if len(val) == 0 {
			a.Quote = ast.NoValue
		}
		if tok.Attrs.Has(a.Name) {
			l.warn("duplicate attribute: " + a.Name)
		} else {
			tok.Attrs = append(tok.Attrs, a)
		}
		if !more {
			break
		}
	}
	return tok
}

func (l *Lexer) closeTag(tag string) {
	pos := -1
	for i := len(l.stack) - 1; i >= 0; i-- {
		if strings.EqualFold(l.stack[i], tag) {
			pos = i
			break
		}
	}
	if pos >= 0 {
		for i := len(l.stack) - 1; i > pos; i-- {
			l.warn("tag <" + l.stack[i] + "> has no matching end tag.")
			l.emit(ast.Token{Kind: ast.CloseTag, Data: l.stack[i], Implied: true})
		}
		l.emit(ast.Token{Kind: ast.CloseTag, Data: l.stack[pos]})
		l.stack = l.stack[:pos]
		return
	}

	// browsers treat a stray </br> as <br> and </p> as an empty paragraph
	switch strings.ToLower(tag) {
	case "br":
		l.emit(ast.Token{Kind: ast.OpenTag, Data: tag})
		l.emit(ast.Token{Kind: ast.CloseTag, Data: tag, Implied: true})
	case "p":
		l.emit(ast.Token{Kind: ast.OpenTag, Data: tag})
		l.emit(ast.Token{Kind: ast.CloseTag, Data: tag})
	}
}
