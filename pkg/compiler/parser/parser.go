// Package parser builds the template AST from a token stream: it runs the
// structural directive passes, resolves v-if chains and slots, classifies
// bindings and drives the platform transform modules.
package parser

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/lexer"
	"github.com/recera/vuec/pkg/compiler/text"
)

// Parser holds the traversal state of one parse. A Parser may be reused for
// several templates but not concurrently.
type Parser struct {
	opts Options
	log  *slog.Logger

	tree          *ast.Tree
	template      string
	stack         []int
	currentParent int
	root          int
	inVPre        bool
	inPre         bool
	ignoreNewline bool

	warnings []string
	warned   map[string]bool
}

// New creates a parser.
func New(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		opts: opts,
		log:  logger.With(slog.String("component", "parser")),
	}
}

// Parse lexes and parses template with opts.
func Parse(template string, opts Options) *ast.Tree {
	return New(opts).Parse(template)
}

// Options returns the parser's configuration.
func (p *Parser) Options() *Options {
	return &p.opts
}

// Tree returns the tree of the current (or last) parse.
func (p *Parser) Tree() *ast.Tree {
	return p.tree
}

// Warnings returns the diagnostics emitted by the last parse.
func (p *Parser) Warnings() []string {
	return p.warnings
}

// Parse lexes template and builds its AST.
func (p *Parser) Parse(template string) *ast.Tree {
	lx := lexer.New(template, lexer.Options{
		IsUnaryTag: p.opts.IsUnaryTag,
		Warn:       p.Warn,
	})
	return p.ParseTokens(template, lx.All())
}

// ParseTokens builds the AST from an already lexed token stream. template is
// the source the tokens came from; it is only used for diagnostics.
func (p *Parser) ParseTokens(template string, tokens iter.Seq[ast.Token]) *ast.Tree {
	p.reset(template)
	for tok := range tokens {
		ignoreNewline := p.ignoreNewline
		p.ignoreNewline = false
		switch tok.Kind {
		case ast.OpenTag:
			p.start(tok)
		case ast.CloseTag:
			p.end()
		case ast.Text:
			if ignoreNewline {
				tok.Data = strings.TrimPrefix(tok.Data, "\n")
			}
			p.chars(tok.Data)
		case ast.Comment:
			p.comment(tok.Data)
		case ast.CommentEnd:
		}
	}
	for len(p.stack) > 0 {
		p.end()
	}
	p.log.Debug("template parsed", slog.Int("nodes", p.tree.Len()), slog.Int("warnings", len(p.warnings)))
	return p.tree
}

func (p *Parser) reset(template string) {
	p.tree = ast.NewTree()
	p.template = template
	p.stack = p.stack[:0]
	p.currentParent = ast.NoParent
	p.root = ast.NoParent
	p.inVPre = false
	p.inPre = false
	p.ignoreNewline = false
	p.warnings = nil
	p.warned = make(map[string]bool)
}

// Warn reports a diagnostic when dev mode is on.
func (p *Parser) Warn(msg string) {
	if !p.opts.Dev {
		return
	}
	p.warnings = append(p.warnings, msg)
	if p.opts.Warn != nil {
		p.opts.Warn(msg)
		return
	}
	p.log.Warn(msg)
}

// warnOnce reports msg only the first time it occurs in a parse.
func (p *Parser) warnOnce(msg string) {
	if p.warned[msg] {
		return
	}
	p.warned[msg] = true
	p.Warn(msg)
}

// ParentElement returns n's parent element, or nil when n sits directly
// under the root wrapper.
func (p *Parser) ParentElement(n *ast.Node) *ast.Node {
	parent, ok := p.tree.ParentOf(n)
	if !ok || parent.Kind == ast.Root {
		return nil
	}
	return parent
}

func (p *Parser) start(tok ast.Token) {
	parentID := p.currentParent
	if parentID == ast.NoParent {
		parentID = 0
	}
	tag := tok.Data
	n := p.tree.Create(tok, ast.Element, parentID)

	if parent := p.ParentElement(n); parent != nil && parent.NS != "" {
		n.NS = parent.NS
	} else {
		n.NS = p.opts.namespace(tag)
	}

	for _, a := range tok.Attrs {
		if invalidAttributeRE.MatchString(a.Name) {
			p.Warn("Invalid dynamic argument expression: attribute names cannot contain spaces, quotes, <, >, / or =.")
		}
	}

	if isForbiddenTag(n) && !p.opts.IsSSR {
		n.Forbidden = true
		p.Warn("Templates should only be responsible for mapping the state to the UI. " +
			"Avoid placing tags with side-effects in your templates, such as <" + tag + ">, as they will not be parsed.")
	}

	for _, m := range p.opts.Modules {
		if replacement := m.PreTransformNode(n, p); replacement != nil {
			n = replacement
		}
	}

	if !p.inVPre {
		p.processPre(n)
		if n.Pre {
			p.inVPre = true
		}
	}
	if p.opts.isPreTag(n.Tag()) {
		p.inPre = true
	}
	if p.inVPre {
		p.processRawAttrs(n)
	} else if !n.Processed {
		p.ProcessFor(n)
		p.processIf(n)
		p.processOnce(n)
	}

	if p.root == ast.NoParent {
		p.root = n.ID
		p.tree.Root().Children = []int{n.ID}
		p.checkRootConstraints(n)
	}

	// a newline right after <pre> or <textarea> is not content
	switch strings.ToLower(n.Tag()) {
	case "pre", "textarea":
		p.ignoreNewline = true
	}

	p.currentParent = n.ID
	p.stack = append(p.stack, n.ID)
}

func (p *Parser) end() {
	if len(p.stack) == 0 {
		return
	}
	id := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	if len(p.stack) > 0 {
		p.currentParent = p.stack[len(p.stack)-1]
	} else {
		p.currentParent = ast.NoParent
	}
	p.closeElement(p.tree.MustGet(id))
}

func (p *Parser) closeElement(n *ast.Node) {
	p.trimEndingWhitespace(n)
	if !p.inVPre && !n.Processed {
		p.ProcessElement(n)
	}

	if len(p.stack) == 0 && n.ID != p.root {
		root := p.tree.MustGet(p.root)
		if root.If != "" && (n.ElseIf != "" || n.Else) {
			p.checkRootConstraints(n)
			root.AddIfCondition(n.ElseIf, n.ID)
			p.log.Debug("linked root branch", slog.Int("head", root.ID), slog.Int("block", n.ID))
		} else {
			p.warnOnce("Component template should contain exactly one root element. " +
				"If you are using v-if on multiple elements, use v-else-if to chain them instead.")
		}
	}

	if p.currentParent != ast.NoParent && !n.Forbidden {
		parent := p.tree.MustGet(p.currentParent)
		if n.ElseIf != "" || n.Else {
			p.processIfConditions(n, parent)
		} else {
			if n.SlotScope != "" {
				// kept in children until the parent closes so a following
				// v-else can still find it
				name := n.SlotTarget
				if name == "" {
					name = "default"
				}
				if parent.ScopedSlots == nil {
					parent.ScopedSlots = make(map[string]int)
				}
				parent.ScopedSlots[name] = n.ID
			}
			parent.Children = append(parent.Children, n.ID)
			n.Parent = parent.ID
		}
	}

	kept := n.Children[:0]
	for _, id := range n.Children {
		if p.tree.MustGet(id).SlotScope == "" {
			kept = append(kept, id)
		}
	}
	n.Children = kept
	p.trimEndingWhitespace(n)

	if n.Pre {
		p.inVPre = false
	}
	if p.opts.isPreTag(n.Tag()) {
		p.inPre = false
	}
}

func (p *Parser) trimEndingWhitespace(n *ast.Node) {
	if p.inPre {
		return
	}
	for len(n.Children) > 0 {
		last := p.tree.MustGet(n.Children[len(n.Children)-1])
		if last.Kind != ast.TextNode || last.Text() != " " {
			return
		}
		n.Children = n.Children[:len(n.Children)-1]
	}
}

func (p *Parser) chars(s string) {
	if p.currentParent == ast.NoParent {
		if s == p.template {
			p.warnOnce("Component template requires a root element, rather than just text.")
		} else if trimmed := strings.TrimSpace(s); trimmed != "" {
			p.warnOnce(`text "` + trimmed + `" outside root element will be ignored.`)
		}
		return
	}

	parent := p.tree.MustGet(p.currentParent)
	children := parent.Children
	switch {
	case p.inPre || strings.TrimSpace(s) != "":
	case len(children) == 0:
		// whitespace right after an opening tag
		s = ""
	case p.opts.Whitespace == Condense:
		if lineBreakRE.MatchString(s) {
			s = ""
		} else {
			s = " "
		}
	case p.opts.Whitespace == Preserve:
		s = " "
	default:
		s = ""
	}
	if s == "" {
		return
	}

	if !p.inPre && p.opts.Whitespace == Condense {
		s = whitespaceRE.ReplaceAllString(s, " ")
	}

	tok := ast.Token{Kind: ast.Text, Data: s}
	if !p.inVPre && s != " " {
		if res, ok := text.Parse(s, p.opts.Delimiters); ok {
			child := p.tree.Create(tok, ast.Expression, parent.ID)
			child.Expression = res.Expression
			child.Tokens = res.Tokens
			parent.Children = append(parent.Children, child.ID)
			return
		}
	}
	if s != " " || len(children) == 0 || p.tree.MustGet(children[len(children)-1]).Text() != " " {
		child := p.tree.Create(tok, ast.TextNode, parent.ID)
		parent.Children = append(parent.Children, child.ID)
	}
}

func (p *Parser) comment(s string) {
	if p.currentParent == ast.NoParent || !p.opts.PreserveComments {
		return
	}
	parent := p.tree.MustGet(p.currentParent)
	child := p.tree.Create(ast.Token{Kind: ast.Comment, Data: s}, ast.TextNode, parent.ID)
	child.IsComment = true
	parent.Children = append(parent.Children, child.ID)
}

func isForbiddenTag(n *ast.Node) bool {
	switch strings.ToLower(n.Tag()) {
	case "style":
		return true
	case "script":
		typ, ok := n.RawAttr("type")
		return !ok || typ.Value == "" || typ.Value == "text/javascript"
	}
	return false
}
