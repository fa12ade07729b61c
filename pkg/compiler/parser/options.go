package parser

import (
	"log/slog"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/text"
)

// WhitespaceHandling selects how whitespace-only text between tags is kept.
type WhitespaceHandling int

const (
	// Condense drops whitespace runs containing a line break, turns other
	// runs into a single space and collapses interior whitespace.
	Condense WhitespaceHandling = iota
	// Preserve keeps every inter-tag whitespace run as a single space.
	Preserve
	// Ignore drops inter-tag whitespace entirely.
	Ignore
)

func (w WhitespaceHandling) String() string {
	switch w {
	case Condense:
		return "condense"
	case Preserve:
		return "preserve"
	case Ignore:
		return "ignore"
	default:
		return "unknown"
	}
}

// Module participates in node construction. Modules run in registration
// order and see the mutations of the modules before them.
type Module interface {
	// PreTransformNode runs when an element opens, before structural
	// directives are processed. A non-nil result replaces the node for the
	// rest of its processing.
	PreTransformNode(n *ast.Node, p *Parser) *ast.Node
	// TransformNode runs while the element closes, before generic
	// attribute processing.
	TransformNode(n *ast.Node, p *Parser)
	// GenData returns the render data fragment owned by the module.
	GenData(n *ast.Node) string
	// StaticKeys lists node fields the module considers static.
	StaticKeys() []string
}

// Options configures a parse.
type Options struct {
	// Dev enables diagnostics.
	Dev bool
	// IsSSR disables forbidden-tag detection.
	IsSSR            bool
	PreserveComments bool
	Whitespace       WhitespaceHandling
	// NewSlotSyntax enables v-slot and the # shorthand.
	NewSlotSyntax bool
	// VBindPropShorthand enables `.name` as sugar for `v-bind:name.prop`.
	VBindPropShorthand bool

	IsPreTag      func(tag string) bool
	GetNamespace  func(tag string) string
	IsReservedTag func(tag string) bool
	IsUnaryTag    func(tag string) bool
	MustUseProp   func(tag, typ, attr string) bool

	Delimiters text.Delimiters
	Modules    []Module

	// Warn receives diagnostics. When nil they are logged at warn level.
	Warn   func(msg string)
	Logger *slog.Logger
}

func (o *Options) isPreTag(tag string) bool {
	return o.IsPreTag != nil && o.IsPreTag(tag)
}

func (o *Options) namespace(tag string) string {
	if o.GetNamespace == nil {
		return ""
	}
	return o.GetNamespace(tag)
}

func (o *Options) mustUseProp(tag, typ, attr string) bool {
	return o.MustUseProp != nil && o.MustUseProp(tag, typ, attr)
}
