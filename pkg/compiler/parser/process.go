package parser

import (
	"strings"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/text"
)

// ForResult is the parsed form of a v-for expression.
type ForResult struct {
	For       string
	Alias     string
	Iterator1 string
	Iterator2 string
}

// ParseFor splits `(item, index) in items` style expressions.
func ParseFor(exp string) (ForResult, bool) {
	m := forAliasRE.FindStringSubmatch(exp)
	if m == nil {
		return ForResult{}, false
	}
	res := ForResult{For: strings.TrimSpace(m[2])}
	alias := stripParensRE.ReplaceAllString(strings.TrimSpace(m[1]), "")
	if it := forIteratorRE.FindStringSubmatchIndex(alias); it != nil {
		res.Iterator1 = strings.TrimSpace(alias[it[2]:it[3]])
		if it[4] >= 0 {
			res.Iterator2 = strings.TrimSpace(alias[it[4]:it[5]])
		}
		alias = alias[:it[0]]
	}
	res.Alias = strings.TrimSpace(alias)
	return res, true
}

func (p *Parser) processPre(n *ast.Node) {
	if _, ok := n.GetAndRemoveAttr("v-pre", false); ok {
		n.Pre = true
	}
}

func (p *Parser) processRawAttrs(n *ast.Node) {
	attrs := n.UnconsumedAttrs()
	if len(attrs) == 0 {
		if !n.Pre {
			// non-root node inside a v-pre block
			n.Plain = true
		}
		return
	}
	for _, a := range attrs {
		n.Attrs = append(n.Attrs, ast.AttrItem{Name: a.Name, Value: text.Quote(a.Value), Quote: a.Quote})
	}
}

// ProcessFor consumes v-for.
func (p *Parser) ProcessFor(n *ast.Node) {
	a, ok := n.GetAndRemoveAttr("v-for", false)
	if !ok || a.Value == "" {
		return
	}
	res, ok := ParseFor(a.Value)
	if !ok {
		p.Warn("Invalid v-for expression: " + a.Value)
		return
	}
	n.For = res.For
	n.Alias = res.Alias
	n.Iterator1 = res.Iterator1
	n.Iterator2 = res.Iterator2
}

func (p *Parser) processIf(n *ast.Node) {
	if a, ok := n.GetAndRemoveAttr("v-if", false); ok {
		if a.Value == "" {
			p.Warn("Missing v-if expression.")
			return
		}
		n.If = a.Value
		n.AddIfCondition(a.Value, n.ID)
		return
	}
	if _, ok := n.GetAndRemoveAttr("v-else", false); ok {
		n.Else = true
	}
	// v-else and v-else-if on one element are accepted as is
	if a, ok := n.GetAndRemoveAttr("v-else-if", false); ok {
		if a.Value == "" {
			p.Warn("Missing v-else-if expression.")
			return
		}
		n.ElseIf = a.Value
	}
}

func (p *Parser) processOnce(n *ast.Node) {
	if _, ok := n.GetAndRemoveAttr("v-once", false); ok {
		n.Once = true
	}
}

// ProcessElement runs the close-time passes on n: key, plain-ness, ref,
// slot outlet, component, slot content, module transforms and finally the
// generic attribute classification. It is a no-op on processed nodes.
func (p *Parser) ProcessElement(n *ast.Node) *ast.Node {
	if n.Processed {
		return n
	}
	p.processKey(n)
	n.Plain = n.Key == "" && len(n.ScopedSlots) == 0 && len(n.UnconsumedAttrs()) == 0
	p.processRef(n)
	p.processSlotOutlet(n)
	p.processComponent(n)
	p.processSlotContent(n)
	for _, m := range p.opts.Modules {
		m.TransformNode(n, p)
	}
	p.processAttrs(n)
	n.Processed = true
	return n
}

func (p *Parser) processKey(n *ast.Node) {
	exp, ok := n.GetBindingAttr("key", true)
	if !ok || exp == "" {
		return
	}
	if n.Tag() == "template" {
		p.Warn("<template> cannot be keyed. Place the key on real elements instead.")
	}
	if n.For != "" {
		iterator := n.Iterator2
		if iterator == "" {
			iterator = n.Iterator1
		}
		parent := p.ParentElement(n)
		if iterator != "" && iterator == exp && parent != nil && parent.Tag() == "transition-group" {
			p.Warn("Do not use v-for index as key on <transition-group> children, this is the same as not using keys.")
		}
	}
	n.Key = exp
}

func (p *Parser) processRef(n *ast.Node) {
	ref, ok := n.GetBindingAttr("ref", true)
	if !ok || ref == "" {
		return
	}
	n.Ref = ref
	n.RefInFor = p.inFor(n)
}

// inFor reports whether n or one of its ancestors repeats with v-for.
func (p *Parser) inFor(n *ast.Node) bool {
	for cur := n; cur != nil; cur = p.ParentElement(cur) {
		if cur.For != "" {
			return true
		}
	}
	return false
}

func (p *Parser) processSlotOutlet(n *ast.Node) {
	if n.Tag() != "slot" {
		return
	}
	if name, ok := n.GetBindingAttr("name", true); ok {
		n.SlotName = name
	}
	if n.Key != "" {
		p.Warn("`key` does not work on <slot> because slots are abstract outlets and can possibly expand into multiple elements. Use the key on a wrapping element instead.")
	}
}

func (p *Parser) processComponent(n *ast.Node) {
	if binding, ok := n.GetBindingAttr("is", true); ok {
		n.Component = binding
	}
	if _, ok := n.GetAndRemoveAttr("inline-template", false); ok {
		n.InlineTemplate = true
	}
}
