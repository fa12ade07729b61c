package web

import (
	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/parser"
)

// Model expands `<input v-model :type="t">` into checkbox, radio and
// generic branches chained with v-if, since each input type binds
// differently:
//
//	<input v-if="t==='checkbox'" type="checkbox">
//	<input v-else-if="t==='radio'" type="radio">
//	<input v-else :type="t">
type Model struct{}

func (Model) PreTransformNode(n *ast.Node, p *parser.Parser) *ast.Node {
	if n.Tag() != "input" || n.RawAttrValue("v-model") == "" {
		return nil
	}

	var typeBinding string
	if n.HasRawAttr(":type") || n.HasRawAttr("v-bind:type") {
		typeBinding, _ = n.GetBindingAttr("type", true)
	}
	if !n.HasRawAttr("type") && typeBinding == "" && n.RawAttrValue("v-bind") != "" {
		typeBinding = "(" + n.RawAttrValue("v-bind") + ").type"
	}
	if typeBinding == "" {
		return nil
	}

	ifCondition, _ := n.GetAndRemoveAttr("v-if", true)
	var ifConditionExtra string
	if ifCondition.Value != "" {
		ifConditionExtra = "&&(" + ifCondition.Value + ")"
	}
	_, hasElse := n.GetAndRemoveAttr("v-else", true)
	elseIfCondition, _ := n.GetAndRemoveAttr("v-else-if", true)

	checkbox := clone(n, p)
	p.ProcessFor(checkbox)
	checkbox.AddRawAttr("type", "checkbox")
	p.ProcessElement(checkbox)
	checkbox.If = "(" + typeBinding + ")==='checkbox'" + ifConditionExtra
	checkbox.AddIfCondition(checkbox.If, checkbox.ID)

	radio := clone(n, p)
	radio.GetAndRemoveAttr("v-for", true)
	radio.AddRawAttr("type", "radio")
	p.ProcessElement(radio)
	checkbox.AddIfCondition("("+typeBinding+")==='radio'"+ifConditionExtra, radio.ID)

	other := clone(n, p)
	other.GetAndRemoveAttr("v-for", true)
	other.AddRawAttr(":type", typeBinding)
	p.ProcessElement(other)
	checkbox.AddIfCondition(ifCondition.Value, other.ID)

	if hasElse {
		checkbox.Else = true
	} else if elseIfCondition.Value != "" {
		checkbox.ElseIf = elseIfCondition.Value
	}
	return checkbox
}

// clone creates a fresh element with n's tag and unconsumed attributes.
func clone(n *ast.Node, p *parser.Parser) *ast.Node {
	tok := ast.Token{Kind: ast.OpenTag, Data: n.Tag(), Attrs: n.UnconsumedAttrs()}
	c := p.Tree().Create(tok, ast.Element, n.Parent)
	c.NS = n.NS
	return c
}

func (Model) TransformNode(*ast.Node, *parser.Parser) {}

func (Model) GenData(*ast.Node) string { return "" }

func (Model) StaticKeys() []string { return nil }
