package web

import (
	"regexp"
	"strings"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/parser"
	"github.com/recera/vuec/pkg/compiler/text"
)

var spacesRE = regexp.MustCompile(`\s+`)

// Class extracts static and bound classes.
type Class struct{}

func (Class) PreTransformNode(*ast.Node, *parser.Parser) *ast.Node { return nil }

func (Class) TransformNode(n *ast.Node, p *parser.Parser) {
	if static, ok := n.GetAndRemoveAttr("class", false); ok && static.Value != "" {
		if _, interpolated := text.Parse(static.Value, p.Options().Delimiters); interpolated {
			p.Warn(`class="` + static.Value + `": Interpolation inside attributes has been removed. ` +
				`Use v-bind or the colon shorthand instead. For example, instead of <div class="{{ val }}">, use <div :class="{ val }">.`)
		}
		n.StaticClass = text.Quote(strings.TrimSpace(spacesRE.ReplaceAllString(static.Value, " ")))
	}
	if binding, ok := n.GetBindingAttr("class", false); ok && binding != "" {
		n.ClassBinding = binding
	}
}

func (Class) GenData(n *ast.Node) string {
	var data string
	if n.StaticClass != "" {
		data += "staticClass:" + n.StaticClass + ","
	}
	if n.ClassBinding != "" {
		data += "class:" + n.ClassBinding + ","
	}
	return data
}

func (Class) StaticKeys() []string { return []string{"staticClass"} }
