package web

import (
	"strings"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/parser"
	"github.com/recera/vuec/pkg/compiler/text"
)

// Declaration is one `property: value` pair of an inline style.
type Declaration struct {
	Property string
	Value    string
}

// ParseStyleText splits inline CSS into declarations, keeping source order.
// Semicolons inside parentheses (`url(a;b)`) do not split.
func ParseStyleText(css string) []Declaration {
	var out []Declaration
	for _, item := range splitDeclarations(css) {
		if item == "" {
			continue
		}
		i := strings.IndexByte(item, ':')
		if i < 0 || i == len(item)-1 {
			continue
		}
		prop := strings.TrimSpace(item[:i])
		val := strings.TrimSpace(item[i+1:])
		replaced := false
		for j := range out {
			if out[j].Property == prop {
				out[j].Value = val
				replaced = true
			}
		}
		if !replaced {
			out = append(out, Declaration{Property: prop, Value: val})
		}
	}
	return out
}

// splitDeclarations splits on semicolons that are not followed by a closing
// parenthesis before the next opening one.
func splitDeclarations(css string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(css); i++ {
		if css[i] != ';' || insideParens(css[i+1:]) {
			continue
		}
		parts = append(parts, css[start:i])
		start = i + 1
	}
	return append(parts, css[start:])
}

func insideParens(rest string) bool {
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '(':
			return false
		case ')':
			return true
		}
	}
	return false
}

// StyleJSON renders declarations as a JSON object literal.
func StyleJSON(decls []Declaration) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, d := range decls {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(text.Quote(d.Property))
		b.WriteByte(':')
		b.WriteString(text.Quote(d.Value))
	}
	b.WriteByte('}')
	return b.String()
}

// Style extracts static and bound inline styles.
type Style struct{}

func (Style) PreTransformNode(*ast.Node, *parser.Parser) *ast.Node { return nil }

func (Style) TransformNode(n *ast.Node, p *parser.Parser) {
	if static, ok := n.GetAndRemoveAttr("style", false); ok && static.Value != "" {
		if _, interpolated := text.Parse(static.Value, p.Options().Delimiters); interpolated {
			p.Warn(`style="` + static.Value + `": Interpolation inside attributes has been removed. ` +
				`Use v-bind or the colon shorthand instead. For example, instead of <div style="{{ val }}">, use <div :style="val">.`)
		}
		n.StaticStyle = StyleJSON(ParseStyleText(static.Value))
	}
	if binding, ok := n.GetBindingAttr("style", false); ok && binding != "" {
		n.StyleBinding = binding
	}
}

func (Style) GenData(n *ast.Node) string {
	var data string
	if n.StaticStyle != "" {
		data += "staticStyle:" + n.StaticStyle + ","
	}
	if n.StyleBinding != "" {
		data += "style:(" + n.StyleBinding + "),"
	}
	return data
}

func (Style) StaticKeys() []string { return []string{"staticStyle"} }
