package parser

import (
	"strings"
	"unicode"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/filter"
	"github.com/recera/vuec/pkg/compiler/model"
	"github.com/recera/vuec/pkg/compiler/text"
)

// modifierTail returns the index where trailing `.modifier` segments start.
// Dots inside a `[dynamic]` argument never start a modifier.
func modifierTail(name string) int {
	from := strings.LastIndexByte(name, ']') + 1
	if i := strings.IndexByte(name[from:], '.'); i >= 0 {
		return from + i
	}
	return len(name)
}

// parseModifiers collects the trailing modifiers of name.
func parseModifiers(name string) ast.Modifiers {
	tail := name[modifierTail(name):]
	var mods ast.Modifiers
	for _, seg := range strings.Split(tail, ".") {
		if seg == "" {
			continue
		}
		if mods == nil {
			mods = ast.Modifiers{}
		}
		mods[strings.ToLower(seg)] = true
	}
	return mods
}

func stripModifiers(name string) string {
	return name[:modifierTail(name)]
}

// Camelize turns `foo-bar` into `fooBar`.
func Camelize(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '-' && i+1 < len(s) && isWordChar(s[i+1]) {
			b.WriteByte(byte(unicode.ToUpper(rune(s[i+1]))))
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Hyphenate turns `fooBar` into `foo-bar`.
func Hyphenate(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 && isWordChar(s[i-1]) {
				b.WriteByte('-')
			}
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isWordChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (p *Parser) processAttrs(n *ast.Node) {
	dir := p.directiveRE()
	for _, a := range n.UnconsumedAttrs() {
		name, rawName, value := a.Name, a.Name, a.Value

		if !dir.MatchString(name) {
			p.processLiteralAttr(n, a)
			continue
		}

		n.HasBindings = true
		modifiers := parseModifiers(dir.ReplaceAllString(name, ""))
		if p.opts.VBindPropShorthand && propBindRE.MatchString(name) {
			if modifiers == nil {
				modifiers = ast.Modifiers{}
			}
			modifiers["prop"] = true
			name = "." + stripModifiers(name[1:])
		} else if modifiers != nil {
			name = stripModifiers(name)
		}

		switch {
		case bindRE.MatchString(name):
			p.processBinding(n, a, bindRE.ReplaceAllString(name, ""), filter.Parse(value), modifiers)
		case onRE.MatchString(name):
			name = onRE.ReplaceAllString(name, "")
			dynamic := isDynamicArg(name)
			if dynamic {
				name = trimBrackets(name)
			}
			n.AddHandler(name, value, modifiers, false, dynamic, p.Warn)
		default:
			p.processDirective(n, dir.ReplaceAllString(name, ""), rawName, value, modifiers)
		}
	}
}

func (p *Parser) processBinding(n *ast.Node, a ast.RawAttr, name, value string, modifiers ast.Modifiers) {
	dynamic := isDynamicArg(name)
	if dynamic {
		name = trimBrackets(name)
	}
	if strings.TrimSpace(value) == "" {
		p.Warn(`The value for a v-bind expression cannot be empty. Found in "v-bind:` + name + `"`)
	}

	if modifiers != nil {
		if modifiers.Has("prop") && !dynamic {
			name = Camelize(name)
			if name == "innerHtml" {
				name = "innerHTML"
			}
		}
		if modifiers.Has("camel") && !dynamic {
			name = Camelize(name)
		}
		if modifiers.Has("sync") {
			syncGen := model.GenAssignmentCode(value, "$event")
			if !dynamic {
				n.AddHandler("update:"+Camelize(name), syncGen, nil, false, false, p.Warn)
				if Hyphenate(name) != Camelize(name) {
					n.AddHandler("update:"+Hyphenate(name), syncGen, nil, false, false, p.Warn)
				}
			} else {
				n.AddHandler(`"update:"+(`+name+")", syncGen, nil, false, true, p.Warn)
			}
		}
	}

	item := ast.AttrItem{Name: name, Value: value, Dynamic: dynamic, Quote: a.Quote}
	if modifiers.Has("prop") || (n.Component == "" && p.opts.mustUseProp(n.Tag(), n.RawAttrValue("type"), name)) {
		n.AddProp(item)
	} else {
		n.AddAttr(item)
	}
}

func (p *Parser) processDirective(n *ast.Node, name, rawName, value string, modifiers ast.Modifiers) {
	var arg string
	dynamic := false
	if m := argRE.FindStringSubmatch(name); m != nil && m[1] != "" {
		arg = m[1]
		name = name[:len(name)-len(arg)-1]
		if isDynamicArg(arg) {
			arg = trimBrackets(arg)
			dynamic = true
		}
	}
	n.AddDirective(ast.Directive{
		Name:         name,
		RawName:      rawName,
		Value:        value,
		Arg:          arg,
		IsDynamicArg: dynamic,
		Modifiers:    modifiers,
	})
	if name == "model" {
		p.checkForAliasModel(n, value)
	}
}

func (p *Parser) processLiteralAttr(n *ast.Node, a ast.RawAttr) {
	if _, ok := text.Parse(a.Value, p.opts.Delimiters); ok {
		p.Warn(a.Name + `="` + a.Value + `": Interpolation inside attributes has been removed. ` +
			`Use v-bind or the colon shorthand instead. For example, instead of <div id="{{ val }}">, use <div :id="val">.`)
	}
	n.AddAttr(ast.AttrItem{Name: a.Name, Value: text.Quote(a.Value), Quote: a.Quote})
	if n.Component == "" && a.Name == "muted" && p.opts.mustUseProp(n.Tag(), n.RawAttrValue("type"), a.Name) {
		n.AddProp(ast.AttrItem{Name: a.Name, Value: "true"})
	}
}

func (p *Parser) checkForAliasModel(n *ast.Node, value string) {
	for cur := n; cur != nil; cur = p.ParentElement(cur) {
		if cur.For != "" && cur.Alias == value {
			p.Warn("<" + n.Tag() + ` v-model="` + value + `">: ` +
				"You are binding v-model directly to a v-for iteration alias. " +
				"This will not be able to modify the v-for source array because " +
				"writing to the alias is like modifying a function local variable. " +
				"Consider using an array of objects and use v-model on an object property instead.")
		}
	}
}
