package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/recera/vuec/pkg/compiler/ast"
)

// Row is one line of the explorer's node list.
type Row struct {
	ID    int
	Depth int
	Label string
}

// Rows flattens the visible tree, skipping the root wrapper.
func Rows(tree *ast.Tree) []Row {
	var rows []Row
	tree.Walk(func(n *ast.Node, depth int) bool {
		if n.Kind != ast.Root {
			rows = append(rows, Row{ID: n.ID, Depth: depth - 1, Label: Describe(n)})
		}
		return true
	})
	return rows
}

const maxLabelText = 40

// Describe summarizes a node in one line.
func Describe(n *ast.Node) string {
	switch n.Kind {
	case ast.Element:
		var b strings.Builder
		b.WriteString("<" + n.Tag() + ">")
		for _, m := range markers(n) {
			b.WriteString(" " + m)
		}
		return b.String()
	case ast.Expression:
		return "{{ " + truncate(n.Expression, maxLabelText) + " }}"
	case ast.TextNode:
		if n.IsComment {
			return "<!-- " + truncate(n.Text(), maxLabelText) + " -->"
		}
		return strconv.Quote(truncate(n.Text(), maxLabelText))
	default:
		return n.Kind.String()
	}
}

func markers(n *ast.Node) []string {
	var out []string
	switch {
	case n.If != "":
		out = append(out, "v-if")
	case n.ElseIf != "":
		out = append(out, "v-else-if")
	case n.Else:
		out = append(out, "v-else")
	}
	if n.For != "" {
		out = append(out, "v-for")
	}
	if n.SlotScope != "" {
		out = append(out, "#"+n.SlotTarget)
	} else if n.SlotTarget != "" {
		out = append(out, "slot="+n.SlotTarget)
	}
	if n.Tag() == "slot" && n.SlotName != "" {
		out = append(out, "name="+n.SlotName)
	}
	if n.Component != "" {
		out = append(out, "is="+n.Component)
	}
	if n.Key != "" {
		out = append(out, "key="+n.Key)
	}
	if n.Pre {
		out = append(out, "v-pre")
	}
	if n.Once {
		out = append(out, "v-once")
	}
	return out
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}

// Details lists the annotations of a node, one per line.
func Details(tree *ast.Tree, n *ast.Node) string {
	var b strings.Builder
	field := func(name string, value any) {
		fmt.Fprintf(&b, "%-14s %v\n", name+":", value)
	}

	field("id", n.ID)
	field("kind", n.Kind)
	if parent, ok := tree.ParentOf(n); ok {
		field("parent", fmt.Sprintf("%d %s", parent.ID, Describe(parent)))
	}

	switch n.Kind {
	case ast.Expression:
		field("expression", n.Expression)
		for _, seg := range n.Tokens {
			if seg.Binding {
				field("binding", seg.Value)
			} else {
				field("literal", strconv.Quote(seg.Value))
			}
		}
		return b.String()
	case ast.TextNode:
		field("text", strconv.Quote(n.Text()))
		if n.IsComment {
			field("comment", true)
		}
		return b.String()
	}

	field("tag", n.Tag())
	for _, flag := range []struct {
		name string
		on   bool
	}{
		{"plain", n.Plain},
		{"pre", n.Pre},
		{"forbidden", n.Forbidden},
		{"once", n.Once},
		{"hasBindings", n.HasBindings},
		{"inlineTemplate", n.InlineTemplate},
		{"refInFor", n.RefInFor},
	} {
		if flag.on {
			field(flag.name, true)
		}
	}
	strField := func(name, value string) {
		if value != "" {
			field(name, value)
		}
	}
	strField("ns", n.NS)
	strField("for", n.For)
	strField("alias", n.Alias)
	strField("iterator1", n.Iterator1)
	strField("iterator2", n.Iterator2)
	strField("if", n.If)
	strField("elseif", n.ElseIf)
	if n.Else {
		field("else", true)
	}
	for _, c := range n.IfConditions {
		exp := c.Exp
		if exp == "" {
			exp = "(else)"
		}
		field("condition", fmt.Sprintf("%s -> %d", exp, c.Block))
	}
	strField("key", n.Key)
	strField("ref", n.Ref)
	strField("component", n.Component)
	strField("slotName", n.SlotName)
	strField("slotTarget", n.SlotTarget)
	strField("slotScope", n.SlotScope)
	for _, name := range sortedSlotNames(n.ScopedSlots) {
		field("scopedSlot", fmt.Sprintf("%s -> %d", name, n.ScopedSlots[name]))
	}
	strField("staticClass", n.StaticClass)
	strField("class", n.ClassBinding)
	strField("staticStyle", n.StaticStyle)
	strField("style", n.StyleBinding)
	for _, a := range n.Attrs {
		field("attr", attrItem(a))
	}
	for _, a := range n.DynamicAttrs {
		field("dynamicAttr", attrItem(a))
	}
	for _, a := range n.Props {
		field("prop", attrItem(a))
	}
	writeHandlers := func(label string, events map[string][]ast.Handler) {
		names := make([]string, 0, len(events))
		for name := range events {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, h := range events[name] {
				field(label, fmt.Sprintf("%s = %s", name, h.Value))
			}
		}
	}
	writeHandlers("event", n.Events)
	writeHandlers("nativeEvent", n.NativeEvents)
	for _, d := range n.Directives {
		v := d.RawName
		if d.Value != "" {
			v += " = " + d.Value
		}
		field("directive", v)
	}
	return b.String()
}

func attrItem(a ast.AttrItem) string {
	s := a.Name + " = " + a.Value
	if a.Dynamic {
		s += " (dynamic)"
	}
	return s
}

func sortedSlotNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
