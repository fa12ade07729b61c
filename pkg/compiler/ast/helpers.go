package ast

import (
	"regexp"
	"strings"

	"github.com/recera/vuec/pkg/compiler/filter"
	"github.com/recera/vuec/pkg/compiler/text"
)

// RawAttr returns the source attribute named name, consumed or not.
func (n *Node) RawAttr(name string) (RawAttr, bool) {
	return n.Token.Attrs.Get(name)
}

// HasRawAttr reports whether the open tag carried name, consumed or not.
func (n *Node) HasRawAttr(name string) bool {
	return n.Token.Attrs.Has(name)
}

// RawAttrValue returns the value of the source attribute name.
func (n *Node) RawAttrValue(name string) string {
	a, _ := n.Token.Attrs.Get(name)
	return a.Value
}

// IsIgnored reports whether the attribute name was consumed.
func (n *Node) IsIgnored(name string) bool {
	return n.Ignored[strings.ToLower(name)]
}

func (n *Node) ignore(name string) {
	if n.Ignored == nil {
		n.Ignored = make(map[string]bool)
	}
	n.Ignored[strings.ToLower(name)] = true
}

// UnconsumedAttrs returns the source attributes no processor has claimed yet.
func (n *Node) UnconsumedAttrs() []RawAttr {
	var out []RawAttr
	for _, a := range n.Token.Attrs {
		if !n.IsIgnored(a.Name) {
			out = append(out, a)
		}
	}
	return out
}

// GetAndRemoveAttr consumes the attribute name. With fullyRemove the
// attribute is also dropped from the raw attribute list so later raw
// lookups no longer see it.
func (n *Node) GetAndRemoveAttr(name string, fullyRemove bool) (RawAttr, bool) {
	a, ok := n.Token.Attrs.Get(name)
	if !ok || n.IsIgnored(name) {
		return RawAttr{}, false
	}
	n.ignore(name)
	if fullyRemove {
		n.Token.Attrs.Delete(name)
	}
	return a, true
}

// GetAndRemoveAttrByRegex consumes the first unconsumed attribute whose
// name matches re.
func (n *Node) GetAndRemoveAttrByRegex(re *regexp.Regexp) (RawAttr, bool) {
	for _, a := range n.Token.Attrs {
		if n.IsIgnored(a.Name) || !re.MatchString(a.Name) {
			continue
		}
		n.ignore(a.Name)
		return a, true
	}
	return RawAttr{}, false
}

// GetBindingAttr resolves `:name`, then `v-bind:name`, passing the value
// through the filter engine. With getStatic a literal `name` attribute is
// accepted as a fallback and returned as a quoted string literal.
func (n *Node) GetBindingAttr(name string, getStatic bool) (string, bool) {
	dynamic, ok := n.GetAndRemoveAttr(":"+name, false)
	if !ok {
		dynamic, ok = n.GetAndRemoveAttr("v-bind:"+name, false)
	}
	if ok {
		return filter.Parse(dynamic.Value), true
	}
	if getStatic {
		if static, ok := n.GetAndRemoveAttr(name, false); ok {
			return text.Quote(static.Value), true
		}
	}
	return "", false
}

// RawBindingAttr returns whichever source form of name exists, bound first.
func (n *Node) RawBindingAttr(name string) (RawAttr, bool) {
	for _, candidate := range []string{":" + name, "v-bind:" + name, name} {
		if a, ok := n.Token.Attrs.Get(candidate); ok {
			return a, true
		}
	}
	return RawAttr{}, false
}

// AddRawAttr appends a synthetic source attribute.
func (n *Node) AddRawAttr(name, value string) {
	n.Token.Attrs.Set(RawAttr{Name: name, Value: value, Quote: Double})
	delete(n.Ignored, strings.ToLower(name))
}

// AddAttr records a resolved attribute, routing dynamic names separately.
func (n *Node) AddAttr(item AttrItem) {
	if item.Dynamic {
		n.DynamicAttrs = append(n.DynamicAttrs, item)
	} else {
		n.Attrs = append(n.Attrs, item)
	}
	n.Plain = false
}

// AddProp records a DOM property binding.
func (n *Node) AddProp(item AttrItem) {
	n.Props = append(n.Props, item)
	n.Plain = false
}

// AddDirective records a runtime directive.
func (n *Node) AddDirective(d Directive) {
	n.Directives = append(n.Directives, d)
	n.Plain = false
}

// AddIfCondition appends a branch to n's condition chain.
func (n *Node) AddIfCondition(exp string, block int) {
	n.IfConditions = append(n.IfConditions, IfCondition{Exp: exp, Block: block})
}

// AddHandler registers an event listener. Modifiers understood by the
// compiler are folded into the event name; the rest stay on the handler.
// Important handlers are placed before existing ones. warn may be nil.
func (n *Node) AddHandler(name, value string, modifiers Modifiers, important, dynamic bool, warn func(string)) {
	if modifiers == nil {
		modifiers = Modifiers{}
	}
	if warn != nil && modifiers.Has("prevent") && modifiers.Has("passive") {
		warn("passive and prevent can't be used together. Passive handler can't prevent default event.")
	}

	// right and middle click have no native click equivalent
	if modifiers.Has("right") {
		if dynamic {
			name = "(" + name + ")==='click'?'contextmenu':(" + name + ")"
		} else if name == "click" {
			name = "contextmenu"
			modifiers.Remove("right")
		}
	} else if modifiers.Has("middle") {
		if dynamic {
			name = "(" + name + ")==='click'?'mouseup':(" + name + ")"
		} else if name == "click" {
			name = "mouseup"
		}
	}

	if modifiers.Has("capture") {
		modifiers.Remove("capture")
		name = prependModifierMarker("!", name, dynamic)
	}
	if modifiers.Has("once") {
		modifiers.Remove("once")
		name = prependModifierMarker("~", name, dynamic)
	}
	if modifiers.Has("passive") {
		modifiers.Remove("passive")
		name = prependModifierMarker("&", name, dynamic)
	}

	events := &n.Events
	if modifiers.Has("native") {
		modifiers.Remove("native")
		events = &n.NativeEvents
	}
	if *events == nil {
		*events = make(map[string][]Handler)
	}

	h := Handler{Value: strings.TrimSpace(value), Dynamic: dynamic}
	if len(modifiers) > 0 {
		h.Modifiers = modifiers
	}
	if important {
		(*events)[name] = append([]Handler{h}, (*events)[name]...)
	} else {
		(*events)[name] = append((*events)[name], h)
	}
	n.Plain = false
}

func prependModifierMarker(symbol, name string, dynamic bool) string {
	if dynamic {
		return "_p(" + name + `,"` + symbol + `")`
	}
	return symbol + name
}
