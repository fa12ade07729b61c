package parser

import (
	"log/slog"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/text"
)

// IsMaybeComponent reports whether n may render a component: it has a
// dynamic `is` binding or, per the platform's reserved tag table, a tag (or
// static `is`) that is not a built-in element.
func (p *Parser) IsMaybeComponent(n *ast.Node) bool {
	if n.Component != "" || n.HasRawAttr(":is") || n.HasRawAttr("v-bind:is") {
		return true
	}
	is, hasIs := n.RawAttr("is")
	if p.opts.IsReservedTag == nil {
		return hasIs
	}
	if hasIs {
		return !p.opts.IsReservedTag(is.Value)
	}
	return !p.opts.IsReservedTag(n.Tag())
}

func (p *Parser) processSlotContent(n *ast.Node) {
	if n.Tag() == "template" {
		if scope, ok := n.GetAndRemoveAttr("scope", false); ok {
			p.Warn(`the "scope" attribute for scoped slots have been deprecated and replaced by "slot-scope" since 2.5. ` +
				`The new "slot-scope" attribute can also be used on plain elements in addition to <template> to denote scoped slots.`)
			n.SlotScope = scope.Value
		} else if scope, ok := n.GetAndRemoveAttr("slot-scope", false); ok {
			n.SlotScope = scope.Value
		}
	} else if scope, ok := n.GetAndRemoveAttr("slot-scope", false); ok {
		if n.HasRawAttr("v-for") {
			p.Warn("Ambiguous combined usage of slot-scope and v-for on <" + n.Tag() + "> " +
				"(v-for takes higher priority). Use a wrapper <template> for the scoped slot to make it clearer.")
		}
		n.SlotScope = scope.Value
	}

	// legacy slot="name"
	if target, ok := n.GetBindingAttr("slot", true); ok {
		n.SlotTargetDynamic = n.HasRawAttr(":slot") || n.HasRawAttr("v-bind:slot")
		if !n.SlotTargetDynamic {
			target = n.RawAttrValue("slot")
		}
		if target == "" {
			target = "default"
		}
		n.SlotTarget = target
		// native shadow DOM slots need the attribute kept
		if n.Tag() != "template" && n.SlotScope == "" {
			value := target
			if !n.SlotTargetDynamic {
				value = text.Quote(target)
			}
			raw, _ := n.RawBindingAttr("slot")
			n.AddAttr(ast.AttrItem{Name: "slot", Value: value, Quote: raw.Quote})
		}
	}

	if !p.opts.NewSlotSyntax {
		return
	}
	if n.Tag() == "template" {
		p.processTemplateSlot(n)
	} else {
		p.processComponentSlot(n)
	}
}

func (p *Parser) processTemplateSlot(n *ast.Node) {
	binding, ok := n.GetAndRemoveAttrByRegex(slotRE)
	if !ok {
		return
	}
	if n.SlotTarget != "" || n.SlotScope != "" {
		p.Warn("Unexpected mixed usage of different slot syntaxes.")
	}
	if parent := p.ParentElement(n); parent != nil && !p.IsMaybeComponent(parent) {
		p.Warn("<template v-slot> can only appear at the root level inside the receiving component")
	}
	name, dynamic := p.slotName(binding)
	n.SlotTarget = name
	n.SlotTargetDynamic = dynamic
	n.SlotScope = binding.Value
	if n.SlotScope == "" {
		n.SlotScope = emptySlotScopeToken
	}
}

// processComponentSlot handles v-slot placed directly on a component: the
// component's children become the content of a synthesized <template>.
func (p *Parser) processComponentSlot(n *ast.Node) {
	binding, ok := n.GetAndRemoveAttrByRegex(slotRE)
	if !ok {
		return
	}
	if !p.IsMaybeComponent(n) {
		p.Warn("v-slot can only be used on components or <template>.")
	}
	if n.SlotScope != "" || n.SlotTarget != "" {
		p.Warn("Unexpected mixed usage of different slot syntaxes.")
	}
	if len(n.ScopedSlots) > 0 {
		p.Warn("To avoid scope ambiguity, the default slot should also use <template> syntax when there are other named slots.")
	}

	name, dynamic := p.slotName(binding)
	container := p.tree.Create(ast.Token{Kind: ast.OpenTag, Data: "template"}, ast.Element, n.ID)
	container.NS = n.NS
	container.SlotTarget = name
	container.SlotTargetDynamic = dynamic
	for _, id := range n.Children {
		child := p.tree.MustGet(id)
		if child.SlotScope != "" {
			continue
		}
		p.tree.Reparent(id, container.ID)
		container.Children = append(container.Children, id)
	}
	container.SlotScope = binding.Value
	if container.SlotScope == "" {
		container.SlotScope = emptySlotScopeToken
	}

	if n.ScopedSlots == nil {
		n.ScopedSlots = make(map[string]int)
	}
	n.ScopedSlots[name] = container.ID
	n.Children = nil
	n.Plain = false
	p.log.Debug("promoted children into slot", slog.Int("component", n.ID), slog.String("slot", name))
}

// slotName derives the slot name from a v-slot attribute name.
func (p *Parser) slotName(binding ast.RawAttr) (string, bool) {
	name := slotRE.ReplaceAllString(binding.Name, "")
	if name == "" {
		if binding.Name[0] != '#' {
			name = "default"
		} else {
			p.Warn("v-slot shorthand syntax requires a slot name.")
		}
	}
	if isDynamicArg(name) {
		return trimBrackets(name), true
	}
	return name, false
}
