package parser

import (
	"log/slog"
	"strings"

	"github.com/recera/vuec/pkg/compiler/ast"
)

// processIfConditions attaches a v-else/v-else-if node to the v-if chain of
// the closest preceding element sibling.
func (p *Parser) processIfConditions(n, parent *ast.Node) {
	prev := p.findPrevElement(parent)
	if prev != nil && prev.If != "" {
		prev.AddIfCondition(n.ElseIf, n.ID)
		p.log.Debug("linked branch", slog.Int("head", prev.ID), slog.Int("block", n.ID))
		return
	}
	if prev == nil {
		if n.ElseIf != "" {
			p.Warn(`v-else-if="` + n.ElseIf + `" used on element <` + n.Tag() + `> without corresponding v-if.`)
		} else {
			p.Warn("v-else used on element <" + n.Tag() + "> without corresponding v-if.")
		}
	}
}

// findPrevElement pops trailing non-element children of parent until an
// element is found.
func (p *Parser) findPrevElement(parent *ast.Node) *ast.Node {
	for len(parent.Children) > 0 {
		last := p.tree.MustGet(parent.Children[len(parent.Children)-1])
		if last.Kind == ast.Element {
			return last
		}
		if last.Text() != " " {
			p.Warn(`text "` + strings.TrimSpace(last.Text()) + `" between v-if and v-else(-if) will be ignored.`)
		}
		parent.Children = parent.Children[:len(parent.Children)-1]
	}
	return nil
}

func (p *Parser) checkRootConstraints(n *ast.Node) {
	if tag := n.Tag(); tag == "slot" || tag == "template" {
		p.warnOnce("Cannot use <" + tag + "> as component root element because it may contain multiple nodes.")
	}
	if n.HasRawAttr("v-for") {
		p.warnOnce("Cannot use v-for on stateful component root element because it renders multiple elements.")
	}
}
