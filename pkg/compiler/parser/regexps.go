package parser

import "regexp"

var (
	onRE          = regexp.MustCompile(`^@|^v-on:`)
	dirRE         = regexp.MustCompile(`^v-|^@|^:`)
	dirSlotRE     = regexp.MustCompile(`^v-|^@|^:|^#`)
	dirPropRE     = regexp.MustCompile(`^v-|^@|^:|^\.|^#`)
	forAliasRE    = regexp.MustCompile(`(?s)(.*?)\s+(?:in|of)\s+(.*)`)
	forIteratorRE = regexp.MustCompile(`,([^,}\]]*)(?:,([^,}\]]*))?$`)
	stripParensRE = regexp.MustCompile(`^\(|\)$`)
	dynamicArgRE  = regexp.MustCompile(`^\[.*\]$`)
	argRE         = regexp.MustCompile(`:(.*)$`)
	bindRE        = regexp.MustCompile(`^:|^\.|^v-bind:`)
	propBindRE    = regexp.MustCompile(`^\.`)
	slotRE        = regexp.MustCompile(`^v-slot(:|$)|^#`)
	lineBreakRE   = regexp.MustCompile(`[\r\n]`)
	whitespaceRE  = regexp.MustCompile(`[ \f\t\r\n]+`)

	invalidAttributeRE = regexp.MustCompile(`[\s"'<>/=]`)
)

// emptySlotScopeToken marks v-slot usages without a scope binding so they
// are still compiled as scoped slots.
const emptySlotScopeToken = "_empty_"

func (p *Parser) directiveRE() *regexp.Regexp {
	switch {
	case p.opts.VBindPropShorthand:
		return dirPropRE
	case p.opts.NewSlotSyntax:
		return dirSlotRE
	default:
		return dirRE
	}
}

func isDynamicArg(name string) bool {
	return dynamicArgRE.MatchString(name)
}

// trimBrackets turns `[expr]` into `expr`.
func trimBrackets(name string) string {
	return name[1 : len(name)-1]
}
