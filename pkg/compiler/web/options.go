package web

import "github.com/recera/vuec/pkg/compiler/parser"

// Modules returns the browser transform modules in registration order.
func Modules() []parser.Module {
	return []parser.Module{Class{}, Style{}, Model{}}
}

// BaseOptions returns parser options for browser templates: platform
// tables, the class/style/model modules, condensed whitespace and the
// v-slot syntax.
func BaseOptions() parser.Options {
	return parser.Options{
		Whitespace:    parser.Condense,
		NewSlotSyntax: true,
		IsPreTag:      IsPreTag,
		GetNamespace:  GetTagNamespace,
		IsReservedTag: IsReservedTag,
		IsUnaryTag:    IsUnaryTag,
		MustUseProp:   MustUseProp,
		Modules:       Modules(),
	}
}

// StaticKeys gathers the static keys of every module.
func StaticKeys(modules []parser.Module) []string {
	var keys []string
	for _, m := range modules {
		keys = append(keys, m.StaticKeys()...)
	}
	return keys
}
