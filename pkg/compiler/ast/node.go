package ast

import (
	"strings"

	"github.com/recera/vuec/pkg/compiler/text"
)

// Kind classifies AST nodes.
type Kind int

const (
	Root Kind = iota
	Element
	Expression
	TextNode
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case Element:
		return "element"
	case Expression:
		return "expression"
	case TextNode:
		return "text"
	default:
		return "unknown"
	}
}

// NoParent is the parent id of the root wrapper.
const NoParent = -1

// AttrItem is a resolved attribute, bound attribute or DOM prop.
type AttrItem struct {
	Name    string    `json:"name"`
	Value   string    `json:"value,omitempty"`
	Dynamic bool      `json:"dynamic,omitempty"`
	Quote   QuoteType `json:"quote,omitempty"`
}

// Modifiers is a set of directive modifiers, keyed in lower case.
type Modifiers map[string]bool

// Has reports whether m contains name.
func (m Modifiers) Has(name string) bool {
	return m[strings.ToLower(name)]
}

// Remove deletes name from m.
func (m Modifiers) Remove(name string) {
	delete(m, strings.ToLower(name))
}

// Handler is one event listener.
type Handler struct {
	Value     string    `json:"value"`
	Dynamic   bool      `json:"dynamic,omitempty"`
	Modifiers Modifiers `json:"modifiers,omitempty"`
}

// Directive is a custom (runtime) directive such as v-show or v-focus:arg.
type Directive struct {
	Name         string    `json:"name"`
	RawName      string    `json:"rawName"`
	Value        string    `json:"value,omitempty"`
	Arg          string    `json:"arg,omitempty"`
	IsDynamicArg bool      `json:"isDynamicArg,omitempty"`
	Modifiers    Modifiers `json:"modifiers,omitempty"`
}

// IfCondition is one branch of a v-if chain. An empty Exp is the final
// unconditional v-else branch.
type IfCondition struct {
	Exp   string `json:"exp,omitempty"`
	Block int    `json:"block"`
}

// Node is an AST node. All references to other nodes are ids into the
// owning Tree.
type Node struct {
	ID       int   `json:"id"`
	Parent   int   `json:"parent"`
	Kind     Kind  `json:"kind"`
	Token    Token `json:"token"`
	Children []int `json:"children,omitempty"`

	Forbidden   bool   `json:"forbidden,omitempty"`
	Pre         bool   `json:"pre,omitempty"`
	Plain       bool   `json:"plain,omitempty"`
	Processed   bool   `json:"processed,omitempty"`
	IsComment   bool   `json:"isComment,omitempty"`
	HasBindings bool   `json:"hasBindings,omitempty"`
	NS          string `json:"ns,omitempty"`

	Alias     string `json:"alias,omitempty"`
	For       string `json:"for,omitempty"`
	Iterator1 string `json:"iterator1,omitempty"`
	Iterator2 string `json:"iterator2,omitempty"`

	If           string        `json:"if,omitempty"`
	ElseIf       string        `json:"elseif,omitempty"`
	Else         bool          `json:"else,omitempty"`
	IfConditions []IfCondition `json:"ifConditions,omitempty"`
	Once         bool          `json:"once,omitempty"`

	Attrs        []AttrItem           `json:"attrs,omitempty"`
	DynamicAttrs []AttrItem           `json:"dynamicAttrs,omitempty"`
	Props        []AttrItem           `json:"props,omitempty"`
	Events       map[string][]Handler `json:"events,omitempty"`
	NativeEvents map[string][]Handler `json:"nativeEvents,omitempty"`
	Directives   []Directive          `json:"directives,omitempty"`

	SlotName          string         `json:"slotName,omitempty"`
	SlotTarget        string         `json:"slotTarget,omitempty"`
	SlotTargetDynamic bool           `json:"slotTargetDynamic,omitempty"`
	SlotScope         string         `json:"slotScope,omitempty"`
	ScopedSlots       map[string]int `json:"scopedSlots,omitempty"`

	Key            string `json:"key,omitempty"`
	Ref            string `json:"ref,omitempty"`
	RefInFor       bool   `json:"refInFor,omitempty"`
	Component      string `json:"component,omitempty"`
	InlineTemplate bool   `json:"inlineTemplate,omitempty"`

	Expression string         `json:"expression,omitempty"`
	Tokens     []text.Segment `json:"tokens,omitempty"`

	StaticClass  string `json:"staticClass,omitempty"`
	ClassBinding string `json:"classBinding,omitempty"`
	StaticStyle  string `json:"staticStyle,omitempty"`
	StyleBinding string `json:"styleBinding,omitempty"`

	Ignored map[string]bool `json:"ignored,omitempty"`
}

// Tag returns the element tag name.
func (n *Node) Tag() string {
	return n.Token.Data
}

// Text returns the text of a text, expression or comment node.
func (n *Node) Text() string {
	return n.Token.Data
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n.Kind == Element
}
