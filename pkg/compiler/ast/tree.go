// Package ast defines the template AST: tokens, nodes and the arena tree
// that owns them.
package ast

import "fmt"

// Tree owns every node created during a parse. Node ids index into the
// arena, are handed out in increasing order and never reused.
type Tree struct {
	nodes []*Node
}

// NewTree returns a tree holding only the root wrapper (id 0).
func NewTree() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, &Node{ID: 0, Parent: NoParent, Kind: Root})
	return t
}

// Root returns the synthetic wrapper node.
func (t *Tree) Root() *Node {
	return t.nodes[0]
}

// Len returns the number of registered nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Create registers a new node under parent. The node is not appended to the
// parent's children. Create panics if parent is not a registered id.
func (t *Tree) Create(tok Token, kind Kind, parent int) *Node {
	if parent < 0 || parent >= len(t.nodes) {
		panic(fmt.Sprintf("ast: parent node %d is not registered", parent))
	}
	n := &Node{
		ID:     len(t.nodes),
		Parent: parent,
		Kind:   kind,
		Token:  tok,
	}
	t.nodes = append(t.nodes, n)
	return n
}

// Get looks a node up by id.
func (t *Tree) Get(id int) (*Node, bool) {
	if id < 0 || id >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[id], true
}

// MustGet is Get for ids the caller knows are registered.
func (t *Tree) MustGet(id int) *Node {
	n, ok := t.Get(id)
	if !ok {
		panic(fmt.Sprintf("ast: node %d is not registered", id))
	}
	return n
}

// ParentOf returns n's parent, or false for the root wrapper.
func (t *Tree) ParentOf(n *Node) (*Node, bool) {
	if n.Parent == NoParent {
		return nil, false
	}
	return t.Get(n.Parent)
}

// Children resolves n's child ids.
func (t *Tree) Children(n *Node) []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, id := range n.Children {
		out = append(out, t.MustGet(id))
	}
	return out
}

// Reparent moves child under parent. Child lists are left to the caller.
func (t *Tree) Reparent(child, parent int) {
	if _, ok := t.Get(parent); !ok {
		panic(fmt.Sprintf("ast: parent node %d is not registered", parent))
	}
	t.MustGet(child).Parent = parent
}

// TopLevel returns the first element under the root wrapper.
func (t *Tree) TopLevel() (*Node, bool) {
	root := t.Root()
	if len(root.Children) == 0 {
		return nil, false
	}
	return t.Get(root.Children[0])
}

// Walk visits the visible tree depth first starting at the root wrapper.
// Besides ordinary children it descends into the extra branches of
// if-condition chains and into scoped slot content. Returning false from fn
// skips the node's descendants.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	seen := make(map[int]bool)
	var visit func(id, depth int)
	visit = func(id, depth int) {
		if seen[id] {
			return
		}
		seen[id] = true
		n := t.MustGet(id)
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
		for _, cond := range n.IfConditions {
			if cond.Block != n.ID {
				visit(cond.Block, depth)
			}
		}
		for _, name := range sortedKeys(n.ScopedSlots) {
			visit(n.ScopedSlots[name], depth+1)
		}
	}
	visit(0, 0)
}
