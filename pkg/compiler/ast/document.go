package ast

import (
	"errors"
	"fmt"
	"sort"
)

// DocumentVersion is bumped whenever the serialized node layout changes.
const DocumentVersion = 1

// ErrInvalidDocument is returned when a document cannot be turned back into
// a tree.
var ErrInvalidDocument = errors.New("invalid AST document")

// Document is the serializable form of a tree, used for JSON and CBOR
// export and for the on-disk cache.
type Document struct {
	Version  int      `json:"version"`
	Nodes    []*Node  `json:"nodes"`
	Warnings []string `json:"warnings,omitempty"`
}

// Document snapshots the tree. Nodes are shared, not copied.
func (t *Tree) Document(warnings []string) Document {
	return Document{
		Version:  DocumentVersion,
		Nodes:    t.nodes,
		Warnings: warnings,
	}
}

// FromDocument rebuilds a tree from a snapshot.
func FromDocument(d Document) (*Tree, error) {
	if d.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrInvalidDocument, d.Version, DocumentVersion)
	}
	if len(d.Nodes) == 0 || d.Nodes[0] == nil || d.Nodes[0].Kind != Root {
		return nil, fmt.Errorf("%w: missing root node", ErrInvalidDocument)
	}
	for i, n := range d.Nodes {
		if n == nil || n.ID != i {
			return nil, fmt.Errorf("%w: node %d out of place", ErrInvalidDocument, i)
		}
	}
	for _, n := range d.Nodes {
		if err := checkLinks(n, len(d.Nodes)); err != nil {
			return nil, err
		}
	}
	return &Tree{nodes: d.Nodes}, nil
}

// checkLinks verifies that every id n refers to names a node of the
// document.
func checkLinks(n *Node, count int) error {
	valid := func(id int) bool { return id >= 0 && id < count }
	if n.Parent != NoParent && !valid(n.Parent) {
		return fmt.Errorf("%w: node %d has unknown parent %d", ErrInvalidDocument, n.ID, n.Parent)
	}
	for _, id := range n.Children {
		if !valid(id) || id == n.ID {
			return fmt.Errorf("%w: node %d has invalid child %d", ErrInvalidDocument, n.ID, id)
		}
	}
	for _, c := range n.IfConditions {
		if !valid(c.Block) {
			return fmt.Errorf("%w: node %d has unknown condition block %d", ErrInvalidDocument, n.ID, c.Block)
		}
	}
	for name, id := range n.ScopedSlots {
		if !valid(id) || id == n.ID {
			return fmt.Errorf("%w: node %d has invalid scoped slot %s -> %d", ErrInvalidDocument, n.ID, name, id)
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
