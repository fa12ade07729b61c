package ast

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTreeCreate(t *testing.T) {
	tree := NewTree()
	if tree.Root().ID != 0 || tree.Root().Kind != Root {
		t.Fatalf("unexpected root: %+v", tree.Root())
	}

	div := tree.Create(Token{Kind: OpenTag, Data: "div"}, Element, 0)
	span := tree.Create(Token{Kind: OpenTag, Data: "span"}, Element, div.ID)
	if div.ID != 1 || span.ID != 2 {
		t.Fatalf("ids = %d, %d; want 1, 2", div.ID, span.ID)
	}
	if len(div.Children) != 0 {
		t.Errorf("Create attached child to parent: %v", div.Children)
	}
	if p, ok := tree.ParentOf(span); !ok || p != div {
		t.Errorf("ParentOf(span) = %v, %v", p, ok)
	}
	if _, ok := tree.ParentOf(tree.Root()); ok {
		t.Error("root should have no parent")
	}
	if got, ok := tree.Get(2); !ok || got != span {
		t.Errorf("Get(2) = %v, %v", got, ok)
	}
	if _, ok := tree.Get(3); ok {
		t.Error("Get(3) should miss")
	}
}

func TestTreeCreatePanicsOnUnknownParent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewTree().Create(Token{Kind: OpenTag, Data: "div"}, Element, 7)
}

func TestTreeWalk(t *testing.T) {
	tree := NewTree()
	head := tree.Create(Token{Data: "div"}, Element, 0)
	tree.Root().Children = []int{head.ID}
	alt := tree.Create(Token{Data: "p"}, Element, 0)
	head.AddIfCondition("a", head.ID)
	head.AddIfCondition("", alt.ID)
	child := tree.Create(Token{Data: "span"}, Element, head.ID)
	head.Children = []int{child.ID}
	slot := tree.Create(Token{Data: "template"}, Element, head.ID)
	head.ScopedSlots = map[string]int{"default": slot.ID}

	var got []string
	tree.Walk(func(n *Node, depth int) bool {
		got = append(got, n.Kind.String()+":"+n.Tag())
		return true
	})
	want := []string{"root:", "element:div", "element:span", "element:template", "element:p"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	tree := NewTree()
	div := tree.Create(Token{Kind: OpenTag, Data: "div", Attrs: Attrs{{Name: "id", Value: "app", Quote: Double}}}, Element, 0)
	tree.Root().Children = []int{div.ID}
	div.AddAttr(AttrItem{Name: "id", Value: "app", Quote: Double})

	data, err := json.Marshal(tree.Document([]string{"w"}))
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	back, err := FromDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tree.nodes, back.nodes); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if doc.Warnings[0] != "w" {
		t.Errorf("warnings = %v", doc.Warnings)
	}
}

func TestFromDocumentRejectsBadInput(t *testing.T) {
	_, err := FromDocument(Document{Version: DocumentVersion})
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v, want ErrInvalidDocument", err)
	}
	_, err = FromDocument(Document{Version: 99, Nodes: []*Node{{Kind: Root}}})
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v, want ErrInvalidDocument", err)
	}
}

func TestFromDocumentRejectsDanglingLinks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(el *Node)
	}{
		{"parent", func(el *Node) { el.Parent = 7 }},
		{"child", func(el *Node) { el.Children = []int{5} }},
		{"self child", func(el *Node) { el.Children = []int{el.ID} }},
		{"negative child", func(el *Node) { el.Children = []int{-1} }},
		{"condition block", func(el *Node) { el.IfConditions = []IfCondition{{Exp: "a", Block: 9}} }},
		{"scoped slot", func(el *Node) { el.ScopedSlots = map[string]int{`"item"`: 3} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree()
			el := tree.Create(Token{Kind: OpenTag, Data: "div"}, Element, 0)
			tree.Root().Children = []int{el.ID}
			tt.mutate(el)
			_, err := FromDocument(tree.Document(nil))
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("err = %v, want ErrInvalidDocument", err)
			}
		})
	}

	tree := NewTree()
	el := tree.Create(Token{Kind: OpenTag, Data: "div"}, Element, 0)
	tree.Root().Children = []int{el.ID}
	el.IfConditions = []IfCondition{{Exp: "a", Block: el.ID}}
	if _, err := FromDocument(tree.Document(nil)); err != nil {
		t.Errorf("valid document rejected: %v", err)
	}
}
