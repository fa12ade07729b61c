package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/parser"
	"github.com/recera/vuec/pkg/compiler/web"
)

// parse runs the browser configuration in dev mode and collects warnings.
func parse(t *testing.T, src string, configure ...func(*parser.Options)) (*ast.Tree, []string) {
	t.Helper()
	var warnings []string
	opts := web.BaseOptions()
	opts.Dev = true
	opts.Warn = func(msg string) { warnings = append(warnings, msg) }
	for _, c := range configure {
		c(&opts)
	}
	return parser.Parse(src, opts), warnings
}

func top(t *testing.T, tree *ast.Tree) *ast.Node {
	t.Helper()
	n, ok := tree.TopLevel()
	if !ok {
		t.Fatal("template produced no root element")
	}
	return n
}

func child(t *testing.T, tree *ast.Tree, n *ast.Node, i int) *ast.Node {
	t.Helper()
	if i >= len(n.Children) {
		t.Fatalf("<%s> has %d children, want index %d", n.Tag(), len(n.Children), i)
	}
	return tree.MustGet(n.Children[i])
}

func expectWarnings(t *testing.T, want, got []string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func describe(tree *ast.Tree, ids []int) []string {
	var out []string
	for _, id := range ids {
		n := tree.MustGet(id)
		switch n.Kind {
		case ast.Element:
			out = append(out, "<"+n.Tag()+">")
		default:
			out = append(out, n.Text())
		}
	}
	return out
}
