package parser_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/parser"
	"github.com/recera/vuec/pkg/compiler/text"
	"github.com/recera/vuec/pkg/compiler/web"
)

func TestSimpleElement(t *testing.T) {
	tree, warnings := parse(t, "<h1>hello world</h1>")
	h1 := top(t, tree)
	if h1.Tag() != "h1" || !h1.Plain {
		t.Errorf("root = <%s> plain=%v", h1.Tag(), h1.Plain)
	}
	if diff := cmp.Diff([]string{"hello world"}, describe(tree, h1.Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if tree.MustGet(h1.Children[0]).Kind != ast.TextNode {
		t.Error("expected a text node")
	}
	expectWarnings(t, nil, warnings)
}

func TestInterpolation(t *testing.T) {
	tree, _ := parse(t, "<h1>{{msg}}</h1>")
	n := child(t, tree, top(t, tree), 0)
	if n.Kind != ast.Expression || n.Expression != "_s(msg)" {
		t.Errorf("got kind %v expression %q", n.Kind, n.Expression)
	}
	if diff := cmp.Diff([]text.Segment{{Value: "msg", Binding: true}}, n.Tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomDelimiters(t *testing.T) {
	tree, _ := parse(t, "<p>[[ msg ]] {{ raw }}</p>", func(o *parser.Options) {
		o.Delimiters = text.Delimiters{Open: "[[", Close: "]]"}
	})
	n := child(t, tree, top(t, tree), 0)
	if want := `_s(msg)+" {{ raw }}"`; n.Expression != want {
		t.Errorf("expression = %q, want %q", n.Expression, want)
	}
}

func TestNamespacePropagates(t *testing.T) {
	tree, _ := parse(t, "<svg><text>x</text><foo></foo></svg>")
	svg := top(t, tree)
	if svg.NS != "svg" {
		t.Errorf("svg ns = %q", svg.NS)
	}
	for i := range svg.Children {
		if c := child(t, tree, svg, i); c.NS != "svg" {
			t.Errorf("<%s> ns = %q, want svg", c.Tag(), c.NS)
		}
	}

	tree, _ = parse(t, "<div><math></math></div>")
	if m := child(t, tree, top(t, tree), 0); m.NS != "math" {
		t.Errorf("math ns = %q", m.NS)
	}
}

func TestRootConditionChain(t *testing.T) {
	tree, warnings := parse(t, `<div v-if="1"></div><div v-else-if="2"></div><div v-else></div>`)
	if len(tree.Root().Children) != 1 {
		t.Fatalf("visible roots = %d, want 1", len(tree.Root().Children))
	}
	want := []ast.IfCondition{{Exp: "1", Block: 1}, {Exp: "2", Block: 2}, {Exp: "", Block: 3}}
	if diff := cmp.Diff(want, top(t, tree).IfConditions); diff != "" {
		t.Errorf("if conditions mismatch (-want +got):\n%s", diff)
	}
	expectWarnings(t, nil, warnings)
}

func TestNestedConditionChainDropsWhitespace(t *testing.T) {
	src := `<div><foo v-if="1"></foo> <section v-else-if="2"></section> <article v-else></article> <span></span></div>`
	tree, warnings := parse(t, src)
	div := top(t, tree)
	if diff := cmp.Diff([]string{"<foo>", " ", "<span>"}, describe(tree, div.Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	foo := child(t, tree, div, 0)
	want := []ast.IfCondition{{Exp: "1", Block: 2}, {Exp: "2", Block: 4}, {Exp: "", Block: 6}}
	if diff := cmp.Diff(want, foo.IfConditions); diff != "" {
		t.Errorf("if conditions mismatch (-want +got):\n%s", diff)
	}
	expectWarnings(t, nil, warnings)
}

func TestConditionChainWarnings(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		children []string
		warnings []string
	}{
		{
			name:     "else-if without if",
			src:      `<div><p v-else-if="1">world</p></div>`,
			warnings: []string{`v-else-if="1" used on element <p> without corresponding v-if.`},
		},
		{
			name:     "else without if",
			src:      `<div><p v-else>world</p></div>`,
			warnings: []string{`v-else used on element <p> without corresponding v-if.`},
		},
		{
			name:     "text between branches",
			src:      `<div><p v-if="a"></p>hello<p v-else></p></div>`,
			children: []string{"<p>"},
			warnings: []string{`text "hello" between v-if and v-else(-if) will be ignored.`},
		},
		{
			name:     "previous element without v-if",
			src:      `<div><p></p><p v-else></p></div>`,
			children: []string{"<p>"},
		},
		{
			name:     "else and else-if together",
			src:      `<div><p v-if="a"></p><p v-else v-else-if="b"></p></div>`,
			children: []string{"<p>"},
		},
		{
			name:     "missing else-if expression",
			src:      `<div><p v-if="a"></p><p v-else-if></p></div>`,
			children: []string{"<p>", "<p>"},
			warnings: []string{"Missing v-else-if expression."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, warnings := parse(t, tt.src)
			if diff := cmp.Diff(tt.children, describe(tree, top(t, tree).Children)); diff != "" {
				t.Errorf("children mismatch (-want +got):\n%s", diff)
			}
			expectWarnings(t, tt.warnings, warnings)
		})
	}
}

func TestElseAndElseIfTogetherLinksExpression(t *testing.T) {
	tree, _ := parse(t, `<div><p v-if="a"></p><p v-else v-else-if="b"></p></div>`)
	head := child(t, tree, top(t, tree), 0)
	want := []ast.IfCondition{{Exp: "a", Block: 2}, {Exp: "b", Block: 3}}
	if diff := cmp.Diff(want, head.IfConditions); diff != "" {
		t.Errorf("if conditions mismatch (-want +got):\n%s", diff)
	}
}

func TestRootWarnings(t *testing.T) {
	const multiRoot = "Component template should contain exactly one root element. " +
		"If you are using v-if on multiple elements, use v-else-if to chain them instead."
	const vForRoot = "Cannot use v-for on stateful component root element because it renders multiple elements."
	tests := []struct {
		name     string
		src      string
		warnings []string
	}{
		{"text only", "hello world", []string{"Component template requires a root element, rather than just text."}},
		{"text after root", "<div></div> tail", []string{`text "tail" outside root element will be ignored.`}},
		{"whitespace outside root", "\n<div></div>\n", nil},
		{"multiple roots", "<div></div><span></span><p></p>", []string{multiRoot}},
		{"template root", "<template><div></div></template>", []string{
			"Cannot use <template> as component root element because it may contain multiple nodes.",
		}},
		{"slot root", "<slot></slot>", []string{
			"Cannot use <slot> as component root element because it may contain multiple nodes.",
		}},
		{"v-for root", `<div v-for="i in list"></div>`, []string{vForRoot}},
		{"v-for on root branch", `<div v-if="a"></div><div v-else v-for="i in list"></div>`, []string{vForRoot}},
		{"broken root chain", `<div v-if="a"></div><div v-else-if></div><div v-else></div><div></div>`, []string{
			"Missing v-else-if expression.",
			multiRoot,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, warnings := parse(t, tt.src)
			expectWarnings(t, tt.warnings, warnings)
		})
	}
}

func TestWarningsRequireDev(t *testing.T) {
	_, warnings := parse(t, "<div></div><span></span>", func(o *parser.Options) { o.Dev = false })
	expectWarnings(t, nil, warnings)
}

func TestWhitespaceHandling(t *testing.T) {
	src := "<div>\n  <span>a \n\t b</span>\n  <span>c</span> <i>d</i>\n</div>"
	tests := []struct {
		mode     parser.WhitespaceHandling
		children []string
		text     string
	}{
		{parser.Condense, []string{"<span>", "<span>", " ", "<i>"}, "a b"},
		{parser.Preserve, []string{"<span>", " ", "<span>", " ", "<i>"}, "a \n\t b"},
		{parser.Ignore, []string{"<span>", "<span>", "<i>"}, "a \n\t b"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			tree, _ := parse(t, src, func(o *parser.Options) { o.Whitespace = tt.mode })
			div := top(t, tree)
			if diff := cmp.Diff(tt.children, describe(tree, div.Children)); diff != "" {
				t.Errorf("children mismatch (-want +got):\n%s", diff)
			}
			span := child(t, tree, div, 0)
			if got := child(t, tree, span, 0).Text(); got != tt.text {
				t.Errorf("span text = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestPreTagKeepsWhitespace(t *testing.T) {
	tree, _ := parse(t, "<div><pre>  a   b  </pre> </div>")
	div := top(t, tree)
	pre := child(t, tree, div, 0)
	if got := child(t, tree, pre, 0).Text(); got != "  a   b  " {
		t.Errorf("pre text = %q", got)
	}
	if len(div.Children) != 1 {
		t.Errorf("trailing whitespace kept after </pre>: %v", describe(tree, div.Children))
	}
}

func TestLeadingNewlineDropped(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"<pre>\n  x  y\n</pre>", "  x  y\n"},
		{"<pre>\n\nx</pre>", "\nx"},
		{"<textarea>\nhi</textarea>", "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree, _ := parse(t, tt.src)
			el := top(t, tree)
			if got := child(t, tree, el, 0).Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDuplicateWhitespaceAroundComments(t *testing.T) {
	tree, _ := parse(t, "<div><a></a> <!----> <a></a></div>")
	if diff := cmp.Diff([]string{"<a>", " ", "<a>"}, describe(tree, top(t, tree).Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestPreserveComments(t *testing.T) {
	tree, _ := parse(t, "<div><!-- hi --><p></p></div>", func(o *parser.Options) { o.PreserveComments = true })
	c := child(t, tree, top(t, tree), 0)
	if !c.IsComment || c.Text() != " hi " {
		t.Errorf("comment node = %+v", c)
	}
}

func TestVPre(t *testing.T) {
	tree, _ := parse(t, `<div v-pre id="message1"><span>{{msg}}</span><p :a="b"></p></div>`)
	div := top(t, tree)
	if !div.Pre {
		t.Error("root not marked pre")
	}
	if diff := cmp.Diff([]ast.AttrItem{{Name: "id", Value: `"message1"`, Quote: ast.Double}}, div.Attrs); diff != "" {
		t.Errorf("attrs mismatch (-want +got):\n%s", diff)
	}
	span := child(t, tree, div, 0)
	if !span.Plain {
		t.Error("attribute-less node inside v-pre should be plain")
	}
	txt := child(t, tree, span, 0)
	if txt.Kind != ast.TextNode || txt.Text() != "{{msg}}" {
		t.Errorf("v-pre text = %v %q", txt.Kind, txt.Text())
	}
	p := child(t, tree, div, 1)
	if diff := cmp.Diff([]ast.AttrItem{{Name: ":a", Value: `"b"`, Quote: ast.Double}}, p.Attrs); diff != "" {
		t.Errorf("raw attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestForbiddenTags(t *testing.T) {
	const forbidden = "Templates should only be responsible for mapping the state to the UI. " +
		"Avoid placing tags with side-effects in your templates, such as <style>, as they will not be parsed."
	tree, warnings := parse(t, "<style>.a{}</style>")
	root := top(t, tree)
	if !root.Forbidden || !root.Plain {
		t.Errorf("forbidden=%v plain=%v", root.Forbidden, root.Plain)
	}
	expectWarnings(t, []string{forbidden}, warnings)

	tree, _ = parse(t, `<div><script type="text/javascript">x</script><script type="text/x-template">y</script></div>`)
	div := top(t, tree)
	if len(div.Children) != 1 {
		t.Fatalf("children = %v", describe(tree, div.Children))
	}
	if tpl := child(t, tree, div, 0); tpl.Forbidden || tpl.Plain {
		t.Errorf("x-template script: forbidden=%v plain=%v", tpl.Forbidden, tpl.Plain)
	}

	tree, warnings = parse(t, "<div><style></style></div>", func(o *parser.Options) { o.IsSSR = true })
	if len(top(t, tree).Children) != 1 || len(warnings) != 0 {
		t.Errorf("ssr should keep <style>: %v", warnings)
	}
}

func TestVFor(t *testing.T) {
	tree, _ := parse(t, `<ul><li v-for="(item, index) in items"></li><li v-for="(v, k, i) of obj"></li></ul>`)
	ul := top(t, tree)
	tests := []struct {
		want parser.ForResult
		n    *ast.Node
	}{
		{parser.ForResult{For: "items", Alias: "item", Iterator1: "index"}, child(t, tree, ul, 0)},
		{parser.ForResult{For: "obj", Alias: "v", Iterator1: "k", Iterator2: "i"}, child(t, tree, ul, 1)},
	}
	for _, tt := range tests {
		got := parser.ForResult{For: tt.n.For, Alias: tt.n.Alias, Iterator1: tt.n.Iterator1, Iterator2: tt.n.Iterator2}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("v-for mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestInvalidVFor(t *testing.T) {
	tree, warnings := parse(t, `<div><p v-for="item into items"></p></div>`)
	p := child(t, tree, top(t, tree), 0)
	if p.For != "" || p.Alias != "" {
		t.Errorf("loop fields set: %q %q", p.For, p.Alias)
	}
	expectWarnings(t, []string{"Invalid v-for expression: item into items"}, warnings)
}

func TestVOnce(t *testing.T) {
	tree, _ := parse(t, `<div v-once></div>`)
	if !top(t, tree).Once {
		t.Error("v-once not recorded")
	}
}

func TestParseTokensInvalidAttributeName(t *testing.T) {
	tokens := []ast.Token{
		{Kind: ast.OpenTag, Data: "div", Attrs: ast.Attrs{{Name: ":[a b]", Value: "x", Quote: ast.Double}}},
		{Kind: ast.CommentEnd},
		{Kind: ast.CloseTag, Data: "div"},
	}
	var warnings []string
	opts := web.BaseOptions()
	opts.Dev = true
	opts.Warn = func(msg string) { warnings = append(warnings, msg) }
	p := parser.New(opts)
	tree := p.ParseTokens("", func(yield func(ast.Token) bool) {
		for _, tok := range tokens {
			if !yield(tok) {
				return
			}
		}
	})
	expectWarnings(t, []string{
		"Invalid dynamic argument expression: attribute names cannot contain spaces, quotes, <, >, / or =.",
	}, warnings)
	if diff := cmp.Diff(warnings, p.Warnings()); diff != "" {
		t.Errorf("Warnings() mismatch (-want +got):\n%s", diff)
	}
	div := top(t, tree)
	if diff := cmp.Diff([]ast.AttrItem{{Name: "a b", Value: "x", Dynamic: true, Quote: ast.Double}}, div.DynamicAttrs); diff != "" {
		t.Errorf("dynamic attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestUnclosedElementsAreClosed(t *testing.T) {
	tokens := []ast.Token{
		{Kind: ast.OpenTag, Data: "div"},
		{Kind: ast.OpenTag, Data: "p"},
		{Kind: ast.Text, Data: "x"},
	}
	tree := parser.New(web.BaseOptions()).ParseTokens("", func(yield func(ast.Token) bool) {
		for _, tok := range tokens {
			if !yield(tok) {
				return
			}
		}
	})
	div := top(t, tree)
	if !div.Processed || len(div.Children) != 1 {
		t.Errorf("div processed=%v children=%v", div.Processed, div.Children)
	}
}

func TestProcessElementIsIdempotent(t *testing.T) {
	opts := web.BaseOptions()
	opts.Dev = true
	opts.Warn = func(string) {}
	p := parser.New(opts)
	tree := p.Parse(`<div :id="a" @click="go" v-show="ok" class="x" key="k"><p v-for="i in l" v-if="i"></p></div>`)
	div := top(t, tree)
	inner := child(t, tree, div, 0)

	before, err := json.Marshal(tree.Document(nil))
	if err != nil {
		t.Fatal(err)
	}
	p.ProcessElement(div)
	p.ProcessFor(inner)
	p.ProcessElement(inner)
	after, err := json.Marshal(tree.Document(nil))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(before), string(after)); diff != "" {
		t.Errorf("reprocessing changed the tree (-before +after):\n%s", diff)
	}
}

func TestPlainWithoutDirectives(t *testing.T) {
	tree, _ := parse(t, `<div><p></p><p id="a"></p><span title="t"><b></b></span></div>`)
	tree.Walk(func(n *ast.Node, depth int) bool {
		if n.Kind != ast.Element {
			return true
		}
		want := len(n.Token.Attrs) == 0 && len(n.ScopedSlots) == 0
		if n.Plain != want {
			t.Errorf("<%s id=%d> plain = %v, want %v", n.Tag(), n.ID, n.Plain, want)
		}
		return true
	})
}

func TestTreeLinksAreConsistent(t *testing.T) {
	src := `<div>
		<p v-if="a">x</p><p v-else>y</p>
		<my-comp v-slot="{ item }"><span>{{ item }}</span></my-comp>
		<other-comp><template #head>h</template><i>i</i></other-comp>
		<input v-model="m" :type="t">
	</div>`
	tree, _ := parse(t, src)
	tree.Walk(func(n *ast.Node, depth int) bool {
		for _, id := range n.Children {
			c, ok := tree.Get(id)
			if !ok {
				t.Errorf("node %d has unregistered child %d", n.ID, id)
				continue
			}
			if c.Parent != n.ID {
				t.Errorf("child %d of %d points at parent %d", id, n.ID, c.Parent)
			}
		}
		if n.Kind != ast.Root {
			if _, ok := tree.Get(n.Parent); !ok {
				t.Errorf("node %d has unregistered parent %d", n.ID, n.Parent)
			}
		}
		return true
	})
}
