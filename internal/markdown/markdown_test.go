package markdown

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docedit/internal/doctree"
)

func TestParseHeadingAndItalic(t *testing.T) {
	nodes := ParseToNodes("# Title\n\nSome *text*.")
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	h := nodes[0]
	if h.Type != doctree.TypeHeading || h.AttrInt("level", 0) != 1 || h.TextContent() != "Title" {
		t.Errorf("unexpected heading %+v", h)
	}
	p := nodes[1]
	if p.Type != doctree.TypeParagraph {
		t.Fatalf("expected paragraph, got %s", p.Type)
	}
	found := false
	for _, c := range p.Content {
		if c.Text == "text" && c.HasMark(doctree.MarkItalic) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected italic run \"text\", got %+v", p.Content)
	}
	if p.TextContent() != "Some text." {
		t.Errorf("expected %q, got %q", "Some text.", p.TextContent())
	}
}

func TestParseEmptyInput(t *testing.T) {
	nodes := ParseToNodes("")
	want := []*doctree.Node{doctree.NewParagraph()}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlankInputKeepsRaw(t *testing.T) {
	nodes := ParseToNodes("\n\n")
	if len(nodes) != 1 || nodes[0].TextContent() != "\n\n" {
		t.Errorf("expected raw paragraph, got %+v", nodes)
	}
}

func TestParseLineKinds(t *testing.T) {
	md := "## Sub\n- one\n* two\n3. three\n> quoted\n>\n---\n***\nplain"
	nodes := ParseToNodes(md)
	want := []string{
		doctree.TypeHeading, doctree.TypeBulletList, doctree.TypeBulletList,
		doctree.TypeOrderedList, doctree.TypeBlockquote, doctree.TypeBlockquote,
		doctree.TypeHorizontalRule, doctree.TypeHorizontalRule, doctree.TypeParagraph,
	}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d nodes, got %d", len(want), len(nodes))
	}
	for i, n := range nodes {
		if n.Type != want[i] {
			t.Errorf("node %d: expected %s, got %s", i, want[i], n.Type)
		}
		if err := n.Check(); err != nil {
			t.Errorf("node %d: schema check: %v", i, err)
		}
	}
	if nodes[0].AttrInt("level", 0) != 2 {
		t.Errorf("expected level 2, got %d", nodes[0].AttrInt("level", 0))
	}
	if nodes[3].AttrInt("start", 0) != 3 || nodes[3].TextContent() != "three" {
		t.Errorf("unexpected ordered list %+v", nodes[3])
	}
	if len(nodes[5].Content[0].Content) != 0 {
		t.Error("expected empty blockquote paragraph")
	}
}

func TestParseFences(t *testing.T) {
	nodes := ParseToNodes("```go\nfunc main() {}\n# not a heading\n```\nafter")
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	code := nodes[0]
	if code.AttrString("language", "") != "go" {
		t.Errorf("expected language go, got %v", code.Attrs)
	}
	if code.TextContent() != "func main() {}\n# not a heading" {
		t.Errorf("unexpected code body %q", code.TextContent())
	}

	nodes = ParseToNodes("```\nunclosed")
	if len(nodes) != 1 || nodes[0].AttrString("language", "") != DefaultCodeLanguage || nodes[0].TextContent() != "unclosed" {
		t.Errorf("expected flushed unclosed fence, got %+v", nodes)
	}
}

func TestParseInlinePrecedence(t *testing.T) {
	tests := []struct {
		in   string
		want []*doctree.Node
	}{
		{"plain", []*doctree.Node{doctree.NewText("plain")}},
		{"a **b** c", []*doctree.Node{
			doctree.NewText("a "),
			doctree.NewText("b", doctree.Mark{Type: doctree.MarkBold}),
			doctree.NewText(" c"),
		}},
		{"*a* and _b_", []*doctree.Node{
			doctree.NewText("a", doctree.Mark{Type: doctree.MarkItalic}),
			doctree.NewText(" and "),
			doctree.NewText("b", doctree.Mark{Type: doctree.MarkItalic}),
		}},
		{"use `x`", []*doctree.Node{
			doctree.NewText("use "),
			doctree.NewText("x", doctree.Mark{Type: doctree.MarkCode}),
		}},
		{"see [docs](https://example.com)", []*doctree.Node{
			doctree.NewText("see "),
			doctree.NewText("docs", doctree.Mark{Type: doctree.MarkLink, Attrs: map[string]any{"href": "https://example.com"}}),
		}},
		{"**bold _both_**", []*doctree.Node{
			doctree.NewText("bold ", doctree.Mark{Type: doctree.MarkBold}),
			doctree.NewText("both", doctree.Mark{Type: doctree.MarkItalic}, doctree.Mark{Type: doctree.MarkBold}),
		}},
	}
	for _, tt := range tests {
		got := ParseInline(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseInline(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestRender(t *testing.T) {
	nodes := []*doctree.Node{
		doctree.NewHeading(2, doctree.NewText("Plan")),
		doctree.NewParagraph(doctree.NewText("a "), doctree.NewText("b", doctree.Mark{Type: doctree.MarkBold})),
		{Type: doctree.TypeOrderedList, Attrs: map[string]any{"start": 1}, Content: []*doctree.Node{
			{Type: doctree.TypeListItem, Content: []*doctree.Node{doctree.TextParagraph("x")}},
			{Type: doctree.TypeListItem, Content: []*doctree.Node{doctree.TextParagraph("y")}},
		}},
		{Type: doctree.TypeCodeBlock, Attrs: map[string]any{"language": "go"}, Content: []*doctree.Node{doctree.NewText("x := 1")}},
	}
	want := "## Plan\n\na **b**\n\n1. x\n2. y\n\n```go\nx := 1\n```"
	if got := Render(nodes); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestRoundTrip(t *testing.T) {
	md := "### Section\n\n- item with [link](http://x.io)\n\n1. first\n\n> quote\n\n```sh\necho hi\n```\n\nSome **bold** and `code`."
	first := ParseToNodes(md)
	second := ParseToNodes(Render(first))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

// TestRenderIsCommonMark checks rendered output with a real CommonMark parser.
func TestRenderIsCommonMark(t *testing.T) {
	nodes := ParseToNodes("## Heading\n- item\n```go\nx\n```\nSee [site](http://a.b) and **bold**.")
	src := []byte(Render(nodes))
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var headingLevel, lists, strong int
	var lang, dest string
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			headingLevel = v.Level
		case *ast.List:
			lists++
		case *ast.FencedCodeBlock:
			lang = string(v.Language(src))
		case *ast.Link:
			dest = string(v.Destination)
		case *ast.Emphasis:
			if v.Level == 2 {
				strong++
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if headingLevel != 2 || lists != 1 || lang != "go" || dest != "http://a.b" || strong != 1 {
		t.Errorf("unexpected AST: level=%d lists=%d lang=%q dest=%q strong=%d\n%s", headingLevel, lists, lang, dest, strong, src)
	}
}
