package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/doctree"
)

func importMarkdown(t *testing.T, input string) []*doctree.Node {
	t.Helper()
	p := &MarkdownImporter{}
	nodes, err := p.Import(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return nodes
}

func findRun(n *doctree.Node, text string) *doctree.Node {
	for _, c := range n.Content {
		if c.IsText() && c.Text == text {
			return c
		}
	}
	return nil
}

func TestMarkdownImporter_BlockKinds(t *testing.T) {
	input := "# Title\n\n" +
		"Intro with **bold** and [a link](http://x.io).\n\n" +
		"- one\n- two\n  - nested\n\n" +
		"3. first\n4. second\n\n" +
		"```go\nfmt.Println()\n```\n\n" +
		"> quoted\n\n" +
		"---\n"
	nodes := importMarkdown(t, input)

	wantTypes := []string{
		doctree.TypeHeading, doctree.TypeParagraph, doctree.TypeBulletList,
		doctree.TypeOrderedList, doctree.TypeCodeBlock, doctree.TypeBlockquote,
		doctree.TypeHorizontalRule,
	}
	if len(nodes) != len(wantTypes) {
		t.Fatalf("expected %d blocks, got %d", len(wantTypes), len(nodes))
	}
	for i, w := range wantTypes {
		if nodes[i].Type != w {
			t.Errorf("block %d: expected %s, got %s", i, w, nodes[i].Type)
		}
	}

	if lvl := nodes[0].AttrInt("level", 0); lvl != 1 {
		t.Errorf("expected heading level 1, got %d", lvl)
	}

	intro := nodes[1]
	if got := intro.TextContent(); got != "Intro with bold and a link." {
		t.Errorf("expected intro text, got %q", got)
	}
	if run := findRun(intro, "bold"); run == nil || !run.HasMark(doctree.MarkBold) {
		t.Errorf("expected a bold run, got %+v", intro.Content)
	}
	run := findRun(intro, "a link")
	if run == nil {
		t.Fatalf("expected a link run, got %+v", intro.Content)
	}
	if m, ok := run.Mark(doctree.MarkLink); !ok || m.Attrs["href"] != "http://x.io" {
		t.Errorf("expected link to http://x.io, got %+v", run.Marks)
	}

	bullets := nodes[2]
	if len(bullets.Content) != 2 {
		t.Fatalf("expected 2 bullet items, got %d", len(bullets.Content))
	}
	second := bullets.Content[1]
	if len(second.Content) != 2 || second.Content[1].Type != doctree.TypeBulletList {
		t.Errorf("expected nested list in second item, got %+v", second.Content)
	}

	if start := nodes[3].AttrInt("start", 1); start != 3 {
		t.Errorf("expected ordered list start 3, got %d", start)
	}

	code := nodes[4]
	if lang := code.AttrString("language", ""); lang != "go" {
		t.Errorf("expected language go, got %q", lang)
	}
	if got := code.TextContent(); got != "fmt.Println()" {
		t.Errorf("expected code body, got %q", got)
	}

	if got := nodes[5].TextContent(); got != "quoted" {
		t.Errorf("expected quoted, got %q", got)
	}
}

func TestMarkdownImporter_SoftBreakBecomesSpace(t *testing.T) {
	nodes := importMarkdown(t, "line one\nline two")
	if len(nodes) != 1 {
		t.Fatalf("expected 1 block, got %d", len(nodes))
	}
	if got := nodes[0].TextContent(); got != "line one line two" {
		t.Errorf("expected %q, got %q", "line one line two", got)
	}
}

func TestMarkdownImporter_ImageAndCodeSpan(t *testing.T) {
	nodes := importMarkdown(t, "See ![diagram](d.png) and `x`")
	p := nodes[0]
	var img *doctree.Node
	for _, c := range p.Content {
		if c.Type == doctree.TypeImage {
			img = c
		}
	}
	if img == nil {
		t.Fatalf("expected an image node, got %+v", p.Content)
	}
	if img.AttrString("src", "") != "d.png" || img.AttrString("alt", "") != "diagram" {
		t.Errorf("unexpected image attrs %v", img.Attrs)
	}
	if run := findRun(p, "x"); run == nil || !run.HasMark(doctree.MarkCode) {
		t.Errorf("expected a code run, got %+v", p.Content)
	}
}

func TestMarkdownImporter_FenceWithoutLanguage(t *testing.T) {
	nodes := importMarkdown(t, "```\nplain\n```")
	if lang := nodes[0].AttrString("language", ""); lang != "text" {
		t.Errorf("expected default language text, got %q", lang)
	}
}

func TestMarkdownImporter_EmptyInput(t *testing.T) {
	if nodes := importMarkdown(t, ""); len(nodes) != 0 {
		t.Errorf("expected no blocks, got %d", len(nodes))
	}
}
