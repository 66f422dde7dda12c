package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/doctree"
)

func TestTextImporter_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\n\nThird paragraph."
	p := &TextImporter{}
	nodes, err := p.Import(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(nodes))
	}

	first := nodes[0]
	if len(first.Content) != 3 || first.Content[1].Type != doctree.TypeHardBreak {
		t.Errorf("expected text, hardBreak, text in first paragraph, got %+v", first.Content)
	}
	want := []string{
		"First paragraph line one.First paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if got := nodes[i].TextContent(); got != w {
			t.Errorf("paragraph %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestTextImporter_EmptyInput(t *testing.T) {
	p := &TextImporter{}
	nodes, err := p.Import(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected 0 paragraphs, got %d", len(nodes))
	}
}

func TestTextImporter_WhitespaceOnlyLinesSeparate(t *testing.T) {
	input := "Alpha\n   \nBeta\r\n\t\nGamma"
	p := &TextImporter{}
	nodes, err := p.Import(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(nodes))
	}
	if got := nodes[1].TextContent(); got != "Beta" {
		t.Errorf("expected Beta without carriage return, got %q", got)
	}
}

func TestPageBlocks_HeadsEachPage(t *testing.T) {
	nodes := pageBlocks("page one\f\fpage three")
	want := []string{"Page 1", "page one", "Page 3", "page three"}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(nodes))
	}
	for i, w := range want {
		if got := nodes[i].TextContent(); got != w {
			t.Errorf("block %d: expected %q, got %q", i, w, got)
		}
	}
	if nodes[0].Type != doctree.TypeHeading {
		t.Errorf("expected heading, got %s", nodes[0].Type)
	}

	single := pageBlocks("just text")
	if len(single) != 1 || single[0].Type != doctree.TypeParagraph {
		t.Errorf("expected one paragraph for a single page, got %+v", single)
	}
}
