package blocks

import (
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/doctree"
)

// testDoc: h1 "Intro" | p "first para" | ul > li > p "item one" | p "second para"
func testDoc() *doctree.Node {
	return doctree.NewDoc(
		doctree.NewHeading(1, doctree.NewText("Intro")),
		doctree.TextParagraph("first para"),
		&doctree.Node{Type: doctree.TypeBulletList, Content: []*doctree.Node{
			{Type: doctree.TypeListItem, Content: []*doctree.Node{doctree.TextParagraph("item one")}},
		}},
		doctree.TextParagraph("second para"),
	)
}

func TestDiscoverOrderAndSpans(t *testing.T) {
	list := Discover(testDoc())
	wantTypes := []string{
		doctree.TypeHeading, doctree.TypeParagraph, doctree.TypeBulletList,
		doctree.TypeListItem, doctree.TypeParagraph, doctree.TypeParagraph,
	}
	if len(list) != len(wantTypes) {
		t.Fatalf("expected %d blocks, got %d", len(wantTypes), len(list))
	}
	for i, b := range list {
		if b.Type != wantTypes[i] {
			t.Errorf("block %d: expected %s, got %s", i, wantTypes[i], b.Type)
		}
		if b.Index != i {
			t.Errorf("block %d: expected index %d, got %d", i, i, b.Index)
		}
		if i > 0 && b.Pos <= list[i-1].Pos {
			t.Errorf("block %d: expected increasing pos, got %d after %d", i, b.Pos, list[i-1].Pos)
		}
	}

	h := list[0]
	if h.Pos != 0 || h.Size != 7 || h.ContentStart != 1 || h.ContentEnd != 6 || h.Level != 1 {
		t.Errorf("unexpected heading block %+v", h)
	}
	ul := list[2]
	if ul.ContentStart != ul.Pos || ul.ContentEnd != ul.End() {
		t.Errorf("expected non-text block to span itself, got %+v", ul)
	}
	if list[4].Depth != 3 || list[4].Text != "item one" {
		t.Errorf("expected nested paragraph at depth 3, got %+v", list[4])
	}
}

func TestDiscoverSiblingsDisjoint(t *testing.T) {
	list := Discover(testDoc())
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			if a.Depth != b.Depth {
				continue
			}
			if a.Pos < b.End() && b.Pos < a.End() {
				t.Errorf("blocks %d and %d overlap: %+v %+v", i, j, a, b)
			}
		}
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("é", 100)
	got := Preview(long)
	if len([]rune(got)) != PreviewLen+1 || !strings.HasSuffix(got, "…") {
		t.Errorf("expected %d runes ending in ellipsis, got %d", PreviewLen+1, len([]rune(got)))
	}
	if Preview("short") != "short" {
		t.Error("expected short text unchanged")
	}
}

func TestFindByText(t *testing.T) {
	list := Discover(testDoc())
	b, ok := FindByText(list, "PARA", 2)
	if !ok || b.Text != "second para" {
		t.Errorf("expected second para, got %+v (%v)", b, ok)
	}
	if _, ok := FindByText(list, "para", 3); ok {
		t.Error("expected no third occurrence")
	}
	if _, ok := FindByText(list, "", 1); ok {
		t.Error("expected empty query to find nothing")
	}
}

func TestFindByHeading(t *testing.T) {
	list := Discover(testDoc())
	if b, ok := FindByHeading(list, "intro", 1); !ok || b.Pos != 0 {
		t.Errorf("expected heading at 0, got %+v (%v)", b, ok)
	}
	if _, ok := FindByHeading(list, "first", 1); ok {
		t.Error("expected paragraphs to be ignored")
	}
}

func TestTopLevelAndContaining(t *testing.T) {
	list := Discover(testDoc())
	if n := len(TopLevel(list)); n != 4 {
		t.Errorf("expected 4 top-level blocks, got %d", n)
	}
	if n := len(Textblocks(list)); n != 4 {
		t.Errorf("expected 4 textblocks, got %d", n)
	}
	// ul at 19: li at 20, p at 21
	b, ok := Containing(list, 23)
	if !ok || b.Type != doctree.TypeParagraph || b.Depth != 3 {
		t.Errorf("expected innermost paragraph, got %+v", b)
	}
}
