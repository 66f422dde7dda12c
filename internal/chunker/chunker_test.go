package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docedit/internal/docpos"
	"github.com/dgallion1/docedit/internal/doctree"
)

func paragraphs(n int, text string) *doctree.Node {
	var blocks []*doctree.Node
	for i := 0; i < n; i++ {
		blocks = append(blocks, doctree.TextParagraph(text))
	}
	return doctree.NewDoc(blocks...)
}

// outlineDoc: h1 "A" | p "body" | blockquote > h2 "B" | ul > li > p "i"
func outlineDoc() *doctree.Node {
	return doctree.NewDoc(
		doctree.NewHeading(1, doctree.NewText("A")),
		doctree.TextParagraph("body"),
		&doctree.Node{Type: doctree.TypeBlockquote, Content: []*doctree.Node{doctree.NewHeading(2, doctree.NewText("B"))}},
		&doctree.Node{Type: doctree.TypeBulletList, Content: []*doctree.Node{
			{Type: doctree.TypeListItem, Content: []*doctree.Node{doctree.TextParagraph("i")}},
		}},
	)
}

func TestReadChunk_ClampsToDocumentEnd(t *testing.T) {
	doc := doctree.NewDoc(doctree.TextParagraph("abcdefgh"), doctree.TextParagraph("123456"))
	if doc.NodeSize() != 20 {
		t.Fatalf("expected doc size 20, got %d", doc.NodeSize())
	}
	c, err := ReadChunk(doc, ReadRequest{From: 5, ChunkSize: 100}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.To > 18 {
		t.Errorf("expected to <= 18, got %d", c.To)
	}
	if c.HasMore {
		t.Error("expected hasMore false")
	}
	if c.Count != 2 || c.Nodes[0].Text != "abcdefgh" || c.Nodes[1].Pos != 10 {
		t.Errorf("unexpected nodes %+v", c.Nodes)
	}
	if c.CharCount != 14 {
		t.Errorf("expected 14 chars, got %d", c.CharCount)
	}
}

func TestReadChunk_HasMore(t *testing.T) {
	doc := paragraphs(10, "hello")
	c, err := ReadChunk(doc, ReadRequest{From: 0, ChunkSize: 10}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.HasMore || c.To != 10 {
		t.Errorf("expected hasMore with to=10, got %v to=%d", c.HasMore, c.To)
	}
	if c.Truncated || c.NextFrom != 10 {
		t.Errorf("expected untruncated read continuing at 10, got %v %d", c.Truncated, c.NextFrom)
	}
}

func TestReadChunk_NodeCap(t *testing.T) {
	doc := paragraphs(60, "x")
	c, err := ReadChunk(doc, ReadRequest{From: 0}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Count != docpos.MaxNodesPerRead || !c.Truncated {
		t.Fatalf("expected %d nodes and truncation, got %d (%v)", docpos.MaxNodesPerRead, c.Count, c.Truncated)
	}
	if c.NextFrom != 150 {
		t.Errorf("expected next read at 150, got %d", c.NextFrom)
	}
}

func TestReadChunk_CharBudgetIncludesExceedingNode(t *testing.T) {
	doc := paragraphs(5, "abcdefgh")
	c, err := ReadChunk(doc, ReadRequest{From: 0}, Limits{MaxCharsPerRead: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Count != 2 || c.CharCount != 16 {
		t.Errorf("expected 2 nodes and 16 chars, got %d and %d", c.Count, c.CharCount)
	}
}

func TestReadChunk_IncludeContext(t *testing.T) {
	doc := paragraphs(100, "x")
	c, err := ReadChunk(doc, ReadRequest{From: 150, ChunkSize: 30, IncludeContext: true}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.From != 50 || c.To != 180 {
		t.Errorf("expected [50,180), got [%d,%d)", c.From, c.To)
	}
	if c.Nodes[0].Pos != 48 {
		t.Errorf("expected first node overlapping 50 at 48, got %d", c.Nodes[0].Pos)
	}
}

func TestReadChunk_InvalidFrom(t *testing.T) {
	doc := doctree.NewDoc(doctree.TextParagraph("abcdefgh"), doctree.TextParagraph("123456"))
	_, err := ReadChunk(doc, ReadRequest{From: 19}, Limits{})
	var rerr *docpos.RangeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RangeError, got %v", err)
	}
}

func TestReadChunk_DescendsContainers(t *testing.T) {
	c, err := ReadChunk(outlineDoc(), ReadRequest{From: 14}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var types []string
	for _, n := range c.Nodes {
		types = append(types, n.Type)
	}
	want := "bulletList,listItem,paragraph"
	if got := strings.Join(types, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestExtractStructure(t *testing.T) {
	s := ExtractStructure(outlineDoc(), Limits{})
	if s.TotalSize != 23 {
		t.Errorf("expected total size 23, got %d", s.TotalSize)
	}
	want := []Heading{{Level: 1, Text: "A", Pos: 0, TextInsertPos: 2}, {Level: 2, Text: "B", Pos: 10, TextInsertPos: 12}}
	if len(s.Headings) != len(want) {
		t.Fatalf("expected %d headings, got %d", len(want), len(s.Headings))
	}
	for i := range want {
		if s.Headings[i] != want[i] {
			t.Errorf("heading %d: expected %+v, got %+v", i, want[i], s.Headings[i])
		}
	}
	if len(s.Blocks) != 4 {
		t.Fatalf("expected 4 top-level blocks, got %d", len(s.Blocks))
	}
	if s.Blocks[1].TextInsertPos != 8 || s.Blocks[2].TextInsertPos != 0 {
		t.Errorf("unexpected insert positions %+v", s.Blocks)
	}
	if s.RecommendedChunkSize != docpos.MaxChunkSize || s.MaxNodesPerRead != docpos.MaxNodesPerRead {
		t.Errorf("expected default limits, got %d / %d", s.RecommendedChunkSize, s.MaxNodesPerRead)
	}
}

func TestNodeAtPosition(t *testing.T) {
	res, err := NodeAtPosition(outlineDoc(), 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Node.Type != doctree.TypeHeading || res.Node.Pos != 10 || res.Depth != 2 {
		t.Errorf("expected heading at 10 depth 2, got %+v depth %d", res.Node, res.Depth)
	}
	if res.ParentType != doctree.TypeBlockquote {
		t.Errorf("expected parent blockquote, got %s", res.ParentType)
	}
	if res.NodeAfter == nil || res.NodeAfter.Text != "B" || res.NodeAfter.Pos != 11 {
		t.Errorf("unexpected node after %+v", res.NodeAfter)
	}
	if _, err := NodeAtPosition(outlineDoc(), 22); err == nil {
		t.Error("expected error past content end")
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("expected 0 tokens for empty text")
	}
	if got := EstimateTokens("one two three"); got != 3 {
		t.Errorf("expected 3 tokens, got %d", got)
	}
	if got := EstimateTokens(strings.Repeat("x", 400)); got != 100 {
		t.Errorf("expected char estimate 100, got %d", got)
	}
}
