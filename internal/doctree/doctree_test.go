package doctree

import (
	"encoding/json"
	"testing"
)

// sampleDoc builds: <p>ab<b>c</b></p><ul><li><p>xy</p></li></ul>
func sampleDoc() *Node {
	return NewDoc(
		NewParagraph(NewText("ab"), NewText("c", Mark{Type: MarkBold})),
		&Node{Type: TypeBulletList, Content: []*Node{
			{Type: TypeListItem, Content: []*Node{TextParagraph("xy")}},
		}},
	)
}

func TestNodeSize(t *testing.T) {
	doc := sampleDoc()
	// paragraph: 2 + 3 chars = 5; list: 2 + (2 + (2 + 2)) = 8
	if got := doc.ContentSize(); got != 13 {
		t.Errorf("expected content size 13, got %d", got)
	}
	if got := doc.NodeSize(); got != 15 {
		t.Errorf("expected doc size 15, got %d", got)
	}
	img := &Node{Type: TypeImage, Attrs: map[string]any{"src": "a.png"}}
	if img.NodeSize() != 1 {
		t.Errorf("expected leaf size 1, got %d", img.NodeSize())
	}
	if NewText("héllo").NodeSize() != 5 {
		t.Errorf("expected text size to count runes")
	}
}

func TestDescendantsOrderAndPositions(t *testing.T) {
	doc := sampleDoc()
	type visit struct {
		typ string
		pos int
	}
	var got []visit
	doc.Descendants(func(n *Node, pos int, _ *Node, _ int) bool {
		got = append(got, visit{n.Type, pos})
		return true
	})
	want := []visit{
		{TypeParagraph, 0}, {TypeText, 1}, {TypeText, 3},
		{TypeBulletList, 5}, {TypeListItem, 6}, {TypeParagraph, 7}, {TypeText, 8},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d visits, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestNodesBetweenSkipsOutsideRange(t *testing.T) {
	doc := sampleDoc()
	var types []string
	doc.NodesBetween(6, 10, func(n *Node, _ int, _ *Node, _ int) bool {
		types = append(types, n.Type)
		return true
	})
	want := []string{TypeBulletList, TypeListItem, TypeParagraph, TypeText}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("visit %d: expected %s, got %s", i, want[i], types[i])
		}
	}
}

func TestResolve(t *testing.T) {
	doc := sampleDoc()

	r, err := doc.Resolve(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Depth() != 1 || r.Parent().Type != TypeParagraph {
		t.Errorf("expected depth 1 in paragraph, got depth %d in %s", r.Depth(), r.Parent().Type)
	}
	if r.ParentOffset != 1 || r.TextOffset() != 1 {
		t.Errorf("expected parent offset 1 / text offset 1, got %d / %d", r.ParentOffset, r.TextOffset())
	}

	r, err = doc.Resolve(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Depth() != 3 {
		t.Fatalf("expected depth 3 inside list paragraph, got %d", r.Depth())
	}
	if r.Start(3) != 8 || r.End(3) != 10 {
		t.Errorf("expected paragraph content [8,10), got [%d,%d)", r.Start(3), r.End(3))
	}
	if r.Before(1) != 5 {
		t.Errorf("expected list before 5, got %d", r.Before(1))
	}
	if _, d, ok := r.Ancestor(TypeListItem); !ok || d != 2 {
		t.Errorf("expected listItem ancestor at depth 2, got %d (%v)", d, ok)
	}

	if _, err := doc.Resolve(14); err == nil {
		t.Error("expected error resolving past content end")
	}
}

func TestNodeAt(t *testing.T) {
	doc := sampleDoc()
	if n := doc.NodeAt(5); n == nil || n.Type != TypeBulletList {
		t.Errorf("expected bulletList at 5, got %v", n)
	}
	if n := doc.NodeAt(3); n == nil || !n.HasMark(MarkBold) {
		t.Errorf("expected bold text at 3, got %v", n)
	}
	if n := doc.NodeAt(13); n != nil {
		t.Errorf("expected nil at content end, got %v", n.Type)
	}
}

func TestTextContent(t *testing.T) {
	if got := sampleDoc().TextContent(); got != "abcxy" {
		t.Errorf("expected %q, got %q", "abcxy", got)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		node    *Node
		wantErr bool
	}{
		{"valid doc", sampleDoc(), false},
		{"block in paragraph", NewParagraph(NewParagraph()), true},
		{"empty text", NewParagraph(&Node{Type: TypeText}), true},
		{"single column", &Node{Type: TypeColumns, Content: []*Node{{Type: TypeColumn, Content: []*Node{NewParagraph()}}}}, true},
		{"seven columns", sevenColumns(), true},
		{"paragraph in columns", &Node{Type: TypeColumns, Content: []*Node{NewParagraph()}}, true},
		{"marked text in code", &Node{Type: TypeCodeBlock, Content: []*Node{NewText("x", Mark{Type: MarkBold})}}, true},
		{"heading level 7", NewHeading(7, NewText("x")), true},
		{"unknown type", &Node{Type: "table"}, true},
	}
	for _, tt := range tests {
		err := tt.node.Check()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(sampleDoc())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.NodeSize() != 15 {
		t.Errorf("expected size 15 after round trip, got %d", doc.NodeSize())
	}
	h := NewHeading(3)
	data, _ = json.Marshal(h)
	parsed, _ := Parse(data)
	if parsed.AttrInt("level", 0) != 3 {
		t.Errorf("expected level 3 after JSON decode, got %d", parsed.AttrInt("level", 0))
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := sampleDoc()
	c := doc.Clone()
	c.Content[0].Content[0].Text = "zz"
	if doc.Content[0].Content[0].Text != "ab" {
		t.Error("expected clone mutation not to leak into original")
	}
}

func sevenColumns() *Node {
	n := &Node{Type: TypeColumns}
	for i := 0; i < 7; i++ {
		n.Content = append(n.Content, &Node{Type: TypeColumn, Content: []*Node{NewParagraph()}})
	}
	return n
}
