package doctree

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Node is one element of a rich-text document tree. Text nodes carry Text and
// Marks; every other node carries Content. Absolute positions are never
// stored: they are derived from sizes on every traversal.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Mark is an inline formatting tag attached to a text run.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// NewDoc returns a document root holding the given blocks. An empty
// document gets a single empty paragraph, as the editor would.
func NewDoc(blocks ...*Node) *Node {
	if len(blocks) == 0 {
		blocks = []*Node{NewParagraph()}
	}
	return &Node{Type: TypeDoc, Content: blocks}
}

// NewText returns a text run. Callers must not pass an empty string.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: text, Marks: marks}
}

// NewParagraph returns a paragraph wrapping the given inline nodes.
func NewParagraph(inline ...*Node) *Node {
	return &Node{Type: TypeParagraph, Content: inline}
}

// NewHeading returns a heading of the given level.
func NewHeading(level int, inline ...*Node) *Node {
	return &Node{Type: TypeHeading, Attrs: map[string]any{"level": level}, Content: inline}
}

// TextParagraph wraps plain text in a paragraph; empty text yields an empty paragraph.
func TextParagraph(text string) *Node {
	if text == "" {
		return NewParagraph()
	}
	return NewParagraph(NewText(text))
}

// Parse decodes a ProseMirror-style JSON document or node.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if n.Type == "" {
		return nil, fmt.Errorf("decode document: missing node type")
	}
	return &n, nil
}

// NodeSize is the number of positions the node occupies.
func (n *Node) NodeSize() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	return n.ContentSize() + 2
}

// ContentSize is the summed size of the node's children.
func (n *Node) ContentSize() int {
	size := 0
	for _, c := range n.Content {
		size += c.NodeSize()
	}
	return size
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.Content) }

// TextContent concatenates all descendant text runs.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	for _, c := range n.Content {
		if c.IsText() {
			sb.WriteString(c.Text)
			continue
		}
		c.writeText(sb)
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Type: n.Type, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = cloneAttrs(n.Attrs)
	}
	if len(n.Marks) > 0 {
		c.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			c.Marks[i] = Mark{Type: m.Type, Attrs: cloneAttrs(m.Attrs)}
		}
	}
	if len(n.Content) > 0 {
		c.Content = make([]*Node, len(n.Content))
		for i, ch := range n.Content {
			c.Content[i] = ch.Clone()
		}
	}
	return c
}

// CloneAll deep-copies a node slice.
func CloneAll(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func cloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// HasMark reports whether a mark of the given type is attached.
func (n *Node) HasMark(markType string) bool {
	for _, m := range n.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

// Mark returns the mark of the given type, if present.
func (n *Node) Mark(markType string) (Mark, bool) {
	for _, m := range n.Marks {
		if m.Type == markType {
			return m, true
		}
	}
	return Mark{}, false
}

// SameMarks reports whether two mark sets are equal, ignoring order.
func SameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, ma := range a {
		found := false
		for _, mb := range b {
			if ma.Type == mb.Type && fmt.Sprint(ma.Attrs) == fmt.Sprint(mb.Attrs) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// AddMark returns marks with m added, replacing any mark of the same type.
func AddMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	for _, existing := range marks {
		if existing.Type != m.Type {
			out = append(out, existing)
		}
	}
	return append(out, m)
}

// AttrInt reads an integer attribute, accepting the numeric types JSON
// decoding and Go literals produce.
func (n *Node) AttrInt(key string, fallback int) int {
	if n.Attrs == nil {
		return fallback
	}
	switch v := n.Attrs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return fallback
}

// AttrString reads a string attribute.
func (n *Node) AttrString(key, fallback string) string {
	if n.Attrs == nil {
		return fallback
	}
	if s, ok := n.Attrs[key].(string); ok {
		return s
	}
	return fallback
}

// SetAttr sets a single attribute, allocating the map if needed.
func (n *Node) SetAttr(key string, value any) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
}
