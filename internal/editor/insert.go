package editor

import (
	"fmt"

	"github.com/dgallion1/docedit/internal/doctree"
)

// insertAt places nodes at pos and returns the position right after the
// inserted content.
func insertAt(doc *doctree.Node, pos int, nodes []*doctree.Node) (int, error) {
	if len(nodes) == 0 {
		return 0, fmt.Errorf("nothing to insert")
	}
	if err := doctree.CheckAll(nodes); err != nil {
		return 0, fmt.Errorf("invalid content: %w", err)
	}
	rp, err := doc.Resolve(pos)
	if err != nil {
		return 0, err
	}
	parent := rp.Parent()
	depth := rp.Depth()

	if parent.IsTextblock() {
		if doctree.AllInline(nodes) {
			inserted, err := insertInline(parent, rp.ParentOffset, nodes)
			if err != nil {
				return 0, err
			}
			return pos + inserted, nil
		}
		return splitAndInsert(rp, nodes)
	}

	nodes = fitBlocks(parent, nodes)
	for _, n := range nodes {
		if !parent.Accepts(n) {
			return 0, fmt.Errorf("%s cannot contain %s", parent.Type, n.Type)
		}
	}
	idx := rp.Index(depth)
	parent.Content = spliceNodes(parent.Content, idx, 0, nodes)
	return pos + fragmentSize(nodes), nil
}

// fitBlocks wraps content so it can live directly inside parent: inline
// runs become a paragraph, blocks inside a list become list items.
func fitBlocks(parent *doctree.Node, nodes []*doctree.Node) []*doctree.Node {
	if doctree.AllInline(nodes) {
		nodes = []*doctree.Node{doctree.NewParagraph(nodes...)}
	}
	if doctree.SpecFor(parent).Content != doctree.ContentListItem {
		return nodes
	}
	out := make([]*doctree.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == doctree.TypeListItem {
			out = append(out, n)
			continue
		}
		out = append(out, &doctree.Node{Type: doctree.TypeListItem, Content: []*doctree.Node{n}})
	}
	return out
}

// insertInline splices inline nodes into a textblock at a content offset,
// splitting a text run if the offset falls inside one.
func insertInline(block *doctree.Node, offset int, nodes []*doctree.Node) (int, error) {
	if block.Type == doctree.TypeCodeBlock {
		var plain []*doctree.Node
		for _, n := range nodes {
			if !n.IsText() {
				return 0, fmt.Errorf("codeBlock only accepts text, got %s", n.Type)
			}
			plain = append(plain, doctree.NewText(n.Text))
		}
		nodes = plain
	}
	idx, err := splitInlineAt(block, offset)
	if err != nil {
		return 0, err
	}
	block.Content = spliceNodes(block.Content, idx, 0, nodes)
	return fragmentSize(nodes), nil
}

// splitInlineAt makes offset fall on a child boundary and returns the index
// of the child starting there.
func splitInlineAt(block *doctree.Node, offset int) (int, error) {
	cur := 0
	for i, c := range block.Content {
		if cur == offset {
			return i, nil
		}
		size := c.NodeSize()
		if offset < cur+size {
			if !c.IsText() {
				return 0, fmt.Errorf("offset %d falls inside %s", offset, c.Type)
			}
			runes := []rune(c.Text)
			cut := offset - cur
			left := &doctree.Node{Type: doctree.TypeText, Text: string(runes[:cut]), Marks: c.Marks}
			right := &doctree.Node{Type: doctree.TypeText, Text: string(runes[cut:]), Marks: cloneMarks(c.Marks)}
			block.Content = spliceNodes(block.Content, i, 1, []*doctree.Node{left, right})
			return i + 1, nil
		}
		cur += size
	}
	if cur != offset {
		return 0, fmt.Errorf("offset %d beyond content size %d", offset, cur)
	}
	return len(block.Content), nil
}

// splitAndInsert inserts block content at a position inside a textblock by
// splitting the textblock in two. Empty halves are dropped, so inserting
// into an empty paragraph replaces it.
func splitAndInsert(rp *doctree.ResolvedPos, nodes []*doctree.Node) (int, error) {
	depth := rp.Depth()
	block := rp.Parent()
	container := rp.Node(depth - 1)
	blockIdx := rp.Index(depth - 1)

	nodes = fitBlocks(container, nodes)
	for _, n := range nodes {
		if !container.Accepts(n) {
			return 0, fmt.Errorf("%s cannot contain %s", container.Type, n.Type)
		}
	}

	idx, err := splitInlineAt(block, rp.ParentOffset)
	if err != nil {
		return 0, err
	}
	left := &doctree.Node{Type: block.Type, Attrs: block.Attrs, Content: append([]*doctree.Node(nil), block.Content[:idx]...)}
	right := &doctree.Node{Type: block.Type, Attrs: cloneAttrs(block.Attrs), Content: append([]*doctree.Node(nil), block.Content[idx:]...)}

	var replacement []*doctree.Node
	insertStart := rp.Before(depth)
	if len(left.Content) > 0 {
		replacement = append(replacement, left)
		insertStart += left.NodeSize()
	}
	replacement = append(replacement, nodes...)
	if len(right.Content) > 0 {
		replacement = append(replacement, right)
	}
	container.Content = spliceNodes(container.Content, blockIdx, 1, replacement)
	return insertStart + fragmentSize(nodes), nil
}

func spliceNodes(list []*doctree.Node, at, remove int, insert []*doctree.Node) []*doctree.Node {
	out := make([]*doctree.Node, 0, len(list)-remove+len(insert))
	out = append(out, list[:at]...)
	out = append(out, insert...)
	out = append(out, list[at+remove:]...)
	return out
}

func fragmentSize(nodes []*doctree.Node) int {
	size := 0
	for _, n := range nodes {
		size += n.NodeSize()
	}
	return size
}

func cloneMarks(marks []doctree.Mark) []doctree.Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]doctree.Mark, len(marks))
	for i, m := range marks {
		out[i] = doctree.Mark{Type: m.Type, Attrs: cloneAttrs(m.Attrs)}
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

