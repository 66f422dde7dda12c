package editor

import "github.com/dgallion1/docedit/internal/doctree"

// normalize restores the structural rules the commands rely on after a
// mutation: adjacent text runs with equal marks are merged, containers that
// require content get an empty paragraph, emptied lists and column sets are
// removed, and column attributes are recomputed.
func normalize(n *doctree.Node) {
	if n.IsText() || n.IsLeaf() {
		return
	}
	content := make([]*doctree.Node, 0, len(n.Content))
	for _, c := range n.Content {
		if c.IsText() {
			if c.Text == "" {
				continue
			}
			if k := len(content); k > 0 && content[k-1].IsText() && doctree.SameMarks(content[k-1].Marks, c.Marks) {
				content[k-1] = &doctree.Node{Type: doctree.TypeText, Text: content[k-1].Text + c.Text, Marks: content[k-1].Marks}
				continue
			}
			content = append(content, c)
			continue
		}
		normalize(c)
		switch c.Type {
		case doctree.TypeBulletList, doctree.TypeOrderedList, doctree.TypeColumns:
			if len(c.Content) == 0 {
				continue
			}
		}
		content = append(content, c)
	}
	n.Content = content

	switch n.Type {
	case doctree.TypeDoc, doctree.TypeListItem, doctree.TypeColumn, doctree.TypeBlockquote:
		if len(n.Content) == 0 {
			n.Content = []*doctree.Node{doctree.NewParagraph()}
		}
	case doctree.TypeColumns:
		reindexColumns(n)
	}
}

// reindexColumns makes the count and layout attributes of a columns node and
// its children agree with the actual children.
func reindexColumns(n *doctree.Node) {
	cols := len(n.Content)
	layout := n.AttrString("type", LayoutNone)
	n.SetAttr("cols", cols)
	n.SetAttr("type", layout)
	for i, c := range n.Content {
		c.SetAttr("index", i)
		c.SetAttr("type", layout)
		c.SetAttr("cols", cols)
	}
}
