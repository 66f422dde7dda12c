package editor

import (
	"fmt"

	"github.com/dgallion1/docedit/internal/doctree"
)

// deleteRange removes the document content between from and to. Nodes fully
// inside the range disappear; partially covered nodes are trimmed, and a node
// cut open at its end is joined with the following node cut open at its start.
func deleteRange(doc *doctree.Node, from, to int) error {
	size := doc.ContentSize()
	if from < 0 || to > size || from >= to {
		return fmt.Errorf("invalid range [%d, %d) for content size %d", from, to, size)
	}
	removeRange(doc, from, to)
	return checkColumns(doc)
}

// checkColumns rejects a deletion that removed columns out of a layout
// without removing the layout itself.
func checkColumns(doc *doctree.Node) error {
	var err error
	doc.Descendants(func(n *doctree.Node, pos int, _ *doctree.Node, _ int) bool {
		if err != nil {
			return false
		}
		if n.Type == doctree.TypeColumns && len(n.Content) < MinColumns {
			err = fmt.Errorf("deletion would leave the layout at %d with %d columns, minimum is %d", pos, len(n.Content), MinColumns)
		}
		return !n.IsTextblock()
	})
	return err
}

// cutSide records how a kept child was trimmed.
type cutSide int

const (
	cutNone  cutSide = 0
	cutEnd   cutSide = 1 // range started inside the child and ran past its end
	cutStart cutSide = 2 // range started before the child and ended inside it
)

func removeRange(n *doctree.Node, from, to int) {
	type kept struct {
		node *doctree.Node
		cut  cutSide
	}
	var out []kept
	pos := 0
	for _, child := range n.Content {
		size := child.NodeSize()
		start, end := pos, pos+size
		pos = end

		switch {
		case end <= from || start >= to:
			out = append(out, kept{node: child})
		case from <= start && end <= to:
			// fully covered: dropped
		case child.IsText():
			runes := []rune(child.Text)
			a := max(from-start, 0)
			b := min(to-start, size)
			text := string(runes[:a]) + string(runes[b:])
			if text != "" {
				out = append(out, kept{node: &doctree.Node{Type: doctree.TypeText, Text: text, Marks: child.Marks}})
			}
		case child.IsLeaf():
			out = append(out, kept{node: child})
		default:
			innerFrom := max(from-start-1, 0)
			innerTo := min(to-start-1, child.ContentSize())
			if innerFrom < innerTo {
				removeRange(child, innerFrom, innerTo)
			}
			side := cutNone
			if from > start && to >= end {
				side = cutEnd
			} else if from <= start && to < end {
				side = cutStart
			}
			out = append(out, kept{node: child, cut: side})
		}
	}

	content := make([]*doctree.Node, 0, len(out))
	for i := 0; i < len(out); i++ {
		cur := out[i]
		if cur.cut == cutEnd && i+1 < len(out) && out[i+1].cut == cutStart && joinable(cur.node, out[i+1].node) {
			cur.node.Content = append(cur.node.Content, out[i+1].node.Content...)
			i++
		}
		content = append(content, cur.node)
	}
	n.Content = content
}

func joinable(a, b *doctree.Node) bool {
	switch a.Type {
	case doctree.TypeColumn, doctree.TypeColumns:
		return false
	}
	if a.IsTextblock() && b.IsTextblock() {
		return a.Type != doctree.TypeCodeBlock || b.Type == doctree.TypeCodeBlock
	}
	return a.Type == b.Type
}
