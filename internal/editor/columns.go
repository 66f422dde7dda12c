package editor

import (
	"fmt"

	"github.com/dgallion1/docedit/internal/doctree"
)

// Column layouts. The layout weights column widths; it never changes the
// column count.
const (
	LayoutNone   = "none"
	LayoutLeft   = "left"
	LayoutRight  = "right"
	LayoutCenter = "center"
)

// ValidLayout reports whether layout is one of the known layouts.
func ValidLayout(layout string) bool {
	switch layout {
	case LayoutNone, LayoutLeft, LayoutRight, LayoutCenter:
		return true
	}
	return false
}

// NewColumns builds a columns node with cols column children. contents[i],
// when present and non-empty, becomes the content of column i; other
// columns hold an empty paragraph.
func NewColumns(cols int, layout string, contents [][]*doctree.Node) *doctree.Node {
	if layout == "" {
		layout = LayoutNone
	}
	n := &doctree.Node{Type: doctree.TypeColumns, Attrs: map[string]any{"cols": cols, "type": layout}}
	for i := 0; i < cols; i++ {
		var blocks []*doctree.Node
		if i < len(contents) && len(contents[i]) > 0 {
			blocks = doctree.CloneAll(contents[i])
		} else {
			blocks = []*doctree.Node{doctree.NewParagraph()}
		}
		n.Content = append(n.Content, &doctree.Node{Type: doctree.TypeColumn, Content: blocks})
	}
	reindexColumns(n)
	return n
}

// columnAtHead finds the innermost column containing the selection head and
// returns it with its columns parent, its index and the resolved head.
func columnAtHead(s *state) (*doctree.Node, int, *doctree.ResolvedPos, int, error) {
	rp, err := s.doc.Resolve(s.sel.Head)
	if err != nil {
		return nil, 0, nil, 0, err
	}
	for d := rp.Depth(); d >= 1; d-- {
		if rp.Node(d).Type == doctree.TypeColumn && rp.Node(d-1).Type == doctree.TypeColumns {
			return rp.Node(d - 1), rp.Index(d - 1), rp, d - 1, nil
		}
	}
	return nil, 0, nil, 0, fmt.Errorf("selection at %d is not inside a column", s.sel.Head)
}

func addColumn(s *state) error {
	columns, idx, _, _, err := columnAtHead(s)
	if err != nil {
		return err
	}
	if len(columns.Content) >= MaxColumns {
		return fmt.Errorf("layout already has %d columns", MaxColumns)
	}
	col := &doctree.Node{Type: doctree.TypeColumn, Content: []*doctree.Node{doctree.NewParagraph()}}
	columns.Content = spliceNodes(columns.Content, idx+1, 0, []*doctree.Node{col})
	reindexColumns(columns)
	return nil
}

func deleteColumn(s *state) error {
	columns, idx, rp, depth, err := columnAtHead(s)
	if err != nil {
		return err
	}
	if len(columns.Content) <= MinColumns {
		return fmt.Errorf("layout needs at least %d columns", MinColumns)
	}
	columns.Content = spliceNodes(columns.Content, idx, 1, nil)
	reindexColumns(columns)
	pos := rp.Before(depth)
	s.sel = Selection{Anchor: pos, Head: pos}
	return nil
}
