package editor

import (
	"fmt"

	"github.com/dgallion1/docedit/internal/doctree"
)

// state is the working copy a chain mutates before commit.
type state struct {
	doc     *doctree.Node
	sel     Selection
	focused bool
}

type step struct {
	name  string
	apply func(s *state) error
}

type chain struct {
	doc   *Document
	steps []step
}

func (c *chain) add(name string, apply func(s *state) error) Chain {
	c.steps = append(c.steps, step{name: name, apply: apply})
	return c
}

func (c *chain) Focus() Chain {
	return c.add("focus", func(s *state) error {
		s.focused = true
		return nil
	})
}

func (c *chain) SetTextSelection(pos int) Chain {
	return c.add("setTextSelection", func(s *state) error {
		if pos < 0 || pos > s.doc.ContentSize() {
			return fmt.Errorf("position %d outside [0, %d]", pos, s.doc.ContentSize())
		}
		s.sel = Selection{Anchor: pos, Head: pos}
		return nil
	})
}

func (c *chain) InsertContentAt(pos int, nodes ...*doctree.Node) Chain {
	nodes = doctree.CloneAll(nodes)
	return c.add("insertContentAt", func(s *state) error {
		end, err := insertAt(s.doc, pos, nodes)
		if err != nil {
			return err
		}
		s.sel = Selection{Anchor: end, Head: end}
		return nil
	})
}

func (c *chain) InsertContent(nodes ...*doctree.Node) Chain {
	nodes = doctree.CloneAll(nodes)
	return c.add("insertContent", func(s *state) error {
		from, to := s.sel.Anchor, s.sel.Head
		if from > to {
			from, to = to, from
		}
		if from != to {
			if err := deleteRange(s.doc, from, to); err != nil {
				return err
			}
		}
		end, err := insertAt(s.doc, from, nodes)
		if err != nil {
			return err
		}
		s.sel = Selection{Anchor: end, Head: end}
		return nil
	})
}

func (c *chain) DeleteRange(from, to int) Chain {
	return c.add("deleteRange", func(s *state) error {
		if err := deleteRange(s.doc, from, to); err != nil {
			return err
		}
		s.sel = Selection{Anchor: from, Head: from}
		return nil
	})
}

func (c *chain) UpdateAttributes(pos int, attrs map[string]any) Chain {
	return c.add("updateAttributes", func(s *state) error {
		n := s.doc.NodeAt(pos)
		if n == nil || n.IsText() {
			return fmt.Errorf("no node starts at position %d", pos)
		}
		for k, v := range attrs {
			n.SetAttr(k, v)
		}
		if n.Type == doctree.TypeColumns {
			reindexColumns(n)
		}
		return nil
	})
}

func (c *chain) SetColumns(cols int, layout string) Chain {
	return c.add("setColumns", func(s *state) error {
		if cols < MinColumns || cols > MaxColumns {
			return fmt.Errorf("column count %d outside [%d, %d]", cols, MinColumns, MaxColumns)
		}
		node := NewColumns(cols, layout, nil)
		end, err := insertAt(s.doc, s.sel.Head, []*doctree.Node{node})
		if err != nil {
			return err
		}
		s.sel = Selection{Anchor: end, Head: end}
		return nil
	})
}

func (c *chain) AddColumn() Chain {
	return c.add("addColumn", func(s *state) error { return addColumn(s) })
}

func (c *chain) DeleteColumn() Chain {
	return c.add("deleteColumn", func(s *state) error { return deleteColumn(s) })
}

// Run applies every step to a copy of the document and commits only if all
// of them succeed.
func (c *chain) Run() error {
	d := c.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	s := &state{doc: d.doc.Clone(), sel: d.sel, focused: d.focused}
	for _, st := range c.steps {
		if err := st.apply(s); err != nil {
			return &CommandError{Command: st.name, Reason: err.Error()}
		}
		normalize(s.doc)
		s.sel = clampSelection(s.sel, s.doc.ContentSize())
	}
	d.doc = s.doc
	d.sel = s.sel
	d.focused = s.focused
	d.version++
	return nil
}

func clampSelection(sel Selection, size int) Selection {
	clamp := func(p int) int { return max(0, min(p, size)) }
	return Selection{Anchor: clamp(sel.Anchor), Head: clamp(sel.Head)}
}
