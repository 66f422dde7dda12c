package doctree

import "fmt"

// VisitFunc is called for each node during a traversal with the node's
// absolute position, its parent and its index in the parent. Returning
// false skips the node's children.
type VisitFunc func(n *Node, pos int, parent *Node, index int) bool

// Descendants visits every node below n in document order.
func (n *Node) Descendants(f VisitFunc) {
	n.NodesBetween(0, n.ContentSize(), f)
}

// NodesBetween visits every node overlapping the content range [from, to).
func (n *Node) NodesBetween(from, to int, f VisitFunc) {
	n.nodesBetween(from, to, f, 0)
}

func (n *Node) nodesBetween(from, to int, f VisitFunc, nodeStart int) {
	pos := 0
	for i, child := range n.Content {
		if pos >= to {
			break
		}
		end := pos + child.NodeSize()
		if end > from && f(child, nodeStart+pos, n, i) && len(child.Content) > 0 {
			start := pos + 1
			child.nodesBetween(max(0, from-start), min(child.ContentSize(), to-start), f, nodeStart+start)
		}
		pos = end
	}
}

// ChildOffset returns the content offset at which child i starts.
func (n *Node) ChildOffset(i int) int {
	off := 0
	for j := 0; j < i && j < len(n.Content); j++ {
		off += n.Content[j].NodeSize()
	}
	return off
}

// findIndex maps a content offset to the child index it falls in, and the
// offset where that child starts. Offsets on a boundary resolve to the
// child that follows.
func (n *Node) findIndex(pos int) (int, int) {
	if pos == 0 {
		return 0, 0
	}
	if pos == n.ContentSize() {
		return len(n.Content), pos
	}
	cur := 0
	for i, c := range n.Content {
		end := cur + c.NodeSize()
		if end >= pos {
			if end == pos {
				return i + 1, end
			}
			return i, cur
		}
		cur = end
	}
	return len(n.Content), cur
}

type pathEntry struct {
	node   *Node
	index  int
	offset int // absolute position of the child at index
}

// ResolvedPos is a position with its full ancestor path.
type ResolvedPos struct {
	Pos          int
	ParentOffset int
	path         []pathEntry
}

// Resolve walks from the root to the deepest node containing pos.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > n.ContentSize() {
		return nil, fmt.Errorf("position %d out of range [0, %d]", pos, n.ContentSize())
	}
	var path []pathEntry
	start := 0
	parentOffset := pos
	node := n
	for {
		index, offset := node.findIndex(parentOffset)
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		child := node.Content[index]
		if child.IsText() || child.IsLeaf() {
			break
		}
		node = child
		parentOffset = rem - 1
		start += offset + 1
	}
	return &ResolvedPos{Pos: pos, ParentOffset: parentOffset, path: path}, nil
}

// Depth is the number of ancestors between the root and the parent.
func (r *ResolvedPos) Depth() int { return len(r.path) - 1 }

// Node returns the ancestor at depth d (0 is the root).
func (r *ResolvedPos) Node(d int) *Node { return r.path[d].node }

// Parent returns the innermost node containing the position.
func (r *ResolvedPos) Parent() *Node { return r.path[len(r.path)-1].node }

// Index returns the child index at depth d.
func (r *ResolvedPos) Index(d int) int { return r.path[d].index }

// Start returns the absolute position where the content of the depth-d
// ancestor begins.
func (r *ResolvedPos) Start(d int) int {
	if d == 0 {
		return 0
	}
	return r.path[d-1].offset + 1
}

// Before returns the position directly before the depth-d ancestor.
func (r *ResolvedPos) Before(d int) int {
	if d == 0 {
		return 0
	}
	return r.path[d-1].offset
}

// End returns the absolute position where the content of the depth-d
// ancestor ends.
func (r *ResolvedPos) End(d int) int {
	return r.Start(d) + r.Node(d).ContentSize()
}

// TextOffset is the offset into the text node the position points into.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[len(r.path)-1].offset
}

// NodeAfter returns the node directly after the position, if any.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	idx := r.Index(r.Depth())
	if idx >= len(parent.Content) {
		return nil
	}
	return parent.Content[idx]
}

// NodeBefore returns the node directly before the position, if any.
func (r *ResolvedPos) NodeBefore() *Node {
	parent := r.Parent()
	idx := r.Index(r.Depth())
	if r.TextOffset() > 0 {
		return parent.Content[idx]
	}
	if idx == 0 {
		return nil
	}
	return parent.Content[idx-1]
}

// Ancestor returns the innermost ancestor of the given type and its depth.
func (r *ResolvedPos) Ancestor(nodeType string) (*Node, int, bool) {
	for d := r.Depth(); d >= 0; d-- {
		if r.Node(d).Type == nodeType {
			return r.Node(d), d, true
		}
	}
	return nil, 0, false
}

// NodeAt returns the node that starts exactly at pos.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset := node.findIndex(pos)
		if index >= len(node.Content) {
			return nil
		}
		child := node.Content[index]
		if offset == pos || child.IsText() {
			return child
		}
		pos -= offset + 1
		node = child
	}
}
