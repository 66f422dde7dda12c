// Package chunker produces bounded, agent-sized views of a document: a
// structure outline, position-addressed chunk reads and node lookups.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docedit/internal/docpos"
	"github.com/dgallion1/docedit/internal/doctree"
)

// Limits bounds a single read.
type Limits struct {
	MaxChunkSize    int // positions per read
	MaxNodesPerRead int
	MaxCharsPerRead int
	ContextWindow   int // positions read before from when context is requested
}

// DefaultLimits returns the standard read limits.
func DefaultLimits() Limits {
	return Limits{
		MaxChunkSize:    docpos.MaxChunkSize,
		MaxNodesPerRead: docpos.MaxNodesPerRead,
		MaxCharsPerRead: docpos.MaxCharsPerRead,
		ContextWindow:   docpos.ContextWindow,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxChunkSize <= 0 {
		l.MaxChunkSize = d.MaxChunkSize
	}
	if l.MaxNodesPerRead <= 0 {
		l.MaxNodesPerRead = d.MaxNodesPerRead
	}
	if l.MaxCharsPerRead <= 0 {
		l.MaxCharsPerRead = d.MaxCharsPerRead
	}
	if l.ContextWindow < 0 {
		l.ContextWindow = d.ContextWindow
	}
	return l
}

// NodeInfo describes one node in a read.
type NodeInfo struct {
	Type          string         `json:"type"`
	Pos           int            `json:"pos"`
	Size          int            `json:"size"`
	Text          string         `json:"text,omitempty"`
	Level         int            `json:"level,omitempty"`
	Attrs         map[string]any `json:"attrs,omitempty"`
	ChildCount    int            `json:"childCount,omitempty"`
	TextInsertPos int            `json:"textInsertPos,omitempty"`
}

func describe(n *doctree.Node, pos int) NodeInfo {
	info := NodeInfo{
		Type:       n.Type,
		Pos:        pos,
		Size:       n.NodeSize(),
		Attrs:      n.Attrs,
		ChildCount: n.ChildCount(),
	}
	switch {
	case n.IsText():
		info.Text = n.Text
	case n.IsTextblock():
		info.Text = n.TextContent()
		info.TextInsertPos = pos + info.Size - 1
	}
	if n.Type == doctree.TypeHeading {
		info.Level = n.AttrInt("level", 1)
	}
	return info
}

// Heading is one entry of the document outline.
type Heading struct {
	Level         int    `json:"level"`
	Text          string `json:"text"`
	Pos           int    `json:"pos"`
	TextInsertPos int    `json:"textInsertPos"`
}

// Block is a top-level block of the outline.
type Block struct {
	Type          string `json:"type"`
	Pos           int    `json:"pos"`
	Size          int    `json:"size"`
	TextInsertPos int    `json:"textInsertPos,omitempty"`
}

// Structure is the outline returned to an agent before it reads anything.
type Structure struct {
	TotalSize            int       `json:"totalSize"`
	Headings             []Heading `json:"headings"`
	Blocks               []Block   `json:"blocks"`
	RecommendedChunkSize int       `json:"recommendedChunkSize"`
	MaxNodesPerRead      int       `json:"maxNodesPerRead"`
}

// ExtractStructure walks the document once and lists every heading and
// every top-level block.
func ExtractStructure(doc *doctree.Node, limits Limits) Structure {
	limits = limits.withDefaults()
	s := Structure{
		TotalSize:            doc.NodeSize(),
		Headings:             []Heading{},
		Blocks:               []Block{},
		RecommendedChunkSize: limits.MaxChunkSize,
		MaxNodesPerRead:      limits.MaxNodesPerRead,
	}
	doc.Descendants(func(n *doctree.Node, pos int, parent *doctree.Node, _ int) bool {
		size := n.NodeSize()
		if n.Type == doctree.TypeHeading {
			s.Headings = append(s.Headings, Heading{
				Level:         n.AttrInt("level", 1),
				Text:          n.TextContent(),
				Pos:           pos,
				TextInsertPos: pos + size - 1,
			})
		}
		if parent == doc {
			b := Block{Type: n.Type, Pos: pos, Size: size}
			if n.IsTextblock() {
				b.TextInsertPos = pos + size - 1
			}
			s.Blocks = append(s.Blocks, b)
		}
		return !n.IsTextblock()
	})
	return s
}

// ReadRequest selects a chunk to read.
type ReadRequest struct {
	From           int  `json:"from"`
	ChunkSize      int  `json:"chunkSize,omitempty"`
	IncludeContext bool `json:"includeContext,omitempty"`
}

// Chunk is the result of a read. HasMore reports whether the requested
// chunk ends before the document does; Truncated reports that the node or
// character budget cut the read short, in which case NextFrom is where the
// next read should start.
type Chunk struct {
	Nodes           []NodeInfo `json:"nodes"`
	Count           int        `json:"count"`
	From            int        `json:"from"`
	To              int        `json:"to"`
	CharCount       int        `json:"charCount"`
	HasMore         bool       `json:"hasMore"`
	Truncated       bool       `json:"truncated"`
	NextFrom        int        `json:"nextFrom"`
	EstimatedTokens int        `json:"estimatedTokens"`
}

// ReadChunk reads the nodes overlapping [from, from+chunkSize). Textblocks
// are reported whole with their text and are not descended into; other
// containers are reported and descended. The walk stops once the node cap
// or the character budget is reached, after including the node that
// reached it.
func ReadChunk(doc *doctree.Node, req ReadRequest, limits Limits) (Chunk, error) {
	limits = limits.withDefaults()
	docSize := doc.NodeSize()
	if err := docpos.ValidatePosition(req.From, docSize); err != nil {
		return Chunk{}, err
	}
	size := req.ChunkSize
	if size <= 0 || size > limits.MaxChunkSize {
		size = limits.MaxChunkSize
	}
	size = docpos.ChunkSizeWithin(req.From, docSize, size)
	to := req.From + size
	actualFrom := req.From
	if req.IncludeContext {
		actualFrom = max(0, req.From-limits.ContextWindow)
	}

	c := Chunk{Nodes: []NodeInfo{}, From: actualFrom, To: to, NextFrom: to}
	var text strings.Builder
	doc.NodesBetween(actualFrom, to, func(n *doctree.Node, pos int, _ *doctree.Node, _ int) bool {
		if c.Truncated {
			return false
		}
		info := describe(n, pos)
		c.Nodes = append(c.Nodes, info)
		if info.Text != "" {
			c.CharCount += utf8.RuneCountInString(info.Text)
			text.WriteString(info.Text)
			text.WriteByte('\n')
		}
		descend := !n.IsTextblock() && !n.IsLeaf()
		if len(c.Nodes) >= limits.MaxNodesPerRead || c.CharCount >= limits.MaxCharsPerRead {
			c.Truncated = true
			next := pos + info.Size
			if descend {
				next = pos + 1
			}
			c.NextFrom = min(max(next, req.From), to)
			return false
		}
		return descend
	})
	c.Count = len(c.Nodes)
	c.HasMore = to < docpos.MaxPos(docSize)
	c.EstimatedTokens = EstimateTokens(text.String())
	return c, nil
}

// NodeAt is the result of a position lookup: the innermost node containing
// the position, how deep it is, and its parent's type.
type NodeAt struct {
	Node         NodeInfo  `json:"node"`
	Depth        int       `json:"depth"`
	ParentType   string    `json:"parentType,omitempty"`
	ParentOffset int       `json:"parentOffset"`
	NodeAfter    *NodeInfo `json:"nodeAfter,omitempty"`
}

// NodeAtPosition resolves pos to the node containing it.
func NodeAtPosition(doc *doctree.Node, pos int) (NodeAt, error) {
	if err := docpos.ValidatePosition(pos, doc.NodeSize()); err != nil {
		return NodeAt{}, err
	}
	rp, err := doc.Resolve(pos)
	if err != nil {
		return NodeAt{}, err
	}
	depth := rp.Depth()
	res := NodeAt{
		Node:         describe(rp.Parent(), rp.Before(depth)),
		Depth:        depth,
		ParentOffset: rp.ParentOffset,
	}
	if depth > 0 {
		res.ParentType = rp.Node(depth - 1).Type
	}
	if after := rp.NodeAfter(); after != nil {
		info := describe(after, pos-rp.TextOffset())
		res.NodeAfter = &info
	}
	return res, nil
}
