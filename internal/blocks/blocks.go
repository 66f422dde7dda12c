// Package blocks enumerates the block-level nodes of a document with their
// position spans and a short text preview.
package blocks

import (
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
)

// PreviewLen is the number of runes kept in a block's preview text.
const PreviewLen = 80

// Block is one block-level node and where it sits in the document.
type Block struct {
	Index        int    `json:"index"`
	Pos          int    `json:"pos"`
	Size         int    `json:"size"`
	Type         string `json:"type"`
	Text         string `json:"text"`
	ContentStart int    `json:"contentStart"`
	ContentEnd   int    `json:"contentEnd"`
	Level        int    `json:"level,omitempty"`
	Depth        int    `json:"depth"`
	Textblock    bool   `json:"textblock"`
}

// End is the position right after the block's close token.
func (b Block) End() int { return b.Pos + b.Size }

// Discover lists every block node below the root in document order.
func Discover(doc *doctree.Node) []Block {
	var out []Block
	walk(doc, 0, 1, &out)
	return out
}

func walk(n *doctree.Node, contentStart, depth int, out *[]Block) {
	pos := contentStart
	for _, c := range n.Content {
		size := c.NodeSize()
		if c.IsBlock() {
			b := Block{
				Index:        len(*out),
				Pos:          pos,
				Size:         size,
				Type:         c.Type,
				Text:         Preview(c.TextContent()),
				ContentStart: pos,
				ContentEnd:   pos + size,
				Depth:        depth,
			}
			if c.IsTextblock() {
				b.Textblock = true
				b.ContentStart = pos + 1
				b.ContentEnd = pos + size - 1
			}
			if c.Type == doctree.TypeHeading {
				b.Level = c.AttrInt("level", 1)
			}
			*out = append(*out, b)
			if !c.IsTextblock() && !c.IsLeaf() {
				walk(c, pos+1, depth+1, out)
			}
		}
		pos += size
	}
}

// Preview truncates text to PreviewLen runes, marking the cut with an ellipsis.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLen {
		return text
	}
	return string(runes[:PreviewLen]) + "…"
}

// FindByText returns the occurrence-th block (1-indexed) whose preview
// contains text, ignoring case.
func FindByText(list []Block, text string, occurrence int) (Block, bool) {
	return find(list, text, occurrence, func(Block) bool { return true })
}

// FindByHeading is FindByText restricted to headings.
func FindByHeading(list []Block, text string, occurrence int) (Block, bool) {
	return find(list, text, occurrence, func(b Block) bool { return b.Type == doctree.TypeHeading })
}

func find(list []Block, text string, occurrence int, keep func(Block) bool) (Block, bool) {
	if text == "" {
		return Block{}, false
	}
	if occurrence < 1 {
		occurrence = 1
	}
	needle := strings.ToLower(text)
	seen := 0
	for _, b := range list {
		if !keep(b) || !strings.Contains(strings.ToLower(b.Text), needle) {
			continue
		}
		seen++
		if seen == occurrence {
			return b, true
		}
	}
	return Block{}, false
}

// Textblocks keeps only blocks whose content is inline text.
func Textblocks(list []Block) []Block {
	var out []Block
	for _, b := range list {
		if b.Textblock {
			out = append(out, b)
		}
	}
	return out
}

// TopLevel keeps only the direct children of the root.
func TopLevel(list []Block) []Block {
	var out []Block
	for _, b := range list {
		if b.Depth == 1 {
			out = append(out, b)
		}
	}
	return out
}

// Containing returns the innermost block whose span holds pos.
func Containing(list []Block, pos int) (Block, bool) {
	var best Block
	found := false
	for _, b := range list {
		if b.Pos <= pos && pos < b.End() && (!found || b.Depth > best.Depth) {
			best, found = b, true
		}
	}
	return best, found
}
