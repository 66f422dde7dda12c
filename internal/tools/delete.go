package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/docedit/internal/blocks"
	"github.com/dgallion1/docedit/internal/docpos"
	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/search"
)

// deleteSpan removes [from, to) in one transaction. A deletion that leaves
// the document size unchanged is reported as an error.
func deleteSpan(ed editor.Editor, op string, from, to int) (DeleteResult, error) {
	delta, err := mutate(ed, func(c editor.Chain) editor.Chain {
		return c.DeleteRange(from, to)
	})
	if err != nil {
		return DeleteResult{}, commandFailed(op, from, to, err)
	}
	if delta >= 0 {
		return DeleteResult{}, fmt.Errorf("%s [%d, %d): %w", op, from, to, ErrNothingChanged)
	}
	return DeleteResult{Success: true, DeletedFrom: from, DeletedTo: to, DeletedSize: -delta}, nil
}

func deleteTools() []Tool {
	return []Tool{
		{
			Name:        "deleteRange",
			Description: "Delete everything between two positions.",
			Category:    CategoryDelete,
			Mutates:     true,
			Schema: object([]string{"from", "to"}, map[string]Property{
				"from": intProp("Start position (inclusive)"),
				"to":   intProp("End position (exclusive)"),
			}),
			Handler: handleDeleteRange,
		},
		{
			Name:        "deleteBySearch",
			Description: "Delete the Nth occurrence of a text, or the whole block containing it.",
			Category:    CategoryDelete,
			Mutates:     true,
			Schema: object([]string{"searchText"}, map[string]Property{
				"searchText":    strProp("Text to find"),
				"occurrence":    intProp("Which occurrence to delete (1-based)"),
				"deleteMode":    enumProp("Delete only the text or its enclosing block", "text", "block"),
				"caseSensitive": boolProp("Match case exactly"),
			}),
			Handler: handleDeleteBySearch,
		},
		{
			Name:        "deleteBlock",
			Description: "Delete a block, including its structure, by its index from block discovery (0-based).",
			Category:    CategoryDelete,
			Mutates:     true,
			Schema: object([]string{"blockIndex"}, map[string]Property{
				"blockIndex": intProp("Block index"),
			}),
			Handler: handleDeleteBlock,
		},
	}
}

func handleDeleteRange(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := docpos.ValidateRange(in.From, in.To, ed.Doc().NodeSize()); err != nil {
		return nil, err
	}
	return deleteSpan(ed, "deleteRange", in.From, in.To)
}

func handleDeleteBySearch(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		SearchText    string `json:"searchText"`
		Occurrence    *int   `json:"occurrence"`
		DeleteMode    string `json:"deleteMode"`
		CaseSensitive bool   `json:"caseSensitive"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.SearchText == "" {
		return nil, invalidf("searchText must not be empty")
	}
	if in.DeleteMode != "" && in.DeleteMode != "text" && in.DeleteMode != "block" {
		return nil, invalidf("deleteMode must be text or block, got %q", in.DeleteMode)
	}
	n, err := occurrenceOr(in.Occurrence)
	if err != nil {
		return nil, err
	}
	doc := ed.Doc()
	m, ok := search.Nth(doc, in.SearchText, n, in.CaseSensitive)
	if !ok {
		return nil, notFoundf("occurrence %d of %q", n, in.SearchText)
	}

	from, to, text := m.From, m.To, m.Text
	if in.DeleteMode == "block" {
		from, to = blockSpan(doc, m.BlockPos, m.BlockSize)
		if block := doc.NodeAt(m.BlockPos); block != nil {
			text = block.TextContent()
		}
	}
	if err := docpos.ValidateRange(from, to, doc.NodeSize()); err != nil {
		return nil, err
	}
	res, err := deleteSpan(ed, "deleteBySearch", from, to)
	if err != nil {
		return nil, err
	}
	res.DeletedText = text
	res.Context = m.Context
	return res, nil
}

func handleDeleteBlock(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		BlockIndex int `json:"blockIndex"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	doc := ed.Doc()
	list := blocks.Discover(doc)
	if in.BlockIndex < 0 || in.BlockIndex >= len(list) {
		return nil, invalidf("blockIndex %d out of range [0, %d)", in.BlockIndex, len(list))
	}
	b := list[in.BlockIndex]
	if b.Type == doctree.TypeColumn {
		return nil, invalidf("block %d is a column; use deleteColumn to remove a column or deleteColumnsLayout to remove the layout", in.BlockIndex)
	}
	if err := docpos.ValidateRange(b.Pos, b.End(), doc.NodeSize()); err != nil {
		return nil, err
	}
	res, err := deleteSpan(ed, "deleteBlock", b.Pos, b.End())
	if err != nil {
		return nil, err
	}
	res.DeletedText = b.Text
	res.RemainingBlocks = intPtr(len(blocks.Discover(ed.Doc())))
	return res, nil
}

// blockSpan widens the span of a textblock to the list item holding only
// that textblock, and further to the list when the item is its only one,
// so deleting the block leaves no empty bullet behind.
func blockSpan(doc *doctree.Node, pos, size int) (int, int) {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return pos, pos + size
	}
	d := rp.Depth()
	item := rp.Node(d)
	if item.Type != doctree.TypeListItem || len(item.Content) != 1 {
		return pos, pos + size
	}
	if list := rp.Node(d - 1); len(list.Content) == 1 {
		return rp.Before(d - 1), rp.Before(d-1) + list.NodeSize()
	}
	return rp.Before(d), rp.Before(d) + item.NodeSize()
}
