package tools

import (
	"context"
	"encoding/json"

	"github.com/dgallion1/docedit/internal/blocks"
	"github.com/dgallion1/docedit/internal/docpos"
	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/markdown"
)

// ColumnInfo describes one column of a layout.
type ColumnInfo struct {
	Index int    `json:"index"`
	Pos   int    `json:"pos"`
	Size  int    `json:"size"`
	Text  string `json:"text"`
}

// ColumnsInfo describes one columns layout.
type ColumnsInfo struct {
	ColumnsIndex int          `json:"columnsIndex"`
	Pos          int          `json:"pos"`
	Size         int          `json:"size"`
	Cols         int          `json:"cols"`
	Layout       string       `json:"layout"`
	Columns      []ColumnInfo `json:"columns"`
}

// ColumnsResult reports a change to a columns layout.
type ColumnsResult struct {
	Success      bool   `json:"success"`
	ColumnsIndex int    `json:"columnsIndex"`
	ColumnIndex  *int   `json:"columnIndex,omitempty"`
	Cols         int    `json:"cols"`
	Layout       string `json:"layout,omitempty"`
	Pos          int    `json:"pos"`
	SizeDelta    int    `json:"sizeDelta"`
}

type columnsRef struct {
	node *doctree.Node
	pos  int
}

// columnPos is the position of column i, found by summing the sizes of the
// columns before it from the layout's content start.
func (r columnsRef) columnPos(i int) int {
	return r.pos + 1 + r.node.ChildOffset(i)
}

func allColumns(doc *doctree.Node) []columnsRef {
	var out []columnsRef
	doc.Descendants(func(n *doctree.Node, pos int, _ *doctree.Node, _ int) bool {
		if n.Type == doctree.TypeColumns {
			out = append(out, columnsRef{node: n, pos: pos})
		}
		return !n.IsTextblock()
	})
	return out
}

func findColumns(doc *doctree.Node, index int) (columnsRef, error) {
	all := allColumns(doc)
	if index < 0 || index >= len(all) {
		if len(all) == 0 {
			return columnsRef{}, notFoundf("document has no columns layout")
		}
		return columnsRef{}, invalidf("columnsIndex %d out of range [0, %d)", index, len(all))
	}
	return all[index], nil
}

func describeColumns(index int, r columnsRef) ColumnsInfo {
	info := ColumnsInfo{
		ColumnsIndex: index,
		Pos:          r.pos,
		Size:         r.node.NodeSize(),
		Cols:         len(r.node.Content),
		Layout:       r.node.AttrString("type", editor.LayoutNone),
		Columns:      make([]ColumnInfo, 0, len(r.node.Content)),
	}
	for i, col := range r.node.Content {
		info.Columns = append(info.Columns, ColumnInfo{
			Index: i,
			Pos:   r.columnPos(i),
			Size:  col.NodeSize(),
			Text:  blocks.Preview(col.TextContent()),
		})
	}
	return info
}

func columnsTools() []Tool {
	layouts := []string{editor.LayoutNone, editor.LayoutLeft, editor.LayoutRight, editor.LayoutCenter}
	return []Tool{
		{
			Name:        "insertColumns",
			Description: "Insert a multi-column layout at a position or at the cursor. Column count is clamped to 2-6.",
			Category:    CategoryColumns,
			Mutates:     true,
			Schema: object([]string{"cols"}, map[string]Property{
				"cols":     rangeProp("Number of columns", editor.MinColumns, editor.MaxColumns),
				"layout":   enumProp("Column width weighting", layouts...),
				"position": intProp("Insert position; defaults to the cursor"),
				"contents": {Type: "array", Description: "Markdown for each column", Items: &Property{Type: "string"}},
			}),
			Handler: handleInsertColumns,
		},
		{
			Name:        "getColumnsInfo",
			Description: "List the columns layouts in the document with the position and preview of every column.",
			Category:    CategoryColumns,
			Schema: object(nil, map[string]Property{
				"columnsIndex": intProp("Only describe this layout (0-based)"),
			}),
			Handler: handleGetColumnsInfo,
		},
		{
			Name:        "updateColumnContent",
			Description: "Replace the content of one column with markdown.",
			Category:    CategoryColumns,
			Mutates:     true,
			Schema: object([]string{"columnsIndex", "columnIndex", "content"}, map[string]Property{
				"columnsIndex": intProp("Layout index (0-based)"),
				"columnIndex":  intProp("Column index within the layout (0-based)"),
				"content":      strProp("Markdown for the column"),
			}),
			Handler: handleUpdateColumnContent,
		},
		{
			Name:        "setColumnsLayout",
			Description: "Change the width weighting of a columns layout. The column count is not changed.",
			Category:    CategoryColumns,
			Mutates:     true,
			Schema: object([]string{"columnsIndex", "layout"}, map[string]Property{
				"columnsIndex": intProp("Layout index (0-based)"),
				"layout":       enumProp("Column width weighting", layouts...),
			}),
			Handler: handleSetColumnsLayout,
		},
		{
			Name:        "addColumnToLayout",
			Description: "Add an empty column after the given column (default: the last one). At most 6 columns.",
			Category:    CategoryColumns,
			Mutates:     true,
			Schema: object([]string{"columnsIndex"}, map[string]Property{
				"columnsIndex": intProp("Layout index (0-based)"),
				"afterColumn":  intProp("Column index to add after (0-based)"),
			}),
			Handler: handleAddColumn,
		},
		{
			Name:        "deleteColumn",
			Description: "Delete one column and its content. At least 2 columns remain.",
			Category:    CategoryColumns,
			Mutates:     true,
			Schema: object([]string{"columnsIndex", "columnIndex"}, map[string]Property{
				"columnsIndex": intProp("Layout index (0-based)"),
				"columnIndex":  intProp("Column index within the layout (0-based)"),
			}),
			Handler: handleDeleteColumn,
		},
		{
			Name:        "deleteColumnsLayout",
			Description: "Remove a columns layout, optionally keeping its content as regular blocks.",
			Category:    CategoryColumns,
			Mutates:     true,
			Schema: object([]string{"columnsIndex"}, map[string]Property{
				"columnsIndex": intProp("Layout index (0-based)"),
				"keepContent":  boolProp("Move the columns' blocks out of the layout"),
			}),
			Handler: handleDeleteColumnsLayout,
		},
	}
}

func clampColumns(n int) int {
	return max(editor.MinColumns, min(n, editor.MaxColumns))
}

func layoutOr(layout string) (string, error) {
	if layout == "" {
		return editor.LayoutNone, nil
	}
	if !editor.ValidLayout(layout) {
		return "", invalidf("layout must be none, left, right or center, got %q", layout)
	}
	return layout, nil
}

func handleInsertColumns(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		Cols     int      `json:"cols"`
		Layout   string   `json:"layout"`
		Position *int     `json:"position"`
		Contents []string `json:"contents"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	cols := clampColumns(in.Cols)
	layout, err := layoutOr(in.Layout)
	if err != nil {
		return nil, err
	}
	var contents [][]*doctree.Node
	for _, md := range in.Contents {
		contents = append(contents, markdown.ParseToNodes(md))
	}

	doc := ed.Doc()
	var at int
	var delta int
	switch {
	case in.Position != nil:
		at = *in.Position
		if err := docpos.ValidatePosition(at, doc.NodeSize()); err != nil {
			return nil, err
		}
		node := editor.NewColumns(cols, layout, contents)
		delta, err = mutate(ed, func(c editor.Chain) editor.Chain { return c.InsertContentAt(at, node) })
	case len(contents) > 0:
		at = ed.Selection().Head
		node := editor.NewColumns(cols, layout, contents)
		delta, err = mutate(ed, func(c editor.Chain) editor.Chain { return c.Focus().InsertContentAt(at, node) })
	default:
		at = ed.Selection().Head
		delta, err = mutate(ed, func(c editor.Chain) editor.Chain { return c.Focus().SetColumns(cols, layout) })
	}
	if err != nil {
		return nil, commandFailed("insertColumns", at, -1, err)
	}

	res := ColumnsResult{Success: true, Cols: cols, Layout: layout, Pos: at, SizeDelta: delta}
	for i, r := range allColumns(ed.Doc()) {
		if r.pos >= at {
			res.ColumnsIndex = i
			res.Pos = r.pos
			break
		}
	}
	return res, nil
}

func handleGetColumnsInfo(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		ColumnsIndex *int `json:"columnsIndex"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	doc := ed.Doc()
	if in.ColumnsIndex != nil {
		r, err := findColumns(doc, *in.ColumnsIndex)
		if err != nil {
			return nil, err
		}
		return describeColumns(*in.ColumnsIndex, r), nil
	}
	all := allColumns(doc)
	out := struct {
		Count   int           `json:"count"`
		Layouts []ColumnsInfo `json:"layouts"`
	}{Count: len(all), Layouts: make([]ColumnsInfo, 0, len(all))}
	for i, r := range all {
		out.Layouts = append(out.Layouts, describeColumns(i, r))
	}
	return out, nil
}

// columnArgs selects one column of one layout.
type columnArgs struct {
	ColumnsIndex int `json:"columnsIndex"`
	ColumnIndex  int `json:"columnIndex"`
}

func (a columnArgs) resolve(doc *doctree.Node) (columnsRef, error) {
	r, err := findColumns(doc, a.ColumnsIndex)
	if err != nil {
		return columnsRef{}, err
	}
	if a.ColumnIndex < 0 || a.ColumnIndex >= len(r.node.Content) {
		return columnsRef{}, invalidf("columnIndex %d out of range [0, %d)", a.ColumnIndex, len(r.node.Content))
	}
	return r, nil
}

func handleUpdateColumnContent(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		columnArgs
		Content string `json:"content"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	r, err := in.resolve(ed.Doc())
	if err != nil {
		return nil, err
	}
	colPos := r.columnPos(in.ColumnIndex)
	from := colPos + 1
	to := from + r.node.Content[in.ColumnIndex].ContentSize()
	nodes := markdown.ParseToNodes(in.Content)

	// Emptying the column leaves one empty paragraph at from; inserting
	// inside it replaces it.
	delta, err := mutate(ed, func(c editor.Chain) editor.Chain {
		return c.DeleteRange(from, to).InsertContentAt(from+1, nodes...)
	})
	if err != nil {
		return nil, commandFailed("updateColumnContent", from, to, err)
	}
	return ColumnsResult{
		Success:      true,
		ColumnsIndex: in.ColumnsIndex,
		ColumnIndex:  intPtr(in.ColumnIndex),
		Cols:         len(r.node.Content),
		Pos:          colPos,
		SizeDelta:    delta,
	}, nil
}

func handleSetColumnsLayout(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		ColumnsIndex int    `json:"columnsIndex"`
		Layout       string `json:"layout"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if !editor.ValidLayout(in.Layout) {
		return nil, invalidf("layout must be none, left, right or center, got %q", in.Layout)
	}
	r, err := findColumns(ed.Doc(), in.ColumnsIndex)
	if err != nil {
		return nil, err
	}
	_, err = mutate(ed, func(c editor.Chain) editor.Chain {
		return c.UpdateAttributes(r.pos, map[string]any{"type": in.Layout})
	})
	if err != nil {
		return nil, commandFailed("setColumnsLayout", r.pos, -1, err)
	}
	return ColumnsResult{
		Success:      true,
		ColumnsIndex: in.ColumnsIndex,
		Cols:         len(r.node.Content),
		Layout:       in.Layout,
		Pos:          r.pos,
	}, nil
}

func handleAddColumn(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		ColumnsIndex int  `json:"columnsIndex"`
		AfterColumn  *int `json:"afterColumn"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	r, err := findColumns(ed.Doc(), in.ColumnsIndex)
	if err != nil {
		return nil, err
	}
	cols := len(r.node.Content)
	if cols >= editor.MaxColumns {
		return nil, invalidf("layout already has the maximum of %d columns", editor.MaxColumns)
	}
	after := cols - 1
	if in.AfterColumn != nil {
		after = *in.AfterColumn
	}
	if after < 0 || after >= cols {
		return nil, invalidf("afterColumn %d out of range [0, %d)", after, cols)
	}
	cursor := r.columnPos(after) + 1
	delta, err := mutate(ed, func(c editor.Chain) editor.Chain {
		return c.Focus().SetTextSelection(cursor).AddColumn()
	})
	if err != nil {
		return nil, commandFailed("addColumnToLayout", cursor, -1, err)
	}
	return ColumnsResult{
		Success:      true,
		ColumnsIndex: in.ColumnsIndex,
		ColumnIndex:  intPtr(after + 1),
		Cols:         cols + 1,
		Pos:          r.pos,
		SizeDelta:    delta,
	}, nil
}

func handleDeleteColumn(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in columnArgs
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	r, err := in.resolve(ed.Doc())
	if err != nil {
		return nil, err
	}
	cols := len(r.node.Content)
	if cols <= editor.MinColumns {
		return nil, invalidf("layout needs at least %d columns; delete the layout instead", editor.MinColumns)
	}
	cursor := r.columnPos(in.ColumnIndex) + 1
	delta, err := mutate(ed, func(c editor.Chain) editor.Chain {
		return c.Focus().SetTextSelection(cursor).DeleteColumn()
	})
	if err != nil {
		return nil, commandFailed("deleteColumn", cursor, -1, err)
	}
	return ColumnsResult{
		Success:      true,
		ColumnsIndex: in.ColumnsIndex,
		ColumnIndex:  intPtr(in.ColumnIndex),
		Cols:         cols - 1,
		Pos:          r.pos,
		SizeDelta:    delta,
	}, nil
}

func handleDeleteColumnsLayout(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		ColumnsIndex int  `json:"columnsIndex"`
		KeepContent  bool `json:"keepContent"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	r, err := findColumns(ed.Doc(), in.ColumnsIndex)
	if err != nil {
		return nil, err
	}
	from, to := r.pos, r.pos+r.node.NodeSize()

	var kept []*doctree.Node
	if in.KeepContent {
		for _, col := range r.node.Content {
			for _, b := range col.Content {
				if b.IsTextblock() && len(b.Content) == 0 {
					continue
				}
				kept = append(kept, b)
			}
		}
	}
	// Kept blocks go in after the layout first, so removing the layout
	// never leaves its parent empty.
	delta, err := mutate(ed, func(c editor.Chain) editor.Chain {
		if len(kept) > 0 {
			c = c.InsertContentAt(to, kept...)
		}
		return c.DeleteRange(from, to)
	})
	if err != nil {
		return nil, commandFailed("deleteColumnsLayout", from, to, err)
	}
	return ColumnsResult{
		Success:      true,
		ColumnsIndex: in.ColumnsIndex,
		Cols:         len(r.node.Content),
		Pos:          from,
		SizeDelta:    delta,
	}, nil
}
