package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docedit/internal/blocks"
	"github.com/dgallion1/docedit/internal/docpos"
	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/markdown"
	"github.com/dgallion1/docedit/internal/search"
)

// mutate runs one transaction and returns how much the document grew.
func mutate(ed editor.Editor, build func(editor.Chain) editor.Chain) (int, error) {
	before := ed.Doc().NodeSize()
	if err := build(ed.Chain()).Run(); err != nil {
		return 0, err
	}
	return ed.Doc().NodeSize() - before, nil
}

func insertAt(ed editor.Editor, op string, pos int, nodes []*doctree.Node) (InsertResult, error) {
	delta, err := mutate(ed, func(c editor.Chain) editor.Chain {
		return c.InsertContentAt(pos, nodes...)
	})
	if err != nil {
		return InsertResult{}, commandFailed(op, pos, -1, err)
	}
	return InsertResult{Success: true, InsertedAt: pos, InsertedSize: delta}, nil
}

func insertTools() []Tool {
	return []Tool{
		{
			Name:        "write",
			Description: "Insert markdown at a position, or at the cursor when no position is given.",
			Category:    CategoryInsert,
			Mutates:     true,
			Schema: object([]string{"content"}, map[string]Property{
				"content":  strProp("Markdown to insert"),
				"position": intProp("Insert position; defaults to the cursor"),
			}),
			Handler: handleWrite,
		},
		{
			Name:        "insertAtEnd",
			Description: "Append markdown to the end of the document.",
			Category:    CategoryInsert,
			Mutates:     true,
			Schema: object([]string{"content"}, map[string]Property{
				"content": strProp("Markdown to append"),
			}),
			Handler: handleInsertAtEnd,
		},
		{
			Name:        "insertAtPosition",
			Description: "Insert plain text at an explicit position, or at the start or end of the Nth text block (0-based).",
			Category:    CategoryInsert,
			Mutates:     true,
			Schema: object([]string{"text"}, map[string]Property{
				"text":           strProp("Text to insert"),
				"position":       intProp("Insert position"),
				"textBlockIndex": intProp("Index of the text block to target when no position is given"),
				"at":             enumProp("Where in the text block to insert", "start", "end"),
				"asParagraph":    boolProp("Wrap the text in its own paragraph"),
			}),
			Handler: handleInsertAtPosition,
		},
		{
			Name:        "insertAfterBlock",
			Description: "Insert markdown right after a block chosen by index (0-based) or by text it contains.",
			Category:    CategoryInsert,
			Mutates:     true,
			Schema: object([]string{"content"}, map[string]Property{
				"content":    strProp("Markdown to insert"),
				"blockIndex": intProp("Block index from block discovery"),
				"searchText": strProp("Text contained in the block's preview"),
				"occurrence": intProp("Which matching block to use (1-based)"),
			}),
			Handler: handleInsertAfterBlock,
		},
		{
			Name:        "insertNear",
			Description: "Insert content before or after a search match, inline or as new paragraphs next to the matching block.",
			Category:    CategoryInsert,
			Mutates:     true,
			Schema: object([]string{"searchText", "content"}, map[string]Property{
				"searchText":    strProp("Text to anchor on"),
				"content":       strProp("Text, or markdown when newParagraph is set"),
				"placement":     enumProp("Side of the match", "before", "after"),
				"newParagraph":  boolProp("Insert as blocks next to the matching block"),
				"occurrence":    intProp("Which match to anchor on (1-based)"),
				"caseSensitive": boolProp("Match case exactly"),
			}),
			Handler: handleInsertNear,
		},
		{
			Name:        "batchInsert",
			Description: "Insert several typed blocks in one transaction at the start, the end, or after a block.",
			Category:    CategoryInsert,
			Mutates:     true,
			Schema: object([]string{"items"}, map[string]Property{
				"items": {
					Type:        "array",
					Description: "Blocks to insert, in order",
					Items: &Property{
						Type: "object",
						Properties: map[string]Property{
							"type": enumProp("Block type", "paragraph", "heading", "bulletList", "orderedList",
								"codeBlock", "blockquote", "horizontalRule", "markdown"),
							"text":     strProp("Text, inline markdown allowed"),
							"level":    rangeProp("Heading level", 1, 6),
							"items":    {Type: "array", Description: "List item texts", Items: &Property{Type: "string"}},
							"language": strProp("Code block language"),
						},
						Required: []string{"type"},
					},
				},
				"anchor":     enumProp("Where to insert", "start", "end", "afterBlock"),
				"blockIndex": intProp("Block index when anchor is afterBlock"),
			}),
			Handler: handleBatchInsert,
		},
		{
			Name:        "replaceContent",
			Description: "Replace one occurrence, or every occurrence, of a text with new text. Replacements keep the formatting of the text they replace.",
			Category:    CategoryInsert,
			Mutates:     true,
			Schema: object([]string{"searchText", "replaceWith"}, map[string]Property{
				"searchText":    strProp("Text to replace"),
				"replaceWith":   strProp("Replacement text; empty deletes the matches"),
				"replaceAll":    boolProp("Replace every occurrence"),
				"occurrence":    intProp("Which occurrence to replace when not replacing all (1-based)"),
				"caseSensitive": boolProp("Match case exactly"),
			}),
			Handler: handleReplaceContent,
		},
	}
}

func handleWrite(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		Content  string `json:"content"`
		Position *int   `json:"position"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	nodes := markdown.ParseToNodes(in.Content)
	if in.Position != nil {
		if err := docpos.ValidatePosition(*in.Position, ed.Doc().NodeSize()); err != nil {
			return nil, err
		}
		return insertAt(ed, "write", *in.Position, nodes)
	}
	sel := ed.Selection()
	at := min(sel.Anchor, sel.Head)
	delta, err := mutate(ed, func(c editor.Chain) editor.Chain {
		return c.Focus().InsertContent(nodes...)
	})
	if err != nil {
		return nil, commandFailed("write", at, -1, err)
	}
	return InsertResult{Success: true, InsertedAt: at, InsertedSize: delta}, nil
}

func handleInsertAtEnd(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		Content string `json:"content"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	end := docpos.MaxPos(ed.Doc().NodeSize())
	return insertAt(ed, "insertAtEnd", end, markdown.ParseToNodes(in.Content))
}

func handleInsertAtPosition(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		Text           string `json:"text"`
		Position       *int   `json:"position"`
		TextBlockIndex *int   `json:"textBlockIndex"`
		At             string `json:"at"`
		AsParagraph    bool   `json:"asParagraph"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.Text == "" {
		return nil, invalidf("text must not be empty")
	}
	doc := ed.Doc()

	var pos int
	switch {
	case in.Position != nil:
		pos = *in.Position
	case in.TextBlockIndex != nil:
		tbs := blocks.Textblocks(blocks.Discover(doc))
		idx := *in.TextBlockIndex
		if idx < 0 || idx >= len(tbs) {
			return nil, invalidf("textBlockIndex %d out of range [0, %d)", idx, len(tbs))
		}
		pos = tbs[idx].ContentEnd
		if in.At == "start" {
			pos = tbs[idx].ContentStart
		}
	default:
		return nil, invalidf("either position or textBlockIndex is required")
	}
	if err := docpos.ValidatePosition(pos, doc.NodeSize()); err != nil {
		return nil, err
	}

	node := doctree.NewText(in.Text)
	if in.AsParagraph {
		node = doctree.TextParagraph(in.Text)
	}
	return insertAt(ed, "insertAtPosition", pos, []*doctree.Node{node})
}

func handleInsertAfterBlock(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		Content    string `json:"content"`
		BlockIndex *int   `json:"blockIndex"`
		SearchText string `json:"searchText"`
		Occurrence *int   `json:"occurrence"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	doc := ed.Doc()
	list := blocks.Discover(doc)

	var target blocks.Block
	switch {
	case in.BlockIndex != nil:
		idx := *in.BlockIndex
		if idx < 0 || idx >= len(list) {
			return nil, invalidf("blockIndex %d out of range [0, %d)", idx, len(list))
		}
		target = list[idx]
	case in.SearchText != "":
		n, err := occurrenceOr(in.Occurrence)
		if err != nil {
			return nil, err
		}
		b, ok := blocks.FindByText(list, in.SearchText, n)
		if !ok {
			return nil, notFoundf("no block #%d containing %q", n, in.SearchText)
		}
		target = b
	default:
		return nil, invalidf("either blockIndex or searchText is required")
	}
	pos := target.End()
	if err := docpos.ValidatePosition(pos, doc.NodeSize()); err != nil {
		return nil, err
	}
	return insertAt(ed, "insertAfterBlock", pos, markdown.ParseToNodes(in.Content))
}

func handleInsertNear(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		SearchText    string `json:"searchText"`
		Content       string `json:"content"`
		Placement     string `json:"placement"`
		NewParagraph  bool   `json:"newParagraph"`
		Occurrence    *int   `json:"occurrence"`
		CaseSensitive bool   `json:"caseSensitive"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.SearchText == "" || in.Content == "" {
		return nil, invalidf("searchText and content must not be empty")
	}
	if in.Placement != "" && in.Placement != "before" && in.Placement != "after" {
		return nil, invalidf("placement must be before or after, got %q", in.Placement)
	}
	n, err := occurrenceOr(in.Occurrence)
	if err != nil {
		return nil, err
	}
	m, ok := search.Nth(ed.Doc(), in.SearchText, n, in.CaseSensitive)
	if !ok {
		return nil, notFoundf("occurrence %d of %q", n, in.SearchText)
	}

	before := in.Placement == "before"
	if in.NewParagraph {
		pos := m.BlockPos + m.BlockSize
		if before {
			pos = m.BlockPos
		}
		return insertAt(ed, "insertNear", pos, markdown.ParseToNodes(in.Content))
	}
	pos := m.To
	if before {
		pos = m.From
	}
	return insertAt(ed, "insertNear", pos, []*doctree.Node{doctree.NewText(in.Content)})
}

type batchItem struct {
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	Level    int      `json:"level"`
	Items    []string `json:"items"`
	Language string   `json:"language"`
}

func (it batchItem) nodes() ([]*doctree.Node, error) {
	switch it.Type {
	case "paragraph":
		return []*doctree.Node{doctree.NewParagraph(markdown.ParseInline(it.Text)...)}, nil
	case "heading":
		level := it.Level
		if level == 0 {
			level = 1
		}
		if level < 1 || level > 6 {
			return nil, invalidf("heading level %d out of range [1, 6]", level)
		}
		return []*doctree.Node{doctree.NewHeading(level, markdown.ParseInline(it.Text)...)}, nil
	case "bulletList", "orderedList":
		texts := it.Items
		if len(texts) == 0 && it.Text != "" {
			texts = strings.Split(it.Text, "\n")
		}
		if len(texts) == 0 {
			return nil, invalidf("%s needs items", it.Type)
		}
		list := &doctree.Node{Type: it.Type}
		for _, t := range texts {
			list.Content = append(list.Content, &doctree.Node{
				Type:    doctree.TypeListItem,
				Content: []*doctree.Node{doctree.NewParagraph(markdown.ParseInline(t)...)},
			})
		}
		return []*doctree.Node{list}, nil
	case "codeBlock":
		lang := it.Language
		if lang == "" {
			lang = markdown.DefaultCodeLanguage
		}
		n := &doctree.Node{Type: doctree.TypeCodeBlock, Attrs: map[string]any{"language": lang}}
		if it.Text != "" {
			n.Content = []*doctree.Node{doctree.NewText(it.Text)}
		}
		return []*doctree.Node{n}, nil
	case "blockquote":
		return []*doctree.Node{{
			Type:    doctree.TypeBlockquote,
			Content: []*doctree.Node{doctree.NewParagraph(markdown.ParseInline(it.Text)...)},
		}}, nil
	case "horizontalRule":
		return []*doctree.Node{{Type: doctree.TypeHorizontalRule}}, nil
	case "markdown":
		return markdown.ParseToNodes(it.Text), nil
	}
	return nil, invalidf("unknown item type %q", it.Type)
}

func handleBatchInsert(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		Items      []batchItem `json:"items"`
		Anchor     string      `json:"anchor"`
		BlockIndex *int        `json:"blockIndex"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, invalidf("items must not be empty")
	}
	doc := ed.Doc()

	var pos int
	switch in.Anchor {
	case "start":
		pos = 0
	case "", "end":
		pos = docpos.MaxPos(doc.NodeSize())
	case "afterBlock":
		if in.BlockIndex == nil {
			return nil, invalidf("blockIndex is required with anchor afterBlock")
		}
		list := blocks.Discover(doc)
		idx := *in.BlockIndex
		if idx < 0 || idx >= len(list) {
			return nil, invalidf("blockIndex %d out of range [0, %d)", idx, len(list))
		}
		pos = list[idx].End()
	default:
		return nil, invalidf("anchor must be start, end or afterBlock, got %q", in.Anchor)
	}

	var nodes []*doctree.Node
	for i, it := range in.Items {
		built, err := it.nodes()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		nodes = append(nodes, built...)
	}
	res, err := insertAt(ed, "batchInsert", pos, nodes)
	if err != nil {
		return nil, err
	}
	res.Count = len(in.Items)
	return res, nil
}

func handleReplaceContent(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
	var in struct {
		SearchText    string `json:"searchText"`
		ReplaceWith   string `json:"replaceWith"`
		ReplaceAll    bool   `json:"replaceAll"`
		Occurrence    *int   `json:"occurrence"`
		CaseSensitive bool   `json:"caseSensitive"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if in.SearchText == "" {
		return nil, invalidf("searchText must not be empty")
	}
	doc := ed.Doc()

	var matches []search.Match
	if in.ReplaceAll {
		res := search.Search(doc, in.SearchText, search.Options{CaseSensitive: in.CaseSensitive, Limit: math.MaxInt32})
		matches = nonOverlapping(res.Matches)
	} else {
		n, err := occurrenceOr(in.Occurrence)
		if err != nil {
			return nil, err
		}
		if m, ok := search.Nth(doc, in.SearchText, n, in.CaseSensitive); ok {
			matches = []search.Match{m}
		}
	}
	if len(matches) == 0 {
		return nil, notFoundf("no occurrence of %q", in.SearchText)
	}

	// Apply from the back so earlier match positions stay valid.
	sort.Slice(matches, func(i, j int) bool { return matches[i].From > matches[j].From })
	delta, err := mutate(ed, func(c editor.Chain) editor.Chain {
		for _, m := range matches {
			c = c.DeleteRange(m.From, m.To)
			if in.ReplaceWith != "" {
				var marks []doctree.Mark
				if run := doc.NodeAt(m.From); run != nil && run.IsText() {
					marks = run.Marks
				}
				c = c.InsertContentAt(m.From, doctree.NewText(in.ReplaceWith, marks...))
			}
		}
		return c
	})
	first := matches[len(matches)-1]
	if err != nil {
		return nil, commandFailed("replaceContent", first.From, first.To, err)
	}
	return InsertResult{Success: true, InsertedAt: first.From, InsertedSize: delta, Count: len(matches)}, nil
}

// nonOverlapping keeps matches in document order, skipping any that start
// inside the previous kept match.
func nonOverlapping(ms []search.Match) []search.Match {
	var out []search.Match
	lastTo := -1
	for _, m := range ms {
		if m.From < lastTo {
			continue
		}
		out = append(out, m)
		lastTo = m.To
	}
	return out
}
