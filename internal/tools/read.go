package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dgallion1/docedit/internal/chunker"
	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/search"
)

func readTools(opts Options) []Tool {
	return []Tool{
		{
			Name:        "getDocumentStructure",
			Description: "Outline of the document: total size, every heading and every top-level block with positions. Call this first on an unfamiliar document.",
			Category:    CategoryRead,
			Schema:      object(nil, map[string]Property{}),
			Handler: func(_ context.Context, ed editor.Editor, _ json.RawMessage) (any, error) {
				return chunker.ExtractStructure(ed.Doc(), opts.Limits), nil
			},
		},
		{
			Name:        "readChunk",
			Description: "Read the nodes overlapping a position range. Large reads are cut at a node and character budget; continue from nextFrom.",
			Category:    CategoryRead,
			Schema: object([]string{"from"}, map[string]Property{
				"from":           intProp("Start position"),
				"chunkSize":      intProp("Number of positions to read"),
				"includeContext": boolProp("Also read a window of positions before from"),
			}),
			Handler: func(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
				var req chunker.ReadRequest
				if err := decode(args, &req); err != nil {
					return nil, err
				}
				return chunker.ReadChunk(ed.Doc(), req, opts.Limits)
			},
		},
		{
			Name:        "searchInDocument",
			Description: "Find text in the document and return each match with its exact positions and surrounding context.",
			Category:    CategoryRead,
			Schema: object([]string{"query"}, map[string]Property{
				"query":         strProp("Text to find"),
				"caseSensitive": boolProp("Match case exactly"),
				"limit":         intProp("Maximum number of matches to return"),
			}),
			Handler: func(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
				var in struct {
					Query         string `json:"query"`
					CaseSensitive bool   `json:"caseSensitive"`
					Limit         int    `json:"limit"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				if strings.TrimSpace(in.Query) == "" {
					return nil, invalidf("query must not be empty")
				}
				limit := in.Limit
				if limit <= 0 {
					limit = opts.SearchLimit
				}
				return search.Search(ed.Doc(), in.Query, search.Options{
					CaseSensitive: in.CaseSensitive,
					Limit:         limit,
					ContextChars:  opts.SearchContextChars,
				}), nil
			},
		},
		{
			Name:        "getNodeAtPosition",
			Description: "Describe the innermost node containing a position, its depth and its parent type.",
			Category:    CategoryRead,
			Schema: object([]string{"pos"}, map[string]Property{
				"pos": intProp("Position to resolve"),
			}),
			Handler: func(_ context.Context, ed editor.Editor, args json.RawMessage) (any, error) {
				var in struct {
					Pos int `json:"pos"`
				}
				if err := decode(args, &in); err != nil {
					return nil, err
				}
				return chunker.NodeAtPosition(ed.Doc(), in.Pos)
			},
		},
	}
}
