// Package search finds text inside a document and maps every match back to
// absolute document positions.
package search

import (
	"unicode"

	"github.com/dgallion1/docedit/internal/doctree"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultLimit        = 20
	DefaultContextChars = 40
)

// Options controls a search.
type Options struct {
	CaseSensitive bool
	Limit         int
	ContextChars  int
}

// Char is one matched character and its position.
type Char struct {
	Char string `json:"char"`
	Pos  int    `json:"pos"`
}

// Match is one occurrence of the query. [From, To) covers the matched
// characters in document coordinates.
type Match struct {
	From       int    `json:"from"`
	To         int    `json:"to"`
	Text       string `json:"text"`
	Characters []Char `json:"characters"`
	Context    string `json:"context"`
	BlockType  string `json:"blockType"`
	BlockPos   int    `json:"blockPos"`
	BlockSize  int    `json:"blockSize"`
}

// Result holds the first Limit matches and the total number found.
type Result struct {
	Matches []Match `json:"results"`
	Total   int     `json:"totalFound"`
	HasMore bool    `json:"hasMore"`
}

// Search scans every textblock for query. Overlapping occurrences are all
// reported. A match whose characters cannot be mapped to positions is
// skipped.
func Search(doc *doctree.Node, query string, opts Options) Result {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.ContextChars <= 0 {
		opts.ContextChars = DefaultContextChars
	}
	res := Result{Matches: []Match{}}
	needle := []rune(query)
	if len(needle) == 0 {
		return res
	}
	if !opts.CaseSensitive {
		needle = fold(needle)
	}

	doc.Descendants(func(n *doctree.Node, pos int, _ *doctree.Node, _ int) bool {
		if !n.IsTextblock() {
			return true
		}
		text := []rune(n.TextContent())
		if len(text) < len(needle) {
			return false
		}
		hay := text
		if !opts.CaseSensitive {
			hay = fold(text)
		}
		var positions []int
		for i := 0; i+len(needle) <= len(hay); i++ {
			if !equalAt(hay, needle, i) {
				continue
			}
			if positions == nil {
				positions = charPositions(n, pos+1)
			}
			m, ok := buildMatch(text, positions, i, len(needle), opts.ContextChars)
			if !ok {
				continue
			}
			res.Total++
			if len(res.Matches) < opts.Limit {
				m.BlockType = n.Type
				m.BlockPos = pos
				m.BlockSize = n.NodeSize()
				res.Matches = append(res.Matches, m)
			}
		}
		return false
	})
	res.HasMore = res.Total > len(res.Matches)
	return res
}

// Nth returns the n-th (1-indexed) match of query in document order.
func Nth(doc *doctree.Node, query string, n int, caseSensitive bool) (Match, bool) {
	if n < 1 {
		n = 1
	}
	res := Search(doc, query, Options{CaseSensitive: caseSensitive, Limit: n})
	if len(res.Matches) < n {
		return Match{}, false
	}
	return res.Matches[n-1], true
}

func fold(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func equalAt(hay, needle []rune, at int) bool {
	for j, r := range needle {
		if hay[at+j] != r {
			return false
		}
	}
	return true
}

// charPositions maps every character of a textblock's text content to its
// absolute position. Text runs contribute one position per character;
// other inline leaves take one position and no characters.
func charPositions(block *doctree.Node, contentStart int) []int {
	var out []int
	var walk func(n *doctree.Node, cur int) int
	walk = func(n *doctree.Node, cur int) int {
		for _, c := range n.Content {
			switch {
			case c.IsText():
				for i := range []rune(c.Text) {
					out = append(out, cur+i)
				}
				cur += c.NodeSize()
			case len(c.Content) > 0:
				walk(c, cur+1)
				cur += c.NodeSize()
			default:
				cur++
			}
		}
		return cur
	}
	walk(block, contentStart)
	return out
}

func buildMatch(text []rune, positions []int, at, length, contextChars int) (Match, bool) {
	last := at + length - 1
	if last >= len(positions) || len(positions) != len(text) {
		return Match{}, false
	}
	m := Match{
		From:       positions[at],
		To:         positions[last] + 1,
		Text:       string(text[at : at+length]),
		Characters: make([]Char, 0, length),
	}
	for i := at; i <= last; i++ {
		m.Characters = append(m.Characters, Char{Char: string(text[i]), Pos: positions[i]})
	}
	lo := max(0, at-contextChars)
	hi := min(len(text), at+length+contextChars)
	m.Context = string(text[lo:hi])
	return m, true
}
