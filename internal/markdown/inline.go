package markdown

import (
	"regexp"

	"github.com/dgallion1/docedit/internal/doctree"
)

// Each pattern's leading group is greedy, so the last delimited span in the
// text is found first and the prefix before it is parsed recursively.
var (
	boldRe   = regexp.MustCompile(`(?s)^(.*)\*\*(.+?)\*\*(.*)$`)
	italicRe = regexp.MustCompile(`(?s)^(.*)[*_](.+?)[*_](.*)$`)
	codeRe   = regexp.MustCompile("(?s)^(.*)`(.+?)`(.*)$")
	linkRe   = regexp.MustCompile(`(?s)^(.*)\[(.+?)\]\((.+?)\)(.*)$`)
)

// ParseInline turns a line of text into inline runs. Precedence is bold,
// italic (* and _ are interchangeable), code, link; text without any
// delimiter becomes a single plain run.
func ParseInline(text string) []*doctree.Node {
	if text == "" {
		return nil
	}
	if m := boldRe.FindStringSubmatch(text); m != nil {
		return join(m[1], marked(ParseInline(m[2]), doctree.Mark{Type: doctree.MarkBold}), m[3])
	}
	if m := italicRe.FindStringSubmatch(text); m != nil {
		return join(m[1], marked(ParseInline(m[2]), doctree.Mark{Type: doctree.MarkItalic}), m[3])
	}
	if m := codeRe.FindStringSubmatch(text); m != nil {
		return join(m[1], []*doctree.Node{doctree.NewText(m[2], doctree.Mark{Type: doctree.MarkCode})}, m[3])
	}
	if m := linkRe.FindStringSubmatch(text); m != nil {
		link := doctree.Mark{Type: doctree.MarkLink, Attrs: map[string]any{"href": m[3]}}
		return join(m[1], []*doctree.Node{doctree.NewText(m[2], link)}, m[4])
	}
	return []*doctree.Node{doctree.NewText(text)}
}

func join(prefix string, middle []*doctree.Node, suffix string) []*doctree.Node {
	out := ParseInline(prefix)
	out = append(out, middle...)
	return append(out, ParseInline(suffix)...)
}

func marked(nodes []*doctree.Node, m doctree.Mark) []*doctree.Node {
	for _, n := range nodes {
		n.Marks = doctree.AddMark(n.Marks, m)
	}
	return nodes
}
