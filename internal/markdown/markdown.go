// Package markdown turns a constrained markdown dialect into document nodes
// and renders nodes back to markdown.
//
// The translator is line oriented. Its only state is whether it is inside a
// fenced code block; every other line is classified on its own, so each list
// line becomes its own single-item list.
package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
)

// DefaultCodeLanguage is used for fences without a language tag.
const DefaultCodeLanguage = "text"

var (
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	bulletRe     = regexp.MustCompile(`^[-*+]\s+(.+)$`)
	numberedRe   = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)
	blockquoteRe = regexp.MustCompile(`^>\s*(.*)$`)
	ruleRe       = regexp.MustCompile(`^(-{3,}|\*{3,})$`)
)

// ParseToNodes translates markdown into block nodes. It never returns an
// empty slice: input that yields no blocks becomes one paragraph holding the
// raw input, and empty input becomes one empty paragraph.
func ParseToNodes(md string) []*doctree.Node {
	var (
		out     []*doctree.Node
		inFence bool
		lang    string
		buf     []string
	)
	flushFence := func() {
		out = append(out, codeBlock(lang, strings.Join(buf, "\n")))
		buf = nil
	}

	for _, raw := range strings.Split(md, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "```") {
			if inFence {
				flushFence()
				inFence = false
			} else {
				inFence = true
				lang = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				if lang == "" {
					lang = DefaultCodeLanguage
				}
			}
			continue
		}
		if inFence {
			buf = append(buf, raw)
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			out = append(out, doctree.NewHeading(len(m[1]), ParseInline(m[2])...))
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			out = append(out, list(doctree.TypeBulletList, nil, m[1]))
			continue
		}
		if m := numberedRe.FindStringSubmatch(line); m != nil {
			out = append(out, list(doctree.TypeOrderedList, map[string]any{"start": atoi(m[1])}, m[2]))
			continue
		}
		if m := blockquoteRe.FindStringSubmatch(line); m != nil {
			out = append(out, &doctree.Node{
				Type:    doctree.TypeBlockquote,
				Content: []*doctree.Node{doctree.NewParagraph(ParseInline(m[1])...)},
			})
			continue
		}
		if ruleRe.MatchString(line) {
			out = append(out, &doctree.Node{Type: doctree.TypeHorizontalRule})
			continue
		}
		if line == "" {
			continue
		}
		out = append(out, doctree.NewParagraph(ParseInline(line)...))
	}
	if inFence {
		flushFence()
	}

	if len(out) == 0 {
		return []*doctree.Node{doctree.TextParagraph(md)}
	}
	return out
}

func codeBlock(lang, body string) *doctree.Node {
	n := &doctree.Node{Type: doctree.TypeCodeBlock, Attrs: map[string]any{"language": lang}}
	if body != "" {
		n.Content = []*doctree.Node{doctree.NewText(body)}
	}
	return n
}

func list(listType string, attrs map[string]any, text string) *doctree.Node {
	item := &doctree.Node{
		Type:    doctree.TypeListItem,
		Content: []*doctree.Node{doctree.NewParagraph(ParseInline(text)...)},
	}
	return &doctree.Node{Type: listType, Attrs: attrs, Content: []*doctree.Node{item}}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}
