package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/markdown"
)

// HTMLImporter handles HTML files. Block elements map to their document
// counterparts; unknown containers are flattened.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) ([]*doctree.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := findBody(doc)
	if root == nil {
		root = doc
	}
	return htmlBlocks(root), nil
}

// htmlBlocks converts the children of n into blocks. Runs of inline
// content between block elements become paragraphs.
func htmlBlocks(n *html.Node) []*doctree.Node {
	var out []*doctree.Node
	var pending []*html.Node
	flush := func() {
		if p := htmlParagraph(pending); p != nil {
			out = append(out, p)
		}
		pending = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlockElement(c.Data) {
			flush()
			out = append(out, htmlBlock(c)...)
			continue
		}
		if c.Type == html.ElementNode || c.Type == html.TextNode {
			pending = append(pending, c)
		}
	}
	flush()
	return out
}

func htmlBlock(n *html.Node) []*doctree.Node {
	if level := headingLevel(n.Data); level > 0 {
		return []*doctree.Node{doctree.NewHeading(level, trimInline(inlineChildren(n, nil))...)}
	}
	switch n.Data {
	case "script", "style", "nav", "footer", "header", "head", "template", "noscript":
		return nil
	case "p":
		inl := trimInline(inlineChildren(n, nil))
		if len(inl) == 0 {
			return nil
		}
		return []*doctree.Node{doctree.NewParagraph(inl...)}
	case "hr":
		return []*doctree.Node{{Type: doctree.TypeHorizontalRule}}
	case "pre":
		lang := markdown.DefaultCodeLanguage
		if code := firstElement(n, "code"); code != nil {
			if l := languageClass(code); l != "" {
				lang = l
			}
		}
		return []*doctree.Node{codeBlock(lang, strings.TrimSuffix(rawText(n), "\n"))}
	case "blockquote":
		return []*doctree.Node{{Type: doctree.TypeBlockquote, Content: htmlBlocks(n)}}
	case "ul", "ol":
		list := &doctree.Node{Type: doctree.TypeBulletList}
		if n.Data == "ol" {
			list.Type = doctree.TypeOrderedList
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				list.Content = append(list.Content, &doctree.Node{Type: doctree.TypeListItem, Content: htmlBlocks(c)})
			}
		}
		if len(list.Content) == 0 {
			return nil
		}
		return []*doctree.Node{list}
	case "table":
		return htmlTable(n)
	case "img":
		return []*doctree.Node{doctree.NewParagraph(htmlImage(n))}
	}
	// div, section, article, main and friends.
	return htmlBlocks(n)
}

// htmlTable renders each row as a paragraph of " | "-separated cells.
func htmlTable(n *html.Node) []*doctree.Node {
	var out []*doctree.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, textContent(c))
				}
			}
			if line := strings.Join(cells, " | "); strings.TrimSpace(line) != "" {
				out = append(out, doctree.TextParagraph(line))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func htmlParagraph(nodes []*html.Node) *doctree.Node {
	inl := htmlInlines(nodes)
	if len(inl) == 0 {
		return nil
	}
	return doctree.NewParagraph(inl...)
}

// htmlInlines converts inline content with collapsed whitespace, trimmed at
// both ends.
func htmlInlines(nodes []*html.Node) []*doctree.Node {
	var out []*doctree.Node
	for _, n := range nodes {
		if n.Type == html.TextNode {
			out = appendText(out, n.Data, nil)
			continue
		}
		out = append(out, inlineElement(n, nil)...)
	}
	return trimInline(out)
}

func inlineChildren(n *html.Node, marks []doctree.Mark) []*doctree.Node {
	var out []*doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			out = appendText(out, c.Data, marks)
		case html.ElementNode:
			out = append(out, inlineElement(c, marks)...)
		}
	}
	return out
}

func inlineElement(n *html.Node, marks []doctree.Mark) []*doctree.Node {
	switch n.Data {
	case "br":
		return []*doctree.Node{{Type: doctree.TypeHardBreak}}
	case "img":
		return []*doctree.Node{htmlImage(n)}
	case "script", "style":
		return nil
	case "strong", "b":
		marks = doctree.AddMark(marks, doctree.Mark{Type: doctree.MarkBold})
	case "em", "i":
		marks = doctree.AddMark(marks, doctree.Mark{Type: doctree.MarkItalic})
	case "code", "kbd", "samp", "tt":
		marks = doctree.AddMark(marks, doctree.Mark{Type: doctree.MarkCode})
	case "a":
		if href := attr(n, "href"); href != "" {
			marks = doctree.AddMark(marks, linkMark(href, attr(n, "title")))
		}
	}
	return inlineChildren(n, marks)
}

func htmlImage(n *html.Node) *doctree.Node {
	img := &doctree.Node{Type: doctree.TypeImage, Attrs: map[string]any{
		"src": attr(n, "src"),
		"alt": attr(n, "alt"),
	}}
	if title := attr(n, "title"); title != "" {
		img.SetAttr("title", title)
	}
	return img
}

func appendText(out []*doctree.Node, s string, marks []doctree.Mark) []*doctree.Node {
	s = collapseSpace(s)
	if s == "" {
		return out
	}
	if len(out) > 0 {
		last := out[len(out)-1]
		prevSpace := last.Type == doctree.TypeHardBreak || strings.HasSuffix(last.Text, " ")
		if prevSpace {
			s = strings.TrimPrefix(s, " ")
			if s == "" {
				return out
			}
		}
	}
	return append(out, doctree.NewText(s, marks...))
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// trimInline drops doubled spaces across run boundaries and trims both
// ends.
func trimInline(in []*doctree.Node) []*doctree.Node {
	nodes := in[:0]
	for _, n := range in {
		if n.IsText() && len(nodes) > 0 {
			last := nodes[len(nodes)-1]
			if last.Type == doctree.TypeHardBreak || strings.HasSuffix(last.Text, " ") {
				n.Text = strings.TrimPrefix(n.Text, " ")
			}
			if n.Text == "" {
				continue
			}
		}
		nodes = append(nodes, n)
	}
	if len(nodes) > 0 && nodes[0].IsText() {
		nodes[0].Text = strings.TrimLeft(nodes[0].Text, " ")
		if nodes[0].Text == "" {
			nodes = nodes[1:]
		}
	}
	if n := len(nodes); n > 0 && nodes[n-1].IsText() {
		nodes[n-1].Text = strings.TrimRight(nodes[n-1].Text, " ")
		if nodes[n-1].Text == "" {
			nodes = nodes[:n-1]
		}
	}
	return nodes
}

func isBlockElement(tag string) bool {
	if headingLevel(tag) > 0 {
		return true
	}
	switch tag {
	case "p", "div", "section", "article", "main", "aside", "figure",
		"ul", "ol", "pre", "blockquote", "hr", "table",
		"script", "style", "nav", "footer", "header", "head", "template", "noscript":
		return true
	}
	return false
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// languageClass reads a "language-x" or "lang-x" class.
func languageClass(n *html.Node) string {
	for _, class := range strings.Fields(attr(n, "class")) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(class, prefix) {
				return strings.TrimPrefix(class, prefix)
			}
		}
	}
	return ""
}

func firstElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if f := firstElement(c, tag); f != nil {
			return f
		}
	}
	return nil
}

// rawText concatenates text nodes without touching whitespace.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(collapseSpace(rawText(n)))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
