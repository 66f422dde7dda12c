package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/markdown"
)

// MarkdownImporter handles Markdown files with a full CommonMark parser.
// Unlike the line-based translator used for tool content, it keeps nested
// lists and multi-paragraph list items.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) ([]*doctree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	c := mdConverter{src: src}
	return c.blocks(doc), nil
}

type mdConverter struct {
	src []byte
}

// blocks converts the block children of n.
func (c mdConverter) blocks(n ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if b := c.block(child); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c mdConverter) block(n ast.Node) *doctree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return doctree.NewHeading(node.Level, c.inlines(node, nil)...)
	case *ast.Paragraph, *ast.TextBlock:
		inl := c.inlines(node, nil)
		if len(inl) == 0 {
			return nil
		}
		return doctree.NewParagraph(inl...)
	case *ast.ThematicBreak:
		return &doctree.Node{Type: doctree.TypeHorizontalRule}
	case *ast.FencedCodeBlock:
		lang := string(node.Language(c.src))
		if lang == "" {
			lang = markdown.DefaultCodeLanguage
		}
		return codeBlock(lang, c.lines(node))
	case *ast.CodeBlock:
		return codeBlock(markdown.DefaultCodeLanguage, c.lines(node))
	case *ast.Blockquote:
		return &doctree.Node{Type: doctree.TypeBlockquote, Content: c.blocks(node)}
	case *ast.List:
		list := &doctree.Node{Type: doctree.TypeBulletList}
		if node.IsOrdered() {
			list.Type = doctree.TypeOrderedList
			if node.Start != 1 {
				list.SetAttr("start", node.Start)
			}
		}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			list.Content = append(list.Content, &doctree.Node{
				Type:    doctree.TypeListItem,
				Content: c.blocks(item),
			})
		}
		return list
	case *ast.HTMLBlock:
		raw := strings.TrimSpace(c.lines(node))
		if raw == "" {
			return nil
		}
		return doctree.TextParagraph(raw)
	}
	return nil
}

func (c mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// inlines converts the inline children of n, adding marks to every text run.
func (c mdConverter) inlines(n ast.Node, marks []doctree.Mark) []*doctree.Node {
	var out []*doctree.Node
	add := func(s string, m []doctree.Mark) {
		if s == "" {
			return
		}
		out = append(out, doctree.NewText(s, m...))
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			add(string(node.Segment.Value(c.src)), marks)
			switch {
			case node.HardLineBreak():
				out = append(out, &doctree.Node{Type: doctree.TypeHardBreak})
			case node.SoftLineBreak():
				add(" ", marks)
			}
		case *ast.String:
			add(string(node.Value), marks)
		case *ast.CodeSpan:
			add(c.plain(node), doctree.AddMark(marks, doctree.Mark{Type: doctree.MarkCode}))
		case *ast.Emphasis:
			mark := doctree.Mark{Type: doctree.MarkItalic}
			if node.Level >= 2 {
				mark.Type = doctree.MarkBold
			}
			out = append(out, c.inlines(node, doctree.AddMark(marks, mark))...)
		case *ast.Link:
			out = append(out, c.inlines(node, doctree.AddMark(marks, linkMark(string(node.Destination), string(node.Title))))...)
		case *ast.AutoLink:
			add(string(node.Label(c.src)), doctree.AddMark(marks, linkMark(string(node.URL(c.src)), "")))
		case *ast.Image:
			img := &doctree.Node{Type: doctree.TypeImage, Attrs: map[string]any{
				"src": string(node.Destination),
				"alt": c.plain(node),
			}}
			if len(node.Title) > 0 {
				img.SetAttr("title", string(node.Title))
			}
			out = append(out, img)
		case *ast.RawHTML:
			var buf bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				buf.Write(seg.Value(c.src))
			}
			add(buf.String(), marks)
		default:
			out = append(out, c.inlines(child, marks)...)
		}
	}
	return out
}

// plain concatenates the text below n, ignoring formatting.
func (c mdConverter) plain(n ast.Node) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(c.src))
		case *ast.String:
			sb.Write(node.Value)
		default:
			sb.WriteString(c.plain(child))
		}
	}
	return sb.String()
}

func linkMark(href, title string) doctree.Mark {
	attrs := map[string]any{"href": href}
	if title != "" {
		attrs["title"] = title
	}
	return doctree.Mark{Type: doctree.MarkLink, Attrs: attrs}
}

func codeBlock(lang, body string) *doctree.Node {
	n := &doctree.Node{Type: doctree.TypeCodeBlock, Attrs: map[string]any{"language": lang}}
	if body != "" {
		n.Content = []*doctree.Node{doctree.NewText(body)}
	}
	return n
}
