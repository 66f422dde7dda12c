package markdown

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
)

// Render writes block nodes as markdown, one blank line between blocks.
func Render(nodes []*doctree.Node) string {
	var parts []string
	for _, n := range nodes {
		if s := renderBlock(n); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// RenderDoc renders a whole document.
func RenderDoc(doc *doctree.Node) string {
	return Render(doc.Content)
}

func renderBlock(n *doctree.Node) string {
	switch n.Type {
	case doctree.TypeParagraph:
		return RenderInline(n.Content)
	case doctree.TypeHeading:
		return strings.Repeat("#", n.AttrInt("level", 1)) + " " + RenderInline(n.Content)
	case doctree.TypeCodeBlock:
		lang := n.AttrString("language", DefaultCodeLanguage)
		return "```" + lang + "\n" + n.TextContent() + "\n```"
	case doctree.TypeBulletList, doctree.TypeOrderedList:
		return renderList(n)
	case doctree.TypeBlockquote:
		lines := strings.Split(Render(n.Content), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight("> "+l, " ")
		}
		return strings.Join(lines, "\n")
	case doctree.TypeHorizontalRule:
		return "---"
	case doctree.TypeImage:
		return renderImage(n)
	}
	// columns, column and unknown containers flatten to their blocks
	if len(n.Content) > 0 {
		if doctree.AllInline(n.Content) {
			return RenderInline(n.Content)
		}
		return Render(n.Content)
	}
	return ""
}

func renderList(n *doctree.Node) string {
	var items []string
	num := n.AttrInt("start", 1)
	for _, item := range n.Content {
		marker := "- "
		if n.Type == doctree.TypeOrderedList {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		body := Render(item.Content)
		lines := strings.Split(body, "\n")
		indent := strings.Repeat(" ", len(marker))
		for i := 1; i < len(lines); i++ {
			if lines[i] != "" {
				lines[i] = indent + lines[i]
			}
		}
		items = append(items, marker+strings.Join(lines, "\n"))
	}
	return strings.Join(items, "\n")
}

// RenderInline writes inline runs with their marks as markdown delimiters.
func RenderInline(nodes []*doctree.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case doctree.TypeText:
			sb.WriteString(renderText(n))
		case doctree.TypeHardBreak:
			sb.WriteString("\\\n")
		case doctree.TypeImage:
			sb.WriteString(renderImage(n))
		}
	}
	return sb.String()
}

func renderText(n *doctree.Node) string {
	s := n.Text
	if n.HasMark(doctree.MarkCode) {
		s = "`" + s + "`"
	}
	if n.HasMark(doctree.MarkItalic) {
		s = "*" + s + "*"
	}
	if n.HasMark(doctree.MarkBold) {
		s = "**" + s + "**"
	}
	if m, ok := n.Mark(doctree.MarkLink); ok {
		href, _ := m.Attrs["href"].(string)
		s = "[" + s + "](" + href + ")"
	}
	return s
}

func renderImage(n *doctree.Node) string {
	return fmt.Sprintf("![%s](%s)", n.AttrString("alt", ""), n.AttrString("src", ""))
}
