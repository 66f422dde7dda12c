package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docedit/internal/doctree"
)

// DOCXImporter handles .docx files. Heading styles become headings, list
// styles become bullet list items and other paragraphs stay paragraphs.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) ([]*doctree.Node, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docedit-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var out []*doctree.Node
	var list *doctree.Node
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		style := docxStyle(para)
		if isListStyle(style) {
			if list == nil {
				list = &doctree.Node{Type: doctree.TypeBulletList}
				out = append(out, list)
			}
			list.Content = append(list.Content, &doctree.Node{
				Type:    doctree.TypeListItem,
				Content: []*doctree.Node{doctree.TextParagraph(text)},
			})
			continue
		}
		list = nil
		if level := headingLevelForStyle(style); level > 0 {
			out = append(out, doctree.NewHeading(level, doctree.NewText(text)))
			continue
		}
		out = append(out, doctree.TextParagraph(text))
	}
	return out, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// headingLevelForStyle maps "Heading1", "heading 2" and "Title" styles.
func headingLevelForStyle(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if s == "title" {
		return 1
	}
	if len(s) == len("heading1") && strings.HasPrefix(s, "heading") {
		if d := s[len(s)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

func isListStyle(style string) bool {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.HasPrefix(s, "listparagraph") || strings.HasPrefix(s, "listbullet") || strings.HasPrefix(s, "listnumber")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
