// Package parser imports files into document blocks ready to be loaded into
// an editor.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
)

// Importer converts raw file bytes into top-level document blocks.
type Importer interface {
	Import(r io.Reader, filename string) ([]*doctree.Node, error)
}

// Options tunes importers that have alternatives.
type Options struct {
	// PDFFallbackPdftotext retries failed PDF extraction with the
	// pdftotext binary when it is installed.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string, opts Options) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Document imports a file and wraps the result in a document root.
func Document(r io.Reader, filename string, opts Options) (*doctree.Node, error) {
	imp, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	nodes, err := imp.Import(r, filename)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", filename, err)
	}
	return doctree.NewDoc(nodes...), nil
}

// paragraphs splits text on blank lines. Lines inside a paragraph are
// joined with hard breaks.
func paragraphs(text string) []*doctree.Node {
	var out []*doctree.Node
	var lines []string
	flush := func() {
		if len(lines) == 0 {
			return
		}
		p := doctree.NewParagraph()
		for i, l := range lines {
			if i > 0 {
				p.Content = append(p.Content, &doctree.Node{Type: doctree.TypeHardBreak})
			}
			p.Content = append(p.Content, doctree.NewText(l))
		}
		out = append(out, p)
		lines = nil
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return out
}
