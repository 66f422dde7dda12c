package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docedit/internal/doctree"
)

// PDFImporter handles PDF files. It tries the Go library first, then falls
// back to pdftotext if enabled. Each non-empty page becomes a "Page N"
// heading followed by its paragraphs.
type PDFImporter struct {
	FallbackPdftotext bool
}

func (p *PDFImporter) Import(r io.Reader, filename string) ([]*doctree.Node, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docedit-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return pageBlocks(text), nil
}

// pageBlocks splits form-feed separated page text into headed sections.
// A single page gets no heading.
func pageBlocks(text string) []*doctree.Node {
	pages := strings.Split(text, "\f")
	var out []*doctree.Node
	for i, page := range pages {
		paras := paragraphs(page)
		if len(paras) == 0 {
			continue
		}
		if len(pages) > 1 {
			out = append(out, doctree.NewHeading(2, doctree.NewText(fmt.Sprintf("Page %d", i+1))))
		}
		out = append(out, paras...)
	}
	return out
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
