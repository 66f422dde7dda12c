package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
)

// TextImporter handles plain text files. Blank lines separate paragraphs.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) ([]*doctree.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sb strings.Builder
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs(sb.String()), nil
}
