package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docedit/internal/doctree"
)

// csvBatchSize is the number of data rows grouped under one heading.
const csvBatchSize = 20

// CSVImporter handles CSV files. The first row holds the headers; data
// rows are grouped in batches, each a heading followed by a bullet list
// with one "header: value" item per row.
type CSVImporter struct{}

func (p *CSVImporter) Import(r io.Reader, filename string) ([]*doctree.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	out := []*doctree.Node{
		doctree.TextParagraph("Columns: " + strings.Join(headers, ", ")),
	}

	dataRows := records[1:]
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		// 1-indexed, counting the header row.
		title := fmt.Sprintf("Rows %d-%d", i+2, end+1)
		list := &doctree.Node{Type: doctree.TypeBulletList}
		for _, row := range dataRows[i:end] {
			line := csvRow(headers, row)
			if line == "" {
				continue
			}
			list.Content = append(list.Content, &doctree.Node{
				Type:    doctree.TypeListItem,
				Content: []*doctree.Node{doctree.TextParagraph(line)},
			})
		}
		out = append(out, doctree.NewHeading(2, doctree.NewText(title)))
		if len(list.Content) > 0 {
			out = append(out, list)
		}
	}
	return out, nil
}

func csvRow(headers, row []string) string {
	var cells []string
	for j, cell := range row {
		if cell == "" {
			continue
		}
		if j < len(headers) && headers[j] != "" {
			cells = append(cells, headers[j]+": "+cell)
		} else {
			cells = append(cells, cell)
		}
	}
	return strings.Join(cells, ", ")
}
