// Package docdiff reports what a tool call changed in a document as a line
// diff of its markdown rendering.
package docdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/markdown"
)

// Line kinds.
const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultMaxLines = 5000
	DefaultContext  = 2
)

type Line struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

// Result is the diff of one change. Lines holds changed lines and the
// context around them; unchanged stretches further away are left out.
type Result struct {
	Lines     []Line `json:"lines"`
	Added     int    `json:"added"`
	Removed   int    `json:"removed"`
	Patch     string `json:"patch,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Changed reports whether any line differs.
func (r Result) Changed() bool { return r.Added > 0 || r.Removed > 0 }

type Options struct {
	// MaxLines bounds the combined line count of both sides; larger inputs
	// produce a truncated result without lines.
	MaxLines int
	// Context is the number of unchanged lines kept around each change.
	Context int
	// Patch also renders a character-level patch in diff-match-patch text
	// format.
	Patch bool
}

func (o Options) withDefaults() Options {
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	if o.Context <= 0 {
		o.Context = DefaultContext
	}
	return o
}

// Docs diffs the markdown renderings of two documents.
func Docs(before, after *doctree.Node, opts Options) Result {
	return Text(markdown.RenderDoc(before), markdown.RenderDoc(after), opts)
}

// Text diffs two texts line by line.
func Text(before, after string, opts Options) Result {
	opts = opts.withDefaults()
	if lineCount(before)+lineCount(after) > opts.MaxLines {
		return Result{Lines: []Line{}, Truncated: true}
	}

	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var res Result
	var lines []Line
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, line := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: line, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: line, OldLine: oldLine})
				oldLine++
				res.Removed++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: line, NewLine: newLine})
				newLine++
				res.Added++
			}
		}
	}
	res.Lines = trimContext(lines, opts.Context)

	if opts.Patch && res.Changed() {
		patches := dmp.PatchMake(before, dmp.DiffMain(before, after, true))
		res.Patch = dmp.PatchToText(patches)
	}
	return res
}

// trimContext keeps changed lines and up to n context lines on either side
// of each.
func trimContext(lines []Line, n int) []Line {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Type == LineContext {
			continue
		}
		for j := max(0, i-n); j <= min(len(lines)-1, i+n); j++ {
			keep[j] = true
		}
	}
	out := []Line{}
	for i, l := range lines {
		if keep[i] {
			out = append(out, l)
		}
	}
	return out
}

func lineCount(value string) int {
	if value == "" {
		return 0
	}
	return strings.Count(value, "\n") + 1
}
