// Package editor is an in-memory rich-text transaction engine. It stands in
// for the browser editor: tools read a document snapshot, compose commands
// into a chain, and run the chain as one all-or-nothing transaction.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgallion1/docedit/internal/doctree"
)

// Column bounds enforced by the column commands.
const (
	MinColumns = doctree.MinColumns
	MaxColumns = doctree.MaxColumns
)

// ErrCommandFailed is the soft failure a command reports instead of
// mutating the document.
var ErrCommandFailed = errors.New("command failed")

// CommandError names the command in a chain that refused to apply.
type CommandError struct {
	Command string
	Reason  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error { return ErrCommandFailed }

// Selection is a text selection in document coordinates.
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Editor is the document-transaction API the tools consume.
type Editor interface {
	// Doc returns a snapshot of the current document. Callers may keep it;
	// later transactions do not change it.
	Doc() *doctree.Node
	Selection() Selection
	Chain() Chain
}

// Chain composes commands that run as a single transaction.
type Chain interface {
	Focus() Chain
	SetTextSelection(pos int) Chain
	InsertContentAt(pos int, nodes ...*doctree.Node) Chain
	InsertContent(nodes ...*doctree.Node) Chain
	DeleteRange(from, to int) Chain
	UpdateAttributes(pos int, attrs map[string]any) Chain
	SetColumns(cols int, layout string) Chain
	AddColumn() Chain
	DeleteColumn() Chain
	Run() error
}

// Document is the in-memory Editor implementation. Transactions are
// serialized by a mutex.
type Document struct {
	mu      sync.RWMutex
	doc     *doctree.Node
	sel     Selection
	version int
	focused bool
}

// New wraps a document. A nil or empty root becomes a document holding one
// empty paragraph.
func New(doc *doctree.Node) *Document {
	if doc == nil {
		doc = doctree.NewDoc()
	} else {
		doc = doc.Clone()
	}
	normalize(doc)
	return &Document{doc: doc}
}

func (d *Document) Doc() *doctree.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc.Clone()
}

func (d *Document) Selection() Selection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sel
}

// Version increments once per committed transaction.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Size returns the document's total size including the root tokens.
func (d *Document) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc.NodeSize()
}

func (d *Document) Chain() Chain {
	return &chain{doc: d}
}

// Replace swaps the whole document, e.g. after an import.
func (d *Document) Replace(doc *doctree.Node) {
	doc = doc.Clone()
	normalize(doc)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = doc
	d.sel = Selection{}
	d.version++
}

// Focused reports whether a transaction has focused the editor.
func (d *Document) Focused() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.focused
}
