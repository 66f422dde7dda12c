package doctree

import "fmt"

// Node type names.
const (
	TypeDoc            = "doc"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeBlockquote     = "blockquote"
	TypeCodeBlock      = "codeBlock"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeHorizontalRule = "horizontalRule"
	TypeColumns        = "columns"
	TypeColumn         = "column"
	TypeText           = "text"
	TypeHardBreak      = "hardBreak"
	TypeImage          = "image"
)

// Mark type names.
const (
	MarkBold   = "bold"
	MarkItalic = "italic"
	MarkCode   = "code"
	MarkLink   = "link"
)

// Column count bounds of a columns node.
const (
	MinColumns = 2
	MaxColumns = 6
)

// ContentKind describes what a node type may contain.
type ContentKind int

const (
	ContentNone ContentKind = iota // leaf
	ContentBlock
	ContentInline
	ContentText // plain text only, no marks (code blocks)
	ContentListItem
	ContentColumn
)

// NodeSpec is the schema entry for a node type.
type NodeSpec struct {
	Inline  bool
	Content ContentKind
}

var specs = map[string]NodeSpec{
	TypeDoc:            {Content: ContentBlock},
	TypeParagraph:      {Content: ContentInline},
	TypeHeading:        {Content: ContentInline},
	TypeBlockquote:     {Content: ContentBlock},
	TypeCodeBlock:      {Content: ContentText},
	TypeBulletList:     {Content: ContentListItem},
	TypeOrderedList:    {Content: ContentListItem},
	TypeListItem:       {Content: ContentBlock},
	TypeHorizontalRule: {Content: ContentNone},
	TypeColumns:        {Content: ContentColumn},
	TypeColumn:         {Content: ContentBlock},
	TypeText:           {Inline: true, Content: ContentNone},
	TypeHardBreak:      {Inline: true, Content: ContentNone},
	TypeImage:          {Inline: true, Content: ContentNone},
}

// SpecFor returns the schema entry for a type. Unknown types are treated as
// block containers when they have children and as block leaves otherwise.
func SpecFor(n *Node) NodeSpec {
	if s, ok := specs[n.Type]; ok {
		return s
	}
	if len(n.Content) > 0 {
		return NodeSpec{Content: ContentBlock}
	}
	return NodeSpec{Content: ContentNone}
}

// Known reports whether the schema defines the type.
func Known(nodeType string) bool {
	_, ok := specs[nodeType]
	return ok
}

func (n *Node) IsText() bool { return n.Type == TypeText }

func (n *Node) IsInline() bool { return SpecFor(n).Inline }

func (n *Node) IsBlock() bool { return !SpecFor(n).Inline }

func (n *Node) IsLeaf() bool { return SpecFor(n).Content == ContentNone }

// IsTextblock reports whether the node is a block whose content is inline runs.
func (n *Node) IsTextblock() bool {
	s := SpecFor(n)
	return !s.Inline && (s.Content == ContentInline || s.Content == ContentText)
}

// Accepts reports whether child may appear directly inside n.
func (n *Node) Accepts(child *Node) bool {
	switch SpecFor(n).Content {
	case ContentBlock:
		return child.IsBlock() && child.Type != TypeListItem && child.Type != TypeColumn && child.Type != TypeDoc
	case ContentInline:
		return child.IsInline()
	case ContentText:
		return child.IsText() && len(child.Marks) == 0
	case ContentListItem:
		return child.Type == TypeListItem
	case ContentColumn:
		return child.Type == TypeColumn
	}
	return false
}

// Check validates the subtree against the schema, the way the editor's
// checked node factories do before content enters a document.
func (n *Node) Check() error {
	if n.Type == "" {
		return fmt.Errorf("node without type")
	}
	if !Known(n.Type) {
		return fmt.Errorf("unknown node type %q", n.Type)
	}
	if n.IsText() {
		if n.Text == "" {
			return fmt.Errorf("empty text node")
		}
		if len(n.Content) > 0 {
			return fmt.Errorf("text node with children")
		}
		return nil
	}
	if n.Text != "" {
		return fmt.Errorf("%s node carries text", n.Type)
	}
	if n.IsLeaf() && len(n.Content) > 0 {
		return fmt.Errorf("leaf %s node with children", n.Type)
	}
	for i, c := range n.Content {
		if !n.Accepts(c) {
			return fmt.Errorf("%s cannot contain %s at index %d", n.Type, c.Type, i)
		}
		if err := c.Check(); err != nil {
			return err
		}
	}
	if n.Type == TypeColumns && (len(n.Content) < MinColumns || len(n.Content) > MaxColumns) {
		return fmt.Errorf("columns node has %d columns, want %d to %d", len(n.Content), MinColumns, MaxColumns)
	}
	if n.Type == TypeHeading {
		if lvl := n.AttrInt("level", 1); lvl < 1 || lvl > 6 {
			return fmt.Errorf("heading level %d out of range", lvl)
		}
	}
	return nil
}

// CheckAll validates every node of a fragment.
func CheckAll(nodes []*Node) error {
	for _, n := range nodes {
		if err := n.Check(); err != nil {
			return err
		}
	}
	return nil
}

// AllInline reports whether every node of a fragment is inline.
func AllInline(nodes []*Node) bool {
	for _, n := range nodes {
		if !n.IsInline() {
			return false
		}
	}
	return true
}
