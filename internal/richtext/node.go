// Package richtext models the note body: a JSON-serializable block tree
// in the shape produced by the editor (doc → blocks → inline text).
package richtext

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Node types understood by this package. Unknown types are preserved and
// walked like any other container.
const (
	TypeDoc            = "doc"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeText           = "text"
	TypeHardBreak      = "hardBreak"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeBlockquote     = "blockquote"
	TypeCodeBlock      = "codeBlock"
	TypeHorizontalRule = "horizontalRule"
	// TypeDiagram marks an embedded canvas.
	TypeDiagram = "excalidraw"
)

// Mark types.
const (
	MarkBold   = "bold"
	MarkItalic = "italic"
	MarkCode   = "code"
	MarkLink   = "link"
)

type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// NewDoc returns an empty document.
func NewDoc() *Node {
	return &Node{Type: TypeDoc}
}

// Parse decodes a serialized tree. An empty string is an empty document.
func Parse(raw string) (*Node, error) {
	if strings.TrimSpace(raw) == "" {
		return NewDoc(), nil
	}
	var n Node
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, fmt.Errorf("parsing content tree: %w", err)
	}
	if n.Type == "" {
		return nil, fmt.Errorf("parsing content tree: root node has no type")
	}
	return &n, nil
}

// ParseOrEmpty is Parse for callers that must not fail: malformed input
// is logged and replaced by an empty document.
func ParseOrEmpty(raw string, logger *slog.Logger) *Node {
	n, err := Parse(raw)
	if err != nil {
		if logger != nil {
			logger.Warn("discarding malformed content", "error", err)
		}
		return NewDoc()
	}
	return n
}

// Marshal serializes the tree.
func (n *Node) Marshal() (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("serializing content tree: %w", err)
	}
	return string(data), nil
}

// String serializes the tree, returning "" if it cannot be encoded.
func (n *Node) String() string {
	s, err := n.Marshal()
	if err != nil {
		return ""
	}
	return s
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Content {
		Walk(c, fn)
	}
}

// PlainText concatenates the text leaves of the tree, one line per block.
func PlainText(n *Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	writePlain(n, &b)
	return strings.TrimSpace(b.String())
}

func writePlain(n *Node, b *strings.Builder) {
	switch n.Type {
	case TypeText:
		b.WriteString(n.Text)
		return
	case TypeHardBreak:
		b.WriteByte('\n')
		return
	}
	for i, c := range n.Content {
		if i > 0 && !isInline(c) {
			b.WriteByte('\n')
		}
		writePlain(c, b)
	}
}

func isInline(n *Node) bool {
	return n.Type == TypeText || n.Type == TypeHardBreak
}

func hasMark(n *Node, markType string) (Mark, bool) {
	for _, m := range n.Marks {
		if m.Type == markType {
			return m, true
		}
	}
	return Mark{}, false
}

func sameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || fmt.Sprint(a[i].Attrs) != fmt.Sprint(b[i].Attrs) {
			return false
		}
	}
	return true
}

// attrInt reads a numeric attribute that may be an int (built in memory)
// or a float64 (decoded from JSON).
func attrInt(attrs map[string]any, key string, def int) int {
	switch v := attrs[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func attrString(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}
