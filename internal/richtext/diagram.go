package richtext

import "github.com/google/uuid"

// Diagram is an embedded canvas found in a content tree.
type Diagram struct {
	ID   string
	Name string
	// Data is the raw decoded payload ({elements, appState, files}).
	Data any
}

// NewDiagramNode builds an inline canvas node.
func NewDiagramNode(id, name string, data any) *Node {
	attrs := map[string]any{"id": id, "name": name}
	if data != nil {
		attrs["data"] = data
	}
	return &Node{Type: TypeDiagram, Attrs: attrs}
}

// DiagramNodes returns the embedded canvases of the tree in document order.
// Nodes without an id are reported with an empty ID; see EnsureDiagramIDs.
func DiagramNodes(root *Node) []Diagram {
	var out []Diagram
	Walk(root, func(n *Node) bool {
		if n.Type != TypeDiagram {
			return true
		}
		out = append(out, Diagram{
			ID:   attrString(n.Attrs, "id"),
			Name: attrString(n.Attrs, "name"),
			Data: n.Attrs["data"],
		})
		return false
	})
	return out
}

// EnsureDiagramIDs assigns a fresh id to every diagram node that lacks
// one and reports whether the tree changed.
func EnsureDiagramIDs(root *Node) bool {
	changed := false
	Walk(root, func(n *Node) bool {
		if n.Type != TypeDiagram {
			return true
		}
		if attrString(n.Attrs, "id") == "" {
			if n.Attrs == nil {
				n.Attrs = map[string]any{}
			}
			n.Attrs["id"] = uuid.NewString()
			changed = true
		}
		return false
	})
	return changed
}

// RemoveDiagram deletes every diagram node carrying id and reports whether
// any was found.
func RemoveDiagram(root *Node, id string) bool {
	if root == nil || id == "" {
		return false
	}
	removed := false
	kept := root.Content[:0]
	for _, c := range root.Content {
		if c.Type == TypeDiagram && attrString(c.Attrs, "id") == id {
			removed = true
			continue
		}
		if RemoveDiagram(c, id) {
			removed = true
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(root.Content); i++ {
		root.Content[i] = nil
	}
	root.Content = kept
	return removed
}

// SetDiagramName renames the diagram node carrying id.
func SetDiagramName(root *Node, id, name string) bool {
	found := false
	Walk(root, func(n *Node) bool {
		if n.Type == TypeDiagram && attrString(n.Attrs, "id") == id {
			n.Attrs["name"] = name
			found = true
			return false
		}
		return true
	})
	return found
}
