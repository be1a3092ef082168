package symbols

import (
	"fmt"
	"io"
	"strings"
)

// WriteTree writes the inheritance forest to w, one class per line, children
// indented below their parent. label renders a class; nil uses the class id.
// Rejected cycle edges are listed at the end.
func (h *Hierarchy) WriteTree(w io.Writer, label func(ClassNode) string) error {
	if label == nil {
		label = func(n ClassNode) string { return n.ID }
	}

	var writeNode func(id string, depth int) error
	writeNode = func(id string, depth int) error {
		node, ok := h.Node(id)
		if !ok {
			return nil
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label(node)); err != nil {
			return err
		}
		for _, child := range h.Children(id) {
			if err := writeNode(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range h.Roots() {
		if err := writeNode(root, 0); err != nil {
			return err
		}
	}

	for _, c := range h.Cycles() {
		child, _ := h.Node(c.Child)
		parent, _ := h.Node(c.Parent)
		if _, err := fmt.Fprintf(w, "cycle: %s -> %s\n", label(child), label(parent)); err != nil {
			return err
		}
	}

	return nil
}
