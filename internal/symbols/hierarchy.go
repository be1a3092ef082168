package symbols

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
	log "github.com/sirupsen/logrus"

	"github.com/mvp-joe/typeshape/internal/syntax"
)

// ClassNode is a named class in the inheritance hierarchy.
type ClassNode struct {
	ID    string
	Path  string
	Name  string
	Class *syntax.ClassDecl
}

// Cycle is an extends edge that was rejected because it closes a cycle.
type Cycle struct {
	Child  string
	Parent string
}

// ClassID returns the hierarchy vertex id of a class declared in path.
func ClassID(path, name string) string {
	return path + "#" + name
}

// Hierarchy is the directed graph of resolved extends relations between
// classes. Edges point from a class to its direct parent.
type Hierarchy struct {
	g      graph.Graph[string, ClassNode]
	cycles []Cycle
}

// Hierarchy builds the class inheritance graph of every indexed file.
// Heritage references that do not resolve to a class are left out.
func (ix *Index) Hierarchy() (*Hierarchy, error) {
	h := &Hierarchy{
		g: graph.New(func(n ClassNode) string { return n.ID }, graph.Directed(), graph.PreventCycles()),
	}

	type pending struct {
		id    string
		path  string
		class *syntax.ClassDecl
	}
	var classes []pending

	for _, path := range ix.paths {
		for _, decl := range ix.scopes[path].file.Declarations {
			class, ok := decl.(*syntax.ClassDecl)
			if !ok || class.Name == "" {
				continue
			}
			node := ClassNode{
				ID:    ClassID(path, class.Name),
				Path:  path,
				Name:  class.Name,
				Class: class,
			}
			if err := h.g.AddVertex(node); err != nil {
				if errors.Is(err, graph.ErrVertexAlreadyExists) {
					continue
				}
				return nil, fmt.Errorf("failed to add class %s: %w", node.ID, err)
			}
			classes = append(classes, pending{id: node.ID, path: path, class: class})
		}
	}

	for _, c := range classes {
		for _, ref := range c.class.Heritage {
			parent, ok := ix.Resolve(c.path, ref).(*syntax.ClassDecl)
			if !ok || parent.Name == "" {
				continue
			}
			parentID := ClassID(ix.PathOf(parent), parent.Name)

			err := h.g.AddEdge(c.id, parentID)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				log.WithFields(log.Fields{
					"class":  c.id,
					"parent": parentID,
				}).Warn("Inheritance cycle detected")
				h.cycles = append(h.cycles, Cycle{Child: c.id, Parent: parentID})
			default:
				return nil, fmt.Errorf("failed to add extends edge %s -> %s: %w", c.id, parentID, err)
			}
		}
	}

	return h, nil
}

// Node returns the class with the given id.
func (h *Hierarchy) Node(id string) (ClassNode, bool) {
	node, err := h.g.Vertex(id)
	if err != nil {
		return ClassNode{}, false
	}
	return node, true
}

// Roots returns the ids of classes without a resolved parent, sorted.
func (h *Hierarchy) Roots() []string {
	adjacency, err := h.g.AdjacencyMap()
	if err != nil {
		return nil
	}

	var roots []string
	for id, parents := range adjacency {
		if len(parents) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Children returns the ids of the classes directly extending id, sorted.
func (h *Hierarchy) Children(id string) []string {
	predecessors, err := h.g.PredecessorMap()
	if err != nil {
		return nil
	}

	children := make([]string, 0, len(predecessors[id]))
	for child := range predecessors[id] {
		children = append(children, child)
	}
	sort.Strings(children)
	return children
}

// Parents returns the ids of the resolved direct parents of id, sorted.
func (h *Hierarchy) Parents(id string) []string {
	adjacency, err := h.g.AdjacencyMap()
	if err != nil {
		return nil
	}

	parents := make([]string, 0, len(adjacency[id]))
	for parent := range adjacency[id] {
		parents = append(parents, parent)
	}
	sort.Strings(parents)
	return parents
}

// Size returns the number of classes in the hierarchy.
func (h *Hierarchy) Size() int {
	order, err := h.g.Order()
	if err != nil {
		return 0
	}
	return order
}

// Cycles returns the extends edges that were dropped because they close a cycle.
func (h *Hierarchy) Cycles() []Cycle {
	return h.cycles
}
