package nodes

import "github.com/weavelang/weave/internal/ids"

// Graph is a unit's node graph: every node reachable from its top-level
// statement list, addressed by stable NodeId (§3 "Node").
type Graph struct {
	byID  map[ids.NodeId]Node
	order []ids.NodeId // insertion order, for deterministic iteration (PT1)

	// TopLevel lists the unit's top-level statements, in source order —
	// these are wrapped into the synthesized zero-argument entry
	// function described in §4.7.
	TopLevel []ids.NodeId

	// TypeDefs holds the unit's struct/union definitions, keyed by name.
	TypeDefs map[string]*TypeDef
}

func NewGraph() *Graph {
	return &Graph{
		byID:     make(map[ids.NodeId]Node),
		TypeDefs: make(map[string]*TypeDef),
	}
}

// Add inserts a node, returning its id (the node must already carry the
// id it was allocated with via ids.NewNode()).
func (g *Graph) Add(n Node) ids.NodeId {
	id := n.ID()
	g.byID[id] = n
	g.order = append(g.order, id)
	return id
}

func (g *Graph) Get(id ids.NodeId) (Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// MustGet panics on a missing id — used internally once the structure
// pass guarantees every referenced id was added.
func (g *Graph) MustGet(id ids.NodeId) Node {
	n, ok := g.byID[id]
	if !ok {
		panic("nodes: dangling node id " + id.String())
	}
	return n
}

// All returns every node in insertion order (deterministic traversal
// for the constraint generator, PT1).
func (g *Graph) All() []Node {
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.byID[id]
	}
	return out
}

func (g *Graph) Len() int { return len(g.order) }
