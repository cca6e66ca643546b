// Package typemap implements the per-unit Type mapping of spec.md §3:
// the solver's output — a concrete type for every node, the symbols
// each reference resolves to, and the polymorphic instantiations a unit
// required.
package typemap

import (
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/types"
)

// PolyRef is one call or reference site a unit's mapping records when
// it resolves to a polymorphic symbol (§4.6). Node is that call site;
// Symbol is the polymorphic template it resolved to; Signature is the
// template's signature with Binds (the generic->concrete substitution
// the solver derived unifying the template against this site's
// concrete argument/context types) already applied. internal/poly
// consumes these to materialize a concrete instance per distinct
// signature and redirect each recorded Node to it. Two sites sharing a
// symbol+signature both appear here (patching is per call site); the
// store's poly registry, not this slice, is what guarantees at most one
// instance is ever built per signature (PT3).
type PolyRef struct {
	Node      ids.NodeId
	Symbol    ids.SymbolId
	Signature types.Type
	Binds     map[string]types.Type
}

// Map is a unit's type mapping: the solver's resolution table plus the
// bookkeeping the polymorphism driver and codegen need.
type Map struct {
	// NodeTypes gives the concrete type of every node. Invariant 1: once
	// a unit is stored, every entry here is concrete (no abstract class
	// survives).
	NodeTypes map[ids.NodeId]types.Type

	// SizeOfTargets records which type a size-of node measures.
	SizeOfTargets map[ids.NodeId]types.Type

	// SymbolRefs maps a Reference/FunctionCall node to the symbol it was
	// resolved to (§4.5 — at most one candidate survives to this map).
	SymbolRefs map[ids.NodeId]ids.SymbolId

	// PolyRefs is the set of polymorphic references this unit's code
	// depends on (§4.6 step 1).
	PolyRefs []PolyRef
}

func New() *Map {
	return &Map{
		NodeTypes:     make(map[ids.NodeId]types.Type),
		SizeOfTargets: make(map[ids.NodeId]types.Type),
		SymbolRefs:    make(map[ids.NodeId]ids.SymbolId),
	}
}

func (m *Map) SetType(node ids.NodeId, t types.Type) {
	m.NodeTypes[node] = t
}

func (m *Map) TypeOf(node ids.NodeId) (types.Type, bool) {
	t, ok := m.NodeTypes[node]
	return t, ok
}

func (m *Map) SetSymbol(node ids.NodeId, sym ids.SymbolId) {
	m.SymbolRefs[node] = sym
}

// AddPolyRef records one call/reference site's resolution to a
// polymorphic template. Unlike symbol/type registration elsewhere in
// Map, this is intentionally not deduplicated: every physical site
// needs its own entry so internal/poly can redirect each one.
func (m *Map) AddPolyRef(node ids.NodeId, sym ids.SymbolId, sig types.Type, binds map[string]types.Type) {
	m.PolyRefs = append(m.PolyRefs, PolyRef{Node: node, Symbol: sym, Signature: sig, Binds: binds})
}

// AllConcrete checks invariant 1: every node in the graph that this map
// knows about has a concrete resolved type.
func (m *Map) AllConcrete() bool {
	for _, t := range m.NodeTypes {
		if !t.IsConcrete() {
			return false
		}
	}
	return true
}
