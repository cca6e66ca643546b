// Package constraints implements the constraint generator of spec.md
// §4.3: a single walk of the node graph that emits type symbols and
// constraints for the solver (internal/solver) to resolve.
package constraints

import "github.com/weavelang/weave/internal/ids"

// TS is a solver-internal type symbol: a variable standing for the
// eventual type of one node or one local symbol (§4.3, GLOSSARY). TS
// values are only meaningful within a single generate+solve session —
// unlike ids.NodeId/SymbolId they don't need global uniqueness, so a
// simple monotonic counter is enough and keeps solving deterministic
// regardless of which unit is being compiled.
type TS int

// tsAllocator assigns type symbols. Each node gets exactly one; each
// local symbol gets exactly one (§4.3 "Each node gets one type symbol;
// each local symbol gets one").
type tsAllocator struct {
	next    TS
	forNode map[ids.NodeId]TS
	forSym  map[ids.SymbolId]TS
}

func newTSAllocator() *tsAllocator {
	return &tsAllocator{forNode: make(map[ids.NodeId]TS), forSym: make(map[ids.SymbolId]TS)}
}

func (a *tsAllocator) fresh() TS {
	a.next++
	return a.next
}

func (a *tsAllocator) node(id ids.NodeId) TS {
	if ts, ok := a.forNode[id]; ok {
		return ts
	}
	ts := a.fresh()
	a.forNode[id] = ts
	return ts
}

func (a *tsAllocator) symbol(id ids.SymbolId) TS {
	if ts, ok := a.forSym[id]; ok {
		return ts
	}
	ts := a.fresh()
	a.forSym[id] = ts
	return ts
}
