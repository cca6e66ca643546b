// Package solver implements the worklist fixpoint constraint solver of
// spec.md §4.4: it takes the constraints emitted by internal/constraints
// and assigns a concrete type to every type symbol, or reports
// structured diagnostics for what it could not resolve.
package solver

import (
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/types"
)

// Candidate is one overload returned by a symbol lookup.
type Candidate struct {
	Symbol    ids.SymbolId
	Signature types.Type
}

// SymbolTable is the global (cross-unit) symbol namespace the solver
// consults for §4.5 overload resolution, and populates as FunctionDef /
// GlobalDef constraints become concrete. The code store (internal/store)
// owns the concrete implementation; the solver only depends on this
// narrow interface so it can be unit-tested against an in-memory stub.
type SymbolTable interface {
	// Define registers name as having signature sig, owned by symbol.
	// Returns an error if an identical signature is already registered
	// under this name (§7 "Redefinition": duplicate symbol with an
	// identical signature).
	Define(name string, symbol ids.SymbolId, sig types.Type) error

	// Lookup returns every symbol named name whose signature unifies
	// with target (§4.5: "Lookup takes a name and a target type").
	Lookup(name string, target types.Type) []Candidate
}

// MemoryTable is a simple in-process SymbolTable, grounded in the
// teacher's internal/module global-name registry. Used directly by
// tests; internal/store has its own SymbolTable implementation that
// also tracks which unit owns each symbol.
type MemoryTable struct {
	byName map[string][]Candidate
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{byName: make(map[string][]Candidate)}
}

func (m *MemoryTable) Define(name string, symbol ids.SymbolId, sig types.Type) error {
	for _, c := range m.byName[name] {
		if c.Signature.Equals(sig) {
			return &RedefinitionError{Name: name, Signature: sig}
		}
	}
	m.byName[name] = append(m.byName[name], Candidate{Symbol: symbol, Signature: sig})
	return nil
}

func (m *MemoryTable) Lookup(name string, target types.Type) []Candidate {
	var out []Candidate
	for _, c := range m.byName[name] {
		if _, _, err := types.Unify(c.Signature, target); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// RedefinitionError reports a duplicate symbol with an identical
// signature (§7 RDF002).
type RedefinitionError struct {
	Name      string
	Signature types.Type
}

func (e *RedefinitionError) Error() string {
	return "RDF002: duplicate definition of " + e.Name + " with signature " + e.Signature.String()
}
