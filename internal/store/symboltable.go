package store

import (
	"fmt"

	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/solver"
	"github.com/weavelang/weave/internal/types"
)

// ownedSymbolTable is the store's solver.SymbolTable implementation: it
// behaves exactly like solver.MemoryTable (name -> overload set, looked
// up by target-type unification per §4.5) but additionally remembers
// which unit introduced each symbol, so unload_module can strip exactly
// that unit's definitions back out without disturbing anyone else's
// (§4.7 removal).
type ownedSymbolTable struct {
	byName  map[string][]solver.Candidate
	owner   map[ids.SymbolId]ids.UnitId
	current ids.UnitId
}

func newOwnedSymbolTable() *ownedSymbolTable {
	return &ownedSymbolTable{
		byName: make(map[string][]solver.Candidate),
		owner:  make(map[ids.SymbolId]ids.UnitId),
	}
}

// setCurrent stamps the unit that subsequent Define calls belong to.
// The store holds its single mutex across an entire load, so there is
// never more than one unit "current" at a time.
func (t *ownedSymbolTable) setCurrent(u ids.UnitId) { t.current = u }

func (t *ownedSymbolTable) Define(name string, symbol ids.SymbolId, sig types.Type) error {
	for _, c := range t.byName[name] {
		if c.Signature.Equals(sig) {
			return fmt.Errorf("RDF002: duplicate definition of %s with signature %s", name, sig.String())
		}
	}
	t.byName[name] = append(t.byName[name], solver.Candidate{Symbol: symbol, Signature: sig})
	t.owner[symbol] = t.current
	return nil
}

func (t *ownedSymbolTable) Lookup(name string, target types.Type) []solver.Candidate {
	var out []solver.Candidate
	for _, c := range t.byName[name] {
		if _, _, err := types.Unify(c.Signature, target); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// byNameExact returns every overload registered under name, regardless
// of target type — used by get_function, which resolves by name alone
// and rejects anything but a unique match.
func (t *ownedSymbolTable) byNameExact(name string) []solver.Candidate {
	return t.byName[name]
}

// removeUnit deletes every symbol owned by u.
func (t *ownedSymbolTable) removeUnit(u ids.UnitId) {
	for name, cands := range t.byName {
		kept := cands[:0:0]
		for _, c := range cands {
			if t.owner[c.Symbol] == u {
				delete(t.owner, c.Symbol)
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			delete(t.byName, name)
		} else {
			t.byName[name] = kept
		}
	}
}
