// Package store implements the process-wide code store of spec.md §3:
// the module graph tying together source text, node graphs, type
// mappings, and the shared struct/union and symbol namespaces every
// unit resolves against. It is the seam internal/poly (the polymorphism
// driver) is built on top of.
package store

import (
	"sync"

	"github.com/weavelang/weave/internal/constraints"
	werrors "github.com/weavelang/weave/internal/errors"
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/infer"
	"github.com/weavelang/weave/internal/nodes"
	"github.com/weavelang/weave/internal/sexpr"
	"github.com/weavelang/weave/internal/typemap"
	"github.com/weavelang/weave/internal/types"
)

// Unit is one compiled unit of the store (spec.md §3 "Unit"): an
// expression tree (kept only as its lowered Graph — the parser's
// sexpr.Expr form is not retained once structuring succeeds), one node
// graph, and one type mapping. This package holds no native module for
// a unit.
type Unit struct {
	ID   ids.UnitId
	Name string // "" for an anonymous unit (e.g. a quoted expression)

	// Source is the zero SourceId when the unit was built directly from
	// an expression (load_expr_as_module) rather than parsed source text.
	Source ids.SourceId

	Graph   *nodes.Graph
	TypeMap *typemap.Map

	// DefinedTypes lists the struct/union names this unit introduced,
	// so unload_module can remove exactly them from the shared DefTable.
	DefinedTypes []string
}

// Parser is the external front end (internal/frontend, not yet wired)
// load_module needs to turn source text into the generic expression
// tree that internal/nodes structures.
type Parser interface {
	Parse(sourceText string) ([]sexpr.Expr, error)
}

// PolyResolver is internal/poly's hook into the store (§4.6). Resolve is
// called with a freshly-loaded unit's id once that unit is fully
// committed (its own type mapping solved, every polymorphic call site
// it made recorded in TypeMap.PolyRefs): it materializes one concrete
// instance per distinct signature those refs name and redirects each
// call site to its instance instead of the polymorphic template. It is
// invoked outside the load's own critical section (see LoadModule), so
// Resolve is free to call any of the store's ordinary locking methods.
type PolyResolver interface {
	Resolve(unit ids.UnitId) error
}

// Store is the code store: one process-wide instance, guarded by a
// single mutex. Every load/unload is a short critical section; this
// type does not queue re-entrant loads itself — a concurrent call
// simply blocks on the mutex.
type Store struct {
	mu sync.Mutex

	parser Parser
	poly   PolyResolver

	sourceText map[ids.SourceId]string
	units      map[ids.UnitId]*Unit
	namedUnits map[string]ids.UnitId

	defs    *types.DefTable
	symbols *ownedSymbolTable

	polyRegistry map[ids.SymbolId]map[string]polyInstance

	intrinsics ids.UnitId
}

// polyInstance is one entry of the poly registry (§4.6): the
// materialized unit and symbol for a single concrete signature of a
// polymorphic definition. Keyed by the signature's String() rendering,
// which is structural and therefore stable across instantiations (two
// calls with the same concrete signature must reuse the instance, PT3).
type polyInstance struct {
	Unit   ids.UnitId
	Symbol ids.SymbolId
}

// NewStore creates an empty store and seeds it with the §6 runtime
// intrinsic table as ordinary globals owned by a reserved, unnamed unit
// — so FunctionCall/GlobalReference resolution (§4.5) covers them via
// the same overload lookup as user-defined symbols, with no special
// casing in the solver.
func NewStore() *Store {
	s := &Store{
		sourceText:   make(map[ids.SourceId]string),
		units:        make(map[ids.UnitId]*Unit),
		namedUnits:   make(map[string]ids.UnitId),
		defs:         types.NewDefTable(),
		symbols:      newOwnedSymbolTable(),
		polyRegistry: make(map[ids.SymbolId]map[string]polyInstance),
	}
	s.intrinsics = ids.NewUnit()
	s.units[s.intrinsics] = &Unit{ID: s.intrinsics, Name: "", TypeMap: typemap.New()}
	s.bootstrapIntrinsics()
	return s
}

// SetParser wires the front end. Until one is set, LoadModule/
// LoadNamedModule (which take raw source text) fail with MOD001;
// LoadExprAsModule works regardless, since it takes an already-parsed
// expression.
func (s *Store) SetParser(p Parser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parser = p
}

// SetPolyResolver wires internal/poly in. Until one is set, a unit with
// polymorphic call sites loads successfully but those sites are left
// referring to the polymorphic template rather than a concrete
// instance. Wire this once, before the first Load* call — Resolve is
// read outside this store's mutex (see LoadModule), consistent with
// every load already serializing through one mutex.
func (s *Store) SetPolyResolver(p PolyResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poly = p
}

// Defs returns the shared struct/union namespace, for callers (the
// polymorphism driver, codegen) that need to resolve a Named type.
func (s *Store) Defs() *types.DefTable { return s.defs }

// LoadModule parses and loads sourceText as a fresh anonymous unit.
func (s *Store) LoadModule(sourceText string) (ids.UnitId, error) {
	s.mu.Lock()
	top, err := s.parse(sourceText)
	if err != nil {
		s.mu.Unlock()
		return ids.UnitId{}, err
	}
	id, err := s.loadLocked("", top, sourceText)
	s.mu.Unlock()
	return s.resolvePoly(id, err)
}

// LoadNamedModule parses and loads sourceText under name, first
// removing any prior unit registered under that name and every one of
// its dependents (§4.7: "naming a unit with an already-used name
// removes the prior unit first").
func (s *Store) LoadNamedModule(name, sourceText string) (ids.UnitId, error) {
	s.mu.Lock()
	top, err := s.parse(sourceText)
	if err != nil {
		s.mu.Unlock()
		return ids.UnitId{}, err
	}
	if prev, ok := s.namedUnits[name]; ok {
		s.unloadLocked(prev)
	}
	id, err := s.loadLocked(name, top, sourceText)
	s.mu.Unlock()
	return s.resolvePoly(id, err)
}

// LoadExprAsModule loads an already-built expression (e.g. the argument
// of a `#quote` a running program hands back to load_module) as a unit,
// optionally named. imports is accepted for signature parity with §6's
// `load_expr_as_module(expression, name?, imports[])`; this store does
// not scope symbol visibility per unit (every unit already resolves
// against the one process-wide namespace the intrinsics themselves
// live in), so imports is discarded and has no effect — see DESIGN.md.
func (s *Store) LoadExprAsModule(expr sexpr.Expr, name string, imports []string) (ids.UnitId, error) {
	s.mu.Lock()
	_ = imports
	if name != "" {
		if prev, ok := s.namedUnits[name]; ok {
			s.unloadLocked(prev)
		}
	}
	id, err := s.loadLocked(name, []sexpr.Expr{expr}, "")
	s.mu.Unlock()
	return s.resolvePoly(id, err)
}

// resolvePoly runs the polymorphism driver (if wired) over a
// successfully loaded unit, outside the store's own critical section.
func (s *Store) resolvePoly(id ids.UnitId, loadErr error) (ids.UnitId, error) {
	if loadErr != nil {
		return ids.UnitId{}, loadErr
	}
	if s.poly != nil {
		if err := s.poly.Resolve(id); err != nil {
			return id, err
		}
	}
	return id, nil
}

func (s *Store) parse(sourceText string) ([]sexpr.Expr, error) {
	if s.parser == nil {
		return nil, werrors.New(werrors.PhaseStore, werrors.MOD001, "no frontend parser configured")
	}
	return s.parser.Parse(sourceText)
}

// loadLocked structures, infers, and installs a unit. On any failure it
// rolls back the partial type-def/symbol registrations the generator
// and solver may have already made against the shared namespaces, so a
// failed load leaves no trace (§4.7 atomicity).
func (s *Store) loadLocked(name string, top []sexpr.Expr, sourceText string) (ids.UnitId, error) {
	graph, err := nodes.ToNodes(top)
	if err != nil {
		return ids.UnitId{}, err
	}

	unitID := ids.NewUnit()
	s.symbols.setCurrent(unitID)
	defer s.symbols.setCurrent(ids.UnitId{})

	preexisting := make(map[string]bool, len(graph.TypeDefs))
	for n := range graph.TypeDefs {
		if s.defs.Has(n) {
			preexisting[n] = true
		}
	}

	tm, err := infer.Run(graph, s.defs, s.symbols)
	if err != nil {
		for n := range graph.TypeDefs {
			if !preexisting[n] {
				s.defs.Remove(n)
			}
		}
		s.symbols.removeUnit(unitID)
		return ids.UnitId{}, err
	}

	var sourceID ids.SourceId
	if sourceText != "" {
		sourceID = ids.NewSource()
		s.sourceText[sourceID] = sourceText
	}

	definedTypes := make([]string, 0, len(graph.TypeDefs))
	for n := range graph.TypeDefs {
		definedTypes = append(definedTypes, n)
	}

	s.units[unitID] = &Unit{
		ID:           unitID,
		Name:         name,
		Source:       sourceID,
		Graph:        graph,
		TypeMap:      tm,
		DefinedTypes: definedTypes,
	}
	if name != "" {
		s.namedUnits[name] = unitID
	}
	return unitID, nil
}

// GetModule looks up a named unit's id (§6 get_module).
func (s *Store) GetModule(name string) (ids.UnitId, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.namedUnits[name]
	return id, ok
}

// UnloadModule removes a unit and every one of its dependents (§4.7
// removal cascade).
func (s *Store) UnloadModule(id ids.UnitId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloadLocked(id)
}

func (s *Store) unloadLocked(id ids.UnitId) {
	if _, ok := s.units[id]; !ok {
		return
	}
	for _, dep := range s.findAllDependentsLocked(id) {
		s.removeUnitLocked(dep)
	}
	s.removeUnitLocked(id)
}

func (s *Store) removeUnitLocked(id ids.UnitId) {
	unit, ok := s.units[id]
	if !ok {
		return
	}
	if unit.Name != "" {
		if cur, ok := s.namedUnits[unit.Name]; ok && cur == id {
			delete(s.namedUnits, unit.Name)
		}
	}
	for _, n := range unit.DefinedTypes {
		s.defs.Remove(n)
	}
	s.symbols.removeUnit(id)
	delete(s.units, id)
}

// FindAllDependents returns the transitive closure of units whose type
// mapping references a symbol defined in u (§4.7, PT5).
func (s *Store) FindAllDependents(u ids.UnitId) []ids.UnitId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findAllDependentsLocked(u)
}

func (s *Store) findAllDependentsLocked(u ids.UnitId) []ids.UnitId {
	visited := make(map[ids.UnitId]bool)
	var walk func(ids.UnitId)
	walk = func(owner ids.UnitId) {
		for otherID, unit := range s.units {
			if otherID == owner || visited[otherID] {
				continue
			}
			if s.referencesSymbolOwnedBy(unit, owner) {
				visited[otherID] = true
				walk(otherID)
			}
		}
	}
	walk(u)
	out := make([]ids.UnitId, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	return out
}

func (s *Store) referencesSymbolOwnedBy(unit *Unit, owner ids.UnitId) bool {
	if unit.TypeMap == nil {
		return false
	}
	for _, sym := range unit.TypeMap.SymbolRefs {
		if s.symbols.owner[sym] == owner {
			return true
		}
	}
	for _, pr := range unit.TypeMap.PolyRefs {
		if s.symbols.owner[pr.Symbol] == owner {
			return true
		}
	}
	return false
}

// GetFunction resolves a function defined in unit u by name, returning
// its symbol only if exactly one overload of that name was defined
// there (§6 get_function: "returns none if zero or more than one
// match").
func (s *Store) GetFunction(u ids.UnitId, name string) (ids.SymbolId, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var match ids.SymbolId
	count := 0
	for _, c := range s.symbols.byNameExact(name) {
		if s.symbols.owner[c.Symbol] == u {
			match = c.Symbol
			count++
		}
	}
	if count != 1 {
		return ids.SymbolId{}, false
	}
	return match, true
}

// IntrinsicsUnit returns the reserved unit every runtime intrinsic is
// owned by.
func (s *Store) IntrinsicsUnit() ids.UnitId { return s.intrinsics }

// LookupPolyInstance and RegisterPolyInstance give internal/poly (§4.6)
// access to the registry without exposing the store's mutex directly.

func (s *Store) LookupPolyInstance(sym ids.SymbolId, signature types.Type) (ids.UnitId, ids.SymbolId, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey, ok := s.polyRegistry[sym]
	if !ok {
		return ids.UnitId{}, ids.SymbolId{}, false
	}
	inst, ok := byKey[signature.String()]
	if !ok {
		return ids.UnitId{}, ids.SymbolId{}, false
	}
	return inst.Unit, inst.Symbol, true
}

func (s *Store) RegisterPolyInstance(sym ids.SymbolId, signature types.Type, unit ids.UnitId, instanceSymbol ids.SymbolId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey, ok := s.polyRegistry[sym]
	if !ok {
		byKey = make(map[string]polyInstance)
		s.polyRegistry[sym] = byKey
	}
	byKey[signature.String()] = polyInstance{Unit: unit, Symbol: instanceSymbol}
}

// UnitGraph returns a unit's node graph and type mapping, for
// internal/poly to walk a freshly loaded unit's PolyRefs.
func (s *Store) UnitGraph(id ids.UnitId) (*nodes.Graph, *typemap.Map, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok || u.Graph == nil {
		return nil, nil, false
	}
	return u.Graph, u.TypeMap, true
}

// FindFunctionDef locates the node defining sym across every loaded
// unit, so internal/poly can read a polymorphic template's param/return
// TypeExprs and body when materializing a concrete instance. Function
// definitions are always top-level (structure.go has no nested fn),
// so a scan of each unit's top level suffices.
func (s *Store) FindFunctionDef(sym ids.SymbolId) (*nodes.FunctionDef, *nodes.Graph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.Graph == nil {
			continue
		}
		for _, topID := range u.Graph.TopLevel {
			fd, ok := u.Graph.MustGet(topID).(*nodes.FunctionDef)
			if ok && fd.Symbol == sym {
				return fd, u.Graph, true
			}
		}
	}
	return nil, nil, false
}

// LoadInstance solves an already-generated constraints.Result for one
// concrete instantiation of a polymorphic function (internal/poly's
// GenerateInstance output) against the shared symbol and type-def
// namespaces, and commits it as its own anonymous unit, so existing
// dependency tracking and lookup (FindAllDependents, GetFunction) treat
// it uniformly with an ordinary loaded unit. graph is the generic
// template's owning unit's graph: the instance's body reuses the same
// node ids, so the instance unit shares that graph rather than copying
// it.
func (s *Store) LoadInstance(graph *nodes.Graph, result *constraints.Result) (ids.UnitId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unitID := ids.NewUnit()
	s.symbols.setCurrent(unitID)
	defer s.symbols.setCurrent(ids.UnitId{})

	tm, err := infer.FromGenerated(graph, result, s.symbols, s.defs)
	if err != nil {
		s.symbols.removeUnit(unitID)
		return ids.UnitId{}, err
	}
	s.units[unitID] = &Unit{ID: unitID, Graph: graph, TypeMap: tm}
	return unitID, nil
}

// PatchSymbolRef redirects one call site in an already-loaded unit's
// type mapping to sym with concrete type t. internal/poly calls this
// once a polymorphic call site's concrete instance is materialized, so
// the site resolves to the instance rather than the polymorphic
// template it was recorded against at solve time (§4.6 step 2).
func (s *Store) PatchSymbolRef(unit ids.UnitId, node ids.NodeId, sym ids.SymbolId, t types.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unit]
	if !ok || u.TypeMap == nil {
		return
	}
	u.TypeMap.SetSymbol(node, sym)
	u.TypeMap.SetType(node, t)
}
