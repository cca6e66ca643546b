package solver

import (
	"fmt"

	"github.com/weavelang/weave/internal/constraints"
	werrors "github.com/weavelang/weave/internal/errors"
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/types"
)

// Solution is the solver's output: a concrete type for every ts that was
// resolved, plus the symbol each GlobalReference/FunctionCall bound to
// (for the generator's SymbolRefs typemap entry, §3).
type Solution struct {
	Types      map[constraints.TS]types.Type
	References map[ids.NodeId]ids.SymbolId
	PolyUses   []PolyUse
}

// PolyUse records a call or reference site that resolved to a candidate
// whose signature still mentions a generic: Binds is the substitution
// the solver derived unifying that signature against the site's
// concrete argument/context types, and Signature is the candidate's
// signature with Binds already applied. internal/poly consumes these
// to materialize concrete instances (§4.6).
type PolyUse struct {
	Node      ids.NodeId
	Symbol    ids.SymbolId
	Signature types.Type
	Binds     map[string]types.Type
}

// TypeOf resolves ts through the union-find to its bound concrete type.
func (s *Solution) TypeOf(ts constraints.TS) (types.Type, bool) {
	t, ok := s.Types[ts]
	return t, ok
}

// unionFind tracks Equivalent-merged type symbols.
type unionFind struct{ parent map[constraints.TS]constraints.TS }

func newUnionFind() *unionFind { return &unionFind{parent: make(map[constraints.TS]constraints.TS)} }

func (u *unionFind) find(ts constraints.TS) constraints.TS {
	p, ok := u.parent[ts]
	if !ok {
		return ts
	}
	root := u.find(p)
	u.parent[ts] = root
	return root
}

func (u *unionFind) union(a, b constraints.TS) (constraints.TS, constraints.TS) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return ra, ra
	}
	// lower-numbered root wins, keeping solving deterministic regardless
	// of which equivalence is discovered first (PT1).
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	return ra, rb
}

// solver runs the §4.4 worklist fixpoint over one generate session's
// constraints.
type solver struct {
	uf       *unionFind
	bound    map[constraints.TS]types.Type
	refs     map[ids.NodeId]ids.SymbolId
	polyUses []PolyUse
	table    SymbolTable
	defs     *types.DefTable
	diags    []*werrors.Diagnostic
}

// Solve drives constraints to a fixpoint against table, the shared
// cross-unit symbol namespace, and defs, the shared struct/union
// namespace, returning a Solution or an aggregate diagnostic (§7:
// "first error or an aggregate of multiple type errors").
func Solve(cs []constraints.Constraint, table SymbolTable, defs *types.DefTable) (*Solution, error) {
	s := &solver{
		uf:    newUnionFind(),
		bound: make(map[constraints.TS]types.Type),
		refs:  make(map[ids.NodeId]ids.SymbolId),
		table: table,
		defs:  defs,
	}

	pending := make([]constraints.Constraint, len(cs))
	copy(pending, cs)

	for {
		remaining, progressed := s.pass(pending)
		pending = remaining
		if len(pending) == 0 {
			break
		}
		if progressed {
			continue
		}
		if !s.defaultPass() {
			break
		}
	}

	for _, c := range pending {
		s.diags = append(s.diags, s.stuckDiagnostic(c))
	}

	if len(s.diags) > 0 {
		return nil, werrors.NewAggregate(s.diags)
	}

	resolved := make(map[constraints.TS]types.Type, len(s.bound))
	for ts, t := range s.bound {
		resolved[s.uf.find(ts)] = t
	}
	// Every ts that was ever unioned resolves through its root too.
	for ts := range s.uf.parent {
		if t, ok := resolved[s.uf.find(ts)]; ok {
			resolved[ts] = t
		}
	}

	return &Solution{Types: resolved, References: s.refs, PolyUses: s.polyUses}, nil
}

// pass runs every pending constraint once, returning the ones that are
// still unresolved and whether any made progress this pass.
func (s *solver) pass(pending []constraints.Constraint) ([]constraints.Constraint, bool) {
	var stillPending []constraints.Constraint
	progressed := false
	for _, c := range pending {
		handled, err := s.process(c)
		if err != nil {
			s.diags = append(s.diags, s.conflictDiagnostic(c, err))
			progressed = true
			continue
		}
		if handled {
			progressed = true
			continue
		}
		stillPending = append(stillPending, c)
	}
	return stillPending, progressed
}

// defaultPass applies §4.1 defaulting to every still-abstract bound
// type symbol. Returns whether anything changed.
func (s *solver) defaultPass() bool {
	changed := false
	for ts, t := range s.bound {
		if t.IsAbstract() {
			if def, ok := t.Class.Default(); ok {
				s.bound[ts] = def
				changed = true
			}
		}
	}
	return changed
}

// set unifies t into ts's current binding (or installs it if ts is
// unbound), always operating on the union-find root.
func (s *solver) set(ts constraints.TS, t types.Type) error {
	root := s.uf.find(ts)
	cur, ok := s.bound[root]
	if !ok {
		s.bound[root] = t
		return nil
	}
	unified, _, err := types.Unify(cur, t)
	if err != nil {
		return err
	}
	s.bound[root] = unified
	return nil
}

func (s *solver) get(ts constraints.TS) (types.Type, bool) {
	t, ok := s.bound[s.uf.find(ts)]
	return t, ok
}

// resolvable reports whether t is settled enough for constraints that
// depend on its shape to proceed: it may be a generic (a polymorphic
// definition never becomes concrete) but must not still be an abstract
// class waiting on defaulting.
func resolvable(t types.Type) bool { return !t.IsAbstract() }

// filterMostSpecific narrows an overload set down to its concrete
// (non-generic) members when any exist (§4.5 "most specific match
// wins"). A polymorphic template's signature unifies with essentially
// any target, so once a concrete instance of it has been materialized
// (§4.6) a lookup by the same name sees both the template and the
// instance; without this, every call site after the first instantiation
// would read as ambiguous forever. Concrete overloads always shadow a
// generic fallback, the same way a specific overload shadows a wider
// one in ordinary overload resolution.
func filterMostSpecific(candidates []Candidate) []Candidate {
	var concrete []Candidate
	for _, c := range candidates {
		if !c.Signature.ContainsGeneric() {
			concrete = append(concrete, c)
		}
	}
	if len(concrete) > 0 {
		return concrete
	}
	return candidates
}

func (s *solver) process(c constraints.Constraint) (bool, error) {
	switch cc := c.(type) {
	case constraints.Assert:
		if err := s.set(cc.TS, cc.T); err != nil {
			return false, err
		}
		return true, nil

	case constraints.Equivalent:
		ra, rb := s.uf.find(cc.A), s.uf.find(cc.B)
		if ra == rb {
			return true, nil
		}
		at, aok := s.bound[ra]
		bt, bok := s.bound[rb]
		newRoot, _ := s.uf.union(cc.A, cc.B)
		switch {
		case aok && bok:
			unified, _, err := types.Unify(at, bt)
			if err != nil {
				return false, err
			}
			s.bound[newRoot] = unified
		case aok:
			s.bound[newRoot] = at
		case bok:
			s.bound[newRoot] = bt
		}
		return true, nil

	case constraints.Array:
		arrT, arrOK := s.get(cc.Arr)
		elemT, elemOK := s.get(cc.Elem)
		switch {
		case arrOK && resolvable(arrT):
			if arrT.Kind != types.KArray {
				return false, &types.UnificationError{A: arrT, B: types.Array(types.AbstractAny)}
			}
			return true, s.set(cc.Elem, *arrT.Elem)
		case elemOK && resolvable(elemT):
			return true, s.set(cc.Arr, types.Array(elemT))
		}
		return false, nil

	case constraints.Convert:
		valT, valOK := s.get(cc.Val)
		intoT, intoOK := s.get(cc.Into)
		if !valOK || !intoOK || !resolvable(valT) || !resolvable(intoT) {
			return false, nil
		}
		if !types.CanConvert(valT, intoT) {
			return false, fmt.Errorf("%s: cannot convert %s into %s", werrors.CNV001, valT, intoT)
		}
		return true, nil

	case constraints.FieldAccess:
		return s.processFieldAccess(cc)

	case constraints.Constructor:
		return s.processConstructor(cc)

	case constraints.FunctionDef:
		return s.processFunctionDef(cc)

	case constraints.FunctionCall:
		return s.processFunctionCall(cc)

	case constraints.GlobalDef:
		t, ok := s.get(cc.TS)
		if !ok || !resolvable(t) {
			return false, nil
		}
		if err := s.table.Define(cc.Name, cc.Symbol, t); err != nil {
			return false, err
		}
		return true, nil

	case constraints.GlobalReference:
		return s.processGlobalReference(cc)
	}
	return false, fmt.Errorf("solver: unhandled constraint %T", c)
}

func (s *solver) processFieldAccess(cc constraints.FieldAccess) (bool, error) {
	t, ok := s.get(cc.Container)
	if !ok || !resolvable(t) {
		return false, nil
	}
	named := t
	if named.Kind == types.KPointer {
		named = *named.Elem
	}
	if named.Kind != types.KNamed {
		return false, fmt.Errorf("%s: field access on non-struct type %s", werrors.TYP004, t)
	}
	def, ok := s.defs.Get(named.Name)
	if !ok {
		return false, fmt.Errorf("%s: unknown type %q", werrors.TYP004, named.Name)
	}
	ft, ok := def.FieldType(cc.Field)
	if !ok {
		return false, fmt.Errorf("%s: type %q has no field %q", werrors.TYP004, named.Name, cc.Field)
	}
	return true, s.set(cc.Result, ft)
}

func (s *solver) processConstructor(cc constraints.Constructor) (bool, error) {
	def, ok := s.defs.Get(cc.TypeName)
	if !ok {
		return false, fmt.Errorf("%s: unknown type %q", werrors.TYP004, cc.TypeName)
	}

	if def.Kind == types.DefUnion {
		if len(cc.Args) != 1 {
			return false, fmt.Errorf("%s: union constructor requires exactly one field", werrors.TYP005)
		}
		arg := cc.Args[0]
		fieldName := arg.Field
		if fieldName == "" && len(def.Fields) == 1 {
			fieldName = def.Fields[0].Name
		}
		ft, ok := def.FieldType(fieldName)
		if !ok {
			return false, fmt.Errorf("%s: type %q has no field %q", werrors.TYP004, cc.TypeName, fieldName)
		}
		if err := s.set(arg.TS, ft); err != nil {
			return false, err
		}
		return true, s.set(cc.Result, types.Named(cc.TypeName))
	}

	allPositional := true
	for _, a := range cc.Args {
		if a.Field != "" {
			allPositional = false
			break
		}
	}
	if allPositional {
		if len(cc.Args) != len(def.Fields) {
			return false, fmt.Errorf("%s: struct %q takes %d fields, got %d", werrors.STR002, cc.TypeName, len(def.Fields), len(cc.Args))
		}
		for i, a := range cc.Args {
			if err := s.set(a.TS, def.Fields[i].Type); err != nil {
				return false, err
			}
		}
		return true, s.set(cc.Result, types.Named(cc.TypeName))
	}

	if len(cc.Args) != len(def.Fields) {
		return false, fmt.Errorf("%s: struct %q takes %d fields, got %d", werrors.STR002, cc.TypeName, len(def.Fields), len(cc.Args))
	}
	for _, a := range cc.Args {
		ft, ok := def.FieldType(a.Field)
		if !ok {
			return false, fmt.Errorf("%s: struct %q has no field %q", werrors.TYP004, cc.TypeName, a.Field)
		}
		if err := s.set(a.TS, ft); err != nil {
			return false, err
		}
	}
	return true, s.set(cc.Result, types.Named(cc.TypeName))
}

func (s *solver) processFunctionDef(cc constraints.FunctionDef) (bool, error) {
	argTypes := make([]types.Type, len(cc.Args))
	for i, a := range cc.Args {
		t, ok := s.get(a.TS)
		if !ok || !resolvable(t) {
			return false, nil
		}
		argTypes[i] = t
	}
	retT, ok := s.get(cc.ReturnTS)
	if !ok || !resolvable(retT) {
		return false, nil
	}
	sig := types.Func(argTypes, retT)
	if err := s.table.Define(cc.Name, cc.Symbol, sig); err != nil {
		return false, err
	}
	return true, nil
}

func (s *solver) processFunctionCall(cc constraints.FunctionCall) (bool, error) {
	argTypes := make([]types.Type, len(cc.Args))
	for i, a := range cc.Args {
		t, ok := s.get(a.TS)
		if !ok || !resolvable(t) {
			return false, nil
		}
		argTypes[i] = t
	}

	if cc.FunctionTS != 0 {
		fnT, ok := s.get(cc.FunctionTS)
		if !ok || !resolvable(fnT) {
			return false, nil
		}
		if fnT.Kind != types.KFunc {
			return false, fmt.Errorf("%s: call target is not a function", werrors.TYP001)
		}
		return true, s.set(cc.Result, *fnT.Ret)
	}

	retGuess := types.Type(types.AbstractAny)
	if t, ok := s.get(cc.Result); ok {
		retGuess = t
	}
	target := types.Func(argTypes, retGuess)
	candidates := filterMostSpecific(s.table.Lookup(cc.FunctionName, target))
	switch len(candidates) {
	case 0:
		return false, fmt.Errorf("%s: no function named %q matches this call", werrors.SYM001, cc.FunctionName)
	case 1:
		s.refs[cc.Node] = candidates[0].Symbol
		return true, s.bindCallResult(cc.Node, candidates[0], target, cc.Result)
	default:
		return false, nil // ambiguous so far; more context may narrow argTypes on a later pass
	}
}

// bindCallResult sets result's bound type from candidate's signature. A
// candidate whose signature still mentions a generic isn't itself the
// concrete type of this call site: unify it against target to recover
// the substitution the call's concrete arguments imply, bind result to
// the substituted return type, and record the use for internal/poly to
// materialize a concrete instance from (§4.6).
func (s *solver) bindCallResult(node ids.NodeId, candidate Candidate, target types.Type, result constraints.TS) error {
	if !candidate.Signature.ContainsGeneric() {
		return s.set(result, *candidate.Signature.Ret)
	}
	unified, binds, err := types.Unify(candidate.Signature, target)
	if err != nil {
		return err
	}
	s.polyUses = append(s.polyUses, PolyUse{
		Node:      node,
		Symbol:    candidate.Symbol,
		Signature: unified,
		Binds:     binds,
	})
	return s.set(result, *unified.Ret)
}

func (s *solver) processGlobalReference(cc constraints.GlobalReference) (bool, error) {
	target := types.AbstractAny
	if t, ok := s.get(cc.Node); ok {
		target = t
	}
	candidates := filterMostSpecific(s.table.Lookup(cc.Name, target))
	if len(candidates) != 1 {
		return false, nil
	}
	s.refs[cc.NodeID] = candidates[0].Symbol
	candidate := candidates[0]
	if !candidate.Signature.ContainsGeneric() {
		return true, s.set(cc.Node, candidate.Signature)
	}
	unified, binds, err := types.Unify(candidate.Signature, target)
	if err != nil {
		return false, err
	}
	s.polyUses = append(s.polyUses, PolyUse{
		Node:      cc.NodeID,
		Symbol:    candidate.Symbol,
		Signature: unified,
		Binds:     binds,
	})
	return true, s.set(cc.Node, unified)
}

func (s *solver) conflictDiagnostic(c constraints.Constraint, err error) *werrors.Diagnostic {
	return werrors.New(werrors.PhaseInfer, werrors.TYP001, err.Error()).With("constraint", fmt.Sprintf("%T", c))
}

func (s *solver) stuckDiagnostic(c constraints.Constraint) *werrors.Diagnostic {
	switch cc := c.(type) {
	case constraints.FunctionCall:
		if cc.FunctionName != "" {
			return werrors.New(werrors.PhaseInfer, werrors.SYM003, fmt.Sprintf("ambiguous or unresolved overload for %q", cc.FunctionName))
		}
	case constraints.GlobalReference:
		return werrors.New(werrors.PhaseInfer, werrors.SYM002, fmt.Sprintf("no global named %q unifies with its use", cc.Name))
	}
	return werrors.New(werrors.PhaseInfer, werrors.TYP002, fmt.Sprintf("unresolved constraint %T", c))
}
