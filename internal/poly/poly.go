// Package poly implements the polymorphism driver of spec.md §4.6: once
// a unit's own type mapping is solved, every call site it made against
// a generic function definition is recorded in its TypeMap.PolyRefs
// rather than resolved to a concrete symbol. This package walks those
// refs to a fixpoint, materializing one concrete, fully-typed instance
// of each distinct (template, signature) pair and redirecting its call
// site at that instance — so that by the time a unit is handed to
// codegen, every symbol reference it carries is concrete.
//
// Grounded in the teacher's internal/elaborate monomorphization pass
// (the closest analogue the teacher has to per-call-site generic
// specialization), rebuilt around this store's Assert/Equivalent
// constraint solver instead of dictionary-based elaboration.
package poly

import (
	"fmt"

	"github.com/weavelang/weave/internal/constraints"
	werrors "github.com/weavelang/weave/internal/errors"
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/store"
	"github.com/weavelang/weave/internal/typemap"
)

// Driver implements store.PolyResolver. One Driver is wired into one
// Store for the store's lifetime, via store.Store.SetPolyResolver.
type Driver struct {
	store *store.Store
}

func NewDriver(s *store.Store) *Driver {
	return &Driver{store: s}
}

// pendingUse is one queued (caller unit, call-site node, resolved
// template ref) the BFS still needs to settle.
type pendingUse struct {
	caller ids.UnitId
	ref    typemap.PolyRef
}

// Resolve implements store.PolyResolver. It is called once per
// successfully loaded unit, with the lock that protected the load
// already released (see store.Store.LoadModule) — every store call
// Resolve makes below is an ordinary, independently-locked call.
func (d *Driver) Resolve(unit ids.UnitId) error {
	_, tm, ok := d.store.UnitGraph(unit)
	if !ok || len(tm.PolyRefs) == 0 {
		return nil
	}

	queue := make([]pendingUse, 0, len(tm.PolyRefs))
	for _, pr := range tm.PolyRefs {
		queue = append(queue, pendingUse{caller: unit, ref: pr})
	}

	// inProgress guards against infinite instantiation of a
	// self-recursive polymorphic function: the signature key is marked
	// before GenerateInstance/LoadInstance run, so if generating that
	// instance's own body turns up a call back to the same (template,
	// signature) pair — the only way that can happen before the
	// instance is registered — the re-entrant use is left unresolved
	// rather than recursing forever. A recorded PolyRef whose call site
	// never gets patched this way will surface downstream as an
	// unresolved-symbol error from whatever consumes the redirected
	// SymbolRefs (codegen), which is an honest failure rather than a
	// silent one.
	inProgress := make(map[string]bool)

	for len(queue) > 0 {
		use := queue[0]
		queue = queue[1:]

		pr := use.ref
		if pr.Signature.ContainsGeneric() {
			// Binds didn't cover every generic in the template's
			// signature (e.g. a generic that appears only in the return
			// type of a zero-argument call, with no surrounding context
			// to pin it down). Nothing more this driver can do with it.
			continue
		}
		key := pr.Symbol.String() + "|" + pr.Signature.String()

		if instUnit, instSym, ok := d.store.LookupPolyInstance(pr.Symbol, pr.Signature); ok {
			d.patch(use.caller, pr, instSym)
			d.enqueueFrom(instUnit, &queue)
			continue
		}
		if inProgress[key] {
			continue
		}
		inProgress[key] = true

		fd, graph, ok := d.store.FindFunctionDef(pr.Symbol)
		if !ok {
			return werrors.New(werrors.PhasePoly, werrors.GEN001,
				fmt.Sprintf("no definition found for polymorphic symbol used with signature %s", pr.Signature))
		}

		instanceSymbol := ids.NewSymbol()
		gen := constraints.NewInstanceGenerator(graph, d.store.Defs(), pr.Binds)
		result, err := gen.GenerateInstance(fd, instanceSymbol)
		if err != nil {
			return err
		}
		instUnit, err := d.store.LoadInstance(graph, result)
		if err != nil {
			return err
		}
		d.store.RegisterPolyInstance(pr.Symbol, pr.Signature, instUnit, instanceSymbol)
		d.patch(use.caller, pr, instanceSymbol)
		d.enqueueFrom(instUnit, &queue)
	}

	return nil
}

// patch redirects pr's call-site node to sym with pr's concrete return
// type.
func (d *Driver) patch(caller ids.UnitId, pr typemap.PolyRef, sym ids.SymbolId) {
	d.store.PatchSymbolRef(caller, pr.Node, sym, *pr.Signature.Ret)
}

// enqueueFrom reads a newly materialized instance's own PolyRefs (its
// body may itself call another polymorphic function) and queues them,
// tagged with that instance as their caller, continuing the BFS to a
// fixpoint.
func (d *Driver) enqueueFrom(unit ids.UnitId, queue *[]pendingUse) {
	_, tm, ok := d.store.UnitGraph(unit)
	if !ok {
		return
	}
	for _, pr := range tm.PolyRefs {
		*queue = append(*queue, pendingUse{caller: unit, ref: pr})
	}
}
