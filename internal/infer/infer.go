// Package infer wires the constraint generator (internal/constraints) to
// the solver (internal/solver), turning a unit's node graph into a
// typemap.Map per spec.md §2: "runs the constraint generator and solver
// against the code store."
package infer

import (
	werrors "github.com/weavelang/weave/internal/errors"
	"github.com/weavelang/weave/internal/constraints"
	"github.com/weavelang/weave/internal/nodes"
	"github.com/weavelang/weave/internal/solver"
	"github.com/weavelang/weave/internal/typemap"
	"github.com/weavelang/weave/internal/types"
)

// Run generates and solves constraints for graph, returning the unit's
// type mapping. defs is the process-wide struct/union namespace; table
// is the process-wide symbol namespace that FunctionDef/GlobalDef
// register into and FunctionCall/GlobalReference look up against — both
// shared across every unit in the code store.
func Run(graph *nodes.Graph, defs *types.DefTable, table solver.SymbolTable) (*typemap.Map, error) {
	gen := constraints.NewGenerator(graph, defs)
	result, err := gen.Generate()
	if err != nil {
		return nil, err
	}
	return FromGenerated(graph, result, table, defs)
}

// FromGenerated solves an already-generated constraints.Result and
// builds the resulting typemap.Map. internal/poly reuses this directly
// to solve a polymorphic function's per-instance constraint set, which
// it generates itself via constraints.Generator.GenerateInstance rather
// than through Run's ordinary whole-unit Generate call.
func FromGenerated(graph *nodes.Graph, result *constraints.Result, table solver.SymbolTable, defs *types.DefTable) (*typemap.Map, error) {
	sol, err := solver.Solve(result.Constraints, table, defs)
	if err != nil {
		return nil, err
	}

	tm := typemap.New()
	for node, ts := range result.NodeTS {
		t, ok := sol.TypeOf(ts)
		if !ok {
			span := graph.MustGet(node).Span()
			return nil, werrors.New(werrors.PhaseInfer, werrors.TYP002,
				"node did not resolve to a type").
				At(werrors.Span{Source: span.Source.String(), Start: span.Start, End: span.End})
		}
		// A node whose type still mentions a generic belongs to a
		// polymorphic function's own template body — ResolveTypeExpr
		// (internal/constraints/typeexpr.go) deliberately leaves those
		// unbound here. It has no concrete type until the polymorphism
		// driver (internal/poly) substitutes a call site's argument
		// types and reruns Generate+Solve against the specialized copy,
		// so it's left out of this unit's type mapping rather than
		// failing invariant 1.
		if t.Kind == types.KGeneric || t.ContainsGeneric() {
			continue
		}
		if t.IsAbstract() {
			span := graph.MustGet(node).Span()
			return nil, werrors.New(werrors.PhaseInfer, werrors.TYP002,
				"node did not resolve to a concrete type").
				At(werrors.Span{Source: span.Source.String(), Start: span.Start, End: span.End})
		}
		tm.SetType(node, t)
	}
	for node, target := range result.SizeOfTargets {
		tm.SizeOfTargets[node] = target
	}
	for node, sym := range sol.References {
		tm.SetSymbol(node, sym)
	}
	for _, use := range sol.PolyUses {
		tm.AddPolyRef(use.Node, use.Symbol, use.Signature, use.Binds)
	}

	return tm, nil
}
