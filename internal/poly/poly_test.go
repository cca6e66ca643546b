package poly

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weavelang/weave/internal/sexpr"
	"github.com/weavelang/weave/internal/store"
)

func i64lit(v int64) sexpr.Expr {
	return sexpr.Lit(sexpr.Literal{Kind: sexpr.LitI64, Int: v})
}

func f64lit(v float64) sexpr.Expr {
	return sexpr.Lit(sexpr.Literal{Kind: sexpr.LitF64, Float: v})
}

// identityDef builds `fn identity[T](x T) T { x }`.
func identityDef() sexpr.Expr {
	return sexpr.Constructor("fn",
		sexpr.Symbol("identity"),
		sexpr.Constructor("generics", sexpr.Symbol("T")),
		sexpr.Constructor("params",
			sexpr.Constructor("param", sexpr.Symbol("x"), sexpr.Symbol("T")),
		),
		sexpr.Symbol("T"),
		sexpr.Symbol("x"),
	)
}

func callIdentity(arg sexpr.Expr) sexpr.Expr {
	return sexpr.Constructor("call",
		sexpr.Symbol("identity"),
		sexpr.Constructor("args",
			sexpr.Constructor("arg", sexpr.Symbol(""), arg),
		),
	)
}

func newResolvedStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.NewStore()
	s.SetPolyResolver(NewDriver(s))
	return s
}

func TestResolveRedirectsCallSiteToConcreteInstance(t *testing.T) {
	s := newResolvedStore(t)

	templateUnit, err := s.LoadExprAsModule(identityDef(), "generics_lib", nil)
	require.NoError(t, err)
	templateSym, ok := s.GetFunction(templateUnit, "identity")
	require.True(t, ok)

	callerID, err := s.LoadExprAsModule(callIdentity(i64lit(7)), "call_i64", nil)
	require.NoError(t, err)

	callerGraph, callerTM, ok := s.UnitGraph(callerID)
	require.True(t, ok)
	callNode := callerGraph.TopLevel[0]

	resolvedSym, ok := callerTM.SymbolRefs[callNode]
	require.True(t, ok)
	require.NotEqual(t, templateSym, resolvedSym, "call site must be redirected to a concrete instance, not the template")

	resolvedType, ok := callerTM.TypeOf(callNode)
	require.True(t, ok)
	require.True(t, resolvedType.IsConcrete())
	require.Equal(t, "i64", resolvedType.String())
}

func TestResolveReusesInstanceAcrossCallSitesWithSameSignature(t *testing.T) {
	s := newResolvedStore(t)

	_, err := s.LoadExprAsModule(identityDef(), "generics_lib", nil)
	require.NoError(t, err)

	firstCallerID, err := s.LoadExprAsModule(callIdentity(i64lit(1)), "call_i64_a", nil)
	require.NoError(t, err)
	secondCallerID, err := s.LoadExprAsModule(callIdentity(i64lit(2)), "call_i64_b", nil)
	require.NoError(t, err)

	firstGraph, firstTM, ok := s.UnitGraph(firstCallerID)
	require.True(t, ok)
	secondGraph, secondTM, ok := s.UnitGraph(secondCallerID)
	require.True(t, ok)

	firstSym := firstTM.SymbolRefs[firstGraph.TopLevel[0]]
	secondSym := secondTM.SymbolRefs[secondGraph.TopLevel[0]]

	// PT3: at most one instance per distinct (template, signature) pair —
	// two call sites with the same concrete signature share the instance.
	require.NotZero(t, firstSym)
	require.Equal(t, firstSym, secondSym)
}

func TestResolveMaterializesSeparateInstancesForDifferentConcreteTypes(t *testing.T) {
	s := newResolvedStore(t)

	_, err := s.LoadExprAsModule(identityDef(), "generics_lib", nil)
	require.NoError(t, err)

	i64CallerID, err := s.LoadExprAsModule(callIdentity(i64lit(1)), "call_i64", nil)
	require.NoError(t, err)
	f64CallerID, err := s.LoadExprAsModule(callIdentity(f64lit(1.5)), "call_f64", nil)
	require.NoError(t, err)

	i64Graph, i64TM, ok := s.UnitGraph(i64CallerID)
	require.True(t, ok)
	f64Graph, f64TM, ok := s.UnitGraph(f64CallerID)
	require.True(t, ok)

	i64Sym := i64TM.SymbolRefs[i64Graph.TopLevel[0]]
	f64Sym := f64TM.SymbolRefs[f64Graph.TopLevel[0]]
	require.NotEqual(t, i64Sym, f64Sym)

	i64Type, ok := i64TM.TypeOf(i64Graph.TopLevel[0])
	require.True(t, ok)
	f64Type, ok := f64TM.TypeOf(f64Graph.TopLevel[0])
	require.True(t, ok)
	require.Equal(t, "i64", i64Type.String())
	require.Equal(t, "f64", f64Type.String())
}
