package infer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/nodes"
	"github.com/weavelang/weave/internal/sexpr"
	"github.com/weavelang/weave/internal/solver"
	"github.com/weavelang/weave/internal/types"
)

func untypedIntLit(v int64) sexpr.Expr {
	return sexpr.Lit(sexpr.Literal{Kind: sexpr.LitIntUntyped, Int: v})
}

// End-to-end scenario 1 of spec.md §8: `4 + 5` resolves to i64.
func TestRunArithmeticCallResolvesToI64(t *testing.T) {
	table := solver.NewMemoryTable()
	plusSym := mustRegisterIntrinsicPlus(t, table)

	call := sexpr.Constructor("call",
		sexpr.Symbol("+"),
		sexpr.Constructor("args",
			sexpr.Constructor("arg", sexpr.Symbol(""), untypedIntLit(4)),
			sexpr.Constructor("arg", sexpr.Symbol(""), untypedIntLit(5)),
		),
	)
	graph, err := nodes.ToNodes([]sexpr.Expr{call})
	require.NoError(t, err)

	defs := types.NewDefTable()
	tm, err := Run(graph, defs, table)
	require.NoError(t, err)

	callNode := graph.TopLevel[0]
	rt, ok := tm.TypeOf(callNode)
	require.True(t, ok)
	require.True(t, rt.Equals(types.I64))
	require.Equal(t, plusSym, tm.SymbolRefs[callNode])
	require.True(t, tm.AllConcrete())
}

// End-to-end scenario 3 of spec.md §8: struct field access and addition.
func TestRunStructFieldAccessAndAdditionResolvesToI64(t *testing.T) {
	table := solver.NewMemoryTable()
	mustRegisterIntrinsicPlus(t, table)

	structDef := sexpr.Constructor("struct-def", sexpr.Symbol("P"),
		sexpr.Constructor("fields",
			sexpr.Constructor("field", sexpr.Symbol("x"), sexpr.Symbol("i64")),
			sexpr.Constructor("field", sexpr.Symbol("y"), sexpr.Symbol("i64")),
		),
	)
	letA := sexpr.Constructor("let", sexpr.Symbol("a"),
		sexpr.Constructor("ctor", sexpr.Symbol("P"),
			sexpr.Constructor("args",
				sexpr.Constructor("arg", sexpr.Symbol("x"), untypedIntLit(10)),
				sexpr.Constructor("arg", sexpr.Symbol("y"), untypedIntLit(1)),
			),
		),
	)
	addXs := sexpr.Constructor("call", sexpr.Symbol("+"),
		sexpr.Constructor("args",
			sexpr.Constructor("arg", sexpr.Symbol(""),
				sexpr.Constructor("field", sexpr.Symbol("a"), sexpr.Symbol("x"))),
			sexpr.Constructor("arg", sexpr.Symbol(""), untypedIntLit(5)),
		),
	)

	graph, err := nodes.ToNodes([]sexpr.Expr{structDef, letA, addXs})
	require.NoError(t, err)

	defs := types.NewDefTable()
	tm, err := Run(graph, defs, table)
	require.NoError(t, err)
	require.True(t, tm.AllConcrete())

	addNode := graph.TopLevel[2]
	rt, ok := tm.TypeOf(addNode)
	require.True(t, ok)
	require.True(t, rt.Equals(types.I64))
}

func TestRunUnresolvedGlobalReferenceFails(t *testing.T) {
	graph, err := nodes.ToNodes([]sexpr.Expr{sexpr.Symbol("nowhere")})
	require.NoError(t, err)

	_, err = Run(graph, types.NewDefTable(), solver.NewMemoryTable())
	require.Error(t, err)
}

// mustRegisterIntrinsicPlus installs the `+` intrinsic as a single
// overload (i64,i64)->i64 — enough for the untyped-literal-defaulting
// path exercised by these tests.
func mustRegisterIntrinsicPlus(t *testing.T, table *solver.MemoryTable) ids.SymbolId {
	t.Helper()
	sym := ids.NewSymbol()
	require.NoError(t, table.Define("+", sym, types.Func([]types.Type{types.I64, types.I64}, types.I64)))
	return sym
}
