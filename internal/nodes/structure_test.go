package nodes

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weavelang/weave/internal/sexpr"
)

func i64lit(v int64) sexpr.Expr {
	return sexpr.Lit(sexpr.Literal{Kind: sexpr.LitI64, Int: v})
}

func TestToNodesSimpleArithmeticCall(t *testing.T) {
	// 4 + 5, desugared to a call of the `+` global.
	call := sexpr.Constructor("call",
		sexpr.Symbol("+"),
		sexpr.Constructor("args",
			sexpr.Constructor("arg", sexpr.Symbol(""), i64lit(4)),
			sexpr.Constructor("arg", sexpr.Symbol(""), i64lit(5)),
		),
	)
	g, err := ToNodes([]sexpr.Expr{call})
	require.NoError(t, err)
	require.Len(t, g.TopLevel, 1)

	n, ok := g.Get(g.TopLevel[0])
	require.True(t, ok)
	fc, ok := n.(*FunctionCall)
	require.True(t, ok)
	require.Equal(t, "+", fc.Name)
	require.Len(t, fc.Args, 2)
}

func TestToNodesLetThenReferenceResolvesLocal(t *testing.T) {
	// let a = 4; a
	letStmt := sexpr.Constructor("let", sexpr.Symbol("a"), i64lit(4))
	refStmt := sexpr.Symbol("a")
	g, err := ToNodes([]sexpr.Expr{letStmt, refStmt})
	require.NoError(t, err)
	require.Len(t, g.TopLevel, 2)

	letNode := g.MustGet(g.TopLevel[0]).(*VariableInit)
	refNode := g.MustGet(g.TopLevel[1]).(*Reference)
	require.True(t, refNode.IsLocal)
	require.Equal(t, letNode.Symbol, refNode.Refers)
}

func TestToNodesBreakToUndeclaredLabelFails(t *testing.T) {
	breakStmt := sexpr.Constructor("break", sexpr.Symbol("missing"))
	_, err := ToNodes([]sexpr.Expr{breakStmt})
	require.Error(t, err)
}

func TestToNodesDuplicateStructDefFails(t *testing.T) {
	def := func() sexpr.Expr {
		return sexpr.Constructor("struct-def", sexpr.Symbol("P"),
			sexpr.Constructor("fields",
				sexpr.Constructor("field", sexpr.Symbol("x"), sexpr.Symbol("i64")),
			),
		)
	}
	_, err := ToNodes([]sexpr.Expr{def(), def()})
	require.Error(t, err)
}

func TestToNodesConstructorParsesNamedArgs(t *testing.T) {
	ctor := sexpr.Constructor("ctor", sexpr.Symbol("P"),
		sexpr.Constructor("args",
			sexpr.Constructor("arg", sexpr.Symbol("x"), i64lit(10)),
			sexpr.Constructor("arg", sexpr.Symbol("y"), i64lit(1)),
		),
	)
	g, err := ToNodes([]sexpr.Expr{ctor})
	require.NoError(t, err)
	c := g.MustGet(g.TopLevel[0]).(*Constructor)
	require.Equal(t, "P", c.TypeName)
	require.Len(t, c.Args, 2)
	require.Equal(t, "x", c.Args[0].Field)
}
