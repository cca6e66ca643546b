package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weavelang/weave/internal/sexpr"
	"github.com/weavelang/weave/internal/types"
)

func i64lit(v int64) sexpr.Expr {
	return sexpr.Lit(sexpr.Literal{Kind: sexpr.LitI64, Int: v})
}

func TestNewStoreRegistersIntrinsicsUnderReservedUnit(t *testing.T) {
	s := NewStore()
	sym, ok := s.GetFunction(s.IntrinsicsUnit(), "malloc")
	require.True(t, ok)
	require.NotZero(t, sym)

	// No units loaded yet, so nothing depends on the intrinsics unit.
	require.Empty(t, s.FindAllDependents(s.IntrinsicsUnit()))
}

func globalDefExpr(name string, typeName string, init sexpr.Expr) sexpr.Expr {
	return sexpr.Constructor("global-def", sexpr.Symbol(name), sexpr.Symbol(typeName), init)
}

func TestLoadExprAsModuleDefinesGlobalVisibleToLaterUnits(t *testing.T) {
	s := NewStore()

	gID, err := s.LoadExprAsModule(globalDefExpr("g", "i64", i64lit(5)), "producer", nil)
	require.NoError(t, err)

	sym, ok := s.GetFunction(gID, "g")
	require.True(t, ok)
	_ = sym

	consumerID, err := s.LoadExprAsModule(sexpr.Symbol("g"), "consumer", nil)
	require.NoError(t, err)

	consumer, ok := s.units[consumerID]
	require.True(t, ok)
	require.True(t, consumer.TypeMap.AllConcrete())
}

func TestLoadExprAsModuleNamedReplaceRemovesPriorAndItsDependents(t *testing.T) {
	s := NewStore()

	producerID, err := s.LoadExprAsModule(globalDefExpr("g", "i64", i64lit(5)), "producer", nil)
	require.NoError(t, err)

	consumerID, err := s.LoadExprAsModule(sexpr.Symbol("g"), "consumer", nil)
	require.NoError(t, err)

	deps := s.FindAllDependents(producerID)
	require.Contains(t, deps, consumerID)

	// Reloading "producer" under the same name must drop the old
	// producer unit and, transitively, "consumer" which depended on its
	// symbol (§4.7).
	newProducerID, err := s.LoadExprAsModule(globalDefExpr("g", "i64", i64lit(9)), "producer", nil)
	require.NoError(t, err)
	require.NotEqual(t, producerID, newProducerID)

	_, stillThere := s.units[consumerID]
	require.False(t, stillThere)
	_, producerStillThere := s.units[producerID]
	require.False(t, producerStillThere)

	got, ok := s.GetModule("producer")
	require.True(t, ok)
	require.Equal(t, newProducerID, got)
}

func TestUnloadModuleRemovesDependentsTransitively(t *testing.T) {
	s := NewStore()

	producerID, err := s.LoadExprAsModule(globalDefExpr("g", "i64", i64lit(1)), "producer", nil)
	require.NoError(t, err)
	consumerID, err := s.LoadExprAsModule(sexpr.Symbol("g"), "consumer", nil)
	require.NoError(t, err)

	s.UnloadModule(producerID)

	_, ok := s.units[producerID]
	require.False(t, ok)
	_, ok = s.units[consumerID]
	require.False(t, ok)
	_, ok = s.GetModule("producer")
	require.False(t, ok)
}

func TestLoadExprAsModuleFailureLeavesNoPartialState(t *testing.T) {
	s := NewStore()

	before := len(s.defs.Names())
	structDef := sexpr.Constructor("struct-def", sexpr.Symbol("Bad"),
		sexpr.Constructor("fields",
			sexpr.Constructor("field", sexpr.Symbol("x"), sexpr.Symbol("i64")),
		),
	)
	// A bogus field reference in the same unit makes the whole load
	// fail after the type def has already been registered by the
	// generator; the rollback must remove "Bad" from the shared table.
	badRef := sexpr.Constructor("field",
		sexpr.Constructor("ctor", sexpr.Symbol("Bad"),
			sexpr.Constructor("args", sexpr.Constructor("arg", sexpr.Symbol("x"), i64lit(1))),
		),
		sexpr.Symbol("nonexistent"),
	)

	_, err := s.loadLocked("", []sexpr.Expr{structDef, badRef}, "")
	require.Error(t, err)
	require.False(t, s.defs.Has("Bad"))
	require.Equal(t, before, len(s.defs.Names()))
}

func TestGetFunctionRejectsZeroOverloadCount(t *testing.T) {
	s := NewStore()
	_, ok := s.GetFunction(s.IntrinsicsUnit(), "does-not-exist")
	require.False(t, ok)
}

func TestLookupAndRegisterPolyInstanceRoundTrip(t *testing.T) {
	s := NewStore()
	sym, _ := s.GetFunction(s.IntrinsicsUnit(), "malloc")
	sig := types.Func([]types.Type{types.I64}, types.I64)

	_, _, ok := s.LookupPolyInstance(sym, sig)
	require.False(t, ok)

	instUnit, instSym := s.intrinsics, sym
	s.RegisterPolyInstance(sym, sig, instUnit, instSym)

	gotUnit, gotSym, ok := s.LookupPolyInstance(sym, sig)
	require.True(t, ok)
	require.Equal(t, instUnit, gotUnit)
	require.Equal(t, instSym, gotSym)
}
