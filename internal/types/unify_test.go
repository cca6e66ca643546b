package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifyConcreteEqual(t *testing.T) {
	result, _, err := Unify(I64, I64)
	require.NoError(t, err)
	require.True(t, result.Equals(I64))
}

func TestUnifyConcreteConflict(t *testing.T) {
	_, _, err := Unify(I64, Bool)
	require.Error(t, err)
	var uerr *UnificationError
	require.ErrorAs(t, err, &uerr)
}

func TestUnifyClassConcrete(t *testing.T) {
	result, _, err := Unify(AbstractInteger, U32)
	require.NoError(t, err)
	require.True(t, result.Equals(U32))

	_, _, err = Unify(AbstractInteger, Bool)
	require.Error(t, err)
}

func TestUnifyClassClass(t *testing.T) {
	result, _, err := Unify(AbstractAny, AbstractInteger)
	require.NoError(t, err)
	require.Equal(t, ClassInteger, result.Class)

	_, _, err = Unify(AbstractInteger, AbstractFloat)
	require.Error(t, err)
}

func TestUnifyGenericBinds(t *testing.T) {
	g := Generic("G")
	result, binds, err := Unify(g, I64)
	require.NoError(t, err)
	require.True(t, result.Equals(I64))
	require.True(t, binds["G"].Equals(I64))
}

func TestUnifyPointerStructural(t *testing.T) {
	result, _, err := Unify(Pointer(I64), Pointer(I64))
	require.NoError(t, err)
	require.True(t, result.Equals(Pointer(I64)))

	_, _, err = Unify(Pointer(I64), Pointer(Bool))
	require.Error(t, err)
}

func TestUnifyNamedByNameNotByStructure(t *testing.T) {
	// Cyclic type references (spec.md §9) are broken by comparing named
	// types by name, never unfolding their field list.
	result, _, err := Unify(Named("tree"), Named("tree"))
	require.NoError(t, err)
	require.Equal(t, "tree", result.Name)
}

func TestUnifySignaturesPointwise(t *testing.T) {
	sigA := Func([]Type{I64, Bool}, Void)
	sigB := Func([]Type{I64, Bool}, Void)
	_, _, err := Unify(sigA, sigB)
	require.NoError(t, err)

	sigC := Func([]Type{I64, I64}, Void)
	_, _, err = Unify(sigA, sigC)
	require.Error(t, err)
}

func TestDefaultingBoundaries(t *testing.T) {
	d, ok := ClassInteger.Default()
	require.True(t, ok)
	require.True(t, d.Equals(I64))

	d, ok = ClassFloat.Default()
	require.True(t, ok)
	require.True(t, d.Equals(F64))

	_, ok = ClassAny.Default()
	require.False(t, ok, "Any has no concrete default; it must become a diagnostic")
}

func TestConversionPolicyBoundaries(t *testing.T) {
	require.True(t, CanConvert(U32, I64))
	require.True(t, CanConvert(I32, U32))
	require.True(t, CanConvert(Pointer(I64), U64))
	require.True(t, CanConvert(U64, Pointer(I64)))
	require.False(t, CanConvert(Bool, I64))
}

func TestContainsGeneric(t *testing.T) {
	require.True(t, Func([]Type{Generic("G")}, Void).ContainsGeneric())
	require.False(t, Func([]Type{I64}, Void).ContainsGeneric())
}
