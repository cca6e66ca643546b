package types

import (
	"fmt"

	werrors "github.com/weavelang/weave/internal/errors"
)

// Unify combines two types per the lattice of §4.1:
//   - concrete = concrete -> equal or conflict
//   - class ∩ concrete -> concrete if contained, else conflict
//   - class ∩ class -> the smaller class
//   - generic G unifies with anything, binding G
//
// A successful unification returns the most specific resulting type and
// the generic bindings it produced (possibly empty). Grounded in the
// teacher's Unifier.Unify (internal/types/unification.go), adapted from
// a Hindley-Milner substitution map to this spec's narrower class
// lattice — there is no occurs check here because generics never
// self-reference (no recursive polymorphism across a single call site).
func Unify(a, b Type) (Type, map[string]Type, error) {
	binds := map[string]Type{}
	result, err := unify(a, b, binds)
	return result, binds, err
}

func unify(a, b Type, binds map[string]Type) (Type, error) {
	if a.Kind == KGeneric {
		return bindGeneric(a, b, binds)
	}
	if b.Kind == KGeneric {
		return bindGeneric(b, a, binds)
	}

	if a.Kind == KClass && b.Kind == KClass {
		return unifyClasses(a.Class, b.Class)
	}
	if a.Kind == KClass {
		return unifyClassConcrete(a.Class, b)
	}
	if b.Kind == KClass {
		return unifyClassConcrete(b.Class, a)
	}

	// concrete = concrete
	if a.Kind != b.Kind {
		return Type{}, conflict(a, b)
	}
	switch a.Kind {
	case KVoid, KBool:
		return a, nil
	case KInt:
		if a.Width == b.Width && a.Signed == b.Signed {
			return a, nil
		}
		return Type{}, conflict(a, b)
	case KFloat:
		if a.Width == b.Width {
			return a, nil
		}
		return Type{}, conflict(a, b)
	case KNamed:
		if a.Name == b.Name {
			return a, nil
		}
		return Type{}, conflict(a, b)
	case KPointer, KArray:
		elem, err := unify(*a.Elem, *b.Elem, binds)
		if err != nil {
			return Type{}, err
		}
		if a.Kind == KPointer {
			return Pointer(elem), nil
		}
		return Array(elem), nil
	case KFunc:
		if len(a.Args) != len(b.Args) {
			return Type{}, conflict(a, b)
		}
		args := make([]Type, len(a.Args))
		for i := range a.Args {
			u, err := unify(a.Args[i], b.Args[i], binds)
			if err != nil {
				return Type{}, err
			}
			args[i] = u
		}
		ret, err := unify(*a.Ret, *b.Ret, binds)
		if err != nil {
			return Type{}, err
		}
		return Func(args, ret), nil
	}
	return Type{}, conflict(a, b)
}

func bindGeneric(g, other Type, binds map[string]Type) (Type, error) {
	if existing, ok := binds[g.Generic]; ok {
		return unify(existing, other, binds)
	}
	binds[g.Generic] = other
	return other, nil
}

func unifyClasses(a, b Class) (Type, error) {
	// Any contains Integer and Float: the smaller class wins.
	order := map[Class]int{ClassInteger: 1, ClassFloat: 1, ClassAny: 2}
	if a == b {
		return Type{Kind: KClass, Class: a}, nil
	}
	if order[a] > order[b] {
		a, b = b, a
	}
	if b == ClassAny {
		return Type{Kind: KClass, Class: a}, nil
	}
	// Integer ∩ Float is empty: every concrete primitive belongs to at
	// most one of the two numeric classes.
	return Type{}, fmt.Errorf("%s: cannot unify class %s with class %s", werrors.TYP002, a, b)
}

func unifyClassConcrete(c Class, concrete Type) (Type, error) {
	if !concrete.IsConcrete() {
		return Type{}, fmt.Errorf("%s: expected concrete type, got %s", werrors.TYP002, concrete)
	}
	if ClassContains(c, concrete) {
		return concrete, nil
	}
	return Type{}, fmt.Errorf("%s: %s does not contain %s", werrors.TYP002, c, concrete)
}

func conflict(a, b Type) error {
	return &UnificationError{A: a, B: b}
}

// UnificationError carries both participating types so a diagnostic can
// report them verbatim (§7 "Type conflict").
type UnificationError struct {
	A, B Type
}

func (e *UnificationError) Error() string {
	return fmt.Sprintf("%s: cannot unify %s with %s", werrors.TYP001, e.A, e.B)
}

// ConversionKind distinguishes the explicit §4.2 "convert" construct
// from an implicit defaulting conversion; both are checked against the
// same policy table.
type ConversionKind int

const (
	ConvertExplicit ConversionKind = iota
	ConvertImplicit
)

// CanConvert implements the §4.2 conversion policy: pointer<->pointer,
// number<->number, pointer<->u64 (either direction), and an abstract
// class containing into any concrete member of that class.
func CanConvert(from, into Type) bool {
	if from.IsAbstract() {
		return ClassContains(from.Class, into)
	}
	if from.Kind == KPointer && into.Kind == KPointer {
		return true
	}
	if isNumber(from) && isNumber(into) {
		return true
	}
	if from.Kind == KPointer && into.Equals(U64) {
		return true
	}
	if from.Equals(U64) && into.Kind == KPointer {
		return true
	}
	return false
}

func isNumber(t Type) bool {
	return t.Kind == KInt || t.Kind == KFloat
}
