package constraints

import "github.com/weavelang/weave/internal/nodes"
import "github.com/weavelang/weave/internal/types"

var primitiveNames = map[string]types.Type{
	"void": types.Void, "bool": types.Bool,
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64,
	"f32": types.F32, "f64": types.F64,
}

// ResolveTypeExpr converts the syntactic TypeExpr produced by the
// structure pass into a types.Type, leaving generic variables unbound
// (they are substituted by the polymorphism driver, §4.6, before a
// per-instantiation generate+solve run).
func ResolveTypeExpr(te nodes.TypeExpr) types.Type {
	switch te.Kind {
	case nodes.TypeExprGeneric:
		return types.Generic(te.Name)
	case nodes.TypeExprPrimitiveOrNamed:
		if t, ok := primitiveNames[te.Name]; ok {
			return t
		}
		return types.Named(te.Name)
	case nodes.TypeExprPointer:
		return types.Pointer(ResolveTypeExpr(*te.Elem))
	case nodes.TypeExprArray:
		return types.Array(ResolveTypeExpr(*te.Elem))
	case nodes.TypeExprFunc:
		args := make([]types.Type, len(te.Args))
		for i, a := range te.Args {
			args[i] = ResolveTypeExpr(a)
		}
		return types.Func(args, ResolveTypeExpr(*te.Ret))
	}
	return types.Void
}
