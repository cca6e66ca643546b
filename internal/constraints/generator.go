package constraints

import (
	"fmt"

	werrors "github.com/weavelang/weave/internal/errors"
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/nodes"
	"github.com/weavelang/weave/internal/sexpr"
	"github.com/weavelang/weave/internal/types"
)

// Result is everything the solver needs: the emitted constraints plus
// the node/symbol -> type-symbol maps so it can translate a solved
// binding back into a typemap.Map.
type Result struct {
	Constraints []Constraint
	NodeTS      map[ids.NodeId]TS
	SymbolTS    map[ids.SymbolId]TS
	// SizeOfTargets is resolved directly (no unification needed: a
	// size-of operand's type comes straight from its TypeExpr, modulo
	// whatever generic substitution the polymorphism driver already
	// applied before this generate run).
	SizeOfTargets map[ids.NodeId]types.Type
}

// Generator walks a node graph once, in the order described by §4.3,
// producing a Result. Grounded in the teacher's elaborate.Elaborator
// (internal/elaborate/elaborate.go) walk structure, rebuilt around this
// spec's Assert/Equivalent constraint grammar instead of dictionary
// elaboration.
type Generator struct {
	graph  *nodes.Graph
	defs   *types.DefTable
	ts     *tsAllocator
	labels map[ids.LabelId]TS
	result *Result
	// subs is nil for an ordinary whole-unit Generate run. A per-instance
	// GenerateInstance run sets it to the generic->concrete binding a
	// call site implied, so every TypeExpr the generic function's own
	// params/return/body reference resolves concretely instead of to a
	// bare Generic (§4.6).
	subs map[string]types.Type
}

func NewGenerator(graph *nodes.Graph, defs *types.DefTable) *Generator {
	return &Generator{
		graph:  graph,
		defs:   defs,
		ts:     newTSAllocator(),
		labels: make(map[ids.LabelId]TS),
		result: &Result{
			NodeTS:        make(map[ids.NodeId]TS),
			SymbolTS:      make(map[ids.SymbolId]TS),
			SizeOfTargets: make(map[ids.NodeId]types.Type),
		},
	}
}

// NewInstanceGenerator builds a Generator that resolves every TypeExpr
// through subs before use, for generating one concrete instantiation of
// a polymorphic function (internal/poly).
func NewInstanceGenerator(graph *nodes.Graph, defs *types.DefTable, subs map[string]types.Type) *Generator {
	g := NewGenerator(graph, defs)
	g.subs = subs
	return g
}

// resolveType resolves te, applying this generator's substitution (if
// any) to the result.
func (g *Generator) resolveType(te nodes.TypeExpr) types.Type {
	t := ResolveTypeExpr(te)
	if g.subs != nil {
		t = t.SubstituteGenerics(g.subs)
	}
	return t
}

// Generate registers this unit's type definitions into the shared,
// process-wide def table, then walks every top-level statement.
func (g *Generator) Generate() (*Result, error) {
	for name, td := range g.graph.TypeDefs {
		if g.defs.Has(name) {
			return nil, werrors.New(werrors.PhaseStructure, werrors.RDF001,
				fmt.Sprintf("type %q already defined", name))
		}
		fields := make([]types.Field, len(td.Fields))
		for i, f := range td.Fields {
			fields[i] = types.Field{Name: f.Name, Type: ResolveTypeExpr(f.Type)}
		}
		kind := types.DefStruct
		if td.Kind == nodes.TypeDefUnion {
			kind = types.DefUnion
		}
		g.defs.Put(&types.Def{Name: name, Kind: kind, Fields: fields})
	}

	for _, id := range g.graph.TopLevel {
		if _, err := g.node(id); err != nil {
			return nil, err
		}
	}

	return g.result, nil
}

func (g *Generator) emit(c Constraint) { g.result.Constraints = append(g.result.Constraints, c) }

func (g *Generator) assertVoid(ts TS) { g.emit(Assert{TS: ts, T: types.Void}) }

func (g *Generator) nodeTS(id ids.NodeId) TS {
	if ts, ok := g.result.NodeTS[id]; ok {
		return ts
	}
	ts := g.ts.node(id)
	g.result.NodeTS[id] = ts
	return ts
}

func (g *Generator) symbolTS(id ids.SymbolId) TS {
	if ts, ok := g.result.SymbolTS[id]; ok {
		return ts
	}
	ts := g.ts.symbol(id)
	g.result.SymbolTS[id] = ts
	return ts
}

// node generates constraints for id and returns its type symbol.
func (g *Generator) node(id ids.NodeId) (TS, error) {
	ts := g.nodeTS(id)
	n := g.graph.MustGet(id)

	switch v := n.(type) {
	case *nodes.Literal:
		g.emit(Assert{TS: ts, T: literalType(v.Value)})

	case *nodes.VariableInit:
		initTS, err := g.node(v.Init)
		if err != nil {
			return ts, err
		}
		symTS := g.symbolTS(v.Symbol)
		g.emit(Equivalent{A: symTS, B: initTS})
		g.assertVoid(ts)

	case *nodes.Assignment:
		targetTS, err := g.node(v.Target)
		if err != nil {
			return ts, err
		}
		valueTS, err := g.node(v.Value)
		if err != nil {
			return ts, err
		}
		g.emit(Equivalent{A: targetTS, B: valueTS})
		g.assertVoid(ts)

	case *nodes.If:
		condTS, err := g.node(v.Cond)
		if err != nil {
			return ts, err
		}
		g.emit(Assert{TS: condTS, T: types.Bool})
		if _, err := g.node(v.Then); err != nil {
			return ts, err
		}
		g.assertVoid(ts)

	case *nodes.IfElse:
		condTS, err := g.node(v.Cond)
		if err != nil {
			return ts, err
		}
		g.emit(Assert{TS: condTS, T: types.Bool})
		thenTS, err := g.node(v.Then)
		if err != nil {
			return ts, err
		}
		elseTS, err := g.node(v.Else)
		if err != nil {
			return ts, err
		}
		g.emit(Equivalent{A: thenTS, B: elseTS})
		g.emit(Equivalent{A: ts, B: thenTS})

	case *nodes.Block:
		var last TS
		hasLast := false
		for _, stmt := range v.Statements {
			stmtTS, err := g.node(stmt)
			if err != nil {
				return ts, err
			}
			last, hasLast = stmtTS, true
		}
		if hasLast {
			g.emit(Equivalent{A: ts, B: last})
		} else {
			g.assertVoid(ts)
		}

	case *nodes.Quote:
		g.emit(Assert{TS: ts, T: quoteType()})

	case *nodes.Reference:
		if v.IsLocal {
			g.emit(Equivalent{A: ts, B: g.symbolTS(v.Refers)})
		} else {
			g.emit(GlobalReference{Node: ts, NodeID: id, Name: v.Name})
		}

	case *nodes.FunctionDef:
		var args []FunctionDefArg
		for i, p := range v.Params {
			argTS := g.symbolTS(p.Symbol)
			g.emit(Assert{TS: argTS, T: g.resolveType(v.ParamTypes[i])})
			args = append(args, FunctionDefArg{Symbol: p.Symbol, TS: argTS})
		}
		returnTS := g.ts.fresh()
		g.emit(Assert{TS: returnTS, T: g.resolveType(v.ReturnType)})

		bodyTS, err := g.node(v.Body)
		if err != nil {
			return ts, err
		}
		g.emit(Equivalent{A: bodyTS, B: returnTS})

		g.emit(FunctionDef{
			Name: v.Name, Symbol: v.Symbol, Args: args, ReturnTS: returnTS,
			Generics: v.Generics, Body: v.Body, Loc: v.Span(),
		})
		g.assertVoid(ts)

	case *nodes.CBind:
		var args []FunctionDefArg
		for _, pt := range v.ParamTypes {
			argTS := g.ts.fresh()
			g.emit(Assert{TS: argTS, T: g.resolveType(pt)})
			args = append(args, FunctionDefArg{TS: argTS})
		}
		returnTS := g.ts.fresh()
		g.emit(Assert{TS: returnTS, T: g.resolveType(v.ReturnType)})
		g.emit(FunctionDef{Name: v.Name, Symbol: v.Symbol, Args: args, ReturnTS: returnTS})
		g.assertVoid(ts)

	case *nodes.GlobalDef:
		symTS := g.symbolTS(v.Symbol)
		g.emit(Assert{TS: symTS, T: g.resolveType(v.Type)})
		initTS, err := g.node(v.Init)
		if err != nil {
			return ts, err
		}
		g.emit(Equivalent{A: symTS, B: initTS})
		g.emit(GlobalDef{Name: v.Name, Symbol: v.Symbol, TS: symTS})
		g.assertVoid(ts)

	case *nodes.TypeDef:
		g.assertVoid(ts)

	case *nodes.Constructor:
		var args []FieldArg
		for _, a := range v.Args {
			argTS, err := g.node(a.Value)
			if err != nil {
				return ts, err
			}
			args = append(args, FieldArg{Field: a.Field, TS: argTS})
		}
		g.emit(Constructor{TypeName: v.TypeName, Args: args, Result: ts, Node: id})

	case *nodes.FieldAccess:
		containerTS, err := g.node(v.Container)
		if err != nil {
			return ts, err
		}
		g.emit(FieldAccess{Container: containerTS, Field: v.Field, Result: ts, Node: id})

	case *nodes.ArrayLiteral:
		elemTS := g.ts.fresh()
		for _, e := range v.Elements {
			eTS, err := g.node(e)
			if err != nil {
				return ts, err
			}
			g.emit(Equivalent{A: elemTS, B: eTS})
		}
		g.emit(Array{Arr: ts, Elem: elemTS})

	case *nodes.FunctionCall:
		var args []CallArg
		for _, a := range v.Args {
			aTS, err := g.node(a.Value)
			if err != nil {
				return ts, err
			}
			args = append(args, CallArg{Name: a.Name, TS: aTS})
		}
		fc := FunctionCall{Node: id, Args: args, Result: ts}
		if v.Name != "" {
			fc.FunctionName = v.Name
		} else {
			calleeTS, err := g.node(v.Callee)
			if err != nil {
				return ts, err
			}
			fc.FunctionTS = calleeTS
		}
		g.emit(fc)

	case *nodes.While:
		condTS, err := g.node(v.Cond)
		if err != nil {
			return ts, err
		}
		g.emit(Assert{TS: condTS, T: types.Bool})
		if _, err := g.node(v.Body); err != nil {
			return ts, err
		}
		g.assertVoid(ts)

	case *nodes.Convert:
		valTS, err := g.node(v.Value)
		if err != nil {
			return ts, err
		}
		intoTS := g.ts.fresh()
		g.emit(Assert{TS: intoTS, T: g.resolveType(v.Into)})
		g.emit(Convert{Val: valTS, Into: intoTS, Node: id})
		g.emit(Equivalent{A: ts, B: intoTS})

	case *nodes.SizeOf:
		g.emit(Assert{TS: ts, T: types.U64})
		g.result.SizeOfTargets[id] = g.resolveType(v.Of)

	case *nodes.Label:
		labelTS := g.ts.fresh()
		g.labels[v.ID] = labelTS
		bodyTS, err := g.node(v.Body)
		if err != nil {
			return ts, err
		}
		g.emit(Equivalent{A: labelTS, B: bodyTS})
		g.emit(Equivalent{A: ts, B: labelTS})

	case *nodes.BreakToLabel:
		labelTS, ok := g.labels[v.Label]
		if !ok {
			return ts, werrors.New(werrors.PhaseStructure, werrors.STR003, "break to a label outside its scope")
		}
		if v.Value != (ids.NodeId{}) {
			valTS, err := g.node(v.Value)
			if err != nil {
				return ts, err
			}
			g.emit(Equivalent{A: labelTS, B: valTS})
		} else {
			g.emit(Assert{TS: labelTS, T: types.Void})
		}
		g.assertVoid(ts)

	default:
		return ts, fmt.Errorf("constraints: unhandled node type %T", n)
	}

	return ts, nil
}

// GenerateInstance generates constraints for one concrete instantiation
// of a polymorphic function definition fd, the §4.6 "per-instantiation
// generate+solve run" ResolveTypeExpr's doc comment anticipates. It
// resolves fd's param/return TypeExprs (and every TypeExpr its body
// reaches, via resolveType) through this generator's subs, and emits
// the resulting FunctionDef constraint under instanceSymbol rather than
// fd's own template symbol so solver.processFunctionDef registers a
// fresh, fully concrete overload instead of redefining the template.
// Call this only on a Generator built with NewInstanceGenerator.
func (g *Generator) GenerateInstance(fd *nodes.FunctionDef, instanceSymbol ids.SymbolId) (*Result, error) {
	var args []FunctionDefArg
	for i, p := range fd.Params {
		argTS := g.symbolTS(p.Symbol)
		g.emit(Assert{TS: argTS, T: g.resolveType(fd.ParamTypes[i])})
		args = append(args, FunctionDefArg{Symbol: p.Symbol, TS: argTS})
	}
	returnTS := g.ts.fresh()
	g.emit(Assert{TS: returnTS, T: g.resolveType(fd.ReturnType)})

	bodyTS, err := g.node(fd.Body)
	if err != nil {
		return nil, err
	}
	g.emit(Equivalent{A: bodyTS, B: returnTS})

	g.emit(FunctionDef{
		Name: fd.Name, Symbol: instanceSymbol, Args: args, ReturnTS: returnTS,
		Body: fd.Body, Loc: fd.Span(),
	})

	return g.result, nil
}

// literalType gives a sexpr.Literal its static type (§4.2). Bare numeric
// literals with no width suffix are asserted against the abstract
// Integer/Float class rather than a concrete width, so defaulting (§4.1)
// only fires if nothing else narrows them. String literals have no
// native primitive in this type system; they carry the C-string
// convention pointer(u8).
func literalType(l sexpr.Literal) types.Type {
	switch l.Kind {
	case sexpr.LitBool:
		return types.Bool
	case sexpr.LitI8:
		return types.I8
	case sexpr.LitI16:
		return types.I16
	case sexpr.LitI32:
		return types.I32
	case sexpr.LitI64:
		return types.I64
	case sexpr.LitU8:
		return types.U8
	case sexpr.LitU16:
		return types.U16
	case sexpr.LitU32:
		return types.U32
	case sexpr.LitU64:
		return types.U64
	case sexpr.LitF32:
		return types.F32
	case sexpr.LitF64:
		return types.F64
	case sexpr.LitString:
		return types.Pointer(types.U8)
	case sexpr.LitVoid:
		return types.Void
	case sexpr.LitIntUntyped:
		return types.AbstractInteger
	case sexpr.LitFloatUntyped:
		return types.AbstractFloat
	}
	return types.Void
}

// quoteType is the static type of a Quote node: a pointer to the
// builtin opaque "Expr" named type registered in the shared def table
// at store bootstrap time (§6 quoting has no type of its own in §3's
// Type enum).
func quoteType() types.Type { return types.Pointer(types.Named("Expr")) }
