package nodes

import (
	"fmt"

	werrors "github.com/weavelang/weave/internal/errors"
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/sexpr"
)

// scope is one lexical level of local bindings. Lookup walks outward
// through enclosing scopes; a function body starts a fresh scope so
// inner symbols never leak into the caller (§4.3 "Scope for a function
// body is isolated").
type scope struct {
	parent *scope
	names  map[string]ids.SymbolId
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]ids.SymbolId)}
}

func (s *scope) lookup(name string) (ids.SymbolId, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.names[name]; ok {
			return id, true
		}
	}
	return ids.SymbolId{}, false
}

func (s *scope) bind(name string) ids.SymbolId {
	id := ids.NewSymbol()
	s.names[name] = id
	return id
}

// labelFrame tracks an enclosing Label so break-to-label can resolve by
// name (§4.2 "label, break-to-label").
type labelFrame struct {
	parent *labelFrame
	name   string
	id     ids.LabelId
}

func (f *labelFrame) find(name string) (ids.LabelId, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.id, true
		}
	}
	return ids.LabelId{}, false
}

// Structurer lowers a parsed sexpr.Expr into a node Graph, resolving
// lexical scope and rejecting malformed forms (§4.2). One Structurer is
// used per unit.
type Structurer struct {
	graph   *Graph
	scope   *scope
	labels  *labelFrame
	generics map[string]bool // generic names in scope for the current function
}

func NewStructurer() *Structurer {
	return &Structurer{graph: NewGraph(), scope: newScope(nil)}
}

// ToNodes lowers a top-level program: a sequence of statements wrapped
// implicitly into the unit's top-level function (§6). Grounded in the
// original prototype's `structure::to_nodes` entry point.
func ToNodes(top []sexpr.Expr) (*Graph, error) {
	s := NewStructurer()
	for _, e := range top {
		id, err := s.statement(e)
		if err != nil {
			return nil, err
		}
		s.graph.TopLevel = append(s.graph.TopLevel, id)
	}
	return s.graph, nil
}

func (s *Structurer) newNode() Base {
	return Base{NodeID: ids.NewNode()}
}

func strErr(code, msg string) error {
	return werrors.New(werrors.PhaseStructure, code, msg)
}

// statement lowers one top-level-or-block-level form. Most forms are
// also valid in expression position; a handful (type/function
// definitions) are statement-only and return void.
func (s *Structurer) statement(e sexpr.Expr) (ids.NodeId, error) {
	switch e.Tag {
	case sexpr.TagConstructor:
		switch e.Head {
		case "let":
			return s.variableInit(e)
		case "assign":
			return s.assignment(e)
		case "fn":
			return s.functionDef(e)
		case "cbind":
			return s.cbind(e)
		case "global-def":
			return s.globalDef(e)
		case "struct-def":
			return s.typeDef(e, TypeDefStruct)
		case "union-def":
			return s.typeDef(e, TypeDefUnion)
		case "label":
			return s.label(e)
		case "break":
			return s.breakTo(e)
		}
	}
	return s.expression(e)
}

// expression lowers a form usable as a value.
func (s *Structurer) expression(e sexpr.Expr) (ids.NodeId, error) {
	switch e.Tag {
	case sexpr.TagLiteral:
		return s.graph.Add(&Literal{Base: s.newNode(), Value: e.Literal}), nil
	case sexpr.TagSymbol:
		return s.reference(e.Symbol), nil
	case sexpr.TagConstructor:
		switch e.Head {
		case "block":
			return s.block(e)
		case "if":
			return s.ifExpr(e)
		case "if-else":
			return s.ifElseExpr(e)
		case "while":
			return s.whileExpr(e)
		case "quote":
			return s.quote(e)
		case "ctor":
			return s.constructor(e)
		case "field":
			return s.fieldAccess(e)
		case "array":
			return s.arrayLiteral(e)
		case "call":
			return s.call(e)
		case "convert":
			return s.convert(e)
		case "sizeof":
			return s.sizeOf(e)
		default:
			return ids.NodeId{}, strErr(werrors.STR001, fmt.Sprintf("unknown constructor head %q", e.Head))
		}
	}
	return ids.NodeId{}, strErr(werrors.STR001, "malformed expression")
}

func (s *Structurer) reference(name string) ids.NodeId {
	if sym, ok := s.scope.lookup(name); ok {
		return s.graph.Add(&Reference{Base: s.newNode(), Name: name, Refers: sym, IsLocal: true})
	}
	return s.graph.Add(&Reference{Base: s.newNode(), Name: name, IsLocal: false})
}

func (s *Structurer) variableInit(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 || e.Children[0].Tag != sexpr.TagSymbol {
		return ids.NodeId{}, strErr(werrors.STR002, "let requires (name, init)")
	}
	name := e.Children[0].Symbol
	initID, err := s.expression(e.Children[1])
	if err != nil {
		return ids.NodeId{}, err
	}
	sym := s.scope.bind(name)
	return s.graph.Add(&VariableInit{Base: s.newNode(), Symbol: sym, Name: name, Init: initID}), nil
}

func (s *Structurer) assignment(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 {
		return ids.NodeId{}, strErr(werrors.STR002, "assign requires (target, value)")
	}
	target, err := s.expression(e.Children[0])
	if err != nil {
		return ids.NodeId{}, err
	}
	value, err := s.expression(e.Children[1])
	if err != nil {
		return ids.NodeId{}, err
	}
	return s.graph.Add(&Assignment{Base: s.newNode(), Target: target, Value: value}), nil
}

func (s *Structurer) block(e sexpr.Expr) (ids.NodeId, error) {
	s.scope = newScope(s.scope)
	defer func() { s.scope = s.scope.parent }()

	stmts := make([]ids.NodeId, 0, len(e.Children))
	for _, c := range e.Children {
		id, err := s.statement(c)
		if err != nil {
			return ids.NodeId{}, err
		}
		stmts = append(stmts, id)
	}
	return s.graph.Add(&Block{Base: s.newNode(), Statements: stmts}), nil
}

func (s *Structurer) ifExpr(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 {
		return ids.NodeId{}, strErr(werrors.STR002, "if requires (cond, then)")
	}
	cond, err := s.expression(e.Children[0])
	if err != nil {
		return ids.NodeId{}, err
	}
	then, err := s.expression(e.Children[1])
	if err != nil {
		return ids.NodeId{}, err
	}
	return s.graph.Add(&If{Base: s.newNode(), Cond: cond, Then: then}), nil
}

func (s *Structurer) ifElseExpr(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 3 {
		return ids.NodeId{}, strErr(werrors.STR002, "if-else requires (cond, then, else)")
	}
	cond, err := s.expression(e.Children[0])
	if err != nil {
		return ids.NodeId{}, err
	}
	then, err := s.expression(e.Children[1])
	if err != nil {
		return ids.NodeId{}, err
	}
	els, err := s.expression(e.Children[2])
	if err != nil {
		return ids.NodeId{}, err
	}
	return s.graph.Add(&IfElse{Base: s.newNode(), Cond: cond, Then: then, Else: els}), nil
}

func (s *Structurer) whileExpr(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 {
		return ids.NodeId{}, strErr(werrors.STR002, "while requires (cond, body)")
	}
	cond, err := s.expression(e.Children[0])
	if err != nil {
		return ids.NodeId{}, err
	}
	body, err := s.expression(e.Children[1])
	if err != nil {
		return ids.NodeId{}, err
	}
	return s.graph.Add(&While{Base: s.newNode(), Cond: cond, Body: body}), nil
}

func (s *Structurer) quote(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 1 {
		return ids.NodeId{}, strErr(werrors.STR002, "quote requires exactly one template expression")
	}
	return s.graph.Add(&Quote{Base: s.newNode(), Template: e.Children[0]}), nil
}

func (s *Structurer) label(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 || e.Children[0].Tag != sexpr.TagSymbol {
		return ids.NodeId{}, strErr(werrors.STR002, "label requires (name, body)")
	}
	name := e.Children[0].Symbol
	lid := ids.NewLabel()
	s.labels = &labelFrame{parent: s.labels, name: name, id: lid}
	defer func() { s.labels = s.labels.parent }()

	body, err := s.expression(e.Children[1])
	if err != nil {
		return ids.NodeId{}, err
	}
	return s.graph.Add(&Label{Base: s.newNode(), Name: name, ID: lid, Body: body}), nil
}

func (s *Structurer) breakTo(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) < 1 || e.Children[0].Tag != sexpr.TagSymbol {
		return ids.NodeId{}, strErr(werrors.STR002, "break requires a label name")
	}
	name := e.Children[0].Symbol
	lid, ok := s.labels.find(name)
	if !ok {
		return ids.NodeId{}, strErr(werrors.STR003, fmt.Sprintf("break to undeclared label %q", name))
	}
	var value ids.NodeId
	if len(e.Children) == 2 {
		v, err := s.expression(e.Children[1])
		if err != nil {
			return ids.NodeId{}, err
		}
		value = v
	}
	return s.graph.Add(&BreakToLabel{Base: s.newNode(), Label: lid, Value: value}), nil
}

func (s *Structurer) constructor(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 || e.Children[0].Tag != sexpr.TagSymbol || e.Children[1].Head != "args" {
		return ids.NodeId{}, strErr(werrors.STR002, "ctor requires (typeName, args)")
	}
	typeName := e.Children[0].Symbol
	args := make([]ConstructorArg, 0, len(e.Children[1].Children))
	for _, a := range e.Children[1].Children {
		if a.Head != "arg" || len(a.Children) != 2 {
			return ids.NodeId{}, strErr(werrors.STR002, "malformed constructor argument")
		}
		field := a.Children[0].Symbol // "" for positional
		valID, err := s.expression(a.Children[1])
		if err != nil {
			return ids.NodeId{}, err
		}
		args = append(args, ConstructorArg{Field: field, Value: valID})
	}
	return s.graph.Add(&Constructor{Base: s.newNode(), TypeName: typeName, Args: args}), nil
}

func (s *Structurer) fieldAccess(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 || e.Children[1].Tag != sexpr.TagSymbol {
		return ids.NodeId{}, strErr(werrors.STR002, "field requires (container, fieldName)")
	}
	container, err := s.expression(e.Children[0])
	if err != nil {
		return ids.NodeId{}, err
	}
	return s.graph.Add(&FieldAccess{Base: s.newNode(), Container: container, Field: e.Children[1].Symbol}), nil
}

func (s *Structurer) arrayLiteral(e sexpr.Expr) (ids.NodeId, error) {
	elems := make([]ids.NodeId, 0, len(e.Children))
	for _, c := range e.Children {
		id, err := s.expression(c)
		if err != nil {
			return ids.NodeId{}, err
		}
		elems = append(elems, id)
	}
	return s.graph.Add(&ArrayLiteral{Base: s.newNode(), Elements: elems}), nil
}

func (s *Structurer) call(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 || e.Children[1].Head != "args" {
		return ids.NodeId{}, strErr(werrors.STR002, "call requires (callee, args)")
	}
	args := make([]CallArg, 0, len(e.Children[1].Children))
	for _, a := range e.Children[1].Children {
		if a.Head != "arg" || len(a.Children) != 2 {
			return ids.NodeId{}, strErr(werrors.STR002, "malformed call argument")
		}
		name := a.Children[0].Symbol
		valID, err := s.expression(a.Children[1])
		if err != nil {
			return ids.NodeId{}, err
		}
		args = append(args, CallArg{Name: name, Value: valID})
	}

	n := &FunctionCall{Base: s.newNode(), Args: args}
	callee := e.Children[0]
	if callee.Tag == sexpr.TagSymbol {
		if _, isLocal := s.scope.lookup(callee.Symbol); !isLocal {
			n.Name = callee.Symbol
			return s.graph.Add(n), nil
		}
	}
	calleeID, err := s.expression(callee)
	if err != nil {
		return ids.NodeId{}, err
	}
	n.Callee = calleeID
	return s.graph.Add(n), nil
}

func (s *Structurer) convert(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 2 {
		return ids.NodeId{}, strErr(werrors.STR002, "convert requires (value, type)")
	}
	valID, err := s.expression(e.Children[0])
	if err != nil {
		return ids.NodeId{}, err
	}
	te, err := s.typeExpr(e.Children[1])
	if err != nil {
		return ids.NodeId{}, err
	}
	return s.graph.Add(&Convert{Base: s.newNode(), Value: valID, Into: te}), nil
}

func (s *Structurer) sizeOf(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 1 {
		return ids.NodeId{}, strErr(werrors.STR002, "sizeof requires exactly one type")
	}
	te, err := s.typeExpr(e.Children[0])
	if err != nil {
		return ids.NodeId{}, err
	}
	return s.graph.Add(&SizeOf{Base: s.newNode(), Of: te}), nil
}

func (s *Structurer) functionDef(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 5 || e.Children[0].Tag != sexpr.TagSymbol ||
		e.Children[1].Head != "generics" || e.Children[2].Head != "params" {
		return ids.NodeId{}, strErr(werrors.STR002, "fn requires (name, generics, params, returnType, body)")
	}
	name := e.Children[0].Symbol

	oldGenerics := s.generics
	s.generics = map[string]bool{}
	var generics []string
	for _, g := range e.Children[1].Children {
		if g.Tag != sexpr.TagSymbol {
			return ids.NodeId{}, strErr(werrors.STR004, "generic parameter must be a name")
		}
		s.generics[g.Symbol] = true
		generics = append(generics, g.Symbol)
	}
	defer func() { s.generics = oldGenerics }()

	s.scope = newScope(s.scope)
	defer func() { s.scope = s.scope.parent }()

	var params []Param
	var paramTypes []TypeExpr
	for _, p := range e.Children[2].Children {
		if p.Head != "param" || len(p.Children) != 2 || p.Children[0].Tag != sexpr.TagSymbol {
			return ids.NodeId{}, strErr(werrors.STR002, "malformed parameter")
		}
		pname := p.Children[0].Symbol
		te, err := s.typeExpr(p.Children[1])
		if err != nil {
			return ids.NodeId{}, err
		}
		sym := s.scope.bind(pname)
		params = append(params, Param{Symbol: sym, Name: pname})
		paramTypes = append(paramTypes, te)
	}

	retType, err := s.typeExpr(e.Children[3])
	if err != nil {
		return ids.NodeId{}, err
	}

	bodyID, err := s.expression(e.Children[4])
	if err != nil {
		return ids.NodeId{}, err
	}

	fd := &FunctionDef{
		Base: s.newNode(), Name: name, Symbol: ids.NewSymbol(),
		Params: params, ParamTypes: paramTypes, ReturnType: retType,
		Generics: generics, Body: bodyID,
	}
	return s.graph.Add(fd), nil
}

func (s *Structurer) cbind(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 4 || e.Children[0].Tag != sexpr.TagSymbol ||
		e.Children[1].Tag != sexpr.TagSymbol || e.Children[2].Head != "params" {
		return ids.NodeId{}, strErr(werrors.STR002, "cbind requires (name, cSymbol, paramTypes, returnType)")
	}
	name := e.Children[0].Symbol
	csym := e.Children[1].Symbol
	var paramTypes []TypeExpr
	for _, p := range e.Children[2].Children {
		te, err := s.typeExpr(p)
		if err != nil {
			return ids.NodeId{}, err
		}
		paramTypes = append(paramTypes, te)
	}
	retType, err := s.typeExpr(e.Children[3])
	if err != nil {
		return ids.NodeId{}, err
	}
	cb := &CBind{
		Base: s.newNode(), Name: name, Symbol: ids.NewSymbol(),
		CSymbol: csym, ParamTypes: paramTypes, ReturnType: retType,
	}
	return s.graph.Add(cb), nil
}

func (s *Structurer) globalDef(e sexpr.Expr) (ids.NodeId, error) {
	if len(e.Children) != 3 || e.Children[0].Tag != sexpr.TagSymbol {
		return ids.NodeId{}, strErr(werrors.STR002, "global-def requires (name, type, init)")
	}
	name := e.Children[0].Symbol
	te, err := s.typeExpr(e.Children[1])
	if err != nil {
		return ids.NodeId{}, err
	}
	initID, err := s.expression(e.Children[2])
	if err != nil {
		return ids.NodeId{}, err
	}
	gd := &GlobalDef{Base: s.newNode(), Name: name, Symbol: ids.NewSymbol(), Type: te, Init: initID}
	return s.graph.Add(gd), nil
}

func (s *Structurer) typeDef(e sexpr.Expr, kind TypeDefKind) (ids.NodeId, error) {
	if len(e.Children) != 2 || e.Children[0].Tag != sexpr.TagSymbol || e.Children[1].Head != "fields" {
		return ids.NodeId{}, strErr(werrors.STR002, "type definition requires (name, fields)")
	}
	name := e.Children[0].Symbol
	if _, exists := s.graph.TypeDefs[name]; exists {
		return ids.NodeId{}, werrors.New(werrors.PhaseStructure, werrors.RDF001,
			fmt.Sprintf("type %q defined more than once", name))
	}
	var fields []FieldDef
	seen := map[string]bool{}
	for _, f := range e.Children[1].Children {
		if f.Head != "field" || len(f.Children) != 2 || f.Children[0].Tag != sexpr.TagSymbol {
			return ids.NodeId{}, strErr(werrors.STR002, "malformed field definition")
		}
		fname := f.Children[0].Symbol
		if seen[fname] {
			return ids.NodeId{}, werrors.New(werrors.PhaseStructure, werrors.RDF003,
				fmt.Sprintf("duplicate field %q in type %q", fname, name))
		}
		seen[fname] = true
		te, err := s.typeExpr(f.Children[1])
		if err != nil {
			return ids.NodeId{}, err
		}
		fields = append(fields, FieldDef{Name: fname, Type: te})
	}
	td := &TypeDef{Base: s.newNode(), Name: name, Kind: kind, Fields: fields}
	s.graph.TypeDefs[name] = td
	return s.graph.Add(td), nil
}

func (s *Structurer) typeExpr(e sexpr.Expr) (TypeExpr, error) {
	switch e.Tag {
	case sexpr.TagSymbol:
		if s.generics != nil && s.generics[e.Symbol] {
			return TypeExpr{Kind: TypeExprGeneric, Name: e.Symbol}, nil
		}
		return TypeExpr{Kind: TypeExprPrimitiveOrNamed, Name: e.Symbol}, nil
	case sexpr.TagConstructor:
		switch e.Head {
		case "ptr":
			if len(e.Children) != 1 {
				return TypeExpr{}, strErr(werrors.STR004, "ptr requires one element type")
			}
			elem, err := s.typeExpr(e.Children[0])
			if err != nil {
				return TypeExpr{}, err
			}
			return TypeExpr{Kind: TypeExprPointer, Elem: &elem}, nil
		case "arr":
			if len(e.Children) != 1 {
				return TypeExpr{}, strErr(werrors.STR004, "arr requires one element type")
			}
			elem, err := s.typeExpr(e.Children[0])
			if err != nil {
				return TypeExpr{}, err
			}
			return TypeExpr{Kind: TypeExprArray, Elem: &elem}, nil
		case "fntype":
			if len(e.Children) != 2 || e.Children[0].Head != "args" {
				return TypeExpr{}, strErr(werrors.STR004, "fntype requires (args, ret)")
			}
			var args []TypeExpr
			for _, a := range e.Children[0].Children {
				te, err := s.typeExpr(a)
				if err != nil {
					return TypeExpr{}, err
				}
				args = append(args, te)
			}
			ret, err := s.typeExpr(e.Children[1])
			if err != nil {
				return TypeExpr{}, err
			}
			return TypeExpr{Kind: TypeExprFunc, Args: args, Ret: &ret}, nil
		}
	}
	return TypeExpr{}, strErr(werrors.STR004, "malformed type expression")
}
