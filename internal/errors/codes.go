// Package errors provides the compiler's structured diagnostic type and
// its centralized error-code registry (spec.md §7).
//
// Every failure the core pipeline can produce is one of seven kinds: lex/
// parse, structure, type conflict, unresolved symbol, invalid conversion,
// redefinition, or codegen/link. Each gets its own code prefix (lex and
// parse errors have one each, LEX and PAR), mirroring
// the teacher's internal/errors/codes.go taxonomy.
package errors

const (
	// Lex errors are surfaced from the external lexer without alteration.
	LEX001 = "LEX001" // unterminated string or comment
	LEX002 = "LEX002" // invalid numeric literal

	// Parse errors are surfaced from the external parser without alteration.
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing closing delimiter
	PAR003 = "PAR003" // invalid quote/splice syntax

	// Structure errors: malformed constructs found while lowering the
	// expression tree to the node graph (§4.2).
	STR001 = "STR001" // unknown constructor head
	STR002 = "STR002" // wrong arity for a known construct
	STR003 = "STR003" // break-to-label with no enclosing label
	STR004 = "STR004" // malformed type expression

	// Type-conflict errors: unification failure (§4.1, §4.4).
	TYP001 = "TYP001" // cannot unify two concrete types
	TYP002 = "TYP002" // abstract class does not contain a concrete type
	TYP003 = "TYP003" // array index is not an integer
	TYP004 = "TYP004" // field access on a non-struct/union type
	TYP005 = "TYP005" // union constructor given more than one field

	// Unresolved-symbol errors: zero or ambiguous overloads (§4.5).
	SYM001 = "SYM001" // no symbol with this name
	SYM002 = "SYM002" // no overload unifies with the target type
	SYM003 = "SYM003" // more than one overload unifies with the target type

	// Invalid-conversion errors: a Convert constraint rejected by §4.1.
	CNV001 = "CNV001"

	// Redefinition errors: duplicate struct/union or clashing signatures.
	RDF001 = "RDF001" // duplicate type definition name
	RDF002 = "RDF002" // duplicate symbol with an identical signature
	RDF003 = "RDF003" // duplicate field name in a struct/union

	// Codegen/link errors are opaque failures from the back-end (§7).
	GEN001 = "GEN001"
	GEN002 = "GEN002"

	// Module-graph errors: the code store's unit lifecycle (§3, §4.7).
	MOD001 = "MOD001" // no unit registered under this name/id
)

// Phase names used in Diagnostic.Phase.
const (
	PhaseLex       = "lex"
	PhaseParse     = "parse"
	PhaseStructure = "structure"
	PhaseInfer     = "infer"
	PhasePoly      = "poly"
	PhaseCodegen   = "codegen"
	PhaseLink      = "link"
	PhaseStore     = "store"
)
