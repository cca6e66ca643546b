// Package ids defines the identifier types shared across the compiler's
// data model: units, sources, nodes and symbols (spec.md §3).
//
// The original prototype generated these from a monotonic counter
// (UIDGenerator) guarded by the single compiler thread. This port backs
// them with github.com/google/uuid instead: ids minted this way stay
// unique even across the re-entrant load_module queue described in §9,
// where a user-initiated load can be queued while another is in flight.
package ids

import "github.com/google/uuid"

// SourceId identifies an immutable source buffer.
type SourceId uuid.UUID

// UnitId identifies a compilation unit.
type UnitId uuid.UUID

// NodeId identifies a vertex in a unit's node graph.
type NodeId uuid.UUID

// SymbolId identifies a named binding (global, polymorphic function, or
// local variable/parameter).
type SymbolId uuid.UUID

// LabelId identifies a structured-break label within a function body.
type LabelId uuid.UUID

func (id SourceId) String() string  { return uuid.UUID(id).String() }
func (id UnitId) String() string    { return uuid.UUID(id).String() }
func (id NodeId) String() string    { return uuid.UUID(id).String() }
func (id SymbolId) String() string  { return uuid.UUID(id).String() }
func (id LabelId) String() string   { return uuid.UUID(id).String() }

// NewSource mints a fresh SourceId.
func NewSource() SourceId { return SourceId(uuid.New()) }

// NewUnit mints a fresh UnitId.
func NewUnit() UnitId { return UnitId(uuid.New()) }

// NewNode mints a fresh NodeId.
func NewNode() NodeId { return NodeId(uuid.New()) }

// NewSymbol mints a fresh SymbolId.
func NewSymbol() SymbolId { return SymbolId(uuid.New()) }

// NewLabel mints a fresh LabelId.
func NewLabel() LabelId { return LabelId(uuid.New()) }

// NilUnit is the zero UnitId, used to mean "no unit".
var NilUnit UnitId
