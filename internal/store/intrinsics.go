package store

import (
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/types"
)

// bootstrapIntrinsics installs the §6 runtime intrinsic table as
// pre-registered globals owned by the store's reserved intrinsics unit,
// so ordinary FunctionCall/GlobalReference lookup (§4.5) resolves them
// exactly like any user-defined symbol. Opaque runtime handles (timers,
// watchers, the seeded RNG, loaded libraries) are modeled as distinct
// Named types with no registered Def — legal, since nothing field-
// accesses them; they are only ever passed back into the intrinsic
// that produced them.
func (s *Store) bootstrapIntrinsics() {
	s.symbols.setCurrent(s.intrinsics)
	defer s.symbols.setCurrent(ids.UnitId{})

	str := types.Pointer(types.U8)
	expr := types.Pointer(types.Named("Expr"))
	timer := types.Named("Timer")
	watcher := types.Named("Watcher")
	watchEvent := types.Named("WatchEvent")
	rng := types.Named("Rng")
	library := types.Named("Library")
	address := types.Pointer(types.Void)

	for _, i := range []struct {
		name string
		sig  types.Type
	}{
		{"malloc", types.Func([]types.Type{types.U64}, str)},
		{"free", types.Func([]types.Type{str}, types.Void)},
		{"memcpy", types.Func([]types.Type{str, str, types.U64}, types.Void)},
		{"panic", types.Func([]types.Type{str}, types.Void)},

		{"print_string", types.Func([]types.Type{str}, types.Void)},
		{"print_expr", types.Func([]types.Type{expr}, types.Void)},
		{"print_i64", types.Func([]types.Type{types.I64}, types.Void)},
		{"print_u64", types.Func([]types.Type{types.U64}, types.Void)},
		{"print_f64", types.Func([]types.Type{types.F64}, types.Void)},
		{"print_bool", types.Func([]types.Type{types.Bool}, types.Void)},

		{"template_quote", types.Func([]types.Type{expr, types.Array(expr)}, expr)},

		{"start_timer", types.Func(nil, timer)},
		{"millis_elapsed", types.Func([]types.Type{timer}, types.F64)},
		{"drop_timer", types.Func([]types.Type{timer}, types.Void)},

		{"create_watcher", types.Func(nil, watcher)},
		{"poll_watcher_event", types.Func([]types.Type{watcher}, watchEvent)},
		{"watch_file", types.Func([]types.Type{watcher, str}, types.Void)},
		{"drop_watcher", types.Func([]types.Type{watcher}, types.Void)},

		{"seeded_rng", types.Func([]types.Type{types.U64}, rng)},
		{"rand_f64", types.Func([]types.Type{rng}, types.F64)},
		{"rand_u64", types.Func([]types.Type{rng}, types.U64)},
		{"drop_seeded_rng", types.Func([]types.Type{rng}, types.Void)},

		{"load_expression", types.Func([]types.Type{str}, expr)},
		{"load_module", types.Func([]types.Type{str}, types.U64)},
		{"unload_module", types.Func([]types.Type{types.U64}, types.Void)},
		{"get_module", types.Func([]types.Type{str}, types.U64)},
		{"get_function", types.Func([]types.Type{types.U64, str}, address)},
		{"load_library", types.Func([]types.Type{str}, library)},
		{"load_symbol", types.Func([]types.Type{library, str}, address)},

		{"test_add", types.Func([]types.Type{types.I64, types.I64}, types.I64)},
		{"test_global", types.Func(nil, types.I64)},
		{"thread_sleep", types.Func([]types.Type{types.U64}, types.Void)},
	} {
		// Intrinsic signatures are fixed and distinct by name; a
		// Define error here would mean two intrinsics share a name,
		// which would be a bug in this table, not a runtime condition
		// to recover from.
		if err := s.symbols.Define(i.name, ids.NewSymbol(), i.sig); err != nil {
			panic("store: " + err.Error())
		}
	}
}
