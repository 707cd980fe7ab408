package typedast

// Builtin names. The builtin types have no constructors; literal values
// inhabit them.
const (
	TypeInt    TypeRef = "Int"
	TypeString TypeRef = "String"

	EffectIO = "IO"
)

var builtinTypes = []Type{
	{Name: string(TypeInt)},
	{Name: string(TypeString)},
}

// builtinEffects reserves the low effect indices: IO is index 0.
var builtinEffects = []Effect{
	{
		Name: EffectIO,
		Ctors: []EffectCtor{
			{Name: "print", Params: []Parameter{{Type: TypeString, InputOnly: true}}},
		},
	},
}

// builtinPredicates maps the name of each builtin predicate to its
// declaration. Builtin predicates are resolved through this table during
// semantic analysis and lowering; they never appear in Program.Predicates.
var builtinPredicates = map[string]PredicateDecl{
	"concat": {
		Name: "concat",
		Params: []Parameter{
			{Type: TypeString, InputOnly: true},
			{Type: TypeString, InputOnly: true},
			{Type: TypeString},
		},
	},
}

// ResolveBuiltinPredicate finds a builtin predicate declaration by name.
func ResolveBuiltinPredicate(name string) (PredicateDecl, bool) {
	decl, ok := builtinPredicates[name]
	return decl, ok
}

// IsBuiltinType reports whether name is one of the builtin types.
func IsBuiltinType(name string) bool {
	for i := range builtinTypes {
		if builtinTypes[i].Name == name {
			return true
		}
	}
	return false
}

// IsBuiltinEffect reports whether name is one of the builtin effects.
func IsBuiltinEffect(name string) bool {
	for i := range builtinEffects {
		if builtinEffects[i].Name == name {
			return true
		}
	}
	return false
}

// BuiltinEffectCount is the number of effect indices reserved for builtins.
func BuiltinEffectCount() int { return len(builtinEffects) }
