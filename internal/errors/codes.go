// Package errors provides centralized diagnostic definitions for Allium.
// All diagnostics are identified by a stable kind so that tools and tests
// can match on them without parsing message text.
package errors

// Kind identifies a diagnostic condition.
type Kind string

const (
	// Redefinition
	BuiltinRedefined   Kind = "builtin_redefined"
	TypeRedefined      Kind = "type_redefined"
	PredicateRedefined Kind = "predicate_redefined"
	EffectRedefined    Kind = "effect_redefined"

	// Unresolved names
	UndefinedType           Kind = "undefined_type"
	UndefinedPredicate      Kind = "undefined_predicate"
	UndefinedEffect         Kind = "undefined_effect"
	UndefinedEffectCtor     Kind = "undefined_effect_constructor"
	UnknownConstructor      Kind = "unknown_constructor"
	UnknownConstructorOrVar Kind = "unknown_constructor_or_variable"

	// Arity mismatches
	PredicateArgumentCount  Kind = "predicate_argument_count"
	CtorArgumentCount       Kind = "constructor_argument_count"
	EffectCtorArgumentCount Kind = "effect_constructor_argument_count"

	// Typing
	VariableRedefined       Kind = "variable_redefined"
	VariableTypeMismatch    Kind = "variable_type_mismatch"
	StringLiteralNotAllowed Kind = "string_literal_not_convertible"
	IntLiteralNotAllowed    Kind = "int_literal_not_convertible"
	ImplHeadMismatch        Kind = "impl_head_mismatches_predicate"
	EffectImplHeadMismatch  Kind = "effect_impl_head_mismatches_effect"

	// Effect discipline
	EffectUnhandled              Kind = "effect_unhandled"
	EffectFromPredicateUnhandled Kind = "effect_from_predicate_unhandled"
	ContinueOutsideHandler       Kind = "continue_outside_handler"

	// Groundness
	ArgumentIsNotGround          Kind = "argument_is_not_ground"
	AnonymousArgumentIsNotGround Kind = "argument_is_not_ground_anonymous"
	InputArgumentIsDefinition    Kind = "input_only_argument_contains_definition"
	InputArgumentIsAnonymous     Kind = "input_only_argument_contains_anonymous"
)

// formats maps a kind to its human-readable message template. Each %s is
// filled from the Emit arguments in order.
var formats = map[Kind]string{
	BuiltinRedefined:   "declaration of %s conflicts with a builtin of the same name",
	TypeRedefined:      "type %s is already defined",
	PredicateRedefined: "predicate %s is already defined",
	EffectRedefined:    "effect %s is already defined",

	UndefinedType:           "use of undefined type %s",
	UndefinedPredicate:      "use of undefined predicate %s",
	UndefinedEffect:         "use of undefined effect %s",
	UndefinedEffectCtor:     "effect constructor %s is not handled by any effect in scope",
	UnknownConstructor:      "%s is not a constructor of type %s",
	UnknownConstructorOrVar: "%s is not a constructor of type %s or a variable in scope",

	PredicateArgumentCount:  "predicate %s expects %s arguments but was given %s",
	CtorArgumentCount:       "constructor %s expects %s arguments but was given %s",
	EffectCtorArgumentCount: "effect constructor %s expects %s arguments but was given %s",

	VariableRedefined:       "variable %s is already defined in this implication",
	VariableTypeMismatch:    "variable %s has type %s but is used here at type %s",
	StringLiteralNotAllowed: "a string literal cannot inhabit type %s",
	IntLiteralNotAllowed:    "an integer literal cannot inhabit type %s",
	ImplHeadMismatch:        "implication head %s does not match the enclosing predicate %s",
	EffectImplHeadMismatch:  "handler head %s does not match any constructor of effect %s",

	EffectUnhandled:              "effect %s is not declared or handled by predicate %s",
	EffectFromPredicateUnhandled: "predicate %s may perform effect %s, which %s neither declares nor handles",
	ContinueOutsideHandler:       "continue cannot occur outside of an effect handler",

	ArgumentIsNotGround:          "the variable %s might not be ground here, but is passed as an input-only argument",
	AnonymousArgumentIsNotGround: "an anonymous variable is never ground, but is passed as an input-only argument",
	InputArgumentIsDefinition:    "the variable %s cannot be defined in an input-only argument",
	InputArgumentIsAnonymous:     "an anonymous variable cannot occur in an input-only argument",
}
