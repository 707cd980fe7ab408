package sema

import (
	"testing"

	"github.com/allium-lang/allium/internal/errors"
	"github.com/allium-lang/allium/internal/lexer"
	"github.com/allium-lang/allium/internal/parser"
	"github.com/allium-lang/allium/internal/typedast"
)

func check(t *testing.T, input string) (*typedast.Program, *errors.Reporter) {
	t.Helper()
	p := parser.New(lexer.New(input, "test.allium"))
	prog := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return Check(prog)
}

func checkOK(t *testing.T, input string) *typedast.Program {
	t.Helper()
	typed, reporter := check(t, input)
	if reporter.Count() > 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.All())
	}
	return typed
}

func expectKind(t *testing.T, input string, kind errors.Kind) {
	t.Helper()
	_, reporter := check(t, input)
	if !reporter.HasKind(kind) {
		t.Errorf("expected %s, got %v", kind, reporter.All())
	}
}

const peano = `
type Nat { ctor z; ctor s(Nat); }
pred add(Nat, Nat, Nat) {
	add(z, let y, y) <- true;
	add(s(let x), let y, s(let r)) <- add(x, y, r);
}
pred main { main <- add(s(s(z)), s(z), s(s(s(z)))); }
`

func TestCheckPeano(t *testing.T) {
	typed := checkOK(t, peano)

	nat, ok := typed.ResolveType("Nat")
	if !ok || len(nat.Ctors) != 2 {
		t.Fatalf("Nat not resolved correctly")
	}
	add, ok := typed.ResolvePredicate("add")
	if !ok || len(add.Impls) != 2 {
		t.Fatalf("add not resolved correctly")
	}

	// The base case defines y once and uses it once.
	vars := typedast.ImplicationVariables(&add.Impls[0])
	if len(vars) != 1 || vars[0].Name != "y" || vars[0].Type != "Nat" {
		t.Errorf("unexpected variable list: %v", vars)
	}

	// The recursive case defines x, y, r in first-occurrence order.
	vars = typedast.ImplicationVariables(&add.Impls[1])
	names := []string{}
	for _, v := range vars {
		names = append(names, v.Name)
	}
	if len(names) != 3 || names[0] != "x" || names[1] != "y" || names[2] != "r" {
		t.Errorf("unexpected variable order: %v", names)
	}
}

func TestRedefinitions(t *testing.T) {
	expectKind(t, `type Nat { ctor z; } type Nat { ctor o; } pred main { main <- true; }`, errors.TypeRedefined)
	expectKind(t, `type Int { ctor i; } pred main { main <- true; }`, errors.BuiltinRedefined)
	expectKind(t, `effect IO { ctor put(in String); } pred main { main <- true; }`, errors.BuiltinRedefined)
	expectKind(t, `effect E { ctor e; } effect E { ctor f; } pred main { main <- true; }`, errors.EffectRedefined)
	expectKind(t, `pred p { p <- true; } pred p { p <- true; }`, errors.PredicateRedefined)
	expectKind(t, `pred concat { concat <- true; }`, errors.BuiltinRedefined)
}

func TestUnresolvedNames(t *testing.T) {
	expectKind(t, `pred p(Missing) { p(_) <- true; }`, errors.UndefinedType)
	expectKind(t, `pred main { main <- nothing; }`, errors.UndefinedPredicate)
	expectKind(t, `pred p: Ghost { p <- true; }`, errors.UndefinedEffect)
	expectKind(t, `pred main { main <- do vanish("x"); }`, errors.UndefinedEffectCtor)
	expectKind(t, `type Nat { ctor z; } pred p(Nat) { p(one(z)) <- true; }`, errors.UnknownConstructor)
	expectKind(t, `type Nat { ctor z; } pred p(Nat) { p(q) <- true; }`, errors.UnknownConstructorOrVar)
}

func TestArityMismatches(t *testing.T) {
	expectKind(t, `pred p(Int) { p(1) <- true; } pred main { main <- p(1, 2); }`, errors.PredicateArgumentCount)
	expectKind(t, `type Nat { ctor z; ctor s(Nat); } pred p(Nat) { p(s(z, z)) <- true; }`, errors.CtorArgumentCount)
	expectKind(t, `effect Log { ctor msg(in String); } pred p: Log { p <- do msg("a", "b"); }`, errors.EffectCtorArgumentCount)
	expectKind(t, `pred p(Int) { p(1, 2) <- true; }`, errors.PredicateArgumentCount)
}

func TestTypingErrors(t *testing.T) {
	expectKind(t, `type Nat { ctor z; } pred p(Nat, Nat) { p(let x, let x) <- true; }`, errors.VariableRedefined)
	expectKind(t, `type Nat { ctor z; } pred p(Nat, String) { p(let x, x) <- true; }`, errors.VariableTypeMismatch)
	expectKind(t, `type Nat { ctor z; } pred p(Nat) { p("s") <- true; }`, errors.StringLiteralNotAllowed)
	expectKind(t, `pred p(String) { p(42) <- true; }`, errors.IntLiteralNotAllowed)
	expectKind(t, `pred p { q <- true; }`, errors.ImplHeadMismatch)
	expectKind(t, `effect Log { ctor msg(in String); }
pred p: Log {
	p <- true;
	handle Log { other(let s) <- continue; }
}
pred main { main <- p; }`, errors.EffectImplHeadMismatch)
}

func TestEffectDiscipline(t *testing.T) {
	// A predicate with a declared user effect routed to main without a
	// handler anywhere.
	expectKind(t, `effect Log { ctor msg(in String); }
pred p: Log { p <- do msg("hi"); }
pred main { main <- p; }`, errors.EffectFromPredicateUnhandled)

	// main itself declares an effect nothing can handle.
	expectKind(t, `effect Log { ctor msg(in String); }
pred main: Log { main <- do msg("hi"); }`, errors.EffectUnhandled)

	// Performing an effect the predicate neither declares nor handles.
	expectKind(t, `effect Log { ctor msg(in String); }
pred p { p <- do msg("hi"); }
pred main { main <- p; }`, errors.EffectUnhandled)

	expectKind(t, `pred p { p <- continue; }`, errors.ContinueOutsideHandler)
}

func TestEffectDisciplineSatisfiedByHandler(t *testing.T) {
	checkOK(t, `effect Log { ctor msg(in String); }
pred p: Log { p <- do msg("hi"); }
pred main {
	main <- p;
	handle Log { msg(let s) <- do print(s), continue; }
}`)
}

func TestBuiltinIOIsImplicit(t *testing.T) {
	checkOK(t, `pred main { main <- do print("hello"); }`)
}

func TestInputOnlyStaticChecks(t *testing.T) {
	expectKind(t, `pred main { main <- concat(let a, "b", _); }`, errors.InputArgumentIsDefinition)
	expectKind(t, `pred main { main <- concat(_, "b", let c); }`, errors.InputArgumentIsAnonymous)
}

func TestInputOnlyHeadPatternsBind(t *testing.T) {
	// A head receives the call's ground value; binding it is the normal
	// way to consume an input-only parameter.
	checkOK(t, `pred p(in String): IO { p(let s) <- do print(s); } pred main { main <- p("hi"); }`)
}

func TestDefinitionsAllowedInBody(t *testing.T) {
	checkOK(t, `pred main { main <- concat("foo", "bar", let z), concat(z, "!", "foobar!"); }`)
}

func TestBuiltinConcatResolves(t *testing.T) {
	typed := checkOK(t, `pred main { main <- concat("a", "b", let c); }`)
	main, _ := typed.ResolvePredicate("main")
	conj, ok := main.Impls[0].Body.(typedast.PredicateRef)
	if !ok || conj.Name != "concat" {
		t.Fatalf("expected concat reference, got %T", main.Impls[0].Body)
	}
}
