package errors

import (
	"bytes"
	"strings"
	"testing"

	"github.com/allium-lang/allium/internal/ast"
)

func TestEmitFormatsMessage(t *testing.T) {
	r := NewReporter("sema")
	r.Emit(ast.Pos{File: "x.allium", Line: 3, Column: 7}, UndefinedPredicate, "ghost")

	if r.Count() != 1 {
		t.Fatalf("expected one report, got %d", r.Count())
	}
	rep := r.All()[0]
	if rep.Kind != UndefinedPredicate || rep.Phase != "sema" {
		t.Errorf("unexpected report: %+v", rep)
	}
	if !strings.Contains(rep.Message, "ghost") {
		t.Errorf("message must mention the predicate: %q", rep.Message)
	}
	if !strings.Contains(rep.Error(), "x.allium:3:7") {
		t.Errorf("rendering must include the position: %q", rep.Error())
	}
}

func TestHasKind(t *testing.T) {
	r := NewReporter("sema")
	r.Emit(ast.Pos{}, TypeRedefined, "Nat")
	if !r.HasKind(TypeRedefined) {
		t.Error("expected TypeRedefined")
	}
	if r.HasKind(EffectRedefined) {
		t.Error("did not expect EffectRedefined")
	}
}

func TestEveryKindHasAFormat(t *testing.T) {
	kinds := []Kind{
		BuiltinRedefined, TypeRedefined, PredicateRedefined, EffectRedefined,
		UndefinedType, UndefinedPredicate, UndefinedEffect, UndefinedEffectCtor,
		UnknownConstructor, UnknownConstructorOrVar,
		PredicateArgumentCount, CtorArgumentCount, EffectCtorArgumentCount,
		VariableRedefined, VariableTypeMismatch, StringLiteralNotAllowed,
		IntLiteralNotAllowed, ImplHeadMismatch, EffectImplHeadMismatch,
		EffectUnhandled, EffectFromPredicateUnhandled, ContinueOutsideHandler,
		ArgumentIsNotGround, AnonymousArgumentIsNotGround,
		InputArgumentIsDefinition, InputArgumentIsAnonymous,
	}
	for _, k := range kinds {
		if _, ok := formats[k]; !ok {
			t.Errorf("kind %s has no message format", k)
		}
	}
}

func TestWrite(t *testing.T) {
	r := NewReporter("sema")
	r.Emit(ast.Pos{File: "a.allium", Line: 1, Column: 1}, TypeRedefined, "Nat")
	r.Emit(ast.Pos{File: "a.allium", Line: 2, Column: 1}, PredicateRedefined, "p")

	var buf bytes.Buffer
	r.Write(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Nat") || !strings.Contains(lines[1], "p") {
		t.Errorf("unexpected rendering: %q", buf.String())
	}
}
