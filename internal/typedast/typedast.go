// Package typedast defines the resolved, type-checked representation of an
// Allium program. Semantic analysis raises the surface AST into these nodes;
// every name is known to resolve and every reference is known to have the
// right arity, so downstream passes index into the program without checking.
package typedast

import (
	"fmt"
	"strings"

	"github.com/allium-lang/allium/internal/ast"
)

// TypeRef is a resolved type name.
type TypeRef string

// Type is a user-defined (or builtin) type and its constructors. The two
// builtin types Int and String have no constructors; literal values inhabit
// them.
type Type struct {
	Name  string
	Ctors []Constructor
}

// Constructor is one constructor of a type.
type Constructor struct {
	Name   string
	Params []TypeRef
}

// Effect is an effect and its constructors.
type Effect struct {
	Name  string
	Ctors []EffectCtor
}

// EffectCtor is one constructor of an effect.
type EffectCtor struct {
	Name   string
	Params []Parameter
}

// Parameter is a type reference, optionally input-only. An input-only
// parameter must receive a ground value at every call site.
type Parameter struct {
	Type      TypeRef
	InputOnly bool
}

func (p Parameter) String() string {
	if p.InputOnly {
		return "in " + string(p.Type)
	}
	return string(p.Type)
}

// PredicateDecl is a predicate's signature: name, parameters, and the
// effects it may perform.
type PredicateDecl struct {
	Name    string
	Params  []Parameter
	Effects []string
}

// Predicate is a declaration plus its implications and effect handlers.
type Predicate struct {
	Decl     PredicateDecl
	Impls    []Implication
	Handlers []Handler
}

// Implication is one clause: a self-referencing head with argument patterns
// and a body expression.
type Implication struct {
	Head PredicateRef
	Body Expr
}

// Handler handles one effect via an ordered list of effect implications.
type Handler struct {
	Effect string
	Impls  []EffectImplication
}

// EffectImplication is one clause of a handler. Its body may contain
// Continue.
type EffectImplication struct {
	Effect string
	Ctor   string
	Args   []Value
	Body   Expr
}

// Value nodes occur in patterns and argument positions.
type Value interface {
	fmt.Stringer
	typedValue()
}

// AnonymousVariable is the wildcard at a known type.
type AnonymousVariable struct {
	Type TypeRef
}

func (a AnonymousVariable) typedValue()    {}
func (a AnonymousVariable) String() string { return "_" }

// Variable is a named variable occurrence. IsDefinition is true at exactly
// one occurrence per implication.
type Variable struct {
	Name         string
	Type         TypeRef
	IsDefinition bool
}

func (v Variable) typedValue() {}
func (v Variable) String() string {
	if v.IsDefinition {
		return "let " + v.Name
	}
	return v.Name
}

// ConstructorRef is a constructor applied to argument values.
type ConstructorRef struct {
	Type TypeRef
	Name string
	Args []Value
}

func (c ConstructorRef) typedValue() {}
func (c ConstructorRef) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}

// StringLiteral is a value of the builtin type String.
type StringLiteral struct {
	Value string
}

func (s StringLiteral) typedValue()    {}
func (s StringLiteral) String() string { return fmt.Sprintf("%q", s.Value) }

// IntLiteral is a value of the builtin type Int.
type IntLiteral struct {
	Value int64
}

func (i IntLiteral) typedValue()    {}
func (i IntLiteral) String() string { return fmt.Sprintf("%d", i.Value) }

// Expr nodes form implication and handler bodies.
type Expr interface {
	fmt.Stringer
	typedExpr()
}

// TruthLiteral is `true` or `false`.
type TruthLiteral struct {
	Value bool
}

func (t TruthLiteral) typedExpr() {}
func (t TruthLiteral) String() string {
	if t.Value {
		return "true"
	}
	return "false"
}

// PredicateRef is a reference to a predicate with argument values. Pos is
// kept for diagnostics only; it does not participate in the semantics.
type PredicateRef struct {
	Name string
	Args []Value
	Pos  ast.Pos
}

func (p PredicateRef) typedExpr() {}
func (p PredicateRef) String() string {
	if len(p.Args) == 0 {
		return p.Name
	}
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(args, ", "))
}

// EffectCtorRef performs an effect constructor and then proves Cont. Pos is
// kept for diagnostics only.
type EffectCtorRef struct {
	Effect string
	Ctor   string
	Args   []Value
	Cont   Expr
	Pos    ast.Pos
}

func (e EffectCtorRef) typedExpr() {}
func (e EffectCtorRef) String() string {
	s := "do " + e.Effect + "." + e.Ctor
	if len(e.Args) > 0 {
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.String()
		}
		s += "(" + strings.Join(args, ", ") + ")"
	}
	return s + ", " + e.Cont.String()
}

// Continue resumes the continuation of the effect being handled. It occurs
// only inside effect handler bodies.
type Continue struct{}

func (c Continue) typedExpr()     {}
func (c Continue) String() string { return "continue" }

// Conjunction proves Left and then Right.
type Conjunction struct {
	Left  Expr
	Right Expr
}

func (c Conjunction) typedExpr() {}
func (c Conjunction) String() string {
	return fmt.Sprintf("%s, %s", c.Left.String(), c.Right.String())
}

// Program is a resolved, type-checked program. Builtin types and effects
// are not stored here; resolver methods fall back to them.
type Program struct {
	Types      []Type
	Effects    []Effect
	Predicates []Predicate
}

// ResolveType finds a type by name, including the builtin types.
func (p *Program) ResolveType(name TypeRef) (*Type, bool) {
	for i := range p.Types {
		if p.Types[i].Name == string(name) {
			return &p.Types[i], true
		}
	}
	for i := range builtinTypes {
		if builtinTypes[i].Name == string(name) {
			return &builtinTypes[i], true
		}
	}
	return nil, false
}

// ResolveEffect finds an effect by name, including the builtin IO effect.
func (p *Program) ResolveEffect(name string) (*Effect, bool) {
	for i := range builtinEffects {
		if builtinEffects[i].Name == name {
			return &builtinEffects[i], true
		}
	}
	for i := range p.Effects {
		if p.Effects[i].Name == name {
			return &p.Effects[i], true
		}
	}
	return nil, false
}

// EffectIndex returns the runtime index of an effect: builtins occupy the
// low indices, user effects follow in source order.
func (p *Program) EffectIndex(name string) (int, bool) {
	for i := range builtinEffects {
		if builtinEffects[i].Name == name {
			return i, true
		}
	}
	for i := range p.Effects {
		if p.Effects[i].Name == name {
			return len(builtinEffects) + i, true
		}
	}
	return 0, false
}

// ResolvePredicate finds a user predicate by name.
func (p *Program) ResolvePredicate(name string) (*Predicate, bool) {
	for i := range p.Predicates {
		if p.Predicates[i].Decl.Name == name {
			return &p.Predicates[i], true
		}
	}
	return nil, false
}

// PredicateIndex returns the position of a user predicate in the program.
func (p *Program) PredicateIndex(name string) (int, bool) {
	for i := range p.Predicates {
		if p.Predicates[i].Decl.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ResolveCtor finds a constructor of the named type.
func (p *Program) ResolveCtor(tr TypeRef, name string) (int, *Constructor, bool) {
	t, ok := p.ResolveType(tr)
	if !ok {
		return 0, nil, false
	}
	for i := range t.Ctors {
		if t.Ctors[i].Name == name {
			return i, &t.Ctors[i], true
		}
	}
	return 0, nil, false
}

// ResolveEffectCtor finds a constructor of the named effect.
func (p *Program) ResolveEffectCtor(effect, name string) (int, *EffectCtor, bool) {
	e, ok := p.ResolveEffect(effect)
	if !ok {
		return 0, nil, false
	}
	for i := range e.Ctors {
		if e.Ctors[i].Name == name {
			return i, &e.Ctors[i], true
		}
	}
	return 0, nil, false
}
