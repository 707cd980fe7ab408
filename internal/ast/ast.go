package ast

import (
	"fmt"
	"strings"
)

// Node is the base interface for all AST nodes
type Node interface {
	String() string
	Position() Pos
}

// Pos represents a position in the source code
type Pos struct {
	Line   int
	Column int
	File   string
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Program is a complete parsed source program: the top-level type, effect,
// and predicate definitions in source order.
type Program struct {
	Types      []*TypeDef
	Effects    []*EffectDef
	Predicates []*PredDef
}

func (p *Program) String() string {
	parts := []string{}
	for _, t := range p.Types {
		parts = append(parts, t.String())
	}
	for _, e := range p.Effects {
		parts = append(parts, e.String())
	}
	for _, pr := range p.Predicates {
		parts = append(parts, pr.String())
	}
	return strings.Join(parts, "\n")
}

func (p *Program) Position() Pos {
	if len(p.Types) > 0 {
		return p.Types[0].Pos
	}
	if len(p.Effects) > 0 {
		return p.Effects[0].Pos
	}
	if len(p.Predicates) > 0 {
		return p.Predicates[0].Pos
	}
	return Pos{}
}

// TypeDef represents a type definition with its constructors
type TypeDef struct {
	Name  string
	Ctors []*CtorDecl
	Pos   Pos
}

func (t *TypeDef) String() string {
	ctors := make([]string, len(t.Ctors))
	for i, c := range t.Ctors {
		ctors[i] = c.String()
	}
	return fmt.Sprintf("type %s { %s }", t.Name, strings.Join(ctors, " "))
}
func (t *TypeDef) Position() Pos { return t.Pos }

// CtorDecl represents one constructor declaration inside a type definition
type CtorDecl struct {
	Name   string
	Params []string // parameter type names
	Pos    Pos
}

func (c *CtorDecl) String() string {
	if len(c.Params) == 0 {
		return fmt.Sprintf("ctor %s;", c.Name)
	}
	return fmt.Sprintf("ctor %s(%s);", c.Name, strings.Join(c.Params, ", "))
}
func (c *CtorDecl) Position() Pos { return c.Pos }

// EffectDef represents an effect definition with its constructors
type EffectDef struct {
	Name  string
	Ctors []*EffectCtorDecl
	Pos   Pos
}

func (e *EffectDef) String() string {
	ctors := make([]string, len(e.Ctors))
	for i, c := range e.Ctors {
		ctors[i] = c.String()
	}
	return fmt.Sprintf("effect %s { %s }", e.Name, strings.Join(ctors, " "))
}
func (e *EffectDef) Position() Pos { return e.Pos }

// EffectCtorDecl represents one constructor declaration inside an effect
type EffectCtorDecl struct {
	Name   string
	Params []*ParamDecl
	Pos    Pos
}

func (c *EffectCtorDecl) String() string {
	if len(c.Params) == 0 {
		return fmt.Sprintf("ctor %s;", c.Name)
	}
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("ctor %s(%s);", c.Name, strings.Join(params, ", "))
}
func (c *EffectCtorDecl) Position() Pos { return c.Pos }

// ParamDecl is a parameter type reference, optionally marked input-only.
type ParamDecl struct {
	Type      string
	InputOnly bool
	Pos       Pos
}

func (p *ParamDecl) String() string {
	if p.InputOnly {
		return "in " + p.Type
	}
	return p.Type
}
func (p *ParamDecl) Position() Pos { return p.Pos }

// PredDef represents a predicate definition: declaration, implications,
// and effect handlers.
type PredDef struct {
	Name     string
	Params   []*ParamDecl
	Effects  []*EffectRef
	Impls    []*Implication
	Handlers []*HandlerDef
	Pos      Pos
}

func (p *PredDef) String() string {
	var sb strings.Builder
	sb.WriteString("pred ")
	sb.WriteString(p.Name)
	if len(p.Params) > 0 {
		params := make([]string, len(p.Params))
		for i, param := range p.Params {
			params[i] = param.String()
		}
		sb.WriteString("(" + strings.Join(params, ", ") + ")")
	}
	if len(p.Effects) > 0 {
		effects := make([]string, len(p.Effects))
		for i, e := range p.Effects {
			effects[i] = e.Name
		}
		sb.WriteString(": " + strings.Join(effects, ", "))
	}
	sb.WriteString(" {")
	for _, impl := range p.Impls {
		sb.WriteString(" " + impl.String())
	}
	for _, h := range p.Handlers {
		sb.WriteString(" " + h.String())
	}
	sb.WriteString(" }")
	return sb.String()
}
func (p *PredDef) Position() Pos { return p.Pos }

// EffectRef is a reference to an effect by name in a predicate's effect list.
type EffectRef struct {
	Name string
	Pos  Pos
}

func (e *EffectRef) String() string { return e.Name }
func (e *EffectRef) Position() Pos  { return e.Pos }

// Implication is one clause of a predicate: head <- body.
type Implication struct {
	Head *PredRef
	Body Expr
	Pos  Pos
}

func (i *Implication) String() string {
	return fmt.Sprintf("%s <- %s;", i.Head.String(), i.Body.String())
}
func (i *Implication) Position() Pos { return i.Pos }

// HandlerDef is an effect handler block inside a predicate definition.
type HandlerDef struct {
	Effect string
	Impls  []*EffectImplication
	Pos    Pos
}

func (h *HandlerDef) String() string {
	impls := make([]string, len(h.Impls))
	for i, impl := range h.Impls {
		impls[i] = impl.String()
	}
	return fmt.Sprintf("handle %s { %s }", h.Effect, strings.Join(impls, " "))
}
func (h *HandlerDef) Position() Pos { return h.Pos }

// EffectImplication is one clause of an effect handler: ctor(args) <- body.
type EffectImplication struct {
	Ctor string
	Args []Value
	Body Expr
	Pos  Pos
}

func (e *EffectImplication) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	head := e.Ctor
	if len(args) > 0 {
		head += "(" + strings.Join(args, ", ") + ")"
	}
	return fmt.Sprintf("%s <- %s;", head, e.Body.String())
}
func (e *EffectImplication) Position() Pos { return e.Pos }

// Value nodes appear in argument positions of heads and references.
type Value interface {
	Node
	valueNode()
}

// AnonymousValue is the wildcard `_`.
type AnonymousValue struct {
	Pos Pos
}

func (a *AnonymousValue) valueNode()     {}
func (a *AnonymousValue) String() string { return "_" }
func (a *AnonymousValue) Position() Pos  { return a.Pos }

// BindingValue is a variable definition `let x`.
type BindingValue struct {
	Name string
	Pos  Pos
}

func (b *BindingValue) valueNode()     {}
func (b *BindingValue) String() string { return "let " + b.Name }
func (b *BindingValue) Position() Pos  { return b.Pos }

// NamedValue is an identifier with optional arguments. Whether it refers
// to a constructor or a variable is resolved during semantic analysis.
type NamedValue struct {
	Name string
	Args []Value
	Pos  Pos
}

func (n *NamedValue) valueNode() {}
func (n *NamedValue) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
}
func (n *NamedValue) Position() Pos { return n.Pos }

// StringValue is a string literal.
type StringValue struct {
	Value string
	Pos   Pos
}

func (s *StringValue) valueNode()     {}
func (s *StringValue) String() string { return fmt.Sprintf("%q", s.Value) }
func (s *StringValue) Position() Pos  { return s.Pos }

// IntValue is an integer literal.
type IntValue struct {
	Value int64
	Pos   Pos
}

func (i *IntValue) valueNode()     {}
func (i *IntValue) String() string { return fmt.Sprintf("%d", i.Value) }
func (i *IntValue) Position() Pos  { return i.Pos }

// Expression nodes
type Expr interface {
	Node
	exprNode()
}

// TruthLiteral is `true` or `false`.
type TruthLiteral struct {
	Value bool
	Pos   Pos
}

func (t *TruthLiteral) exprNode() {}
func (t *TruthLiteral) String() string {
	if t.Value {
		return "true"
	}
	return "false"
}
func (t *TruthLiteral) Position() Pos { return t.Pos }

// PredRef is a reference to a predicate with arguments.
type PredRef struct {
	Name string
	Args []Value
	Pos  Pos
}

func (p *PredRef) exprNode() {}
func (p *PredRef) String() string {
	if len(p.Args) == 0 {
		return p.Name
	}
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(args, ", "))
}
func (p *PredRef) Position() Pos { return p.Pos }

// DoExpr performs an effect constructor: `do msg("hi")`. The effect the
// constructor belongs to is resolved during semantic analysis. When the
// expression is written as the left operand of a conjunction, the right
// operand becomes its continuation; Cont is nil otherwise.
type DoExpr struct {
	Ctor string
	Args []Value
	Cont Expr
	Pos  Pos
}

func (d *DoExpr) exprNode() {}
func (d *DoExpr) String() string {
	s := "do " + d.Ctor
	if len(d.Args) > 0 {
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = a.String()
		}
		s += "(" + strings.Join(args, ", ") + ")"
	}
	if d.Cont != nil {
		s += ", " + d.Cont.String()
	}
	return s
}
func (d *DoExpr) Position() Pos { return d.Pos }

// ContinueExpr is the `continue` atom, valid only in handler bodies.
type ContinueExpr struct {
	Pos Pos
}

func (c *ContinueExpr) exprNode()      {}
func (c *ContinueExpr) String() string { return "continue" }
func (c *ContinueExpr) Position() Pos  { return c.Pos }

// Conjunction is `left, right`.
type Conjunction struct {
	Left  Expr
	Right Expr
	Pos   Pos
}

func (c *Conjunction) exprNode() {}
func (c *Conjunction) String() string {
	return fmt.Sprintf("%s, %s", c.Left.String(), c.Right.String())
}
func (c *Conjunction) Position() Pos { return c.Pos }
