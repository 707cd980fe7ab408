// Package interp defines the execution-only representation of an Allium
// program and the proof-search interpreter over it. Identifiers are
// index-based; no syntactic information survives lowering except the
// predicate name table kept for diagnostics.
package interp

import (
	"fmt"
	"strings"
)

// AnonymousIndex is the reserved variable index denoting an anonymous
// matcher variable.
const AnonymousIndex = -1

// RuntimeValue is a value under construction during a proof. An unbound
// variable cell holds nil.
type RuntimeValue interface {
	fmt.Stringer
	runtimeValue()
}

// RuntimeCtor is a constructor applied to argument cells. Arguments may be
// nil (unbound) until matching fills them in.
type RuntimeCtor struct {
	Index int
	Args  []RuntimeValue
}

func (c *RuntimeCtor) runtimeValue() {}
func (c *RuntimeCtor) String() string {
	if len(c.Args) == 0 {
		return fmt.Sprintf("ctor<%d>", c.Index)
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		if a == nil {
			args[i] = "_"
		} else {
			args[i] = a.String()
		}
	}
	return fmt.Sprintf("ctor<%d>(%s)", c.Index, strings.Join(args, ", "))
}

// RuntimeString is a value of the builtin type String.
type RuntimeString struct {
	Value string
}

func (s *RuntimeString) runtimeValue()  {}
func (s *RuntimeString) String() string { return fmt.Sprintf("%q", s.Value) }

// RuntimeInt is a value of the builtin type Int.
type RuntimeInt struct {
	Value int64
}

func (i *RuntimeInt) runtimeValue()  {}
func (i *RuntimeInt) String() string { return fmt.Sprintf("%d", i.Value) }

// Indirection is a weak, non-owning reference to another value cell. It is
// the union-find parent pointer that ties variable cells together; it must
// only outlive the cell it references, which the interpreter guarantees by
// pointing only into enclosing frames.
type Indirection struct {
	Cell *RuntimeValue
}

func (i *Indirection) runtimeValue() {}
func (i *Indirection) String() string {
	if *i.Cell == nil {
		return "_"
	}
	return (*i.Cell).String()
}

// Context is the variable cell vector of one stack frame. A new frame
// starts with every cell unbound.
type Context []RuntimeValue

// NewContext allocates a context of n unbound cells.
func NewContext(n int) Context {
	return make(Context, n)
}

// followCell chases indirections until it reaches a cell whose content is
// not an indirection. The returned cell may be unbound.
func followCell(cell *RuntimeValue) *RuntimeValue {
	for {
		ind, ok := (*cell).(*Indirection)
		if !ok {
			return cell
		}
		cell = ind.Cell
	}
}

// Ground reports whether the value contains no unbound cell, transitively.
func Ground(v RuntimeValue) bool {
	if v == nil {
		return false
	}
	switch v := v.(type) {
	case *Indirection:
		return Ground(*v.Cell)
	case *RuntimeCtor:
		for _, a := range v.Args {
			if !Ground(a) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MatcherValue is a pattern: it tests a runtime value and may bind
// variables on success.
type MatcherValue interface {
	fmt.Stringer
	matcherValue()
}

// MatcherCtor matches a constructor by index, componentwise.
type MatcherCtor struct {
	Index int
	Args  []MatcherValue
}

func (c *MatcherCtor) matcherValue() {}
func (c *MatcherCtor) String() string {
	if len(c.Args) == 0 {
		return fmt.Sprintf("ctor<%d>", c.Index)
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("ctor<%d>(%s)", c.Index, strings.Join(args, ", "))
}

// MatcherString matches a String by equality.
type MatcherString struct {
	Value string
}

func (s *MatcherString) matcherValue() {}
func (s *MatcherString) String() string { return fmt.Sprintf("%q", s.Value) }

// MatcherInt matches an Int by equality.
type MatcherInt struct {
	Value int64
}

func (i *MatcherInt) matcherValue() {}
func (i *MatcherInt) String() string { return fmt.Sprintf("%d", i.Value) }

// MatcherVariable refers to a cell of the enclosing implication's variable
// table, or is anonymous. Inhabited records whether the variable's type has
// any constructible value; binding a cell through an uninhabited variable
// fails the match.
type MatcherVariable struct {
	Index     int
	Inhabited bool
}

func (v *MatcherVariable) matcherValue() {}
func (v *MatcherVariable) String() string {
	if v.Index == AnonymousIndex {
		return "_"
	}
	return fmt.Sprintf("var<%d>", v.Index)
}

// MatcherBound embeds an already-resolved runtime value into a pattern.
// Instantiation produces these when it replaces a variable occurrence with
// an indirection into its bound cell.
type MatcherBound struct {
	Value RuntimeValue
}

func (b *MatcherBound) matcherValue()  {}
func (b *MatcherBound) String() string { return b.Value.String() }
