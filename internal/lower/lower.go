// Package lower erases syntactic information from a checked program:
// names become indices, variables become positions in per-implication
// variable tables, and builtin predicates resolve to their native
// implementations. The transformation is pure; it assumes every invariant
// the checker establishes and panics where one fails to hold.
package lower

import (
	"fmt"

	"github.com/allium-lang/allium/internal/analysis"
	"github.com/allium-lang/allium/internal/interp"
	"github.com/allium-lang/allium/internal/typedast"
)

// Lower maps a checked program to its runtime form.
func Lower(t *typedast.Program, level interp.LogLevel) *interp.Program {
	lw := &lowerer{
		prog:      t,
		inhabited: analysis.Inhabited(t),
	}

	predicates := make([]interp.Predicate, 0, len(t.Predicates))
	names := make([]string, 0, len(t.Predicates))
	var entry *interp.PredicateReference
	for i := range t.Predicates {
		pred := &t.Predicates[i]
		predicates = append(predicates, lw.predicate(pred))
		names = append(names, pred.Decl.Name)

		if pred.Decl.Name == "main" && len(pred.Decl.Params) == 0 {
			// If main took arguments, this is where the driver would
			// pass them in.
			entry = &interp.PredicateReference{Index: i}
		}
	}
	return interp.NewProgram(predicates, entry, names, level)
}

type lowerer struct {
	prog      *typedast.Program
	inhabited map[typedast.TypeRef]bool

	// vars is the variable list of the implication currently being
	// lowered; a variable's runtime index is its position here.
	vars []typedast.ScopeEntry
}

func (lw *lowerer) predicate(pred *typedast.Predicate) interp.Predicate {
	out := interp.Predicate{}
	for i := range pred.Impls {
		out.Impls = append(out.Impls, lw.implication(&pred.Impls[i]))
	}
	for i := range pred.Handlers {
		out.Handlers = append(out.Handlers, lw.handler(&pred.Handlers[i]))
	}
	return out
}

func (lw *lowerer) implication(impl *typedast.Implication) interp.Implication {
	lw.vars = typedast.ImplicationVariables(impl)
	head := lw.predicateRef(&impl.Head)
	body := lw.expr(impl.Body)
	return interp.Implication{
		Head:          *head,
		Body:          body,
		VariableCount: len(lw.vars),
	}
}

func (lw *lowerer) handler(h *typedast.Handler) interp.UserHandler {
	effectIndex, ok := lw.prog.EffectIndex(h.Effect)
	if !ok {
		panic(fmt.Sprintf("lower: unresolved effect %s", h.Effect))
	}
	out := interp.UserHandler{EffectIndex: effectIndex}
	for i := range h.Impls {
		impl := &h.Impls[i]
		lw.vars = typedast.EffectImplicationVariables(impl)
		ctorIndex, _, ok := lw.prog.ResolveEffectCtor(impl.Effect, impl.Ctor)
		if !ok {
			panic(fmt.Sprintf("lower: unresolved effect constructor %s.%s", impl.Effect, impl.Ctor))
		}
		args := make([]interp.MatcherValue, len(impl.Args))
		for j, a := range impl.Args {
			args[j] = lw.value(a)
		}
		out.Impls = append(out.Impls, interp.EffectImplication{
			EffectIndex:   effectIndex,
			CtorIndex:     ctorIndex,
			Args:          args,
			Body:          lw.expr(impl.Body),
			VariableCount: len(lw.vars),
		})
	}
	return out
}

func (lw *lowerer) predicateRef(pr *typedast.PredicateRef) *interp.PredicateReference {
	index, ok := lw.prog.PredicateIndex(pr.Name)
	if !ok {
		panic(fmt.Sprintf("lower: unresolved predicate %s", pr.Name))
	}
	args := make([]interp.MatcherValue, len(pr.Args))
	for i, a := range pr.Args {
		args[i] = lw.value(a)
	}
	return &interp.PredicateReference{Index: index, Args: args}
}

func (lw *lowerer) value(v typedast.Value) interp.MatcherValue {
	switch v := v.(type) {
	case typedast.AnonymousVariable:
		return &interp.MatcherVariable{
			Index:     interp.AnonymousIndex,
			Inhabited: lw.inhabited[v.Type],
		}
	case typedast.Variable:
		return &interp.MatcherVariable{
			Index:     lw.varIndex(v.Name),
			Inhabited: lw.inhabited[v.Type],
		}
	case typedast.ConstructorRef:
		index, ctor, ok := lw.prog.ResolveCtor(v.Type, v.Name)
		if !ok {
			panic(fmt.Sprintf("lower: unresolved constructor %s of %s", v.Name, v.Type))
		}
		if len(ctor.Params) != len(v.Args) {
			panic(fmt.Sprintf("lower: constructor %s arity mismatch", v.Name))
		}
		args := make([]interp.MatcherValue, len(v.Args))
		for i, a := range v.Args {
			args[i] = lw.value(a)
		}
		return &interp.MatcherCtor{Index: index, Args: args}
	case typedast.StringLiteral:
		return &interp.MatcherString{Value: v.Value}
	case typedast.IntLiteral:
		return &interp.MatcherInt{Value: v.Value}
	}
	panic(fmt.Sprintf("lower: unexpected value %v", v))
}

func (lw *lowerer) varIndex(name string) int {
	for i := range lw.vars {
		if lw.vars[i].Name == name {
			return i
		}
	}
	panic(fmt.Sprintf("lower: variable %s not in scope", name))
}

func (lw *lowerer) expr(e typedast.Expr) interp.Expression {
	switch e := e.(type) {
	case typedast.TruthLiteral:
		return &interp.TruthValue{Value: e.Value}
	case typedast.Continue:
		return &interp.Continuation{}
	case typedast.Conjunction:
		return &interp.Conjunction{Left: lw.expr(e.Left), Right: lw.expr(e.Right)}
	case typedast.PredicateRef:
		if fn, ok := interp.LookupBuiltinPredicate(e.Name); ok {
			args := make([]interp.MatcherValue, len(e.Args))
			for i, a := range e.Args {
				args[i] = lw.value(a)
			}
			return &interp.BuiltinPredicateReference{Name: e.Name, Fn: fn, Args: args}
		}
		return lw.predicateRef(&e)
	case typedast.EffectCtorRef:
		effectIndex, ok := lw.prog.EffectIndex(e.Effect)
		if !ok {
			panic(fmt.Sprintf("lower: unresolved effect %s", e.Effect))
		}
		ctorIndex, _, ok := lw.prog.ResolveEffectCtor(e.Effect, e.Ctor)
		if !ok {
			panic(fmt.Sprintf("lower: unresolved effect constructor %s.%s", e.Effect, e.Ctor))
		}
		args := make([]interp.MatcherValue, len(e.Args))
		for i, a := range e.Args {
			args[i] = lw.value(a)
		}
		return &interp.EffectCtorReference{
			EffectIndex:  effectIndex,
			CtorIndex:    ctorIndex,
			Args:         args,
			Continuation: lw.expr(e.Cont),
		}
	}
	panic(fmt.Sprintf("lower: unexpected expression %v", e))
}
