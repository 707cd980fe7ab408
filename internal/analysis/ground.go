package analysis

import (
	"strings"

	"github.com/allium-lang/allium/internal/ast"
	"github.com/allium-lang/allium/internal/errors"
	"github.com/allium-lang/allium/internal/typedast"
)

// The ground-mode analysis verifies that every input-only parameter receives
// a ground value on every path from main. It runs over an abstract domain
// per variable: ground, nonground, or a constructor applied to argument
// domains. The result does not alter lowering; it only produces diagnostics.

type groundMode int

const (
	modeNonGround groundMode = iota
	modeGround
	modeCtor
)

// Domain is one abstract groundness value.
type Domain struct {
	mode groundMode
	ctor string
	args []*Domain
}

var (
	ground    = &Domain{mode: modeGround}
	nonGround = &Domain{mode: modeNonGround}
)

func ctorDomain(name string, args []*Domain) *Domain {
	all := true
	for _, a := range args {
		if a.mode != modeGround {
			all = false
			break
		}
	}
	if all {
		return ground
	}
	return &Domain{mode: modeCtor, ctor: name, args: args}
}

// IsGround reports whether the domain denotes a fully known value.
func (d *Domain) IsGround() bool { return d.mode == modeGround }

// meet refines a domain with new information; the result is at least as
// ground as either operand.
func meet(a, b *Domain) *Domain {
	switch {
	case a.mode == modeGround || b.mode == modeGround:
		return ground
	case a.mode == modeNonGround:
		return b
	case b.mode == modeNonGround:
		return a
	case a.ctor == b.ctor && len(a.args) == len(b.args):
		args := make([]*Domain, len(a.args))
		for i := range a.args {
			args[i] = meet(a.args[i], b.args[i])
		}
		return ctorDomain(a.ctor, args)
	default:
		// Incompatible constructors cannot both match at runtime; the
		// path is dead, so either operand is sound here.
		return a
	}
}

// join combines the outcomes of alternative implications; the result is
// only as ground as every operand guarantees.
func join(a, b *Domain) *Domain {
	switch {
	case a.mode == modeGround && b.mode == modeGround:
		return ground
	case a.mode == modeCtor && b.mode == modeCtor && a.ctor == b.ctor && len(a.args) == len(b.args):
		args := make([]*Domain, len(a.args))
		for i := range a.args {
			args[i] = join(a.args[i], b.args[i])
		}
		return ctorDomain(a.ctor, args)
	case a.mode == modeGround && b.mode == modeCtor:
		return b
	case a.mode == modeCtor && b.mode == modeGround:
		return a
	default:
		return nonGround
	}
}

// widen caps constructor nesting so that memo keys stay finite on
// recursive predicates.
const maxDomainDepth = 8

func widen(d *Domain, depth int) *Domain {
	if d.mode != modeCtor {
		return d
	}
	if depth <= 0 {
		return nonGround
	}
	args := make([]*Domain, len(d.args))
	for i := range d.args {
		args[i] = widen(d.args[i], depth-1)
	}
	return ctorDomain(d.ctor, args)
}

func (d *Domain) key() string {
	switch d.mode {
	case modeGround:
		return "g"
	case modeNonGround:
		return "n"
	default:
		parts := make([]string, len(d.args))
		for i, a := range d.args {
			parts[i] = a.key()
		}
		return d.ctor + "(" + strings.Join(parts, ",") + ")"
	}
}

func stateKey(name string, in []*Domain) string {
	parts := make([]string, len(in))
	for i, d := range in {
		parts[i] = d.key()
	}
	return name + "|" + strings.Join(parts, ";")
}

// CheckGround runs the analysis from main and returns its diagnostics.
// Programs without a main predicate have no paths to check.
func CheckGround(p *typedast.Program) *errors.Reporter {
	g := &groundChecker{
		prog:     p,
		graph:    BuildDepGraph(p),
		reporter: errors.NewReporter("ground"),
		memo:     map[string][]*Domain{},
		analyzed: map[string]bool{},
	}
	if main, ok := p.ResolvePredicate("main"); ok && len(main.Decl.Params) == 0 {
		g.analyzePred("main", nil)
	}
	return g.reporter
}

type groundChecker struct {
	prog     *typedast.Program
	graph    *DepGraph
	reporter *errors.Reporter
	memo     map[string][]*Domain
	analyzed map[string]bool // predicates whose handlers were checked
}

// analyzePred computes the output groundness of a predicate's parameters
// given the groundness of its actuals, memoized per distinct input state.
// For recursive predicates the non-recursive implications seed the memo
// entry before the recursive ones are processed.
func (g *groundChecker) analyzePred(name string, in []*Domain) []*Domain {
	key := stateKey(name, in)
	if out, ok := g.memo[key]; ok {
		return out
	}
	pred, ok := g.prog.ResolvePredicate(name)
	if !ok {
		return in
	}
	if !g.analyzed[name] {
		g.analyzed[name] = true
		g.analyzeHandlers(pred)
	}

	recursive := g.graph.Recursive(name)
	var out []*Domain
	if recursive {
		seed := g.joinImplications(pred, in, func(impl *typedast.Implication) bool {
			return !g.reachesSelf(name, impl.Body)
		}, true)
		if seed == nil {
			seed = in
		}
		g.memo[key] = seed
	} else {
		g.memo[key] = in
	}

	out = g.joinImplications(pred, in, func(*typedast.Implication) bool { return true }, false)
	if out == nil {
		out = in
	}
	g.memo[key] = out
	return out
}

// joinImplications analyzes the implications selected by keep and joins
// their outputs. Returns nil when no implication was selected. quiet
// suppresses diagnostics so the seeding pass does not double-report.
func (g *groundChecker) joinImplications(pred *typedast.Predicate, in []*Domain, keep func(*typedast.Implication) bool, quiet bool) []*Domain {
	var out []*Domain
	for i := range pred.Impls {
		impl := &pred.Impls[i]
		if !keep(impl) {
			continue
		}
		implOut := g.analyzeImpl(impl, in, quiet)
		if out == nil {
			out = implOut
		} else {
			for j := range out {
				out[j] = join(out[j], implOut[j])
			}
		}
	}
	return out
}

func (g *groundChecker) reachesSelf(name string, body typedast.Expr) bool {
	found := false
	var walk func(typedast.Expr)
	walk = func(e typedast.Expr) {
		switch e := e.(type) {
		case typedast.PredicateRef:
			if e.Name == name || g.graph.DependsOn(e.Name, name) {
				found = true
			}
		case typedast.EffectCtorRef:
			walk(e.Cont)
		case typedast.Conjunction:
			walk(e.Left)
			walk(e.Right)
		}
	}
	walk(body)
	return found
}

// implState is the abstract store of one implication attempt.
type implState struct {
	vars map[string]*Domain
}

func (g *groundChecker) analyzeImpl(impl *typedast.Implication, in []*Domain, quiet bool) []*Domain {
	st := &implState{vars: map[string]*Domain{}}
	for _, v := range typedast.ImplicationVariables(impl) {
		st.vars[v.Name] = nonGround
	}
	for i, arg := range impl.Head.Args {
		d := nonGround
		if i < len(in) {
			d = in[i]
		}
		st.bind(arg, d)
	}
	g.walkExpr(impl.Body, st, quiet)

	out := make([]*Domain, len(impl.Head.Args))
	for i, arg := range impl.Head.Args {
		out[i] = widen(st.domainOf(arg), maxDomainDepth)
	}
	return out
}

// bind refines the store with the fact that value matched a subject of the
// given domain.
func (st *implState) bind(v typedast.Value, d *Domain) {
	switch v := v.(type) {
	case typedast.Variable:
		st.vars[v.Name] = meet(st.vars[v.Name], d)
	case typedast.ConstructorRef:
		switch d.mode {
		case modeGround:
			for _, a := range v.Args {
				st.bind(a, ground)
			}
		case modeCtor:
			if d.ctor == v.Name && len(d.args) == len(v.Args) {
				for i, a := range v.Args {
					st.bind(a, d.args[i])
				}
				return
			}
			for _, a := range v.Args {
				st.bind(a, nonGround)
			}
		default:
			for _, a := range v.Args {
				st.bind(a, nonGround)
			}
		}
	}
}

func (st *implState) domainOf(v typedast.Value) *Domain {
	switch v := v.(type) {
	case typedast.Variable:
		if d, ok := st.vars[v.Name]; ok {
			return d
		}
		return nonGround
	case typedast.ConstructorRef:
		args := make([]*Domain, len(v.Args))
		for i, a := range v.Args {
			args[i] = st.domainOf(a)
		}
		return ctorDomain(v.Name, args)
	case typedast.StringLiteral, typedast.IntLiteral:
		return ground
	default:
		return nonGround
	}
}

func (g *groundChecker) walkExpr(e typedast.Expr, st *implState, quiet bool) {
	switch e := e.(type) {
	case typedast.PredicateRef:
		actuals := make([]*Domain, len(e.Args))
		for i, a := range e.Args {
			actuals[i] = widen(st.domainOf(a), maxDomainDepth)
		}
		params := g.paramsOf(e.Name)
		if !quiet {
			g.checkInputs(e.Pos, e.Args, params, actuals)
		}
		out := g.callOut(e.Name, actuals)
		for i, a := range e.Args {
			if i < len(out) {
				st.bind(a, out[i])
			}
		}
	case typedast.EffectCtorRef:
		if _, ctor, ok := g.prog.ResolveEffectCtor(e.Effect, e.Ctor); ok {
			actuals := make([]*Domain, len(e.Args))
			for i, a := range e.Args {
				actuals[i] = st.domainOf(a)
			}
			if !quiet {
				g.checkInputs(e.Pos, e.Args, ctor.Params, actuals)
			}
		}
		g.walkExpr(e.Cont, st, quiet)
	case typedast.Conjunction:
		g.walkExpr(e.Left, st, quiet)
		g.walkExpr(e.Right, st, quiet)
	}
}

func (g *groundChecker) paramsOf(name string) []typedast.Parameter {
	if decl, ok := typedast.ResolveBuiltinPredicate(name); ok {
		return decl.Params
	}
	if pred, ok := g.prog.ResolvePredicate(name); ok {
		return pred.Decl.Params
	}
	return nil
}

// callOut returns the output groundness of a call. Builtin predicates
// ground every parameter: concat either checks or binds its third argument.
func (g *groundChecker) callOut(name string, actuals []*Domain) []*Domain {
	if decl, ok := typedast.ResolveBuiltinPredicate(name); ok {
		out := make([]*Domain, len(decl.Params))
		for i := range out {
			out[i] = ground
		}
		return out
	}
	return g.analyzePred(name, actuals)
}

func (g *groundChecker) checkInputs(pos ast.Pos, args []typedast.Value, params []typedast.Parameter, actuals []*Domain) {
	for i, param := range params {
		if !param.InputOnly || i >= len(actuals) || actuals[i].IsGround() {
			continue
		}
		switch v := args[i].(type) {
		case typedast.AnonymousVariable:
			g.reporter.Emit(pos, errors.AnonymousArgumentIsNotGround)
		case typedast.Variable:
			g.reporter.Emit(pos, errors.ArgumentIsNotGround, v.Name)
		default:
			g.reporter.Emit(pos, errors.ArgumentIsNotGround, args[i].String())
		}
	}
}

// analyzeHandlers checks handler clause bodies. A handler runs with its
// input-only head arguments ground (the perform site guarantees that) and
// everything else unknown.
func (g *groundChecker) analyzeHandlers(pred *typedast.Predicate) {
	for i := range pred.Handlers {
		h := &pred.Handlers[i]
		for j := range h.Impls {
			impl := &h.Impls[j]
			_, ctor, ok := g.prog.ResolveEffectCtor(impl.Effect, impl.Ctor)
			if !ok {
				continue
			}
			st := &implState{vars: map[string]*Domain{}}
			for _, v := range typedast.EffectImplicationVariables(impl) {
				st.vars[v.Name] = nonGround
			}
			for k, arg := range impl.Args {
				d := nonGround
				if k < len(ctor.Params) && ctor.Params[k].InputOnly {
					d = ground
				}
				st.bind(arg, d)
			}
			g.walkExpr(impl.Body, st, false)
		}
	}
}
