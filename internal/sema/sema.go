// Package sema raises the surface AST to the typed IR, checking every name,
// arity, type, and effect rule along the way. Diagnostics are collected
// rather than thrown; callers inspect the reporter after Check returns. The
// typed program it produces satisfies the invariants the interpreter relies
// on, so sema must run before lowering.
package sema

import (
	"strconv"

	"github.com/allium-lang/allium/internal/ast"
	"github.com/allium-lang/allium/internal/errors"
	"github.com/allium-lang/allium/internal/typedast"
)

// Check analyzes a parsed program and returns the typed IR along with the
// diagnostics emitted while checking. The typed program is only meaningful
// if the reporter is empty.
func Check(prog *ast.Program) (*typedast.Program, *errors.Reporter) {
	a := &analyzer{
		reporter: errors.NewReporter("sema"),
		out:      &typedast.Program{},
		rejected: map[*ast.PredDef]bool{},
	}
	a.collectTypes(prog)
	a.collectEffects(prog)
	a.collectPredicateDecls(prog)
	a.checkPredicates(prog)
	return a.out, a.reporter
}

type analyzer struct {
	reporter *errors.Reporter
	out      *typedast.Program
	rejected map[*ast.PredDef]bool
}

func (a *analyzer) emit(pos ast.Pos, kind errors.Kind, args ...string) {
	a.reporter.Emit(pos, kind, args...)
}

func (a *analyzer) collectTypes(prog *ast.Program) {
	for _, td := range prog.Types {
		if typedast.IsBuiltinType(td.Name) {
			a.emit(td.Pos, errors.BuiltinRedefined, td.Name)
			continue
		}
		if _, ok := a.out.ResolveType(typedast.TypeRef(td.Name)); ok {
			a.emit(td.Pos, errors.TypeRedefined, td.Name)
			continue
		}
		t := typedast.Type{Name: td.Name}
		for _, cd := range td.Ctors {
			ctor := typedast.Constructor{Name: cd.Name}
			for _, param := range cd.Params {
				ctor.Params = append(ctor.Params, typedast.TypeRef(param))
			}
			t.Ctors = append(t.Ctors, ctor)
		}
		a.out.Types = append(a.out.Types, t)
	}

	// Constructor parameter types can refer to types defined later, so
	// resolve them only after the whole type list is known.
	for _, td := range prog.Types {
		for _, cd := range td.Ctors {
			for _, param := range cd.Params {
				if _, ok := a.out.ResolveType(typedast.TypeRef(param)); !ok {
					a.emit(cd.Pos, errors.UndefinedType, param)
				}
			}
		}
	}
}

func (a *analyzer) collectEffects(prog *ast.Program) {
	for _, ed := range prog.Effects {
		if typedast.IsBuiltinEffect(ed.Name) {
			a.emit(ed.Pos, errors.BuiltinRedefined, ed.Name)
			continue
		}
		if _, ok := a.out.ResolveEffect(ed.Name); ok {
			a.emit(ed.Pos, errors.EffectRedefined, ed.Name)
			continue
		}
		e := typedast.Effect{Name: ed.Name}
		for _, cd := range ed.Ctors {
			ctor := typedast.EffectCtor{Name: cd.Name}
			for _, param := range cd.Params {
				if _, ok := a.out.ResolveType(typedast.TypeRef(param.Type)); !ok {
					a.emit(param.Pos, errors.UndefinedType, param.Type)
				}
				ctor.Params = append(ctor.Params, typedast.Parameter{
					Type:      typedast.TypeRef(param.Type),
					InputOnly: param.InputOnly,
				})
			}
			e.Ctors = append(e.Ctors, ctor)
		}
		a.out.Effects = append(a.out.Effects, e)
	}
}

func (a *analyzer) collectPredicateDecls(prog *ast.Program) {
	for _, pd := range prog.Predicates {
		if _, ok := typedast.ResolveBuiltinPredicate(pd.Name); ok {
			a.emit(pd.Pos, errors.BuiltinRedefined, pd.Name)
			a.rejected[pd] = true
			continue
		}
		if _, ok := a.out.ResolvePredicate(pd.Name); ok {
			a.emit(pd.Pos, errors.PredicateRedefined, pd.Name)
			a.rejected[pd] = true
			continue
		}
		decl := typedast.PredicateDecl{Name: pd.Name}
		for _, param := range pd.Params {
			if _, ok := a.out.ResolveType(typedast.TypeRef(param.Type)); !ok {
				a.emit(param.Pos, errors.UndefinedType, param.Type)
			}
			decl.Params = append(decl.Params, typedast.Parameter{
				Type:      typedast.TypeRef(param.Type),
				InputOnly: param.InputOnly,
			})
		}
		for _, eff := range pd.Effects {
			if _, ok := a.out.ResolveEffect(eff.Name); !ok {
				a.emit(eff.Pos, errors.UndefinedEffect, eff.Name)
				continue
			}
			decl.Effects = append(decl.Effects, eff.Name)
		}
		a.out.Predicates = append(a.out.Predicates, typedast.Predicate{Decl: decl})
	}
}

func (a *analyzer) checkPredicates(prog *ast.Program) {
	for _, pd := range prog.Predicates {
		if a.rejected[pd] {
			continue
		}
		pred, ok := a.out.ResolvePredicate(pd.Name)
		if !ok {
			continue
		}
		pc := &predChecker{analyzer: a, decl: &pred.Decl, def: pd}
		for _, impl := range pd.Impls {
			if t, ok := pc.checkImplication(impl); ok {
				pred.Impls = append(pred.Impls, t)
			}
		}
		for _, h := range pd.Handlers {
			if t, ok := pc.checkHandler(h); ok {
				pred.Handlers = append(pred.Handlers, t)
			}
		}
	}

	// The entry point runs under an initial handler stack that contains
	// only the builtin handlers, so any user effect it declares can never
	// be handled.
	if main, ok := a.out.ResolvePredicate("main"); ok {
		for _, eff := range main.Decl.Effects {
			if !typedast.IsBuiltinEffect(eff) {
				a.emit(mainPos(prog), errors.EffectUnhandled, eff, "main")
			}
		}
	}
}

func mainPos(prog *ast.Program) ast.Pos {
	for _, pd := range prog.Predicates {
		if pd.Name == "main" {
			return pd.Pos
		}
	}
	return ast.Pos{}
}

// predChecker checks the clauses of a single predicate definition.
type predChecker struct {
	*analyzer
	decl *typedast.PredicateDecl
	def  *ast.PredDef
}

// handlesEffect reports whether the predicate has a handler block for the
// named effect.
func (pc *predChecker) handlesEffect(name string) bool {
	for _, h := range pc.def.Handlers {
		if h.Effect == name {
			return true
		}
	}
	return false
}

// declaresEffect reports whether the named effect is in the predicate's
// effect list. Builtin effects are implicitly declared everywhere: their
// default handlers sit at the bottom of every handler stack.
func (pc *predChecker) declaresEffect(name string) bool {
	if typedast.IsBuiltinEffect(name) {
		return true
	}
	for _, eff := range pc.decl.Effects {
		if eff == name {
			return true
		}
	}
	return false
}

// implScope tracks the variables of one implication while it is checked.
type implScope struct {
	types map[string]typedast.TypeRef
}

func (pc *predChecker) checkImplication(impl *ast.Implication) (typedast.Implication, bool) {
	if impl.Head.Name != pc.decl.Name {
		pc.emit(impl.Pos, errors.ImplHeadMismatch, impl.Head.Name, pc.decl.Name)
		return typedast.Implication{}, false
	}
	if len(impl.Head.Args) != len(pc.decl.Params) {
		pc.emit(impl.Pos, errors.PredicateArgumentCount,
			pc.decl.Name, itoa(len(pc.decl.Params)), itoa(len(impl.Head.Args)))
		return typedast.Implication{}, false
	}

	// A head pattern receives the call's values, so definitions are
	// permitted even in input-only positions; the input-only restrictions
	// apply at reference sites.
	scope := &implScope{types: map[string]typedast.TypeRef{}}
	head := typedast.PredicateRef{Name: pc.decl.Name}
	for i, arg := range impl.Head.Args {
		param := pc.decl.Params[i]
		head.Args = append(head.Args, pc.checkValue(arg, param.Type, scope, false))
	}
	body := pc.checkExpr(impl.Body, scope, false)
	return typedast.Implication{Head: head, Body: body}, true
}

func (pc *predChecker) checkHandler(h *ast.HandlerDef) (typedast.Handler, bool) {
	eff, ok := pc.out.ResolveEffect(h.Effect)
	if !ok {
		pc.emit(h.Pos, errors.UndefinedEffect, h.Effect)
		return typedast.Handler{}, false
	}
	handler := typedast.Handler{Effect: h.Effect}
	for _, impl := range h.Impls {
		ctorIdx := -1
		for i := range eff.Ctors {
			if eff.Ctors[i].Name == impl.Ctor {
				ctorIdx = i
				break
			}
		}
		if ctorIdx < 0 {
			pc.emit(impl.Pos, errors.EffectImplHeadMismatch, impl.Ctor, h.Effect)
			continue
		}
		ctor := &eff.Ctors[ctorIdx]
		if len(impl.Args) != len(ctor.Params) {
			pc.emit(impl.Pos, errors.EffectCtorArgumentCount,
				impl.Ctor, itoa(len(ctor.Params)), itoa(len(impl.Args)))
			continue
		}
		scope := &implScope{types: map[string]typedast.TypeRef{}}
		t := typedast.EffectImplication{Effect: h.Effect, Ctor: impl.Ctor}
		for i, arg := range impl.Args {
			param := ctor.Params[i]
			t.Args = append(t.Args, pc.checkValue(arg, param.Type, scope, false))
		}
		t.Body = pc.checkExpr(impl.Body, scope, true)
		handler.Impls = append(handler.Impls, t)
	}
	return handler, true
}

// checkValue resolves a surface value at an expected type. inputOnly marks
// positions inside an input-only argument, where definitions and anonymous
// variables are rejected.
func (pc *predChecker) checkValue(v ast.Value, expected typedast.TypeRef, scope *implScope, inputOnly bool) typedast.Value {
	switch v := v.(type) {
	case *ast.AnonymousValue:
		if inputOnly {
			pc.emit(v.Pos, errors.InputArgumentIsAnonymous)
		}
		return typedast.AnonymousVariable{Type: expected}

	case *ast.BindingValue:
		if inputOnly {
			pc.emit(v.Pos, errors.InputArgumentIsDefinition, v.Name)
		}
		if _, defined := scope.types[v.Name]; defined {
			pc.emit(v.Pos, errors.VariableRedefined, v.Name)
			return typedast.Variable{Name: v.Name, Type: scope.types[v.Name], IsDefinition: false}
		}
		scope.types[v.Name] = expected
		return typedast.Variable{Name: v.Name, Type: expected, IsDefinition: true}

	case *ast.NamedValue:
		if _, ctor, ok := pc.resolveCtor(expected, v.Name); ok {
			if len(v.Args) != len(ctor.Params) {
				pc.emit(v.Pos, errors.CtorArgumentCount,
					v.Name, itoa(len(ctor.Params)), itoa(len(v.Args)))
				return typedast.ConstructorRef{Type: expected, Name: v.Name}
			}
			cr := typedast.ConstructorRef{Type: expected, Name: v.Name}
			for i, arg := range v.Args {
				cr.Args = append(cr.Args, pc.checkValue(arg, ctor.Params[i], scope, inputOnly))
			}
			return cr
		}
		if len(v.Args) > 0 {
			pc.emit(v.Pos, errors.UnknownConstructor, v.Name, string(expected))
			return typedast.AnonymousVariable{Type: expected}
		}
		if defType, ok := scope.types[v.Name]; ok {
			if defType != expected {
				pc.emit(v.Pos, errors.VariableTypeMismatch, v.Name, string(defType), string(expected))
			}
			return typedast.Variable{Name: v.Name, Type: defType, IsDefinition: false}
		}
		pc.emit(v.Pos, errors.UnknownConstructorOrVar, v.Name, string(expected))
		return typedast.AnonymousVariable{Type: expected}

	case *ast.StringValue:
		if expected != typedast.TypeString {
			pc.emit(v.Pos, errors.StringLiteralNotAllowed, string(expected))
		}
		return typedast.StringLiteral{Value: v.Value}

	case *ast.IntValue:
		if expected != typedast.TypeInt {
			pc.emit(v.Pos, errors.IntLiteralNotAllowed, string(expected))
		}
		return typedast.IntLiteral{Value: v.Value}
	}
	return typedast.AnonymousVariable{Type: expected}
}

func (pc *predChecker) resolveCtor(tr typedast.TypeRef, name string) (int, *typedast.Constructor, bool) {
	return pc.out.ResolveCtor(tr, name)
}

// checkExpr resolves a body expression. inHandler permits the continue atom.
func (pc *predChecker) checkExpr(e ast.Expr, scope *implScope, inHandler bool) typedast.Expr {
	switch e := e.(type) {
	case *ast.TruthLiteral:
		return typedast.TruthLiteral{Value: e.Value}

	case *ast.ContinueExpr:
		if !inHandler {
			pc.emit(e.Pos, errors.ContinueOutsideHandler)
			return typedast.TruthLiteral{Value: false}
		}
		return typedast.Continue{}

	case *ast.Conjunction:
		return typedast.Conjunction{
			Left:  pc.checkExpr(e.Left, scope, inHandler),
			Right: pc.checkExpr(e.Right, scope, inHandler),
		}

	case *ast.PredRef:
		return pc.checkPredRef(e, scope)

	case *ast.DoExpr:
		return pc.checkDoExpr(e, scope, inHandler)
	}
	return typedast.TruthLiteral{Value: false}
}

func (pc *predChecker) checkPredRef(e *ast.PredRef, scope *implScope) typedast.Expr {
	decl, ok := typedast.ResolveBuiltinPredicate(e.Name)
	if !ok {
		callee, found := pc.out.ResolvePredicate(e.Name)
		if !found {
			pc.emit(e.Pos, errors.UndefinedPredicate, e.Name)
			return typedast.TruthLiteral{Value: false}
		}
		decl = callee.Decl

		// Effect propagation: proving a predicate that may perform E
		// requires this predicate to declare or handle E.
		for _, eff := range decl.Effects {
			if !pc.declaresEffect(eff) && !pc.handlesEffect(eff) {
				pc.emit(e.Pos, errors.EffectFromPredicateUnhandled, e.Name, eff, pc.decl.Name)
			}
		}
	}
	if len(e.Args) != len(decl.Params) {
		pc.emit(e.Pos, errors.PredicateArgumentCount,
			e.Name, itoa(len(decl.Params)), itoa(len(e.Args)))
		return typedast.TruthLiteral{Value: false}
	}
	ref := typedast.PredicateRef{Name: e.Name, Pos: e.Pos}
	for i, arg := range e.Args {
		param := decl.Params[i]
		// Definitions are permitted in output positions at call sites;
		// only input-only arguments reject them.
		ref.Args = append(ref.Args, pc.checkValue(arg, param.Type, scope, param.InputOnly))
	}
	return ref
}

func (pc *predChecker) checkDoExpr(e *ast.DoExpr, scope *implScope, inHandler bool) typedast.Expr {
	effName, ctor, ok := pc.resolveAvailableEffectCtor(e.Ctor)
	if !ok {
		// Distinguish a constructor that exists somewhere from one that
		// does not exist at all.
		if eff, found := pc.findEffectWithCtor(e.Ctor); found {
			pc.emit(e.Pos, errors.EffectUnhandled, eff, pc.decl.Name)
		} else {
			pc.emit(e.Pos, errors.UndefinedEffectCtor, e.Ctor)
		}
		return typedast.TruthLiteral{Value: false}
	}
	if len(e.Args) != len(ctor.Params) {
		pc.emit(e.Pos, errors.EffectCtorArgumentCount,
			e.Ctor, itoa(len(ctor.Params)), itoa(len(e.Args)))
		return typedast.TruthLiteral{Value: false}
	}
	ref := typedast.EffectCtorRef{Effect: effName, Ctor: e.Ctor, Pos: e.Pos}
	for i, arg := range e.Args {
		param := ctor.Params[i]
		ref.Args = append(ref.Args, pc.checkValue(arg, param.Type, scope, param.InputOnly))
	}
	if e.Cont != nil {
		ref.Cont = pc.checkExpr(e.Cont, scope, inHandler)
	} else {
		ref.Cont = typedast.TruthLiteral{Value: true}
	}
	return ref
}

// resolveAvailableEffectCtor searches the effects available to this
// predicate (declared, handled, or builtin) for a constructor with the
// given name.
func (pc *predChecker) resolveAvailableEffectCtor(ctorName string) (string, *typedast.EffectCtor, bool) {
	var available []string
	available = append(available, typedast.EffectIO)
	available = append(available, pc.decl.Effects...)
	for _, h := range pc.def.Handlers {
		available = append(available, h.Effect)
	}
	for _, effName := range available {
		eff, ok := pc.out.ResolveEffect(effName)
		if !ok {
			continue
		}
		for i := range eff.Ctors {
			if eff.Ctors[i].Name == ctorName {
				return effName, &eff.Ctors[i], true
			}
		}
	}
	return "", nil, false
}

// findEffectWithCtor searches every effect in the program for a constructor
// with the given name.
func (pc *predChecker) findEffectWithCtor(ctorName string) (string, bool) {
	if eff, ok := pc.out.ResolveEffect(typedast.EffectIO); ok {
		for i := range eff.Ctors {
			if eff.Ctors[i].Name == ctorName {
				return eff.Name, true
			}
		}
	}
	for i := range pc.out.Effects {
		for j := range pc.out.Effects[i].Ctors {
			if pc.out.Effects[i].Ctors[j].Name == ctorName {
				return pc.out.Effects[i].Name, true
			}
		}
	}
	return "", false
}

func itoa(n int) string { return strconv.Itoa(n) }
