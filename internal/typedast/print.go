package typedast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented tree rendering of the checked program.
func Print(w io.Writer, p *Program) {
	pr := printer{w: w}
	for _, t := range p.Types {
		pr.node(0, "Type %s", t.Name)
		for _, c := range t.Ctors {
			params := make([]string, len(c.Params))
			for i, tr := range c.Params {
				params[i] = string(tr)
			}
			pr.node(1, "Constructor %s(%s)", c.Name, strings.Join(params, ", "))
		}
	}
	for _, e := range p.Effects {
		pr.node(0, "Effect %s", e.Name)
		for _, c := range e.Ctors {
			params := make([]string, len(c.Params))
			for i, param := range c.Params {
				params[i] = param.String()
			}
			pr.node(1, "EffectCtor %s(%s)", c.Name, strings.Join(params, ", "))
		}
	}
	for i := range p.Predicates {
		pred := &p.Predicates[i]
		params := make([]string, len(pred.Decl.Params))
		for j, param := range pred.Decl.Params {
			params[j] = param.String()
		}
		pr.node(0, "Predicate %s(%s): [%s]", pred.Decl.Name, strings.Join(params, ", "), strings.Join(pred.Decl.Effects, ", "))
		for j := range pred.Impls {
			pr.node(1, "Implication")
			pr.node(2, "Head %s", pred.Impls[j].Head.String())
			pr.expr(2, pred.Impls[j].Body)
		}
		for j := range pred.Handlers {
			h := &pred.Handlers[j]
			pr.node(1, "Handler %s", h.Effect)
			for k := range h.Impls {
				impl := &h.Impls[k]
				args := make([]string, len(impl.Args))
				for m, a := range impl.Args {
					args[m] = a.String()
				}
				pr.node(2, "EffectImplication %s.%s(%s)", impl.Effect, impl.Ctor, strings.Join(args, ", "))
				pr.expr(3, impl.Body)
			}
		}
	}
}

type printer struct {
	w io.Writer
}

func (p *printer) node(depth int, format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) expr(depth int, e Expr) {
	switch e := e.(type) {
	case TruthLiteral:
		p.node(depth, "TruthLiteral %s", e.String())
	case PredicateRef:
		p.node(depth, "PredicateRef %s", e.String())
	case EffectCtorRef:
		p.node(depth, "EffectCtorRef %s.%s", e.Effect, e.Ctor)
		p.expr(depth+1, e.Cont)
	case Continue:
		p.node(depth, "Continue")
	case Conjunction:
		p.node(depth, "Conjunction")
		p.expr(depth+1, e.Left)
		p.expr(depth+1, e.Right)
	}
}
