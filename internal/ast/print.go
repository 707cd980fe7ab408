package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented tree rendering of the program, one node per line.
func Print(w io.Writer, p *Program) {
	pr := printer{w: w}
	for _, t := range p.Types {
		pr.node(0, "TypeDef %s", t.Name)
		for _, c := range t.Ctors {
			pr.node(1, "CtorDecl %s(%s)", c.Name, strings.Join(c.Params, ", "))
		}
	}
	for _, e := range p.Effects {
		pr.node(0, "EffectDef %s", e.Name)
		for _, c := range e.Ctors {
			params := make([]string, len(c.Params))
			for i, param := range c.Params {
				params[i] = param.String()
			}
			pr.node(1, "EffectCtorDecl %s(%s)", c.Name, strings.Join(params, ", "))
		}
	}
	for _, pd := range p.Predicates {
		params := make([]string, len(pd.Params))
		for i, param := range pd.Params {
			params[i] = param.String()
		}
		effects := make([]string, len(pd.Effects))
		for i, e := range pd.Effects {
			effects[i] = e.Name
		}
		pr.node(0, "PredDef %s(%s): [%s]", pd.Name, strings.Join(params, ", "), strings.Join(effects, ", "))
		for _, impl := range pd.Impls {
			pr.node(1, "Implication")
			pr.node(2, "Head %s", impl.Head.String())
			pr.expr(2, impl.Body)
		}
		for _, h := range pd.Handlers {
			pr.node(1, "HandlerDef %s", h.Effect)
			for _, impl := range h.Impls {
				args := make([]string, len(impl.Args))
				for i, a := range impl.Args {
					args[i] = a.String()
				}
				pr.node(2, "EffectImplication %s(%s)", impl.Ctor, strings.Join(args, ", "))
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
	case *TruthLiteral:
		p.node(depth, "TruthLiteral %s", e.String())
	case *PredRef:
		p.node(depth, "PredRef %s", e.String())
	case *DoExpr:
		p.node(depth, "DoExpr %s", e.String())
	case *ContinueExpr:
		p.node(depth, "Continue")
	case *Conjunction:
		p.node(depth, "Conjunction")
		p.expr(depth+1, e.Left)
		p.expr(depth+1, e.Right)
	}
}
