package interp

import (
	"fmt"

	"github.com/allium-lang/allium/internal/seq"
)

// fatalf aborts the process with a distinguishable message. Reaching it
// means a semantic-analysis invariant was violated at runtime, which is a
// checker bug, not a user error.
func fatalf(format string, args ...any) {
	panic("allium: internal interpreter error: " + fmt.Sprintf(format, args...))
}

// contInfo carries the continuation of the effect currently being handled:
// the expression captured at the perform site, the context it was captured
// in, and the handler stack it resumes under.
type contInfo struct {
	expr  Expression
	ctx   Context
	stack *handlerStack

	// k is the continuation info that was in scope where the effect was
	// performed. The captured expression may itself contain a continue
	// atom when the perform site sits inside another handler body.
	k *contInfo
}

// witnesses constructs the lazy sequence of witnesses of expr. Each tick of
// the sequence is one successful witness; bindings written into ctx while
// producing it are the caller's outputs.
func witnesses(p *Program, expr Expression, ctx Context, stack *handlerStack) seq.Seq {
	return produce(p, expr, ctx, stack, nil)
}

// produce dispatches on the expression shape. k is non-nil only while a
// handler body is being proven; it gives Continuation its meaning.
func produce(p *Program, expr Expression, ctx Context, stack *handlerStack, k *contInfo) seq.Seq {
	switch e := expr.(type) {
	case *TruthValue:
		return seq.Bool(e.Value)
	case *Conjunction:
		return newConjProducer(p, e, ctx, stack, k)
	case *PredicateReference:
		return newPredProducer(p, e, ctx, stack)
	case *BuiltinPredicateReference:
		return newBuiltinProducer(p, e, ctx)
	case *EffectCtorReference:
		return newEffectProducer(p, e, ctx, stack, k)
	case *Continuation:
		if k == nil {
			fatalf("continue outside of a handler body")
		}
		return produce(p, k.expr, k.ctx, k.stack, k.k)
	}
	fatalf("unprovable expression %v", expr)
	return nil
}

// conjProducer enumerates the product of its operands: for each tick of
// the left producer it exhausts the right one, which is rebuilt after every
// left tick so that it observes the left witness's bindings.
type conjProducer struct {
	p     *Program
	e     *Conjunction
	ctx   Context
	stack *handlerStack
	k     *contInfo

	left     seq.Seq
	right    seq.Seq
	haveLeft bool
}

func newConjProducer(p *Program, e *Conjunction, ctx Context, stack *handlerStack, k *contInfo) *conjProducer {
	return &conjProducer{
		p:     p,
		e:     e,
		ctx:   ctx,
		stack: stack,
		k:     k,
		left:  produce(p, e.Left, ctx, stack, k),
	}
}

func (c *conjProducer) Next() bool {
	for {
		if !c.haveLeft {
			if !c.left.Next() {
				return false
			}
			c.haveLeft = true
			c.right = produce(c.p, c.e.Right, c.ctx, c.stack, c.k)
		}
		if c.right.Next() {
			return true
		}
		c.right.Close()
		c.right = nil
		c.haveLeft = false
	}
}

func (c *conjProducer) Close() {
	if c.right != nil {
		c.right.Close()
		c.right = nil
	}
	c.left.Close()
}

// predProducer enumerates the witnesses of a predicate reference by trying
// each implication in source order. The predicate's own handlers are pushed
// for the producer's lifetime, so they are visible to its body, including
// through recursive calls.
type predProducer struct {
	p        *Program
	pr       *PredicateReference
	stack    *handlerStack
	pred     *Predicate
	subjects []RuntimeValue
	failed   bool
	pushed   int

	implIdx int
	body    seq.Seq
}

func newPredProducer(p *Program, pr *PredicateReference, ctx Context, stack *handlerStack) *predProducer {
	if pr.Index < 0 || pr.Index >= len(p.Predicates) {
		fatalf("predicate index %d out of bounds", pr.Index)
	}
	pred := &p.Predicates[pr.Index]

	w := &predProducer{p: p, pr: pr, stack: stack, pred: pred}
	for i := range pred.Handlers {
		stack.push(handlerEntry{EffectIndex: pred.Handlers[i].EffectIndex, User: &pred.Handlers[i]})
		w.pushed++
	}

	p.Logger.Debug("prove", "predicate", p.predicateName(pr.Index), "call", pr.String())

	subjects, ok := resolveArgs(pr.Args, ctx)
	if !ok {
		w.failed = true
		return w
	}
	w.subjects = subjects
	return w
}

func (w *predProducer) Next() bool {
	if w.failed {
		return false
	}
	for {
		if w.body != nil {
			if w.body.Next() {
				return true
			}
			w.body.Close()
			w.body = nil
			w.implIdx++
		}
		if w.implIdx >= len(w.pred.Impls) {
			return false
		}
		impl := &w.pred.Impls[w.implIdx]
		w.p.Logger.Trace("try", "predicate", w.p.predicateName(w.pr.Index), "implication", impl.String())

		local := NewContext(impl.VariableCount)
		if !matchArgs(w.subjects, impl.Head.Args, local) {
			w.implIdx++
			continue
		}
		body := instantiate(impl.Body, local)
		w.body = witnesses(w.p, body, local, w.stack)
	}
}

func (w *predProducer) Close() {
	if w.body != nil {
		w.body.Close()
		w.body = nil
	}
	w.stack.pop(w.pushed)
	w.pushed = 0
}

// builtinProducer resolves the arguments of a builtin predicate reference
// and delegates to the builtin's own sequence.
func newBuiltinProducer(p *Program, b *BuiltinPredicateReference, ctx Context) seq.Seq {
	subjects, ok := resolveArgs(b.Args, ctx)
	if !ok {
		return seq.Empty()
	}
	return b.Fn(p, subjects)
}

// newEffectProducer resolves the innermost handler for the performed
// effect. An unhandled effect at runtime is fatal: semantic analysis
// forbids it.
func newEffectProducer(p *Program, e *EffectCtorReference, ctx Context, stack *handlerStack, k *contInfo) seq.Seq {
	entry, _, ok := stack.innermost(e.EffectIndex)
	if !ok {
		fatalf("no handler for effect %d", e.EffectIndex)
	}
	if entry.Builtin != nil {
		return entry.Builtin(p, e, ctx, stack, k)
	}
	return newUserHandlerProducer(p, e, ctx, stack, entry.User, k)
}

// userHandlerProducer tries the handler's effect implications in order.
// The handled effect's continuation resumes in the perform-site context
// under the perform-site handler stack, so a handler remains in effect for
// the continuation it resumes.
type userHandlerProducer struct {
	p        *Program
	e        *EffectCtorReference
	ctx      Context
	stack    *handlerStack
	handler  *UserHandler
	subjects []RuntimeValue
	failed   bool
	cont     *contInfo

	implIdx int
	body    seq.Seq
}

func newUserHandlerProducer(p *Program, e *EffectCtorReference, ctx Context, stack *handlerStack, h *UserHandler, k *contInfo) *userHandlerProducer {
	w := &userHandlerProducer{
		p:       p,
		e:       e,
		ctx:     ctx,
		stack:   stack,
		handler: h,
		cont: &contInfo{
			expr:  e.Continuation,
			ctx:   ctx,
			stack: stack,
			k:     k,
		},
	}
	subjects, ok := resolveArgs(e.Args, ctx)
	if !ok {
		w.failed = true
		return w
	}
	w.subjects = subjects
	return w
}

func (w *userHandlerProducer) Next() bool {
	if w.failed {
		return false
	}
	for {
		if w.body != nil {
			if w.body.Next() {
				return true
			}
			w.body.Close()
			w.body = nil
			w.implIdx++
		}
		if w.implIdx >= len(w.handler.Impls) {
			return false
		}
		impl := &w.handler.Impls[w.implIdx]
		if impl.CtorIndex != w.e.CtorIndex {
			w.implIdx++
			continue
		}
		local := NewContext(impl.VariableCount)
		if !matchArgs(w.subjects, impl.Args, local) {
			w.implIdx++
			continue
		}
		body := instantiate(impl.Body, local)
		w.body = produce(w.p, body, local, w.stack, w.cont)
	}
}

func (w *userHandlerProducer) Close() {
	if w.body != nil {
		w.body.Close()
		w.body = nil
	}
}
