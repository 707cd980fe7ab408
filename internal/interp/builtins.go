package interp

import (
	"fmt"

	"github.com/allium-lang/allium/internal/seq"
)

// Builtin effect and constructor indices. The low effect indices are
// reserved for builtins; user effects follow in source order.
const (
	IOEffectIndex  = 0
	PrintCtorIndex = 0
)

// builtinPredicates is the registry the lowerer consults to resolve
// builtin predicate references by name.
var builtinPredicates = map[string]BuiltinPredicate{
	"concat": concatBuiltin,
}

// LookupBuiltinPredicate resolves a builtin predicate by name.
func LookupBuiltinPredicate(name string) (BuiltinPredicate, bool) {
	fn, ok := builtinPredicates[name]
	return fn, ok
}

// initialHandlerStack is the stack a proof starts with: only the builtin
// IO.print handler.
func initialHandlerStack() *handlerStack {
	s := &handlerStack{}
	s.push(handlerEntry{EffectIndex: IOEffectIndex, Builtin: printHandler})
	return s
}

// concatBuiltin implements concat(in String, in String, String): with the
// third argument unbound it binds the concatenation and yields once; with
// it bound it yields once iff the strings agree. The first two arguments
// are guaranteed ground by the checker.
func concatBuiltin(p *Program, args []RuntimeValue) seq.Seq {
	if len(args) != 3 {
		fatalf("concat: expected 3 arguments, got %d", len(args))
	}
	a := groundString("concat", args[0])
	b := groundString("concat", args[1])

	cell := followCell(&args[2])
	switch v := (*cell).(type) {
	case nil:
		*cell = &RuntimeString{Value: a + b}
		return seq.Once()
	case *RuntimeString:
		return seq.Bool(v.Value == a+b)
	default:
		fatalf("concat: expected a String, got %s", v.String())
		return nil
	}
}

// printHandler is the default IO.print handler: write the argument and a
// newline, then stream the continuation's witnesses.
func printHandler(p *Program, e *EffectCtorReference, ctx Context, stack *handlerStack, k *contInfo) seq.Seq {
	if e.CtorIndex != PrintCtorIndex {
		fatalf("IO: unknown effect constructor %d", e.CtorIndex)
	}
	args, ok := resolveArgs(e.Args, ctx)
	if !ok || len(args) != 1 {
		fatalf("IO.print: malformed arguments")
	}
	printed := false
	return &seq.Deferred{Make: func() seq.Seq {
		if !printed {
			printed = true
			fmt.Fprintln(p.Out, groundString("IO.print", args[0]))
		}
		return produce(p, e.Continuation, ctx, stack, k)
	}}
}

// groundString unwraps a runtime value that the checker promised is a
// ground String.
func groundString(who string, v RuntimeValue) string {
	cell := followCell(&v)
	s, ok := (*cell).(*RuntimeString)
	if !ok {
		if *cell == nil {
			fatalf("%s: argument is not ground", who)
		}
		fatalf("%s: expected a String, got %s", who, (*cell).String())
	}
	return s.Value
}
