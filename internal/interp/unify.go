package interp

// The unifier matches runtime values, possibly containing unbound cells
// reached through indirections, against matcher values. Binding writes are
// speculative: the enclosing witness producer discards the local context of
// a failed implication attempt instead of undoing them, and writes into the
// caller's cells persist by design once an implication's head has matched.

// resolveArgs views call-site matcher arguments as runtime subjects in ctx.
// Variables become indirections into their cells; anonymous variables get a
// fresh cell of their own. An anonymous variable of uninhabited type can
// never bind a value, so resolution fails and the caller produces no
// witnesses.
func resolveArgs(args []MatcherValue, ctx Context) ([]RuntimeValue, bool) {
	out := make([]RuntimeValue, len(args))
	for i, a := range args {
		v, ok := resolveArg(a, ctx)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func resolveArg(m MatcherValue, ctx Context) (RuntimeValue, bool) {
	switch m := m.(type) {
	case *MatcherVariable:
		if m.Index == AnonymousIndex {
			if !m.Inhabited {
				return nil, false
			}
			cell := new(RuntimeValue)
			return &Indirection{Cell: cell}, true
		}
		return &Indirection{Cell: &ctx[m.Index]}, true
	case *MatcherCtor:
		args := make([]RuntimeValue, len(m.Args))
		for i, a := range m.Args {
			v, ok := resolveArg(a, ctx)
			if !ok {
				return nil, false
			}
			args[i] = v
		}
		return &RuntimeCtor{Index: m.Index, Args: args}, true
	case *MatcherString:
		return &RuntimeString{Value: m.Value}, true
	case *MatcherInt:
		return &RuntimeInt{Value: m.Value}, true
	case *MatcherBound:
		return m.Value, true
	}
	fatalf("unresolvable matcher value %v", m)
	return nil, false
}

// matchArgs matches each subject cell against the corresponding matcher,
// left to right, stopping at the first mismatch.
func matchArgs(subjects []RuntimeValue, matchers []MatcherValue, local Context) bool {
	for i := range matchers {
		if !match(&subjects[i], matchers[i], local) {
			return false
		}
	}
	return true
}

// match matches the subject cell against one matcher. local is the variable
// table of the implication the matcher belongs to.
func match(cell *RuntimeValue, m MatcherValue, local Context) bool {
	cell = followCell(cell)
	switch m := m.(type) {
	case *MatcherString:
		switch v := (*cell).(type) {
		case nil:
			*cell = &RuntimeString{Value: m.Value}
			return true
		case *RuntimeString:
			return v.Value == m.Value
		default:
			return false
		}

	case *MatcherInt:
		switch v := (*cell).(type) {
		case nil:
			*cell = &RuntimeInt{Value: m.Value}
			return true
		case *RuntimeInt:
			return v.Value == m.Value
		default:
			return false
		}

	case *MatcherCtor:
		switch v := (*cell).(type) {
		case nil:
			// Give the cell the matcher's shape with unbound children,
			// then constrain the children.
			ctor := &RuntimeCtor{Index: m.Index, Args: make([]RuntimeValue, len(m.Args))}
			*cell = ctor
			for i := range m.Args {
				if !match(&ctor.Args[i], m.Args[i], local) {
					return false
				}
			}
			return true
		case *RuntimeCtor:
			if v.Index != m.Index || len(v.Args) != len(m.Args) {
				return false
			}
			for i := range m.Args {
				if !match(&v.Args[i], m.Args[i], local) {
					return false
				}
			}
			return true
		default:
			return false
		}

	case *MatcherVariable:
		if m.Index == AnonymousIndex {
			if *cell == nil && !m.Inhabited {
				return false
			}
			return true
		}
		if local[m.Index] == nil {
			if *cell == nil && !m.Inhabited {
				return false
			}
			local[m.Index] = &Indirection{Cell: cell}
			return true
		}
		return unify(&local[m.Index], cell)

	case *MatcherBound:
		tmp := m.Value
		return unify(&tmp, cell)
	}
	fatalf("unmatched matcher value %v", m)
	return false
}

// unify merges two runtime cells: unbound cells bind to each other or to
// the other side's value; concrete values must agree structurally.
func unify(a, b *RuntimeValue) bool {
	a = followCell(a)
	b = followCell(b)
	if a == b {
		return true
	}
	av, bv := *a, *b
	switch {
	case av == nil:
		*a = &Indirection{Cell: b}
		return true
	case bv == nil:
		*b = &Indirection{Cell: a}
		return true
	}
	switch av := av.(type) {
	case *RuntimeCtor:
		bc, ok := bv.(*RuntimeCtor)
		if !ok || av.Index != bc.Index || len(av.Args) != len(bc.Args) {
			return false
		}
		for i := range av.Args {
			if !unify(&av.Args[i], &bc.Args[i]) {
				return false
			}
		}
		return true
	case *RuntimeString:
		bs, ok := bv.(*RuntimeString)
		return ok && av.Value == bs.Value
	case *RuntimeInt:
		bi, ok := bv.(*RuntimeInt)
		return ok && av.Value == bi.Value
	}
	return false
}

// instantiate produces a fresh expression in which every matcher variable
// that resolves to a bound cell of local has been replaced with an
// indirection into that cell. Literals and unbound references are
// preserved.
func instantiate(e Expression, local Context) Expression {
	switch e := e.(type) {
	case *TruthValue:
		return e
	case *Continuation:
		return e
	case *PredicateReference:
		return &PredicateReference{Index: e.Index, Args: instantiateValues(e.Args, local)}
	case *BuiltinPredicateReference:
		return &BuiltinPredicateReference{Name: e.Name, Fn: e.Fn, Args: instantiateValues(e.Args, local)}
	case *EffectCtorReference:
		return &EffectCtorReference{
			EffectIndex:  e.EffectIndex,
			CtorIndex:    e.CtorIndex,
			Args:         instantiateValues(e.Args, local),
			Continuation: instantiate(e.Continuation, local),
		}
	case *Conjunction:
		return &Conjunction{
			Left:  instantiate(e.Left, local),
			Right: instantiate(e.Right, local),
		}
	}
	fatalf("uninstantiable expression %v", e)
	return nil
}

func instantiateValues(args []MatcherValue, local Context) []MatcherValue {
	out := make([]MatcherValue, len(args))
	for i, a := range args {
		out[i] = instantiateValue(a, local)
	}
	return out
}

func instantiateValue(m MatcherValue, local Context) MatcherValue {
	switch m := m.(type) {
	case *MatcherVariable:
		if m.Index != AnonymousIndex && local[m.Index] != nil {
			return &MatcherBound{Value: &Indirection{Cell: &local[m.Index]}}
		}
		return m
	case *MatcherCtor:
		return &MatcherCtor{Index: m.Index, Args: instantiateValues(m.Args, local)}
	default:
		return m
	}
}
