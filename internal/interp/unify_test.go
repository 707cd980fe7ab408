package interp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchLiterals(t *testing.T) {
	t.Run("string binds unbound cell", func(t *testing.T) {
		cells := NewContext(1)
		subject := []RuntimeValue{&Indirection{Cell: &cells[0]}}
		require.True(t, match(&subject[0], &MatcherString{Value: "abc"}, nil))
		require.Equal(t, `"abc"`, cells[0].String())
	})

	t.Run("string equality", func(t *testing.T) {
		v := RuntimeValue(&RuntimeString{Value: "abc"})
		require.True(t, match(&v, &MatcherString{Value: "abc"}, nil))
		require.False(t, match(&v, &MatcherString{Value: "abd"}, nil))
	})

	t.Run("int equality", func(t *testing.T) {
		v := RuntimeValue(&RuntimeInt{Value: 7})
		require.True(t, match(&v, &MatcherInt{Value: 7}, nil))
		require.False(t, match(&v, &MatcherInt{Value: 8}, nil))
	})

	t.Run("kind mismatch", func(t *testing.T) {
		v := RuntimeValue(&RuntimeString{Value: "abc"})
		require.False(t, match(&v, &MatcherInt{Value: 7}, nil))
	})
}

func TestMatchCtorShapesUnboundCell(t *testing.T) {
	// Matching an unbound cell against s(z) writes a constructor of the
	// right shape into the cell, children bound along the way.
	cells := NewContext(1)
	subject := RuntimeValue(&Indirection{Cell: &cells[0]})
	m := &MatcherCtor{Index: 1, Args: []MatcherValue{&MatcherCtor{Index: 0}}}

	require.True(t, match(&subject, m, nil))
	require.Equal(t, "ctor<1>(ctor<0>)", cells[0].String())
	require.True(t, Ground(cells[0]))
}

func TestMatchCtorIndexAndArity(t *testing.T) {
	v := RuntimeValue(&RuntimeCtor{Index: 1, Args: []RuntimeValue{&RuntimeCtor{Index: 0}}})
	require.False(t, match(&v, &MatcherCtor{Index: 2, Args: []MatcherValue{&MatcherCtor{Index: 0}}}, nil))
	require.False(t, match(&v, &MatcherCtor{Index: 1}, nil))
	require.True(t, match(&v, &MatcherCtor{Index: 1, Args: []MatcherValue{&MatcherCtor{Index: 0}}}, nil))
}

func TestMatchVariableBindsCellsTogether(t *testing.T) {
	// Matching an unbound subject cell against an unbound local variable
	// ties the two cells; binding one later binds both.
	caller := NewContext(1)
	local := NewContext(1)
	subject := RuntimeValue(&Indirection{Cell: &caller[0]})

	require.True(t, match(&subject, &MatcherVariable{Index: 0, Inhabited: true}, local))
	require.NotNil(t, local[0])

	require.True(t, match(&local[0], &MatcherString{Value: "shared"}, local))
	require.Equal(t, `"shared"`, caller[0].String())
}

func TestMatchVariableAgainstBoundValue(t *testing.T) {
	local := NewContext(1)
	v := RuntimeValue(&RuntimeInt{Value: 3})
	require.True(t, match(&v, &MatcherVariable{Index: 0, Inhabited: true}, local))

	// A second occurrence must agree with the stored value.
	same := RuntimeValue(&RuntimeInt{Value: 3})
	require.True(t, match(&same, &MatcherVariable{Index: 0, Inhabited: true}, local))
	other := RuntimeValue(&RuntimeInt{Value: 4})
	require.False(t, match(&other, &MatcherVariable{Index: 0, Inhabited: true}, local))
}

func TestMatchAnonymous(t *testing.T) {
	v := RuntimeValue(&RuntimeInt{Value: 3})
	require.True(t, match(&v, &MatcherVariable{Index: AnonymousIndex, Inhabited: true}, nil))

	cells := NewContext(1)
	unbound := RuntimeValue(&Indirection{Cell: &cells[0]})
	require.True(t, match(&unbound, &MatcherVariable{Index: AnonymousIndex, Inhabited: true}, nil))
	require.Nil(t, cells[0], "anonymous match must not bind")
}

func TestMatchUninhabitedVariableFails(t *testing.T) {
	cells := NewContext(1)
	unbound := RuntimeValue(&Indirection{Cell: &cells[0]})
	require.False(t, match(&unbound, &MatcherVariable{Index: AnonymousIndex, Inhabited: false}, nil))

	local := NewContext(1)
	unbound2 := RuntimeValue(&Indirection{Cell: &cells[0]})
	require.False(t, match(&unbound2, &MatcherVariable{Index: 0, Inhabited: false}, local))

	// A bound subject carries a witness already, so the flag is moot.
	bound := RuntimeValue(&RuntimeInt{Value: 1})
	require.True(t, match(&bound, &MatcherVariable{Index: AnonymousIndex, Inhabited: false}, nil))
}

func TestUnifyOccursThroughIndirections(t *testing.T) {
	a := NewContext(1)
	b := NewContext(1)
	av := RuntimeValue(&Indirection{Cell: &a[0]})
	bv := RuntimeValue(&Indirection{Cell: &b[0]})

	require.True(t, unify(&av, &bv))
	require.True(t, match(&a[0], &MatcherInt{Value: 9}, nil))

	cell := followCell(&b[0])
	i, ok := (*cell).(*RuntimeInt)
	require.True(t, ok)
	require.Equal(t, int64(9), i.Value)
}

func TestResolveArgs(t *testing.T) {
	ctx := NewContext(2)
	ctx[1] = &RuntimeString{Value: "bound"}

	args, ok := resolveArgs([]MatcherValue{
		&MatcherVariable{Index: 0, Inhabited: true},
		&MatcherVariable{Index: 1, Inhabited: true},
		&MatcherString{Value: "lit"},
		&MatcherCtor{Index: 0, Args: []MatcherValue{&MatcherInt{Value: 5}}},
	}, ctx)
	require.True(t, ok)
	require.Len(t, args, 4)

	// Unbound variables resolve to indirections into their cells.
	ind, ok := args[0].(*Indirection)
	require.True(t, ok)
	require.Same(t, &ctx[0], ind.Cell)

	require.Equal(t, `"bound"`, args[1].String())
	require.Equal(t, `"lit"`, args[2].String())
	require.Equal(t, "ctor<0>(5)", args[3].String())
}

func TestResolveArgsUninhabitedAnonymousFails(t *testing.T) {
	_, ok := resolveArgs([]MatcherValue{&MatcherVariable{Index: AnonymousIndex, Inhabited: false}}, nil)
	require.False(t, ok)
}

func TestInstantiateReplacesBoundVariables(t *testing.T) {
	local := NewContext(2)
	local[0] = &RuntimeString{Value: "bound"}

	expr := &PredicateReference{Index: 3, Args: []MatcherValue{
		&MatcherVariable{Index: 0, Inhabited: true},
		&MatcherVariable{Index: 1, Inhabited: true},
		&MatcherInt{Value: 2},
	}}
	inst := instantiate(expr, local).(*PredicateReference)

	b, ok := inst.Args[0].(*MatcherBound)
	require.True(t, ok, "bound variable must become an embedded indirection")
	require.Equal(t, `"bound"`, b.Value.String())

	_, stillVar := inst.Args[1].(*MatcherVariable)
	require.True(t, stillVar, "unbound variable must be preserved")
	require.Equal(t, inst.Args[2], expr.Args[2], "literals are preserved")
}

func TestInstantiateDescendsIntoContinuations(t *testing.T) {
	local := NewContext(1)
	local[0] = &RuntimeInt{Value: 1}

	expr := &EffectCtorReference{
		EffectIndex: 1,
		CtorIndex:   0,
		Args:        []MatcherValue{&MatcherVariable{Index: 0, Inhabited: true}},
		Continuation: &Conjunction{
			Left:  &TruthValue{Value: true},
			Right: &PredicateReference{Index: 0, Args: []MatcherValue{&MatcherVariable{Index: 0, Inhabited: true}}},
		},
	}
	inst := instantiate(expr, local).(*EffectCtorReference)
	_, ok := inst.Args[0].(*MatcherBound)
	require.True(t, ok)
	conj := inst.Continuation.(*Conjunction)
	pr := conj.Right.(*PredicateReference)
	_, ok = pr.Args[0].(*MatcherBound)
	require.True(t, ok)
}
