package interp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// Nat constructor indices used throughout: z = 0, s = 1.
func natZ() *MatcherCtor { return &MatcherCtor{Index: 0} }
func natS(arg MatcherValue) *MatcherCtor {
	return &MatcherCtor{Index: 1, Args: []MatcherValue{arg}}
}
func natLit(n int) MatcherValue {
	v := MatcherValue(natZ())
	for i := 0; i < n; i++ {
		v = natS(v)
	}
	return v
}

func mvar(i int) *MatcherVariable { return &MatcherVariable{Index: i, Inhabited: true} }

// addProgram builds the Peano addition program by hand:
//
//	add(z, let y, y) <- true;
//	add(s(let x), let y, s(let r)) <- add(x, y, r);
func addProgram() *Program {
	add := Predicate{Impls: []Implication{
		{
			Head: PredicateReference{Index: 0, Args: []MatcherValue{
				natZ(), mvar(0), mvar(0),
			}},
			Body:          &TruthValue{Value: true},
			VariableCount: 1,
		},
		{
			Head: PredicateReference{Index: 0, Args: []MatcherValue{
				natS(mvar(0)), mvar(1), natS(mvar(2)),
			}},
			Body: &PredicateReference{Index: 0, Args: []MatcherValue{
				mvar(0), mvar(1), mvar(2),
			}},
			VariableCount: 3,
		},
	}}
	return NewProgram([]Predicate{add}, nil, []string{"add"}, LogOff)
}

// countWitnesses drains a proof and returns its tick count, bounded to
// guard against runaway producers.
func countWitnesses(t *testing.T, p *Program, expr Expression, ctx Context) int {
	t.Helper()
	w := witnesses(p, expr, ctx, initialHandlerStack())
	defer w.Close()
	n := 0
	for w.Next() {
		n++
		if n > 100 {
			t.Fatal("runaway producer")
		}
	}
	return n
}

func TestProveTruthValues(t *testing.T) {
	p := NewProgram(nil, nil, nil, LogOff)
	require.True(t, p.Prove(&TruthValue{Value: true}))
	require.False(t, p.Prove(&TruthValue{Value: false}))
}

func TestAddComputesSum(t *testing.T) {
	p := addProgram()

	// 2 + 1 = 3
	require.True(t, p.Prove(&PredicateReference{Index: 0, Args: []MatcherValue{
		natLit(2), natLit(1), natLit(3),
	}}))

	// 2 + 1 != 2
	require.False(t, p.Prove(&PredicateReference{Index: 0, Args: []MatcherValue{
		natLit(2), natLit(1), natLit(2),
	}}))
}

func TestAddBindsCallerVariable(t *testing.T) {
	p := addProgram()
	ctx := NewContext(1)

	w := witnesses(p, &PredicateReference{Index: 0, Args: []MatcherValue{
		natLit(1), natLit(1), mvar(0),
	}}, ctx, initialHandlerStack())
	defer w.Close()

	require.True(t, w.Next())
	require.True(t, Ground(ctx[0]))
	require.Equal(t, "ctor<1>(ctor<1>(ctor<0>))", ctx[0].String())
}

func TestAddCommitsFirstDecomposition(t *testing.T) {
	// add(let a, let b, 2): the base case binds a = z, b = 2 and those
	// caller bindings persist, so the recursive implication can no
	// longer match. Exactly one witness.
	p := addProgram()
	ctx := NewContext(2)
	n := countWitnesses(t, p, &PredicateReference{Index: 0, Args: []MatcherValue{
		mvar(0), mvar(1), natLit(2),
	}}, ctx)
	require.Equal(t, 1, n)
	require.Equal(t, "ctor<0>", ctx[0].String())
	require.Equal(t, "ctor<1>(ctor<1>(ctor<0>))", ctx[1].String())
}

// coinProgram has a two-witness predicate and no arguments, so retries do
// not collide with persistent caller bindings.
func coinProgram() *Program {
	coin := Predicate{Impls: []Implication{
		{Head: PredicateReference{Index: 0}, Body: &TruthValue{Value: true}},
		{Head: PredicateReference{Index: 0}, Body: &TruthValue{Value: true}},
	}}
	return NewProgram([]Predicate{coin}, nil, []string{"coin"}, LogOff)
}

func TestImplicationOrderingConcatenatesWitnesses(t *testing.T) {
	p := coinProgram()
	n := countWitnesses(t, p, &PredicateReference{Index: 0}, NewContext(0))
	require.Equal(t, 2, n)
}

func TestConjunctionIsCartesianProduct(t *testing.T) {
	p := coinProgram()
	conj := &Conjunction{
		Left:  &PredicateReference{Index: 0},
		Right: &PredicateReference{Index: 0},
	}
	require.Equal(t, 4, countWitnesses(t, p, conj, NewContext(0)))

	triple := &Conjunction{Left: conj, Right: &PredicateReference{Index: 0}}
	require.Equal(t, 8, countWitnesses(t, p, triple, NewContext(0)))
}

func TestConjunctionShortCircuitsOnFalse(t *testing.T) {
	p := coinProgram()
	conj := &Conjunction{
		Left:  &TruthValue{Value: false},
		Right: &PredicateReference{Index: 0},
	}
	require.Equal(t, 0, countWitnesses(t, p, conj, NewContext(0)))
}

func TestCallerBindingsPersistAcrossRetries(t *testing.T) {
	// pick(a) <- false; pick(b) <- true;  with ctor indices a=0, b=1.
	// The first implication's head binds the caller cell to a and then
	// fails; the binding persists, so the second implication cannot
	// match and the proof fails. This mirrors the committed-bindings
	// design: outputs flow through caller cells and are not undone.
	pick := Predicate{Impls: []Implication{
		{
			Head: PredicateReference{Index: 0, Args: []MatcherValue{&MatcherCtor{Index: 0}}},
			Body: &TruthValue{Value: false},
		},
		{
			Head: PredicateReference{Index: 0, Args: []MatcherValue{&MatcherCtor{Index: 1}}},
			Body: &TruthValue{Value: true},
		},
	}}
	p := NewProgram([]Predicate{pick}, nil, []string{"pick"}, LogOff)

	ctx := NewContext(1)
	n := countWitnesses(t, p, &PredicateReference{Index: 0, Args: []MatcherValue{mvar(0)}}, ctx)
	require.Equal(t, 0, n)
	require.Equal(t, "ctor<0>", ctx[0].String())
}

func TestUninhabitedAnonymousArgumentFailsProof(t *testing.T) {
	// q(_) <- true;  where the anonymous argument's type has no values.
	q := Predicate{Impls: []Implication{{
		Head: PredicateReference{Index: 0, Args: []MatcherValue{
			&MatcherVariable{Index: AnonymousIndex, Inhabited: true},
		}},
		Body: &TruthValue{Value: true},
	}}}
	p := NewProgram([]Predicate{q}, nil, []string{"q"}, LogOff)

	call := &PredicateReference{Index: 0, Args: []MatcherValue{
		&MatcherVariable{Index: AnonymousIndex, Inhabited: false},
	}}
	require.False(t, p.Prove(call))
}

func TestUserHandlerHandlesEffect(t *testing.T) {
	// Effect 1 is a user effect with one constructor. The predicate
	// handles it by matching the message and continuing.
	handled := Predicate{
		Impls: []Implication{{
			Head: PredicateReference{Index: 0},
			Body: &EffectCtorReference{
				EffectIndex:  1,
				CtorIndex:    0,
				Args:         []MatcherValue{&MatcherString{Value: "hi"}},
				Continuation: &TruthValue{Value: true},
			},
		}},
		Handlers: []UserHandler{{
			EffectIndex: 1,
			Impls: []EffectImplication{{
				EffectIndex:   1,
				CtorIndex:     0,
				Args:          []MatcherValue{mvar(0)},
				Body:          &Continuation{},
				VariableCount: 1,
			}},
		}},
	}
	p := NewProgram([]Predicate{handled}, nil, []string{"handled"}, LogOff)
	require.True(t, p.Prove(&PredicateReference{Index: 0}))
}

func TestUserHandlerCanRejectEffect(t *testing.T) {
	rejected := Predicate{
		Impls: []Implication{{
			Head: PredicateReference{Index: 0},
			Body: &EffectCtorReference{
				EffectIndex:  1,
				CtorIndex:    0,
				Args:         []MatcherValue{&MatcherString{Value: "hi"}},
				Continuation: &TruthValue{Value: true},
			},
		}},
		Handlers: []UserHandler{{
			EffectIndex: 1,
			Impls: []EffectImplication{{
				EffectIndex: 1,
				CtorIndex:   0,
				Args:        []MatcherValue{mvar(0)},
				// Dropping the continuation refuses the effect.
				Body:          &TruthValue{Value: false},
				VariableCount: 1,
			}},
		}},
	}
	p := NewProgram([]Predicate{rejected}, nil, []string{"rejected"}, LogOff)
	require.False(t, p.Prove(&PredicateReference{Index: 0}))
}

func TestHandlerSelectsMatchingConstructor(t *testing.T) {
	// Two effect implications; only the one whose constructor index
	// matches the performed effect runs.
	two := Predicate{
		Impls: []Implication{{
			Head: PredicateReference{Index: 0},
			Body: &EffectCtorReference{
				EffectIndex:  1,
				CtorIndex:    1,
				Continuation: &TruthValue{Value: true},
			},
		}},
		Handlers: []UserHandler{{
			EffectIndex: 1,
			Impls: []EffectImplication{
				{EffectIndex: 1, CtorIndex: 0, Body: &TruthValue{Value: false}},
				{EffectIndex: 1, CtorIndex: 1, Body: &Continuation{}},
			},
		}},
	}
	p := NewProgram([]Predicate{two}, nil, []string{"two"}, LogOff)
	require.True(t, p.Prove(&PredicateReference{Index: 0}))
}

func TestContinueProvesContinuationWitnesses(t *testing.T) {
	// coin has two witnesses; an effect continuation proven via continue
	// passes both through the handler.
	prog := Predicate{
		Impls: []Implication{{
			Head: PredicateReference{Index: 0},
			Body: &EffectCtorReference{
				EffectIndex:  1,
				CtorIndex:    0,
				Continuation: &PredicateReference{Index: 1},
			},
		}},
		Handlers: []UserHandler{{
			EffectIndex: 1,
			Impls: []EffectImplication{{
				EffectIndex: 1,
				CtorIndex:   0,
				Body:        &Continuation{},
			}},
		}},
	}
	coin := Predicate{Impls: []Implication{
		{Head: PredicateReference{Index: 1}, Body: &TruthValue{Value: true}},
		{Head: PredicateReference{Index: 1}, Body: &TruthValue{Value: true}},
	}}
	p := NewProgram([]Predicate{prog, coin}, nil, []string{"prog", "coin"}, LogOff)
	require.Equal(t, 2, countWitnesses(t, p, &PredicateReference{Index: 0}, NewContext(0)))
}

func TestPrintHandlerWritesAndContinues(t *testing.T) {
	p := NewProgram(nil, nil, nil, LogOff)
	var buf bytes.Buffer
	p.Out = &buf

	expr := &EffectCtorReference{
		EffectIndex:  IOEffectIndex,
		CtorIndex:    PrintCtorIndex,
		Args:         []MatcherValue{&MatcherString{Value: "hello"}},
		Continuation: &TruthValue{Value: true},
	}
	require.True(t, p.Prove(expr))
	require.Equal(t, "hello\n", buf.String())
}

func TestPrintFailedContinuationStillPrints(t *testing.T) {
	// The handler prints, then streams the continuation; a continuation
	// with no witnesses fails the proof after the side effect.
	p := NewProgram(nil, nil, nil, LogOff)
	var buf bytes.Buffer
	p.Out = &buf

	expr := &EffectCtorReference{
		EffectIndex:  IOEffectIndex,
		CtorIndex:    PrintCtorIndex,
		Args:         []MatcherValue{&MatcherString{Value: "side"}},
		Continuation: &TruthValue{Value: false},
	}
	require.False(t, p.Prove(expr))
	require.Equal(t, "side\n", buf.String())
}

func TestEntryPoint(t *testing.T) {
	p := coinProgram()
	require.False(t, p.ProveEntry(), "no entry point means rejection")

	p.EntryPoint = &PredicateReference{Index: 0}
	require.True(t, p.ProveEntry())
}

func TestDeterministicWitnessOrder(t *testing.T) {
	// first(one) <- true; first(two) <- true; enumerated via distinct
	// calls so each sees an unbound cell: implication order decides.
	first := Predicate{Impls: []Implication{
		{Head: PredicateReference{Index: 0, Args: []MatcherValue{&MatcherCtor{Index: 0}}}, Body: &TruthValue{Value: true}},
		{Head: PredicateReference{Index: 0, Args: []MatcherValue{&MatcherCtor{Index: 1}}}, Body: &TruthValue{Value: true}},
	}}
	p := NewProgram([]Predicate{first}, nil, []string{"first"}, LogOff)

	for i := 0; i < 3; i++ {
		ctx := NewContext(1)
		w := witnesses(p, &PredicateReference{Index: 0, Args: []MatcherValue{mvar(0)}}, ctx, initialHandlerStack())
		require.True(t, w.Next())
		require.Equal(t, "ctor<0>", ctx[0].String(), "the first implication always wins")
		w.Close()
	}
}
