// Package seq provides the lazy-sequence primitive the proof search is
// built on: a single-consumer, resumable producer of unit ticks.
//
// A producer may, between ticks, advance another producer and suspend on
// its result, and may be cancelled by being closed without further calls.
// Scheduling is single-threaded cooperative: exactly one producer advances
// at a time, so implementations are plain state machines with no locking.
package seq

// Seq is a finite or infinite producer of unit ticks.
type Seq interface {
	// Next advances the producer. It returns true when the producer has
	// committed to a state corresponding to one more tick; the consumer
	// inspects shared context to read the result. It returns false when
	// the producer is exhausted, after which it must not be advanced
	// again.
	Next() bool

	// Close releases the producer and everything nested inside it. It is
	// valid to close a producer that was never advanced or that is
	// already done; Close is idempotent.
	Close()
}

type empty struct{}

func (empty) Next() bool { return false }
func (empty) Close()     {}

// Empty returns a producer with no ticks.
func Empty() Seq { return empty{} }

type once struct {
	done bool
}

func (o *once) Next() bool {
	if o.done {
		return false
	}
	o.done = true
	return true
}

func (o *once) Close() {}

// Once returns a producer with exactly one tick.
func Once() Seq { return &once{} }

// Bool returns a producer with one tick if ok, none otherwise.
func Bool(ok bool) Seq {
	if ok {
		return Once()
	}
	return Empty()
}

// Deferred delays construction of a producer until its first advance.
// Close before the first advance releases nothing; after it, the
// constructed producer is closed.
type Deferred struct {
	Make  func() Seq
	inner Seq
}

func (d *Deferred) Next() bool {
	if d.inner == nil {
		if d.Make == nil {
			return false
		}
		d.inner = d.Make()
		d.Make = nil
	}
	return d.inner.Next()
}

func (d *Deferred) Close() {
	if d.inner != nil {
		d.inner.Close()
		d.inner = nil
	}
	d.Make = nil
}
