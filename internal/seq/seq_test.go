package seq

import "testing"

func TestEmpty(t *testing.T) {
	s := Empty()
	defer s.Close()
	if s.Next() {
		t.Error("empty sequence must produce no ticks")
	}
}

func TestOnce(t *testing.T) {
	s := Once()
	defer s.Close()
	if !s.Next() {
		t.Fatal("expected one tick")
	}
	if s.Next() {
		t.Error("expected exactly one tick")
	}
}

func TestBool(t *testing.T) {
	if !Bool(true).Next() {
		t.Error("Bool(true) must tick once")
	}
	if Bool(false).Next() {
		t.Error("Bool(false) must not tick")
	}
}

func TestDeferredDelaysConstruction(t *testing.T) {
	built := false
	d := &Deferred{Make: func() Seq {
		built = true
		return Once()
	}}
	if built {
		t.Fatal("construction must wait for the first advance")
	}
	if !d.Next() {
		t.Fatal("expected the inner tick")
	}
	if !built {
		t.Fatal("inner producer was never built")
	}
	if d.Next() {
		t.Error("expected exhaustion after the inner producer")
	}
	d.Close()
}

func TestDeferredCloseBeforeAdvance(t *testing.T) {
	built := false
	d := &Deferred{Make: func() Seq {
		built = true
		return Once()
	}}
	d.Close()
	if built {
		t.Error("closing an unadvanced producer must not build it")
	}
	if d.Next() {
		t.Error("a closed producer must not tick")
	}
}
