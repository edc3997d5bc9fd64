package game

import "testing"

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeVariant{min: 2, max: 2})

	v, ok := r.Get("fake")
	if !ok {
		t.Fatal("expected variant to be registered")
	}
	if v.Info().MinPlayers != 2 {
		t.Fatalf("unexpected info %+v", v.Info())
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("unexpected variant for unknown name")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeVariant{min: 2, max: 2})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r.Register(fakeVariant{min: 2, max: 3})
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	if got := len(r.List()); got != 0 {
		t.Fatalf("empty registry lists %d variants", got)
	}
	r.Register(fakeVariant{min: 2, max: 2})
	if got := len(r.List()); got != 1 {
		t.Fatalf("list = %d variants, want 1", got)
	}
}
