package store

import (
	"sync"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil Registry")
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d types", r.Len())
	}
	if got := r.Types(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("task")

	if !r.Has("task") {
		t.Error("expected task to be registered")
	}
	if r.Has("note") {
		t.Error("expected note to be unregistered")
	}
}

func TestRegistry_RegisterTwice(t *testing.T) {
	r := NewRegistry()
	r.Register("task")
	r.Register("task")
	if r.Len() != 1 {
		t.Errorf("expected 1 type, got %d", r.Len())
	}
}

func TestRegistry_TypesSorted(t *testing.T) {
	r := NewRegistry()
	for _, typ := range []string{"task", "note", "contact"} {
		r.Register(typ)
	}
	got := r.Types()
	want := []string{"contact", "note", "task"}
	if len(got) != len(want) {
		t.Fatalf("expected %d types, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Register(string(rune('a' + i%26)))
			r.Has("a")
		}(i)
	}
	wg.Wait()
	if r.Len() != 26 {
		t.Errorf("expected 26 types, got %d", r.Len())
	}
}

func TestStore_SharedRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("task")
	s := New(nil, DefaultConfig(), WithRegistry(r))
	if s.Registry() != r {
		t.Error("expected store to use the provided registry")
	}
}
