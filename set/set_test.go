package set

import (
	"sort"
	"testing"
)

func TestSetBasic(t *testing.T) {
	s := New()
	if s.In("foo") {
		t.Error("matched before set.")
	}

	s.Add(StringItem("foo"))
	if !s.In("foo") {
		t.Errorf("not matched after set")
	}
	if s.Len() != 1 {
		t.Error("not len 1 after set")
	}

	if err := s.AddNew(StringItem("foo")); err != ErrCollision {
		t.Errorf("adding duplicate: want %v, got %v", ErrCollision, err)
	}

	if err := s.Remove("foo"); err != nil {
		t.Fatalf("failed to remove foo: %s", err)
	}
	if s.In("foo") {
		t.Error("matched after remove")
	}
	if err := s.Remove("foo"); err != ErrMissing {
		t.Errorf("removing absent key: want %v, got %v", ErrMissing, err)
	}
}

func TestSetExactKeys(t *testing.T) {
	s := New()
	s.Add(StringItem("Foo"))
	if s.In("foo") {
		t.Error("keys must not be case-folded")
	}
	if !s.In("Foo") {
		t.Error("exact key not matched")
	}
}

func TestSetItemize(t *testing.T) {
	s := New()
	s.Add(Itemize("key", 42))

	item, err := s.Get("key")
	if err != nil {
		t.Fatalf("failed to get item: %s", err)
	}
	if v, ok := item.Value().(int); !ok || v != 42 {
		t.Errorf("got value %v, want 42", item.Value())
	}
}

func TestSetSnapshots(t *testing.T) {
	s := New()
	s.Add(StringItem("a"))
	s.Add(StringItem("b"))
	s.Add(StringItem("c"))

	keys := s.Keys()
	sort.Strings(keys)
	want := []string{"a", "b", "c"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys: got %v, want %v", keys, want)
		}
	}

	// Mutating while iterating a snapshot must be safe.
	for _, item := range s.List() {
		s.Remove(item.Key())
	}
	if s.Len() != 0 {
		t.Errorf("set not empty after removing snapshot, len=%d", s.Len())
	}
}

func TestSetListPrefix(t *testing.T) {
	s := New()
	s.Add(StringItem("den"))
	s.Add(StringItem("dev"))
	s.Add(StringItem("lobby"))

	r := s.ListPrefix("de")
	if len(r) != 2 {
		t.Errorf("ListPrefix(de): got %d items, want 2", len(r))
	}
	if len(s.ListPrefix("x")) != 0 {
		t.Error("ListPrefix(x): want no items")
	}
}
