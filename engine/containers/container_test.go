package containers

import "testing"

func TestContainerStaleHandleAfterRemove(t *testing.T) {
	c := NewContainer[string](4)
	h := c.Add("a")

	if err := c.Remove(h); err != nil {
		t.Fatalf("remove: %s", err)
	}
	if _, err := c.Get(h); err == nil {
		t.Fatalf("expected stale handle error after remove")
	}
}

func TestContainerReusesSlotWithNewGeneration(t *testing.T) {
	c := NewContainer[string](4)
	h1 := c.Add("a")
	c.Remove(h1)
	h2 := c.Add("b")

	if h2.Index != h1.Index {
		t.Fatalf("expected slot reuse, got index %d want %d", h2.Index, h1.Index)
	}
	if h2.Generation == h1.Generation {
		t.Fatalf("expected a bumped generation on reuse")
	}
	if _, err := c.Get(h1); err == nil {
		t.Fatalf("old handle should not resolve to the new occupant")
	}
	v, err := c.Get(h2)
	if err != nil || v != "b" {
		t.Fatalf("got (%v, %v), want (b, nil)", v, err)
	}
}

func TestContainerLenExcludesRemoved(t *testing.T) {
	c := NewContainer[int](4)
	h1 := c.Add(1)
	c.Add(2)
	c.Remove(h1)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}
