package containers

import "testing"

func TestPriorityQueueDrainsHighestPriorityFirst(t *testing.T) {
	q := NewPriorityQueue()
	q.Push(PriorityPresent, "present")
	q.Push(PriorityRefill, "refill")
	q.Push(PriorityMain, "main")
	q.Push(PriorityFrame, "frame")

	want := []string{"frame", "main", "refill", "present"}
	for _, w := range want {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("expected an item, queue empty early")
		}
		if item != w {
			t.Fatalf("got %v, want %v", item, w)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected queue to be empty")
	}
}

func TestPriorityQueueLenAndLenAt(t *testing.T) {
	q := NewPriorityQueue()
	q.Push(PriorityFrame, 1)
	q.Push(PriorityFrame, 2)
	q.Push(PriorityMain, 3)

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if q.LenAt(PriorityFrame) != 2 {
		t.Fatalf("LenAt(Frame) = %d, want 2", q.LenAt(PriorityFrame))
	}
	if q.LenAt(PriorityPresent) != 0 {
		t.Fatalf("LenAt(Present) = %d, want 0", q.LenAt(PriorityPresent))
	}
}

func TestPriorityQueueInterleavedPushPop(t *testing.T) {
	q := NewPriorityQueue()
	q.Push(PriorityMain, "m1")
	item, _ := q.Pop()
	if item != "m1" {
		t.Fatalf("got %v, want m1", item)
	}
	q.Push(PriorityFrame, "f1")
	q.Push(PriorityMain, "m2")
	item, _ = q.Pop()
	if item != "f1" {
		t.Fatalf("frame-priority item should pop before a pending main item, got %v", item)
	}
}
