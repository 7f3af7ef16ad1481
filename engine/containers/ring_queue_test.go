package containers

import "testing"

func TestRingQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewRingQueue(3)
	for _, v := range []interface{}{"a", "b", "c"} {
		if err := q.Enqueue(v); err != nil {
			t.Fatalf("enqueue %v: %s", v, err)
		}
	}
	if !q.IsFull() {
		t.Fatalf("expected queue to be full")
	}
	if err := q.Enqueue("d"); err == nil {
		t.Fatalf("expected enqueue on a full queue to error")
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Dequeue()
		if err != nil {
			t.Fatalf("dequeue: %s", err)
		}
		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if !q.IsEmpty() {
		t.Fatalf("expected queue to be empty")
	}
	if _, err := q.Dequeue(); err == nil {
		t.Fatalf("expected dequeue on an empty queue to error")
	}
}

func TestRingQueueWrapsAroundBuffer(t *testing.T) {
	q := NewRingQueue(2)
	q.Enqueue(1)
	q.Enqueue(2)
	q.Dequeue()
	q.Enqueue(3)

	v, err := q.Dequeue()
	if err != nil || v != 2 {
		t.Fatalf("got (%v, %v), want (2, nil)", v, err)
	}
	v, err = q.Dequeue()
	if err != nil || v != 3 {
		t.Fatalf("got (%v, %v), want (3, nil)", v, err)
	}
}

func TestRingQueuePeekDoesNotRemove(t *testing.T) {
	q := NewRingQueue(2)
	q.Enqueue("x")

	peeked, err := q.Peek()
	if err != nil || peeked != "x" {
		t.Fatalf("got (%v, %v), want (x, nil)", peeked, err)
	}
	if q.IsEmpty() {
		t.Fatalf("Peek should not remove the element")
	}
}
