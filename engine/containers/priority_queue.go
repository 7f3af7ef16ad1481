package containers

// Priority orders the lanes a PriorityQueue drains in. Lower values
// drain first within a single Pop call.
type Priority int

const (
	PriorityFrame Priority = iota
	PriorityMain
	PriorityRefill
	PriorityPresent

	priorityCount
)

// PriorityQueue is a fixed set of FIFO lanes, one per Priority, drained
// in Priority order: every Frame-priority item queued is popped before
// any Main-priority item, and so on. This is how the runner keeps
// per-frame input work ahead of main-thread callbacks, refill and
// present, which drain in that order.
type PriorityQueue struct {
	lanes [priorityCount][]interface{}
}

func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{}
}

func (q *PriorityQueue) Push(p Priority, item interface{}) {
	q.lanes[p] = append(q.lanes[p], item)
}

// Pop removes and returns the highest-priority queued item. ok is false
// if every lane is empty.
func (q *PriorityQueue) Pop() (item interface{}, ok bool) {
	for p := Priority(0); p < priorityCount; p++ {
		lane := q.lanes[p]
		if len(lane) == 0 {
			continue
		}
		item = lane[0]
		q.lanes[p] = lane[1:]
		return item, true
	}
	return nil, false
}

func (q *PriorityQueue) Len() int {
	n := 0
	for p := Priority(0); p < priorityCount; p++ {
		n += len(q.lanes[p])
	}
	return n
}

func (q *PriorityQueue) LenAt(p Priority) int {
	return len(q.lanes[p])
}
