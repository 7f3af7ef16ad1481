// Package runner implements the four-priority-queue frame scheduler
// described in spec.md §4.7: Frame, Main, Refill, and Present events
// dequeued in that fixed order every iteration of the main loop.
package runner

import (
	"github.com/vizcore/dvz/engine/containers"
	"github.com/vizcore/dvz/engine/scene"
	"github.com/vizcore/dvz/engine/visual"
)

// FrameEvent drives one iteration of input polling and controller
// advancement; the runner posts exactly one of these per loop tick.
type FrameEvent struct {
	DeltaTime float64
}

// MainEvent is main-thread work (a Scene update descriptor, a Visual to
// bake, a hot-reload rebuild) that must finish before the frame's Refill
// events run.
type MainEvent struct {
	ScenePanelUpdate *scene.Update
	VisualToBake     *visual.Visual
	GraphicsRebuilt  bool
}

// RefillEvent asks the runner to re-record one swapchain image's command
// buffer (or, if All is true, to mark every image's to-refill counter so
// the change becomes visible within N frames regardless of which image is
// currently in flight).
type RefillEvent struct {
	ImageIndex uint32
	All        bool
}

// PresentEvent submits the just-recorded command buffer and hands the
// image back to the swapchain.
type PresentEvent struct {
	ImageIndex uint32
}

// Queue is the runner's four-lane dispatcher, a thin typed wrapper over
// containers.PriorityQueue matching the teacher's registered-callback
// event style in engine/core/events.go, but queue- rather than
// broadcast-based since each event here has exactly one consumer (the
// runner's own loop).
type Queue struct {
	pq *containers.PriorityQueue
}

func NewQueue() *Queue {
	return &Queue{pq: containers.NewPriorityQueue()}
}

func (q *Queue) PushFrame(e FrameEvent)     { q.pq.Push(containers.PriorityFrame, e) }
func (q *Queue) PushMain(e MainEvent)       { q.pq.Push(containers.PriorityMain, e) }
func (q *Queue) PushRefill(e RefillEvent)   { q.pq.Push(containers.PriorityRefill, e) }
func (q *Queue) PushPresent(e PresentEvent) { q.pq.Push(containers.PriorityPresent, e) }

// Pop removes and returns the next event in Frame→Main→Refill→Present
// order, or ok=false if every lane is empty.
func (q *Queue) Pop() (item interface{}, ok bool) {
	return q.pq.Pop()
}

func (q *Queue) Len() int { return q.pq.Len() }
