package runner

import (
	"math"
	"testing"

	"github.com/vizcore/dvz/engine/containers"
	"github.com/vizcore/dvz/engine/core"
	dvzmath "github.com/vizcore/dvz/engine/math"
	"github.com/vizcore/dvz/engine/scene"
)

func TestMarkAllRefillSetsEveryImageCounter(t *testing.T) {
	r := &Runner{toRefill: make([]uint32, 3)}
	r.markAllRefill()

	for i, v := range r.toRefill {
		if v != uint32(len(r.toRefill)) {
			t.Errorf("toRefill[%d] = %d, want %d", i, v, len(r.toRefill))
		}
	}
}

func TestQueueDrainsInFixedPriorityOrder(t *testing.T) {
	q := NewQueue()
	q.PushPresent(PresentEvent{ImageIndex: 1})
	q.PushRefill(RefillEvent{ImageIndex: 1})
	q.PushMain(MainEvent{})
	q.PushFrame(FrameEvent{DeltaTime: 0.016})

	item, ok := q.Pop()
	if !ok {
		t.Fatalf("expected an item")
	}
	if _, isFrame := item.(FrameEvent); !isFrame {
		t.Fatalf("got %T, want FrameEvent", item)
	}

	item, _ = q.Pop()
	if _, isMain := item.(MainEvent); !isMain {
		t.Fatalf("got %T, want MainEvent", item)
	}

	item, _ = q.Pop()
	if _, isRefill := item.(RefillEvent); !isRefill {
		t.Fatalf("got %T, want RefillEvent", item)
	}

	item, _ = q.Pop()
	if _, isPresent := item.(PresentEvent); !isPresent {
		t.Fatalf("got %T, want PresentEvent", item)
	}

	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
}

func TestHandleSceneUpdateVisualChangeMarksEveryImageForRefill(t *testing.T) {
	for _, kind := range []scene.UpdateKind{scene.UpdateVisualAdded, scene.UpdateVisualRemoved} {
		r := &Runner{toRefill: make([]uint32, 3), panelUniforms: make(map[core.ID]containers.Handle)}
		r.handleSceneUpdate(scene.Update{Kind: kind})
		for i, v := range r.toRefill {
			if v != uint32(len(r.toRefill)) {
				t.Errorf("kind %v: toRefill[%d] = %d, want %d", kind, i, v, len(r.toRefill))
			}
		}
	}
}

func TestHandleSceneUpdateIgnoresNonPanelTarget(t *testing.T) {
	r := &Runner{toRefill: make([]uint32, 2), panelUniforms: make(map[core.ID]containers.Handle)}
	r.handleSceneUpdate(scene.Update{Kind: scene.UpdatePanelAdded, Target: "not a panel"})
	for _, v := range r.toRefill {
		if v != 0 {
			t.Fatalf("a malformed update should not touch toRefill, got %d", v)
		}
	}
}

func TestMat4BytesRoundTripsFloat32(t *testing.T) {
	var m dvzmath.Mat4
	for i := range m.Data {
		m.Data[i] = float32(i) + 0.5
	}
	b := mat4Bytes(m)
	if len(b) != mvpUniformSize {
		t.Fatalf("len(b) = %d, want %d", len(b), mvpUniformSize)
	}
	for i := range m.Data {
		bits := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		got := math.Float32frombits(bits)
		if got != m.Data[i] {
			t.Errorf("element %d = %v, want %v", i, got, m.Data[i])
		}
	}
}
