package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/visual"
)

func TestPanZoomDragMovesCameraNegativeX(t *testing.T) {
	c := NewController(ControllerPanZoom)
	c.Update(1.0/60, PointerState{X: 100, Y: 20, DX: 90, DY: 10, LeftDown: true})

	s := &c.panZoom
	if s.cameraPos.X >= -0.1 || s.cameraPos.X <= -0.9 {
		t.Fatalf("camera.x = %v, want in (-0.9, -0.1)", s.cameraPos.X)
	}
	if s.cameraPos.Y == 0 {
		t.Fatalf("camera.y should be non-zero after a diagonal drag")
	}
}

func TestPanZoomDoubleClickResets(t *testing.T) {
	c := NewController(ControllerPanZoom)
	c.Update(1.0/60, PointerState{X: 100, Y: 20, DX: 90, DY: 10, LeftDown: true})
	c.Update(1.0/60, PointerState{DoubleClick: true})

	s := &c.panZoom
	if s.cameraPos.X != 0 || s.cameraPos.Y != 0 {
		t.Fatalf("camera pos after reset = %+v, want zero", s.cameraPos)
	}
	if s.zoom.X != 1 || s.zoom.Y != 1 {
		t.Fatalf("zoom after reset = %+v, want one", s.zoom)
	}
}

func TestArcballResetRestoresTraceFour(t *testing.T) {
	c := NewController(ControllerArcball)
	c.Update(1.0/60, PointerState{X: 100, Y: 20, DX: 90, DY: 10, LeftDown: true, ViewW: 400, ViewH: 400})
	c.Update(1.0/60, PointerState{DoubleClick: true})

	m := c.arcball.orientation.ToMat4()
	trace := m.Data[0] + m.Data[5] + m.Data[10] + m.Data[15]
	if trace < 3.999 || trace > 4.001 {
		t.Fatalf("trace(M) = %v, want 4", trace)
	}
}

func TestPanelAutoFitTracksOwnedVisuals(t *testing.T) {
	p := NewPanel(0, 0, 1, 1, ControllerPanZoom)
	v := visual.NewRectangle(core.NewID())
	if err := v.SetProp(visual.PropPos, 0, vec3BytesForTest(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := v.SetProp(visual.PropPos, 1, vec3BytesForTest(10, 5, 0)); err != nil {
		t.Fatal(err)
	}

	p.AddVisual(v, 0)
	if !p.DataCoords.Valid {
		t.Fatalf("DataCoords should be valid after adding a visual with Pos set")
	}
	if p.DataCoords.Max.X != 10 || p.DataCoords.Max.Y != 5 {
		t.Fatalf("DataCoords max = %+v, want (10,5,_)", p.DataCoords.Max)
	}
}

func TestSceneDrainUpdatesReturnsInOrder(t *testing.T) {
	s := New()
	p1 := NewPanel(0, 0, 1, 1, ControllerNone)
	p2 := NewPanel(0, 1, 1, 1, ControllerNone)
	s.AddPanel(p1)
	s.AddPanel(p2)

	updates := s.DrainUpdates()
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if updates[0].Target != p1 || updates[1].Target != p2 {
		t.Fatalf("updates out of order: %+v", updates)
	}

	if more := s.DrainUpdates(); len(more) != 0 {
		t.Fatalf("queue should be empty after draining, got %d", len(more))
	}
}

func TestPanelVisualsSortedByPriority(t *testing.T) {
	p := NewPanel(0, 0, 1, 1, ControllerNone)
	low := visual.NewPoint(core.NewID())
	mid := visual.NewPoint(core.NewID())
	high := visual.NewPoint(core.NewID())

	p.AddVisual(high, 10)
	p.AddVisual(low, 0)
	p.AddVisual(mid, 5)

	got := p.Visuals()
	if len(got) != 3 {
		t.Fatalf("got %d visuals, want 3", len(got))
	}
	if got[0] != low || got[1] != mid || got[2] != high {
		t.Fatalf("visuals not sorted by priority ascending")
	}
}

func vec3BytesForTest(x, y, z float32) []byte {
	out := make([]byte, 12)
	binary.LittleEndian.PutUint32(out[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(out[4:8], math.Float32bits(y))
	binary.LittleEndian.PutUint32(out[8:12], math.Float32bits(z))
	return out
}
