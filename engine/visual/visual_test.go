package visual

import (
	"testing"

	"github.com/vizcore/dvz/engine/core"
)

func vec3Bytes(x, y, z float32) []byte {
	out := make([]byte, vec3Size)
	copy(out[0:4], float32tobytes(x))
	copy(out[4:8], float32tobytes(y))
	copy(out[8:12], float32tobytes(z))
	return out
}

func TestRectangleFromTwoPosProps(t *testing.T) {
	v := NewRectangle(core.NewID())
	if err := v.SetProp(PropPos, 0, vec3Bytes(0, 0, 0)); err != nil {
		t.Fatalf("SetProp corner A: %v", err)
	}
	if err := v.SetProp(PropPos, 1, vec3Bytes(10, 5, 0)); err != nil {
		t.Fatalf("SetProp corner B: %v", err)
	}

	if _, err := v.Bake(); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	vtx := v.Source(SourceVertex, 0)
	if vtx.Count() != 4 {
		t.Fatalf("vertex count = %d, want 4", vtx.Count())
	}
	idx := v.Source(SourceIndex, 0)
	if idx.Count() != 6 {
		t.Fatalf("index count = %d, want 6", idx.Count())
	}
}

func TestPathTesselatesPolyline(t *testing.T) {
	v := NewPath(core.NewID())
	points := append(vec3Bytes(0, 0, 0), vec3Bytes(10, 0, 0)...)
	points = append(points, vec3Bytes(10, 10, 0)...)
	if err := v.SetProp(PropPos, 0, points); err != nil {
		t.Fatalf("SetProp pos: %v", err)
	}

	if _, err := v.Bake(); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	vtx := v.Source(SourceVertex, 0)
	if vtx.Count() != 6 {
		t.Fatalf("ribbon vertex count = %d, want 6 (2 per input point)", vtx.Count())
	}
}

func TestDefaultBakeWithNoPropsSetIsNoOp(t *testing.T) {
	v := NewPoint(core.NewID())
	if _, err := v.Bake(); err != nil {
		t.Fatalf("Bake with no props set should be a no-op, got %v", err)
	}
}

func TestSetPropUnknownReturnsErrMissingProp(t *testing.T) {
	v := NewPoint(core.NewID())
	if err := v.SetProp(PropTopology, 0, []byte{1}); err != ErrMissingProp {
		t.Fatalf("SetProp on undeclared prop = %v, want ErrMissingProp", err)
	}
}

func TestBakeSetsRefillOnVertexCountChange(t *testing.T) {
	v := NewPoint(core.NewID())
	if err := v.SetProp(PropPos, 0, vec3Bytes(1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Bake(); err != nil {
		t.Fatal(err)
	}
	if !v.NeedsRefill {
		t.Fatalf("first bake from zero vertices should require a refill")
	}

	v.NeedsRefill = false
	if _, err := v.Bake(); err != nil {
		t.Fatal(err)
	}
	if v.NeedsRefill {
		t.Fatalf("re-baking the same vertex count should not require a refill")
	}
}
