package visual

import (
	"encoding/binary"
	"fmt"

	"github.com/vizcore/dvz/engine/assets/loaders"
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/graphics"
)

// TickFunc generates tick positions and labels for an axis spanning
// [min, max], aiming for roughly targetCount ticks. Concrete "nice round
// number" policies are supplied by the caller (the scene package) rather
// than hardcoded here, per the engine's scope boundary around axis
// formatting.
type TickFunc func(min, max float32, targetCount int) (positions []float32, labels []string)

// AxesVisual bundles the tick-mark Line visual and per-tick Text visuals
// that make up one axis (Axes2D uses two of these, Axes3D three).
type AxesVisual struct {
	Axis     int // 0=x, 1=y, 2=z
	Ticks    *Visual
	Labels   []*Visual
	tickFunc TickFunc
	font     *loaders.FontData
}

// NewAxes builds an empty axis along the given dimension (0=x, 1=y, 2=z).
func NewAxes(id core.ID, axis int, tickFunc TickFunc, font *loaders.FontData) *AxesVisual {
	return &AxesVisual{
		Axis:     axis,
		Ticks:    NewLine(id, graphics.Line),
		tickFunc: tickFunc,
		font:     font,
	}
}

// Rebuild regenerates tick positions/labels for [min, max] and rewrites
// the Ticks visual's Pos/Color props accordingly. It does not itself
// allocate Text visual IDs (the caller, which owns ID generation, does
// that via newLabel) so AxesVisual stays free of any core.ID-minting
// policy of its own.
func (a *AxesVisual) Rebuild(min, max float32, tickLength float32, newLabel func() core.ID) {
	positions, labels := a.tickFunc(min, max, 5)

	vertexCount := len(positions) * 2
	posBytes := make([]byte, vertexCount*vec3Size)
	colorBytes := make([]byte, vertexCount*vec4Size)
	for i := range colorBytes {
		colorBytes[i] = 0xFF
	}

	for i, p := range positions {
		a0, a1 := axisVertex(a.Axis, p, 0), axisVertex(a.Axis, p, tickLength)
		writeVec3(posBytes, i*2, a0)
		writeVec3(posBytes, i*2+1, a1)
	}

	a.Ticks.SetProp(PropPos, 0, posBytes)
	a.Ticks.SetProp(PropColor, 0, colorBytes)

	a.Labels = make([]*Visual, len(labels))
	for i, text := range labels {
		lv := NewText(newLabel(), a.font)
		lv.SetProp(PropText, 0, []byte(text))
		lv.SetProp(PropColor, 0, colorBytes[:vec4Size])
		a.Labels[i] = lv
	}
}

func axisVertex(axis int, value, offset float32) [3]float32 {
	v := [3]float32{}
	if axis >= 0 && axis < 3 {
		v[axis] = value
	}
	perp := (axis + 1) % 3
	v[perp] = offset
	return v
}

func writeVec3(buf []byte, idx int, v [3]float32) {
	off := idx * vec3Size
	binary.LittleEndian.PutUint32(buf[off:off+4], float32bitsOf(v[0]))
	binary.LittleEndian.PutUint32(buf[off+4:off+8], float32bitsOf(v[1]))
	binary.LittleEndian.PutUint32(buf[off+8:off+12], float32bitsOf(v[2]))
}

func float32bitsOf(f float32) uint32 {
	return binary.LittleEndian.Uint32(float32tobytes(f))
}

// DefaultTickFunc is a linear "nice round number" tick generator used when
// no caller-supplied TickFunc is configured: it picks a step that is
// 1/2/5 times a power of ten and places ticks at multiples of that step
// within [min, max].
func DefaultTickFunc(min, max float32, targetCount int) ([]float32, []string) {
	if targetCount <= 0 {
		targetCount = 5
	}
	span := max - min
	if span <= 0 {
		return nil, nil
	}
	rawStep := span / float32(targetCount)
	step := niceStep(rawStep)

	var positions []float32
	for v := ceilToStep(min, step); v <= max; v += step {
		positions = append(positions, v)
	}

	labels := make([]string, len(positions))
	for i, p := range positions {
		labels[i] = fmt.Sprintf("%g", p)
	}
	return positions, labels
}

func niceStep(raw float32) float32 {
	if raw <= 0 {
		return 1
	}
	exp := 0
	for raw < 1 {
		raw *= 10
		exp--
	}
	for raw >= 10 {
		raw /= 10
		exp++
	}
	var nice float32
	switch {
	case raw < 1.5:
		nice = 1
	case raw < 3:
		nice = 2
	case raw < 7:
		nice = 5
	default:
		nice = 10
	}
	for exp > 0 {
		nice *= 10
		exp--
	}
	for exp < 0 {
		nice /= 10
		exp++
	}
	return nice
}

func ceilToStep(v, step float32) float32 {
	n := v / step
	if n != float32(int64(n)) {
		if n > 0 {
			n = float32(int64(n)) + 1
		} else {
			n = float32(int64(n))
		}
	}
	return n * step
}
