// Package demo builds the sample scene the dvzdemo binary renders: a
// single panel holding a triangle and a rectangle, driven by a PanZoom
// controller. It stands in for the teacher's testbed/game.go sample.
package demo

import (
	"encoding/binary"
	"math"

	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/graphics"
	"github.com/vizcore/dvz/engine/scene"
	"github.com/vizcore/dvz/engine/visual"
)

// Build constructs the default demo scene: one full-window panel with a
// PanZoom controller, owning a triangle and a rectangle visual.
func Build() *scene.Scene {
	s := scene.New()
	p := scene.NewPanel(0, 0, 1, 1, scene.ControllerPanZoom)

	tri := visual.NewTriangle(core.NewID(), graphics.TriangleList)
	must(tri.SetProp(visual.PropPos, 0, concat(
		vec3(-0.5, -0.5, 0), vec3(0.5, -0.5, 0), vec3(0, 0.5, 0))))
	must(tri.SetProp(visual.PropColor, 0, concat(
		vec4(1, 0, 0, 1), vec4(0, 1, 0, 1), vec4(0, 0, 1, 1))))
	p.AddVisual(tri, 0)

	rect := visual.NewRectangle(core.NewID())
	must(rect.SetProp(visual.PropPos, 0, vec3(0.2, 0.2, 0)))
	must(rect.SetProp(visual.PropPos, 1, vec3(0.9, 0.9, 0)))
	p.AddVisual(rect, 1)

	s.AddPanel(p)
	return s
}

func must(err error) {
	if err != nil {
		core.LogFatal("demo: build scene: %s", err)
	}
}

func vec3(x, y, z float32) []byte {
	out := make([]byte, 12)
	putF32(out[0:4], x)
	putF32(out[4:8], y)
	putF32(out[8:12], z)
	return out
}

func vec4(x, y, z, w float32) []byte {
	out := make([]byte, 16)
	putF32(out[0:4], x)
	putF32(out[4:8], y)
	putF32(out[8:12], z)
	putF32(out[12:16], w)
	return out
}

func putF32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func concat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
