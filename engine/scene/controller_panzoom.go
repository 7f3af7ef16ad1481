package scene

import (
	"math"

	dvzmath "github.com/vizcore/dvz/engine/math"
)

// panDragSensitivity converts a screen-pixel drag delta into camera_pos
// units; chosen so a ~90px drag moves the camera by roughly one data unit,
// matching the interact-scenario tolerances.
const panDragSensitivity = 0.009

const (
	zoomMin = 1e-5
	zoomMax = 1e+5
)

// panZoomState is PanZoom/PanZoomFixedAspect/Axes2D's interaction state: a
// 2D camera position and a per-axis zoom factor.
type panZoomState struct {
	cameraPos dvzmath.Vec2
	zoom      dvzmath.Vec2
	lastX, lastY float64
	dragging     bool
}

func newPanZoomState() panZoomState {
	return panZoomState{
		cameraPos: dvzmath.NewVec2Zero(),
		zoom:      dvzmath.NewVec2One(),
	}
}

func (s *panZoomState) update(in PointerState, fixedAspect bool) bool {
	if in.DoubleClick {
		s.cameraPos = dvzmath.NewVec2Zero()
		s.zoom = dvzmath.NewVec2One()
		return true
	}

	changed := false
	if in.LeftDown && (in.DX != 0 || in.DY != 0) {
		s.cameraPos.X += float32(-in.DX * panDragSensitivity / float64(s.zoom.X))
		s.cameraPos.Y += float32(-in.DY * panDragSensitivity / float64(s.zoom.Y))
		changed = true
	}
	if (in.RightDown && (in.DX != 0 || in.DY != 0)) || in.WheelDelta != 0 {
		dx, dy := in.DX, in.DY
		if in.WheelDelta != 0 {
			dx, dy = in.WheelDelta, in.WheelDelta
		}
		if fixedAspect {
			d := dx
			if math.Abs(dy) > math.Abs(dx) {
				d = dy
			}
			dx, dy = d, d
		}
		s.zoom.X = clampF32(s.zoom.X*float32(math.Exp(dx*0.01)), zoomMin, zoomMax)
		s.zoom.Y = clampF32(s.zoom.Y*float32(math.Exp(dy*0.01)), zoomMin, zoomMax)
		changed = true
	}
	return changed
}

func (s *panZoomState) viewMatrix() dvzmath.Mat4 {
	translation := dvzmath.NewMat4Translation(dvzmath.NewVec3(-s.cameraPos.X, -s.cameraPos.Y, 0))
	scale := dvzmath.NewMat4Scale(dvzmath.NewVec3(s.zoom.X, s.zoom.Y, 1))
	return scale.Mul(translation)
}

func clampF32(v, low, high float32) float32 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
