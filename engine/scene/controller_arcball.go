package scene

import (
	stdmath "math"

	dvzmath "github.com/vizcore/dvz/engine/math"
)

// arcballState is Arcball/Turntable/Axes3D's interaction state: an
// accumulated orientation quaternion and an eye distance along the
// resulting forward axis.
type arcballState struct {
	orientation dvzmath.Quaternion
	eyeDistance float32
	dragging    bool
	lastX, lastY float64
}

func newArcballState() arcballState {
	return arcballState{
		orientation: dvzmath.NewQuatIdentity(),
		eyeDistance: 5,
	}
}

// projectToSphere maps a pointer position in viewport pixels onto a unit
// trackball sphere centered at the viewport's center, per the classic
// Shoemake arcball construction: points inside the inscribed circle land on
// the sphere's front, points outside are clamped onto the sphere's rim
// (z = 0) in the same direction from the center.
func projectToSphere(x, y float64, w, h int32) dvzmath.Vec3 {
	if w <= 0 {
		w = 400
	}
	if h <= 0 {
		h = 400
	}
	radius := float64(w)
	if h < w {
		radius = float64(h)
	}
	radius /= 2
	cx, cy := float64(w)/2, float64(h)/2
	nx := (x - cx) / radius
	ny := (cy - y) / radius

	d2 := nx*nx + ny*ny
	var nz float64
	if d2 <= 1 {
		nz = stdmath.Sqrt(1 - d2)
	} else {
		norm := stdmath.Sqrt(d2)
		nx, ny = nx/norm, ny/norm
		nz = 0
	}
	return dvzmath.NewVec3(float32(nx), float32(ny), float32(nz)).Normalized()
}

func (s *arcballState) update(in PointerState) bool {
	if in.DoubleClick {
		s.orientation = dvzmath.NewQuatIdentity()
		s.eyeDistance = 5
		s.dragging = false
		return true
	}

	if !in.LeftDown {
		s.dragging = false
		if in.WheelDelta != 0 {
			s.eyeDistance = clampF32(s.eyeDistance*float32(stdmath.Exp(in.WheelDelta*0.01)), 0.01, 1e4)
			return true
		}
		return false
	}

	prevX, prevY := in.X-in.DX, in.Y-in.DY
	if !s.dragging {
		prevX, prevY = in.X, in.Y
		s.dragging = true
	}

	from := projectToSphere(prevX, prevY, in.ViewW, in.ViewH)
	to := projectToSphere(in.X, in.Y, in.ViewW, in.ViewH)

	axis := from.Cross(to)
	dot := from.Dot(to)
	if axis.Length() < 1e-9 {
		return false
	}
	angle := float32(stdmath.Acos(clampF64(float64(dot), -1, 1)))
	rot := dvzmath.NewQuatFromAxisAngle(axis, angle, true)
	s.orientation = rot.Mul(s.orientation).Normalize()
	return true
}

// updateTurntable behaves like update but ignores vertical drag, so only
// horizontal pointer motion rotates the camera. The rotation axis still
// comes from the arcball projection; it is the world-up axis only when the
// pointer sits on the viewport's horizontal center line.
func (s *arcballState) updateTurntable(dt float64, in PointerState) bool {
	flat := in
	flat.DY = 0
	return s.update(flat)
}

func (s *arcballState) viewMatrix() dvzmath.Mat4 {
	rotation := s.orientation.ToMat4()
	eye := dvzmath.NewVec3(0, 0, s.eyeDistance).Transform(rotation)
	return dvzmath.NewMat4LookAt(eye, dvzmath.NewVec3Zero(), dvzmath.NewVec3Up())
}

func clampF64(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
