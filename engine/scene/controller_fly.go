package scene

import (
	stdmath "math"

	dvzmath "github.com/vizcore/dvz/engine/math"
)

// maxPitch bounds Fly/Fps's pitch to avoid flipping past the poles, in
// radians (~85 degrees).
const maxPitch = 1.4835

// flyBeta is the exponential time-constant controlling how quickly the
// camera's effective velocity approaches its target each frame.
const flyBeta = 8.0

// flyState is Fly/Fps's interaction state: a free-flying (or, for Fps,
// ground-pinned) Euler-angle camera with smoothed velocity, grounded on the
// teacher's Camera.MoveForward/Yaw/Pitch in
// engine/renderer/components/camera.go.
type flyState struct {
	position      dvzmath.Vec3
	eulerRotation dvzmath.Vec3
	velocity      dvzmath.Vec3
	targetVel     dvzmath.Vec3
}

func newFlyState() flyState {
	return flyState{}
}

func (s *flyState) update(dt float64, in PointerState, pinGround bool) bool {
	changed := false

	if in.LeftDown && (in.DX != 0 || in.DY != 0) {
		s.eulerRotation.Y += float32(in.DX * 0.003)
		s.eulerRotation.X += float32(-in.DY * 0.003)
		if s.eulerRotation.X > maxPitch {
			s.eulerRotation.X = maxPitch
		}
		if s.eulerRotation.X < -maxPitch {
			s.eulerRotation.X = -maxPitch
		}
		changed = true
	}

	rotation := dvzmath.NewMat4EulerXYZ(s.eulerRotation.X, s.eulerRotation.Y, 0)
	forward := rotation.Forward()
	right := rotation.Right()
	if pinGround {
		forward.Y = 0
		right.Y = 0
		forward = forward.Normalize()
		right = right.Normalize()
	}

	s.targetVel = dvzmath.NewVec3Zero()
	if in.KeyForwardDown {
		s.targetVel = s.targetVel.Add(forward)
	}
	if in.KeyBackwardDown {
		s.targetVel = s.targetVel.Sub(forward)
	}
	if in.KeyRightDown {
		s.targetVel = s.targetVel.Add(right)
	}
	if in.KeyLeftDown {
		s.targetVel = s.targetVel.Sub(right)
	}
	if !pinGround {
		if in.KeyUpDown {
			s.targetVel = s.targetVel.Add(dvzmath.NewVec3Up())
		}
		if in.KeyDownDown {
			s.targetVel = s.targetVel.Add(dvzmath.NewVec3Down())
		}
	}
	if in.WheelDelta != 0 {
		s.position = s.position.Add(dvzmath.NewVec3Up().MulScalar(float32(in.WheelDelta) * 0.1))
		changed = true
	}

	approach := float32(1 - stdmath.Exp(-flyBeta*dt))
	s.velocity = s.velocity.Add(s.targetVel.Sub(s.velocity).MulScalar(approach))
	if s.velocity.LengthSquared() > 1e-10 {
		s.position = s.position.Add(s.velocity.MulScalar(float32(dt)))
		changed = true
	}

	return changed
}

func (s *flyState) viewMatrix() dvzmath.Mat4 {
	rotation := dvzmath.NewMat4EulerXYZ(s.eulerRotation.X, s.eulerRotation.Y, s.eulerRotation.Z)
	translation := dvzmath.NewMat4Translation(s.position)
	view := rotation.Mul(translation)
	return view.Inverse()
}
