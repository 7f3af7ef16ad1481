package scene

import "github.com/vizcore/dvz/engine/math"

// Controller is an interaction state machine selected per Panel. It holds
// the union of every variant's state (small and rarely more than a handful
// of floats, so the waste of carrying unused variants is not worth a type
// switch on construction) and dispatches Update by Type, mirroring the
// teacher's Camera's single-struct-many-fields style in
// engine/renderer/components/camera.go.
type Controller struct {
	Type ControllerType

	panZoom  panZoomState
	arcball  arcballState
	fly      flyState
	view     math.Mat4
	viewDirty bool
}

// NewController constructs a Controller of the given type with its
// variant's state reset to the type's default view.
func NewController(t ControllerType) *Controller {
	c := &Controller{Type: t}
	c.Reset()
	return c
}

// Reset restores the controller's active variant to its initial state
// (identity zoom/pan, eye on +Z for Arcball, origin for Fly/Fps).
func (c *Controller) Reset() {
	switch c.Type {
	case ControllerPanZoom, ControllerPanZoomFixedAspect, ControllerAxes2D:
		c.panZoom = newPanZoomState()
	case ControllerArcball, ControllerTurntable, ControllerAxes3D:
		c.arcball = newArcballState()
	case ControllerFly, ControllerFps:
		c.fly = newFlyState()
	}
	c.viewDirty = true
}

// Update advances the controller's state from one frame's pointer/keyboard
// snapshot and returns true if the resulting view changed (the panel should
// mark its MVP dup-uniform dirty).
func (c *Controller) Update(dt float64, in PointerState) bool {
	switch c.Type {
	case ControllerPanZoom, ControllerAxes2D:
		return c.panZoom.update(in, false)
	case ControllerPanZoomFixedAspect:
		return c.panZoom.update(in, true)
	case ControllerArcball, ControllerAxes3D:
		return c.arcball.update(in)
	case ControllerTurntable:
		return c.arcball.updateTurntable(dt, in)
	case ControllerFly:
		return c.fly.update(dt, in, false)
	case ControllerFps:
		return c.fly.update(dt, in, true)
	default:
		return false
	}
}

// View returns the controller's current view matrix (camera-space
// transform), recomputing it from variant state when dirty.
func (c *Controller) View() math.Mat4 {
	switch c.Type {
	case ControllerPanZoom, ControllerPanZoomFixedAspect, ControllerAxes2D:
		return c.panZoom.viewMatrix()
	case ControllerArcball, ControllerTurntable, ControllerAxes3D:
		return c.arcball.viewMatrix()
	case ControllerFly, ControllerFps:
		return c.fly.viewMatrix()
	default:
		return math.NewMat4Identity()
	}
}

// MVP composes the controller's view with proj and the panel's identity
// model (panels place their visuals directly in data space; per-visual
// model transforms, if any, are applied during baking instead).
func (c *Controller) MVP(proj math.Mat4) math.Mat4 {
	return proj.Mul(c.View())
}
