package scene

import "github.com/vizcore/dvz/engine/math"

// ControllerType tags which interaction state machine a Panel's Controller
// currently holds. Only one variant's state is meaningful at a time; the
// others sit zeroed, matching the teacher's tagged-union convention for
// per-type render data (see graphics.Type/Description).
type ControllerType int

const (
	ControllerNone ControllerType = iota
	ControllerPanZoom
	ControllerPanZoomFixedAspect
	ControllerArcball
	ControllerTurntable
	ControllerFly
	ControllerFps
	ControllerAxes2D
	ControllerAxes3D
)

func (t ControllerType) String() string {
	switch t {
	case ControllerNone:
		return "None"
	case ControllerPanZoom:
		return "PanZoom"
	case ControllerPanZoomFixedAspect:
		return "PanZoomFixedAspect"
	case ControllerArcball:
		return "Arcball"
	case ControllerTurntable:
		return "Turntable"
	case ControllerFly:
		return "Fly"
	case ControllerFps:
		return "Fps"
	case ControllerAxes2D:
		return "Axes2D"
	case ControllerAxes3D:
		return "Axes3D"
	default:
		return "Unknown"
	}
}

// ClipMode governs how a Panel's Viewport clips content drawn outside its
// rectangle.
type ClipMode int

const (
	ClipNone ClipMode = iota
	ClipScissor
	ClipViewport
)

// InteractAxis restricts a Controller's drag/wheel response to one screen
// axis, used by 1D histogram-style panels sharing a Scene with 2D plots.
type InteractAxis int

const (
	InteractBoth InteractAxis = iota
	InteractX
	InteractY
)

// Viewport is a Panel's screen rectangle in two coordinate systems: logical
// pixels (what input events and layout math use) and framebuffer texels
// (what vk.Viewport/vk.Rect2D need, which differ under HiDPI scaling).
type Viewport struct {
	OffsetX, OffsetY           int32
	Width, Height              uint32
	FramebufferX, FramebufferY int32
	FramebufferW, FramebufferH uint32
	Clip                       ClipMode
	Axis                       InteractAxis
}

// DataCoords is the data-space rectangle a Panel's visuals are mapped into
// NDC from. Panel.AutoFit recomputes it as the union bounding box of all
// owned visuals' Pos props.
type DataCoords struct {
	Min, Max math.Vec3
	// Set once a visual has contributed to the box; an empty Panel keeps
	// the zero-value identity box until something is added.
	Valid bool
}

// PointerState is the per-frame input snapshot a Controller.Update
// consumes, built by main.go from the frame's platform events and passed
// to Runner.Tick before controllers are advanced.
type PointerState struct {
	X, Y            float64
	DX, DY          float64
	ViewW, ViewH    int32
	LeftDown        bool
	RightDown       bool
	MiddleDown      bool
	WheelDelta      float64
	DoubleClick     bool
	KeyForwardDown  bool
	KeyBackwardDown bool
	KeyLeftDown     bool
	KeyRightDown    bool
	KeyUpDown       bool
	KeyDownDown     bool
}

// UpdateKind tags one entry in a Scene's update FIFO.
type UpdateKind int

const (
	UpdatePanelAdded UpdateKind = iota
	UpdatePanelRemoved
	UpdateVisualAdded
	UpdateVisualRemoved
	UpdateDataCoordsChanged
	UpdateControllerChanged
)

// Update is one descriptor the runner's Main-queue handler drains through
// Scene.DrainUpdates, naming what changed and the old/new value where that's
// meaningful (e.g. DataCoords before/after an auto-fit).
type Update struct {
	Kind   UpdateKind
	Target interface{}
	Old    interface{}
	New    interface{}
}
