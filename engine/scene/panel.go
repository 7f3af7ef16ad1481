package scene

import (
	"sort"

	"github.com/vizcore/dvz/engine/core"
	dvzmath "github.com/vizcore/dvz/engine/math"
	"github.com/vizcore/dvz/engine/visual"
)

// visualEntry pairs an owned Visual with its draw priority; Panel keeps
// these sorted so Fill iterates back-to-front (or whatever order the
// Refill pass wants) without re-sorting every frame.
type visualEntry struct {
	v        *visual.Visual
	priority int
}

// Panel is a rectangle within a Scene grid identified by (Row, Col,
// RowSpan, ColSpan). It owns a Controller, a Viewport, a DataCoords box,
// and its visuals ordered by priority.
type Panel struct {
	ID core.ID

	Row, Col         int
	RowSpan, ColSpan int

	Viewport   Viewport
	DataCoords DataCoords
	Controller *Controller

	Cubic bool // make DataCoords cubic on auto-fit, for 3D controllers

	scene   *Scene
	entries []visualEntry
	sorted  bool
}

// NewPanel constructs a Panel at the given grid cell with the given
// controller type (None leaves Controller nil-equivalent: an identity
// view).
func NewPanel(row, col, rowSpan, colSpan int, controllerType ControllerType) *Panel {
	return &Panel{
		ID:         core.NewID(),
		Row:        row,
		Col:        col,
		RowSpan:    rowSpan,
		ColSpan:    colSpan,
		Controller: NewController(controllerType),
		Cubic:      controllerType == ControllerArcball || controllerType == ControllerTurntable || controllerType == ControllerAxes3D,
	}
}

// AddVisual attaches v to the panel at the given draw priority (lower
// first) and recomputes the data-coordinate bounding box, per spec.md
// §4.6's "when a visual is first added ... the panel recomputes its data
// box."
func (p *Panel) AddVisual(v *visual.Visual, priority int) {
	p.entries = append(p.entries, visualEntry{v: v, priority: priority})
	p.sorted = false
	p.AutoFit()
	if p.scene != nil {
		p.scene.post(Update{Kind: UpdateVisualAdded, Target: p, New: v})
	}
}

// RemoveVisual detaches v, if owned, and recomputes the data box.
func (p *Panel) RemoveVisual(v *visual.Visual) {
	for i, e := range p.entries {
		if e.v == v {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			p.AutoFit()
			if p.scene != nil {
				p.scene.post(Update{Kind: UpdateVisualRemoved, Target: p, Old: v})
			}
			return
		}
	}
}

// Visuals returns the panel's visuals ordered by ascending priority.
func (p *Panel) Visuals() []*visual.Visual {
	if !p.sorted {
		sort.SliceStable(p.entries, func(i, j int) bool {
			return p.entries[i].priority < p.entries[j].priority
		})
		p.sorted = true
	}
	out := make([]*visual.Visual, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.v
	}
	return out
}

// AutoFit recomputes DataCoords as the union bounding box of every owned
// visual's Pos props, optionally squared up to a cube for 3D controllers.
// It reports whether the box actually changed, which the caller (the
// runner's Frame-queue handler) uses to decide whether to post an
// UpdateDataCoordsChanged descriptor.
func (p *Panel) AutoFit() bool {
	var min, max dvzmath.Vec3
	found := false
	for _, e := range p.entries {
		vmin, vmax, ok := e.v.PosBounds()
		if !ok {
			continue
		}
		if !found {
			min, max = vmin, vmax
			found = true
			continue
		}
		min = componentMin(min, vmin)
		max = componentMax(max, vmax)
	}
	if !found {
		return false
	}

	if p.Cubic {
		center := min.Add(max).MulScalar(0.5)
		half := max.Sub(min).MulScalar(0.5)
		radius := half.X
		if half.Y > radius {
			radius = half.Y
		}
		if half.Z > radius {
			radius = half.Z
		}
		min = center.Sub(dvzmath.NewVec3(radius, radius, radius))
		max = center.Add(dvzmath.NewVec3(radius, radius, radius))
	}

	changed := !p.DataCoords.Valid || !min.Compare(p.DataCoords.Min, 1e-6) || !max.Compare(p.DataCoords.Max, 1e-6)
	p.DataCoords = DataCoords{Min: min, Max: max, Valid: true}
	return changed
}

func componentMin(a, b dvzmath.Vec3) dvzmath.Vec3 {
	return dvzmath.NewVec3(minF(a.X, b.X), minF(a.Y, b.Y), minF(a.Z, b.Z))
}

func componentMax(a, b dvzmath.Vec3) dvzmath.Vec3 {
	return dvzmath.NewVec3(maxF(a.X, b.X), maxF(a.Y, b.Y), maxF(a.Z, b.Z))
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Projection returns the panel's projection matrix: orthographic mapping
// DataCoords onto NDC for 2D controllers, perspective for 3D ones.
func (p *Panel) Projection(aspect float32) dvzmath.Mat4 {
	switch p.Controller.Type {
	case ControllerArcball, ControllerTurntable, ControllerFly, ControllerFps, ControllerAxes3D:
		return dvzmath.NewMat4Perspective(dvzmath.DegToRad(60), aspect, 0.01, 1000)
	default:
		if !p.DataCoords.Valid {
			return dvzmath.NewMat4Orthographic(-1, 1, -1, 1, -1, 1)
		}
		return dvzmath.NewMat4Orthographic(p.DataCoords.Min.X, p.DataCoords.Max.X, p.DataCoords.Min.Y, p.DataCoords.Max.Y, -1000, 1000)
	}
}

// MVP composes the panel's projection with its controller's current view.
func (p *Panel) MVP(aspect float32) dvzmath.Mat4 {
	return p.Controller.MVP(p.Projection(aspect))
}
