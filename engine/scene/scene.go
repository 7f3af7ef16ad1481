package scene

import (
	"github.com/vizcore/dvz/engine/containers"
	"github.com/vizcore/dvz/engine/core"
)

// updateQueueSize bounds the ring buffer backing Scene's update FIFO;
// Main-queue draining happens once per frame so this only needs to absorb
// a single frame's worth of panel/visual churn.
const updateQueueSize = 256

// Scene owns a Panel grid, the shared color-atlas and font-atlas textures
// every Text/Marker visual samples from, and an update FIFO the runner
// drains on its Main queue.
type Scene struct {
	ID core.ID

	Panels []*Panel

	ColorAtlas containers.Handle
	FontAtlas  containers.Handle

	pending *containers.RingQueue
}

// New constructs an empty Scene with no panels. ColorAtlas/FontAtlas are
// left as zero-value handles; the caller populates them once the resource
// manager has allocated the shared atlases (shared across every Scene in
// a canvas, not per-Scene, so construction doesn't own that allocation).
func New() *Scene {
	return &Scene{
		ID:      core.NewID(),
		pending: containers.NewRingQueue(updateQueueSize),
	}
}

// AddPanel appends panel to the grid and posts an UpdatePanelAdded
// descriptor.
func (s *Scene) AddPanel(p *Panel) {
	p.scene = s
	s.Panels = append(s.Panels, p)
	s.post(Update{Kind: UpdatePanelAdded, Target: p})
}

// RemovePanel detaches panel, if owned, and posts an UpdatePanelRemoved
// descriptor.
func (s *Scene) RemovePanel(p *Panel) {
	for i, owned := range s.Panels {
		if owned == p {
			s.Panels = append(s.Panels[:i], s.Panels[i+1:]...)
			p.scene = nil
			s.post(Update{Kind: UpdatePanelRemoved, Target: p})
			return
		}
	}
}

// NotifyControllerChanged posts an UpdateControllerChanged descriptor;
// called by the runner's Frame-queue handler when a Controller.Update
// reports the view matrix changed, so the panel's MVP dup-uniform gets
// re-baked on the Main queue this tick.
func (s *Scene) NotifyControllerChanged(p *Panel) {
	s.post(Update{Kind: UpdateControllerChanged, Target: p})
}

// PanelAt returns the panel whose grid cell contains (row, col), or nil.
func (s *Scene) PanelAt(row, col int) *Panel {
	for _, p := range s.Panels {
		if row >= p.Row && row < p.Row+p.RowSpan && col >= p.Col && col < p.Col+p.ColSpan {
			return p
		}
	}
	return nil
}

// NotifyDataCoordsChanged posts an UpdateDataCoordsChanged descriptor;
// called by the runner's Frame-queue handler after a Panel.AutoFit reports
// a change, so dependent systems (e.g. an Axes2D/Axes3D panel sharing the
// same grid cell) can react.
func (s *Scene) NotifyDataCoordsChanged(p *Panel, old, new DataCoords) {
	s.post(Update{Kind: UpdateDataCoordsChanged, Target: p, Old: old, New: new})
}

func (s *Scene) post(u Update) {
	if err := s.pending.Enqueue(u); err != nil {
		// Queue full: drop the oldest pending update rather than block the
		// frame loop, since updates are advisory (AutoFit recomputes from
		// current state regardless of how many change notifications were
		// coalesced).
		_, _ = s.pending.Dequeue()
		_ = s.pending.Enqueue(u)
	}
}

// DrainUpdates removes and returns every pending Update, in FIFO order,
// for the runner's Main-queue handler to process this frame.
func (s *Scene) DrainUpdates() []Update {
	var out []Update
	for !s.pending.IsEmpty() {
		v, err := s.pending.Dequeue()
		if err != nil {
			break
		}
		out = append(out, v.(Update))
	}
	return out
}
