package visual

import (
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/graphics"
)

// Visual is a drawable: a bundle of Sources and Props driving one or more
// Graphics (and optionally Compute) pipelines, plus the bake/fill callbacks
// that turn Prop writes into GPU-ready Source bytes.
type Visual struct {
	ID core.ID

	GraphicsType graphics.Type
	Pipeline     *graphics.Graphics

	Sources []*Source
	Props   []*Prop

	Flags Flags

	// BakeFunc, if set, replaces DefaultBake for this Visual. Builtin
	// visuals with their own tesselation/layout (rectangle, path, image,
	// text) set this to a routine that writes the Source bytes itself;
	// those routines do not call DefaultBake.
	BakeFunc func(*Visual) error

	// FillFunc, if set, replaces the default per-pipeline draw-call
	// recording with a custom one (used by visuals with more than one
	// Graphics/Compute pipeline, e.g. a volume's slice + compositing
	// passes).
	FillFunc func(*Visual, FillRecorder)

	Dirty bool

	prevVertexCount uint64
	prevIndexCount  uint64
	NeedsRefill     bool
}

// FillRecorder is the minimal command-buffer surface a Visual's FillFunc
// needs to record its draw calls; the runner supplies the concrete
// implementation bound to the current frame's command buffer.
type FillRecorder interface {
	BindPipeline(p *graphics.Graphics)
	BindVertexSource(s *Source)
	BindIndexSource(s *Source)
	Draw(vertexCount, instanceCount uint32)
	DrawIndexed(indexCount, instanceCount uint32)
}

// New constructs an empty Visual of the given builtin graphics type. The
// caller (or a builtin constructor in bake_shapes.go etc.) is expected to
// populate Sources/Props afterward.
func New(id core.ID, t graphics.Type) *Visual {
	return &Visual{
		ID:           id,
		GraphicsType: t,
		Flags:        FlagDepthTest,
	}
}

func (v *Visual) findProp(t PropType, idx int) *Prop {
	for _, p := range v.Props {
		if p.Type == t && p.Idx == idx {
			return p
		}
	}
	return nil
}

// SetProp writes data into the named Prop's Orig array, resizing as
// needed, and marks the Prop and the Visual dirty so the runner schedules
// a bake before the next frame's uploads. The owning Source is not marked
// here; its dirty range is recorded when the Visual is baked.
func (v *Visual) SetProp(t PropType, idx int, data []byte) error {
	p := v.findProp(t, idx)
	if p == nil {
		return ErrMissingProp
	}
	p.Set(data)
	v.Dirty = true
	return nil
}

// Source returns the Source at (sourceType, idx), or nil.
func (v *Visual) Source(t SourceType, idx int) *Source {
	for _, s := range v.Sources {
		if s.Type == t && s.Idx == idx {
			return s
		}
	}
	return nil
}

// DirtyUpload names one Source's changed byte range, ready to hand to the
// transfer engine as an Upload job.
type DirtyUpload struct {
	Source    *Source
	From, To  uint64
}

// Bake runs the Visual's bake callback (BakeFunc if set, else
// DefaultBake), then checks whether any vertex/index Source's element
// count changed since the last bake, setting NeedsRefill if so. Returns
// the dirty ranges the caller should schedule transfer-engine uploads for.
func (v *Visual) Bake() ([]DirtyUpload, error) {
	bake := v.BakeFunc
	if bake == nil {
		bake = DefaultBake
	}
	if err := bake(v); err != nil {
		return nil, err
	}

	var changed []DirtyUpload
	for _, s := range v.Sources {
		if from, to, ok := s.TakeDirtyRange(); ok {
			changed = append(changed, DirtyUpload{Source: s, From: from, To: to})
		}
	}

	vertexCount, indexCount := v.countsFor(SourceVertex), v.countsFor(SourceIndex)
	if vertexCount != v.prevVertexCount || indexCount != v.prevIndexCount {
		v.NeedsRefill = true
		v.prevVertexCount, v.prevIndexCount = vertexCount, indexCount
	}

	v.Dirty = false
	return changed, nil
}

func (v *Visual) countsFor(t SourceType) uint64 {
	var total uint64
	for _, s := range v.Sources {
		if s.Type == t {
			total += s.Count()
		}
	}
	return total
}
