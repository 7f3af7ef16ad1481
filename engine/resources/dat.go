// Package resources wraps the memory allocator in a typed handle
// layer: Dat for buffer-backed data, Tex for images, per spec.md §4.2.
package resources

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/containers"
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/memory"
)

// DatFlags are the usage hints a Dat is created with; the transfer
// engine and allocator consult them to choose buffer kind and whether
// to reserve dup slices.
type DatFlags uint8

const (
	DatFlagFrequentUpload DatFlags = 1 << iota
	DatFlagFrequentDownload
	DatFlagFrequentResize
	DatFlagMappable
	DatFlagDup
)

func (f DatFlags) Has(flag DatFlags) bool { return f&flag != 0 }

// Dat is the high-level handle a Visual's Source holds for its GPU
// buffer data. A dup Dat holds swapchain-image-count distinct region
// offsets; Dirty records which of those slices still hold stale data
// after a logical write, per the Invariant in spec.md §3.
type Dat struct {
	ID    core.ID
	Kind  memory.Kind
	Flags DatFlags

	Regions *memory.BufferRegions

	// Dirty[i] is true if slice i has not yet received the most recent
	// logical write. Always length 1 for a non-dup Dat.
	Dirty []bool
}

// Manager owns every live Dat/Tex and the allocator they suballocate
// from. Handles into dats/texs are Container handles so a stale Dat
// pointer taken before a Destroy is detected rather than silently
// reused.
type Manager struct {
	alloc *memory.Allocator

	dats *containers.Container[*Dat]
	texs *containers.Container[*Tex]

	swapchainImageCount uint32
}

func NewManager(alloc *memory.Allocator, swapchainImageCount uint32) *Manager {
	return &Manager{
		alloc:               alloc,
		dats:                containers.NewContainer[*Dat](64),
		texs:                containers.NewContainer[*Tex](64),
		swapchainImageCount: swapchainImageCount,
	}
}

// CreateDat allocates a new Dat of kind holding size bytes per slice.
// If flags includes DatFlagDup, swapchainImageCount slices are reserved
// instead of one.
func (m *Manager) CreateDat(kind memory.Kind, size uint64, alignment uint64, flags DatFlags) (containers.Handle, error) {
	count := uint32(1)
	if flags.Has(DatFlagDup) {
		count = m.swapchainImageCount
	}

	regions, err := m.alloc.AllocDup(kind, size, alignment, count)
	if err != nil {
		return containers.Handle{}, fmt.Errorf("resources: create dat: %w", err)
	}

	dirty := make([]bool, count)

	dat := &Dat{
		ID:      core.NewID(),
		Kind:    kind,
		Flags:   flags,
		Regions: regions,
		Dirty:   dirty,
	}

	return m.dats.Add(dat), nil
}

func (m *Manager) Dat(h containers.Handle) (*Dat, error) {
	return m.dats.Get(h)
}

// ResizeDat grows or shrinks every slice of the Dat at h to newSize,
// keeping the handle's identity stable (spec.md §4.1 resize semantics).
func (m *Manager) ResizeDat(h containers.Handle, newSize uint64) error {
	dat, err := m.dats.Get(h)
	if err != nil {
		return err
	}
	if err := m.alloc.Resize(dat.Regions, newSize); err != nil {
		return err
	}
	for i := range dat.Dirty {
		dat.Dirty[i] = true
	}
	return nil
}

// DestroyDat releases h's underlying regions and invalidates h. The
// caller must ensure no in-flight command buffer still references the
// Dat's regions (spec.md §3 invariant iv); the runner enforces this by
// deferring the call until after waiting on every in-flight fence.
func (m *Manager) DestroyDat(h containers.Handle) error {
	dat, err := m.dats.Get(h)
	if err != nil {
		return err
	}
	if err := m.alloc.Free(dat.Regions); err != nil {
		return err
	}
	return m.dats.Remove(h)
}

// MarkWritten records a logical write to currentSlice (the slice the
// current frame is writing) and marks every other slice stale, per the dup
// upload ("upfill") semantics in spec.md §4.3.
func (m *Manager) MarkWritten(h containers.Handle, currentSlice uint32) error {
	dat, err := m.dats.Get(h)
	if err != nil {
		return err
	}
	for i := range dat.Dirty {
		dat.Dirty[i] = uint32(i) != currentSlice
	}
	return nil
}

// MarkSliceClean clears slice i's dirty bit without disturbing any other
// slice's, used by the transfer engine's per-frame dup catch-up copy once
// that slice's upfill propagation lands (spec.md §4.3).
func (m *Manager) MarkSliceClean(h containers.Handle, slice uint32) error {
	dat, err := m.dats.Get(h)
	if err != nil {
		return err
	}
	if int(slice) < len(dat.Dirty) {
		dat.Dirty[slice] = false
	}
	return nil
}

// IsConsistent reports whether every slice of the dup Dat at h holds
// current data (spec.md §3 invariant ii).
func (m *Manager) IsConsistent(h containers.Handle) (bool, error) {
	dat, err := m.dats.Get(h)
	if err != nil {
		return false, err
	}
	for _, dirty := range dat.Dirty {
		if dirty {
			return false, nil
		}
	}
	return true, nil
}

// BufferHandle returns the underlying vk.Buffer a Dat's Kind suballocates
// from, for a command-buffer bind. currentSlice selects which dup region's
// byte offset to report alongside it.
func (m *Manager) BufferHandle(h containers.Handle, currentSlice uint32) (buffer vk.Buffer, offset uint64, err error) {
	dat, err := m.dats.Get(h)
	if err != nil {
		return vk.Buffer(vk.NullHandle), 0, err
	}
	buf, err := m.alloc.Handle(dat.Kind)
	if err != nil {
		return vk.Buffer(vk.NullHandle), 0, err
	}
	idx := currentSlice
	if int(idx) >= len(dat.Regions.Offsets) {
		idx = 0
	}
	return buf, dat.Regions.Offsets[idx], nil
}
