package resources

import (
	"testing"

	"github.com/vizcore/dvz/engine/containers"
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/memory"
)

// newTestManager builds a Manager whose dats container can be populated
// directly, bypassing CreateDat (and therefore the real Vulkan allocator
// it requires) so the dirty-bitmap bookkeeping can be unit tested.
func newTestManager(slices int) (*Manager, containers.Handle) {
	m := &Manager{
		dats:                containers.NewContainer[*Dat](4),
		texs:                containers.NewContainer[*Tex](4),
		swapchainImageCount: uint32(slices),
	}
	dat := &Dat{
		ID:    core.NewID(),
		Kind:  memory.KindVertex,
		Flags: DatFlagDup,
		Regions: &memory.BufferRegions{
			Kind:    memory.KindVertex,
			Count:   uint32(slices),
			Offsets: make([]uint64, slices),
		},
		Dirty: make([]bool, slices),
	}
	h := m.dats.Add(dat)
	return m, h
}

func TestMarkWrittenLeavesOnlyCurrentSliceClean(t *testing.T) {
	m, h := newTestManager(3)

	if err := m.MarkWritten(h, 1); err != nil {
		t.Fatalf("MarkWritten: %s", err)
	}

	dat, _ := m.Dat(h)
	want := []bool{true, false, true}
	for i, w := range want {
		if dat.Dirty[i] != w {
			t.Errorf("Dirty[%d] = %v, want %v", i, dat.Dirty[i], w)
		}
	}
}

func TestIsConsistentFalseUntilEverySliceWritten(t *testing.T) {
	m, h := newTestManager(2)

	m.MarkWritten(h, 0)

	ok, err := m.IsConsistent(h)
	if err != nil {
		t.Fatalf("IsConsistent: %s", err)
	}
	if ok {
		t.Fatalf("a freshly dirtied dat should not be consistent")
	}

	m.MarkSliceClean(h, 1)

	ok, err = m.IsConsistent(h)
	if err != nil {
		t.Fatalf("IsConsistent: %s", err)
	}
	if !ok {
		t.Fatalf("every slice received the write, expected consistent")
	}
}

func TestBufferHandleErrorsWithoutAllocatedBuffer(t *testing.T) {
	m, h := newTestManager(2)
	dat, _ := m.Dat(h)
	dat.Regions.Offsets[0] = 64
	dat.Regions.Offsets[1] = 128
	m.alloc = &memory.Allocator{} // no buffer registered for dat.Kind yet

	if _, _, err := m.BufferHandle(h, 1); err == nil {
		t.Fatalf("expected an error since no buffer has been allocated for this kind")
	}
}
