package transfer

import (
	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/memory"
	"github.com/vizcore/dvz/engine/vulkan"
)

// stagingSlice is one reserved range of the staging ring, handed to a
// single job for the duration of its transfer.
type stagingSlice struct {
	buf    *vulkan.VulkanBuffer
	handle vk.Buffer
	offset uint64
	size   uint64
}

// stagingRing is a large host-visible buffer that upload/download jobs
// borrow ranges from, suballocated through the same memory.Allocator as
// every other buffer kind. A slice is returned to the allocator's
// staging free-list on release; because every transfer in this engine
// is synchronous under the hood (vulkan.CopyBufferTo waits for its
// queue to go idle before returning), it's always safe to release immediately
// after the copy using the slice has completed.
type stagingRing struct {
	alloc *memory.Allocator
	size  uint64
}

func newStagingRing(alloc *memory.Allocator, size uint64) *stagingRing {
	return &stagingRing{alloc: alloc, size: size}
}

func (s *stagingRing) acquire(context *vulkan.VulkanContext, size uint64) (*stagingSlice, error) {
	regions, err := s.alloc.Alloc(memory.KindStaging, size, 0)
	if err != nil {
		return nil, ErrResourceExhausted
	}

	buf, err := s.alloc.VulkanBuffer(memory.KindStaging)
	if err != nil {
		return nil, err
	}

	return &stagingSlice{
		buf:    buf,
		handle: buf.Handle,
		offset: regions.Offsets[0],
		size:   regions.Size,
	}, nil
}

func (s *stagingRing) release(slice *stagingSlice) {
	s.alloc.Free(&memory.BufferRegions{
		Kind:    memory.KindStaging,
		Count:   1,
		Size:    slice.size,
		Offsets: []uint64{slice.offset},
	})
}

func (s *stagingRing) destroy(context *vulkan.VulkanContext) {}

// write maps the slice's backing memory and copies data into it.
func (slice *stagingSlice) write(context *vulkan.VulkanContext, data []byte) error {
	mapped, err := slice.buf.LockMemory(context, slice.offset, uint64(len(data)), 0)
	if err != nil {
		return err
	}
	defer slice.buf.UnlockMemory(context)
	copy(mapped, data)
	return nil
}

// read maps the slice's backing memory and copies size bytes out of it.
func (slice *stagingSlice) read(context *vulkan.VulkanContext, size uint64) ([]byte, error) {
	mapped, err := slice.buf.LockMemory(context, slice.offset, size, 0)
	if err != nil {
		return nil, err
	}
	defer slice.buf.UnlockMemory(context)
	out := make([]byte, size)
	copy(out, mapped)
	return out, nil
}
