package memory

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/vulkan"
)

const defaultInitialCapacity = 1 << 20 // 1 MiB per typed buffer to start

// BufferRegions is a handle into one of the Allocator's typed Buffers:
// a set of count equally-sized, individually-aligned regions. count > 1
// only occurs for dup (per-swapchain-image) allocations.
type BufferRegions struct {
	Kind      Kind
	Count     uint32
	Size      uint64 // size per region
	Alignment uint64
	Offsets   []uint64
}

// Allocator owns one typedBuffer per Kind encountered and serializes
// free-list mutation through the shared VulkanLockPool MemoryManagement
// group, matching the teacher's lock-group-per-concern pattern since
// allocation is driven from the single main thread per spec.md §5.
type Allocator struct {
	context *vulkan.VulkanContext
	locks   *vulkan.VulkanLockPool

	buffers map[Kind]*typedBuffer
}

func NewAllocator(context *vulkan.VulkanContext, locks *vulkan.VulkanLockPool) *Allocator {
	return &Allocator{
		context: context,
		locks:   locks,
		buffers: make(map[Kind]*typedBuffer),
	}
}

func (a *Allocator) typedBufferFor(kind Kind) (*typedBuffer, error) {
	tb, ok := a.buffers[kind]
	if ok {
		return tb, nil
	}
	tb, err := newTypedBuffer(a.context, kind, defaultInitialCapacity)
	if err != nil {
		return nil, err
	}
	a.buffers[kind] = tb
	return tb, nil
}

func (a *Allocator) minAlignment(kind Kind) uint64 {
	limits := a.context.Device.Properties.Limits
	switch kind {
	case KindUniform:
		return uint64(limits.MinUniformBufferOffsetAlignment)
	case KindStorage:
		return uint64(limits.MinStorageBufferOffsetAlignment)
	default:
		return 4
	}
}

// Alloc reserves size bytes of kind, rounded to alignment (0 means use
// the device's reported minimum offset alignment for kind).
func (a *Allocator) Alloc(kind Kind, size, alignment uint64) (*BufferRegions, error) {
	return a.AllocDup(kind, size, alignment, 1)
}

// AllocDup reserves count contiguous-in-intent but independently
// aligned regions of size bytes each, used for per-swapchain-image
// duplicated uniform buffers.
func (a *Allocator) AllocDup(kind Kind, size, alignment uint64, count uint32) (*BufferRegions, error) {
	if alignment == 0 {
		alignment = a.minAlignment(kind)
	}

	var err error
	var offsets []uint64
	err = a.locks.SafeCall(vulkan.MemoryManagement, func() error {
		tb, terr := a.typedBufferFor(kind)
		if terr != nil {
			return terr
		}
		for i := uint32(0); i < count; i++ {
			off, aerr := tb.allocRange(a.context, a.queueFor(kind), a.poolFor(kind), size, alignment)
			if aerr != nil {
				return aerr
			}
			offsets = append(offsets, off)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BufferRegions{
		Kind:      kind,
		Count:     count,
		Size:      size,
		Alignment: alignment,
		Offsets:   offsets,
	}, nil
}

// Resize grows br's region(s) to newSize in place when the tail is
// free, or reallocates, copies, and releases the old region otherwise.
// br's identity (pointer) is unchanged; only its Size/Offsets fields may
// change.
func (a *Allocator) Resize(br *BufferRegions, newSize uint64) error {
	return a.locks.SafeCall(vulkan.MemoryManagement, func() error {
		tb, err := a.typedBufferFor(br.Kind)
		if err != nil {
			return err
		}

		newOffsets := make([]uint64, len(br.Offsets))
		for i, off := range br.Offsets {
			// Try to extend in place only when this offset is at the
			// current watermark and there's room; otherwise reallocate.
			if off+br.Size == tb.watermark {
				needed := off + newSize
				if needed > tb.capacity {
					if gerr := tb.grow(a.context, a.queueFor(br.Kind), a.poolFor(br.Kind), needed); gerr != nil {
						return gerr
					}
				}
				tb.watermark = needed
				newOffsets[i] = off
				continue
			}

			newOff, aerr := tb.allocRange(a.context, a.queueFor(br.Kind), a.poolFor(br.Kind), newSize, br.Alignment)
			if aerr != nil {
				return aerr
			}
			vulkan.CopyBufferTo(a.context, a.poolFor(br.Kind), nil, a.queueFor(br.Kind),
				tb.buffer.Handle, off, tb.buffer.Handle, newOff, min64(br.Size, newSize))
			tb.release(off, br.Size)
			newOffsets[i] = newOff
		}

		br.Offsets = newOffsets
		br.Size = newSize
		return nil
	})
}

// Free appends br's region(s) to their buffer's free-list. Actual
// reuse is deferred to the next Alloc on that Kind; callers must not
// call Free while a command buffer referencing br is still in flight.
func (a *Allocator) Free(br *BufferRegions) error {
	return a.locks.SafeCall(vulkan.MemoryManagement, func() error {
		tb, err := a.typedBufferFor(br.Kind)
		if err != nil {
			return err
		}
		for _, off := range br.Offsets {
			tb.release(off, br.Size)
		}
		return nil
	})
}

// Handle returns the vk.Buffer backing br's Kind, for binding into
// command buffers and descriptor sets.
func (a *Allocator) Handle(kind Kind) (vk.Buffer, error) {
	tb, ok := a.buffers[kind]
	if !ok {
		return nil, fmt.Errorf("memory: no buffer allocated yet for kind %d", kind)
	}
	return tb.buffer.Handle, nil
}

// VulkanBuffer returns the full VulkanBuffer backing kind, for callers
// (the transfer engine's staging ring) that need to map it for host
// access rather than only reference it in a copy command.
func (a *Allocator) VulkanBuffer(kind Kind) (*vulkan.VulkanBuffer, error) {
	tb, ok := a.buffers[kind]
	if !ok {
		return nil, fmt.Errorf("memory: no buffer allocated yet for kind %d", kind)
	}
	return tb.buffer, nil
}

func (a *Allocator) queueFor(kind Kind) vk.Queue {
	return a.context.Device.TransferQueue
}

func (a *Allocator) poolFor(kind Kind) vk.CommandPool {
	return a.context.Device.GraphicsCommandPool
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
