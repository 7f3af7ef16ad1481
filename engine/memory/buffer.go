// Package memory implements the engine's GPU memory suballocator: a
// fixed set of typed Buffers (one per usage x memory-properties
// combination), each subdivided into BufferRegions via a watermark
// pointer and a best-fit free-list, per spec.md's Memory allocator.
package memory

import (
	"fmt"
	"sort"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/vulkan"
)

// Kind names one usage x memory-properties combination; the Allocator
// keeps exactly one typedBuffer per Kind in use.
type Kind int

const (
	KindVertex Kind = iota
	KindIndex
	KindUniform
	KindStorage
	KindStaging
)

func (k Kind) usage() vk.BufferUsageFlags {
	switch k {
	case KindVertex:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageTransferDstBit | vk.BufferUsageTransferSrcBit)
	case KindIndex:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit | vk.BufferUsageTransferDstBit | vk.BufferUsageTransferSrcBit)
	case KindUniform:
		return vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit | vk.BufferUsageTransferDstBit)
	case KindStorage:
		return vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit | vk.BufferUsageTransferDstBit | vk.BufferUsageTransferSrcBit)
	case KindStaging:
		return vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit)
	default:
		return 0
	}
}

func (k Kind) memoryProperties() uint32 {
	switch k {
	case KindStaging:
		return uint32(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	default:
		return uint32(vk.MemoryPropertyDeviceLocalBit)
	}
}

// freeRegion is one released range available for best-fit reuse.
type freeRegion struct {
	offset uint64
	size   uint64
}

// typedBuffer is one Buffer as described in spec.md §4.1: a watermark
// pointer advanced on every miss, plus a free-list of released ranges
// considered first.
type typedBuffer struct {
	kind      Kind
	buffer    *vulkan.VulkanBuffer
	capacity  uint64
	watermark uint64
	free      []freeRegion
}

func newTypedBuffer(context *vulkan.VulkanContext, kind Kind, initialCapacity uint64) (*typedBuffer, error) {
	buf, err := vulkan.BufferCreate(context, initialCapacity, kind.usage(), kind.memoryProperties(), true)
	if err != nil {
		return nil, err
	}
	return &typedBuffer{
		kind:     kind,
		buffer:   buf,
		capacity: initialCapacity,
	}, nil
}

func alignUp(size, alignment uint64) uint64 {
	if alignment == 0 {
		return size
	}
	if rem := size % alignment; rem != 0 {
		return size + (alignment - rem)
	}
	return size
}

// allocRange finds or creates a free[offset,size) of at least size
// bytes, aligned to alignment, growing (and doubling-on-overflow if
// necessary) the backing buffer.
func (tb *typedBuffer) allocRange(context *vulkan.VulkanContext, queue vk.Queue, pool vk.CommandPool, size, alignment uint64) (uint64, error) {
	size = alignUp(size, alignment)

	if idx, offset := tb.bestFit(size, alignment); idx >= 0 {
		region := tb.free[idx]
		tb.free = append(tb.free[:idx], tb.free[idx+1:]...)

		// Re-insert the unused head/tail slivers so they stay available.
		if head := offset - region.offset; head > 0 {
			tb.free = append(tb.free, freeRegion{offset: region.offset, size: head})
		}
		if tail := (region.offset + region.size) - (offset + size); tail > 0 {
			tb.free = append(tb.free, freeRegion{offset: offset + size, size: tail})
		}
		tb.sortFree()
		return offset, nil
	}

	offset := alignUp(tb.watermark, alignment)
	needed := offset + size
	if needed > tb.capacity {
		if err := tb.grow(context, queue, pool, needed); err != nil {
			return 0, err
		}
	}
	tb.watermark = needed
	return offset, nil
}

// bestFit returns the free-list index and aligned offset of the
// smallest free region that fits size bytes at the given alignment, or
// (-1, 0) if none does.
func (tb *typedBuffer) bestFit(size, alignment uint64) (int, uint64) {
	best := -1
	var bestOffset uint64
	var bestWaste uint64
	for i, r := range tb.free {
		offset := alignUp(r.offset, alignment)
		if offset+size > r.offset+r.size {
			continue
		}
		waste := (r.offset + r.size) - (offset + size)
		if best == -1 || waste < bestWaste {
			best = i
			bestOffset = offset
			bestWaste = waste
		}
	}
	return best, bestOffset
}

func (tb *typedBuffer) sortFree() {
	sort.Slice(tb.free, func(i, j int) bool { return tb.free[i].offset < tb.free[j].offset })
}

// release returns [offset, offset+size) to the free-list. Actual reuse
// is deferred to the next allocRange call; the caller is responsible
// for not calling this while a command buffer referencing the region is
// still in flight (see the runner's wait on every in-flight fence before
// it calls resources.Manager.DestroyDat).
func (tb *typedBuffer) release(offset, size uint64) {
	tb.free = append(tb.free, freeRegion{offset: offset, size: size})
	tb.sortFree()
}

// grow doubles the backing buffer's capacity (at minimum to fit
// minCapacity), copying live contents across via a one-time command
// buffer and fence-waiting on the queue before the old buffer is freed.
func (tb *typedBuffer) grow(context *vulkan.VulkanContext, queue vk.Queue, pool vk.CommandPool, minCapacity uint64) error {
	newCapacity := tb.capacity * 2
	if newCapacity < minCapacity {
		newCapacity = minCapacity
	}
	core.LogDebug("memory: growing buffer kind=%d %d -> %d bytes", tb.kind, tb.capacity, newCapacity)

	if err := tb.buffer.Resize(context, newCapacity, queue, pool); err != nil {
		return fmt.Errorf("memory: grow buffer kind %d: %w", tb.kind, err)
	}
	tb.capacity = newCapacity
	return nil
}
