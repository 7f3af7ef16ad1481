package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/core"
)

// BufferCreate allocates a vk.Buffer of the given size/usage/memory
// property combination and binds device memory to it. This is the
// single allocation unit the memory allocator suballocates BufferRegions
// from: one VulkanBuffer per distinct usage x memory-properties pair.
func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryPropertyFlags uint32, bindOnCreate bool) (*VulkanBuffer, error) {
	out := &VulkanBuffer{
		Usage:               usage,
		MemoryPropertyFlags: memoryPropertyFlags,
	}

	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	if res := vk.CreateBuffer(context.Device.LogicalDevice, &createInfo, context.Allocator, &out.Handle); res != vk.Success {
		err := fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, out.Handle, &requirements)
	requirements.Deref()
	out.MemoryRequirements = requirements

	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryPropertyFlags)
	if memoryIndex == -1 {
		err := fmt.Errorf("unable to find suitable memory type for buffer")
		core.LogError(err.Error())
		return nil, err
	}
	out.MemoryIndex = memoryIndex

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &out.Memory); res != vk.Success {
		err := fmt.Errorf("vkAllocateMemory failed for buffer with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	if bindOnCreate {
		if err := out.Bind(context, 0); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (b *VulkanBuffer) Bind(context *VulkanContext, offset uint64) error {
	if res := vk.BindBufferMemory(context.Device.LogicalDevice, b.Handle, b.Memory, vk.DeviceSize(offset)); res != vk.Success {
		err := fmt.Errorf("vkBindBufferMemory failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	return nil
}

// LockMemory maps [offset, offset+size) of the buffer's device memory
// for host access. Only valid for host-visible buffers.
func (b *VulkanBuffer) LockMemory(context *VulkanContext, offset, size uint64, flags vk.MemoryMapFlags) ([]byte, error) {
	var data unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, vk.DeviceSize(offset), vk.DeviceSize(size), flags, &data); res != vk.Success {
		err := fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	return unsafe.Slice((*byte)(data), int(size)), nil
}

func (b *VulkanBuffer) UnlockMemory(context *VulkanContext) {
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
}

// Resize reallocates the buffer at newSize, copies [0, min(old,new))
// from the old buffer via a one-time command buffer, and destroys the
// old handle. The caller is responsible for ensuring no in-flight
// command buffer still references the old handle before calling this.
func (b *VulkanBuffer) Resize(context *VulkanContext, newSize uint64, queue vk.Queue, pool vk.CommandPool) error {
	newBuffer, err := BufferCreate(context, newSize, b.Usage, b.MemoryPropertyFlags, true)
	if err != nil {
		return err
	}

	oldSize := uint64(b.MemoryRequirements.Size)
	copySize := oldSize
	if newSize < copySize {
		copySize = newSize
	}

	CopyBufferTo(context, pool, nil, queue, b.Handle, 0, newBuffer.Handle, 0, copySize)

	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	b.Destroy(context)
	*b = *newBuffer
	return nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = nil
	}
	if b.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = nil
	}
}

// CopyBufferTo records and submits a one-time command buffer copying
// [srcOffset, srcOffset+size) of src into dst at dstOffset, blocking
// until queue is idle. The fence argument is not used.
func CopyBufferTo(context *VulkanContext, pool vk.CommandPool, fence *vk.Fence, queue vk.Queue, src vk.Buffer, srcOffset uint64, dst vk.Buffer, dstOffset uint64, size uint64) {
	vk.QueueWaitIdle(queue)

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	var cmd vk.CommandBuffer
	vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, &cmd)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	vk.BeginCommandBuffer(cmd, &beginInfo)

	copyRegion := vk.BufferCopy{
		SrcOffset: vk.DeviceSize(srcOffset),
		DstOffset: vk.DeviceSize(dstOffset),
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(cmd, src, dst, 1, []vk.BufferCopy{copyRegion})

	vk.EndCommandBuffer(cmd)

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.Fence(nil))
	vk.QueueWaitIdle(queue)

	vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{cmd})
}
