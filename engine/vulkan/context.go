package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/core"
)

// VulkanBuffer wraps a vk.Buffer together with the device memory backing it.
// This is the allocation unit the memory allocator suballocates from.
type VulkanBuffer struct {
	Handle              vk.Buffer
	Usage               vk.BufferUsageFlags
	IsLocked            bool
	Memory              vk.DeviceMemory
	MemoryRequirements  vk.MemoryRequirements
	MemoryIndex         int32
	MemoryPropertyFlags uint32
}

// VulkanContext holds everything the backend needs across a frame: the
// instance/device/swapchain triad, the per-frame sync objects, and the
// single renderpass every Graphics in the catalogue renders into.
type VulkanContext struct {
	FrameDeltaTime float32

	FramebufferWidth  uint32
	FramebufferHeight uint32

	FramebufferSizeGeneration     uint64
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device    *VulkanDevice
	Swapchain *VulkanSwapchain

	MainRenderpass *VulkanRenderpass

	GraphicsCommandBuffers   []*VulkanCommandBuffer
	ImageAvailableSemaphores []vk.Semaphore
	QueueCompleteSemaphores  []vk.Semaphore

	InFlightFenceCount uint32
	InFlightFences     []*VulkanFence

	// Holds pointers to fences which exist and are owned elsewhere.
	ImagesInFlight []*VulkanFence

	ImageIndex   uint32
	CurrentFrame uint32

	RecreatingSwapchain bool

	MultithreadingEnabled bool
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
