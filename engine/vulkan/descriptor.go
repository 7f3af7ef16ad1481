package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// VULKAN_MAX_DESCRIPTOR_BINDINGS bounds the bindings in the descriptor
// set layout the catalogue builds for each Graphics: a uniform buffer for the per-draw MVP/style block, plus one sampler per
// bound Tex.
const VULKAN_MAX_DESCRIPTOR_BINDINGS uint32 = 8

// DescriptorSetLayoutCreate builds a single descriptor set layout from a
// uniform-buffer binding at index 0 and a contiguous run of combined
// image-sampler bindings starting at index 1, matching the binding
// layout every builtin Graphics pipeline expects.
func DescriptorSetLayoutCreate(context *VulkanContext, samplerCount uint32) (vk.DescriptorSetLayout, error) {
	if samplerCount+1 > VULKAN_MAX_DESCRIPTOR_BINDINGS {
		return nil, fmt.Errorf("descriptor set would require %d bindings, max is %d", samplerCount+1, VULKAN_MAX_DESCRIPTOR_BINDINGS)
	}

	bindings := make([]vk.DescriptorSetLayoutBinding, 0, samplerCount+1)
	bindings = append(bindings, vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	})
	for i := uint32(0); i < samplerCount; i++ {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         i + 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		})
	}

	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &createInfo, context.Allocator, &layout); res != vk.Success {
		return nil, fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(res, true))
	}
	return layout, nil
}

// DescriptorPoolCreate allocates a pool large enough for maxSets instances
// of the layout produced by DescriptorSetLayoutCreate.
func DescriptorPoolCreate(context *VulkanContext, maxSets uint32, samplerCount uint32) (vk.DescriptorPool, error) {
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: maxSets},
	}
	if samplerCount > 0 {
		sizes = append(sizes, vk.DescriptorPoolSize{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: maxSets * samplerCount,
		})
	}

	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
		MaxSets:       maxSets,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
	}

	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &createInfo, context.Allocator, &pool); res != vk.Success {
		return nil, fmt.Errorf("vkCreateDescriptorPool failed with %s", VulkanResultString(res, true))
	}
	return pool, nil
}
