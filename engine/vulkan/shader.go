package vulkan

import (
	"fmt"
	"os"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/core"
)

// Hard limits for shader resources, kept small since graphics pipelines
// come from a fixed builtin catalogue rather than user-authored materials.
const (
	VULKAN_SHADER_MAX_STAGES     uint32 = 2
	VULKAN_SHADER_MAX_ATTRIBUTES uint32 = 16
)

// VulkanShaderStage holds a compiled shader module and its pipeline stage info.
type VulkanShaderStage struct {
	CreateInfo            vk.ShaderModuleCreateInfo
	Handle                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// CreateShaderModule reads a compiled SPIR-V binary from disk and wraps it
// in a vk.ShaderModule plus the pipeline-stage-create-info needed at
// pipeline-build time.
func CreateShaderModule(context *VulkanContext, spirvPath string, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	code, err := os.ReadFile(spirvPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read shader module %s: %w", spirvPath, err)
	}

	out := &VulkanShaderStage{}
	out.CreateInfo = vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    bytesToUint32Slice(code),
	}

	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &out.CreateInfo, context.Allocator, &out.Handle); res != vk.Success {
		err := fmt.Errorf("vkCreateShaderModule failed for %s with %s", spirvPath, VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	out.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: out.Handle,
		PName:  "main\x00",
	}

	return out, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = nil
	}
}

func bytesToUint32Slice(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		j := i * 4
		out[i] = uint32(b[j]) | uint32(b[j+1])<<8 | uint32(b[j+2])<<16 | uint32(b[j+3])<<24
	}
	return out
}
