// Package graphics holds the builtin pipeline catalogue: a table keyed by
// graphics type mapping to a complete Vulkan pipeline description (vertex
// layout, shader paths, topology, blend/depth/cull state, descriptor
// slots). Visuals request a Graphics by Type rather than assembling pipeline
// state themselves.
package graphics

import (
	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/vulkan"
)

// Type enumerates the builtin graphics kinds a Visual can request.
type Type int

const (
	Point Type = iota
	Line
	LineStrip
	TriangleList
	TriangleStrip
	TriangleFan
	Marker
	Segment
	Arrow
	Path
	Text
	Image
	ImageCmap
	VolumeSlice
	Volume
	Mesh
	FakeSphere

	typeCount
)

func (t Type) String() string {
	names := [...]string{
		"Point", "Line", "LineStrip", "TriangleList", "TriangleStrip", "TriangleFan",
		"Marker", "Segment", "Arrow", "Path", "Text", "Image", "ImageCmap",
		"VolumeSlice", "Volume", "Mesh", "FakeSphere",
	}
	if int(t) < 0 || int(t) >= len(names) {
		return "Unknown"
	}
	return names[t]
}

// Description is the complete, immutable recipe for one builtin pipeline.
// The catalogue resolves a Description into a live Graphics at Get time.
type Description struct {
	Type Type

	Stride     uint32
	Attributes []vk.VertexInputAttributeDescription

	VertexShaderPath   string
	FragmentShaderPath string

	Topology    vk.PrimitiveTopology
	Wireframe   bool
	BlendEnable bool
	DepthTest   bool
	CullMode    vulkan.FaceCullMode

	// SamplerCount is the number of combined-image-sampler slots this
	// pipeline's descriptor set layout declares, beyond the uniform
	// buffer binding every Graphics gets at binding 0.
	SamplerCount uint32
}

// Graphics is a built pipeline ready to bind, along with the resources that
// back it so it can be rebuilt on shader hot-reload.
type Graphics struct {
	Type   Type
	Desc   Description
	Layout vk.DescriptorSetLayout
	Pool   vk.DescriptorPool

	vertexStage   *vulkan.VulkanShaderStage
	fragmentStage *vulkan.VulkanShaderStage
	pipeline      *vulkan.VulkanPipeline
}

// Pipeline returns the live Vulkan pipeline, for binding into a command
// buffer.
func (g *Graphics) Pipeline() *vulkan.VulkanPipeline {
	return g.pipeline
}

func vec2Attr(location, offset uint32) vk.VertexInputAttributeDescription {
	return vk.VertexInputAttributeDescription{Location: location, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: offset}
}

func vec3Attr(location, offset uint32) vk.VertexInputAttributeDescription {
	return vk.VertexInputAttributeDescription{Location: location, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: offset}
}

func vec4Attr(location, offset uint32) vk.VertexInputAttributeDescription {
	return vk.VertexInputAttributeDescription{Location: location, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: offset}
}

func floatAttr(location, offset uint32) vk.VertexInputAttributeDescription {
	return vk.VertexInputAttributeDescription{Location: location, Binding: 0, Format: vk.FormatR32Sfloat, Offset: offset}
}
