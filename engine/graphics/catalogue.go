package graphics

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/vulkan"
)

const shaderDir = "assets/shaders"

// builtins is the fixed table of pipeline descriptions keyed by Type. Every
// entry shares the single global descriptor set layout convention from
// vulkan.DescriptorSetLayoutCreate: a uniform buffer at binding 0 carrying
// the per-draw MVP/style block, followed by SamplerCount combined-image
// samplers.
var builtins = map[Type]Description{
	Point: {
		Type:        Point,
		Stride:      7 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec4Attr(1, 3*4)},
		Topology:    vk.PrimitiveTopologyPointList,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeNone,
	},
	Line: {
		Type:        Line,
		Stride:      7 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec4Attr(1, 3*4)},
		Topology:    vk.PrimitiveTopologyLineList,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeNone,
	},
	LineStrip: {
		Type:        LineStrip,
		Stride:      7 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec4Attr(1, 3*4)},
		Topology:    vk.PrimitiveTopologyLineStrip,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeNone,
	},
	TriangleList: {
		Type:        TriangleList,
		Stride:      10 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec3Attr(1, 3*4), vec4Attr(2, 6*4)},
		Topology:    vk.PrimitiveTopologyTriangleList,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeBack,
	},
	TriangleStrip: {
		Type:        TriangleStrip,
		Stride:      10 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec3Attr(1, 3*4), vec4Attr(2, 6*4)},
		Topology:    vk.PrimitiveTopologyTriangleStrip,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeBack,
	},
	TriangleFan: {
		Type:        TriangleFan,
		Stride:      10 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec3Attr(1, 3*4), vec4Attr(2, 6*4)},
		Topology:    vk.PrimitiveTopologyTriangleFan,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeBack,
	},
	Marker: {
		Type:         Marker,
		Stride:       8 * 4,
		Attributes:   []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec4Attr(1, 3*4), floatAttr(2, 7*4)},
		Topology:     vk.PrimitiveTopologyPointList,
		BlendEnable:  true,
		DepthTest:    true,
		CullMode:     vulkan.FaceCullModeNone,
		SamplerCount: 1, // marker shape atlas
	},
	Segment: {
		Type:        Segment,
		Stride:      11 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec3Attr(1, 3*4), vec4Attr(2, 6*4), floatAttr(3, 10*4)},
		Topology:    vk.PrimitiveTopologyLineList,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeNone,
	},
	Arrow: {
		Type:        Arrow,
		Stride:      11 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec3Attr(1, 3*4), vec4Attr(2, 6*4), floatAttr(3, 10*4)},
		Topology:    vk.PrimitiveTopologyTriangleList,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeBack,
	},
	Path: {
		Type:        Path,
		Stride:      10 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec3Attr(1, 3*4), vec4Attr(2, 6*4)},
		Topology:    vk.PrimitiveTopologyTriangleStrip,
		BlendEnable: true,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeNone,
	},
	Text: {
		Type:         Text,
		Stride:       9 * 4,
		Attributes:   []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec2Attr(1, 3*4), vec4Attr(2, 5*4)},
		Topology:     vk.PrimitiveTopologyTriangleList,
		BlendEnable:  true,
		DepthTest:    false,
		CullMode:     vulkan.FaceCullModeNone,
		SamplerCount: 1, // font atlas
	},
	Image: {
		Type:         Image,
		Stride:       5 * 4,
		Attributes:   []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec2Attr(1, 3*4)},
		Topology:     vk.PrimitiveTopologyTriangleStrip,
		BlendEnable:  true,
		DepthTest:    true,
		CullMode:     vulkan.FaceCullModeNone,
		SamplerCount: 1,
	},
	ImageCmap: {
		Type:         ImageCmap,
		Stride:       5 * 4,
		Attributes:   []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec2Attr(1, 3*4)},
		Topology:     vk.PrimitiveTopologyTriangleStrip,
		BlendEnable:  true,
		DepthTest:    true,
		CullMode:     vulkan.FaceCullModeNone,
		SamplerCount: 2, // scalar field + colormap lookup texture
	},
	VolumeSlice: {
		Type:         VolumeSlice,
		Stride:       5 * 4,
		Attributes:   []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec2Attr(1, 3*4)},
		Topology:     vk.PrimitiveTopologyTriangleStrip,
		BlendEnable:  true,
		DepthTest:    true,
		CullMode:     vulkan.FaceCullModeNone,
		SamplerCount: 1,
	},
	Volume: {
		Type:         Volume,
		Stride:       5 * 4,
		Attributes:   []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec2Attr(1, 3*4)},
		Topology:     vk.PrimitiveTopologyTriangleList,
		BlendEnable:  true,
		DepthTest:    true,
		CullMode:     vulkan.FaceCullModeFront,
		SamplerCount: 1,
	},
	Mesh: {
		Type:        Mesh,
		Stride:      10 * 4,
		Attributes:  []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec3Attr(1, 3*4), vec4Attr(2, 6*4)},
		Topology:    vk.PrimitiveTopologyTriangleList,
		BlendEnable: false,
		DepthTest:   true,
		CullMode:    vulkan.FaceCullModeBack,
	},
	FakeSphere: {
		Type:         FakeSphere,
		Stride:       8 * 4,
		Attributes:   []vk.VertexInputAttributeDescription{vec3Attr(0, 0), vec4Attr(1, 3*4), floatAttr(2, 7*4)},
		Topology:     vk.PrimitiveTopologyPointList,
		BlendEnable:  false,
		DepthTest:    true,
		CullMode:     vulkan.FaceCullModeNone,
		SamplerCount: 1, // env map for shading the impostor
	},
}

func init() {
	for t, d := range builtins {
		name := strings.ToLower(t.String())
		d.VertexShaderPath = fmt.Sprintf("%s/%s.vert.spv", shaderDir, name)
		d.FragmentShaderPath = fmt.Sprintf("%s/%s.frag.spv", shaderDir, name)
		builtins[t] = d
	}
}

// Catalogue builds and owns every Graphics the runner has requested, and
// rebuilds a Graphics's shader stages and pipeline when assets reports one
// of its SPIR-V files changed on disk.
type Catalogue struct {
	context    *vulkan.VulkanContext
	renderpass *vulkan.VulkanRenderpass
	viewport   vk.Viewport
	scissor    vk.Rect2D
	maxSets    uint32

	built map[Type]*Graphics
}

func NewCatalogue(context *vulkan.VulkanContext, renderpass *vulkan.VulkanRenderpass, viewport vk.Viewport, scissor vk.Rect2D, maxSets uint32) *Catalogue {
	return &Catalogue{
		context:    context,
		renderpass: renderpass,
		viewport:   viewport,
		scissor:    scissor,
		maxSets:    maxSets,
		built:      make(map[Type]*Graphics),
	}
}

// Get returns the built Graphics for t, constructing it on first use.
func (c *Catalogue) Get(t Type) (*Graphics, error) {
	if g, ok := c.built[t]; ok {
		return g, nil
	}
	desc, ok := builtins[t]
	if !ok {
		return nil, fmt.Errorf("graphics: no builtin description for type %s", t)
	}
	g, err := c.build(desc)
	if err != nil {
		return nil, err
	}
	c.built[t] = g
	return g, nil
}

func (c *Catalogue) build(desc Description) (*Graphics, error) {
	layout, err := vulkan.DescriptorSetLayoutCreate(c.context, desc.SamplerCount)
	if err != nil {
		return nil, fmt.Errorf("graphics %s: %w", desc.Type, err)
	}
	pool, err := vulkan.DescriptorPoolCreate(c.context, c.maxSets, desc.SamplerCount)
	if err != nil {
		return nil, fmt.Errorf("graphics %s: %w", desc.Type, err)
	}

	vertexStage, err := vulkan.CreateShaderModule(c.context, desc.VertexShaderPath, vk.ShaderStageVertexBit)
	if err != nil {
		return nil, fmt.Errorf("graphics %s: %w", desc.Type, err)
	}
	fragmentStage, err := vulkan.CreateShaderModule(c.context, desc.FragmentShaderPath, vk.ShaderStageFragmentBit)
	if err != nil {
		vertexStage.Destroy(c.context)
		return nil, fmt.Errorf("graphics %s: %w", desc.Type, err)
	}

	pipeline, err := vulkan.NewGraphicsPipeline(
		c.context,
		c.renderpass,
		desc.Stride,
		uint32(len(desc.Attributes)),
		desc.Attributes,
		1,
		[]vk.DescriptorSetLayout{layout},
		2,
		[]vk.PipelineShaderStageCreateInfo{vertexStage.ShaderStageCreateInfo, fragmentStage.ShaderStageCreateInfo},
		c.viewport,
		c.scissor,
		desc.Topology,
		desc.BlendEnable,
		desc.CullMode,
		desc.Wireframe,
		desc.DepthTest,
		0,
		nil,
	)
	if err != nil {
		vertexStage.Destroy(c.context)
		fragmentStage.Destroy(c.context)
		return nil, fmt.Errorf("graphics %s: %w", desc.Type, err)
	}

	return &Graphics{
		Type:          desc.Type,
		Desc:          desc,
		Layout:        layout,
		Pool:          pool,
		vertexStage:   vertexStage,
		fragmentStage: fragmentStage,
		pipeline:      pipeline,
	}, nil
}

// WatchReload consumes assets' change-notification channel and rebuilds
// whichever builtin Graphics owns the changed SPIR-V path. Runs until ch is
// closed; callers typically start this in its own goroutine alongside the
// asset manager. onRebuilt, if non-nil, is called after a successful
// rebuild so a caller holding a separate render loop (the runner) can
// schedule whatever forced-refill bookkeeping it needs; WatchReload itself
// has no notion of swapchain images or command buffers.
func (c *Catalogue) WatchReload(ch <-chan string, onRebuilt func(Type)) {
	for path := range ch {
		t, ok := shaderOwner(path)
		if !ok {
			continue
		}
		if _, built := c.built[t]; !built {
			continue
		}
		if err := c.rebuild(t); err != nil {
			core.LogError(fmt.Sprintf("graphics: hot-reload of %s failed: %s", t, err))
			continue
		}
		core.LogInfo(fmt.Sprintf("graphics: reloaded %s from %s", t, path))
		if onRebuilt != nil {
			onRebuilt(t)
		}
	}
}

func shaderOwner(path string) (Type, bool) {
	for t := range builtins {
		d := builtins[t]
		if path == d.VertexShaderPath || path == d.FragmentShaderPath {
			return t, true
		}
	}
	return 0, false
}

func (c *Catalogue) rebuild(t Type) error {
	old := c.built[t]
	g, err := c.build(old.Desc)
	if err != nil {
		return err
	}
	old.destroy(c.context)
	c.built[t] = g
	return nil
}

func (g *Graphics) destroy(context *vulkan.VulkanContext) {
	if g.pipeline != nil {
		g.pipeline.Destroy(context)
	}
	if g.vertexStage != nil {
		g.vertexStage.Destroy(context)
	}
	if g.fragmentStage != nil {
		g.fragmentStage.Destroy(context)
	}
	if g.Layout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, g.Layout, context.Allocator)
	}
	if g.Pool != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, g.Pool, context.Allocator)
	}
}

// Destroy tears down every Graphics the catalogue has built.
func (c *Catalogue) Destroy() {
	for _, g := range c.built {
		g.destroy(c.context)
	}
	c.built = make(map[Type]*Graphics)
}
