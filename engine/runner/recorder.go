package runner

import (
	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/graphics"
	"github.com/vizcore/dvz/engine/resources"
	"github.com/vizcore/dvz/engine/visual"
	"github.com/vizcore/dvz/engine/vulkan"
)

// commandRecorder implements visual.FillRecorder against one frame's
// command buffer, binding through the resource manager so a Visual never
// has to know about vk.Buffer/vk.DeviceSize directly.
type commandRecorder struct {
	cmd     *vulkan.VulkanCommandBuffer
	res     *resources.Manager
	slice   uint32
	current *graphics.Graphics
}

func (r *commandRecorder) BindPipeline(p *graphics.Graphics) {
	r.current = p
	p.Pipeline().Bind(r.cmd, vk.PipelineBindPointGraphics)
}

func (r *commandRecorder) BindVertexSource(s *visual.Source) {
	buf, offset, err := r.res.BufferHandle(s.Dat, r.slice)
	if err != nil {
		return
	}
	vk.CmdBindVertexBuffers(r.cmd.Handle, 0, 1, []vk.Buffer{buf}, []vk.DeviceSize{vk.DeviceSize(offset)})
}

func (r *commandRecorder) BindIndexSource(s *visual.Source) {
	buf, offset, err := r.res.BufferHandle(s.Dat, r.slice)
	if err != nil {
		return
	}
	vk.CmdBindIndexBuffer(r.cmd.Handle, buf, vk.DeviceSize(offset), vk.IndexTypeUint32)
}

func (r *commandRecorder) Draw(vertexCount, instanceCount uint32) {
	if vertexCount == 0 {
		return
	}
	vk.CmdDraw(r.cmd.Handle, vertexCount, instanceCount, 0, 0)
}

func (r *commandRecorder) DrawIndexed(indexCount, instanceCount uint32) {
	if indexCount == 0 {
		return
	}
	vk.CmdDrawIndexed(r.cmd.Handle, indexCount, instanceCount, 0, 0, 0)
}
