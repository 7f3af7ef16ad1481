package runner

import (
	"encoding/binary"
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/engine/containers"
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/graphics"
	dvzmath "github.com/vizcore/dvz/engine/math"
	"github.com/vizcore/dvz/engine/memory"
	"github.com/vizcore/dvz/engine/resources"
	"github.com/vizcore/dvz/engine/scene"
	"github.com/vizcore/dvz/engine/transfer"
	"github.com/vizcore/dvz/engine/visual"
	"github.com/vizcore/dvz/engine/vulkan"
)

// mvpUniformSize is the byte size of one Panel's MVP uniform: a single
// column-major 4x4 float32 matrix, matching dvzmath.Mat4's Data layout.
const mvpUniformSize = 16 * 4

// Runner drives the four-priority-queue main loop described in spec.md
// §4.7: a single-threaded cooperative loop over Frame, Main, Refill, and
// Present events, with the transfer engine's worker pool handling
// upload/download/copy off the main thread per spec.md §4.3.
type Runner struct {
	renderer  *vulkan.VulkanRenderer
	context   *vulkan.VulkanContext
	catalogue *graphics.Catalogue
	resources *resources.Manager
	transfer  *transfer.Engine
	queue     *Queue
	scenes    []*scene.Scene
	aspect    float32
	toRefill  []uint32 // per swapchain image, frames remaining needing a forced refill
	stopped   bool
	stopReq   bool

	// graphicsRebuilt is set by NotifyGraphicsRebuilt from a hot-reload
	// goroutine and drained on the Tick goroutine at the top of the next
	// handleFrame, the same unsynchronized cross-goroutine handoff
	// RequestStop/stopReq already uses for the SIGTERM listener in main.go.
	graphicsRebuilt bool

	// panelUniforms maps a Panel's ID to the dup Dat holding its MVP
	// uniform, created lazily when the Main queue drains that panel's
	// UpdatePanelAdded descriptor.
	panelUniforms map[core.ID]containers.Handle
}

// New constructs a Runner bound to one Vulkan renderer/context and its
// resource layer. The caller registers scenes with AddScene before calling
// Tick.
func New(renderer *vulkan.VulkanRenderer, context *vulkan.VulkanContext, catalogue *graphics.Catalogue, res *resources.Manager, xfer *transfer.Engine) *Runner {
	imageCount := len(context.GraphicsCommandBuffers)
	return &Runner{
		renderer:      renderer,
		context:       context,
		catalogue:     catalogue,
		resources:     res,
		transfer:      xfer,
		queue:         NewQueue(),
		toRefill:      make([]uint32, imageCount),
		aspect:        float32(context.FramebufferWidth) / float32(maxU32(context.FramebufferHeight, 1)),
		panelUniforms: make(map[core.ID]containers.Handle),
	}
}

// NotifyGraphicsRebuilt flags that a hot-reloaded Graphics pipeline was
// rebuilt, so the next handleFrame queues a Main event forcing every
// swapchain image's command buffer to re-record against it. Called from
// the graphics catalogue's WatchReload callback, which runs on its own
// goroutine.
func (r *Runner) NotifyGraphicsRebuilt() {
	r.graphicsRebuilt = true
}

// RequestBake queues an out-of-band bake for v on the Main queue,
// bypassing the once-per-Frame dirty scan. Must be called from the same
// goroutine driving Tick, matching every other Queue producer.
func (r *Runner) RequestBake(v *visual.Visual) {
	r.queue.PushMain(MainEvent{VisualToBake: v})
}

func maxU32(v uint32, min uint32) uint32 {
	if v < min {
		return min
	}
	return v
}

// AddScene registers scene for this runner's Refill pass to draw every
// frame.
func (r *Runner) AddScene(s *scene.Scene) {
	r.scenes = append(r.scenes, s)
}

// RequestStop asks the loop to exit after draining the current frame's
// remaining Main events, per spec.md §4.7's cancellation semantics.
func (r *Runner) RequestStop() {
	r.stopReq = true
}

// Tick runs exactly one Frame→Main→Refill→Present cycle. The caller
// (platform event loop, e.g. engine/platform) invokes this once per
// display refresh.
func (r *Runner) Tick(deltaTime float64, in scene.PointerState) error {
	r.queue.PushFrame(FrameEvent{DeltaTime: deltaTime})

	for {
		item, ok := r.queue.Pop()
		if !ok {
			break
		}
		switch e := item.(type) {
		case FrameEvent:
			r.handleFrame(e, in)
		case MainEvent:
			r.handleMain(e)
		case RefillEvent:
			if err := r.handleRefill(e); err != nil {
				return err
			}
		case PresentEvent:
			if err := r.handlePresent(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleFrame polls controllers and bakes dirty visuals, enqueueing Main
// events for anything that changed and a Refill event for the acquired
// swapchain image.
func (r *Runner) handleFrame(e FrameEvent, in scene.PointerState) {
	if r.graphicsRebuilt {
		r.graphicsRebuilt = false
		r.queue.PushMain(MainEvent{GraphicsRebuilt: true})
	}

	for _, s := range r.scenes {
		for _, p := range s.Panels {
			if p.Controller.Update(e.DeltaTime, in) {
				s.NotifyControllerChanged(p)
			}

			for _, v := range p.Visuals() {
				if v.Dirty {
					r.bakeAndUpload(v)
				}
			}

			old := p.DataCoords
			if p.AutoFit() {
				s.NotifyDataCoordsChanged(p, old, p.DataCoords)
			}
		}

		for _, u := range s.DrainUpdates() {
			r.queue.PushMain(MainEvent{ScenePanelUpdate: &u})
		}
	}

	if r.stopReq {
		r.stopped = true
		return
	}

	imageIndex, err := r.acquireImage()
	if err != nil {
		core.LogWarn(fmt.Sprintf("runner: acquire image: %v", err))
		return
	}
	r.catchUpDupUniforms(imageIndex)
	r.queue.PushRefill(RefillEvent{ImageIndex: imageIndex})
}

// bakeAndUpload runs one Visual's bake step and enqueues a transfer
// upload for every Source byte range the bake dirtied, marking every
// swapchain image for a forced refill if the bake changed a vertex/index
// count. Shared by handleFrame's per-frame dirty scan and handleMain's
// out-of-band RequestBake path.
func (r *Runner) bakeAndUpload(v *visual.Visual) {
	uploads, err := v.Bake()
	if err != nil {
		core.LogError(fmt.Sprintf("runner: bake visual %s: %v", v.ID, err))
		return
	}
	for _, u := range uploads {
		r.transfer.Enqueue(&transfer.Job{
			Kind:    transfer.KindUpload,
			DestDat: u.Source.Dat,
			Offset:  u.From,
			Size:    u.To - u.From,
			Data:    u.Source.Elements[u.From:u.To],
		})
	}
	if v.NeedsRefill {
		r.markAllRefill()
	}
}

// catchUpDupUniforms propagates any panel MVP uniform's pending upfill
// into the swapchain image about to be rendered, per spec.md §4.3: a dup
// write lands in slice 0 immediately and trails into the remaining
// slices one per frame as each becomes current.
func (r *Runner) catchUpDupUniforms(imageIndex uint32) {
	for _, h := range r.panelUniforms {
		r.transfer.CatchUpDup(h, imageIndex)
	}
}

// handleMain dispatches one Main event: a Scene change descriptor (one of
// the six scene.UpdateKind variants), an out-of-band bake request, or a
// hot-reloaded Graphics pipeline notification.
func (r *Runner) handleMain(e MainEvent) {
	if e.ScenePanelUpdate != nil {
		r.handleSceneUpdate(*e.ScenePanelUpdate)
	}
	if e.VisualToBake != nil {
		r.bakeAndUpload(e.VisualToBake)
	}
	if e.GraphicsRebuilt {
		r.markAllRefill()
	}
}

// handleSceneUpdate applies the Main-queue side effect for one of the six
// scene.UpdateKind variants: a Panel's MVP dup-uniform is created on
// UpdatePanelAdded and destroyed on UpdatePanelRemoved, a visual add/
// remove forces a refill since the draw list changed, and a data-coords
// or controller change recomputes and re-uploads the panel's MVP uniform
// (spec.md §4.6's "re-transform and re-bake" step, realized here as a
// fresh projection/view matrix rather than a CPU-side Pos renormalization
// — see DESIGN.md).
func (r *Runner) handleSceneUpdate(u scene.Update) {
	switch u.Kind {
	case scene.UpdatePanelAdded:
		p, ok := u.Target.(*scene.Panel)
		if !ok {
			return
		}
		h, err := r.resources.CreateDat(memory.KindUniform, mvpUniformSize, 0, resources.DatFlagDup|resources.DatFlagFrequentUpload)
		if err != nil {
			core.LogError(fmt.Sprintf("runner: create panel MVP uniform: %v", err))
			return
		}
		r.panelUniforms[p.ID] = h
		r.uploadPanelMVP(p, h)

	case scene.UpdatePanelRemoved:
		p, ok := u.Target.(*scene.Panel)
		if !ok {
			return
		}
		if h, ok := r.panelUniforms[p.ID]; ok {
			// Wait on every in-flight fence so no submitted command buffer
			// still reads the uniform's regions when they are freed.
			for _, f := range r.context.InFlightFences {
				f.FenceWait(r.context, math.MaxUint32)
			}
			if err := r.resources.DestroyDat(h); err != nil {
				core.LogWarn(fmt.Sprintf("runner: destroy panel MVP uniform: %v", err))
			}
			delete(r.panelUniforms, p.ID)
		}

	case scene.UpdateVisualAdded, scene.UpdateVisualRemoved:
		r.markAllRefill()

	case scene.UpdateDataCoordsChanged, scene.UpdateControllerChanged:
		p, ok := u.Target.(*scene.Panel)
		if !ok {
			return
		}
		if h, ok := r.panelUniforms[p.ID]; ok {
			r.uploadPanelMVP(p, h)
		}
	}
}

// uploadPanelMVP computes p's current MVP matrix and enqueues it as a dup
// upload: the new data lands in the uniform's slice 0 now, and
// catchUpDupUniforms trails it into the panel's other swapchain-image
// slices over the following frames.
func (r *Runner) uploadPanelMVP(p *scene.Panel, h containers.Handle) {
	r.transfer.Enqueue(&transfer.Job{
		Kind:    transfer.KindUpload,
		DestDat: h,
		Size:    mvpUniformSize,
		Data:    mat4Bytes(p.MVP(r.aspect)),
		Dup:     true,
	})
}

func mat4Bytes(m dvzmath.Mat4) []byte {
	out := make([]byte, mvpUniformSize)
	for i, f := range m.Data {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], math.Float32bits(f))
	}
	return out
}

// markAllRefill sets every swapchain image's to-refill counter so a
// structural change (e.g. a vertex count delta) becomes visible within N
// frames regardless of which image is currently in flight, per spec.md
// §4.7.
func (r *Runner) markAllRefill() {
	for i := range r.toRefill {
		r.toRefill[i] = uint32(len(r.toRefill))
	}
}

// acquireImage recreates the swapchain if a resize landed since the last
// frame (the only caller of VulkanRenderer.RecreateSwapchainIfNeeded, so
// resize support is actually reachable end-to-end rather than living in
// dead BeginFrame/EndFrame plumbing), then waits on the in-flight fence
// and acquires the next image.
func (r *Runner) acquireImage() (uint32, error) {
	recreated, err := r.renderer.RecreateSwapchainIfNeeded()
	if err != nil {
		return 0, fmt.Errorf("recreate swapchain: %w", err)
	}
	if recreated {
		r.aspect = float32(r.context.FramebufferWidth) / float32(maxU32(r.context.FramebufferHeight, 1))
		if n := len(r.context.GraphicsCommandBuffers); n != len(r.toRefill) {
			r.toRefill = make([]uint32, n)
		}
		r.markAllRefill()
	}

	current := r.context.CurrentFrame
	if !r.context.InFlightFences[current].FenceWait(r.context, math.MaxUint32) {
		return 0, fmt.Errorf("in-flight fence wait failure")
	}
	imageIndex, ok := r.context.Swapchain.SwapchainAcquireNextImageIndex(
		r.context, math.MaxUint64, r.context.ImageAvailableSemaphores[current], vk.NullFence)
	if !ok {
		return 0, fmt.Errorf("failed to acquire next swapchain image")
	}
	r.context.ImageIndex = imageIndex
	return imageIndex, nil
}

// handleRefill records (or re-records) the command buffer for one
// swapchain image: set viewport and scissor, iterate panels in the order
// they were added, iterate each panel's visuals in priority order, issue
// bind+draw for each graphics pipeline. No per-panel MVP uniform is bound
// here. An event with All set only marks every image for refill.
func (r *Runner) handleRefill(e RefillEvent) error {
	if e.All {
		r.markAllRefill()
		return nil
	}
	cmd := r.context.GraphicsCommandBuffers[e.ImageIndex]
	cmd.Reset()
	if err := cmd.Begin(false, false, false); err != nil {
		return err
	}

	viewport := vk.Viewport{
		X: 0, Y: float32(r.context.FramebufferHeight),
		Width: float32(r.context.FramebufferWidth), Height: -float32(r.context.FramebufferHeight),
		MinDepth: 0, MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: r.context.FramebufferWidth, Height: r.context.FramebufferHeight},
	}
	vk.CmdSetViewport(cmd.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cmd.Handle, 0, 1, []vk.Rect2D{scissor})

	r.context.MainRenderpass.W = float32(r.context.FramebufferWidth)
	r.context.MainRenderpass.H = float32(r.context.FramebufferHeight)
	r.context.MainRenderpass.RenderpassBegin(cmd, r.context.Swapchain.Framebuffers[e.ImageIndex].Handle)

	rec := &commandRecorder{cmd: cmd, res: r.resources, slice: e.ImageIndex}
	for _, s := range r.scenes {
		for _, p := range s.Panels {
			r.fillPanel(p, rec)
		}
	}

	r.context.MainRenderpass.RenderpassEnd(cmd)
	if err := cmd.End(); err != nil {
		return err
	}

	if r.toRefill[e.ImageIndex] > 0 {
		r.toRefill[e.ImageIndex]--
	}
	r.queue.PushPresent(PresentEvent{ImageIndex: e.ImageIndex})
	return nil
}

func (r *Runner) fillPanel(p *scene.Panel, rec *commandRecorder) {
	for _, v := range p.Visuals() {
		if v.FillFunc != nil {
			v.FillFunc(v, rec)
			continue
		}
		gfx, err := r.catalogue.Get(v.GraphicsType)
		if err != nil {
			continue
		}
		rec.BindPipeline(gfx)
		for _, src := range v.Sources {
			switch src.Kind {
			case visual.KindVertex:
				rec.BindVertexSource(src)
			case visual.KindIndex:
				rec.BindIndexSource(src)
			}
		}
		vertexSrc := v.Source(visual.SourceVertex, 0)
		indexSrc := v.Source(visual.SourceIndex, 0)
		if indexSrc != nil && indexSrc.Count() > 0 {
			rec.DrawIndexed(uint32(indexSrc.Count()), 1)
		} else if vertexSrc != nil {
			rec.Draw(uint32(vertexSrc.Count()), 1)
		}
	}
}

// handlePresent submits the recorded command buffer and hands the image
// back to the swapchain, then advances CurrentFrame.
func (r *Runner) handlePresent(e PresentEvent) error {
	cmd := r.context.GraphicsCommandBuffers[e.ImageIndex]
	current := r.context.CurrentFrame

	if r.context.ImagesInFlight[e.ImageIndex] != nil {
		r.context.ImagesInFlight[e.ImageIndex].FenceWait(r.context, math.MaxUint64)
	}
	r.context.ImagesInFlight[e.ImageIndex] = r.context.InFlightFences[current]
	r.context.InFlightFences[current].FenceReset(r.context)

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{r.context.QueueCompleteSemaphores[current]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{r.context.ImageAvailableSemaphores[current]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}
	if result := vk.QueueSubmit(r.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, r.context.InFlightFences[current].Handle); result != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed with result: %v", result)
	}
	cmd.UpdateSubmitted()

	r.context.Swapchain.SwapchainPresent(
		r.context, r.context.Device.GraphicsQueue, r.context.Device.PresentQueue,
		r.context.QueueCompleteSemaphores[current], e.ImageIndex)

	r.context.CurrentFrame = (current + 1) % uint32(len(r.context.InFlightFences))
	return nil
}

// Stop waits for the GPU to go idle and drains any in-flight transfer
// jobs, per spec.md §4.7's cancellation ordering: stop accepting new
// work, wait for the device, then let callers destroy resources in
// reverse-allocation order.
func (r *Runner) Stop() {
	r.stopReq = true
	vk.DeviceWaitIdle(r.context.Device.LogicalDevice)
	r.transfer.Shutdown()
}

// Stopped reports whether the loop has processed a stop request.
func (r *Runner) Stopped() bool {
	return r.stopped
}
