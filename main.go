/*
dvzdemo boots the platform window, the Vulkan backend, and the runner's
four-priority-queue frame loop against the sample scene in demo/scene.go.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	vk "github.com/goki/vulkan"

	"github.com/vizcore/dvz/demo"
	"github.com/vizcore/dvz/engine/assets"
	"github.com/vizcore/dvz/engine/config"
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/graphics"
	"github.com/vizcore/dvz/engine/memory"
	"github.com/vizcore/dvz/engine/platform"
	"github.com/vizcore/dvz/engine/resources"
	"github.com/vizcore/dvz/engine/runner"
	"github.com/vizcore/dvz/engine/scene"
	"github.com/vizcore/dvz/engine/transfer"
	"github.com/vizcore/dvz/engine/vulkan"
)

// shaderAssetsDir is where the asset manager watches for SPIR-V changes to
// hot-reload, matching engine/graphics/catalogue.go's own shaderDir
// convention.
const shaderAssetsDir = "assets"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		core.LogFatal("load config: %s", err)
		os.Exit(1)
	}

	p, err := platform.New()
	if err != nil {
		core.LogFatal("create platform: %s", err)
		os.Exit(1)
	}
	if err := p.Startup(cfg.Window.Title, cfg.Window.PosX, cfg.Window.PosY, cfg.Window.Width, cfg.Window.Height); err != nil {
		core.LogFatal("start platform: %s", err)
		os.Exit(1)
	}

	vr := vulkan.New(p)
	if err := vr.Initialize(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height); err != nil {
		core.LogFatal("initialize vulkan: %s", err)
		os.Exit(1)
	}
	context := vr.Context()

	lockPool := vulkan.NewVulkanLockPool()
	alloc := memory.NewAllocator(context, lockPool)

	imageCount := uint32(len(context.GraphicsCommandBuffers))
	res := resources.NewManager(alloc, imageCount)

	xfer := transfer.NewEngine(context, alloc, res, cfg.Transfer.StagingBufferSize, cfg.Transfer.NumThreads)

	viewport := vk.Viewport{
		X: 0, Y: float32(context.FramebufferHeight),
		Width: float32(context.FramebufferWidth), Height: -float32(context.FramebufferHeight),
		MinDepth: 0, MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: context.FramebufferWidth, Height: context.FramebufferHeight},
	}
	catalogue := graphics.NewCatalogue(context, context.MainRenderpass, viewport, scissor, 64)

	run := runner.New(vr, context, catalogue, res, xfer)
	run.AddScene(demo.Build())

	assetMgr, err := assets.NewManager()
	if err != nil {
		core.LogFatal("create asset manager: %s", err)
		os.Exit(1)
	}
	if err := assetMgr.Initialize(shaderAssetsDir); err != nil {
		core.LogFatal("initialize asset manager: %s", err)
		os.Exit(1)
	}
	go catalogue.WatchReload(assetMgr.Changed, func(graphics.Type) {
		run.NotifyGraphicsRebuilt()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		run.RequestStop()
	}()

	clock := core.NewClock()
	clock.Start()
	lastTime := clock.Elapsed()

	pointer := scene.PointerState{}
	frames := uint64(0)

	for !p.ShouldClose() && !run.Stopped() {
		p.PumpMessages()
		drainPlatformEvents(p, &pointer, vr)

		clock.Update()
		now := clock.Elapsed()
		deltaTime := now - lastTime
		lastTime = now

		if err := run.Tick(deltaTime, pointer); err != nil {
			core.LogError("runner tick: %s", err)
			break
		}
		pointer.DX, pointer.DY, pointer.WheelDelta, pointer.DoubleClick = 0, 0, 0, false

		frames++
		if cfg.Run.NFrames != 0 && frames >= cfg.Run.NFrames {
			break
		}
	}

	run.Stop()
	vr.Shutdow()
	p.Shutdown()
}

// drainPlatformEvents folds queued GLFW callbacks into the single
// PointerState snapshot the runner's Tick consumes each frame.
func drainPlatformEvents(p *platform.Platform, ps *scene.PointerState, vr *vulkan.VulkanRenderer) {
	for {
		select {
		case e := <-p.Events:
			applyEvent(e, ps, vr)
		default:
			return
		}
	}
}

func applyEvent(e platform.Event, ps *scene.PointerState, vr *vulkan.VulkanRenderer) {
	switch e.Kind {
	case platform.EventCursorMove:
		dx, dy := e.X-ps.X, e.Y-ps.Y
		ps.DX, ps.DY = ps.DX+dx, ps.DY+dy
		ps.X, ps.Y = e.X, e.Y
	case platform.EventMouseButtonPress, platform.EventMouseButtonRelease:
		down := e.Kind == platform.EventMouseButtonPress
		switch e.Button {
		case 0:
			ps.LeftDown = down
		case 1:
			ps.RightDown = down
		case 2:
			ps.MiddleDown = down
		}
	case platform.EventScroll:
		ps.WheelDelta += e.Y
	case platform.EventFramebufferResize:
		ps.ViewW, ps.ViewH = int32(e.Width), int32(e.Height)
		if err := vr.Resized(uint16(e.Width), uint16(e.Height)); err != nil {
			core.LogWarn("renderer resized: %s", err)
		}
	}
}
