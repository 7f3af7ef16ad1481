package transfer

import (
	"sync"

	"github.com/vizcore/dvz/engine/containers"
	"github.com/vizcore/dvz/engine/memory"
	"github.com/vizcore/dvz/engine/resources"
	"github.com/vizcore/dvz/engine/vulkan"
)

const queueDepth = 256

// Engine runs the three transfer FIFOs. Upload and Download each get a
// single dedicated worker goroutine so completion order within a queue
// matches enqueue order, as spec.md §4.3 requires; Copy jobs (which
// move data directly between two device resources, with no shared
// staging slice to serialize on) fan out across a config-sized worker
// pool, generalizing the teacher's job-system worker-pool pattern so
// its size is driven by config.Transfer.NumThreads.
type Engine struct {
	context *vulkan.VulkanContext
	alloc   *memory.Allocator
	res     *resources.Manager

	staging *stagingRing

	uploads   chan *Job
	downloads chan *Job
	copies    chan *Job

	wg   sync.WaitGroup
	stop chan struct{}
}

func NewEngine(context *vulkan.VulkanContext, alloc *memory.Allocator, res *resources.Manager, stagingSize uint64, numCopyWorkers uint32) *Engine {
	e := &Engine{
		context:   context,
		alloc:     alloc,
		res:       res,
		staging:   newStagingRing(alloc, stagingSize),
		uploads:   make(chan *Job, queueDepth),
		downloads: make(chan *Job, queueDepth),
		copies:    make(chan *Job, queueDepth),
		stop:      make(chan struct{}),
	}

	e.wg.Add(2)
	go e.drain(e.uploads, e.runUpload)
	go e.drain(e.downloads, e.runDownload)

	if numCopyWorkers == 0 {
		numCopyWorkers = 1
	}
	for i := uint32(0); i < numCopyWorkers; i++ {
		e.wg.Add(1)
		go e.drain(e.copies, e.runCopy)
	}

	return e
}

func (e *Engine) drain(queue chan *Job, run func(*Job)) {
	defer e.wg.Done()
	for {
		select {
		case job := <-queue:
			run(job)
		case <-e.stop:
			return
		}
	}
}

// Enqueue submits a job to its Kind's FIFO. Enqueue itself is
// non-blocking up to queueDepth pending jobs; beyond that it blocks the
// caller, applying backpressure rather than growing unbounded.
func (e *Engine) Enqueue(job *Job) {
	switch job.Kind {
	case KindUpload:
		e.uploads <- job
	case KindDownload:
		e.downloads <- job
	case KindCopy:
		e.copies <- job
	}
}

func (e *Engine) Shutdown() {
	close(e.stop)
	e.wg.Wait()
	e.staging.destroy(e.context)
}

func (e *Engine) runUpload(job *Job) {
	if uint64(len(job.Data)) < job.Size {
		job.done(ErrInvalid)
		return
	}

	slice, err := e.staging.acquire(e.context, job.Size)
	if err != nil {
		job.done(err)
		return
	}
	defer e.staging.release(slice)

	if err := slice.write(e.context, job.Data[:job.Size]); err != nil {
		job.done(err)
		return
	}

	dat, err := e.res.Dat(job.DestDat)
	if err != nil {
		job.done(err)
		return
	}
	if job.Offset+job.Size > dat.Regions.Size {
		job.done(ErrOverflow)
		return
	}

	dstHandle, err := e.alloc.Handle(dat.Kind)
	if err != nil {
		job.done(err)
		return
	}

	currentSlice := uint32(0)
	dstOffset := dat.Regions.Offsets[currentSlice] + job.Offset
	vulkan.CopyBufferTo(e.context, e.context.Device.GraphicsCommandPool, nil, e.context.Device.TransferQueue,
		slice.handle, slice.offset, dstHandle, dstOffset, job.Size)

	if job.Dup && len(dat.Dirty) > 1 {
		// The write just landed in slice 0; every other slice is now
		// stale until the runner's per-frame catch-up (CatchUpDup) copies
		// it forward as each becomes the current swapchain image.
		_ = e.res.MarkWritten(job.DestDat, currentSlice)
	}

	job.done(nil)
}

func (e *Engine) runDownload(job *Job) {
	dat, err := e.res.Dat(job.SourceDat)
	if err != nil {
		job.done(err)
		return
	}
	if job.Offset+job.Size > dat.Regions.Size {
		job.done(ErrOverflow)
		return
	}
	if uint64(len(job.Out)) < job.Size {
		job.done(ErrInvalid)
		return
	}

	slice, err := e.staging.acquire(e.context, job.Size)
	if err != nil {
		job.done(err)
		return
	}
	defer e.staging.release(slice)

	srcHandle, err := e.alloc.Handle(dat.Kind)
	if err != nil {
		job.done(err)
		return
	}

	srcOffset := dat.Regions.Offsets[0] + job.Offset
	vulkan.CopyBufferTo(e.context, e.context.Device.GraphicsCommandPool, nil, e.context.Device.TransferQueue,
		srcHandle, srcOffset, slice.handle, slice.offset, job.Size)

	out, err := slice.read(e.context, job.Size)
	if err != nil {
		job.done(err)
		return
	}
	copy(job.Out, out)

	job.done(nil)
}

func (e *Engine) runCopy(job *Job) {
	srcDat, err := e.res.Dat(job.SourceDat)
	if err != nil {
		job.done(err)
		return
	}
	dstDat, err := e.res.Dat(job.DestDat)
	if err != nil {
		job.done(err)
		return
	}
	if job.Offset+job.Size > srcDat.Regions.Size || job.DestOffset+job.Size > dstDat.Regions.Size {
		job.done(ErrOverflow)
		return
	}

	srcHandle, err := e.alloc.Handle(srcDat.Kind)
	if err != nil {
		job.done(err)
		return
	}
	dstHandle, err := e.alloc.Handle(dstDat.Kind)
	if err != nil {
		job.done(err)
		return
	}

	srcSlice, dstSlice := job.SourceSlice, job.DestSlice
	if int(srcSlice) >= len(srcDat.Regions.Offsets) {
		srcSlice = 0
	}
	if int(dstSlice) >= len(dstDat.Regions.Offsets) {
		dstSlice = 0
	}

	vulkan.CopyBufferTo(e.context, e.context.Device.GraphicsCommandPool, nil, e.context.Device.TransferQueue,
		srcHandle, srcDat.Regions.Offsets[srcSlice]+job.Offset,
		dstHandle, dstDat.Regions.Offsets[dstSlice]+job.DestOffset, job.Size)

	job.done(nil)
}

// CatchUpDup propagates a dup Dat's slice-0 write into targetSlice if
// targetSlice is still marked dirty, per spec.md §4.3's upfill semantics:
// an upload with Dup set lands in slice 0 immediately and trails into the
// Dat's remaining slices one per frame as each becomes the current
// swapchain image. The runner calls this once per frame for every dup
// uniform it owns, right after acquiring that frame's image index.
func (e *Engine) CatchUpDup(h containers.Handle, targetSlice uint32) {
	dat, err := e.res.Dat(h)
	if err != nil || int(targetSlice) >= len(dat.Dirty) || !dat.Dirty[targetSlice] {
		return
	}
	e.Enqueue(&Job{
		Kind:        KindCopy,
		SourceDat:   h,
		DestDat:     h,
		SourceSlice: 0,
		DestSlice:   targetSlice,
		Size:        dat.Regions.Size,
		Callback: func(err error) {
			if err == nil {
				_ = e.res.MarkSliceClean(h, targetSlice)
			}
		},
	})
}
