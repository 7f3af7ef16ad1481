// Package transfer implements the three-FIFO transfer engine described
// in spec.md §4.3: independent upload/download/copy queues draining in
// enqueue order, backed by a recyclable host-visible staging ring.
package transfer

import (
	"errors"

	"github.com/vizcore/dvz/engine/containers"
)

// Kind discriminates the three FIFOs a Job can be queued on.
type Kind int

const (
	KindUpload Kind = iota
	KindDownload
	KindCopy
)

var (
	// ErrResourceExhausted is returned when the staging ring cannot grow
	// to accommodate a request.
	ErrResourceExhausted = errors.New("transfer: staging buffer exhausted")
	// ErrOverflow is returned when a job's region falls outside its
	// destination.
	ErrOverflow = errors.New("transfer: region overflows destination")
	// ErrInvalid is returned when an Upload job's Data or a Download
	// job's Out is shorter than Size.
	ErrInvalid = errors.New("transfer: incompatible source/destination")
)

// Job is one unit of transfer work. Exactly one of Data (for Upload) or
// Out (for Download) is populated depending on Kind; Copy populates
// neither and instead moves Size bytes from SourceDat to DestDat directly
// on the device. SourceTex and DestTex are not read by any job kind.
type Job struct {
	Kind Kind

	SourceDat containers.Handle
	SourceTex containers.Handle
	DestDat   containers.Handle
	DestTex   containers.Handle

	Offset     uint64
	DestOffset uint64
	Size       uint64

	// SourceSlice/DestSlice select which dup region a Copy job reads
	// from/writes to; zero (slice 0) for every job that isn't propagating
	// a dup Dat's upfill into one of its other slices.
	SourceSlice uint32
	DestSlice   uint32

	// Data is the payload for an Upload job.
	Data []byte
	// Out receives the payload for a Download job.
	Out []byte

	// Dup, if true, marks this as an "upfill" write: Data is staged into
	// slice 0 now. The job itself does not touch the Dat's other dup
	// slices; Engine.CatchUpDup, which the runner calls each frame, copies
	// into them.
	Dup bool

	// Callback, if non-nil, is invoked once the job completes (or fails)
	// from the worker goroutine that ran it.
	Callback func(error)
}

func (j *Job) done(err error) {
	if j.Callback != nil {
		j.Callback(err)
	}
}
