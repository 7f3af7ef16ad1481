// Package visual implements the Visual/Prop/Source tagged data model: the
// user-facing surface for pushing CPU-side arrays into GPU buffers. Callers
// set Props by semantic meaning (Pos, Color, MarkerSize, ...); baking moves
// that data into the Sources a Visual's Graphics pipeline actually binds.
package visual

import "errors"

// SourceType names what role a Source plays within its owning Visual.
type SourceType int

const (
	SourceMVP SourceType = iota
	SourceViewport
	SourceParam
	SourceVertex
	SourceIndex
	SourceImage
	SourceVolume
	SourceTransfer
	SourceColorTexture
	SourceFontAtlas
	SourceOther
)

// SourceKind names the GPU resource a Source is backed by.
type SourceKind int

const (
	KindVertex SourceKind = iota
	KindIndex
	KindUniform
	KindStorage
	KindTexture1D
	KindTexture2D
	KindTexture3D
)

// Origin records who owns the GPU resource behind a Source.
type Origin int

const (
	// OriginLibrary: the engine allocated and owns this resource.
	OriginLibrary Origin = iota
	// OriginUser: the caller supplied an existing Dat/Tex handle.
	OriginUser
	// OriginNoBake: this Source never receives baked data (e.g. a shared
	// atlas another visual already populated).
	OriginNoBake
)

// PipelineStage distinguishes a Graphics target from a Compute one.
type PipelineStage int

const (
	PipelineGraphics PipelineStage = iota
	PipelineCompute
)

// PipelineRef names which of a Visual's pipelines a Source feeds.
type PipelineRef struct {
	Stage PipelineStage
	Idx   int
}

// PropType names the semantic meaning of a Prop's data.
type PropType int

const (
	PropPos PropType = iota
	PropColor
	PropAlpha
	PropMarkerSize
	PropLineWidth
	PropText
	PropNormal
	PropTexCoords
	PropModel
	PropView
	PropProj
	PropViewport
	PropLength
	PropTopology
	PropTransform
)

// DType names the element type backing a Prop or Source array.
type DType int

const (
	DTypeFloat32 DType = iota
	DTypeFloat64
	DTypeInt32
	DTypeUint32
	DTypeUint8
)

// Size returns the byte width of one element of d.
func (d DType) Size() uint64 {
	switch d {
	case DTypeFloat32, DTypeInt32, DTypeUint32:
		return 4
	case DTypeFloat64:
		return 8
	case DTypeUint8:
		return 1
	default:
		return 0
	}
}

// CopyPolicy controls how a Prop's array is distributed across its Source's
// elements during baking.
type CopyPolicy int

const (
	// CopySingle writes the Prop's array once, one value per element.
	CopySingle CopyPolicy = iota
	// CopyRepeat repeats a shorter Prop array RepeatCount times per
	// element (e.g. a single Color applied to every vertex of a marker).
	CopyRepeat
)

// Flags carries Visual-level shader and transform booleans.
type Flags uint8

const (
	FlagDepthTest Flags = 1 << iota
	FlagTransformNone
	FlagTransformAuto
	FlagBoxInit
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

var (
	// ErrMissingProp is returned when a bake callback requires a Prop the
	// caller has not set and for which no default exists.
	ErrMissingProp = errors.New("visual: required prop not set and has no default")
)
