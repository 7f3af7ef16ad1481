package visual

import (
	"encoding/binary"
	"math"
)

// Prop is one semantically-named input a caller writes via SetProp. It
// records three array stages: Orig (what the caller set), Trans (after any
// CPU-side transform such as data-space normalization — identical to Orig
// if no transform applies), and Staging (after baking, ready to copy into
// the owning Source's element array).
type Prop struct {
	Type PropType
	Idx  int

	DType       DType
	Source      *Source
	FieldOffset uint64

	// Stride is the byte width of one logical element of this Prop's
	// array — e.g. 12 for a vec3 Pos, 4 for a scalar MarkerSize. It is
	// independent of DType, which names the component type used for
	// Cast conversions, not the element's vector width. Defaults to
	// DType.Size() (a scalar element) when zero.
	Stride uint64

	CopyPolicy  CopyPolicy
	RepeatCount int

	// Cast, if non-nil, names the GPU-side dtype this Prop's CPU dtype
	// must be converted to during baking.
	Cast *DType

	// DPIScale, if non-zero, multiplies scalar float32 Prop values by the
	// panel's current DPI scale factor before baking (used for
	// MarkerSize/LineWidth so marker sizes stay constant in physical
	// pixels across DPI settings).
	DPIScale float32

	Default []byte

	Orig    []byte
	Trans   []byte
	Staging []byte

	Dirty bool
}

func (p *Prop) elementSize() uint64 {
	if p.Stride != 0 {
		return p.Stride
	}
	return p.DType.Size()
}

// ElementCount returns how many Stride-sized elements the effective array
// (Trans, else Orig, else Default) currently holds.
func (p *Prop) ElementCount() int {
	size := p.elementSize()
	if size == 0 {
		return 0
	}
	return len(p.effective()) / int(size)
}

// effective returns Trans if populated, else Orig, else Default.
func (p *Prop) effective() []byte {
	if len(p.Trans) > 0 {
		return p.Trans
	}
	if len(p.Orig) > 0 {
		return p.Orig
	}
	return p.Default
}

// Set overwrites Orig with data and marks the Prop (and by convention its
// caller) dirty. Trans is cleared so the next bake recomputes it from Orig.
func (p *Prop) Set(data []byte) {
	p.Orig = append([]byte(nil), data...)
	p.Trans = nil
	p.Dirty = true
}

// element returns the i'th element (Stride bytes, or the DType size when
// Stride is 0) of the effective array; if CopyPolicy is CopyRepeat and i
// is past the last element, it wraps around to element i modulo the count.
func (p *Prop) element(i int) ([]byte, bool) {
	data := p.effective()
	size := int(p.elementSize())
	if size == 0 || len(data) == 0 {
		return nil, false
	}
	count := len(data) / size
	if count == 0 {
		return nil, false
	}
	idx := i
	if p.CopyPolicy == CopyRepeat {
		idx = i % count
	} else if idx >= count {
		return nil, false
	}
	return data[idx*size : idx*size+size], true
}

// castTo converts one DType.Size()-wide element from p.DType to target,
// widening/narrowing numerically. float32 <-> uint8 is treated as a
// [0,1] <-> [0,255] color-channel mapping, matching the teacher's texture
// format conventions; all other combinations are same-width reinterprets.
func castTo(value []byte, from, to DType) []byte {
	if from == to {
		return value
	}
	switch {
	case from == DTypeFloat32 && to == DTypeUint8:
		bits := binary.LittleEndian.Uint32(value)
		f := math.Float32frombits(bits)
		return []byte{uint8(clamp01(f) * 255)}
	case from == DTypeUint8 && to == DTypeFloat32:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, math.Float32bits(float32(value[0])/255))
		return out
	default:
		return value
	}
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
