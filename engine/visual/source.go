package visual

import "github.com/vizcore/dvz/engine/containers"

// Source is one GPU-backed array a Visual's pipeline binds: a vertex
// buffer, an index buffer, a uniform block, or a texture. Its Elements
// array holds the packed, baked bytes ready to upload.
type Source struct {
	Type SourceType
	Idx  int
	Kind SourceKind

	Pipeline PipelineRef
	Binding  uint32

	ElementSize uint64
	Elements    []byte

	Origin Origin

	// Dat/Tex name the backing GPU resource once the engine (or the
	// caller, for OriginUser) has allocated one. Exactly one is valid,
	// selected by Kind.
	Dat containers.Handle
	Tex containers.Handle

	// SharedWith lists other Sources (typically in other Visuals) that
	// were created against the same underlying Dat/Tex. It is a plain
	// list: a write through one Source does not update the others' dirty
	// bookkeeping.
	SharedWith []*Source

	// dirtyFrom/dirtyTo, when hasDirtyRange is set, name the smallest
	// byte range written since the last upload, letting the bake phase
	// do a partial transfer instead of re-uploading the whole Source.
	dirtyFrom, dirtyTo uint64
	hasDirtyRange      bool
}

// Count returns the number of elements currently held.
func (s *Source) Count() uint64 {
	if s.ElementSize == 0 {
		return 0
	}
	return uint64(len(s.Elements)) / s.ElementSize
}

// ensureCapacity grows Elements to hold count elements, zero-filling any
// newly added tail.
func (s *Source) ensureCapacity(count uint64) {
	need := count * s.ElementSize
	if uint64(len(s.Elements)) >= need {
		return
	}
	grown := make([]byte, need)
	copy(grown, s.Elements)
	s.Elements = grown
}

// writeAt copies data into the element at index idx and records the
// touched range for a later partial upload.
func (s *Source) writeAt(idx uint64, data []byte) {
	s.ensureCapacity(idx + 1)
	offset := idx * s.ElementSize
	copy(s.Elements[offset:offset+s.ElementSize], data)
	s.markDirty(offset, offset+s.ElementSize)
}

func (s *Source) markDirty(from, to uint64) {
	if !s.hasDirtyRange {
		s.dirtyFrom, s.dirtyTo = from, to
		s.hasDirtyRange = true
		return
	}
	if from < s.dirtyFrom {
		s.dirtyFrom = from
	}
	if to > s.dirtyTo {
		s.dirtyTo = to
	}
}

// TakeDirtyRange returns and clears the smallest byte range touched since
// the last call, or ok=false if nothing changed.
func (s *Source) TakeDirtyRange() (from, to uint64, ok bool) {
	if !s.hasDirtyRange {
		return 0, 0, false
	}
	from, to, ok = s.dirtyFrom, s.dirtyTo, true
	s.hasDirtyRange = false
	return
}
