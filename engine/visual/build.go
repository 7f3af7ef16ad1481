package visual

// AddSource appends and returns a new Source of kind with the given
// per-element byte size, owned by this Visual.
func (v *Visual) AddSource(t SourceType, idx int, kind SourceKind, elementSize uint64) *Source {
	s := &Source{
		Type:        t,
		Idx:         idx,
		Kind:        kind,
		ElementSize: elementSize,
		Origin:      OriginLibrary,
	}
	v.Sources = append(v.Sources, s)
	return s
}

// AddProp appends and returns a new Prop feeding source at fieldOffset,
// with one scalar dtype element per logical value.
func (v *Visual) AddProp(t PropType, idx int, dtype DType, source *Source, fieldOffset uint64, policy CopyPolicy) *Prop {
	return v.AddVecProp(t, idx, dtype, dtype.Size(), source, fieldOffset, policy)
}

// AddVecProp appends and returns a new Prop whose logical element is
// stride bytes wide (e.g. a vec3 Pos), independent of dtype's own
// per-component width used for Cast conversions.
func (v *Visual) AddVecProp(t PropType, idx int, dtype DType, stride uint64, source *Source, fieldOffset uint64, policy CopyPolicy) *Prop {
	p := &Prop{
		Type:        t,
		Idx:         idx,
		DType:       dtype,
		Stride:      stride,
		Source:      source,
		FieldOffset: fieldOffset,
		CopyPolicy:  policy,
	}
	v.Props = append(v.Props, p)
	return p
}
