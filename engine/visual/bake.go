package visual

// DefaultBake iterates every Prop with a non-empty effective array and
// copies its data into the owning Source's element array at FieldOffset,
// applying CopyPolicy and any dtype Cast. It is the bake for visuals with
// no BakeFunc. The specialized bake callbacks in this package (rectangle,
// path, image, text) write their Source bytes themselves and do not call
// DefaultBake.
func DefaultBake(v *Visual) error {
	for _, p := range v.Props {
		if p.ElementCount() == 0 {
			if len(p.Default) == 0 {
				continue
			}
		}
		if p.Source == nil {
			return ErrMissingProp
		}
		if err := bakeProp(p); err != nil {
			return err
		}
		p.Dirty = false
	}
	return nil
}

func bakeProp(p *Prop) error {
	s := p.Source
	targetSize := s.ElementSize
	count := p.ElementCount()
	if count == 0 {
		count = 1
	}

	gpuType := p.DType
	if p.Cast != nil {
		gpuType = *p.Cast
	}

	elementCount := count
	if p.CopyPolicy == CopyRepeat && p.RepeatCount > count {
		elementCount = p.RepeatCount
	}

	for i := 0; i < elementCount; i++ {
		raw, ok := p.element(i)
		if !ok {
			if len(p.Default) == 0 {
				return ErrMissingProp
			}
			raw = p.Default
		}

		value := castTo(raw, p.DType, gpuType)
		if p.DPIScale != 0 && gpuType == DTypeFloat32 {
			value = scaleFloat32(value, p.DPIScale)
		}

		s.ensureCapacity(uint64(i) + 1)
		offset := uint64(i)*s.ElementSize + p.FieldOffset
		end := offset + uint64(len(value))
		if end > offset+targetSize {
			end = offset + targetSize
		}
		copy(s.Elements[offset:end], value)
		s.markDirty(offset, end)
	}
	return nil
}

func scaleFloat32(b []byte, scale float32) []byte {
	if len(b) != 4 {
		return b
	}
	f := float32frombytes(b)
	return float32tobytes(f * scale)
}
