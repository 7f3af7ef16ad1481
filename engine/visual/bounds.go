package visual

import "github.com/vizcore/dvz/engine/math"

// PosBounds returns the axis-aligned bounding box of every PropPos element
// this Visual owns (across all Idx variants, so two-corner shapes like
// Rectangle/Image contribute both corners), and false if no Pos data has
// been set yet.
func (v *Visual) PosBounds() (min, max math.Vec3, ok bool) {
	for _, p := range v.Props {
		if p.Type != PropPos {
			continue
		}
		n := p.ElementCount()
		for i := 0; i < n; i++ {
			raw, found := p.element(i)
			if !found || len(raw) < 12 {
				continue
			}
			x, y, z := float32frombytes(raw[0:4]), float32frombytes(raw[4:8]), float32frombytes(raw[8:12])
			if !ok {
				min, max = math.NewVec3(x, y, z), math.NewVec3(x, y, z)
				ok = true
				continue
			}
			if x < min.X {
				min.X = x
			}
			if y < min.Y {
				min.Y = y
			}
			if z < min.Z {
				min.Z = z
			}
			if x > max.X {
				max.X = x
			}
			if y > max.Y {
				max.Y = y
			}
			if z > max.Z {
				max.Z = z
			}
		}
	}
	return min, max, ok
}
