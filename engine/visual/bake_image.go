package visual

import (
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/graphics"
)

// imageVertexSize is pos(vec3) + uv(vec2), matching the Image/ImageCmap
// graphics types' 5*4 stride.
const imageVertexSize = vec3Size + 2*4

// NewImage builds a Visual for Image or ImageCmap: a screen-aligned quad
// with a SourceImage texture Source bound at sampler slot 0 (and, for
// ImageCmap, a second colormap-lookup texture at slot 1).
func NewImage(id core.ID, t graphics.Type) *Visual {
	v := New(id, t)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, imageVertexSize)
	v.AddSource(SourceIndex, 0, KindIndex, 4)
	v.AddSource(SourceImage, 0, KindTexture2D, 0)
	if t == graphics.ImageCmap {
		v.AddSource(SourceColorTexture, 0, KindTexture1D, 0)
	}
	v.AddVecProp(PropPos, 0, DTypeFloat32, vec3Size, vtx, 0, CopySingle) // corner A
	v.AddVecProp(PropPos, 1, DTypeFloat32, vec3Size, vtx, 0, CopySingle) // corner B
	v.AddVecProp(PropTexCoords, 0, DTypeFloat32, 2*4, vtx, vec3Size, CopySingle)
	v.BakeFunc = BakeImageQuad
	return v
}

// BakeImageQuad expands the two corner Pos props into a 4-vertex,
// 6-index textured quad whose (u,v) coordinates always span the full
// [0,1] unit square; the TexCoords prop is not read.
func BakeImageQuad(v *Visual) error {
	a := v.findProp(PropPos, 0)
	b := v.findProp(PropPos, 1)
	if a == nil || b == nil || len(a.Orig) < vec3Size || len(b.Orig) < vec3Size {
		return ErrMissingProp
	}

	ax, ay, az := float32frombytes(a.Orig[0:4]), float32frombytes(a.Orig[4:8]), float32frombytes(a.Orig[8:12])
	bx, by := float32frombytes(b.Orig[0:4]), float32frombytes(b.Orig[4:8])

	uv := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	corners := [4][3]float32{{ax, ay, az}, {bx, ay, az}, {bx, by, az}, {ax, by, az}}

	vtx := v.Source(SourceVertex, 0)
	vtx.ensureCapacity(4)
	for i := 0; i < 4; i++ {
		off := uint64(i) * vtx.ElementSize
		copy(vtx.Elements[off:off+4], float32tobytes(corners[i][0]))
		copy(vtx.Elements[off+4:off+8], float32tobytes(corners[i][1]))
		copy(vtx.Elements[off+8:off+12], float32tobytes(corners[i][2]))
		copy(vtx.Elements[off+uint64(vec3Size):off+uint64(vec3Size)+4], float32tobytes(uv[i][0]))
		copy(vtx.Elements[off+uint64(vec3Size)+4:off+uint64(vec3Size)+8], float32tobytes(uv[i][1]))
	}
	vtx.markDirty(0, 4*vtx.ElementSize)

	idxSrc := v.Source(SourceIndex, 0)
	idxSrc.ensureCapacity(6)
	for i, iv := range [6]uint32{0, 1, 2, 0, 2, 3} {
		off := uint64(i) * idxSrc.ElementSize
		copy(idxSrc.Elements[off:off+4], uint32tobytes(iv))
	}
	idxSrc.markDirty(0, 6*idxSrc.ElementSize)
	return nil
}
