package visual

import (
	"math"

	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/graphics"
)

// vec3Size/vec4Size/floatSize name the byte widths used throughout the
// builtin vertex layouts below, matching the strides the graphics
// catalogue declares for each Type.
const (
	vec3Size  = 3 * 4
	vec4Size  = 4 * 4
	floatSize = 4
)

// NewPoint builds a Visual for the Point graphics type: one vertex per
// point, Pos (vec3) and Color (vec4) props writing directly into the
// vertex Source with no tesselation.
func NewPoint(id core.ID) *Visual {
	v := New(id, graphics.Point)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, vec3Size+vec4Size)
	v.AddVecProp(PropPos, 0, DTypeFloat32, vec3Size, vtx, 0, CopySingle)
	v.AddVecProp(PropColor, 0, DTypeFloat32, vec4Size, vtx, vec3Size, CopySingle)
	return v
}

// NewLine builds a Visual for Line or LineStrip: same per-vertex layout as
// Point, topology chosen by the caller via t.
func NewLine(id core.ID, t graphics.Type) *Visual {
	v := New(id, t)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, vec3Size+vec4Size)
	v.AddVecProp(PropPos, 0, DTypeFloat32, vec3Size, vtx, 0, CopySingle)
	v.AddVecProp(PropColor, 0, DTypeFloat32, vec4Size, vtx, vec3Size, CopySingle)
	return v
}

// NewTriangle builds a Visual for TriangleList/Strip/Fan: Pos, Normal,
// Color props over a single vertex Source.
func NewTriangle(id core.ID, t graphics.Type) *Visual {
	v := New(id, t)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, vec3Size+vec3Size+vec4Size)
	v.AddVecProp(PropPos, 0, DTypeFloat32, vec3Size, vtx, 0, CopySingle)
	v.AddVecProp(PropNormal, 0, DTypeFloat32, vec3Size, vtx, vec3Size, CopySingle)
	v.AddVecProp(PropColor, 0, DTypeFloat32, vec4Size, vtx, 2*vec3Size, CopySingle)
	return v
}

// NewMarker builds a Visual for the Marker graphics type: Pos, Color, and a
// per-vertex MarkerSize scalar, rendered as a point sprite the fragment
// shader shapes from the marker atlas sampler.
func NewMarker(id core.ID) *Visual {
	v := New(id, graphics.Marker)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, vec3Size+vec4Size+floatSize)
	v.AddVecProp(PropPos, 0, DTypeFloat32, vec3Size, vtx, 0, CopySingle)
	v.AddVecProp(PropColor, 0, DTypeFloat32, vec4Size, vtx, vec3Size, CopySingle)
	v.AddProp(PropMarkerSize, 0, DTypeFloat32, vtx, vec3Size+vec4Size, CopyRepeat)
	return v
}

// NewSegment builds a Visual for Segment/Arrow: one record per segment
// holding both endpoints, a color, and a line width; the vertex shader
// expands each record into a screen-space quad.
func NewSegment(id core.ID, t graphics.Type) *Visual {
	v := New(id, t)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, vec3Size+vec3Size+vec4Size+floatSize)
	v.AddVecProp(PropPos, 0, DTypeFloat32, vec3Size, vtx, 0, CopySingle)       // segment start
	v.AddVecProp(PropPos, 1, DTypeFloat32, vec3Size, vtx, vec3Size, CopySingle) // segment end
	v.AddVecProp(PropColor, 0, DTypeFloat32, vec4Size, vtx, 2*vec3Size, CopySingle)
	v.AddProp(PropLineWidth, 0, DTypeFloat32, vtx, 2*vec3Size+vec4Size, CopyRepeat)
	return v
}

// NewRectangle builds a Visual out of two Pos props (corner 0 and corner
// 1), matching the Testable Properties rectangle-from-two-points scenario:
// bake expands the two corners into a 4-vertex, 6-index triangle list.
func NewRectangle(id core.ID) *Visual {
	v := New(id, graphics.TriangleList)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, vec3Size+vec3Size+vec4Size)
	v.AddSource(SourceIndex, 0, KindIndex, 4)
	v.AddVecProp(PropPos, 0, DTypeFloat32, vec3Size, vtx, 0, CopySingle) // corner A
	v.AddVecProp(PropPos, 1, DTypeFloat32, vec3Size, vtx, 0, CopySingle) // corner B (consumed by BakeRectangle, not DefaultBake)
	v.AddVecProp(PropColor, 0, DTypeFloat32, vec4Size, vtx, 2*vec3Size, CopySingle)
	v.BakeFunc = BakeRectangle
	return v
}

// BakeRectangle expands corner-A/corner-B Pos props into a 4-vertex quad
// (sharing the Color prop across all four corners) and a 6-index
// triangle-list index buffer, then delegates the vertex/index array copy
// to DefaultBake-style field writes.
func BakeRectangle(v *Visual) error {
	a := v.findProp(PropPos, 0)
	b := v.findProp(PropPos, 1)
	if a == nil || b == nil {
		return ErrMissingProp
	}
	if len(a.Orig) < vec3Size || len(b.Orig) < vec3Size {
		return ErrMissingProp
	}

	ax, ay, az := float32frombytes(a.Orig[0:4]), float32frombytes(a.Orig[4:8]), float32frombytes(a.Orig[8:12])
	bx, by := float32frombytes(b.Orig[0:4]), float32frombytes(b.Orig[4:8])

	corners := [4][3]float32{
		{ax, ay, az},
		{bx, ay, az},
		{bx, by, az},
		{ax, by, az},
	}

	vtx := v.Source(SourceVertex, 0)
	color := v.findProp(PropColor, 0)
	var colorBytes []byte
	if color != nil {
		if raw, ok := color.element(0); ok {
			colorBytes = raw
		}
	}
	if colorBytes == nil {
		colorBytes = make([]byte, vec4Size)
	}

	vtx.ensureCapacity(4)
	for i, c := range corners {
		off := uint64(i) * vtx.ElementSize
		copy(vtx.Elements[off:off+4], float32tobytes(c[0]))
		copy(vtx.Elements[off+4:off+8], float32tobytes(c[1]))
		copy(vtx.Elements[off+8:off+12], float32tobytes(c[2]))
		copy(vtx.Elements[off+uint64(2*vec3Size):off+uint64(2*vec3Size)+vec4Size], colorBytes)
	}
	vtx.markDirty(0, 4*vtx.ElementSize)

	idxSrc := v.Source(SourceIndex, 0)
	indices := []uint32{0, 1, 2, 0, 2, 3}
	idxSrc.ensureCapacity(6)
	for i, idxVal := range indices {
		off := uint64(i) * idxSrc.ElementSize
		copy(idxSrc.Elements[off:off+4], uint32tobytes(idxVal))
	}
	idxSrc.markDirty(0, 6*idxSrc.ElementSize)

	return nil
}

// NewPath builds a Visual for the Path graphics type: a Pos prop holding
// an ordered polyline, baked into a triangle-strip ribbon whose width
// offsets are applied in data units (scenario 6's tesselated-polyline case).
func NewPath(id core.ID) *Visual {
	v := New(id, graphics.Path)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, vec3Size+vec3Size+vec4Size)
	v.AddVecProp(PropPos, 0, DTypeFloat32, vec3Size, vtx, 0, CopySingle)
	v.AddVecProp(PropColor, 0, DTypeFloat32, vec4Size, vtx, 2*vec3Size, CopySingle)
	v.AddProp(PropLineWidth, 0, DTypeFloat32, nil, 0, CopySingle)
	v.BakeFunc = BakePath
	return v
}

// BakePath tesselates the ordered Pos polyline into a triangle-strip
// ribbon: each point emits two ribbon vertices offset along the
// segment normal by half the line width.
func BakePath(v *Visual) error {
	pos := v.findProp(PropPos, 0)
	width := v.findProp(PropLineWidth, 0)
	if pos == nil {
		return ErrMissingProp
	}
	n := pos.ElementCount()
	if n < 2 {
		return nil
	}

	w := float32(1)
	if width != nil {
		if raw, ok := width.element(0); ok {
			w = float32frombytes(raw)
		}
	}
	half := w / 2

	vtx := v.Source(SourceVertex, 0)
	color := v.findProp(PropColor, 0)
	vtx.ensureCapacity(uint64(n) * 2)

	for i := 0; i < n; i++ {
		raw, _ := pos.element(i)
		px, py, pz := float32frombytes(raw[0:4]), float32frombytes(raw[4:8]), float32frombytes(raw[8:12])

		var nx, ny float32
		switch {
		case i < n-1:
			nextRaw, _ := pos.element(i + 1)
			nx2, ny2 := float32frombytes(nextRaw[0:4]), float32frombytes(nextRaw[4:8])
			dx, dy := nx2-px, ny2-py
			nx, ny = -dy, dx
		default:
			prevRaw, _ := pos.element(i - 1)
			px2, py2 := float32frombytes(prevRaw[0:4]), float32frombytes(prevRaw[4:8])
			dx, dy := px-px2, py-py2
			nx, ny = -dy, dx
		}
		length := float32(math.Sqrt(float64(nx*nx + ny*ny)))
		if length > 0 {
			nx, ny = nx/length, ny/length
		}

		var colorBytes []byte
		if color != nil {
			if raw, ok := color.element(i); ok {
				colorBytes = raw
			}
		}
		if colorBytes == nil {
			colorBytes = make([]byte, vec4Size)
		}

		writeRibbonVertex(vtx, 2*i, px+nx*half, py+ny*half, pz, colorBytes)
		writeRibbonVertex(vtx, 2*i+1, px-nx*half, py-ny*half, pz, colorBytes)
	}
	vtx.markDirty(0, uint64(2*n)*vtx.ElementSize)
	return nil
}

func writeRibbonVertex(vtx *Source, idx int, x, y, z float32, color []byte) {
	off := uint64(idx) * vtx.ElementSize
	copy(vtx.Elements[off:off+4], float32tobytes(x))
	copy(vtx.Elements[off+4:off+8], float32tobytes(y))
	copy(vtx.Elements[off+8:off+12], float32tobytes(z))
	copy(vtx.Elements[off+uint64(2*vec3Size):off+uint64(2*vec3Size)+vec4Size], color)
}

func uint32tobytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
