package visual

import (
	"github.com/vizcore/dvz/engine/assets/loaders"
	"github.com/vizcore/dvz/engine/core"
	"github.com/vizcore/dvz/engine/graphics"
)

// textVertexSize is pos(vec3) + uv(vec2) + color(vec4), matching the
// Text graphics type's 9*4 stride in the catalogue.
const textVertexSize = vec3Size + 2*4 + vec4Size

// NewText builds a Visual for the Text graphics type: a PropText holding
// the UTF-8 string to render, laid out against font's glyph metrics into a
// 4-vertex-per-glyph quad strip with a matching index buffer.
func NewText(id core.ID, font *loaders.FontData) *Visual {
	v := New(id, graphics.Text)
	vtx := v.AddSource(SourceVertex, 0, KindVertex, textVertexSize)
	v.AddSource(SourceIndex, 0, KindIndex, 4)
	v.AddProp(PropText, 0, DTypeUint8, nil, 0, CopySingle)
	v.AddVecProp(PropColor, 0, DTypeFloat32, vec4Size, vtx, vec3Size+2*4, CopySingle)
	v.Flags |= FlagTransformNone
	v.BakeFunc = bakeTextFor(font)
	return v
}

// bakeTextFor closes over the font metrics a Text visual was constructed
// with, since a glyph atlas is shared across many visuals and isn't itself
// a Prop.
func bakeTextFor(font *loaders.FontData) func(*Visual) error {
	return func(v *Visual) error {
		textProp := v.findProp(PropText, 0)
		if textProp == nil || len(textProp.Orig) == 0 {
			return nil
		}
		text := string(textProp.Orig)
		runes := []rune(text)

		colorProp := v.findProp(PropColor, 0)
		colorBytes := make([]byte, vec4Size)
		if colorProp != nil {
			if raw, ok := colorProp.element(0); ok {
				copy(colorBytes, raw)
			}
		}

		vtx := v.Source(SourceVertex, 0)
		idxSrc := v.Source(SourceIndex, 0)
		vtx.ensureCapacity(uint64(len(runes)) * 4)
		idxSrc.ensureCapacity(uint64(len(runes)) * 6)

		var penX float32
		for i, r := range runes {
			glyph := findGlyph(font, int32(r))
			if glyph == nil {
				continue
			}
			writeGlyphQuad(vtx, idxSrc, i, penX, glyph, font, colorBytes)
			penX += float32(glyph.XAdvance)
		}
		vtx.markDirty(0, uint64(len(runes))*4*vtx.ElementSize)
		idxSrc.markDirty(0, uint64(len(runes))*6*idxSrc.ElementSize)
		return nil
	}
}

func findGlyph(font *loaders.FontData, codepoint int32) *loaders.FontGlyph {
	for _, g := range font.Glyphs {
		if g.Codepoint == codepoint {
			return g
		}
	}
	return nil
}

func writeGlyphQuad(vtx, idxSrc *Source, glyphIdx int, penX float32, glyph *loaders.FontGlyph, font *loaders.FontData, color []byte) {
	x0 := penX + float32(glyph.XOffset)
	y0 := float32(glyph.YOffset)
	x1 := x0 + float32(glyph.Width)
	y1 := y0 + float32(glyph.Height)

	atlasW, atlasH := float32(font.AtlasSizeX), float32(font.AtlasSizeY)
	u0, v0 := float32(glyph.X)/atlasW, float32(glyph.Y)/atlasH
	u1 := float32(glyph.X+uint16(glyph.Width)) / atlasW
	v1 := float32(glyph.Y+uint16(glyph.Height)) / atlasH

	corners := [4][4]float32{
		{x0, y0, u0, v0},
		{x1, y0, u1, v0},
		{x1, y1, u1, v1},
		{x0, y1, u0, v1},
	}

	base := glyphIdx * 4
	vtx.ensureCapacity(uint64(base) + 4)
	for i, c := range corners {
		off := uint64(base+i) * vtx.ElementSize
		copy(vtx.Elements[off:off+4], float32tobytes(c[0]))
		copy(vtx.Elements[off+4:off+8], float32tobytes(c[1]))
		copy(vtx.Elements[off+8:off+12], float32tobytes(0))
		copy(vtx.Elements[off+uint64(vec3Size):off+uint64(vec3Size)+4], float32tobytes(c[2]))
		copy(vtx.Elements[off+uint64(vec3Size)+4:off+uint64(vec3Size)+8], float32tobytes(c[3]))
		copy(vtx.Elements[off+uint64(vec3Size)+8:off+uint64(vec3Size)+8+vec4Size], color)
	}

	idxBase := glyphIdx * 6
	idxSrc.ensureCapacity(uint64(idxBase) + 6)
	quadIndices := [6]uint32{uint32(base), uint32(base + 1), uint32(base + 2), uint32(base), uint32(base + 2), uint32(base + 3)}
	for i, iv := range quadIndices {
		off := uint64(idxBase+i) * idxSrc.ElementSize
		copy(idxSrc.Elements[off:off+4], uint32tobytes(iv))
	}
}
