package loaders

import (
	"fmt"
	"os"

	"github.com/fzipp/bmfont"
	"github.com/vizcore/dvz/engine/assets/assettype"
)

type BitmapFontLoader struct {
	ResourcePath string
}

// FontGlyph is one character's entry in a bitmap font's texture atlas.
type FontGlyph struct {
	Codepoint        int32
	X, Y             uint16
	Width, Height    uint16
	XOffset, YOffset int16
	XAdvance         int16
	PageID           uint8
}

// FontKerning adjusts the advance between a specific pair of glyphs.
type FontKerning struct {
	Codepoint0, Codepoint1 int32
	Amount                 int16
}

// BitmapFontPage names one atlas image backing the font.
type BitmapFontPage struct {
	ID   int8
	File string
}

type FontData struct {
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Glyphs     []*FontGlyph
	Kernings   []*FontKerning
}

// BitmapFontResourceData is the decoded .fnt descriptor: glyph metrics
// plus the atlas page list the texture loader resolves against.
type BitmapFontResourceData struct {
	Data  *FontData
	Pages []*BitmapFontPage
}

func (fl *BitmapFontLoader) Load(path string, assetType assettype.ResourceType, params interface{}) (*assettype.Resource, error) {
	p, ok := params.(map[string]string)
	if !ok {
		return nil, fmt.Errorf("failed to cast params in bitmap font loader")
	}

	fullFilePath := fmt.Sprintf("%s/%s/%s%s", fl.ResourcePath, "fonts", p["name"], ".fnt")
	if _, err := os.Stat(fullFilePath); err != nil {
		return nil, err
	}

	resourceData, err := fl.importFNTFile(fullFilePath)
	if err != nil {
		return nil, err
	}

	return &assettype.Resource{
		Name:     p["name"],
		FullPath: fullFilePath,
		Data:     resourceData,
		DataSize: uint64(len(resourceData.Data.Glyphs)),
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *assettype.Resource) error {
	if resource.Data != nil {
		data := resource.Data.(*BitmapFontResourceData)
		data.Data.Glyphs = nil
		data.Data.Kernings = nil
		data.Pages = nil
		resource.Data = nil
		resource.DataSize = 0
		resource.FullPath = ""
	}
	return nil
}

func (fl *BitmapFontLoader) importFNTFile(fntFileName string) (*BitmapFontResourceData, error) {
	font, err := bmfont.Load(fntFileName)
	if err != nil {
		return nil, err
	}

	outData := &BitmapFontResourceData{
		Data: &FontData{
			Face:       font.Descriptor.Info.Face,
			Size:       uint32(font.Descriptor.Info.Size),
			LineHeight: int32(font.Descriptor.Common.LineHeight),
			Baseline:   int32(font.Descriptor.Common.Base),
			AtlasSizeX: int32(font.Descriptor.Common.ScaleW),
			AtlasSizeY: int32(font.Descriptor.Common.ScaleH),
			Glyphs:     make([]*FontGlyph, 0, len(font.Descriptor.Chars)),
			Kernings:   make([]*FontKerning, 0, len(font.Descriptor.Kerning)),
		},
		Pages: make([]*BitmapFontPage, 0, len(font.Descriptor.Pages)),
	}

	for _, p := range font.Descriptor.Pages {
		outData.Pages = append(outData.Pages, &BitmapFontPage{
			ID:   int8(p.ID),
			File: p.File,
		})
	}

	for _, g := range font.Descriptor.Chars {
		outData.Data.Glyphs = append(outData.Data.Glyphs, &FontGlyph{
			Codepoint: int32(g.ID),
			Height:    uint16(g.Height),
			Width:     uint16(g.Width),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			XAdvance:  int16(g.XAdvance),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			PageID:    uint8(g.Page),
		})
	}

	for pair, k := range font.Descriptor.Kerning {
		outData.Data.Kernings = append(outData.Data.Kernings, &FontKerning{
			Amount:     int16(k.Amount),
			Codepoint0: int32(pair.First),
			Codepoint1: int32(pair.Second),
		})
	}

	return outData, nil
}
